package events

const (
	// KindSessionStateChanged identifies a session state transition.
	KindSessionStateChanged Kind = "session_state.changed"
	// KindConversationStarted identifies the start of a conversation.
	KindConversationStarted Kind = "conversation.started"
	// KindConversationClosed identifies the end of a conversation.
	KindConversationClosed Kind = "conversation.closed"
)

// SessionStateChanged carries the previous and current session state.
type SessionStateChanged struct {
	Base
	From string
	To   string
}

func NewSessionStateChanged(from, to string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), From: from, To: to}
}

// ConversationStarted carries the conversation id and the spoken greeting.
type ConversationStarted struct {
	Base
	ConversationID string
	Greeting       string
}

func NewConversationStarted(conversationID, greeting string) ConversationStarted {
	return ConversationStarted{Base: NewBase(KindConversationStarted), ConversationID: conversationID, Greeting: greeting}
}

type ConversationClosed struct {
	Base
	ConversationID string
}

func NewConversationClosed(conversationID string) ConversationClosed {
	return ConversationClosed{Base: NewBase(KindConversationClosed), ConversationID: conversationID}
}
