package events

const (
	// KindAssistantResponseUpdated identifies a snapshot of the reply so far.
	KindAssistantResponseUpdated Kind = "assistant_response.updated"
	// KindAssistantResponseFinal identifies the complete reply.
	KindAssistantResponseFinal Kind = "assistant_response.final"
	// KindAssistantSpeechSentence identifies a sentence that was spoken.
	KindAssistantSpeechSentence Kind = "assistant_speech.sentence_spoken"
)

// AssistantResponseUpdated carries the reply text generated so far.
type AssistantResponseUpdated struct {
	Base
	Response string
}

func NewAssistantResponseUpdated(response string) AssistantResponseUpdated {
	return AssistantResponseUpdated{Base: NewBase(KindAssistantResponseUpdated), Response: response}
}

// AssistantResponseFinal carries the full reply.
type AssistantResponseFinal struct {
	Base
	Response string
}

func NewAssistantResponseFinal(response string) AssistantResponseFinal {
	return AssistantResponseFinal{Base: NewBase(KindAssistantResponseFinal), Response: response}
}

// AssistantSpeechSentence carries a sentence exactly as it was spoken.
type AssistantSpeechSentence struct {
	Base
	Sentence string
}

func NewAssistantSpeechSentence(sentence string) AssistantSpeechSentence {
	return AssistantSpeechSentence{Base: NewBase(KindAssistantSpeechSentence), Sentence: sentence}
}
