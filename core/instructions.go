package assistant

import "fmt"

// DefaultConversationTitle names the conversation on providers that keep
// conversations server side.
const DefaultConversationTitle = "Voice conversation"

// GreetingInstructions is what the assistant tells the user on start, before
// translation into the session language.
func GreetingInstructions(name string) string {
	return fmt.Sprintf("Hello! I am %[1]s, your GPT-Powered Voice Assistant. "+
		"Say 'Hello %[1]s' followed by a message to talk to me. "+
		"Say Bye %[1]s at any time to finish the conversation", name)
}

// SystemMessage is the first prompt of every conversation. The reply to it
// is the spoken greeting.
func SystemMessage(name, language string) string {
	return fmt.Sprintf("Hello! I want you to act as an assistant called %s and answer my questions "+
		"as if we were talking face to face. Don't make the answers too long since they will be read "+
		"on a microphone, make it as human dialog as possible, being positive, creative and fun. "+
		"I want you to speak in language code %s from now on. "+
		"Answer this initial message with translating this for the user: %s",
		name, language, GreetingInstructions(name))
}
