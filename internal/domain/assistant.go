package domain

// AssistantReply is what the chat assistant answers. Fallback is set when every
// candidate model failed and Text is the apology shown in place of an answer.
type AssistantReply struct {
	Text     string
	Model    string
	Fallback bool
}
