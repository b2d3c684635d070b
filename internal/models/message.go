package models

// Origin identifies who produced a transcript entry
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Message is a single entry in the session transcript
type Message struct {
	Origin Origin `json:"origin"`
	Text   string `json:"text"`
}
