package domain

import "time"

// Turn is one entry of an ephemeral chat session.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionMaxTurns caps session history at the most recent 40 entries
// (20 user/assistant pairs).
const SessionMaxTurns = 40

// ChatResult is a completed chat turn.
type ChatResult struct {
	Output    string   `json:"output"`
	SessionID string   `json:"session_id"`
	Sources   []string `json:"sources"`
}

// GenerateRequest describes one call to the outbound generative service.
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	History           []Turn
	KnowledgeStores   []string
	JSONMode          bool
}
