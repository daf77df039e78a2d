package types

// MessageType identifies the author of a chat message.
type MessageType string

// Message author constants
const (
	MessageUser MessageType = "user"
	MessageAI   MessageType = "ai"
)

// MessageStage tracks a job-extraction message through its lifecycle.
type MessageStage string

// Message stage constants
const (
	StageExtracting MessageStage = "extracting"
	StageConfirm    MessageStage = "confirm"
	StageComplete   MessageStage = "complete"
)

// ChatMessage is one entry of the assistant transcript.
type ChatMessage struct {
	ID        string       `json:"id"`
	Type      MessageType  `json:"type"`
	Content   string       `json:"content"`
	ParsedJob *JobRecord   `json:"parsedJob,omitempty"`
	Stage     MessageStage `json:"stage,omitempty"`
	Timestamp int64        `json:"timestamp"`
	Hidden    bool         `json:"hidden,omitempty"`
	Image     string       `json:"image,omitempty"` // data URL
}

// ChatSession is a saved conversation.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	UpdatedAt int64         `json:"updatedAt"`
}

// SessionPatch updates the mutable fields of a session.
type SessionPatch struct {
	Title *string `json:"title,omitempty"`
}

// SendMessageRequest is the payload for posting a message to the assistant.
type SendMessageRequest struct {
	Content string `json:"content"`
	Image   string `json:"image,omitempty"` // base64 or data URL
}

// ConfirmJobRequest moves the pending parsed job into a folder.
type ConfirmJobRequest struct {
	FolderID string `json:"folderId" validate:"required"`
}

// ExtractRequest asks for a one-off extraction without touching the transcript.
type ExtractRequest struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"` // base64 or data URL
}

// ExtractURLRequest asks for extraction from a job posting URL.
type ExtractURLRequest struct {
	URL        string `json:"url" validate:"required,url"`
	UseBrowser bool   `json:"useBrowser,omitempty"`
}
