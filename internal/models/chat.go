package models

// ChatMessage is a single turn of the career chat
type ChatMessage struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// ChatContext carries optional profile data injected into the system prompt
type ChatContext struct {
	ResumeSkills []string `json:"resumeSkills,omitempty"`
	TargetCareer string   `json:"targetCareer,omitempty"`
}

// ChatRequest is the body of the chat endpoint
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
	Context *ChatContext  `json:"context,omitempty"`
}

// ChatResponse is returned by the chat endpoint
type ChatResponse struct {
	Reply string `json:"reply"`
}
