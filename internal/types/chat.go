package types

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID            uuid.UUID `json:"id"`
	TripID        uuid.UUID `json:"trip_id"`
	UserID        uuid.UUID `json:"user_id"`
	Content       string    `json:"content"`
	IsUserMessage bool      `json:"is_user_message"`
	CreatedAt     time.Time `json:"created_at"`
}

type AssistantRequest struct {
	Message string `json:"message"`
}

type AssistantResponse struct {
	Reply   string        `json:"reply"`
	History []ChatMessage `json:"history,omitempty"`
}
