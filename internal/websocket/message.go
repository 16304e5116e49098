package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/recipe-share/internal/domain"
)

type MessageType string

const (
	MessageTypeRecipeCreated = MessageType(domain.RecipeCreated)
	MessageTypeRecipeUpdated = MessageType(domain.RecipeUpdated)
	MessageTypeRecipeDeleted = MessageType(domain.RecipeDeleted)
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Seq       int64           `json:"seq,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}
