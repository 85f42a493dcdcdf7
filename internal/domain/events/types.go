package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message - общий конверт для всех событий в обе стороны
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound event types.
const (
	TypeJoinRoom       = "join-room"
	TypeSendMessage    = "send-message"
	TypeCreateRoom     = "create-room"
	TypeGetActiveRooms = "get-active-rooms"
)

// Outbound event types.
const (
	TypeReceiveMessage = "receive-message"
	TypeUserJoined     = "user-joined"
	TypeUserLeft       = "user-left"
	TypeRoomInfo       = "room-info"
	TypeActiveRooms    = "active-rooms"
	TypeRoomCreated    = "room-created"
	TypeError          = "error"
)

// Envelope упаковывает payload события в транспортный конверт.
func Envelope(eventType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Message{Type: eventType, Data: data}, nil
}

// JoinRoomEvent - запрос на вход в комнату
type JoinRoomEvent struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

// SendMessageEvent - сообщение от клиента. Duration передаётся только для
// голосовых сообщений.
type SendMessageEvent struct {
	Content  string  `json:"content"`
	Kind     string  `json:"kind"`
	Duration float64 `json:"duration,omitempty"`
}

type CreateRoomEvent struct {
	UserName string `json:"userName"`
}

// ReceiveMessageEvent - доставка сообщения участникам комнаты. IsReplay
// помечает сообщения, отданные из истории при входе.
type ReceiveMessageEvent struct {
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration,omitempty"`
	IsReplay  bool      `json:"isReplay"`
}

// PresenceEvent - user-joined / user-left с актуальным списком участников
type PresenceEvent struct {
	UserName string   `json:"userName"`
	Users    []string `json:"users"`
}

// RoomInfoEvent - отправляется только вошедшему участнику
type RoomInfoEvent struct {
	RoomID string   `json:"roomId"`
	Users  []string `json:"users"`
}

type RoomCreatedEvent struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
