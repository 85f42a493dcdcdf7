package models

import "time"

// Message kinds. Audio messages carry an opaque reference to externally
// stored content, the relay never parses it.
const (
	KindText  = "text"
	KindAudio = "audio"
)

type Message struct {
	ID        int64     `db:"id" json:"-"`
	RoomID    string    `db:"room_id" json:"roomId"`
	Sender    string    `db:"sender" json:"sender"`
	Content   string    `db:"content" json:"content"`
	Kind      string    `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

func NewMessage(roomID, sender, content, kind string) *Message {
	return &Message{
		RoomID:    roomID,
		Sender:    sender,
		Content:   content,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}
