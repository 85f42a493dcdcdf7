package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/chatline/internal/domain/models"
)

// MessageRepository is the append-only per-room message log. Rows are never
// updated or deleted.
type MessageRepository interface {
	Append(ctx context.Context, msg *models.Message) error

	// History returns the room's messages ascending by timestamp, insertion
	// order breaking ties. Rooms without history yield an empty slice.
	History(ctx context.Context, roomID string) ([]models.Message, error)
}

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Append(ctx context.Context, msg *models.Message) error {
	return r.db.QueryRowxContext(
		ctx,
		"INSERT INTO messages (room_id, sender, content, kind, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		msg.RoomID,
		msg.Sender,
		msg.Content,
		msg.Kind,
		msg.CreatedAt,
	).Scan(&msg.ID)
}

func (r *messageRepo) History(ctx context.Context, roomID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)

	query := `
		SELECT id, room_id, sender, content, kind, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
	`

	if err := r.db.SelectContext(ctx, &messages, query, roomID); err != nil {
		return nil, err
	}

	return messages, nil
}
