package memory_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/qrave1/chatline/internal/infra/adapters/memory"
)

func TestConnectionRepository_RegisterIsIdempotent(t *testing.T) {
	repo := memory.NewConnectionRepository()
	connID := uuid.New()

	repo.Register(connID)
	repo.SetIdentity(connID, "Alice", "ABCD")

	// Повторная регистрация не должна затирать идентичность
	repo.Register(connID)

	ident, ok := repo.Lookup(connID)
	assert.True(t, ok)
	assert.Equal(t, "Alice", ident.DisplayName)
	assert.Equal(t, "ABCD", ident.RoomID)
}

func TestConnectionRepository_SetIdentityUnknownConnection(t *testing.T) {
	repo := memory.NewConnectionRepository()
	connID := uuid.New()

	repo.SetIdentity(connID, "Ghost", "ABCD")

	_, ok := repo.Lookup(connID)
	assert.False(t, ok)
}

func TestConnectionRepository_Remove(t *testing.T) {
	repo := memory.NewConnectionRepository()
	connID := uuid.New()

	repo.Register(connID)
	repo.Remove(connID)

	_, ok := repo.Lookup(connID)
	assert.False(t, ok)

	// Удаление отсутствующей записи не паникует и не ошибается
	repo.Remove(connID)
}

func TestConnectionRepository_LookupEmptyIdentity(t *testing.T) {
	repo := memory.NewConnectionRepository()
	connID := uuid.New()

	repo.Register(connID)

	ident, ok := repo.Lookup(connID)
	assert.True(t, ok)
	assert.Empty(t, ident.DisplayName)
	assert.Empty(t, ident.RoomID)
}
