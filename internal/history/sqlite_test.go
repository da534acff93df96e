package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndListBySession(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	session := uuid.New().String()
	other := uuid.New().String()

	require.NoError(t, s.SaveExchange(ctx, Exchange{SessionID: session, Question: "q1", Answer: "a1"}))
	require.NoError(t, s.SaveExchange(ctx, Exchange{SessionID: session, Question: "q2", Answer: "a2"}))
	require.NoError(t, s.SaveExchange(ctx, Exchange{SessionID: other, Question: "qx", Answer: "ax"}))

	got, err := s.BySession(ctx, session)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Question)
	assert.Equal(t, "a1", got[0].Answer)
	assert.Equal(t, "q2", got[1].Question)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestBySessionUnknownSession(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.BySession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}
