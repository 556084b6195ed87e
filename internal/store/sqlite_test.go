package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndGetHistoryOrdering(t *testing.T) {
	s := newTestStore(t)

	a, err := s.CreateSession()
	require.NoError(t, err)
	b, err := s.CreateSession()
	require.NoError(t, err)

	// Interleave appends across two sessions.
	_, err = s.AppendMessage(a.ID, RoleUser, "a1", true)
	require.NoError(t, err)
	_, err = s.AppendMessage(b.ID, RoleUser, "b1", true)
	require.NoError(t, err)
	_, err = s.AppendMessage(a.ID, RoleAssistant, "a2", false)
	require.NoError(t, err)
	_, err = s.AppendMessage(b.ID, RoleAssistant, "b2", false)
	require.NoError(t, err)
	_, err = s.AppendMessage(a.ID, RoleUser, "a3", false)
	require.NoError(t, err)

	historyA, err := s.GetHistory(a.ID)
	require.NoError(t, err)
	require.Len(t, historyA, 3)
	require.Equal(t, []string{"a1", "a2", "a3"}, contents(historyA))
	require.Equal(t, []string{RoleUser, RoleAssistant, RoleUser}, roles(historyA))

	historyB, err := s.GetHistory(b.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"b1", "b2"}, contents(historyB))

	// Message ids are a store-wide monotonic sequence.
	require.Less(t, historyA[0].ID, historyA[1].ID)
	require.Less(t, historyA[1].ID, historyA[2].ID)
	require.Less(t, historyB[0].ID, historyB[1].ID)
}

func TestFirstMessageDerivesTitle(t *testing.T) {
	s := newTestStore(t)

	t.Run("short content kept verbatim", func(t *testing.T) {
		session, err := s.CreateSession()
		require.NoError(t, err)
		require.Equal(t, DefaultTitle, session.Title)

		_, err = s.AppendMessage(session.ID, RoleUser, "hello there", true)
		require.NoError(t, err)

		got, err := s.GetSession(session.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "hello there", got.Title)
	})

	t.Run("long content truncated with ellipsis", func(t *testing.T) {
		session, err := s.CreateSession()
		require.NoError(t, err)

		content := strings.Repeat("x", 45)
		_, err = s.AppendMessage(session.ID, RoleUser, content, true)
		require.NoError(t, err)

		got, err := s.GetSession(session.ID)
		require.NoError(t, err)
		require.Equal(t, strings.Repeat("x", 30)+"...", got.Title)
	})

	t.Run("truncation counts runes not bytes", func(t *testing.T) {
		session, err := s.CreateSession()
		require.NoError(t, err)

		content := strings.Repeat("é", 35)
		_, err = s.AppendMessage(session.ID, RoleUser, content, true)
		require.NoError(t, err)

		got, err := s.GetSession(session.ID)
		require.NoError(t, err)
		require.Equal(t, strings.Repeat("é", 30)+"...", got.Title)
	})

	t.Run("later messages leave title alone", func(t *testing.T) {
		session, err := s.CreateSession()
		require.NoError(t, err)

		_, err = s.AppendMessage(session.ID, RoleUser, "first", true)
		require.NoError(t, err)
		_, err = s.AppendMessage(session.ID, RoleAssistant, "a much longer reply that must not become the title", false)
		require.NoError(t, err)

		got, err := s.GetSession(session.ID)
		require.NoError(t, err)
		require.Equal(t, "first", got.Title)
	})
}

func TestAppendFirstMessageUpsertsMissingSession(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendMessage("ghost-session", RoleUser, "hello", true)
	require.NoError(t, err)

	got, err := s.GetSession("ghost-session")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "hello", got.Title)

	history, err := s.GetHistory("ghost-session")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestListSessionsOrderedByActivity(t *testing.T) {
	s := newTestStore(t)

	a, err := s.CreateSession()
	require.NoError(t, err)
	b, err := s.CreateSession()
	require.NoError(t, err)

	_, err = s.AppendMessage(a.ID, RoleUser, "ping a", true)
	require.NoError(t, err)

	sessions, err := s.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, a.ID, sessions[0].ID)

	_, err = s.AppendMessage(b.ID, RoleUser, "ping b", true)
	require.NoError(t, err)

	sessions, err = s.ListSessions()
	require.NoError(t, err)
	require.Equal(t, b.ID, sessions[0].ID)
	require.Equal(t, a.ID, sessions[1].ID)

	for _, session := range sessions {
		require.False(t, session.UpdatedAt.Before(session.CreatedAt))
	}
}

func TestDeleteSessionRemovesSessionAndMessages(t *testing.T) {
	s := newTestStore(t)

	session, err := s.CreateSession()
	require.NoError(t, err)
	_, err = s.AppendMessage(session.ID, RoleUser, "hello", true)
	require.NoError(t, err)
	_, err = s.AppendMessage(session.ID, RoleAssistant, "hi", false)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSession(session.ID))

	history, err := s.GetHistory(session.ID)
	require.NoError(t, err)
	require.Empty(t, history)

	sessions, err := s.ListSessions()
	require.NoError(t, err)
	for _, got := range sessions {
		require.NotEqual(t, session.ID, got.ID)
	}

	got, err := s.GetSession(session.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDeleteUnknownSessionIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.DeleteSession("no-such-session"))
}

// Flags a documented limitation: the store does not distinguish a session
// that never existed from one that exists with no messages.
func TestGetHistoryUnknownSessionIndistinguishableFromEmpty(t *testing.T) {
	s := newTestStore(t)

	unknown, err := s.GetHistory("no-such-session")
	require.NoError(t, err)
	require.Empty(t, unknown)

	session, err := s.CreateSession()
	require.NoError(t, err)

	empty, err := s.GetHistory(session.ID)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func contents(messages []Message) []string {
	out := make([]string, len(messages))
	for i, msg := range messages {
		out[i] = msg.Content
	}
	return out
}

func roles(messages []Message) []string {
	out := make([]string, len(messages))
	for i, msg := range messages {
		out[i] = msg.Role
	}
	return out
}
