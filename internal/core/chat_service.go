package core

import (
	"context"
	"fmt"
	"time"

	"ai-chat-service/internal/store"
)

type ChatService struct {
	dbStore        *store.SQLiteStore
	gateway        CompletionGateway
	historyWindow  int
	gatewayTimeout time.Duration
}

func NewChatService(db *store.SQLiteStore, gateway CompletionGateway, historyWindow int, gatewayTimeout time.Duration) *ChatService {
	return &ChatService{
		dbStore:        db,
		gateway:        gateway,
		historyWindow:  historyWindow,
		gatewayTimeout: gatewayTimeout,
	}
}

// ChatTurn is the outcome of one completed user/assistant exchange.
type ChatTurn struct {
	Response   string
	TokensUsed int
}

// SendMessage runs one chat turn: persist the user message, complete against
// the windowed history, persist the assistant reply. If the gateway fails the
// user message stays persisted, so a retried turn duplicates it rather than
// losing it.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*ChatTurn, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	history, err := s.dbStore.GetHistory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	isFirstMessage := len(history) == 0

	if _, err := s.dbStore.AppendMessage(sessionID, store.RoleUser, text, isFirstMessage); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	history, err = s.dbStore.GetHistory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read history: %w", err)
	}

	prompts := WindowHistory(history, s.historyWindow)

	if s.gatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
	}

	reply, totalTokens, err := s.gateway.Complete(ctx, prompts)
	if err != nil {
		// The user turn above is deliberately not rolled back.
		return nil, err
	}

	if _, err := s.dbStore.AppendMessage(sessionID, store.RoleAssistant, reply, false); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	return &ChatTurn{Response: reply, TokensUsed: totalTokens}, nil
}

func (s *ChatService) CreateSession() (*store.ChatSession, error) {
	return s.dbStore.CreateSession()
}

func (s *ChatService) ListSessions() ([]store.ChatSession, error) {
	return s.dbStore.ListSessions()
}

func (s *ChatService) GetHistory(sessionID string) ([]store.Message, error) {
	return s.dbStore.GetHistory(sessionID)
}

func (s *ChatService) DeleteSession(sessionID string) error {
	return s.dbStore.DeleteSession(sessionID)
}

// ExportSession renders a session's full transcript as plain text. An unknown
// session exports with the placeholder title and no messages.
func (s *ChatService) ExportSession(sessionID string) (string, error) {
	title := store.DefaultTitle
	session, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if session != nil && session.Title != "" {
		title = session.Title
	}

	history, err := s.dbStore.GetHistory(sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	return FormatTranscript(title, history, time.Now()), nil
}
