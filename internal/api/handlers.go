package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ai-chat-service/internal/core"
	"ai-chat-service/internal/store"
)

type APIHandler struct {
	chatService *core.ChatService
}

func NewAPIHandler(cs *core.ChatService) *APIHandler {
	return &APIHandler{chatService: cs}
}

func (h *APIHandler) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		log.Printf("Error listing sessions: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list chats")
		return
	}
	if sessions == nil {
		sessions = []store.ChatSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *APIHandler) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatService.GetHistory(sessionID)
	if err != nil {
		log.Printf("Error getting history for session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to get chat history")
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *APIHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.CreateSession()
	if err != nil {
		log.Printf("Error creating session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId": session.ID,
		"title":     session.Title,
	})
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

func (h *APIHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	turn, err := h.chatService.SendMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Message cannot be empty")
			return
		}
		var gwErr *core.GatewayError
		if errors.As(err, &gwErr) && (gwErr.Kind == core.GatewayRateLimited || gwErr.Kind == core.GatewayQuotaExceeded) {
			log.Printf("Gateway throttled for session %s: %v", sessionID, err)
			writeError(w, http.StatusTooManyRequests, "The AI service is currently rate limited, please try again shortly")
			return
		}
		log.Printf("Error sending message for session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response":   turn.Response,
		"sessionId":  sessionID,
		"tokensUsed": turn.TokensUsed,
	})
}

func (h *APIHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.DeleteSession(sessionID); err != nil {
		log.Printf("Error deleting session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully"})
}

func (h *APIHandler) ExportChatHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	transcript, err := h.chatService.ExportSession(sessionID)
	if err != nil {
		log.Printf("Error exporting session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to export chat")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=chat-%s.txt", sessionID))
	if _, err := w.Write([]byte(transcript)); err != nil {
		log.Printf("Error writing transcript for session %s: %v", sessionID, err)
	}
}
