package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/chatstore"
)

// chatHandler serves the /chats CRUD endpoints. Owner scoping is the
// optional user_id query parameter; when absent, every chat is visible.
type chatHandler struct {
	store  ChatStore
	logger *slog.Logger
}

type createChatRequest struct {
	UserID       string          `json:"user_id"`
	Title        string          `json:"title"`
	Messages     json.RawMessage `json:"messages"`
	CheckpointID string          `json:"checkpoint_id"`
}

type updateChatRequest struct {
	Title        *string         `json:"title"`
	Messages     json.RawMessage `json:"messages"`
	CheckpointID *string         `json:"checkpoint_id"`
}

func (h *chatHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	chat, err := h.store.Create(r.Context(), chatstore.CreateParams{
		UserID:       req.UserID,
		Title:        req.Title,
		Messages:     req.Messages,
		CheckpointID: req.CheckpointID,
	})
	if err != nil {
		h.logger.Error("creating chat", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chat", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      chat.ID.String(),
		"message": "Chat created successfully",
	}, h.logger)
}

func (h *chatHandler) list(w http.ResponseWriter, r *http.Request) {
	chats, err := h.store.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.logger.Error("listing chats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chats", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"chats": chats}, h.logger)
}

func (h *chatHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.chatID(w, r)
	if !ok {
		return
	}

	chat, err := h.store.Get(r.Context(), id, r.URL.Query().Get("user_id"))
	if errors.Is(err, chatstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("getting chat", "error", err, "chat_id", id)
		writeError(w, http.StatusInternalServerError, "failed to get chat", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chat, h.logger)
}

func (h *chatHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.chatID(w, r)
	if !ok {
		return
	}

	var req updateChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	err := h.store.Update(r.Context(), id, r.URL.Query().Get("user_id"), chatstore.UpdateParams{
		Title:        req.Title,
		Messages:     req.Messages,
		CheckpointID: req.CheckpointID,
	})
	if errors.Is(err, chatstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("updating chat", "error", err, "chat_id", id)
		writeError(w, http.StatusInternalServerError, "failed to update chat", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat updated successfully"}, h.logger)
}

func (h *chatHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.chatID(w, r)
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), id, r.URL.Query().Get("user_id"))
	if errors.Is(err, chatstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("deleting chat", "error", err, "chat_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete chat", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully"}, h.logger)
}

func (h *chatHandler) chatID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat ID", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
