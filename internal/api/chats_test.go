package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/chatstore"
)

// fakeChatStore is an in-memory ChatStore with the same owner-scoping
// semantics as the Postgres implementation.
type fakeChatStore struct {
	mu    sync.Mutex
	chats map[uuid.UUID]chatstore.Chat
	seq   int
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[uuid.UUID]chatstore.Chat)}
}

func (f *fakeChatStore) Create(_ context.Context, params chatstore.CreateParams) (chatstore.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	chat := chatstore.Chat{
		ID:           uuid.New(),
		UserID:       params.UserID,
		Title:        params.Title,
		Messages:     params.Messages,
		CheckpointID: params.CheckpointID,
		CreatedAt:    time.Unix(int64(f.seq), 0),
		UpdatedAt:    time.Unix(int64(f.seq), 0),
	}
	if chat.Title == "" {
		chat.Title = "New Chat"
	}
	if len(chat.Messages) == 0 {
		chat.Messages = json.RawMessage("[]")
	}
	f.chats[chat.ID] = chat
	return chat, nil
}

func (f *fakeChatStore) Get(_ context.Context, id uuid.UUID, userID string) (chatstore.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chat, ok := f.chats[id]
	if !ok || (userID != "" && chat.UserID != userID) {
		return chatstore.Chat{}, chatstore.ErrNotFound
	}
	return chat, nil
}

func (f *fakeChatStore) List(_ context.Context, userID string) ([]chatstore.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var chats []chatstore.Chat
	for _, chat := range f.chats {
		if userID == "" || chat.UserID == userID {
			chats = append(chats, chat)
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].CreatedAt.After(chats[j].CreatedAt) })
	return chats, nil
}

func (f *fakeChatStore) Update(_ context.Context, id uuid.UUID, userID string, params chatstore.UpdateParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	chat, ok := f.chats[id]
	if !ok || (userID != "" && chat.UserID != userID) {
		return chatstore.ErrNotFound
	}
	if params.Title != nil {
		chat.Title = *params.Title
	}
	if params.Messages != nil {
		chat.Messages = params.Messages
	}
	if params.CheckpointID != nil {
		chat.CheckpointID = *params.CheckpointID
	}
	chat.UpdatedAt = chat.UpdatedAt.Add(time.Second)
	f.chats[id] = chat
	return nil
}

func (f *fakeChatStore) Delete(_ context.Context, id uuid.UUID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	chat, ok := f.chats[id]
	if !ok || (userID != "" && chat.UserID != userID) {
		return chatstore.ErrNotFound
	}
	delete(f.chats, id)
	return nil
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestChatCRUDRoundTrip(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, newFakeChatStore())

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/chats", map[string]any{
		"user_id":  "u1",
		"title":    "Trip planning",
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Chat created successfully", created.Message)
	require.NotEmpty(t, created.ID)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/chats/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chat chatstore.Chat
	require.NoError(t, json.Unmarshal(body, &chat))
	assert.Equal(t, "Trip planning", chat.Title)
	assert.JSONEq(t, `[{"role":"user","content":"hi"}]`, string(chat.Messages))

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/chats/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/chats/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatUpdateTitleOnly(t *testing.T) {
	store := newFakeChatStore()
	ts := newTestServer(t, &fakeRunner{}, store)

	chat, err := store.Create(context.Background(), chatstore.CreateParams{
		Messages: json.RawMessage(`[{"role":"user","content":"keep me"}]`),
	})
	require.NoError(t, err)

	resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/chats/%s", ts.URL, chat.ID), map[string]any{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := store.Get(context.Background(), chat.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	// Messages survive a title-only update.
	assert.JSONEq(t, `[{"role":"user","content":"keep me"}]`, string(got.Messages))
}

func TestChatListOwnerScoping(t *testing.T) {
	store := newFakeChatStore()
	ts := newTestServer(t, &fakeRunner{}, store)

	for range 2 {
		_, err := store.Create(context.Background(), chatstore.CreateParams{UserID: "alice"})
		require.NoError(t, err)
	}
	_, err := store.Create(context.Background(), chatstore.CreateParams{UserID: "bob"})
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/chats?user_id=alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Chats []chatstore.Chat `json:"chats"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Chats, 2)
	for _, c := range out.Chats {
		assert.Equal(t, "alice", c.UserID)
	}
}

func TestChatNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, newFakeChatStore())
	missing := uuid.NewString()

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/chats/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/chats/"+missing, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/chats/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatInvalidID(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, newFakeChatStore())

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/chats/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatsDisabledWithoutStore(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, nil)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/chats", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
