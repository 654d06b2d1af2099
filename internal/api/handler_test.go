// The `_test` suffix creates a "black box" test package.
// This means the test code lives outside the `api` package and can only access
// its exported identifiers (functions, types, etc.). This is the preferred
// approach for testing the public API of a package.
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"aix-chat/backend/internal/api"
	app_errors "aix-chat/backend/internal/errors"
	"aix-chat/backend/internal/interfaces/mocks"
	"aix-chat/backend/internal/model"
	"aix-chat/backend/internal/service"
)

// stubExtractor lets each test script the extraction outcome without touching
// real content-type dispatch.
type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(name, contentType string, size int64, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.text != "" {
		return s.text, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// setupChatHandler encapsulates the repetitive setup logic for creating a
// handler with its dependencies mocked, keeping the test cases focused on the
// behavior being tested.
func setupChatHandler(t *testing.T) (*api.ChatHandler, *mocks.MockChatService, *stubExtractor) {
	mockSvc := mocks.NewMockChatService(t)
	extractor := &stubExtractor{}
	handler := api.NewChatHandler(mockSvc, extractor)
	return handler, mockSvc, extractor
}

// addChiURLParams simulates how the chi router injects URL parameters
// (e.g., `{chatID}`) into the request's context. Without it, `chi.URLParam`
// would return an empty string in handler-level tests.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func testChat() model.Chat {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return model.Chat{
		ID:        "chat-1",
		Title:     "Test Chat",
		CreatedAt: created,
		Messages: []model.Message{
			{ID: "msg-1", Role: model.RoleUser, Content: "hello", CreatedAt: created},
			{ID: "msg-2", Role: model.RoleAssistant, Content: "hi there", CreatedAt: created},
		},
	}
}

func TestChatHandler_GetChats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		expected := []model.Chat{testChat()}
		mockSvc.On("ListChats").Return(expected).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		rr := httptest.NewRecorder()
		handler.GetChats(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var returned []model.Chat
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, expected, returned)
	})

	t.Run("Empty list", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("ListChats").Return([]model.Chat{}).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		rr := httptest.NewRecorder()
		handler.GetChats(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestChatHandler_GetChat(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		chat := testChat()
		mockSvc.On("GetChat", "chat-1").Return(&chat, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.GetChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var returned model.Chat
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, chat, returned)
	})

	t.Run("Not found", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("GetChat", "nope").Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/nope", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "nope"})
		rr := httptest.NewRecorder()
		handler.GetChat(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestChatHandler_CreateChat(t *testing.T) {
	t.Run("With title", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		chat := testChat()
		mockSvc.On("CreateChat", "My Chat").Return(chat).Once()

		body := strings.NewReader(`{"title":"My Chat"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", body)
		rr := httptest.NewRecorder()
		handler.HandleCreateChat(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Empty body uses default title", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("CreateChat", "").Return(testChat()).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", http.NoBody)
		rr := httptest.NewRecorder()
		handler.HandleCreateChat(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", strings.NewReader(`{broken`))
		rr := httptest.NewRecorder()
		handler.HandleCreateChat(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_UpdateChatTitle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("RenameChat", "chat-1", "Renamed").Return(nil).Once()

		body := strings.NewReader(`{"title":"Renamed"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/chats/chat-1/title", body)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.UpdateChatTitle(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("Empty title fails validation before the service is called", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		body := strings.NewReader(`{"title":""}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/chats/chat-1/title", body)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.UpdateChatTitle(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Unknown chat", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("RenameChat", "nope", "Renamed").Return(app_errors.ErrNotFound).Once()

		body := strings.NewReader(`{"title":"Renamed"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/chats/nope/title", body)
		req = addChiURLParams(req, map[string]string{"chatID": "nope"})
		rr := httptest.NewRecorder()
		handler.UpdateChatTitle(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestChatHandler_DeleteChat(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("DeleteChat", "chat-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/chats/chat-1", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleDeleteChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("DeleteChat", "nope").Return(app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/chats/nope", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "nope"})
		rr := httptest.NewRecorder()
		handler.HandleDeleteChat(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestChatHandler_SelectChat(t *testing.T) {
	handler, mockSvc, _ := setupChatHandler(t)
	mockSvc.On("SelectChat", "chat-1").Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/chat-1/select", nil)
	req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
	rr := httptest.NewRecorder()
	handler.HandleSelectChat(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestChatHandler_ImportChat(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		chat := testChat()
		payload, err := json.Marshal(chat)
		require.NoError(t, err)

		mockSvc.On("ImportChat", mock.AnythingOfType("model.Chat")).Return(chat).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/import", bytes.NewReader(payload))
		rr := httptest.NewRecorder()
		handler.HandleImportChat(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/import", strings.NewReader(`not json`))
		rr := httptest.NewRecorder()
		handler.HandleImportChat(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_ExportChat(t *testing.T) {
	t.Run("JSON is the default format", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		chat := testChat()
		mockSvc.On("GetChat", "chat-1").Return(&chat, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1/export", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleExportChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "chat-1.json")
		var returned model.Chat
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, chat, returned)
	})

	t.Run("Markdown", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		chat := testChat()
		mockSvc.On("GetChat", "chat-1").Return(&chat, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1/export?format=markdown", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleExportChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/markdown")
		assert.Contains(t, rr.Body.String(), "# Test Chat")
		assert.Contains(t, rr.Body.String(), "## user")
	})

	t.Run("Unknown format", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		chat := testChat()
		mockSvc.On("GetChat", "chat-1").Return(&chat, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1/export?format=xml", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleExportChat(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// multipartBody builds a multipart form with a single "file" part carrying an
// explicit Content-Type, the way browsers submit file inputs.
func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestChatHandler_Attachment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		msg := &model.Message{ID: "msg-3", Role: model.RoleUser, Content: "[notes.txt]\nsome notes"}
		mockSvc.On("AttachText", "chat-1", "notes.txt", "some notes").Return(msg, nil).Once()

		body, contentType := multipartBody(t, "notes.txt", "text/plain", "some notes")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/chat-1/attachments", body)
		req.Header.Set("Content-Type", contentType)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleAttachment(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Unsupported file type", func(t *testing.T) {
		handler, _, extractor := setupChatHandler(t)
		extractor.err = app_errors.ErrUnsupported

		body, contentType := multipartBody(t, "movie.mp4", "video/mp4", "...")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/chat-1/attachments", body)
		req.Header.Set("Content-Type", contentType)
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleAttachment(rr, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("Missing file field", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("other", "value"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/chat-1/attachments", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req = addChiURLParams(req, map[string]string{"chatID": "chat-1"})
		rr := httptest.NewRecorder()
		handler.HandleAttachment(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_GetTokens(t *testing.T) {
	handler, mockSvc, _ := setupChatHandler(t)
	mockSvc.On("ApproxTokens").Return(42).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens", nil)
	rr := httptest.NewRecorder()
	handler.GetTokens(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"tokens":42}`, rr.Body.String())
}

func TestChatHandler_SendMessage(t *testing.T) {
	t.Run("Streams chunks as plain text", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		result := &service.SendResult{ChatID: "chat-1", AssistantMessageID: "msg-2", Content: "Hello!"}
		mockSvc.On("SendMessage", mock.Anything, "chat-1", "hi", mock.Anything).
			Run(func(args mock.Arguments) {
				onChunk := args.Get(3).(func(string))
				onChunk("Hel")
				onChunk("lo!")
			}).
			Return(result, nil).Once()

		body := strings.NewReader(`{"chat_id":"chat-1","content":"hi"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/messages", body)
		rr := httptest.NewRecorder()
		handler.HandleSendMessage(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "Hello!", rr.Body.String())
	})

	t.Run("Empty content fails validation", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		body := strings.NewReader(`{"content":""}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/messages", body)
		rr := httptest.NewRecorder()
		handler.HandleSendMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Busy maps to conflict", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("SendMessage", mock.Anything, "", "hi", mock.Anything).
			Return(nil, app_errors.ErrBusy).Once()

		body := strings.NewReader(`{"content":"hi"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/messages", body)
		rr := httptest.NewRecorder()
		handler.HandleSendMessage(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "already being generated")
	})

	t.Run("Upstream failure after partial output keeps the stream body", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("SendMessage", mock.Anything, "", "hi", mock.Anything).
			Run(func(args mock.Arguments) {
				onChunk := args.Get(3).(func(string))
				onChunk("par")
			}).
			Return(nil, app_errors.ErrStreaming).Once()

		body := strings.NewReader(`{"content":"hi"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/messages", body)
		rr := httptest.NewRecorder()
		handler.HandleSendMessage(rr, req)

		// Once streaming started the status is already committed.
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "par", rr.Body.String())
	})
}

func TestChatHandler_Stop(t *testing.T) {
	t.Run("Stops an active turn", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("Stop").Return(true).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/stop", nil)
		rr := httptest.NewRecorder()
		handler.HandleStop(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"stopped"}`, rr.Body.String())
	})

	t.Run("Reports idle when nothing is streaming", func(t *testing.T) {
		handler, mockSvc, _ := setupChatHandler(t)
		mockSvc.On("Stop").Return(false).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/stop", nil)
		rr := httptest.NewRecorder()
		handler.HandleStop(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"idle"}`, rr.Body.String())
	})
}
