package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terenamutolder-oss/pro-node/internal/mocks"
	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/repositories"
	"github.com/terenamutolder-oss/pro-node/internal/ws"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/chats", handler.ListChats)
	r.POST("/api/chats", handler.CreateChat)
	r.PUT("/api/chats/:id/rename", handler.RenameChat)
	r.DELETE("/api/chats/:id", handler.DeleteChat)
	return r
}

func TestListChatsSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("ListChatsForUser", mock.Anything, "u1").
		Return([]models.Chat{{ID: "c1", Name: "Team"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chats?userId=u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var chats []models.Chat
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chats))
	require.Len(t, chats, 1)
	chatRepo.AssertExpectations(t)
}

func TestListChatsMissingUserID(t *testing.T) {
	router := setupChatRouter(NewChatHandler(new(mocks.ChatRepositoryMock), ws.NewHub(nil), nil))

	req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListChatsEmpty(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("ListChatsForUser", mock.Anything, "u1").
		Return(([]models.Chat)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chats?userId=u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", rec.Body.String())
}

func TestCreateChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("CreateChat", mock.Anything, "Team", []string{"u1", "u2"}).
		Return(models.Chat{ID: "c1", Name: "Team", Participants: []string{"u1", "u2"}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/chats", bytes.NewBufferString(`{"name":"Team","participants":["u1","u2"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var chat models.Chat
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chat))
	require.Equal(t, "c1", chat.ID)
	chatRepo.AssertExpectations(t)
}

func TestCreateChatMissingName(t *testing.T) {
	router := setupChatRouter(NewChatHandler(new(mocks.ChatRepositoryMock), ws.NewHub(nil), nil))

	req := httptest.NewRequest(http.MethodPost, "/api/chats", bytes.NewBufferString(`{"participants":["u1"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenameChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("RenameChat", mock.Anything, "c1", "Team X").
		Return(models.Chat{ID: "c1", Name: "Team X"}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/chats/c1/rename", bytes.NewBufferString(`{"name":"Team X"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Team X")
	chatRepo.AssertExpectations(t)
}

func TestRenameChatNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("RenameChat", mock.Anything, "ghost", "X").
		Return(models.Chat{}, repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/chats/ghost/rename", bytes.NewBufferString(`{"name":"X"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("DeleteChat", mock.Anything, "c1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/chats/c1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":true`)
	chatRepo.AssertExpectations(t)
}

func TestDeleteChatNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	router := setupChatRouter(NewChatHandler(chatRepo, ws.NewHub(nil), nil))

	chatRepo.On("DeleteChat", mock.Anything, "ghost").
		Return(repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/chats/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
