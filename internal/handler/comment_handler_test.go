package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"recipeshare/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentNotifiesAuthor(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	author, authorToken := createTestUser(t, "author@example.com", "author")
	commenter, commenterToken := createTestUser(t, "commenter@example.com", "commenter")
	recipe := createTestRecipe(t, author.ID, "Moussaka")

	commentsPath := fmt.Sprintf("/api/v1/recipes/%d/comments", recipe.ID)

	w := doRequest(t, r, http.MethodPost, commentsPath, CommentInput{Content: "Lovely!"}, commenterToken)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Lovely!", body["content"])
	assert.Equal(t, "commenter", body["author"].(map[string]interface{})["username"])

	notifications := notificationsFor(t, author.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationComment, notifications[0].Type)
	require.NotNil(t, notifications[0].RelatedUserID)
	assert.Equal(t, commenter.ID, *notifications[0].RelatedUserID)

	// Commenting on your own recipe must not notify you.
	w = doRequest(t, r, http.MethodPost, commentsPath, CommentInput{Content: "Thanks all"}, authorToken)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, notificationsFor(t, author.ID), 1)
}

func TestAddCommentRejectsEmptyContent(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	author, _ := createTestUser(t, "author@example.com", "author")
	_, token := createTestUser(t, "commenter@example.com", "commenter")
	recipe := createTestRecipe(t, author.ID, "Paella")

	commentsPath := fmt.Sprintf("/api/v1/recipes/%d/comments", recipe.ID)

	w := doRequest(t, r, http.MethodPost, commentsPath, CommentInput{Content: "   "}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot be empty")
}

func TestCommentThreading(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	author, _ := createTestUser(t, "author@example.com", "author")
	_, token := createTestUser(t, "commenter@example.com", "commenter")
	recipe := createTestRecipe(t, author.ID, "Goulash")

	commentsPath := fmt.Sprintf("/api/v1/recipes/%d/comments", recipe.ID)

	w := doRequest(t, r, http.MethodPost, commentsPath, CommentInput{Content: "First!"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	parentID := uint(decodeBody(t, w)["id"].(float64))

	w = doRequest(t, r, http.MethodPost, commentsPath,
		CommentInput{Content: "A reply", ParentCommentID: &parentID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(parentID), body["parent_comment_id"])
}

func TestGetCommentsNewestFirst(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	author, _ := createTestUser(t, "author@example.com", "author")
	_, token := createTestUser(t, "commenter@example.com", "commenter")
	recipe := createTestRecipe(t, author.ID, "Pierogi")

	commentsPath := fmt.Sprintf("/api/v1/recipes/%d/comments", recipe.ID)

	for _, content := range []string{"first", "second", "third"} {
		w := doRequest(t, r, http.MethodPost, commentsPath, CommentInput{Content: content}, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, r, http.MethodGet, commentsPath, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var comments []CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 3)
	assert.Equal(t, "third", comments[0].Content)
	assert.Equal(t, "first", comments[2].Content)
}

func TestCommentOnMissingRecipe(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "commenter@example.com", "commenter")

	w := doRequest(t, r, http.MethodPost, "/api/v1/recipes/9999/comments",
		CommentInput{Content: "hello?"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/recipes/9999/comments", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
