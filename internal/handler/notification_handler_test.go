package handler

import (
	"fmt"
	"net/http"
	"testing"

	"recipeshare/backend/internal/database"
	"recipeshare/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotificationsNewestFirstCapped(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	user, token := createTestUser(t, "busy@example.com", "busy")
	actor, _ := createTestUser(t, "actor@example.com", "actor")

	for i := 1; i <= 25; i++ {
		n := models.Notification{
			UserID:        user.ID,
			Type:          models.NotificationFollow,
			Message:       fmt.Sprintf("event %d", i),
			RelatedUserID: &actor.ID,
		}
		require.NoError(t, database.DB.Create(&n).Error)
	}

	w := doRequest(t, r, http.MethodGet, "/api/v1/notifications", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	// The list is bounded to the most recent 20; the unread count still
	// covers everything.
	require.Len(t, data, 20)
	assert.Equal(t, 25.0, body["unread_count"])
	assert.Equal(t, "event 25", data[0].(map[string]interface{})["message"])
	assert.Equal(t, "event 6", data[19].(map[string]interface{})["message"])
}

func TestMarkNotificationReadOwnership(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "owner@example.com", "owner")
	_, strangerToken := createTestUser(t, "stranger@example.com", "stranger")

	n := models.Notification{
		UserID:  owner.ID,
		Type:    models.NotificationComment,
		Message: "Someone commented on your recipe",
	}
	require.NoError(t, database.DB.Create(&n).Error)

	readPath := fmt.Sprintf("/api/v1/notifications/%d/read", n.ID)

	w := doRequest(t, r, http.MethodPost, readPath, nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Notification
	require.NoError(t, database.DB.First(&stored, n.ID).Error)
	assert.False(t, stored.IsRead)

	w = doRequest(t, r, http.MethodPost, readPath, nil, ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.DB.First(&stored, n.ID).Error)
	assert.True(t, stored.IsRead)

	// Marking an already-read notification again succeeds and changes nothing.
	w = doRequest(t, r, http.MethodPost, readPath, nil, ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.DB.First(&stored, n.ID).Error)
	assert.True(t, stored.IsRead)
}

func TestGetNotificationsAnonymous(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	// Without a token the list is empty rather than an error.
	w := doRequest(t, r, http.MethodGet, "/api/v1/notifications", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Empty(t, body["data"])
	assert.Equal(t, 0.0, body["unread_count"])
}

func TestMarkNotificationReadMissing(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "owner@example.com", "owner")

	w := doRequest(t, r, http.MethodPost, "/api/v1/notifications/9999/read", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnreadCountTracksReads(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	user, token := createTestUser(t, "reader@example.com", "reader")

	var ids []uint
	for i := 0; i < 3; i++ {
		n := models.Notification{
			UserID:  user.ID,
			Type:    models.NotificationRating,
			Message: "Someone rated your recipe",
		}
		require.NoError(t, database.DB.Create(&n).Error)
		ids = append(ids, n.ID)
	}

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", ids[0]), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/notifications", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decodeBody(t, w)["unread_count"])
}
