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

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	register := RegisterInput{
		Email:       "chef@example.com",
		Password:    "password123",
		DisplayName: "chef",
	}
	w := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", register, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	// The duplicate is rejected by the unique index on email, not by a
	// racy pre-check; exactly one user row remains.
	w = doRequest(t, r, http.MethodPost, "/api/v1/auth/register", register, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	var userCount int64
	require.NoError(t, database.DB.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(1), userCount)

	login := LoginInput{Email: "chef@example.com", Password: "password123"}
	w = doRequest(t, r, http.MethodPost, "/api/v1/auth/login", login, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	login.Password = "wrong-password"
	w = doRequest(t, r, http.MethodPost, "/api/v1/auth/login", login, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Registering and logging in each ensure the profile; there is still
	// exactly one.
	var profileCount int64
	require.NoError(t, database.DB.Model(&models.Profile{}).Count(&profileCount).Error)
	assert.Equal(t, int64(1), profileCount)

	w = doRequest(t, r, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody(t, w)
	assert.Equal(t, "chef@example.com", me["email"])
	assert.Equal(t, "chef", me["username"])
}

func TestEnsureProfileReturnsExistingRow(t *testing.T) {
	setupTestDB(t)

	user := models.User{Email: "early@example.com", PasswordHash: "x", DisplayName: "early"}
	require.NoError(t, database.DB.Create(&user).Error)

	existing := models.Profile{UserID: user.ID, Username: "already-here"}
	require.NoError(t, database.DB.Create(&existing).Error)

	profile, err := ensureProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, profile.ID)
	assert.Equal(t, "already-here", profile.Username)

	var count int64
	require.NoError(t, database.DB.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureProfileUsernameCollision(t *testing.T) {
	setupTestDB(t)

	first := models.User{Email: "one@example.com", PasswordHash: "x", DisplayName: "sam"}
	require.NoError(t, database.DB.Create(&first).Error)
	second := models.User{Email: "two@example.com", PasswordHash: "x", DisplayName: "sam"}
	require.NoError(t, database.DB.Create(&second).Error)

	firstProfile, err := ensureProfile(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam", firstProfile.Username)

	// The second "sam" collides on the unique username and falls back to a
	// name suffixed with the user ID.
	secondProfile, err := ensureProfile(second.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("sam-%d", second.ID), secondProfile.Username)
}

func TestUpdateProfilePartial(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "chef@example.com", "chef")
	createTestUser(t, "taken@example.com", "taken")

	bio := "I cook things."
	w := doRequest(t, r, http.MethodPatch, "/api/v1/users/me", UpdateProfileInput{Bio: &bio}, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "I cook things.", body["bio"])
	// Fields not supplied are left untouched.
	assert.Equal(t, "chef", body["username"])

	taken := "taken"
	w = doRequest(t, r, http.MethodPatch, "/api/v1/users/me", UpdateProfileInput{Username: &taken}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	empty := "   "
	w = doRequest(t, r, http.MethodPatch, "/api/v1/users/me", UpdateProfileInput{Username: &empty}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleFollowInvolution(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	follower, token := createTestUser(t, "follower@example.com", "follower")
	target, _ := createTestUser(t, "target@example.com", "target")

	followPath := fmt.Sprintf("/api/v1/users/%d/follow", target.ID)

	w := doRequest(t, r, http.MethodPost, followPath, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["is_following"])

	// Counts are derived from the follow rows at read time.
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", target.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 1.0, body["follower_count"])
	assert.Equal(t, 0.0, body["following_count"])
	assert.Equal(t, true, body["is_followed_by_me"])

	w = doRequest(t, r, http.MethodPost, followPath, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["is_following"])

	var count int64
	database.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", follower.ID, target.ID).
		Count(&count)
	assert.Zero(t, count)

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", target.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decodeBody(t, w)["follower_count"])
}

func TestSelfFollowRejected(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	user, token := createTestUser(t, "solo@example.com", "solo")

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", user.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot follow yourself")

	var count int64
	database.DB.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestFollowNotifiesTarget(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	follower, token := createTestUser(t, "follower@example.com", "follower")
	target, _ := createTestUser(t, "target@example.com", "target")

	followPath := fmt.Sprintf("/api/v1/users/%d/follow", target.ID)

	w := doRequest(t, r, http.MethodPost, followPath, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	notifications := notificationsFor(t, target.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationFollow, notifications[0].Type)
	require.NotNil(t, notifications[0].RelatedUserID)
	assert.Equal(t, follower.ID, *notifications[0].RelatedUserID)
	assert.Nil(t, notifications[0].RelatedRecipeID)

	// Unfollowing is silent.
	w = doRequest(t, r, http.MethodPost, followPath, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, notificationsFor(t, target.ID), 1)
}

func TestFollowMissingUser(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "follower@example.com", "follower")

	w := doRequest(t, r, http.MethodPost, "/api/v1/users/9999/follow", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
