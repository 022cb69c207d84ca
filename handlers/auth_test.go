package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-predictor/config"
	"crypto-predictor/models"
)

func TestRegisterAndFetchUser(t *testing.T) {
	router := setupServer(t)

	token := registerUser(t, router, "alice", "alice@example.com", "secret123")

	w := doJSON(t, router, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	// Password hash must never appear in responses.
	assert.NotContains(t, w.Body.String(), "password")

	var count int64
	require.NoError(t, config.DB.Model(&models.User{}).Where("email = ?", "alice@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := setupServer(t)

	registerUser(t, router, "alice", "alice@example.com", "secret123")

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "alice2",
		"email":    "alice@example.com",
		"password": "othersecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := setupServer(t)

	// Short password.
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "bob", "email": "bob@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed email.
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "bob", "email": "not-an-email", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := setupServer(t)

	registerUser(t, router, "alice", "alice@example.com", "secret123")

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
		"email": "alice@example.com", "password": "wrongpass",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
		"email": "nobody@example.com", "password": "secret123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginTokenResolvesToSameUser(t *testing.T) {
	router := setupServer(t)

	registerUser(t, router, "alice", "alice@example.com", "secret123")

	w := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	me := doJSON(t, router, http.MethodGet, "/api/auth", resp.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestMissingOrInvalidToken(t *testing.T) {
	router := setupServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/auth", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	router := setupServer(t)

	token := registerUser(t, router, "alice", "alice@example.com", "secret123")
	registerUser(t, router, "bob", "bob@example.com", "secret123")

	// Taking another account's email is rejected.
	w := doJSON(t, router, http.MethodPut, "/api/auth/update", token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/auth/update", token, gin.H{
		"username": "alice2", "email": "alice2@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice2", user.Username)
	assert.Equal(t, "alice2@example.com", user.Email)
}

func TestChangePassword(t *testing.T) {
	router := setupServer(t)

	token := registerUser(t, router, "alice", "alice@example.com", "secret123")

	w := doJSON(t, router, http.MethodPut, "/api/auth/password", token, gin.H{
		"currentPassword": "wrongpass", "newPassword": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/auth/password", token, gin.H{
		"currentPassword": "secret123", "newPassword": "newsecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password no longer works, new one does.
	old := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
		"email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, old.Code)

	fresh := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
		"email": "alice@example.com", "password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestDeleteAccountCascadesWatchlistOnly(t *testing.T) {
	router := setupServer(t)

	token := registerUser(t, router, "alice", "alice@example.com", "secret123")
	other := registerUser(t, router, "bob", "bob@example.com", "secret123")

	w := doJSON(t, router, http.MethodPost, "/api/watchlist", token, gin.H{
		"coinName": "Bitcoin", "coinSymbol": "btc",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/watchlist", other, gin.H{
		"coinName": "Bitcoin", "coinSymbol": "btc",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Predictions have no owner and must survive account deletion.
	require.NoError(t, config.DB.Create(&models.Prediction{
		CoinName: "Bitcoin", PredictedTrend: models.TrendHold, CurrentPrice: 40000,
	}).Error)

	w = doJSON(t, router, http.MethodDelete, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var watchlistCount, predictionCount int64
	require.NoError(t, config.DB.Model(&models.WatchlistEntry{}).Count(&watchlistCount).Error)
	require.NoError(t, config.DB.Model(&models.Prediction{}).Count(&predictionCount).Error)
	assert.Equal(t, int64(1), watchlistCount, "only the other user's entry remains")
	assert.Equal(t, int64(1), predictionCount)

	w = doJSON(t, router, http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAccountFreesEmail(t *testing.T) {
	router := setupServer(t)

	token := registerUser(t, router, "alice", "alice@example.com", "secret123")

	w := doJSON(t, router, http.MethodDelete, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The email must be registrable again after the account is gone.
	fresh := registerUser(t, router, "alice", "alice@example.com", "newsecret")
	assert.NotEmpty(t, fresh)

	var count int64
	require.NoError(t, config.DB.Model(&models.User{}).Unscoped().Where("email = ?", "alice@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count, "no soft-deleted row left behind")
}
