package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crypto-predictor/config"
	"crypto-predictor/market"
	"crypto-predictor/middleware"
	"crypto-predictor/models"
	"crypto-predictor/predictor"
)

// setupServer wires a full router against an in-memory database, with both
// market APIs and the prediction service unreachable unless a test points
// them elsewhere first.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.WatchlistEntry{}, &models.Prediction{}))
	config.DB = db
	config.Rdb = nil

	if os.Getenv("COINGECKO_API_BASE") == "" {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(down.Close)
		t.Setenv("COINGECKO_API_BASE", down.URL)
		t.Setenv("COINCAP_API_BASE", down.URL)
		t.Setenv("ML_API_URL", down.URL)
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	config.Log = log

	marketClient := market.NewClient(log)
	Init(marketClient, predictor.NewGenerator(marketClient, log))

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/register", Register)
	api.POST("/auth", Login)
	api.GET("/coins/trending", GetTrending)

	auth := api.Group("/")
	auth.Use(middleware.Auth())
	{
		auth.GET("/auth", GetUser)
		auth.PUT("/auth/update", UpdateProfile)
		auth.PUT("/auth/password", ChangePassword)
		auth.DELETE("/auth", DeleteAccount)
		auth.GET("/watchlist", GetWatchlist)
		auth.POST("/watchlist", AddCoin)
		auth.DELETE("/watchlist/:id", RemoveCoin)
		auth.GET("/predictions", GetPredictions)
		auth.GET("/predictions/:coin", GetPrediction)
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, name, email, password string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
