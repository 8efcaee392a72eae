package authserver_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmerrifield20/beams/internal/authserver"
	"github.com/jmerrifield20/beams/internal/config"
	"github.com/jmerrifield20/beams/internal/identity"
	"github.com/jmerrifield20/beams/pkg/beams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sessionSecret = "session-secret"

var testServerConfig = config.ServerConfig{
	Port:          8080,
	Path:          "/pusher/beams-auth",
	SessionSecret: sessionSecret,
	CORSOrigins:   []string{"https://app.example.com"},
}

type failingTokens struct{}

func (failingTokens) GenerateToken(string) (*beams.Token, error) {
	return nil, &beams.Error{Kind: beams.ErrSigning, Msg: "generate token", Err: errors.New("boom")}
}

func setupRouter(t *testing.T, tokens authserver.TokenGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := authserver.NewAuthHandler(tokens, nil, zap.NewNop())
	return authserver.NewRouter(testServerConfig, h, identity.NewSessionVerifier(sessionSecret), zap.NewNop())
}

func session(t *testing.T, sub string) string {
	t.Helper()
	now := time.Now()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(sessionSecret))
	require.NoError(t, err)
	return s
}

func get(router *gin.Engine, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBeamsAuth_200(t *testing.T) {
	client := beams.MustNew(beams.Config{InstanceID: "instance", SecretKey: "SECRET_KEY"})
	router := setupRouter(t, client)

	w := get(router, "/pusher/beams-auth?user_id=alice", session(t, "alice"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp beams.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := identity.NewTokenIssuer("SECRET_KEY", beams.DefaultEndpoint("instance"), 0).Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBeamsAuth_401_noSession(t *testing.T) {
	router := setupRouter(t, beams.MustNew(beams.Config{InstanceID: "i", SecretKey: "k"}))

	w := get(router, "/pusher/beams-auth?user_id=alice", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBeamsAuth_401_otherUser(t *testing.T) {
	router := setupRouter(t, beams.MustNew(beams.Config{InstanceID: "i", SecretKey: "k"}))

	w := get(router, "/pusher/beams-auth?user_id=alice", session(t, "mallory"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "does not match")
}

func TestBeamsAuth_400(t *testing.T) {
	router := setupRouter(t, beams.MustNew(beams.Config{InstanceID: "i", SecretKey: "k"}))

	cases := []struct {
		name  string
		query string
		msg   string
	}{
		{"missing user_id", "", "userId argument is required"},
		{"empty user_id", "?user_id=", "userId cannot be the empty string"},
		{"too long", "?user_id=" + strings.Repeat("a", 165), "userId is longer than the maximum length of 164"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(router, "/pusher/beams-auth"+tc.query, session(t, "alice"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tc.msg+`"}`, w.Body.String())
		})
	}
}

func TestBeamsAuth_500_signingFailure(t *testing.T) {
	router := setupRouter(t, failingTokens{})

	w := get(router, "/pusher/beams-auth?user_id=alice", session(t, "alice"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t, failingTokens{})

	w := get(router, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	router := setupRouter(t, beams.MustNew(beams.Config{InstanceID: "i", SecretKey: "k"}))
	get(router, "/pusher/beams-auth?user_id=alice", session(t, "alice"))
	get(router, "/pusher/beams-auth?user_id=bob", session(t, "alice"))
	get(router, "/pusher/beams-auth?user_id=bob", session(t, "alice"))
	get(router, "/nowhere", "")

	w := get(router, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `beams_token_requests_total{outcome="issued"} 1`)
	assert.Contains(t, body, `beams_token_requests_total{outcome="session_mismatch"} 2`)
	assert.Contains(t, body, `beams_auth_requests_total{code="200",route="/pusher/beams-auth"} 1`)
	assert.Contains(t, body, `beams_auth_requests_total{code="401",route="/pusher/beams-auth"} 2`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_perRouter(t *testing.T) {
	first := setupRouter(t, failingTokens{})
	second := setupRouter(t, failingTokens{})
	get(first, "/pusher/beams-auth?user_id=alice", session(t, "alice"))

	body := get(second, "/metrics", "").Body.String()
	assert.NotContains(t, body, "beams_token_requests_total{")
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t, failingTokens{})

	req := httptest.NewRequest(http.MethodOptions, "/pusher/beams-auth", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_propagated(t *testing.T) {
	router := setupRouter(t, failingTokens{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
