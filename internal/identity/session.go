package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxSessionUser = "identity.session_user"

// SessionVerifier validates session JWTs minted by the customer's own login
// flow. Only the subject is used: it names the signed-in user.
type SessionVerifier struct {
	key []byte
}

// NewSessionVerifier creates a SessionVerifier for HS256 tokens signed with
// secret.
func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{key: []byte(secret)}
}

// Verify parses a session token and returns its subject.
func (s *SessionVerifier) Verify(tokenStr string) (string, error) {
	if len(s.key) == 0 {
		return "", errors.New("session verification is not configured")
	}
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("verify session: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid session claims")
	}
	return claims.Subject, nil
}

// Verifier is satisfied by SessionVerifier.
type Verifier interface {
	Verify(tokenStr string) (string, error)
}

// RequireSession returns a Gin middleware that requires a valid Bearer session
// token and stores the session's user in the context.
func RequireSession(sessions Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer session token required",
			})
			return
		}

		user, err := sessions.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid session: " + err.Error(),
			})
			return
		}

		c.Set(ctxSessionUser, user)
		c.Next()
	}
}

// SessionUserFromCtx returns the user established by RequireSession, or ""
// when the middleware did not run.
func SessionUserFromCtx(c *gin.Context) string {
	v, _ := c.Get(ctxSessionUser)
	s, _ := v.(string)
	return s
}
