package middlewares

import (
	"context"
	"net/http"
	"strings"

	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/utils"

	"github.com/golang-jwt/jwt/v4"
)

// SessionAuth resolves the bearer token to the caller's session and attaches
// it to the request context. The token carries only the session id; the
// session data itself lives in redis.
func (m *Middlewares) SessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, constvars.AuthorizationBearerPrefix) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}
		tokenString := strings.TrimPrefix(authHeader, constvars.AuthorizationBearerPrefix)

		sessionID, err := m.parseSessionID(tokenString)
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		sessionData, err := m.SessionService.GetSessionData(r.Context(), sessionID)
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}
		if sessionData == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenInvalidOrExpired(nil))
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_SESSION_DATA_KEY, sessionData)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middlewares) parseSessionID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, exceptions.ErrTokenInvalidOrExpired(nil)
		}
		return []byte(m.InternalConfig.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", exceptions.ErrTokenInvalidOrExpired(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", exceptions.ErrTokenInvalidOrExpired(nil)
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", exceptions.ErrTokenInvalidOrExpired(nil)
	}
	return sessionID, nil
}
