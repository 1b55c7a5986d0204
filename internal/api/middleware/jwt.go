package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"error"`
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Role         string         `json:"role"`         // usually "authenticated" / "anon"
	AppMetadata  map[string]any `json:"app_metadata"` // {"role":"admin"} for console users
	UserMetadata map[string]any `json:"user_metadata"`
}

// JWTAuth is the identity oracle: it resolves the bearer token to a
// Supabase user id or rejects with 401. No retry, no store access.
func JWTAuth() gin.HandlerFunc {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	issuer := os.Getenv("SUPABASE_JWT_ISSUER")     // optional
	audience := os.Getenv("SUPABASE_JWT_AUDIENCE") // optional

	reject := func(c *gin.Context, msg string) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
			Code:    utils.CodeUnauthorized,
			Message: msg,
		})
	}

	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			reject(c, "missing bearer token")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if raw == "" {
			reject(c, "missing bearer token")
			return
		}

		claims := &supabaseClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid {
			reject(c, "invalid token")
			return
		}

		if issuer != "" && claims.Issuer != issuer {
			reject(c, "invalid token issuer")
			return
		}

		if audience != "" {
			valid := false
			for _, aud := range claims.Audience {
				if aud == audience {
					valid = true
					break
				}
			}
			if !valid {
				reject(c, "invalid token audience")
				return
			}
		}

		userID := claims.Subject // Supabase user UUID lives in "sub"
		if userID == "" {
			reject(c, "missing subject")
			return
		}

		appRole := models.RoleRegular
		if claims.AppMetadata != nil {
			if v, ok := claims.AppMetadata["role"]; ok {
				if s, ok := v.(string); ok && s != "" {
					appRole = models.UserRole(s)
				}
			}
		}

		c.Set("user_id", userID)
		c.Set("role", string(appRole))
		c.Next()
	}
}
