package middleware

import (
	"errors"
	"fmt"
	"strings"

	autherrors "github.com/achla24/LeaveEase/internal/auth/errors"
	"github.com/achla24/LeaveEase/internal/shared/contextutil"
	"github.com/achla24/LeaveEase/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthMiddleware validates the access token from the Authorization header or
// the access_token cookie and exposes its claims on the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.AbortError(c, autherrors.ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			response.AbortError(c, errObj)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.AbortError(c, autherrors.ErrInvalidToken)
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			response.AbortError(c, autherrors.ErrInvalidToken)
			return
		}
		if typ, _ := claims["typ"].(string); typ == "refresh" {
			response.AbortError(c, autherrors.ErrInvalidToken)
			return
		}

		username, _ := claims["username"].(string)
		fullName, _ := claims["full_name"].(string)
		role, _ := claims["role"].(string)

		c.Set("user_id", userID)
		c.Set("username", username)
		c.Set("full_name", fullName)
		c.Set("role", role)

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		logger := contextutil.GetLogger(ctx, zap.L()).With(zap.String("user_id", userID))
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, logger))

		c.Next()
	}
}
