package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ittop-club/secret-santa-bot/internal/api/handler/v1/response"
)

// Authenticator guards the admin API with a static bearer token. The bot's
// admin identity list covers chat; this covers dashboards and scripts.
type Authenticator struct {
	token string
}

func NewAuthenticator(token string) *Authenticator {
	return &Authenticator{token: token}
}

func (a *Authenticator) VerifyToken() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if a.token == "" {
			response.RenderErr(ctx, response.ErrPermissionDenied(errors.New("admin API is disabled")))
			return
		}

		header := ctx.GetHeader("Authorization")
		presented, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			response.RenderErr(ctx, response.ErrUnauthorized(errors.New("missing bearer token")))
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(a.token)) != 1 {
			response.RenderErr(ctx, response.ErrUnauthorized(errors.New("invalid token")))
			return
		}

		ctx.Next()
	}
}
