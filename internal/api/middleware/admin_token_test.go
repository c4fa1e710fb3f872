package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func tokenRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/guarded", NewAuthenticator(token).VerifyToken(), func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	return router
}

func TestVerifyToken(t *testing.T) {
	get := func(router *gin.Engine, authorization string) int {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec.Code
	}

	t.Run("valid token passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(tokenRouter("s3cret"), "Bearer s3cret"))
	})

	t.Run("wrong token is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(tokenRouter("s3cret"), "Bearer nope"))
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(tokenRouter("s3cret"), ""))
	})

	t.Run("basic scheme is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(tokenRouter("s3cret"), "Basic s3cret"))
	})

	t.Run("empty configured token disables the API", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(tokenRouter(""), "Bearer anything"))
	})
}
