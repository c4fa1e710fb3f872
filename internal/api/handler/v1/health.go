package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthcheck godoc
// @Summary      Health check
// @Description  Reports whether the service is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /health [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}

// HandleHome godoc
// @Summary      Welcome banner
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func HandleHome(ctx *gin.Context) {
	ctx.String(http.StatusOK, "🎅 Secret Santa is running!")
}
