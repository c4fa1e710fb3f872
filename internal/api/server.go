package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ittop-club/secret-santa-bot/docs"
	v1 "github.com/ittop-club/secret-santa-bot/internal/api/handler/v1"
	"github.com/ittop-club/secret-santa-bot/internal/api/middleware"
	"github.com/ittop-club/secret-santa-bot/internal/config"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

// NewServer wires the HTTP surface. The services are shared with the chat
// transport and the scheduler, so they come in already constructed instead
// of being built from the database here.
func NewServer(conf *config.AppConfig, registry v1.RegistryService, draw v1.DrawService, reveal v1.RevealService, dispatcher v1.DispatchService, year func() int) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	adminHandler := v1.NewAdminHandler(registry, draw, reveal, dispatcher, year)
	s.MountHandlers(adminHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(adminHandler *v1.AdminHandler) {
	const basePath = "/api/v1"

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.AdminToken).VerifyToken())
	{
		admin.GET("/stats", adminHandler.HandleGetStats)
		admin.GET("/participants", adminHandler.HandleGetParticipants)
		admin.GET("/pairs", adminHandler.HandleGetPairs)
		admin.POST("/draw", adminHandler.HandlePerformDraw)
		admin.POST("/notify", adminHandler.HandleNotify)
		admin.POST("/reveals", adminHandler.HandleRevealAll)
		admin.POST("/reveals/one", adminHandler.HandleRevealOne)
		admin.DELETE("/pairs", adminHandler.HandleClearPairs)
	}

	s.Router.GET("/", v1.HandleHome)
	s.Router.GET("/health", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Secret Santa API"
	docs.SwaggerInfo.Description = "Admin and health API for the Secret Santa bot."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
