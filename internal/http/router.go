package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/config"
	"github.com/alexindevs/orgbase/internal/http/handler"
	"github.com/alexindevs/orgbase/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, apiHandler *handler.APIHandler, auth *middleware.Auth, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, World!")
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	apiGroup := r.Group("/api", auth.RequireSession)
	{
		apiGroup.GET("/users/:id", apiHandler.GetUser)
		apiGroup.GET("/organisations", apiHandler.ListOrganisations)
		apiGroup.GET("/organisations/:orgId", apiHandler.GetOrganisation)
		apiGroup.GET("/organisations/:orgId/users", apiHandler.GetOrganisationUsers)
		apiGroup.POST("/organisations", apiHandler.CreateOrganisation)
		apiGroup.POST("/organisations/:orgId/users", apiHandler.AddUser)
	}

	return r
}
