package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"events-api/internal/metrics"
	"events-api/internal/middleware"
	"events-api/internal/models"
	"events-api/pkg/lambda"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	// Handler serves every route not registered directly on gin
	Handler     lambda.Handler
	CORSHeaders map[string]string
	Verifier    *middleware.JWTVerifier
	Logger      *logrus.Logger
	// HealthCheck reports whether the event store is reachable
	HealthCheck    func(ctx context.Context) error
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(config.Logger))
	router.Use(metrics.InFlight())
	router.Use(middleware.CORS(config.CORSHeaders))
	router.Use(middleware.RateLimiter(config.RateLimitRPS, config.RateLimitBurst, config.Logger))
	router.Use(middleware.RequestSizeLimit(config.MaxBodyBytes))
	router.Use(middleware.ErrorHandler(config.Logger))
}

// SetupRoutes configures all routes. Event routes are not registered with
// gin; they fall through to config.Handler.
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if config.HealthCheck != nil {
			if err := config.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
					Message: MsgServiceUnavailable,
					Error:   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "events-api",
		})
	})

	router.NoRoute(GinHandler(config.Handler, config.CORSHeaders))
}

// devTokenRequest selects the identity a development token is issued for
type devTokenRequest struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, config *RouterConfig) {
	dev := router.Group("/dev")
	{
		// issueToken godoc
		// @Summary Issue a development token
		// @Tags dev
		// @Accept json
		// @Produce json
		// @Success 200 {object} map[string]string
		// @Router /dev/token [post]
		dev.POST("/token", func(c *gin.Context) {
			req := devTokenRequest{Subject: "demo-user", Email: "demo@example.com"}
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBindJSON(&req); err != nil {
					_ = c.Error(err).SetType(gin.ErrorTypeBind)
					return
				}
			}

			token, err := config.Verifier.GenerateToken(req.Subject, req.Email)
			if err != nil {
				_ = c.Error(err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	}
}
