package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/nextloc/nextloc-go/internal/config"
	"github.com/nextloc/nextloc-go/internal/handler"
	"github.com/nextloc/nextloc-go/internal/middleware"
)

// SetupRouter wires the demo HTTP surface
func SetupRouter(cfg *config.Config, logger *log.Logger, trajectories *handler.TrajectoryHandler, predictions *handler.PredictHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// CORS for the demo frontend
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Next-location prediction API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		api.GET("/datasets", trajectories.ListDatasets)
		api.GET("/models", predictions.ListModels)
		api.GET("/predictions", predictions.ListPredictions)

		api.GET("/users/:city", trajectories.ListUsers)

		trajs := api.Group("/trajectories")
		{
			trajs.GET("/:city", trajectories.ListTrajectories)
			trajs.GET("/:city/:user", trajectories.GetUserTrajectories)
			trajs.GET("/:city/:user/:traj", trajectories.GetTrajectoryDetail)
		}

		// Predictions invoke a paid capability; keep the limit tight.
		api.POST("/predict", middleware.RateLimit(10, time.Minute), predictions.Predict)
	}

	return r
}
