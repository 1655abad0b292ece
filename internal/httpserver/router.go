package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habittracker/internal/handler"
	"habittracker/pkg/util"
)

// ReadinessCheck reports whether an optional dependency is usable.
// A nil check is skipped.
type ReadinessCheck func() error

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	habitHandler *handler.HabitHandler,
	tokens *util.FormTokens,
	logger *zap.Logger,
	readiness map[string]ReadinessCheck,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))
	r.Use(MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		for name, check := range readiness {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pages
	r.GET("/", habitHandler.Dashboard)
	r.GET("/habits", habitHandler.ListPage)

	// Form posts
	forms := r.Group("/habits")
	forms.Use(FormTokenMiddleware(tokens, logger))
	{
		forms.POST("", habitHandler.AddHabit)
		forms.POST("/reset", habitHandler.ResetHabits)
		forms.POST("/:id/toggle", habitHandler.ToggleHabit)
		forms.POST("/:id/delete", habitHandler.DeleteHabit)
	}

	// Read-only JSON
	api := r.Group("/api")
	{
		api.GET("/habits", habitHandler.ListHabitsJSON)
		api.GET("/progress", habitHandler.ProgressJSON)
	}

	return &Router{Engine: r}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Engine.ServeHTTP(w, req)
}
