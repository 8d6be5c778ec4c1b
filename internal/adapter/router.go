package adapter

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/skynetfrank/user-service/internal/auth"
)

// NewRouter builds the gin engine with the full middleware chain and the
// user routes. Static paths (vendedores, profile) are registered alongside
// the :id parameter routes; gin resolves them by priority.
func NewRouter(l *zap.Logger, h *UserHandler, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()

	r.Use(
		RequestID(),
		RateLimit(200, 400),
		ConcurrencyLimit(300),
		MaxBodyBytes(1<<20),
		SimpleRecovery(),
		Metrics(),
		AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := r.Group("/api/users")
	{
		users.GET("", RequireAuth(jwter), RequireAdmin(), h.List)
		users.GET("/vendedores", RequireAuth(jwter), RequireAdmin(), h.ListSellers)
		users.POST("/signin", h.Signin)
		users.POST("/register", h.Register)
		users.GET("/:id", h.GetByID)
		users.PUT("/profile", RequireAuth(jwter), h.UpdateProfile)
		users.PUT("/:id", RequireAuth(jwter), RequireAdmin(), h.AdminUpdate)
		users.DELETE("/:id", RequireAuth(jwter), RequireAdmin(), h.Deactivate)
	}

	return r
}
