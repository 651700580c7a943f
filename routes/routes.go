package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stripe-bridge/controllers"
)

// Controllers groups what RegisterRoutes mounts. Admin is optional and is
// only mounted together with AdminAuth.
type Controllers struct {
	Webhook   *controllers.WebhookController
	Admin     *controllers.AdminController
	Health    *controllers.HealthController
	AdminAuth gin.HandlerFunc
}

// RegisterRoutes sets up the webhook, admin and health routes.
func RegisterRoutes(r *gin.Engine, webhookPath string, c Controllers) {
	// Stripe webhook (authenticated by signature, not JWT)
	r.POST(webhookPath, c.Webhook.Receive)

	if c.Health != nil {
		r.GET("/health", c.Health.Health)
	}

	if c.Admin == nil || c.AdminAuth == nil {
		return
	}
	admin := r.Group("/admin/events")
	admin.Use(c.AdminAuth)
	admin.POST("/:id/reprocess", c.Admin.Reprocess)
	admin.GET("/:id/status", c.Admin.Status)
	admin.DELETE("/:id", c.Admin.Clear)
}
