package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/services"
)

type AdminHandler struct {
	engine *services.Engine
	logger *logrus.Logger
}

func NewAdminHandler(engine *services.Engine, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{engine: engine, logger: logger}
}

// Rebuild handles POST /api/v1/admin/rebuild. It blocks until the new
// snapshot is live; concurrent requests share one build.
func (h *AdminHandler) Rebuild(c *gin.Context) {
	model, err := h.engine.Rebuild(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("On-demand snapshot rebuild failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "REBUILD_FAILED",
				"message": "Failed to rebuild recommendation snapshot",
			},
		})
		return
	}

	stats := model.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status": "rebuilt",
		"epoch":  h.engine.Epoch(),
		"snapshot": gin.H{
			"users":        stats.Users,
			"items":        stats.Items,
			"interactions": stats.Interactions,
			"built_at":     stats.BuiltAt,
		},
	})
}
