package controller

import (
	"strings"

	"probrowse/internal/sync/service"
	"probrowse/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// SyncController exposes manual sync triggers.
type SyncController struct {
	syncService *service.SyncService
}

// NewSyncController creates a new SyncController.
func NewSyncController(syncService *service.SyncService) *SyncController {
	return &SyncController{syncService: syncService}
}

// RegisterRoutes mounts the sync API under the given router group.
func (h *SyncController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/sync/catalog", h.SyncCatalog)
	api.POST("/sync/users/:user", h.SyncUser)
}

// SyncCatalog triggers a full catalog refresh.
func (h *SyncController) SyncCatalog(c *gin.Context) {
	if err := h.syncService.SyncCatalog(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Catalog synced", nil)
}

// SyncUser refreshes one user's submissions and rating.
func (h *SyncController) SyncUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		response.BadRequest(c, "Invalid user id")
		return
	}
	if err := h.syncService.SyncUser(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "User synced", nil)
}
