package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/session"
)

// FlashController exposes the one-shot session messages
type FlashController struct{}

// NewFlashController creates a new FlashController
func NewFlashController() *FlashController {
	return &FlashController{}
}

// Pop returns the pending flash messages and clears them
// @Summary Pending flash messages
// @Description Returns and clears the messages queued by the previous requests of this session
// @Tags flash
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.FlashResponse}
// @Router /flash [get]
func (c *FlashController) Pop(ctx *gin.Context) {
	flashes, err := session.PopFlashes(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	out := make([]dto.FlashResponse, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, dto.FlashResponse{Type: string(f.Type), Message: f.Message})
	}
	respondOK(ctx, out, "")
}
