package handlers

import (
	"errors"
	"net/http"

	"github.com/alligatorO15/fin-dashboard/internal/api/middleware"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/gin-gonic/gin"
)

type CommandHandler struct {
	commandService service.CommandService
}

func NewCommandHandler(commandService service.CommandService) *CommandHandler {
	return &CommandHandler{commandService: commandService}
}

// Send POST /commands, лимит считается в сервисе, здесь только заголовки
func (h *CommandHandler) Send(c *gin.Context) {
	var input models.Command
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, decision, err := h.commandService.Send(c.Request.Context(), middleware.GetUserID(c), input.Command)
	middleware.SetRateLimitHeaders(c, decision)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			middleware.AbortRateLimited(c, decision)
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
