package handlers

import (
	"net/http"

	"github.com/alligatorO15/fin-dashboard/internal/api/middleware"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecurringHandler struct {
	recurringService service.RecurringService
}

func NewRecurringHandler(recurringService service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

func (h *RecurringHandler) Create(c *gin.Context) {
	var input models.RecurringCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.recurringService.Create(c.Request.Context(), middleware.GetUserID(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *RecurringHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	list, err := h.recurringService.GetByUserID(c.Request.Context(), middleware.GetUserID(c), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *RecurringHandler) GetByID(c *gin.Context) {
	id, ok := recurringID(c)
	if !ok {
		return
	}

	rec, err := h.recurringService.GetByID(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *RecurringHandler) Update(c *gin.Context) {
	id, ok := recurringID(c)
	if !ok {
		return
	}

	var input models.RecurringUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.recurringService.Update(c.Request.Context(), middleware.GetUserID(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *RecurringHandler) Delete(c *gin.Context) {
	id, ok := recurringID(c)
	if !ok {
		return
	}

	if err := h.recurringService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recurring transaction deleted"})
}

func recurringID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recurring transaction ID"})
		return uuid.Nil, false
	}
	return id, true
}
