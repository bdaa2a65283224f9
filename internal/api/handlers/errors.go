package handlers

import (
	"errors"
	"net/http"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/export"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ошибки валидации из сервисов, отдаются клиенту как есть
var badRequestErrors = []error{
	analytics.ErrInvalidPeriod,
	analytics.ErrUnsupportedLocale,
	export.ErrNotEnoughData,
	service.ErrInvalidTransactionType,
	service.ErrInvalidAmount,
	service.ErrEmptyCategory,
	service.ErrInvalidBudgetLimit,
	service.ErrInvalidAlert,
	service.ErrInvalidContribution,
	service.ErrInvalidRecurrence,
	service.ErrGoalClosed,
	service.ErrInvalidPhone,
	service.ErrInvalidAccountType,
	service.ErrEmptyAccountName,
	service.ErrInvalidCreditLimit,
	service.ErrInvalidDueDay,
	service.ErrCreditOnlyField,
	service.ErrInvalidFrequency,
	service.ErrEmptyNextDate,
	service.ErrCommandEmpty,
	service.ErrCommandTooLong,
	service.ErrCommandInvalid,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrAssistantBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrAssistantUnavailable), errors.Is(err, service.ErrAssistantNotConfigured):
		return http.StatusBadGateway
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError детали внутренних ошибок в ответ не попадают, только в лог
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	if status == http.StatusNotFound {
		c.JSON(status, gin.H{"error": "resource not found"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
