package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alligatorO15/fin-dashboard/internal/assistant"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/ratelimit"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxCommandLength = 500

var (
	ErrCommandEmpty           = errors.New("command must not be empty")
	ErrCommandTooLong         = fmt.Errorf("command is too long, max %d characters", maxCommandLength)
	ErrCommandInvalid         = errors.New("command contains invalid characters, use letters, digits and basic punctuation")
	ErrRateLimited            = errors.New("too many requests")
	ErrAssistantBusy          = errors.New("assistant is busy, try again in 5 seconds")
	ErrAssistantUnavailable   = errors.New("assistant temporarily unavailable")
	ErrAssistantNotConfigured = errors.New("assistant is not configured")
)

// буквы, цифры, пробелы, базовая пунктуация и португальские диакритики
var commandPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\$\.,!?áéíóúâêôãõçÁÉÍÓÚÂÊÔÃÕÇ\-]+$`)

// AssistantClient внешний интерпретатор команд, реализуется assistant.Client
type AssistantClient interface {
	SendCommand(ctx context.Context, phone, command string) (json.RawMessage, error)
}

type CommandService interface {
	// Send проверяет команду, списывает лимит пользователя и передает ее ассистенту.
	// Решение лимитера возвращается всегда, даже вместе с ошибкой
	Send(ctx context.Context, userID uuid.UUID, command string) (*models.CommandResult, ratelimit.Decision, error)
}

type commandService struct {
	userRepo  repository.UserRepository
	assistant AssistantClient
	limiter   *ratelimit.Store
}

func NewCommandService(userRepo repository.UserRepository, client AssistantClient, limiter *ratelimit.Store) CommandService {
	return &commandService{
		userRepo:  userRepo,
		assistant: client,
		limiter:   limiter,
	}
}

// ValidateCommand обрезает пробелы и проверяет длину и набор символов
func ValidateCommand(command string) (string, error) {
	trimmed := strings.TrimSpace(command)
	switch {
	case trimmed == "":
		return "", ErrCommandEmpty
	case utf8.RuneCountInString(trimmed) > maxCommandLength:
		return "", ErrCommandTooLong
	case !commandPattern.MatchString(trimmed):
		return "", ErrCommandInvalid
	}
	return trimmed, nil
}

func (s *commandService) Send(ctx context.Context, userID uuid.UUID, command string) (*models.CommandResult, ratelimit.Decision, error) {
	decision := s.limiter.Allow(userID.String())
	if !decision.Allowed {
		return nil, decision, ErrRateLimited
	}

	trimmed, err := ValidateCommand(command)
	if err != nil {
		return nil, decision, err
	}

	if s.assistant == nil {
		return nil, decision, ErrAssistantNotConfigured
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, decision, err
	}

	data, err := s.assistant.SendCommand(ctx, user.Phone, trimmed)
	switch {
	case errors.Is(err, assistant.ErrBusy):
		return nil, decision, ErrAssistantBusy
	case err != nil:
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("assistant command failed")
		return nil, decision, ErrAssistantUnavailable
	}

	return &models.CommandResult{
		Success: true,
		Message: "command sent",
		Data:    data,
	}, decision, nil
}
