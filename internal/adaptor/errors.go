package adaptor

import (
	"errors"
	"net/http"

	"labor-market/internal/usecase"
	"labor-market/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps service error kinds onto HTTP responses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		log.Warn(operation+" failed - unauthenticated", zap.Error(err))
		utils.ResponseUnauthorized(w, usecase.Message(err, "Unauthorized"))

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, usecase.Message(err, "Validation failed"), usecase.Fields(err))

	case errors.Is(err, usecase.ErrInvalidSignature),
		errors.Is(err, usecase.ErrInvalidState):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, usecase.Message(err, "Bad request"), nil)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, usecase.Message(err, "Forbidden"))

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, usecase.Message(err, "Not found"))

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, usecase.Message(err, "Conflict"))

	case errors.Is(err, usecase.ErrGateway),
		errors.Is(err, usecase.ErrConfig),
		errors.Is(err, usecase.ErrPersistence):
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, usecase.Message(err, "Internal server error"))

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
