package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/logger"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// KeyResponse identifies the record an optimistic mutation was written under.
type KeyResponse struct {
	ID        string `json:"id"`
	Temporary bool   `json:"temporary"`
}

// PendingResponse is returned for mutations whose round trip continues after
// the response is sent.
type PendingResponse struct {
	Op  store.Op    `json:"op"`
	Key KeyResponse `json:"key"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func keyResponse(k store.Key) KeyResponse {
	return KeyResponse{ID: k.ID(), Temporary: k.IsTemporary()}
}

// bindJSON decodes the request body into v, answering with INVALID_INPUT on
// failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

// respondPending answers an optimistic mutation. With ?wait=true the handler
// blocks until the mutation resolves and reports its outcome; otherwise it
// answers 202 right away.
func respondPending(c *gin.Context, p *store.Pending) {
	if c.Query("wait") != "true" {
		c.JSON(http.StatusAccepted, PendingResponse{Op: p.Op(), Key: keyResponse(p.Key())})
		return
	}

	select {
	case <-p.Done():
	case <-c.Request.Context().Done():
		respondWithError(c, apperrors.WithMessage(apperrors.ErrTransport, "Request cancelled before the mutation resolved"))
		return
	}

	r := p.Wait()
	switch {
	case r.Dropped:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrNoSession, "Session ended before the budget service answered"))
	case r.Err != nil:
		respondWithError(c, r.Err)
	default:
		c.JSON(http.StatusOK, PendingResponse{Op: r.Op, Key: keyResponse(r.Key)})
	}
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
