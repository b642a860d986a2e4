package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"innkeeper/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// DomainError maps the typed error taxonomy to HTTP responses; the
// error's own message carries the entity id and state context.
func DomainError(c *gin.Context, err error) {
	var (
		validation  *domain.ValidationError
		notFound    *domain.NotFoundError
		transition  *domain.InvalidTransitionError
		unavailable *domain.RoomUnavailableError
		capacity    *domain.CapacityExceededError
		refund      *domain.InvalidRefundAmountError
		conflict    *domain.ConcurrencyConflictError
	)

	switch {
	case errors.As(err, &validation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Error())
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", notFound.Error())
	case errors.As(err, &transition):
		Error(c, http.StatusConflict, "INVALID_TRANSITION", transition.Error())
	case errors.As(err, &unavailable):
		Error(c, http.StatusConflict, "ROOM_UNAVAILABLE", unavailable.Error())
	case errors.As(err, &capacity):
		Error(c, http.StatusBadRequest, "CAPACITY_EXCEEDED", capacity.Error())
	case errors.As(err, &refund):
		Error(c, http.StatusBadRequest, "INVALID_REFUND_AMOUNT", refund.Error())
	case errors.As(err, &conflict):
		Error(c, http.StatusConflict, "CONCURRENCY_CONFLICT", conflict.Error())
	default:
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
