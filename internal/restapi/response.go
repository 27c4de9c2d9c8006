package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemwire"
)

// statusForKind maps a coreerr.Kind to the HTTP status a REST caller
// should see; anything not a recognized validation/not-found kind falls
// back to 500.
func statusForKind(k coreerr.Kind) int {
	switch k {
	case coreerr.KindInvalidType, coreerr.KindInvalidPriority, coreerr.KindInvalidDate,
		coreerr.KindUnknownStatus, coreerr.KindEmbeddingDimMismatch, coreerr.KindValidation:
		return http.StatusBadRequest
	case coreerr.KindUnknownItem, coreerr.KindNotFound:
		return http.StatusNotFound
	case coreerr.KindConflictingRelation, coreerr.KindConflict:
		return http.StatusConflict
	case coreerr.KindTimeout:
		return http.StatusGatewayTimeout
	case coreerr.KindEnrichmentUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError picks the HTTP status from err's coreerr.Kind (falling back
// to 500 for anything unrecognized) and writes the standard envelope.
func RespondError(c *gin.Context, err error) {
	ErrorResponse(c, statusForKind(coreerr.KindOf(err)), err)
}

// Response is the standard envelope for every REST response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{Success: true, Data: data})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, &Response{Success: true, Data: data})
}

func ErrorResponse(c *gin.Context, code int, err error) {
	c.JSON(code, &Response{Success: false, Data: itemwire.ErrorBody(err)})
}

func BadRequestError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, &Response{Success: false, Message: message})
}

func NotFoundError(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, &Response{Success: false, Message: message})
}

func UnauthorizedError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, &Response{Success: false, Message: message})
}

func TooManyRequestsError(c *gin.Context, message string) {
	c.JSON(http.StatusTooManyRequests, &Response{Success: false, Message: message})
}

func InternalError(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusInternalServerError, err)
}
