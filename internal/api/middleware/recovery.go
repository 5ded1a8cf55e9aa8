package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// panicResponse mirrors the handler package's Response envelope. The
// middleware cannot import that package without a cycle, so the shape is
// duplicated here; both serialize to the same JSON.
type panicResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Recovery converts a panic anywhere in the handler chain into a 500 in the
// standard response envelope, with the stack logged for diagnosis. Ledger
// state is safe: ExecuteTx rolls back on panic before the response is built.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				var response panicResponse
				response.Error.Code = "INTERNAL_SERVER_ERROR"
				response.Error.Message = "An internal server error occurred"
				response.CorrelationID = GetCorrelationID(c)

				c.AbortWithStatusJSON(http.StatusInternalServerError, response)
			}
		}()

		c.Next()
	}
}
