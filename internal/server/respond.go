package server

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vsplit/vsplit/internal/common"
)

// fail renders an error with the status implied by its class. AppError codes
// become machine-readable tags for the client.
func (s *Server) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	body := gin.H{"error": err.Error()}

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		body = gin.H{"error": appErr.Message, "code": appErr.Code}
	}
	if status >= 500 {
		s.logger.Error("http.error", "status", status, "error", err)
	}
	c.JSON(status, body)
}
