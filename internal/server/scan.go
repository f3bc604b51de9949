package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/async"
	"github.com/vsplit/vsplit/internal/common"
)

// uploadReceipt accepts a receipt photo, runs OCR and parsing, and replaces
// the session's bill. With ?async=true the scan is queued instead and the
// response is 202; a newer upload for the same session supersedes it.
func (s *Server) uploadReceipt(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := s.sessions.Get(c.Request.Context(), sessionID); err != nil {
		s.fail(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'image' is required"})
		return
	}
	defer file.Close()

	if header.Size > constants.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the 15 MB limit"})
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if !constants.IsAllowedImage(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only JPG, PNG, and WebP images are accepted"})
		return
	}
	// Generic multipart writers send application/octet-stream; anything more
	// specific must be one of the accepted image types.
	if ct := header.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/octet-stream") &&
		!constants.IsAllowedContentType(ct) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only JPG, PNG, and WebP images are accepted"})
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes+1))
	if err != nil {
		s.fail(c, common.WrapError(err, "read upload"))
		return
	}
	if int64(len(image)) > constants.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the 15 MB limit"})
		return
	}

	if c.Query("async") == "true" {
		_ = s.queue.Enqueue(c.Request.Context(), async.Job{
			SessionID:   sessionID,
			Image:       image,
			Ext:         ext,
			SubmittedAt: time.Now(),
			TraceID:     common.RequestIDFromContext(c.Request.Context()),
		})
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		return
	}

	bill, raw, err := s.processor.ProcessImage(c.Request.Context(), image, ext, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "reading the receipt took too long; try a smaller or sharper photo"})
			return
		}
		var appErr *common.AppError
		if errors.As(err, &appErr) && errors.Is(err, common.ErrUnprocessable) {
			// Parsing exhausted every tier. Tell the client why and offer
			// the sample bill so the flow can continue.
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":       appErr.Message,
				"code":        appErr.Code,
				"confidence":  raw.Confidence,
				"sampleOffer": true,
			})
			return
		}
		s.fail(c, err)
		return
	}

	if err := s.sessions.AttachBill(c.Request.Context(), sessionID, bill); err != nil {
		s.fail(c, err)
		return
	}
	updated, err := s.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
