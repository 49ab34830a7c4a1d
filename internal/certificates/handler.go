package certificates

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trustmebro/cert-service/pkg/pdf"
)

// HandlerOptions controls download behaviour
type HandlerOptions struct {
	// DeleteAfterDownload removes a document once it has been streamed in full
	DeleteAfterDownload bool
}

// Handler handles HTTP requests for certificate operations
type Handler struct {
	service *Service
	options HandlerOptions
	logger  *zap.Logger
}

// NewHandler creates a new certificates handler
func NewHandler(service *Service, options HandlerOptions, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		options: options,
		logger:  logger,
	}
}

// RegisterRoutes registers certificate routes
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.ping)
	router.GET("/health", h.health)
	router.POST("/generate", h.generate)
	router.GET("/validate/:id", h.validate)
	router.GET("/download/:id", h.download)
}

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *Handler) health(c *gin.Context) {
	if err := h.service.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (h *Handler) generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.Generate(c.Request.Context(), CertificateRequest{
		CertType:      req.CertType,
		RecipientName: req.Recipient,
		ItemToProve:   req.ItemToProve,
		Language:      req.Language,
		Orientation:   pdf.ParseOrientation(req.Orientation),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCertificateType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to generate certificate", zap.Error(err), zap.String("request_id", c.GetString(RequestIDKey)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate certificate"})
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{ValidationNumber: id})
}

func (h *Handler) validate(c *gin.Context) {
	record, err := h.service.Validate(c.Request.Context(), c.Param("id"))
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"valid": true, "certificate": record})
		return
	}

	status, code := http.StatusOK, CodeInvalidValidationNumber
	message := ErrInvalidValidationNumber.Error()
	switch {
	case errors.Is(err, ErrMalformedRecord):
		code, message = CodeMalformedRecord, ErrMalformedRecord.Error()
	case errors.Is(err, ErrStoreUnreachable):
		status, code, message = http.StatusServiceUnavailable, CodeStoreUnreachable, ErrStoreUnreachable.Error()
	}

	c.JSON(status, gin.H{
		"valid":       false,
		"error":       message,
		"code":        code,
		"certificate": nil,
	})
}

func (h *Handler) download(c *gin.Context) {
	id := NormalizeValidationNumber(c.Param("id"))
	if !IsValidationNumber(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid validation number"})
		return
	}

	ctx := c.Request.Context()
	rc, err := h.service.OpenDocument(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		h.logger.Error("Failed to open certificate document", zap.String("validation_number", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read certificate"})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename="+DocumentName(id))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("Certificate download interrupted", zap.String("validation_number", id), zap.Error(err))
		return
	}

	if h.options.DeleteAfterDownload {
		if err := h.service.DeleteDocument(ctx, id); err != nil {
			h.logger.Error("Failed to delete downloaded certificate", zap.String("validation_number", id), zap.Error(err))
		}
	}
}
