package certificates

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"trustmebro/cert-service/internal/locale"
	"trustmebro/cert-service/internal/metrics"
	"trustmebro/cert-service/internal/notifications"
	"trustmebro/cert-service/internal/validation"
	"trustmebro/cert-service/pkg/pdf"
	"trustmebro/cert-service/pkg/storage"
)

// AssetPicker chooses badge and signature images
type AssetPicker interface {
	Badge(item string) string
	Signature() string
}

// Metrics receives service events
type Metrics interface {
	CertificateGenerated(certType, orientation string, scale float64)
	GenerateFailed()
	Validation(outcome string)
	Download()
}

// ServiceConfig holds issuance settings
type ServiceConfig struct {
	BaseURL   string
	RecordTTL time.Duration
}

// Service issues and validates certificates
type Service struct {
	store     validation.Store
	documents storage.DocumentStore
	picker    AssetPicker
	generator pdf.Generator
	publisher notifications.Publisher
	metrics   Metrics
	logger    *zap.Logger
	config    ServiceConfig
	now       func() time.Time
}

// NewService creates a certificate service
func NewService(
	config ServiceConfig,
	store validation.Store,
	documents storage.DocumentStore,
	picker AssetPicker,
	generator pdf.Generator,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		documents: documents,
		picker:    picker,
		generator: generator,
		publisher: notifications.NopPublisher{},
		metrics:   nopMetrics{},
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// WithPublisher sets the issuance event publisher
func (s *Service) WithPublisher(publisher notifications.Publisher) *Service {
	s.publisher = publisher
	return s
}

// WithMetrics sets the metrics recorder
func (s *Service) WithMetrics(metrics Metrics) *Service {
	s.metrics = metrics
	return s
}

// NewValidationNumber derives the identifier of a certificate issued at instant
func NewValidationNumber(recipientName, itemToProve string, instant time.Time) string {
	h := sha256.New()
	h.Write([]byte(recipientName))
	h.Write([]byte(itemToProve))
	h.Write([]byte(instant.Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidationURL is the address encoded into a certificate's QR code
func (s *Service) ValidationURL(id string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/validate/" + id
}

// Generate issues a certificate: it stores the validation record, renders
// the PDF and saves it as {id}.pdf. Store and storage failures are returned as-is.
func (s *Service) Generate(ctx context.Context, req CertificateRequest) (string, error) {
	certType, err := ParseCertType(req.CertType)
	if err != nil {
		return "", err
	}

	lang := locale.Normalize(req.Language)
	issuedAt := s.now()
	id := NewValidationNumber(req.RecipientName, req.ItemToProve, issuedAt)
	issuedOn := locale.IssuedOn(lang, issuedAt)

	logger := s.logger.With(
		zap.String("validation_number", id),
		zap.String("cert_type", string(certType)),
	)

	record := validation.Record{
		RecipientName: req.RecipientName,
		CertType:      string(certType),
		ItemToProve:   req.ItemToProve,
		IssuedOn:      issuedOn,
		Language:      lang,
	}
	if err := s.store.Put(ctx, id, record, s.config.RecordTTL); err != nil {
		s.metrics.GenerateFailed()
		logger.Error("Failed to store validation record", zap.Error(err))
		return "", fmt.Errorf("failed to store validation record: %w", err)
	}

	content := pdf.CertificateContent{
		Orientation:       pdf.ParseOrientation(string(req.Orientation)),
		BadgePath:         s.picker.Badge(req.ItemToProve),
		SignaturePath:     s.picker.Signature(),
		Title:             locale.Translate(lang, locale.TitleKey(string(certType))),
		Certifies:         locale.Translate(lang, locale.KeyCertifies),
		Recipient:         req.RecipientName,
		Helper:            locale.Translate(lang, locale.HelperKey(string(certType))),
		Item:              req.ItemToProve,
		IssuedOn:          issuedOn,
		SignatureCaption:  locale.Translate(lang, locale.KeySignatureCaption),
		ValidationCaption: locale.Translate(lang, locale.KeyValidationNumber) + ": " + id,
		QRPayload:         s.ValidationURL(id),
	}

	result, err := s.generator.Generate(ctx, content)
	if err != nil {
		s.metrics.GenerateFailed()
		logger.Error("Failed to render certificate", zap.Error(err))
		return "", fmt.Errorf("failed to render certificate: %w", err)
	}

	if err := s.documents.Save(ctx, DocumentName(id), bytes.NewReader(result.Data)); err != nil {
		s.metrics.GenerateFailed()
		logger.Error("Failed to save certificate document", zap.Error(err))
		return "", fmt.Errorf("failed to save certificate document: %w", err)
	}

	s.metrics.CertificateGenerated(string(certType), string(content.Orientation), result.Scale)
	logger.Info("Certificate issued",
		zap.String("language", lang),
		zap.String("orientation", string(content.Orientation)),
		zap.Float64("scale", result.Scale),
		zap.Bool("badge", result.HasBadge),
		zap.Bool("signature", result.HasSign),
	)
	if result.MissingGlyphs {
		logger.Warn("Certificate text needs a Unicode font; configure assets.font_path",
			zap.String("language", lang),
		)
	}

	event := notifications.IssuanceEvent{
		Type:             notifications.EventCertificateIssued,
		ValidationNumber: id,
		CertType:         string(certType),
		RecipientName:    req.RecipientName,
		ItemToProve:      req.ItemToProve,
		Language:         lang,
		IssuedAt:         issuedAt,
		ValidationURL:    content.QRPayload,
	}
	if err := s.publisher.PublishIssued(ctx, event); err != nil {
		logger.Warn("Failed to publish issuance event", zap.Error(err))
	}

	return id, nil
}

// Validate looks up the record behind a validation number
func (s *Service) Validate(ctx context.Context, id string) (*validation.Record, error) {
	id = NormalizeValidationNumber(id)
	if !IsValidationNumber(id) {
		s.metrics.Validation(metrics.OutcomeNotFound)
		return nil, ErrInvalidValidationNumber
	}

	record, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		s.metrics.Validation(metrics.OutcomeValid)
		return record, nil
	case errors.Is(err, validation.ErrNotFound):
		s.metrics.Validation(metrics.OutcomeNotFound)
		return nil, ErrInvalidValidationNumber
	case errors.Is(err, validation.ErrMalformed):
		s.metrics.Validation(metrics.OutcomeMalformed)
		s.logger.Warn("Malformed validation record", zap.String("validation_number", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	default:
		s.metrics.Validation(metrics.OutcomeUnreachable)
		s.logger.Error("Validation store unreachable", zap.String("validation_number", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
}

// OpenDocument returns the rendered PDF of a certificate
func (s *Service) OpenDocument(ctx context.Context, id string) (io.ReadCloser, error) {
	id = NormalizeValidationNumber(id)
	if !IsValidationNumber(id) {
		return nil, ErrDocumentNotFound
	}

	rc, err := s.documents.Open(ctx, DocumentName(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to open certificate document: %w", err)
	}
	s.metrics.Download()
	return rc, nil
}

// DeleteDocument removes the rendered PDF; the validation record is untouched
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	id = NormalizeValidationNumber(id)
	if !IsValidationNumber(id) {
		return ErrDocumentNotFound
	}
	return s.documents.Delete(ctx, DocumentName(id))
}

// Ping checks the validation store
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

type nopMetrics struct{}

func (nopMetrics) CertificateGenerated(string, string, float64) {}
func (nopMetrics) GenerateFailed()                              {}
func (nopMetrics) Validation(string)                            {}
func (nopMetrics) Download()                                    {}
