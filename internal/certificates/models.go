package certificates

import (
	"errors"
	"strings"

	"trustmebro/cert-service/pkg/pdf"
)

// CertType is the kind of certificate being issued
type CertType string

const (
	CertTypeAchievement CertType = "achievement"
	CertTypeCompletion  CertType = "completion"
	CertTypeOwnership   CertType = "ownership"
)

var (
	ErrInvalidCertificateType  = errors.New("invalid certificate type")
	ErrInvalidValidationNumber = errors.New("invalid validation number")
	ErrMalformedRecord         = errors.New("malformed validation record")
	ErrStoreUnreachable        = errors.New("validation store unreachable")
	ErrDocumentNotFound        = errors.New("document not found")
)

// ParseCertType matches value case-insensitively against the known types
func ParseCertType(value string) (CertType, error) {
	switch t := CertType(strings.ToLower(strings.TrimSpace(value))); t {
	case CertTypeAchievement, CertTypeCompletion, CertTypeOwnership:
		return t, nil
	default:
		return "", ErrInvalidCertificateType
	}
}

// CertificateRequest describes the certificate to issue
type CertificateRequest struct {
	CertType      string
	RecipientName string
	ItemToProve   string
	Language      string
	Orientation   pdf.Orientation
}

// GenerateRequest is the POST /generate body
type GenerateRequest struct {
	CertType    string `json:"cert_type" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	ItemToProve string `json:"item_to_prove" binding:"required"`
	Language    string `json:"language"`
	Orientation string `json:"orientation"`
}

// GenerateResponse is the POST /generate reply
type GenerateResponse struct {
	ValidationNumber string `json:"validation_number"`
}

// Validation failure codes returned with valid:false
const (
	CodeInvalidValidationNumber = "invalid_validation_number"
	CodeMalformedRecord         = "malformed_record"
	CodeStoreUnreachable        = "store_unreachable"
)

// validationNumberLength is the hex length of a SHA-256 digest
const validationNumberLength = 64

// IsValidationNumber reports whether id has the shape of a validation number
func IsValidationNumber(id string) bool {
	if len(id) != validationNumberLength {
		return false
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// NormalizeValidationNumber folds a caller-supplied id to the canonical lowercase form
func NormalizeValidationNumber(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// DocumentName is the storage name of a rendered certificate
func DocumentName(id string) string {
	return id + ".pdf"
}
