package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means no record exists under the validation number
	ErrNotFound = errors.New("validation record not found")
	// ErrMalformed means a value exists but is empty or not a well-formed record
	ErrMalformed = errors.New("malformed validation record")
	// ErrUnreachable means the backing store could not be reached
	ErrUnreachable = errors.New("validation store unreachable")
)

// Record is the persisted fact sheet of an issued certificate
type Record struct {
	RecipientName string `json:"recipient_name"`
	CertType      string `json:"cert_type"`
	ItemToProve   string `json:"item_to_prove"`
	IssuedOn      string `json:"issued_on"`
	Language      string `json:"language,omitempty"`
}

var requiredFields = []string{"recipient_name", "cert_type", "item_to_prove", "issued_on"}

// Store is a key → record mapping with per-record expiry
type Store interface {
	// Put writes record under id, overwriting any existing value
	Put(ctx context.Context, id string, record Record, ttl time.Duration) error
	// Get returns the record or ErrNotFound / ErrMalformed / ErrUnreachable
	Get(ctx context.Context, id string) (*Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// EncodeRecord serialises a record for storage
func EncodeRecord(record Record) ([]byte, error) {
	return json.Marshal(record)
}

// DecodeRecord parses a stored value, reporting ErrMalformed for empty,
// non-JSON or incomplete payloads
func DecodeRecord(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrMalformed)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrMalformed, err)
	}
	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformed, f)
		}
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &record, nil
}

func unreachable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnreachable, op, err)
}
