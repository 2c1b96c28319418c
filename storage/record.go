package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned when a session record fails validation or
// cannot be decoded.
var ErrInvalidRecord = errors.New("invalid session record")

// Record is the signed-in user's identity as persisted under the primary key.
type Record struct {
	UserID      string `json:"userId" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"required,max=256"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Role        string `json:"role" validate:"required,max=64"`
}

var recordValidator = validator.New()

// Validate checks required fields and formats.
func (r Record) Validate() error {
	if err := recordValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// EncodeRecord validates and serializes r.
func EncodeRecord(r Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return string(data), nil
}

// DecodeRecord parses and validates a serialized record.
func DecodeRecord(raw string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
