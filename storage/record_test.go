package storage

import (
	"errors"
	"testing"
)

func TestRecordRoundTripAndValidation(t *testing.T) {
	rec := Record{UserID: "u1", DisplayName: "A", Email: "a@example.com", Role: "parent"}

	raw, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != rec {
		t.Fatalf("expected %+v, got %+v", rec, got)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
	}{
		{name: "missing user id", rec: Record{DisplayName: "A", Role: "parent"}},
		{name: "missing role", rec: Record{UserID: "u1", DisplayName: "A"}},
		{name: "bad email", rec: Record{UserID: "u1", DisplayName: "A", Role: "parent", Email: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EncodeRecord(tc.rec); !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}

	if _, err := DecodeRecord("{not json"); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for corrupt blob, got %v", err)
	}
}
