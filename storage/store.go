// Package storage persists serialized surrogates.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/serialization"
	"github.com/ezoic/surrogo/surrogates"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = serialization.Version
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Record is a stored surrogate configuration.
type Record struct {
	ID            string          `json:"id"`
	Kind          surrogates.Kind `json:"kind"`
	SchemaVersion int             `json:"schema_version"`
	CodecVersion  int             `json:"codec_version"`
	Payload       []byte          `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Store defines persistence operations for surrogate records.
type Store interface {
	Init(ctx context.Context) error
	SaveSurrogate(ctx context.Context, record Record) error
	GetSurrogate(ctx context.Context, id string) (Record, bool, error)
	ListSurrogates(ctx context.Context) ([]Record, error)
	DeleteSurrogate(ctx context.Context, id string) error
}

// NewRecord serializes s into a record with a fresh ID.
func NewRecord(s surrogates.Surrogate) (Record, error) {
	payload, err := serialization.Marshal(s)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:            uuid.NewString(),
		Kind:          s.Kind(),
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Surrogate decodes the stored configuration into an untrained surrogate.
func (r Record) Surrogate() (surrogates.Surrogate, error) {
	if err := checkVersion(r); err != nil {
		return nil, err
	}
	s, err := serialization.Unmarshal(r.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "decode surrogate %s", r.ID)
	}
	if s.Kind() != r.Kind {
		return nil, errors.Newf("record %s: kind %s does not match payload %s", r.ID, r.Kind, s.Kind())
	}
	return s, nil
}

func checkVersion(r Record) error {
	if r.SchemaVersion != CurrentSchemaVersion || r.CodecVersion != CurrentCodecVersion {
		return errors.Wrapf(ErrVersionMismatch, "record %s has schema %d codec %d",
			r.ID, r.SchemaVersion, r.CodecVersion)
	}
	return nil
}

func validateRecord(r Record) error {
	if r.ID == "" {
		return errors.NewValueError("storage.SaveSurrogate", "record ID is required")
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return errors.NewValueError("storage.SaveSurrogate", "record ID is not a UUID: "+r.ID)
	}
	return checkVersion(r)
}
