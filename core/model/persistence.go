package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// SaveModelToWriter writes v to w using encoding/gob.
//
// Only exported fields are persisted. Loggers, caches and other unexported
// state must be rebuilt by the loading side.
func SaveModelToWriter(v interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModelFromReader reads a gob encoded model from r into v.
func LoadModelFromReader(v interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}

// EncodeBlob returns the gob encoding of v as a byte slice. The result is an
// arbitrary binary payload and is not valid UTF-8 in general.
func EncodeBlob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := SaveModelToWriter(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBlob decodes a payload produced by EncodeBlob into v.
func DecodeBlob(blob []byte, v interface{}) error {
	if len(blob) == 0 {
		return fmt.Errorf("failed to decode model: empty payload")
	}
	return LoadModelFromReader(v, bytes.NewReader(blob))
}
