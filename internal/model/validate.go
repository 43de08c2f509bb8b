package model

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed snapshot.schema.json
var snapshotSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func snapshotSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(snapshotSchemaJSON))
	})
	return schema, schemaErr
}

// ValidateSnapshot validates a raw /latest body against snapshot.schema.json.
func ValidateSnapshot(raw []byte) error {
	s, err := snapshotSchema()
	if err != nil {
		return errors.Wrap(err, "load snapshot schema")
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.Wrap(err, "parse snapshot")
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.Newf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// DecodeSnapshot validates raw and decodes it into a ResumeSnapshot.
func DecodeSnapshot(raw []byte) (*ResumeSnapshot, error) {
	if err := ValidateSnapshot(raw); err != nil {
		return nil, err
	}
	var snap ResumeSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snap, nil
}
