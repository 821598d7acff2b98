// Package snapshot exports the state of a pre-screening check as a JSON file.
// The export is one-way; nothing reads it back.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
)

// ErrInvalidSnapshot is wrapped by Validate when the document breaks the schema
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// timeLayout is ISO-8601 in UTC with milliseconds
const timeLayout = "2006-01-02T15:04:05.000Z"

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// Document is the exported view of a classified document
type Document struct {
	Name         string             `json:"name"`
	Size         int64              `json:"size"`
	InferredType documents.Category `json:"inferredType"`
}

// Snapshot is the export artifact
type Snapshot struct {
	Applicant eligibility.ApplicantProfile `json:"applicant"`
	Lineage   eligibility.LineageFacts     `json:"lineage"`
	Docs      []Document                   `json:"docs"`
	Score     int                          `json:"score"`
	Label     eligibility.Label            `json:"label"`
	Flags     []string                     `json:"flags"`
	CreatedAt string                       `json:"createdAt"`

	created time.Time
}

// New assembles a snapshot from the inputs and the result computed from them
func New(applicant eligibility.ApplicantProfile, lineage eligibility.LineageFacts, docs []documents.ClassifiedDocument, result eligibility.Result, createdAt time.Time) Snapshot {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = Document{Name: d.File.Name, Size: d.File.Size, InferredType: d.Category}
	}

	flags := make([]string, len(result.Flags))
	copy(flags, result.Flags)

	lineage.RelationshipDegree = lineage.Degree()

	return Snapshot{
		Applicant: applicant,
		Lineage:   lineage,
		Docs:      out,
		Score:     result.Score,
		Label:     result.Label,
		Flags:     flags,
		CreatedAt: createdAt.UTC().Format(timeLayout),
		created:   createdAt,
	}
}

// FileName is the download name for a snapshot created at t
func FileName(t time.Time) string {
	return fmt.Sprintf("italian-citizenship-check-%d.json", t.UnixMilli())
}

// FileName is the download name for s
func (s Snapshot) FileName() string {
	return FileName(s.created)
}

// Validate checks s against the embedded JSON schema
func (s Snapshot) Validate() error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return validate(data)
}

func validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to load snapshot schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(errs, "; "))
	}
	return nil
}

// Encode validates s and writes it to w as indented JSON
func (s Snapshot) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := validate(data); err != nil {
		return err
	}

	data = append(data, '\n')
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// WriteFile encodes s into dir under FileName and returns the path written
func (s Snapshot) WriteFile(dir string) (string, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return "", err
	}

	path := filepath.Join(dir, s.FileName())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
