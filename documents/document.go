package documents

import (
	"io"

	"github.com/google/uuid"
)

// File is the reference to an uploaded file. Content is an opaque handle
// owned by the caller and never read here.
type File struct {
	Name    string      `json:"name"`
	Size    int64       `json:"size"`
	Content io.ReaderAt `json:"-"`
}

// ClassifiedDocument is one upload instance with its inferred category.
// It is never mutated after New returns it.
type ClassifiedDocument struct {
	ID       uuid.UUID `json:"id"`
	File     File      `json:"file"`
	Category Category  `json:"inferredType"`
}

// New classifies f and gives it a fresh identity
func New(f File) ClassifiedDocument {
	return ClassifiedDocument{
		ID:       uuid.New(),
		File:     f,
		Category: Classify(f.Name),
	}
}

// Categories returns the distinct categories present in docs, in first-seen order
func Categories(docs []ClassifiedDocument) []Category {
	seen := make(map[Category]bool, len(docs))
	out := make([]Category, 0, len(docs))
	for _, d := range docs {
		if seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		out = append(out, d.Category)
	}
	return out
}

// AllAcceptedFormat reports whether every document has a PDF or image
// extension. It holds for an empty set.
func AllAcceptedFormat(docs []ClassifiedDocument) bool {
	for _, d := range docs {
		if !AcceptedFormat(d.File.Name) {
			return false
		}
	}
	return true
}
