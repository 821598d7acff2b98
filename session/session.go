// Package session holds the mutable state of one pre-screening check:
// applicant and lineage answers, the uploaded document list and the
// disclaimer acknowledgement. It lives in memory only.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
	"github.com/liamcoop/prescreen/snapshot"
)

var (
	// ErrDocumentNotFound is returned when removing an unknown document ID
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDisclaimerNotAcknowledged guards contact requests
	ErrDisclaimerNotAcknowledged = errors.New("the disclaimer must be acknowledged before requesting contact")
)

// Session is safe for concurrent use. The scorer is always handed copies.
type Session struct {
	scorer *eligibility.Scorer
	now    func() time.Time

	applicant    eligibility.ApplicantProfile
	lineage      eligibility.LineageFacts
	docs         []documents.ClassifiedDocument
	acknowledged bool
	mu           sync.RWMutex
}

// Option customizes a Session
type Option func(*Session)

// WithClock overrides the time source used for snapshots
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates an empty session. A nil scorer means eligibility.Default().
func New(scorer *eligibility.Scorer, opts ...Option) *Session {
	if scorer == nil {
		scorer = eligibility.Default()
	}
	s := &Session{
		scorer: scorer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetApplicant replaces the applicant answers
func (s *Session) SetApplicant(a eligibility.ApplicantProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applicant = a
}

// Applicant returns the current applicant answers
func (s *Session) Applicant() eligibility.ApplicantProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicant
}

// SetLineage replaces the lineage answers
func (s *Session) SetLineage(l eligibility.LineageFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.AncestorBirthYear != nil {
		year := *l.AncestorBirthYear
		l.AncestorBirthYear = &year
	}
	s.lineage = l
}

// Lineage returns the current lineage answers
func (s *Session) Lineage() eligibility.LineageFacts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lineage
}

// AddFiles classifies each file and appends it with a fresh identity
func (s *Session) AddFiles(files ...documents.File) []documents.ClassifiedDocument {
	added := make([]documents.ClassifiedDocument, len(files))
	for i, f := range files {
		added[i] = documents.New(f)
	}

	s.mu.Lock()
	s.docs = append(s.docs, added...)
	s.mu.Unlock()

	return added
}

// RemoveDocument drops the document with the given identity
func (s *Session) RemoveDocument(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i:i], s.docs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", id, ErrDocumentNotFound)
}

// Documents returns a copy of the documents in upload order
func (s *Session) Documents() []documents.ClassifiedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentsLocked()
}

func (s *Session) documentsLocked() []documents.ClassifiedDocument {
	out := make([]documents.ClassifiedDocument, len(s.docs))
	copy(out, s.docs)
	return out
}

// AcknowledgeDisclaimer records whether the advisory disclaimer was accepted
func (s *Session) AcknowledgeDisclaimer(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acknowledged = accepted
}

// Evaluate recomputes the result from the current state
func (s *Session) Evaluate() eligibility.Result {
	applicant, lineage, docs := s.state()
	return s.scorer.Evaluate(applicant, lineage, docs)
}

// Snapshot captures the current state and its result for export
func (s *Session) Snapshot() snapshot.Snapshot {
	applicant, lineage, docs := s.state()
	result := s.scorer.Evaluate(applicant, lineage, docs)
	return snapshot.New(applicant, lineage, docs, result, s.now())
}

// ContactRequest is what the applicant hands over when asking to be contacted
type ContactRequest struct {
	FullName    string            `json:"fullName"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	Score       int               `json:"score"`
	Label       eligibility.Label `json:"label"`
	Flags       []string          `json:"flags"`
	RequestedAt time.Time         `json:"requestedAt"`
}

// RequestContact builds a contact request, refusing until the disclaimer is acknowledged
func (s *Session) RequestContact() (ContactRequest, error) {
	s.mu.RLock()
	acknowledged := s.acknowledged
	s.mu.RUnlock()

	if !acknowledged {
		return ContactRequest{}, ErrDisclaimerNotAcknowledged
	}

	applicant, lineage, docs := s.state()
	result := s.scorer.Evaluate(applicant, lineage, docs)

	return ContactRequest{
		FullName:    applicant.FullName,
		Email:       applicant.Email,
		Phone:       applicant.Phone,
		Score:       result.Score,
		Label:       result.Label,
		Flags:       result.Flags,
		RequestedAt: s.now().UTC(),
	}, nil
}

// state reads a consistent copy of the three scorer inputs
func (s *Session) state() (eligibility.ApplicantProfile, eligibility.LineageFacts, []documents.ClassifiedDocument) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicant, s.lineage, s.documentsLocked()
}
