package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newSession() *Session {
	return New(nil, WithClock(func() time.Time { return fixedNow }))
}

func TestAddFilesClassifiesInOrder(t *testing.T) {
	s := newSession()

	added := s.AddFiles(
		documents.File{Name: "nascimento.pdf", Size: 10},
		documents.File{Name: "casamento.pdf", Size: 20},
	)
	require.Len(t, added, 2)
	assert.Equal(t, documents.BirthCertificate, added[0].Category)
	assert.Equal(t, documents.MarriageCertificate, added[1].Category)

	s.AddFiles(documents.File{Name: "passaporte.jpg"})

	docs := s.Documents()
	require.Len(t, docs, 3)
	assert.Equal(t, added[0].ID, docs[0].ID)
	assert.Equal(t, added[1].ID, docs[1].ID)
	assert.Equal(t, documents.Passport, docs[2].Category)
}

func TestSameFileTwiceGetsTwoIdentities(t *testing.T) {
	s := newSession()
	f := documents.File{Name: "nascimento.pdf"}

	a := s.AddFiles(f)[0]
	b := s.AddFiles(f)[0]
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, s.RemoveDocument(a.ID))
	docs := s.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, b.ID, docs[0].ID)
}

func TestRemoveDocument(t *testing.T) {
	s := newSession()
	added := s.AddFiles(
		documents.File{Name: "a_nascimento.pdf"},
		documents.File{Name: "b_casamento.pdf"},
		documents.File{Name: "c_obito.pdf"},
	)

	require.NoError(t, s.RemoveDocument(added[1].ID))

	docs := s.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, added[0].ID, docs[0].ID)
	assert.Equal(t, added[2].ID, docs[1].ID)

	assert.ErrorIs(t, s.RemoveDocument(added[1].ID), ErrDocumentNotFound)
	assert.ErrorIs(t, s.RemoveDocument(uuid.New()), ErrDocumentNotFound)
}

func TestDocumentsReturnsCopy(t *testing.T) {
	s := newSession()
	s.AddFiles(documents.File{Name: "nascimento.pdf"})

	docs := s.Documents()
	docs[0].Category = documents.Unknown

	assert.Equal(t, documents.BirthCertificate, s.Documents()[0].Category)
}

func TestEvaluateTracksMutations(t *testing.T) {
	s := newSession()
	initial := s.Evaluate()

	s.SetApplicant(eligibility.ApplicantProfile{FullName: "Ana", Email: "ana@example.com"})
	afterApplicant := s.Evaluate()
	assert.Equal(t, initial.Score+10, afterApplicant.Score)

	birth := s.AddFiles(documents.File{Name: "certidao_nascimento.pdf"})[0]
	afterBirth := s.Evaluate()
	assert.Equal(t, afterApplicant.Score+10, afterBirth.Score)
	assert.NotContains(t, afterBirth.Flags, "missing birth certificate")

	require.NoError(t, s.RemoveDocument(birth.ID))
	assert.Equal(t, afterApplicant, s.Evaluate())

	s.SetLineage(eligibility.LineageFacts{NaturalizationPrecededDescendantBirth: true})
	assert.Contains(t, s.Evaluate().Flags, "naturalization before descendant's birth — disqualifying")
}

func TestSetLineageCopiesBirthYear(t *testing.T) {
	s := newSession()
	year := 1890
	s.SetLineage(eligibility.LineageFacts{AncestorBirthYear: &year})

	year = 0
	require.NotNil(t, s.Lineage().AncestorBirthYear)
	assert.Equal(t, 1890, *s.Lineage().AncestorBirthYear)
}

func TestSnapshot(t *testing.T) {
	s := newSession()
	s.SetApplicant(eligibility.ApplicantProfile{FullName: "Ana", Email: "ana@example.com", Country: "Brazil", City: "Recife"})
	s.AddFiles(documents.File{Name: "nascimento.pdf", Size: 42})

	snap := s.Snapshot()
	assert.Equal(t, s.Evaluate().Score, snap.Score)
	assert.Equal(t, "italian-citizenship-check-1791979200000.json", snap.FileName())
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, int64(42), snap.Docs[0].Size)
	assert.NoError(t, snap.Validate())
}

func TestRequestContactRequiresDisclaimer(t *testing.T) {
	s := newSession()
	s.SetApplicant(eligibility.ApplicantProfile{FullName: "Ana", Email: "ana@example.com", Phone: "+55 81 0000"})

	_, err := s.RequestContact()
	assert.ErrorIs(t, err, ErrDisclaimerNotAcknowledged)

	s.AcknowledgeDisclaimer(true)
	req, err := s.RequestContact()
	require.NoError(t, err)
	assert.Equal(t, "Ana", req.FullName)
	assert.Equal(t, "+55 81 0000", req.Phone)
	assert.Equal(t, s.Evaluate().Score, req.Score)
	assert.Equal(t, fixedNow, req.RequestedAt)

	s.AcknowledgeDisclaimer(false)
	_, err = s.RequestContact()
	assert.ErrorIs(t, err, ErrDisclaimerNotAcknowledged)
}

func TestConcurrentMutationAndEvaluation(t *testing.T) {
	s := newSession()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.AddFiles(documents.File{Name: "nascimento.pdf"})
		}()
		go func() {
			defer wg.Done()
			s.SetApplicant(eligibility.ApplicantProfile{FullName: "Ana"})
		}()
		go func() {
			defer wg.Done()
			r := s.Evaluate()
			assert.GreaterOrEqual(t, r.Score, eligibility.MinScore)
			assert.LessOrEqual(t, r.Score, eligibility.MaxScore)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Documents(), 20)
}
