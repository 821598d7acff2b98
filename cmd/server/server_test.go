package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
	"github.com/liamcoop/prescreen/internal/config"
	"github.com/liamcoop/prescreen/snapshot"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func testServer(t *testing.T) *Server {
	t.Helper()
	return testServerWith(t, nil)
}

func testServerWith(t *testing.T, scorer *eligibility.Scorer) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:            ":0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Upload: config.UploadConfig{MaxBytes: 1 << 20},
	}
	require.NoError(t, cfg.Validate())

	s := NewServer(cfg, scorer)
	s.now = func() time.Time { return fixedNow }
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func strongCheck() CheckRequest {
	year := 1890
	return CheckRequest{
		Applicant: eligibility.ApplicantProfile{
			FullName: "Ana Souza",
			Email:    "ana@example.com",
			Country:  "Brasil",
			City:     "São Paulo",
		},
		Lineage: eligibility.LineageFacts{
			AncestorName:       "Giuseppe Rossi",
			AncestorBirthYear:  &year,
			RelationshipDegree: eligibility.GreatGrandparent,
		},
		Documents: []DocumentInput{
			{Name: "certidao_nascimento_giuseppe.pdf", Size: 1000},
			{Name: "certidao_casamento.pdf", Size: 1000},
			{Name: "certidao_negativa_naturalizacao.pdf", Size: 1000},
			{Name: "apostila_haia.pdf", Size: 1000},
			{Name: "traducao_juramentada.pdf", Size: 1000},
			{Name: "passaporte.jpg", Size: 1000},
		},
	}
}

func TestHealth(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, len(eligibility.DefaultScoreRules)+len(eligibility.DefaultFlagRules), resp.Rules)
}

func TestHealthReportsConfiguredScorer(t *testing.T) {
	scorer, err := eligibility.NewScorer(
		[]eligibility.ScoreRule{{ID: "has-passport", Expression: `"passport" in categories`, Points: 100}},
		nil,
	)
	require.NoError(t, err)

	rec := doJSON(t, testServerWith(t, scorer), http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Rules)
}

func TestClassify(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/classify", ClassifyRequest{
		Filenames: []string{"CERTIDÃO_NASCIMENTO.PDF", "certidao_negativa_naturalizacao.pdf", "foto.png"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DocumentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Documents, 3)

	assert.Equal(t, documents.BirthCertificate, resp.Documents[0].InferredType)
	assert.Equal(t, documents.NaturalizationNegativeCertificate, resp.Documents[1].InferredType)
	assert.Equal(t, documents.Unknown, resp.Documents[2].InferredType)
	assert.NotEqual(t, resp.Documents[0].ID, resp.Documents[1].ID)
}

func TestClassifyInvalidBody(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestUploadDocuments(t *testing.T) {
	s := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"rg_frente.jpg", "comprovante_endereco.pdf"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DocumentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Documents, 2)
	assert.Equal(t, documents.NationalID, resp.Documents[0].InferredType)
	assert.Equal(t, int64(len("content")), resp.Documents[0].Size)
	assert.Equal(t, documents.ProofOfAddress, resp.Documents[1].InferredType)
}

func TestUploadWithoutFiles(t *testing.T) {
	s := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "nothing here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/evaluate", strongCheck())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 88, resp.Score)
	assert.Equal(t, eligibility.LabelExcellent, resp.Label)
	assert.Empty(t, resp.Flags)
	assert.Empty(t, resp.Contributions)
	assert.NotEmpty(t, resp.EvaluationTime)
}

func TestEvaluateEmpty(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/evaluate", CheckRequest{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 12, resp.Score)
	assert.Equal(t, eligibility.LabelLow, resp.Label)
	assert.NotNil(t, resp.Flags)
}

func TestEvaluateExplain(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/evaluate?explain=true", strongCheck())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 88, resp.Score)
	require.Len(t, resp.Contributions, len(eligibility.DefaultScoreRules))

	total := 0
	for _, c := range resp.Contributions {
		if c.Matched {
			total += c.Points
		}
	}
	assert.Equal(t, 88, total)
}

func TestEvaluateRejectsUnknownDegree(t *testing.T) {
	s := testServer(t)

	check := strongCheck()
	check.Lineage.RelationshipDegree = "cousin"

	rec := doJSON(t, s, http.MethodPost, "/api/v1/evaluate", check)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyOutputFeedsEvaluate(t *testing.T) {
	s := testServer(t)

	names := make([]string, 0, 6)
	for _, d := range strongCheck().Documents {
		names = append(names, d.Name)
	}
	rec := doJSON(t, s, http.MethodPost, "/api/v1/classify", ClassifyRequest{Filenames: names})
	require.Equal(t, http.StatusOK, rec.Code)

	// post the classifier output back verbatim, ids and inferred types included
	var classified struct {
		Documents []json.RawMessage `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&classified))

	check := strongCheck()
	body := map[string]any{
		"applicant": check.Applicant,
		"lineage":   check.Lineage,
		"documents": classified.Documents,
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EvaluateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	// sizes were 0 from classify but every name is accepted, so the score holds
	assert.Equal(t, 88, resp.Score)
}

func TestEvaluateIgnoresClientInferredType(t *testing.T) {
	s := testServer(t)

	check := CheckRequest{Documents: []DocumentInput{
		{ID: "not-a-uuid", Name: "passaporte.jpg", InferredType: documents.BirthCertificate},
	}}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/evaluate", check)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Flags, "missing birth certificate")
}

func TestExportRejectsNegativeSize(t *testing.T) {
	s := testServer(t)

	for _, path := range []string{"/api/v1/export", "/api/v1/evaluate", "/api/v1/contact"} {
		t.Run(path, func(t *testing.T) {
			check := CheckRequest{
				Documents:          []DocumentInput{{Name: "nascimento.pdf", Size: -1}},
				DisclaimerAccepted: true,
			}

			rec := doJSON(t, s, http.MethodPost, path, check)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "invalid document size", resp.Error)
		})
	}
}

func TestExport(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/export", strongCheck())
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		`attachment; filename="italian-citizenship-check-1791979200000.json"`,
		rec.Header().Get("Content-Disposition"))

	var snap snapshot.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, 88, snap.Score)
	assert.Equal(t, "2026-10-14T12:00:00.000Z", snap.CreatedAt)
	require.Len(t, snap.Docs, 6)
	assert.Equal(t, documents.BirthCertificate, snap.Docs[0].InferredType)
}

func TestContactRequiresDisclaimer(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/contact", strongCheck())
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	check := strongCheck()
	check.DisclaimerAccepted = true

	rec = doJSON(t, s, http.MethodPost, "/api/v1/contact", check)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Ana Souza", resp["fullName"])
	assert.Equal(t, float64(88), resp["score"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)

	doJSON(t, s, http.MethodPost, "/api/v1/evaluate", strongCheck())

	rec := doJSON(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prescreen_evaluations_total")
}
