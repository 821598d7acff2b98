package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
	"github.com/liamcoop/prescreen/internal/logger"
	"github.com/liamcoop/prescreen/metrics"
	"github.com/liamcoop/prescreen/session"
)

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Rules:  s.scorer.Rules(),
	})
}

// Classify filenames without uploading content
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	files := make([]documents.File, len(req.Filenames))
	for i, name := range req.Filenames {
		files[i] = documents.File{Name: name}
	}

	docs := session.New(s.scorer).AddFiles(files...)
	metrics.ObserveClassified(docs)

	respondJSON(w, http.StatusOK, DocumentsResponse{Documents: toDocumentResponses(docs)})
}

// Classify uploaded files; only names and sizes are kept, content is discarded
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart upload", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "no files in field \"files\"", nil)
		return
	}

	files := make([]documents.File, len(headers))
	for i, fh := range headers {
		files[i] = documents.File{Name: fh.Filename, Size: fh.Size}
	}

	docs := session.New(s.scorer).AddFiles(files...)
	metrics.ObserveClassified(docs)

	respondJSON(w, http.StatusOK, DocumentsResponse{Documents: toDocumentResponses(docs)})
}

// Evaluation handler
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.checkSession(w, r)
	if !ok {
		return
	}

	explain, _ := strconv.ParseBool(r.URL.Query().Get("explain"))

	startTime := time.Now()

	var result eligibility.Result
	var contributions []eligibility.Contribution
	if explain {
		result, contributions = s.scorer.Explain(sess.Applicant(), sess.Lineage(), sess.Documents())
	} else {
		result = sess.Evaluate()
	}

	metrics.ObserveEvaluation(result, startTime)

	respondJSON(w, http.StatusOK, EvaluateResponse{
		Score:          result.Score,
		Label:          result.Label,
		Flags:          result.Flags,
		Contributions:  contributions,
		EvaluationTime: time.Since(startTime).String(),
	})
}

// Export handler, responds with the snapshot as a file download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.checkSession(w, r)
	if !ok {
		return
	}

	snap := sess.Snapshot()

	var buf bytes.Buffer
	if err := snap.Encode(&buf); err != nil {
		logger.Error("snapshot export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export snapshot", err)
		return
	}

	metrics.Exports.Inc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Contact handler, prepares a contact request once the disclaimer is accepted
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.checkSession(w, r)
	if !ok {
		return
	}

	contact, err := sess.RequestContact()
	if errors.Is(err, session.ErrDisclaimerNotAcknowledged) {
		metrics.ContactRequests.WithLabelValues("refused").Inc()
		respondError(w, http.StatusPreconditionFailed, "disclaimer not acknowledged", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to prepare contact request", err)
		return
	}

	metrics.ContactRequests.WithLabelValues("accepted").Inc()
	logger.Info("contact request prepared", "score", contact.Score)

	respondJSON(w, http.StatusAccepted, contact)
}

// checkSession decodes a CheckRequest into a request-scoped session
func (s *Server) checkSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	var req CheckRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}

	if d := req.Lineage.RelationshipDegree; d != "" && !d.Valid() {
		respondError(w, http.StatusBadRequest, "invalid relationshipDegree", fmt.Errorf("unknown degree %q", d))
		return nil, false
	}

	for i, d := range req.Documents {
		if d.Size < 0 {
			respondError(w, http.StatusBadRequest, "invalid document size", fmt.Errorf("documents[%d] %q: size %d is negative", i, d.Name, d.Size))
			return nil, false
		}
	}

	sess := session.New(s.scorer, session.WithClock(s.now))
	sess.SetApplicant(req.Applicant)
	sess.SetLineage(req.Lineage)
	sess.AddFiles(req.files()...)
	sess.AcknowledgeDisclaimer(req.DisclaimerAccepted)

	return sess, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	logger.ObserveStatus(status)
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}
