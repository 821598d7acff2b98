package main

import (
	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
)

// API Request and Response Models with Swagger annotations

// ClassifyRequest represents the request body for classifying filenames
type ClassifyRequest struct {
	Filenames []string `json:"filenames" example:"certidao_nascimento.pdf,passaporte.jpg" binding:"required"`
} // @name ClassifyRequest

// DocumentResponse represents a classified document in API responses
type DocumentResponse struct {
	ID           string             `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name         string             `json:"name" example:"certidao_nascimento.pdf"`
	Size         int64              `json:"size" example:"204800"`
	InferredType documents.Category `json:"inferredType" example:"birth_certificate"`
} // @name DocumentResponse

// DocumentsResponse represents the response for classification endpoints
type DocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
} // @name DocumentsResponse

// DocumentInput is a document sent back for evaluation. It accepts the
// DocumentResponse shape; id and inferredType are ignored and re-derived.
type DocumentInput struct {
	ID           string             `json:"id,omitempty"`
	Name         string             `json:"name" example:"certidao_nascimento.pdf"`
	Size         int64              `json:"size" example:"204800"`
	InferredType documents.Category `json:"inferredType,omitempty"`
} // @name DocumentInput

// CheckRequest carries the full state of a check; every evaluation endpoint accepts it
type CheckRequest struct {
	Applicant          eligibility.ApplicantProfile `json:"applicant"`
	Lineage            eligibility.LineageFacts     `json:"lineage"`
	Documents          []DocumentInput              `json:"documents"`
	DisclaimerAccepted bool                         `json:"disclaimerAccepted,omitempty" example:"true"`
} // @name CheckRequest

// EvaluateResponse represents the response for an evaluation
type EvaluateResponse struct {
	Score          int                        `json:"score" example:"88"`
	Label          eligibility.Label          `json:"label" example:"Excellent — high likelihood of viability"`
	Flags          []string                   `json:"flags"`
	Contributions  []eligibility.Contribution `json:"contributions,omitempty"`
	EvaluationTime string                     `json:"evaluationTime" example:"180µs"`
} // @name EvaluateResponse

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid request body"`
	Details string `json:"details,omitempty"`
} // @name ErrorResponse

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	Rules  int    `json:"rules" example:"22"`
} // @name HealthResponse

func (r CheckRequest) files() []documents.File {
	files := make([]documents.File, len(r.Documents))
	for i, d := range r.Documents {
		files[i] = documents.File{Name: d.Name, Size: d.Size}
	}
	return files
}

func toDocumentResponses(docs []documents.ClassifiedDocument) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = DocumentResponse{
			ID:           d.ID.String(),
			Name:         d.File.Name,
			Size:         d.File.Size,
			InferredType: d.Category,
		}
	}
	return out
}
