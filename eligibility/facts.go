package eligibility

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/prescreen/documents"
)

// newEnv declares the variables rule expressions may reference
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("applicant", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("lineage", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("documents", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
		cel.Variable("categories", cel.ListType(cel.StringType)),
	)
}

// buildFacts flattens the inputs into the activation the rules run against.
// Every key is always populated so no rule can fail on a missing field.
func buildFacts(a ApplicantProfile, l LineageFacts, docs []documents.ClassifiedDocument) map[string]any {
	categories := documents.Categories(docs)
	categoryNames := make([]string, len(categories))
	for i, c := range categories {
		categoryNames[i] = string(c)
	}

	docFacts := make([]map[string]any, len(docs))
	for i, d := range docs {
		docFacts[i] = map[string]any{
			"name":           d.File.Name,
			"category":       string(d.Category),
			"acceptedFormat": documents.AcceptedFormat(d.File.Name),
		}
	}

	return map[string]any{
		"applicant": map[string]string{
			"fullName": strings.TrimSpace(a.FullName),
			"email":    strings.TrimSpace(a.Email),
			"phone":    strings.TrimSpace(a.Phone),
			"country":  strings.TrimSpace(a.Country),
			"city":     strings.TrimSpace(a.City),
		},
		"lineage": map[string]any{
			"ancestorName":                          strings.TrimSpace(l.AncestorName),
			"ancestorBirthYear":                     l.birthYear(),
			"ancestorBirthPlace":                    strings.TrimSpace(l.AncestorBirthPlace),
			"relationshipDegree":                    string(l.Degree()),
			"anyFemaleAncestorBeforeCutoffDate":     l.AnyFemaleAncestorBeforeCutoffDate,
			"anyNaturalizationInLine":               l.AnyNaturalizationInLine,
			"naturalizationPrecededDescendantBirth": l.NaturalizationPrecededDescendantBirth,
		},
		"documents":  docFacts,
		"categories": categoryNames,
	}
}
