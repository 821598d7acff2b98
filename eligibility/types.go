// Package eligibility scores how ready an applicant is to file for Italian
// citizenship by descent. The score is a heuristic over presence of data and
// documents; it is advisory and never a legal assessment.
package eligibility

// ApplicantProfile is the person requesting the check
type ApplicantProfile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Country  string `json:"country"`
	City     string `json:"city"`
}

// RelationshipDegree is the number of generations to the Italian ancestor
type RelationshipDegree string

const (
	Grandparent                RelationshipDegree = "grandparent"
	GreatGrandparent           RelationshipDegree = "great-grandparent"
	GreatGreatGrandparent      RelationshipDegree = "great-great-grandparent"
	GreatGreatGreatGrandparent RelationshipDegree = "great-great-great-grandparent"
	OtherDegree                RelationshipDegree = "other"

	DefaultDegree = GreatGrandparent
)

// Valid reports whether d is one of the five known degrees
func (d RelationshipDegree) Valid() bool {
	switch d {
	case Grandparent, GreatGrandparent, GreatGreatGrandparent, GreatGreatGreatGrandparent, OtherDegree:
		return true
	}
	return false
}

// Normalize maps empty or unrecognised values to DefaultDegree
func (d RelationshipDegree) Normalize() RelationshipDegree {
	if d.Valid() {
		return d
	}
	return DefaultDegree
}

// LineageFacts describes the line of descent from the Italian ancestor
type LineageFacts struct {
	AncestorName       string             `json:"ancestorName"`
	AncestorBirthYear  *int               `json:"ancestorBirthYear,omitempty"`
	AncestorBirthPlace string             `json:"ancestorBirthPlace,omitempty"`
	RelationshipDegree RelationshipDegree `json:"relationshipDegree"`

	AnyFemaleAncestorBeforeCutoffDate     bool `json:"anyFemaleAncestorBeforeCutoffDate"`
	AnyNaturalizationInLine               bool `json:"anyNaturalizationInLine"`
	NaturalizationPrecededDescendantBirth bool `json:"naturalizationPrecededDescendantBirth"`
}

// Degree returns the relationship degree, defaulted when unset
func (l LineageFacts) Degree() RelationshipDegree {
	return l.RelationshipDegree.Normalize()
}

// birthYear returns the ancestor birth year, 0 when absent
func (l LineageFacts) birthYear() int {
	if l.AncestorBirthYear == nil || *l.AncestorBirthYear < 0 {
		return 0
	}
	return *l.AncestorBirthYear
}

// Result is the outcome of one evaluation. It is recomputed on every call.
type Result struct {
	Score int      `json:"score"`
	Label Label    `json:"label"`
	Flags []string `json:"flags"`
}

// Contribution explains how one scoring rule affected a Result
type Contribution struct {
	RuleID  string `json:"ruleId"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Matched bool   `json:"matched"`
}
