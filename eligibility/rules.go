package eligibility

// ScoreRule adds Points to the score when Expression holds
type ScoreRule struct {
	ID         string
	Name       string
	Expression string
	Points     int
}

// FlagRule appends Message to the flags when Expression holds
type FlagRule struct {
	ID         string
	Expression string
	Message    string
}

// Expressions are CEL over the facts built in facts.go:
//
//	applicant  {fullName, email, phone, country, city}            trimmed strings
//	lineage    {ancestorName, ancestorBirthYear, ancestorBirthPlace,
//	            relationshipDegree, anyFemaleAncestorBeforeCutoffDate,
//	            anyNaturalizationInLine, naturalizationPrecededDescendantBirth}
//	documents  [{name, category, acceptedFormat}]
//	categories distinct categories present
var DefaultScoreRules = []ScoreRule{
	{"applicant.name", "Applicant full name", `applicant.fullName != ""`, 5},
	{"applicant.email", "Applicant email", `applicant.email != ""`, 5},
	{"applicant.country", "Applicant country", `applicant.country != ""`, 3},
	{"applicant.city", "Applicant city", `applicant.city != ""`, 3},

	{"lineage.ancestor_name", "Ancestor name", `lineage.ancestorName != ""`, 10},
	{"lineage.ancestor_birth_year", "Ancestor birth year", `lineage.ancestorBirthYear > 0`, 6},
	{"lineage.relationship_degree", "Relationship degree", `lineage.relationshipDegree != ""`, 6},

	{"docs.birth", "Birth certificate", `"birth_certificate" in categories`, 10},
	{"docs.marriage", "Marriage certificate", `"marriage_certificate" in categories`, 8},
	{"docs.death", "Death certificate", `"death_certificate" in categories`, 6},
	{"docs.naturalization", "Proof of (non-)naturalization",
		`"naturalization_negative_certificate" in categories || "naturalization_certificate" in categories`, 12},
	{"docs.apostille", "Hague apostille", `"hague_apostille" in categories`, 8},
	{"docs.translation", "Sworn translation", `"sworn_translation" in categories`, 6},
	{"docs.format", "PDF or image formats only", `documents.all(d, d.acceptedFormat)`, 6},

	{"risk.naturalization_in_line", "Naturalization in the line", `lineage.anyNaturalizationInLine`, -8},
	{"risk.naturalization_before_birth", "Naturalization before descendant's birth", `lineage.naturalizationPrecededDescendantBirth`, -25},
	{"risk.maternal_line", "Female ancestor before 1948", `lineage.anyFemaleAncestorBeforeCutoffDate`, -8},
}

// DefaultFlagRules are reported in this order
var DefaultFlagRules = []FlagRule{
	{"flag.missing_birth", `!("birth_certificate" in categories)`,
		"missing birth certificate"},
	{"flag.missing_marriage", `!("marriage_certificate" in categories)`,
		"missing marriage certificate for some generation"},
	{"flag.missing_naturalization", `!("naturalization_certificate" in categories) && !("naturalization_negative_certificate" in categories)`,
		"missing proof of (non-)naturalization of the Italian ancestor"},
	{"flag.naturalization_before_birth", `lineage.naturalizationPrecededDescendantBirth`,
		"naturalization before descendant's birth — disqualifying"},
	{"flag.maternal_line", `lineage.anyFemaleAncestorBeforeCutoffDate`,
		"pre-1948 maternal line — requires judicial route"},
}
