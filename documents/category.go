// Package documents infers document categories from uploaded filenames.
// Nothing here reads file content.
package documents

import "fmt"

// Category is the inferred type of an uploaded document
type Category string

const (
	BirthCertificate                  Category = "birth_certificate"
	MarriageCertificate               Category = "marriage_certificate"
	DeathCertificate                  Category = "death_certificate"
	NaturalizationCertificate         Category = "naturalization_certificate"
	NaturalizationNegativeCertificate Category = "naturalization_negative_certificate"
	Passport                          Category = "passport"
	NationalID                        Category = "national_id"
	ProofOfAddress                    Category = "proof_of_address"
	HagueApostille                    Category = "hague_apostille"
	SwornTranslation                  Category = "sworn_translation"
	Unknown                           Category = "unknown"
)

// AllCategories lists every known category, Unknown last
var AllCategories = []Category{
	BirthCertificate,
	MarriageCertificate,
	DeathCertificate,
	NaturalizationCertificate,
	NaturalizationNegativeCertificate,
	Passport,
	NationalID,
	ProofOfAddress,
	HagueApostille,
	SwornTranslation,
	Unknown,
}

// Valid reports whether c is one of the closed set of categories
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory decodes a wire value
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return Unknown, fmt.Errorf("unknown document category %q", s)
	}
	return c, nil
}
