package documents

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// classifierRule maps a filename predicate to a category
type classifierRule struct {
	category Category
	match    func(name string) bool
}

// classifierRules is evaluated top to bottom, first match wins.
// The compound negative-naturalization rule must precede the plain
// naturalization rule since every name it matches also contains "naturaliza".
var classifierRules = []classifierRule{
	{NaturalizationNegativeCertificate, containsAll("negativa", "naturaliza")},
	{BirthCertificate, containsAny("nascimento")},
	{MarriageCertificate, containsAny("casamento")},
	{DeathCertificate, containsAny("obito")},
	{NaturalizationCertificate, containsAny("naturaliza")},
	{Passport, containsAny("passaporte")},
	{NationalID, containsAny("rg", "cnh", "identidade")},
	{ProofOfAddress, containsAny("endereco")},
	{HagueApostille, containsAny("apostila", "haia", "haya")},
	{SwornTranslation, containsAny("tradu")},
}

// Classify infers a category from a filename. Matching ignores case and
// diacritics; names matching no rule are Unknown.
func Classify(filename string) Category {
	name := normalize(filename)
	for _, rule := range classifierRules {
		if rule.match(name) {
			return rule.category
		}
	}
	return Unknown
}

var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// AcceptedFormat reports whether filename carries a PDF or image extension
func AcceptedFormat(filename string) bool {
	return acceptedExtensions[strings.ToLower(path.Ext(filename))]
}

// normalize lowercases s and strips combining marks, so "Óbito" becomes "obito"
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func containsAny(keywords ...string) func(string) bool {
	return func(name string) bool {
		for _, k := range keywords {
			if strings.Contains(name, k) {
				return true
			}
		}
		return false
	}
}

func containsAll(keywords ...string) func(string) bool {
	return func(name string) bool {
		for _, k := range keywords {
			if !strings.Contains(name, k) {
				return false
			}
		}
		return true
	}
}
