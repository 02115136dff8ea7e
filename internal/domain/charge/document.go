package charge

import "strings"

// DocumentKind is the kind of a Brazilian tax id.
type DocumentKind string

const (
	DocumentUnknown    DocumentKind = ""
	DocumentIndividual DocumentKind = "cpf"
	DocumentCorporate  DocumentKind = "cnpj"
)

const (
	corporateDigits  = 14
	individualDigits = 11
)

// Candidate metadata keys, in priority order. Several generations of
// checkout field plugins stored the same value under different names.
var (
	corporateDocumentKeys  = []string{"billing_cnpj", "_billing_cnpj", "cnpj"}
	individualDocumentKeys = []string{"billing_cpf", "_billing_cpf", "cpf"}
	genericDocumentKey     = "billing_document"
)

// ExtractDocument finds the customer's tax id in billing metadata.
// Corporate candidates are checked before individual ones; values of any
// other length fall through to the next candidate.
func ExtractDocument(meta map[string]string) (DocumentKind, string) {
	for _, key := range corporateDocumentKeys {
		if digits := Digits(meta[key]); len(digits) == corporateDigits {
			return DocumentCorporate, digits
		}
	}
	for _, key := range individualDocumentKeys {
		if digits := Digits(meta[key]); len(digits) == individualDigits {
			return DocumentIndividual, digits
		}
	}
	return ClassifyDocument(meta[genericDocumentKey])
}

// ClassifyDocument infers the document kind from its digit count.
func ClassifyDocument(value string) (DocumentKind, string) {
	digits := Digits(value)
	switch len(digits) {
	case corporateDigits:
		return DocumentCorporate, digits
	case individualDigits:
		return DocumentIndividual, digits
	default:
		return DocumentUnknown, ""
	}
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
