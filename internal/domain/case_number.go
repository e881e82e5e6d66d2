package domain

import (
	"regexp"
)

// CaseNumber identifies a physical case within a shipment. The charset is
// restricted to letters, digits, '-', '_', '/' and '\' because case numbers
// come from hand-labelled spreadsheets and double as document keys.
type CaseNumber string

var caseNumberStrip = regexp.MustCompile(`[^A-Za-z0-9_/\\-]`)

// SanitizeCaseNumber strips every disallowed character from a raw case number.
// The result may be empty.
func SanitizeCaseNumber(raw string) string {
	return caseNumberStrip.ReplaceAllString(raw, "")
}

// ParseCaseNumber sanitizes a raw case number and rejects empty results.
// Used uniformly at import, lookup and deletion call sites.
func ParseCaseNumber(raw string) (CaseNumber, error) {
	sanitized := SanitizeCaseNumber(raw)
	if sanitized == "" {
		return "", ErrEmptyCaseNumber
	}
	return CaseNumber(sanitized), nil
}

func (c CaseNumber) String() string {
	return string(c)
}

// DedupeCaseNumbers returns the unique case numbers in first-seen order
func DedupeCaseNumbers(caseNumbers []CaseNumber) []string {
	seen := make(map[CaseNumber]struct{}, len(caseNumbers))
	result := make([]string, 0, len(caseNumbers))
	for _, cn := range caseNumbers {
		if _, ok := seen[cn]; ok {
			continue
		}
		seen[cn] = struct{}{}
		result = append(result, cn.String())
	}
	return result
}
