package utils

import (
	"regexp"
	"strings"
)

// Normalize converts a scanned or typed value to its canonical stored form:
// surrounding whitespace removed, letters uppercased. Values are normalized
// exactly once, when they are accepted into the capture form.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// SplitSlash splits a slash-joined group ("A/B/C") into its items, dropping
// empty segments.
func SplitSlash(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, "/")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// JoinSlash joins group items the way SAP expects them ("A/B/C").
func JoinSlash(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, "/")
}

// BuildSenasaPSLinea derives the combined SENASA / shipping-line seal field.
// With both values present the result is "{senasa}/PS.{psLinea}"; with only
// the line seal it is "PS.{psLinea}"; with only SENASA it is the SENASA seal.
func BuildSenasaPSLinea(senasa, psLinea string) string {
	senasa = Normalize(senasa)
	psLinea = Normalize(psLinea)
	switch {
	case senasa != "" && psLinea != "":
		return senasa + "/PS." + psLinea
	case psLinea != "":
		return "PS." + psLinea
	default:
		return senasa
	}
}

var (
	dniPattern = regexp.MustCompile(`\b\d{8}\b`)

	// Container codes as printed on booking paperwork: four letters, six or
	// seven digits, with optional spacing and a check-digit dash.
	containerPattern = regexp.MustCompile(`\b([A-Z]{4})\s?(\d{6,7})-?(\d)?\b`)
)

// ExtractDNI finds the first 8-digit national ID in free text. Returns ""
// when none is present.
func ExtractDNI(text string) string {
	return dniPattern.FindString(text)
}

// ExtractContainer finds the first container code in free text and returns
// it in canonical "AAAU1234567" form. Returns "" when none is present.
func ExtractContainer(text string) string {
	m := containerPattern.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return ""
	}
	return m[1] + m[2] + m[3]
}
