package textproc

import "strings"

// Normalize turns a raw headline into lowercase alphabetic tokens.
// Every character outside a-z/A-Z acts as a separator, so digits,
// punctuation and non-ASCII letters never reach the stemmer.
func Normalize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return !isASCIILetter(r) })
	if len(fields) == 0 {
		return []string{}
	}
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// NormalizeString returns the normalized tokens joined by single spaces.
func NormalizeString(s string) string {
	return strings.Join(Normalize(s), " ")
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
