package textproc

import "strings"

// PorterStem stems a lowercase word with the Porter algorithm as extended by
// NLTK's default PorterStemmer mode. The extensions matter: vocabularies fitted
// in Python were produced with them, and the original 1980 rules disagree on
// words like "dying", "ties" or "news".
func PorterStem(word string) string {
	if stem, ok := irregularForms[word]; ok {
		return stem
	}
	if len(word) <= 2 {
		return word
	}
	w := []byte(word)
	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return string(w)
}

var irregularForms = map[string]string{
	"skies":    "sky",
	"sky":      "sky",
	"dying":    "die",
	"lying":    "lie",
	"tying":    "tie",
	"news":     "news",
	"innings":  "inning",
	"inning":   "inning",
	"outings":  "outing",
	"outing":   "outing",
	"cannings": "canning",
	"canning":  "canning",
	"howe":     "howe",
	"proceed":  "proceed",
	"exceed":   "exceed",
	"succeed":  "succeed",
}

type rule struct {
	suffix      string
	replacement string
	cond        func(stem []byte) bool
}

func isConsonant(w []byte, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(w, i-1)
	}
	return true
}

// measure counts VC sequences in [C](VC)^m[V].
func measure(stem []byte) int {
	m := 0
	prevVowel := false
	for i := range stem {
		c := isConsonant(stem, i)
		if c && prevVowel {
			m++
		}
		prevVowel = !c
	}
	return m
}

func positiveMeasure(stem []byte) bool { return measure(stem) > 0 }

func measureGT1(stem []byte) bool { return measure(stem) > 1 }

func containsVowel(stem []byte) bool {
	for i := range stem {
		if !isConsonant(stem, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(w []byte) bool {
	n := len(w)
	return n >= 2 && w[n-1] == w[n-2] && isConsonant(w, n-1)
}

func endsCVC(w []byte) bool {
	n := len(w)
	if n >= 3 &&
		isConsonant(w, n-3) &&
		!isConsonant(w, n-2) &&
		isConsonant(w, n-1) &&
		w[n-1] != 'w' && w[n-1] != 'x' && w[n-1] != 'y' {
		return true
	}
	return n == 2 && !isConsonant(w, 0) && isConsonant(w, 1)
}

func hasSuffix(w []byte, suffix string) bool {
	return strings.HasSuffix(string(w), suffix)
}

func withSuffix(stem []byte, replacement string) []byte {
	out := make([]byte, 0, len(stem)+len(replacement))
	out = append(out, stem...)
	return append(out, replacement...)
}

// applyRules applies the first rule whose suffix matches. A matching suffix
// whose condition fails stops the search and leaves the word unchanged.
// The "*d" suffix matches any double consonant ending.
func applyRules(w []byte, rules []rule) []byte {
	for _, r := range rules {
		if r.suffix == "*d" {
			if !endsDoubleConsonant(w) {
				continue
			}
			stem := w[:len(w)-2]
			if r.cond == nil || r.cond(stem) {
				return withSuffix(stem, r.replacement)
			}
			return w
		}
		if !hasSuffix(w, r.suffix) {
			continue
		}
		stem := w[:len(w)-len(r.suffix)]
		if r.cond == nil || r.cond(stem) {
			return withSuffix(stem, r.replacement)
		}
		return w
	}
	return w
}

func step1a(w []byte) []byte {
	if len(w) == 4 && hasSuffix(w, "ies") {
		return withSuffix(w[:1], "ie")
	}
	return applyRules(w, []rule{
		{"sses", "ss", nil},
		{"ies", "i", nil},
		{"ss", "ss", nil},
		{"s", "", nil},
	})
}

func step1b(w []byte) []byte {
	if hasSuffix(w, "ied") {
		if len(w) == 4 {
			return withSuffix(w[:1], "ie")
		}
		return withSuffix(w[:len(w)-3], "i")
	}
	if hasSuffix(w, "eed") {
		stem := w[:len(w)-3]
		if measure(stem) > 0 {
			return withSuffix(stem, "ee")
		}
		return w
	}

	var stem []byte
	matched := false
	for _, suffix := range []string{"ed", "ing"} {
		if hasSuffix(w, suffix) {
			s := w[:len(w)-len(suffix)]
			if containsVowel(s) {
				stem = s
				matched = true
				break
			}
		}
	}
	if !matched {
		return w
	}

	last := stem[len(stem)-1]
	return applyRules(stem, []rule{
		{"at", "ate", nil},
		{"bl", "ble", nil},
		{"iz", "ize", nil},
		{"*d", string(last), func([]byte) bool {
			return last != 'l' && last != 's' && last != 'z'
		}},
		{"", "e", func(s []byte) bool {
			return measure(s) == 1 && endsCVC(s)
		}},
	})
}

func step1c(w []byte) []byte {
	return applyRules(w, []rule{
		{"y", "i", func(stem []byte) bool {
			return len(stem) > 1 && isConsonant(stem, len(stem)-1)
		}},
	})
}

func step2(w []byte) []byte {
	if hasSuffix(w, "alli") && positiveMeasure(w[:len(w)-4]) {
		return step2(withSuffix(w[:len(w)-4], "al"))
	}
	return applyRules(w, []rule{
		{"ational", "ate", positiveMeasure},
		{"tional", "tion", positiveMeasure},
		{"enci", "ence", positiveMeasure},
		{"anci", "ance", positiveMeasure},
		{"izer", "ize", positiveMeasure},
		{"bli", "ble", positiveMeasure},
		{"alli", "al", positiveMeasure},
		{"entli", "ent", positiveMeasure},
		{"eli", "e", positiveMeasure},
		{"ousli", "ous", positiveMeasure},
		{"ization", "ize", positiveMeasure},
		{"ation", "ate", positiveMeasure},
		{"ator", "ate", positiveMeasure},
		{"alism", "al", positiveMeasure},
		{"iveness", "ive", positiveMeasure},
		{"fulness", "ful", positiveMeasure},
		{"ousness", "ous", positiveMeasure},
		{"aliti", "al", positiveMeasure},
		{"iviti", "ive", positiveMeasure},
		{"biliti", "ble", positiveMeasure},
		{"fulli", "ful", positiveMeasure},
		// the 'l' stays with the stem so short stems like "geo" qualify
		{"logi", "log", func([]byte) bool { return positiveMeasure(w[:len(w)-3]) }},
	})
}

func step3(w []byte) []byte {
	return applyRules(w, []rule{
		{"icate", "ic", positiveMeasure},
		{"ative", "", positiveMeasure},
		{"alize", "al", positiveMeasure},
		{"iciti", "ic", positiveMeasure},
		{"ical", "ic", positiveMeasure},
		{"ful", "", positiveMeasure},
		{"ness", "", positiveMeasure},
	})
}

func step4(w []byte) []byte {
	return applyRules(w, []rule{
		{"al", "", measureGT1},
		{"ance", "", measureGT1},
		{"ence", "", measureGT1},
		{"er", "", measureGT1},
		{"ic", "", measureGT1},
		{"able", "", measureGT1},
		{"ible", "", measureGT1},
		{"ant", "", measureGT1},
		{"ement", "", measureGT1},
		{"ment", "", measureGT1},
		{"ent", "", measureGT1},
		{"ion", "", func(stem []byte) bool {
			if measure(stem) <= 1 {
				return false
			}
			last := stem[len(stem)-1]
			return last == 's' || last == 't'
		}},
		{"ou", "", measureGT1},
		{"ism", "", measureGT1},
		{"ate", "", measureGT1},
		{"iti", "", measureGT1},
		{"ous", "", measureGT1},
		{"ive", "", measureGT1},
		{"ize", "", measureGT1},
	})
}

func step5a(w []byte) []byte {
	if !hasSuffix(w, "e") {
		return w
	}
	stem := w[:len(w)-1]
	m := measure(stem)
	if m > 1 || (m == 1 && !endsCVC(stem)) {
		return stem
	}
	return w
}

func step5b(w []byte) []byte {
	return applyRules(w, []rule{
		{"ll", "l", func([]byte) bool { return measure(w[:len(w)-1]) > 1 }},
	})
}
