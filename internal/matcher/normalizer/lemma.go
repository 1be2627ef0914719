package normalizer

import "strings"

// irregularNouns maps plural forms that suffix rules cannot recover.
var irregularNouns = map[string]string{
	"men":        "man",
	"women":      "woman",
	"children":   "child",
	"people":     "person",
	"feet":       "foot",
	"teeth":      "tooth",
	"mice":       "mouse",
	"analyses":   "analysis",
	"diagnoses":  "diagnosis",
	"theses":     "thesis",
	"criteria":   "criterion",
	"phenomena":  "phenomenon",
	"indices":    "index",
	"matrices":   "matrix",
	"vertices":   "vertex",
	"appendices": "appendix",
	"curricula":  "curriculum",
	"media":      "medium",
	"leaves":     "leaf",
	"lives":      "life",
	"wives":      "wife",
	"knives":     "knife",
	"halves":     "half",
	"selves":     "self",
	"buses":      "bus",
	"gases":      "gas",
	"statuses":   "status",
	"viruses":    "virus",
	"bonuses":    "bonus",
	"campuses":   "campus",
	"censuses":   "census",
	"corpuses":   "corpus",
	"focuses":    "focus",
	"aliases":    "alias",
	"biases":     "bias",
	"canvases":   "canvas",
	"atlases":    "atlas",
	"lenses":     "lens",
	"goes":       "go",
	"heroes":     "hero",
	"echoes":     "echo",
	"potatoes":   "potato",
	"tomatoes":   "tomato",
	"vetoes":     "veto",
}

// invariantNouns end in "s" but are already base forms. Most are technology
// names that a dictionary-backed lemmatiser would leave untouched.
var invariantNouns = map[string]struct{}{
	"aws": {}, "js": {}, "css": {}, "ios": {}, "macos": {}, "windows": {},
	"kubernetes": {}, "jenkins": {}, "redis": {}, "express": {},
	"news": {}, "series": {}, "species": {}, "analytics": {}, "physics": {},
	"mathematics": {}, "economics": {}, "statistics": {}, "logistics": {},
	"ethics": {}, "graphics": {}, "electronics": {}, "robotics": {},
	"genetics": {}, "linguistics": {}, "sales": {}, "always": {},
	"perhaps": {}, "whereas": {}, "thus": {}, "plus": {}, "yes": {},
	"gas": {}, "bus": {}, "lens": {}, "canvas": {}, "alias": {},
	"atlas": {}, "bias": {}, "chaos": {}, "ethos": {}, "tennis": {},
}

// Lemmatize reduces an English noun to its singular base form using an
// irregular-form table followed by plural suffix rules. Words that do not look
// plural are returned unchanged.
func Lemmatize(word string) string {
	if lemma, ok := irregularNouns[word]; ok {
		return lemma
	}
	if _, ok := invariantNouns[word]; ok {
		return word
	}
	if len(word) <= 3 || !strings.HasSuffix(word, "s") {
		return word
	}
	for _, keep := range []string{"ss", "us", "is"} {
		if strings.HasSuffix(word, keep) {
			return word
		}
	}

	rules := []struct {
		suffix      string
		replacement string
		minStem     int
	}{
		{"ies", "y", 2},
		{"sses", "ss", 1},
		{"ches", "ch", 1},
		{"shes", "sh", 1},
		{"xes", "x", 1},
		{"zzes", "zz", 1},
		{"s", "", 3},
	}
	for _, rule := range rules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		stem := word[:len(word)-len(rule.suffix)]
		if len(stem) < rule.minStem {
			return word
		}
		return stem + rule.replacement
	}
	return word
}
