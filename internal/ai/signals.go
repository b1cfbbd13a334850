package ai

import (
	"encoding/json"
	"strings"
)

// Signals are the structured object/person signals derived from the vision
// description. Confidence is fractional in [0,1] (the event-level
// confidence_score is percent; the two scales are independent).
type Signals struct {
	PersonDetected bool
	Confidence     float64
	Objects        []string
}

var personTerms = []string{
	"person", "people", "man", "woman", "child", "pedestrian", "someone", "figure",
}

var objectVocabulary = []string{
	"person", "car", "truck", "bus", "motorcycle", "bicycle",
	"cat", "dog", "bird", "squirrel", "deer",
	"package", "bag", "box", "umbrella", "stroller",
}

// ExtractSignals scans a vision description for the known vocabulary. The
// model host returns free text; keyword extraction keeps the derived
// columns deterministic and testable.
func ExtractSignals(description string) Signals {
	lower := strings.ToLower(description)

	var s Signals
	seen := map[string]bool{}
	for _, obj := range objectVocabulary {
		if containsWord(lower, obj) && !seen[obj] {
			seen[obj] = true
			s.Objects = append(s.Objects, obj)
		}
	}
	for _, term := range personTerms {
		if containsWord(lower, term) {
			s.PersonDetected = true
			break
		}
	}

	// Confidence is a coarse signal strength: more vocabulary hits in the
	// description means a more concrete sighting.
	switch {
	case len(s.Objects) >= 3:
		s.Confidence = 0.9
	case len(s.Objects) == 2:
		s.Confidence = 0.75
	case len(s.Objects) == 1:
		s.Confidence = 0.6
	default:
		s.Confidence = 0.3
	}
	if s.PersonDetected && s.Confidence < 0.7 {
		s.Confidence = 0.7
	}
	return s
}

// ObjectsJSON renders the object list for the ai_objects column.
func (s Signals) ObjectsJSON() string {
	if len(s.Objects) == 0 {
		return "[]"
	}
	b, err := json.Marshal(s.Objects)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(haystack[start-1])
		afterOK := end == len(haystack) || !isLetter(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
