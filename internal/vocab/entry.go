package vocab

import "strings"

// MaxSummaryRunes caps the one-line summary length.
const MaxSummaryRunes = 180

// Separator joins summary clauses.
const Separator = "；"

// Entry is a vocabulary card as produced by the word enhancement pipeline.
type Entry struct {
	Phonetic       string   `json:"phonetic"`
	PartOfSpeech   string   `json:"partOfSpeech"`
	Definition     string   `json:"definition"`
	Brief          string   `json:"brief"`
	ChineseMeaning string   `json:"chineseMeaning"`
	Collocations   []string `json:"collocations"`
	Example        string   `json:"example"`
	MemoryTip      string   `json:"memoryTip"`
	Association    string   `json:"association"`
}

// DefaultEntry returns the canned card served by the mock completion endpoint.
func DefaultEntry() Entry {
	return Entry{
		Phonetic:       "dɪˈsɪʒən",
		PartOfSpeech:   "n.",
		Definition:     "A choice made after consideration.",
		Brief:          "A choice; resolution.",
		ChineseMeaning: "决定；抉择",
		Collocations: []string{
			"make a decision",
			"final decision",
		},
		Example:     "He finally made a decision.",
		MemoryTip:   "de- + cision (cut) → decide",
		Association: "choose between options",
	}
}

// Summary renders the entry as a single line: lead clause (brief, else
// definition), Chinese meaning, phonetic and part of speech, skipping empty
// fields. The result is cut to MaxSummaryRunes runes with no marker.
func (e Entry) Summary() string {
	lead := strings.TrimSpace(e.Brief)
	if lead == "" {
		lead = strings.TrimSpace(e.Definition)
	}

	candidates := []string{
		lead,
		strings.TrimSpace(e.ChineseMeaning),
		strings.TrimSpace(e.Phonetic),
		strings.TrimSpace(e.PartOfSpeech),
	}
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != "" {
			parts = append(parts, c)
		}
	}

	return truncateRunes(strings.Join(parts, Separator), MaxSummaryRunes)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
