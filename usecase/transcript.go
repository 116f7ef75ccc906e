package usecase

import (
	"regexp"
	"strings"
)

// TranscriptCleaner removes recorder control phrases from a transcript
type TranscriptCleaner struct {
	patterns []*regexp.Regexp
}

// NewTranscriptCleaner compiles the phrases as case-insensitive literals
func NewTranscriptCleaner(phrases []string) *TranscriptCleaner {
	c := &TranscriptCleaner{}
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		c.patterns = append(c.patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)))
	}
	return c
}

// Clean strips every control phrase and trims the ends. Inner spacing is left as transcribed.
func (c *TranscriptCleaner) Clean(text string) string {
	for _, p := range c.patterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
