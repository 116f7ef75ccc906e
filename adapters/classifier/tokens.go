package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

// labelMap is the output order of the intent model
var labelMap = [2]entities.Intent{entities.IntentObjectDetection, entities.IntentChatting}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}

// Tokenize lowercases text, splits it on anything that is not a letter,
// digit or apostrophe, and keeps at most maxTokens tokens.
func Tokenize(text string, maxTokens int) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	if maxTokens > 0 && len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	return tokens
}

// Truncate cuts text right after its maxTokens-th token when more tokens
// follow, keeping the original characters. Token boundaries match Tokenize.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return strings.TrimSpace(text)
	}

	count, end := 0, 0
	inToken := false
	for i, r := range text {
		if isSeparator(r) {
			inToken = false
			continue
		}
		if !inToken {
			if count == maxTokens {
				return strings.TrimSpace(text[:end])
			}
			inToken = true
			count++
		}
		end = i + utf8.RuneLen(r)
	}
	return strings.TrimSpace(text)
}

// argmax picks the highest score; ties go to the lower index
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
