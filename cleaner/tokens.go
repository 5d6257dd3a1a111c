package cleaner

import "unicode/utf8"

// charsPerToken is a middle-ground estimate between English (~4) and CJK
// (~1.5) text. It over-counts slightly, which keeps prompts under budget.
const charsPerToken = 3

// EstimateTokens provides a fast token count estimate without a tokenizer.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / charsPerToken
	if est < 1 {
		return 1
	}
	return est
}

// TruncateTokens cuts text to about maxTokens estimated tokens, on a rune
// boundary. A non-positive maxTokens returns text unchanged.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}
	limit := maxTokens * charsPerToken
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
