package engine

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// DuplicateDistance is the Hamming distance at or below which two page
// fingerprints are treated as the same page.
const DuplicateDistance = 3

// PageFingerprint computes a 64-bit SimHash over a page's structure and
// words: 3-tag shingles of the open-tag sequence plus every lower-cased
// word of text content. Empty or tagless input yields 0.
func PageFingerprint(body string) uint64 {
	tags, words := pageTokens(body)
	if len(tags) == 0 {
		return 0
	}
	tokens := shingles(tags, 3)
	if len(tokens) == 0 {
		tokens = tags
	}
	return simhash(append(tokens, words...))
}

// HammingDistance returns the number of differing bits.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// NearDuplicate reports whether two non-zero fingerprints are within
// DuplicateDistance of each other.
func NearDuplicate(a, b uint64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return HammingDistance(a, b) <= DuplicateDistance
}

func simhash(tokens []string) uint64 {
	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// pageTokens walks the markup once, collecting open tag names in order and
// the words of all text nodes.
func pageTokens(body string) (tags, words []string) {
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags, words
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := z.TagName()
			tags = append(tags, string(tn))
		case html.TextToken:
			for _, w := range strings.Fields(string(z.Text())) {
				words = append(words, strings.ToLower(w))
			}
		}
	}
}

func shingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
