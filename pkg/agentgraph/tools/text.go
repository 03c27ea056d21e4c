package tools

import (
	"math"
	"regexp"
	"strings"
)

// sentenceSplit breaks text into sentences on terminal punctuation
// followed by whitespace. Headings and fenced code lines are skipped.
func sentenceSplit(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") || strings.HasPrefix(line, "#") {
			continue
		}
		for _, part := range boundaryPattern.Split(line, -1) {
			if strings.TrimSpace(part) != "" {
				sentences = append(sentences, strings.TrimSpace(part))
			}
		}
	}
	return sentences
}

var (
	boundaryPattern = regexp.MustCompile(`(?:[.!?])\s+`)
	wordPattern     = regexp.MustCompile(`[a-zA-Z]+`)
	vowelGroups     = regexp.MustCompile(`[aeiouy]+`)
)

// words extracts the alphabetic words of a sentence.
func words(sentence string) []string {
	return wordPattern.FindAllString(sentence, -1)
}

// countSyllables approximates the syllable count of a word by counting
// vowel groups with adjustments for silent e and -le endings.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := len(vowelGroups.FindAllString(word, -1))
	if strings.HasSuffix(word, "e") {
		count--
	}
	if strings.HasSuffix(word, "le") && len(word) > 2 && !strings.ContainsRune("aeiouy", rune(word[len(word)-3])) {
		count++
	}
	if count < 1 {
		count = 1
	}
	return count
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
