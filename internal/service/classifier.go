package service

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"callpulse/internal/model"
)

// ClassificationResult is the signal set extracted from one response.
type ClassificationResult struct {
	Score    float64
	HasScore bool
	Comment  string // lowercased free-text comment, "" when absent
	Tokens   []string
	Keywords []string // top tokens after stop-word filtering
}

var wordPattern = regexp.MustCompile(`\w+`)

// Filler words excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "i": {}, "you": {}, "he": {}, "she": {},
	"it": {}, "we": {}, "they": {}, "me": {}, "him": {}, "her": {},
	"us": {}, "them": {},
}

// Classify extracts the numeric score and comment tokens from a response.
// Only genuinely numeric "score" answers participate; strings that look
// like numbers are ignored rather than coerced.
func Classify(resp *model.SurveyResponse) ClassificationResult {
	result := ClassificationResult{}

	if resp == nil {
		return result
	}

	if raw, ok := resp.Answers["score"]; ok {
		if score, numeric := numericValue(raw); numeric {
			result.Score = score
			result.HasScore = true
		}
	}

	if resp.TextComments != "" {
		result.Comment = strings.ToLower(resp.TextComments)
		result.Tokens = wordPattern.FindAllString(result.Comment, -1)
		result.Keywords = topKeywords(result.Tokens, 10)
	}

	return result
}

// numericValue unwraps the numeric types a score can arrive as: JSON
// decoding yields float64 or json.Number, bson decoding yields int32,
// int64 or float64.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func topKeywords(tokens []string, limit int) []string {
	counts := make(map[string]int)
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if _, skip := stopWords[tok]; skip {
			continue
		}
		counts[tok]++
	}
	if len(counts) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(counts))
	for word := range counts {
		keywords = append(keywords, word)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
