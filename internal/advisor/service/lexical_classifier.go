package service

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang-stock-advisor/internal/advisor/dto"
)

var (
	positiveWords = []string{
		"good", "great", "excellent", "positive", "strong", "up", "gain", "profit",
		"growth", "success", "win", "beat", "exceed", "surge", "rally", "boom",
	}
	negativeWords = []string{
		"bad", "terrible", "negative", "weak", "down", "loss", "decline", "fall",
		"crash", "drop", "miss", "disappoint", "concern", "worry", "risk", "threat",
	}
	sentencePositiveWords = []string{"good", "great", "excellent", "positive", "strong", "up", "gain"}
	sentenceNegativeWords = []string{"bad", "terrible", "negative", "weak", "down", "loss", "decline"}

	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

const lexicalModelName = "lexical"

// LexicalClassifier is a deterministic word-list classifier with no external dependency.
type LexicalClassifier struct{}

func NewLexicalClassifier() *LexicalClassifier { return &LexicalClassifier{} }

func (LexicalClassifier) Name() string { return lexicalModelName }

// Classify never fails.
func (LexicalClassifier) Classify(_ context.Context, text string) (dto.Classification, error) {
	tokens := tokenize(text)
	pos := countMatches(tokens, positiveWords)
	neg := countMatches(tokens, negativeWords)

	c := dto.Classification{Label: dto.SentimentNeutral, Score: 0.5, Model: lexicalModelName}
	switch {
	case pos > neg:
		c.Label = dto.SentimentPositive
		c.Score = math.Min(0.9, 0.5+float64(pos-neg)*0.1)
	case neg > pos:
		c.Label = dto.SentimentNegative
		c.Score = math.Min(0.9, 0.5+float64(neg-pos)*0.1)
	}
	return c, nil
}

// SentenceSentiments scores the first three sentences longer than ten characters.
func SentenceSentiments(text string) []dto.SentenceSentiment {
	var out []dto.SentenceSentiment
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 10 {
			continue
		}
		tokens := tokenize(sentence)
		pos := countMatches(tokens, sentencePositiveWords)
		neg := countMatches(tokens, sentenceNegativeWords)

		s := dto.SentenceSentiment{Text: sentence, Label: dto.SentimentNeutral, Score: 0.5}
		switch {
		case pos > neg:
			s.Label = dto.SentimentPositive
			s.Score = math.Min(0.9, 0.5+float64(pos)*0.1)
		case neg > pos:
			s.Label = dto.SentimentNegative
			s.Score = math.Min(0.9, 0.5+float64(neg)*0.1)
		}
		out = append(out, s)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// countMatches counts how many distinct words of the list occur. Words of four or more
// letters also match inflections ("beats", "disappointing").
func countMatches(tokens, words []string) int {
	count := 0
	for _, w := range words {
		for _, t := range tokens {
			if t == w || t == w+"s" || (len(w) >= 4 && strings.HasPrefix(t, w)) {
				count++
				break
			}
		}
	}
	return count
}
