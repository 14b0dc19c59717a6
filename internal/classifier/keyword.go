// Package classifier provides the classifier gateway and the two bundled
// classifier implementations: a keyword-based one for standalone operation and
// an HTTP client for an external model service.
package classifier

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

var positiveWords = wordSet(
	"excellent", "amazing", "great", "fantastic", "wonderful", "awesome",
	"love", "perfect", "best", "outstanding", "brilliant", "superb",
	"good", "nice", "happy", "satisfied", "pleased", "recommend",
	"beautiful", "incredible", "exceptional", "delightful", "impressive",
)

var negativeWords = wordSet(
	"terrible", "awful", "horrible", "bad", "worst", "hate", "disgusting",
	"disappointing", "poor", "useless", "broken", "failed", "wrong",
	"angry", "frustrated", "annoyed", "upset", "dissatisfied", "waste",
	"pathetic", "ridiculous", "unacceptable", "nightmare",
)

// defaultEmotionKeywords maps the default emotion label set to trigger words.
// Labels configured without a keyword group simply never score.
var defaultEmotionKeywords = map[string][]string{
	"joy":      {"happy", "joy", "excited", "delighted", "cheerful", "pleased", "thrilled", "love"},
	"sadness":  {"sad", "disappointed", "depressed", "unhappy", "upset", "miserable"},
	"anger":    {"angry", "furious", "mad", "irritated", "annoyed", "outraged", "hate"},
	"surprise": {"surprised", "shocked", "amazed", "astonished", "stunned", "incredible"},
	"fear":     {"scared", "afraid", "worried", "nervous", "anxious", "terrified"},
	"disgust":  {"disgusting", "gross", "revolting", "nasty", "repulsive", "vile"},
}

// KeywordClassifier scores text against fixed word lists. It needs no network
// and never fails, which makes it the default classifier when no external
// model service is configured.
type KeywordClassifier struct {
	emotions map[string]map[string]struct{}
}

// NewKeywordClassifier builds a classifier restricted to the configured
// emotion label set.
func NewKeywordClassifier(labels []string) *KeywordClassifier {
	emotions := make(map[string]map[string]struct{}, len(labels))
	for _, label := range labels {
		if keywords, ok := defaultEmotionKeywords[label]; ok {
			emotions[label] = wordSet(keywords...)
		}
	}
	return &KeywordClassifier{emotions: emotions}
}

// Classify implements domain.Classifier.
func (k *KeywordClassifier) Classify(_ context.Context, text string) (domain.ClassificationResult, error) {
	words := tokenize(text)

	positive := countMatches(words, positiveWords)
	negative := countMatches(words, negativeWords)

	sentiment := domain.SentimentNeutral
	confidence := 0.5
	switch {
	case positive > negative:
		sentiment = domain.SentimentPositive
		confidence = math.Min(0.95, 0.6+float64(positive-negative)*0.1)
	case negative > positive:
		sentiment = domain.SentimentNegative
		confidence = math.Min(0.95, 0.6+float64(negative-positive)*0.1)
	}

	allEmotions := make(map[string]float64)
	dominant := "neutral"
	bestScore := 0.0
	for _, label := range sortedLabels(k.emotions) {
		keywords := k.emotions[label]
		matches := countMatches(words, keywords)
		if matches == 0 {
			continue
		}
		score := math.Round(float64(matches)/float64(len(keywords))*10000) / 10000
		allEmotions[label] = score
		if score > bestScore {
			bestScore = score
			dominant = label
		}
	}

	return domain.ClassificationResult{
		Sentiment:   sentiment,
		Emotion:     dominant,
		Confidence:  confidence,
		AllEmotions: allEmotions,
	}, nil
}

// sortedLabels fixes the iteration order so score ties break deterministically.
func sortedLabels(emotions map[string]map[string]struct{}) []string {
	labels := make([]string, 0, len(emotions))
	for label := range emotions {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func tokenize(text string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)

	words := make(map[string]struct{})
	for _, w := range strings.Fields(cleaned) {
		words[w] = struct{}{}
	}
	return words
}

func countMatches(words, keywords map[string]struct{}) int {
	count := 0
	for w := range words {
		if _, ok := keywords[w]; ok {
			count++
		}
	}
	return count
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
