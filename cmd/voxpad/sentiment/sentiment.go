// Package sentiment scores the polarity of English text with the VADER
// lexicon. Scoring is purely functional: same text, same result, nothing
// cached or persisted.
package sentiment

import (
	"fmt"

	"github.com/jonreiter/govader"
)

type Category string

const (
	CategoryPositive Category = "Positive"
	CategoryNegative Category = "Negative"
	CategoryNeutral  Category = "Neutral"
)

type Result struct {
	// Signed polarity in [-1, 1].
	Polarity float64
	Category Category
}

// CategoryFor derives the category from the sign of the polarity.
func CategoryFor(polarity float64) Category {
	switch {
	case polarity > 0:
		return CategoryPositive
	case polarity < 0:
		return CategoryNegative
	default:
		return CategoryNeutral
	}
}

type Analyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score rates text polarity. Callers are expected to have verified their
// preconditions already (non-empty, English text): the analyzer does not
// detect language.
func (a *Analyzer) Score(text string) (Result, error) {
	if text == "" {
		return Result{}, fmt.Errorf("text should not be empty")
	}

	polarity := a.analyzer.PolarityScores(text).Compound

	return Result{
		Polarity: polarity,
		Category: CategoryFor(polarity),
	}, nil
}
