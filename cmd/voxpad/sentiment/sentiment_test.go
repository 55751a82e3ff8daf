package sentiment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryFor(t *testing.T) {
	tcs := []struct {
		name     string
		polarity float64
		expected Category
	}{
		{
			name:     "exactly zero",
			polarity: 0.0,
			expected: CategoryNeutral,
		},
		{
			name:     "positive",
			polarity: 0.3,
			expected: CategoryPositive,
		},
		{
			name:     "negative",
			polarity: -0.3,
			expected: CategoryNegative,
		},
		{
			name:     "barely positive",
			polarity: 0.0001,
			expected: CategoryPositive,
		},
		{
			name:     "barely negative",
			polarity: -0.0001,
			expected: CategoryNegative,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, CategoryFor(tc.polarity))
		})
	}
}

func TestAnalyzerScore(t *testing.T) {
	a := NewAnalyzer()

	t.Run("empty text", func(t *testing.T) {
		_, err := a.Score("")
		require.EqualError(t, err, "text should not be empty")
	})

	t.Run("positive text", func(t *testing.T) {
		res, err := a.Score("This is a wonderful day, I love it!")
		require.NoError(t, err)
		require.Greater(t, res.Polarity, 0.0)
		require.Equal(t, CategoryPositive, res.Category)
	})

	t.Run("negative text", func(t *testing.T) {
		res, err := a.Score("This is horrible, I hate everything about it.")
		require.NoError(t, err)
		require.Less(t, res.Polarity, 0.0)
		require.Equal(t, CategoryNegative, res.Category)
	})

	t.Run("greeting is non-negative", func(t *testing.T) {
		res, err := a.Score("hello world")
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Polarity, 0.0)
		require.LessOrEqual(t, res.Polarity, 1.0)
		require.Contains(t, []Category{CategoryNeutral, CategoryPositive}, res.Category)
	})

	t.Run("idempotent", func(t *testing.T) {
		const text = "The transcription quality is great but the latency is bad."
		first, err := a.Score(text)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			res, err := a.Score(text)
			require.NoError(t, err)
			require.Equal(t, first, res)
		}
	})

	t.Run("polarity in range", func(t *testing.T) {
		for _, text := range []string{
			"amazing fantastic wonderful brilliant superb",
			"terrible awful horrendous disgusting vile",
			"the table is next to the chair",
		} {
			res, err := a.Score(text)
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.Polarity, -1.0)
			require.LessOrEqual(t, res.Polarity, 1.0)
		}
	})
}
