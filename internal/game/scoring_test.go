package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsFormula(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	tests := []struct {
		name      string
		isCorrect bool
		clueCount int
		clueIndex int
		tier      Difficulty
		want      int
	}{
		{"medium first clue", true, 3, 0, DifficultyMedium, 60},
		{"medium last clue", true, 3, 2, DifficultyMedium, 20},
		{"easy first clue", true, 3, 0, DifficultyEasy, 30},
		{"hard first clue", true, 3, 0, DifficultyHard, 90},
		{"single clue floor", true, 1, 0, DifficultyEasy, 10},
		{"floor holds past clue count", true, 2, 5, DifficultyEasy, 10},
		{"wrong answer early", false, 3, 0, DifficultyHard, 0},
		{"wrong answer late", false, 3, 2, DifficultyEasy, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scorer.Points(tc.isCorrect, tc.clueCount, tc.clueIndex, tc.tier)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMultiplierPerTier(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	assert.Equal(t, 1, scorer.Multiplier(DifficultyEasy))
	assert.Equal(t, 2, scorer.Multiplier(DifficultyMedium))
	assert.Equal(t, 3, scorer.Multiplier(DifficultyHard))
}
