package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulsami822/wander-whiz-game/internal/game"
)

func viewFixtureState() game.State {
	return game.State{
		CurrentDestination: &game.Destination{
			ID:       "d1",
			City:     "Paris",
			Country:  "France",
			Clues:    []string{"clue one", "clue two", "clue three"},
			FunFacts: []string{"fact"},
			Trivia:   []string{"trivia"},
		},
		Options: []game.Option{
			{City: "Paris", Country: "France"},
			{City: "Rome", Country: "Italy"},
		},
		ClueIndex:  0,
		Score:      30,
		Round:      1,
		Difficulty: game.AllDifficulties(),
	}
}

func TestStateViewHidesAnswerBeforeGuess(t *testing.T) {
	view := NewStateView(viewFixtureState())

	assert.Nil(t, view.Answer)
	assert.Equal(t, []string{"clue one"}, view.Clues)
	assert.Equal(t, 3, view.TotalClues)
	assert.Len(t, view.Options, 2)
}

func TestStateViewRevealsCluesUpToIndex(t *testing.T) {
	st := viewFixtureState()
	st.ClueIndex = 2

	view := NewStateView(st)
	assert.Equal(t, []string{"clue one", "clue two", "clue three"}, view.Clues)
}

func TestStateViewRevealsAnswerAfterGuess(t *testing.T) {
	st := viewFixtureState()
	st.HasGuessed = true
	st.IsCorrect = true

	view := NewStateView(st)
	require.NotNil(t, view.Answer)
	assert.Equal(t, "Paris", view.Answer.City)
	assert.Equal(t, "France", view.Answer.Country)
	assert.Equal(t, []string{"fact"}, view.Answer.FunFacts)
	assert.True(t, view.IsCorrect)
}

func TestStateViewWithoutRound(t *testing.T) {
	st := game.State{Loading: true, Difficulty: game.AllDifficulties()}

	view := NewStateView(st)
	assert.Nil(t, view.Answer)
	assert.Empty(t, view.Clues)
	assert.Zero(t, view.TotalClues)
	assert.True(t, view.Loading)
	assert.Equal(t, []string{"easy", "medium", "hard"}, view.Difficulty)
}
