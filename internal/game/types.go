package game

import "fmt"

// Difficulty tiers for destinations.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AllDifficulties is the default filter: every tier enabled.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty validates a raw tier string.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", raw)
}

// Destination is a single quiz item: a place the player has to guess from clues.
type Destination struct {
	ID         string     `json:"id"`
	City       string     `json:"city"`
	Country    string     `json:"country"`
	Clues      []string   `json:"clues"`
	FunFacts   []string   `json:"fun_facts"`
	Trivia     []string   `json:"trivia"`
	Difficulty Difficulty `json:"difficulty"`
	ImageURL   string     `json:"image_url,omitempty"`
}

// Option is a candidate answer shown to the player.
type Option struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Matches reports whether the option names the given destination.
func (o Option) Matches(d Destination) bool {
	return o.City == d.City && o.Country == d.Country
}

// State is the single aggregate owned by the engine. Consumers only ever see
// snapshots; all mutation goes through engine transitions.
type State struct {
	Destinations       []Destination `json:"-"`
	CurrentDestination *Destination  `json:"current_destination,omitempty"`
	Options            []Option      `json:"options"`
	ClueIndex          int           `json:"clue_index"`
	HasGuessed         bool          `json:"has_guessed"`
	IsCorrect          bool          `json:"is_correct"`
	Score              int           `json:"score"`
	Round              int           `json:"round"`
	GameOver           bool          `json:"game_over"`
	Difficulty         []Difficulty  `json:"difficulty"`
	Username           string        `json:"username,omitempty"`
	ChallengeUsername  string        `json:"challenge_username,omitempty"`
	ChallengeScore     int           `json:"challenge_score,omitempty"`
	SessionID          string        `json:"session_id,omitempty"`
	Loading            bool          `json:"loading"`
	Error              string        `json:"error,omitempty"`
}

// clone returns a snapshot safe to hand out while the engine keeps mutating.
// Destinations are immutable once loaded, so the pool slice is shared.
func (s State) clone() State {
	out := s
	if s.CurrentDestination != nil {
		dest := *s.CurrentDestination
		out.CurrentDestination = &dest
	}
	out.Options = append([]Option(nil), s.Options...)
	out.Difficulty = append([]Difficulty(nil), s.Difficulty...)
	return out
}
