package game

// ScoringConfig holds configurable scoring constants (defaults match production).
type ScoringConfig struct {
	PointsPerClue    int // default: 10
	EasyMultiplier   int // default: 1
	MediumMultiplier int // default: 2
	HardMultiplier   int // default: 3
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PointsPerClue:    10,
		EasyMultiplier:   1,
		MediumMultiplier: 2,
		HardMultiplier:   3,
	}
}

// Scorer computes round points with configurable constants.
type Scorer struct {
	config ScoringConfig
}

// NewScorer creates a scorer with the provided config.
func NewScorer(config ScoringConfig) *Scorer {
	return &Scorer{config: config}
}

// Multiplier returns the per-tier score multiplier.
func (s *Scorer) Multiplier(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return s.config.EasyMultiplier
	case DifficultyMedium:
		return s.config.MediumMultiplier
	default:
		return s.config.HardMultiplier
	}
}

// Points computes the score earned by a guess.
// Formula: clueScore * difficultyMultiplier * PointsPerClue, where
// clueScore = max(1, clueCount - clueIndex). Fewer clues revealed means more
// points; the floor keeps a correct last-clue guess worth something.
func (s *Scorer) Points(isCorrect bool, clueCount, clueIndex int, d Difficulty) int {
	if !isCorrect {
		return 0
	}
	clueScore := clueCount - clueIndex
	if clueScore < 1 {
		clueScore = 1
	}
	return clueScore * s.Multiplier(d) * s.config.PointsPerClue
}
