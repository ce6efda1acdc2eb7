package server

import "github.com/abdulsami822/wander-whiz-game/internal/game"

// StateView is the client-facing projection of engine state. The answer stays
// hidden until the player has locked in a guess.
type StateView struct {
	Clues             []string      `json:"clues"`
	Options           []game.Option `json:"options"`
	ClueIndex         int           `json:"clue_index"`
	TotalClues        int           `json:"total_clues"`
	HasGuessed        bool          `json:"has_guessed"`
	IsCorrect         bool          `json:"is_correct"`
	Score             int           `json:"score"`
	Round             int           `json:"round"`
	GameOver          bool          `json:"game_over"`
	Difficulty        []string      `json:"difficulty"`
	Username          string        `json:"username,omitempty"`
	ChallengeUsername string        `json:"challenge_username,omitempty"`
	ChallengeScore    int           `json:"challenge_score,omitempty"`
	SessionID         string        `json:"session_id,omitempty"`
	Loading           bool          `json:"loading"`
	Error             string        `json:"error,omitempty"`

	// Revealed only after a guess.
	Answer *AnswerView `json:"answer,omitempty"`
}

// AnswerView carries the revealed destination after a guess.
type AnswerView struct {
	City     string   `json:"city"`
	Country  string   `json:"country"`
	FunFacts []string `json:"fun_facts"`
	Trivia   []string `json:"trivia"`
	ImageURL string   `json:"image_url,omitempty"`
}

// NewStateView projects engine state into the wire shape.
func NewStateView(st game.State) StateView {
	view := StateView{
		Options:           st.Options,
		ClueIndex:         st.ClueIndex,
		HasGuessed:        st.HasGuessed,
		IsCorrect:         st.IsCorrect,
		Score:             st.Score,
		Round:             st.Round,
		GameOver:          st.GameOver,
		Username:          st.Username,
		ChallengeUsername: st.ChallengeUsername,
		ChallengeScore:    st.ChallengeScore,
		SessionID:         st.SessionID,
		Loading:           st.Loading,
		Error:             st.Error,
	}
	for _, tier := range st.Difficulty {
		view.Difficulty = append(view.Difficulty, string(tier))
	}

	cur := st.CurrentDestination
	if cur == nil {
		return view
	}

	view.TotalClues = len(cur.Clues)
	revealed := st.ClueIndex + 1
	if revealed > len(cur.Clues) {
		revealed = len(cur.Clues)
	}
	view.Clues = cur.Clues[:revealed]

	if st.HasGuessed {
		view.Answer = &AnswerView{
			City:     cur.City,
			Country:  cur.Country,
			FunFacts: cur.FunFacts,
			Trivia:   cur.Trivia,
			ImageURL: cur.ImageURL,
		}
	}
	return view
}
