package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNoActiveRound is returned when a guess arrives before a round started.
	ErrNoActiveRound = errors.New("no active round")
	// ErrAlreadyGuessed rejects a second guess within the same round.
	ErrAlreadyGuessed = errors.New("guess already submitted for this round")
	// ErrGameOver rejects gameplay transitions after the final round.
	ErrGameOver = errors.New("game is over")
	// ErrEmptyDifficulty rejects an empty difficulty filter.
	ErrEmptyDifficulty = errors.New("difficulty set must not be empty")
)

// Catalog supplies the destination pool, filtered by difficulty.
type Catalog interface {
	List(ctx context.Context, tiers []Difficulty) ([]Destination, error)
}

// ScoreKeeper persists a player's high score (best effort).
type ScoreKeeper interface {
	PushHighScore(ctx context.Context, username string, score int) error
}

// Config groups engine tunables.
type Config struct {
	MaxRounds           int
	OptionCount         int
	CatalogFetchTimeout time.Duration
	ScoreWriteTimeout   time.Duration
	Scoring             ScoringConfig
	Rand                *rand.Rand // injectable for deterministic tests
}

func (c Config) withDefaults() Config {
	if c.MaxRounds <= 0 {
		c.MaxRounds = 3
	}
	if c.OptionCount <= 0 {
		c.OptionCount = 4
	}
	if c.CatalogFetchTimeout <= 0 {
		c.CatalogFetchTimeout = 5 * time.Second
	}
	if c.ScoreWriteTimeout <= 0 {
		c.ScoreWriteTimeout = 3 * time.Second
	}
	if c.Scoring == (ScoringConfig{}) {
		c.Scoring = DefaultScoringConfig()
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Observer receives a state snapshot after every completed transition.
type Observer func(State)

// Engine owns a single player's game state. All transitions go through its
// methods, run one at a time under the mutex, and end with a reconcile step
// that starts the next round whenever the post-transition state allows it.
type Engine struct {
	mu        sync.Mutex
	state     State
	loadGen   int // bumped on difficulty change; stale pool loads are discarded
	observers []Observer

	catalog Catalog
	scores  ScoreKeeper
	scorer  *Scorer
	cfg     Config
	logger  zerolog.Logger
}

// NewEngine creates an engine with default state: empty pool, all difficulty
// tiers enabled, round zero.
func NewEngine(catalog Catalog, scores ScoreKeeper, cfg Config, logger zerolog.Logger) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		state: State{
			Difficulty: AllDifficulties(),
			Loading:    true,
		},
		catalog: catalog,
		scores:  scores,
		scorer:  NewScorer(cfg.Scoring),
		cfg:     cfg,
		logger:  logger,
	}
}

// Subscribe registers an observer for post-transition snapshots.
func (e *Engine) Subscribe(obs Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, obs)
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// LoadPool fetches all destinations matching the active difficulty set.
// On failure the pool stays empty, loading clears and the error flag is set;
// the caller decides whether to surface or retry. A load whose difficulty set
// changed mid-flight is discarded.
func (e *Engine) LoadPool(ctx context.Context) error {
	e.mu.Lock()
	gen := e.loadGen
	tiers := append([]Difficulty(nil), e.state.Difficulty...)
	e.state.Loading = true
	e.state.Error = ""
	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.CatalogFetchTimeout)
	defer cancel()
	dests, err := e.catalog.List(fetchCtx, tiers)

	e.mu.Lock()
	if gen != e.loadGen {
		// Difficulty changed while the fetch was in flight.
		e.mu.Unlock()
		return nil
	}
	e.state.Loading = false
	if err != nil {
		e.state.Destinations = nil
		e.state.Error = "failed to load destinations"
		st := e.state.clone()
		e.mu.Unlock()
		e.publish(st)
		return fmt.Errorf("load destination pool: %w", err)
	}
	e.state.Destinations = dests
	if len(dests) == 0 {
		e.state.Error = "no destinations available for the selected difficulty"
	}
	e.reconcileLocked()
	st = e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return nil
}

// SetDifficulty replaces the active tier set, clears the pool and reloads it.
func (e *Engine) SetDifficulty(ctx context.Context, tiers []Difficulty) error {
	if len(tiers) == 0 {
		return ErrEmptyDifficulty
	}
	e.mu.Lock()
	e.loadGen++
	e.state.Difficulty = append([]Difficulty(nil), tiers...)
	e.state.Destinations = nil
	e.state.CurrentDestination = nil
	e.state.Options = nil
	e.mu.Unlock()
	return e.LoadPool(ctx)
}

// RevealNextClue advances the clue index. No-op once the player has guessed
// or the last clue is already showing.
func (e *Engine) RevealNextClue() State {
	e.mu.Lock()
	if cur := e.state.CurrentDestination; cur != nil && !e.state.HasGuessed && e.state.ClueIndex < len(cur.Clues)-1 {
		e.state.ClueIndex++
	}
	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return st
}

// SubmitGuess locks in the player's answer for the round and applies scoring.
// A second guess in the same round is rejected and leaves state untouched.
func (e *Engine) SubmitGuess(option Option) (State, error) {
	e.mu.Lock()
	if e.state.GameOver {
		st := e.state.clone()
		e.mu.Unlock()
		return st, ErrGameOver
	}
	cur := e.state.CurrentDestination
	if cur == nil {
		st := e.state.clone()
		e.mu.Unlock()
		return st, ErrNoActiveRound
	}
	if e.state.HasGuessed {
		st := e.state.clone()
		e.mu.Unlock()
		return st, ErrAlreadyGuessed
	}

	isCorrect := option.Matches(*cur)
	points := e.scorer.Points(isCorrect, len(cur.Clues), e.state.ClueIndex, cur.Difficulty)

	e.state.HasGuessed = true
	e.state.IsCorrect = isCorrect
	e.state.Score += points

	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return st, nil
}

// AdvanceRound completes the current round. Reaching the configured round
// limit ends the game and kicks off a detached high-score write when a
// username is set; otherwise the reconcile step starts the next round.
func (e *Engine) AdvanceRound(ctx context.Context) State {
	e.mu.Lock()
	if e.state.GameOver {
		st := e.state.clone()
		e.mu.Unlock()
		return st
	}
	e.state.Round++
	if e.state.Round >= e.cfg.MaxRounds {
		e.state.GameOver = true
		if e.state.Username != "" {
			e.persistHighScore(e.state.Username, e.state.Score)
		}
	} else {
		e.state.CurrentDestination = nil
		e.state.Options = nil
		e.reconcileLocked()
	}
	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return st
}

// ResetOptions controls what survives a reset.
type ResetOptions struct {
	PreserveUsername bool
	Difficulty       []Difficulty // non-nil overrides the active set and forces a pool reload
	ClearChallenge   bool
}

// Reset returns the state to defaults. The loaded pool is kept unless the
// difficulty changes, in which case the caller should follow up with LoadPool.
func (e *Engine) Reset(opts ResetOptions) State {
	e.mu.Lock()
	prev := e.state
	next := State{
		Destinations: prev.Destinations,
		Difficulty:   prev.Difficulty,
	}
	if opts.PreserveUsername {
		next.Username = prev.Username
	}
	if !opts.ClearChallenge {
		next.ChallengeUsername = prev.ChallengeUsername
		next.ChallengeScore = prev.ChallengeScore
	}
	if len(opts.Difficulty) > 0 {
		e.loadGen++
		next.Difficulty = append([]Difficulty(nil), opts.Difficulty...)
		next.Destinations = nil
	}
	e.state = next
	e.reconcileLocked()
	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return st
}

// SetUsername records the player handle on the state. Validation and
// persistence live in the profile service.
func (e *Engine) SetUsername(username string) State {
	e.mu.Lock()
	e.state.Username = username
	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return st
}

// SetChallenge records an incoming challenger's name and score.
func (e *Engine) SetChallenge(username string, score int) State {
	e.mu.Lock()
	e.state.ChallengeUsername = username
	e.state.ChallengeScore = score
	st := e.state.clone()
	e.mu.Unlock()
	e.publish(st)
	return st
}

// AdoptSession reflects a joined multiplayer session into local state and
// switches to its difficulty settings.
func (e *Engine) AdoptSession(ctx context.Context, sessionID string, tiers []Difficulty) error {
	e.mu.Lock()
	e.state.SessionID = sessionID
	e.mu.Unlock()
	if len(tiers) > 0 {
		return e.SetDifficulty(ctx, tiers)
	}
	return nil
}

// reconcileLocked starts a round whenever the state allows one: pool loaded,
// no destination in play, game not over, nothing loading. Level-triggered, so
// every transition runs it exactly once.
func (e *Engine) reconcileLocked() {
	if len(e.state.Destinations) == 0 || e.state.CurrentDestination != nil ||
		e.state.GameOver || e.state.Loading {
		return
	}
	pool := e.state.Destinations
	dest := pool[e.cfg.Rand.Intn(len(pool))]
	e.state.CurrentDestination = &dest
	e.state.Options = buildOptions(e.cfg.Rand, dest, pool, e.cfg.OptionCount)
	e.state.ClueIndex = 0
	e.state.HasGuessed = false
	e.state.IsCorrect = false
}

// persistHighScore runs the score write as a detached task. Failures are
// logged, never surfaced to the player.
func (e *Engine) persistHighScore(username string, score int) {
	if e.scores == nil {
		return
	}
	logger := e.logger
	timeout := e.cfg.ScoreWriteTimeout
	keeper := e.scores
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := keeper.PushHighScore(ctx, username, score); err != nil {
			logger.Warn().Err(err).Str("username", username).Int("score", score).
				Msg("high score write failed")
		}
	}()
}

func (e *Engine) publish(st State) {
	e.mu.Lock()
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()
	for _, obs := range observers {
		obs(st)
	}
}
