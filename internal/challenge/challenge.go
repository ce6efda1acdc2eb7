// Package challenge implements score challenges: shareable URLs that carry a
// username and score, and the share fan-out around them.
package challenge

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// NotifyDelay is how long to wait before emitting the one-time challenge
// notification, giving consumers time to attach.
const NotifyDelay = 500 * time.Millisecond

// Challenge is an incoming score comparison parsed from a URL.
type Challenge struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// BuildURL encodes a username and score into the game's challenge link:
// <base>/game?challenge=<username>&score=<score>.
func BuildURL(baseURL, username string, score int) string {
	return fmt.Sprintf("%s/game?challenge=%s&score=%d", baseURL, url.QueryEscape(username), score)
}

// ParseQuery extracts challenge parameters from URL query values. Both
// parameters must be present; a malformed score falls back to zero.
func ParseQuery(query url.Values) (Challenge, bool) {
	username := query.Get("challenge")
	rawScore := query.Get("score")
	if username == "" || rawScore == "" {
		return Challenge{}, false
	}
	score, err := strconv.Atoi(rawScore)
	if err != nil || score < 0 {
		score = 0
	}
	return Challenge{Username: username, Score: score}, true
}

// ParseURL extracts challenge parameters from a full URL string.
func ParseURL(raw string) (Challenge, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Challenge{}, false
	}
	return ParseQuery(parsed.Query())
}

// Message composes the human-readable share text.
func Message(score int, challengeURL string) string {
	return fmt.Sprintf("I scored %d points in WanderWhiz! Can you beat me? Play here: %s", score, challengeURL)
}

// IntentURL builds the pre-filled share-intent link used when no native share
// capability is available.
func IntentURL(text string) string {
	return "https://wa.me/?text=" + url.QueryEscape(text)
}
