package challenge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrShareUnavailable signals that no share channel accepted the content.
var ErrShareUnavailable = errors.New("no share channel available")

// Content is what gets shared: text, the challenge link, and an optional
// snapshot image (data URL).
type Content struct {
	Text     string
	URL      string
	ImageURL string
}

// Sharer delivers content through a platform share capability.
type Sharer interface {
	Share(ctx context.Context, content Content) error
}

// Uploader publishes a snapshot image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, imageData []byte) (string, error)
}

// Composer assembles and dispatches challenge shares with the fallback chain:
// native sharer first, then the share-intent URL with an uploaded snapshot.
// Share failures are logged, never fatal to gameplay.
type Composer struct {
	sharer   Sharer
	uploader Uploader
	baseURL  string
	logger   zerolog.Logger
}

// NewComposer creates a share composer. sharer and uploader may be nil.
func NewComposer(sharer Sharer, uploader Uploader, baseURL string, logger zerolog.Logger) *Composer {
	return &Composer{sharer: sharer, uploader: uploader, baseURL: baseURL, logger: logger}
}

// ChallengeURL builds the share link for a player's score.
func (c *Composer) ChallengeURL(username string, score int) string {
	return BuildURL(c.baseURL, username, score)
}

// Share sends the challenge through the first channel that works and returns
// the share-intent URL the caller can open when native sharing is absent.
// snapshot may be nil. On upload failure the raw image data URL is used.
func (c *Composer) Share(ctx context.Context, username string, score int, snapshot []byte) (string, error) {
	challengeURL := c.ChallengeURL(username, score)
	text := Message(score, challengeURL)

	imageURL := ""
	if len(snapshot) > 0 && c.uploader != nil {
		uploaded, err := c.uploader.Upload(ctx, snapshot)
		if err != nil {
			c.logger.Warn().Err(err).Msg("snapshot upload failed, sharing raw data")
			imageURL = dataURL(snapshot)
		} else {
			imageURL = uploaded
		}
	}

	content := Content{Text: text, URL: challengeURL, ImageURL: imageURL}
	if c.sharer != nil {
		if err := c.sharer.Share(ctx, content); err == nil {
			return challengeURL, nil
		} else {
			c.logger.Warn().Err(err).Msg("native share failed, falling back to intent url")
		}
	}

	intentText := text
	if imageURL != "" {
		intentText = fmt.Sprintf("%s\n\nSee my challenge card: %s", text, imageURL)
	}
	return IntentURL(intentText), nil
}

func dataURL(imageData []byte) string {
	return "data:image/png;base64," + base64Encode(imageData)
}
