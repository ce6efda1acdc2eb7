package challenge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ImageHostClient uploads snapshot images to a public image host (Imgur-style
// API: POST base64 payload, get back a public link).
type ImageHostClient struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

var _ Uploader = (*ImageHostClient)(nil)

// NewImageHostClient creates an upload client.
func NewImageHostClient(baseURL, clientID string, httpClient *http.Client) *ImageHostClient {
	if baseURL == "" {
		baseURL = "https://api.imgur.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 6 * time.Second}
	}
	return &ImageHostClient{
		baseURL:    baseURL,
		clientID:   clientID,
		httpClient: httpClient,
	}
}

type imageHostResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// Upload publishes the image and returns its public URL.
func (c *ImageHostClient) Upload(ctx context.Context, imageData []byte) (string, error) {
	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(imageData))
	form.Set("type", "base64")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/3/image", c.baseURL), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.clientID != "" {
		req.Header.Set("Authorization", "Client-ID "+c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("image host non-200: %d", resp.StatusCode)
	}

	var payload imageHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if !payload.Success || payload.Data.Link == "" {
		return "", fmt.Errorf("image host rejected upload")
	}
	return payload.Data.Link, nil
}

func base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
