package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTranslateURL is the public Google Translate endpoint
const DefaultTranslateURL = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator translates single words through the Google Translate web endpoint
type GoogleTranslator struct {
	baseURL    string
	target     string
	httpClient *http.Client
}

// NewGoogleTranslator creates a translator into the target language code
func NewGoogleTranslator(baseURL, target string) *GoogleTranslator {
	if baseURL == "" {
		baseURL = DefaultTranslateURL
	}
	return &GoogleTranslator{
		baseURL: baseURL,
		target:  target,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Translate returns the translation of text
func (g *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", g.target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate API error %d", resp.StatusCode)
	}

	// [[["translated","source",...], ...], ...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation for %q", text)
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("parse segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("empty translation for %q", text)
	}
	return out, nil
}
