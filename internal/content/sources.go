package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultRandomWordURL serves batches of random English words
	DefaultRandomWordURL = "https://random-word-api.herokuapp.com/word"
	// DefaultWordsAPIURL serves example sentences
	DefaultWordsAPIURL = "https://wordsapiv1.p.rapidapi.com/words"

	wordsAPIHost = "wordsapiv1.p.rapidapi.com"
)

// ErrNoExample is returned when no example sentence is available for a word
var ErrNoExample = errors.New("no example available")

// RandomWordAPI fetches batches of fresh words
type RandomWordAPI struct {
	baseURL    string
	batch      int
	httpClient *http.Client
}

// NewRandomWordAPI creates a word source returning batch words per call
func NewRandomWordAPI(baseURL string, batch int) *RandomWordAPI {
	if baseURL == "" {
		baseURL = DefaultRandomWordURL
	}
	if batch <= 0 {
		batch = 50
	}
	return &RandomWordAPI{
		baseURL: baseURL,
		batch:   batch,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RandomWords returns one batch of random words
func (a *RandomWordAPI) RandomWords(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?number="+strconv.Itoa(a.batch), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("random word request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("random word API error %d", resp.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return words, nil
}

// WordsAPI looks up real usage examples for a word
type WordsAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWordsAPI creates an example source. Without an API key every lookup returns ErrNoExample.
func NewWordsAPI(baseURL, apiKey string) *WordsAPI {
	if baseURL == "" {
		baseURL = DefaultWordsAPIURL
	}
	return &WordsAPI{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Example returns the first known example sentence for word
func (w *WordsAPI) Example(ctx context.Context, word string) (string, error) {
	if w.apiKey == "" {
		return "", ErrNoExample
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/"+url.PathEscape(word)+"/examples", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", w.apiKey)
	req.Header.Set("X-RapidAPI-Host", wordsAPIHost)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("example request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("words API error %d", resp.StatusCode)
	}

	var result struct {
		Examples []string `json:"examples"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(result.Examples) == 0 {
		return "", ErrNoExample
	}
	return result.Examples[0], nil
}
