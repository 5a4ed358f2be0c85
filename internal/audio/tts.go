// Package audio synthesizes word pronunciations and keeps them in a disk cache.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTSURL is the Google Translate speech endpoint
const DefaultTTSURL = "https://translate.google.com/translate_tts"

var unsafeChars = regexp.MustCompile(`[^a-z0-9]`)

// Sanitize turns a word into a safe file name stem
func Sanitize(word string) string {
	return unsafeChars.ReplaceAllString(strings.ToLower(word), "_")
}

// Synthesizer fetches mp3 pronunciations and caches them under dir.
// A file handed out by Synthesize stays on disk until every caller has
// released it with Cleanup.
type Synthesizer struct {
	dir        string
	baseURL    string
	lang       string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex // guards locks and inUse
	locks map[string]*sync.Mutex
	inUse map[string]int
}

// NewSynthesizer creates a synthesizer speaking lang
func NewSynthesizer(dir, baseURL, lang string, logger *zap.Logger) *Synthesizer {
	if baseURL == "" {
		baseURL = DefaultTTSURL
	}
	if lang == "" {
		lang = "en"
	}
	return &Synthesizer{
		dir:     dir,
		baseURL: baseURL,
		lang:    lang,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
		inUse:  make(map[string]int),
	}
}

// pathLock returns the lock serializing work on one cached file
func (s *Synthesizer) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

func (s *Synthesizer) acquire(path string) {
	s.mu.Lock()
	s.inUse[path]++
	s.mu.Unlock()
}

// release drops one reference and reports whether the file is now unused
func (s *Synthesizer) release(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inUse[path] > 1 {
		s.inUse[path]--
		return false
	}
	delete(s.inUse, path)
	return true
}

func (s *Synthesizer) busy(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inUse[path] > 0
}

// Synthesize returns the path of an mp3 file pronouncing word
func (s *Synthesizer) Synthesize(ctx context.Context, word string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", errors.New("empty word")
	}

	path := filepath.Join(s.dir, Sanitize(word)+".mp3")

	// only callers asking for the same word wait on each other
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(path); err == nil {
		s.acquire(path)
		return path, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	data, err := s.fetch(ctx, word)
	if err != nil {
		return "", err
	}

	if err := s.write(path, data); err != nil {
		return "", err
	}
	s.acquire(path)
	return path, nil
}

// write stores data under path via a temp file so readers never see a partial mp3
func (s *Synthesizer) write(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tts-*")
	if err != nil {
		return fmt.Errorf("create temp audio: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

func (s *Synthesizer) fetch(ctx context.Context, word string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", word)
	q.Set("tl", s.lang)
	q.Set("total", "1")
	q.Set("idx", "0")
	q.Set("textlen", strconv.Itoa(len([]rune(word))))
	q.Set("client", "tw-ob")
	q.Set("prev", "input")
	q.Set("ttsspeed", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API error %d for %q", resp.StatusCode, word)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio for %q", word)
	}
	return data, nil
}

// Cleanup releases a file returned by Synthesize and removes it once no
// other caller still holds it. Failures are only logged.
func (s *Synthesizer) Cleanup(path string) {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if !s.release(path) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to delete audio file", zap.String("path", path), zap.Error(err))
	}
}

// CleanupStale removes cached files older than maxAge and returns how many
// were deleted. Files being fetched or still held by a sender are skipped.
func (s *Synthesizer) CleanupStale(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to list audio dir", zap.String("dir", s.dir), zap.Error(err))
		}
		return 0
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			s.logger.Warn("Failed to stat audio file", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		lock := s.pathLock(path)
		if !lock.TryLock() {
			continue
		}
		if s.busy(path) {
			lock.Unlock()
			continue
		}
		err = os.Remove(path)
		lock.Unlock()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("Failed to delete old audio file", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		removed++
		s.logger.Debug("Deleted old audio file", zap.String("file", e.Name()))
	}
	return removed
}
