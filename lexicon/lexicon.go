// Package lexicon loads the list of valid words. A lexicon is read once at
// startup and never changes during a session.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/domino14/tashbetz/cache"
	"github.com/domino14/tashbetz/config"
)

const CacheKeyPrefix = "lexicon:"

// Lexicon answers whether a word is valid. Matching is exact: no case
// folding and no diacritic stripping.
type Lexicon interface {
	Name() string
	HasWord(word string) bool
}

// AcceptAll accepts every word. It is useful for testing and for casual
// games without a word list.
type AcceptAll struct{}

func (lex AcceptAll) Name() string {
	return "AcceptAll"
}

func (lex AcceptAll) HasWord(word string) bool {
	return true
}

// WordSet is a Lexicon backed by a set of words.
type WordSet struct {
	name  string
	words map[string]struct{}
}

// NewWordSet builds a lexicon from a slice of words.
func NewWordSet(name string, words []string) *WordSet {
	ws := &WordSet{name: name, words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		ws.words[w] = struct{}{}
	}
	return ws
}

func (ws *WordSet) Name() string {
	return ws.name
}

func (ws *WordSet) HasWord(word string) bool {
	_, ok := ws.words[word]
	return ok
}

func (ws *WordSet) Size() int {
	return len(ws.words)
}

func decoder(encoding string) (transform.Transformer, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		// strip a byte-order mark if the file has one
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "windows-1255", "cp1255":
		return charmap.Windows1255.NewDecoder(), nil
	}
	return nil, fmt.Errorf("unsupported lexicon encoding %q", encoding)
}

// ScanWordSet reads one word per line. Blank lines and lines starting
// with # are skipped.
func ScanWordSet(name string, r io.Reader, encoding string) (*WordSet, error) {
	t, err := decoder(encoding)
	if err != nil {
		return nil, err
	}
	var words []string
	scanner := bufio.NewScanner(transform.NewReader(r, t))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewWordSet(name, words), nil
}

func cacheKey(path, encoding string) string {
	return CacheKeyPrefix + strings.ToLower(encoding) + ":" + path
}

// CacheLoadFunc is the function that loads a word list into the global cache.
func CacheLoadFunc(cfg *config.Config, key string) (any, error) {
	rest := strings.TrimPrefix(key, CacheKeyPrefix)
	encoding, path, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, fmt.Errorf("bad lexicon cache key %q", key)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ws, err := ScanWordSet(path, f, encoding)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %v: %w", path, err)
	}
	log.Info().Str("path", path).Int("words", ws.Size()).Msg("loaded lexicon")
	return ws, nil
}

// Get returns the configured lexicon. An empty lexicon path gives AcceptAll.
func Get(cfg *config.Config) (Lexicon, error) {
	path := cfg.GetString(config.ConfigLexiconPath)
	if path == "" {
		log.Warn().Msg("no lexicon configured; every word will be accepted")
		return AcceptAll{}, nil
	}
	encoding := cfg.GetString(config.ConfigLexiconEncoding)
	ws, err := cache.LoadTyped[*WordSet](cfg, cacheKey(path, encoding), CacheLoadFunc)
	if err != nil {
		return nil, err
	}
	return ws, nil
}
