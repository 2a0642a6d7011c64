package tilemapping

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tashbetz/cache"
	"github.com/domino14/tashbetz/config"
)

const CacheKeyPrefix = "letterdist:"

//go:embed distributions/*.csv
var embeddedDistributions embed.FS

// LetterDistribution is a relative frequency for each tile letter. Weights
// need not sum to anything in particular.
type LetterDistribution struct {
	Name    string
	letters []rune
	weights []float64
}

// ScanLetterDistribution reads a CSV of letter,weight rows. Lines starting
// with # are comments.
func ScanLetterDistribution(data io.Reader) (*LetterDistribution, error) {
	r := csv.NewReader(data)
	r.Comment = '#'
	r.FieldsPerRecord = 2
	ld := &LetterDistribution{}
	seen := map[rune]bool{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		letter, err := ParseLetter(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, err
		}
		if seen[letter] {
			return nil, fmt.Errorf("letter %c appears twice", letter)
		}
		seen[letter] = true
		w, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, err
		}
		if w < 0 {
			return nil, fmt.Errorf("negative weight for %c", letter)
		}
		ld.letters = append(ld.letters, letter)
		ld.weights = append(ld.weights, w)
	}
	if ld.TotalWeight() <= 0 {
		return nil, errors.New("letter distribution has no positive weights")
	}
	return ld, nil
}

// NewLetterDistribution builds a distribution from a letter → weight map.
func NewLetterDistribution(name string, weights map[rune]float64) (*LetterDistribution, error) {
	ld := &LetterDistribution{Name: name}
	for _, r := range HebrewLetters {
		if w, ok := weights[r]; ok {
			ld.letters = append(ld.letters, r)
			ld.weights = append(ld.weights, w)
		}
	}
	// letters outside the Hebrew alphabet are allowed too, appended in rune order
	var extra []rune
	for r := range weights {
		if !lo.Contains(ld.letters, r) {
			extra = append(extra, r)
		}
	}
	slices.Sort(extra)
	for _, r := range extra {
		ld.letters = append(ld.letters, r)
		ld.weights = append(ld.weights, weights[r])
	}
	for i, w := range ld.weights {
		if w < 0 {
			return nil, fmt.Errorf("negative weight for %c", ld.letters[i])
		}
	}
	if ld.TotalWeight() <= 0 {
		return nil, errors.New("letter distribution has no positive weights")
	}
	return ld, nil
}

func (ld *LetterDistribution) Letters() []rune {
	return ld.letters
}

func (ld *LetterDistribution) Weights() []float64 {
	return ld.weights
}

func (ld *LetterDistribution) TotalWeight() float64 {
	t := 0.0
	for _, w := range ld.weights {
		t += w
	}
	return t
}

// Probability returns the normalized chance of drawing r on a single draw.
func (ld *LetterDistribution) Probability(r rune) float64 {
	for i, l := range ld.letters {
		if l == r {
			return ld.weights[i] / ld.TotalWeight()
		}
	}
	return 0
}

func openDistribution(cfg *config.Config, name string) (io.ReadCloser, error) {
	filename := name + ".csv"
	onDisk := filepath.Join(cfg.GetString(config.ConfigDataPath), "letterdistributions", filename)
	f, err := os.Open(onDisk)
	if err == nil {
		log.Debug().Str("path", onDisk).Msg("letter distribution from data path")
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return embeddedDistributions.Open("distributions/" + filename)
}

// CacheLoadFunc is the function that loads a distribution into the global cache.
func CacheLoadFunc(cfg *config.Config, key string) (any, error) {
	name := strings.TrimPrefix(key, CacheKeyPrefix)
	f, err := openDistribution(cfg, name)
	if err != nil {
		return nil, fmt.Errorf("letter distribution %v: %w", name, err)
	}
	defer f.Close()
	ld, err := ScanLetterDistribution(f)
	if err != nil {
		return nil, fmt.Errorf("letter distribution %v: %w", name, err)
	}
	ld.Name = name
	return ld, nil
}

// NamedLetterDistribution loads a distribution by name, first from the
// configured data path and then from the distributions compiled in.
func NamedLetterDistribution(cfg *config.Config, name string) (*LetterDistribution, error) {
	name = strings.ToLower(name)
	return cache.LoadTyped[*LetterDistribution](cfg, CacheKeyPrefix+name, CacheLoadFunc)
}
