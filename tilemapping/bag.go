package tilemapping

import (
	"encoding/binary"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"
)

// A Bag hands out replacement tiles. It never runs out: every draw is an
// independent sample from the letter distribution, so the same letter can
// come up any number of times in a row.
type Bag struct {
	ld      *LetterDistribution
	sampler distuv.Categorical
}

// frandSource adapts frand's CSPRNG to the math/rand/v2 Source interface.
type frandSource struct{}

func (frandSource) Uint64() uint64 {
	return binary.LittleEndian.Uint64(frand.Bytes(8))
}

// NewBag makes a bag drawing from ld. A nil src uses frand.
func NewBag(ld *LetterDistribution, src rand.Source) *Bag {
	if src == nil {
		src = frandSource{}
	}
	// Categorical normalizes the weights itself.
	return &Bag{
		ld:      ld,
		sampler: distuv.NewCategorical(ld.weights, src),
	}
}

// MakeBag returns a bag of tiles backed by the default random source.
func (ld *LetterDistribution) MakeBag() *Bag {
	return NewBag(ld, nil)
}

// Draw returns n letters. n <= 0 returns an empty slice.
func (b *Bag) Draw(n int) []rune {
	if n <= 0 {
		return []rune{}
	}
	drawn := make([]rune, n)
	for i := range drawn {
		drawn[i] = b.ld.letters[int(b.sampler.Rand())]
	}
	return drawn
}

func (b *Bag) LetterDistribution() *LetterDistribution {
	return b.ld
}
