package tilemapping

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"
)

func testDistribution(t *testing.T) *LetterDistribution {
	t.Helper()
	ld, err := NewLetterDistribution("test", map[rune]float64{'א': 6, 'ב': 3, 'ג': 1, 'ד': 0})
	if err != nil {
		t.Fatal(err)
	}
	return ld
}

func TestDrawLength(t *testing.T) {
	is := is.New(t)
	bag := NewBag(testDistribution(t), rand.NewPCG(1, 2))
	is.Equal(len(bag.Draw(8)), 8)
	is.Equal(len(bag.Draw(0)), 0)
	is.Equal(len(bag.Draw(-3)), 0)
}

func TestDrawNeverRunsOut(t *testing.T) {
	is := is.New(t)
	bag := NewBag(testDistribution(t), rand.NewPCG(3, 4))
	for i := 0; i < 1000; i++ {
		is.Equal(len(bag.Draw(8)), 8)
	}
}

func TestDrawFollowsWeights(t *testing.T) {
	is := is.New(t)
	ld := testDistribution(t)
	bag := NewBag(ld, rand.NewPCG(5, 6))
	const n = 100000
	counts := map[rune]int{}
	for _, r := range bag.Draw(n) {
		counts[r]++
	}
	// zero weight is never drawn
	is.Equal(counts['ד'], 0)
	for _, r := range []rune{'א', 'ב', 'ג'} {
		got := float64(counts[r]) / n
		is.True(math.Abs(got-ld.Probability(r)) < 0.01)
	}
}

func TestDrawDeterministicWithSeed(t *testing.T) {
	is := is.New(t)
	ld := testDistribution(t)
	a := NewBag(ld, rand.NewPCG(7, 8)).Draw(20)
	b := NewBag(ld, rand.NewPCG(7, 8)).Draw(20)
	is.Equal(a, b)
}

func TestDefaultSourceDraws(t *testing.T) {
	is := is.New(t)
	bag := testDistribution(t).MakeBag()
	for _, r := range bag.Draw(50) {
		is.True(r == 'א' || r == 'ב' || r == 'ג')
	}
}
