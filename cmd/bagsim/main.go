// bagsim draws racks from a letter distribution and reports how the draws
// compare with the configured weights.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/domino14/tashbetz/config"
	"github.com/domino14/tashbetz/game"
	"github.com/domino14/tashbetz/tilemapping"
)

// Letters that often stand in for vowels.
var vowelish = []rune("אהוי")

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fs := pflag.NewFlagSet("bagsim", pflag.ExitOnError)
	racks := fs.Int("racks", 10000, "number of full racks to draw")
	bins := fs.Int("bins", game.RackTileLimit+1, "histogram bins")
	distName := fs.String(config.ConfigLetterDistribution, "hebrew", "letter distribution")
	dataPath := fs.String(config.ConfigDataPath, "./data", "data directory")
	fs.Parse(os.Args[1:])

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDataPath, *dataPath)
	ld, err := tilemapping.NamedLetterDistribution(cfg, *distName)
	if err != nil {
		log.Fatal().Err(err).Msg("loading distribution")
	}
	bag := ld.MakeBag()

	counts := map[rune]int{}
	perRack := make([]float64, 0, *racks)
	for i := 0; i < *racks; i++ {
		rack := bag.Draw(game.RackTileLimit)
		for _, l := range rack {
			counts[l]++
		}
		perRack = append(perRack, float64(lo.CountBy(rack, func(l rune) bool {
			return lo.Contains(vowelish, l)
		})))
	}

	total := float64(*racks * game.RackTileLimit)
	fmt.Printf("%d racks from %q\n\n", *racks, ld.Name)
	fmt.Println("letter  expected  observed")
	for _, l := range ld.Letters() {
		fmt.Printf("  %c     %6.3f%%   %6.3f%%\n", l,
			100*ld.Probability(l), 100*float64(counts[l])/total)
	}

	fmt.Printf("\nletters from %s per rack:\n", strings.Join(lo.Map(vowelish, func(r rune, _ int) string {
		return string(r)
	}), " "))
	h := histogram.Hist(*bins, perRack)
	if err := histogram.Fprint(os.Stdout, h, histogram.Linear(40)); err != nil {
		log.Fatal().Err(err).Msg("printing histogram")
	}
}
