package board

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/domino14/tashbetz/tilemapping"
)

// A Word is a run of two or more letters on the board. Row and Col give the
// square holding its first letter in reading order.
type Word struct {
	Text      string
	Row       int
	Col       int
	Direction BoardDirection
}

func (w Word) String() string {
	return fmt.Sprintf("%s at %d,%d %v", w.Text, w.Row, w.Col, w.Direction)
}

// readingStep is the row/col delta from one letter of a word to the next.
// Hebrew reads right to left, so horizontal words run toward column 0.
func readingStep(dir BoardDirection) (int, int) {
	if dir == HorizontalDirection {
		return 0, -1
	}
	return 1, 0
}

// FindWords scans every row and then every column and returns each run of
// two or more letters, with the final-letter form applied to its last
// letter. A single letter with empty squares on both sides is not a word.
func FindWords(g *GameBoard) []Word {
	var words []Word
	n := g.Dim()

	// Rows are walked left to right, which is against reading order, so
	// each letter is put in front of the run.
	for row := 0; row < n; row++ {
		var run []rune
		for col := 0; col <= n; col++ {
			if col < n && !g.squares[row][col].IsEmpty() {
				run = append([]rune{g.squares[row][col].letter}, run...)
				continue
			}
			if len(run) >= 2 {
				words = append(words, Word{
					Text:      tilemapping.NormalizeFinal(run),
					Row:       row,
					Col:       col - 1,
					Direction: HorizontalDirection,
				})
			}
			run = nil
		}
	}

	// Columns are walked top to bottom, which is reading order.
	for col := 0; col < n; col++ {
		var run []rune
		for row := 0; row <= n; row++ {
			if row < n && !g.squares[row][col].IsEmpty() {
				run = append(run, g.squares[row][col].letter)
				continue
			}
			if len(run) >= 2 {
				words = append(words, Word{
					Text:      tilemapping.NormalizeFinal(run),
					Row:       row - len(run),
					Col:       col,
					Direction: VerticalDirection,
				})
			}
			run = nil
		}
	}
	return words
}

// ExtractWords returns the set of words on the board, sorted.
func ExtractWords(g *GameBoard) []string {
	texts := lo.Uniq(lo.Map(FindWords(g), func(w Word, _ int) string {
		return w.Text
	}))
	slices.Sort(texts)
	return texts
}
