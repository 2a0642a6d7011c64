package board

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/domino14/tashbetz/tilemapping"
)

// SparseKey formats a position as the "row,col" key of the persisted board.
func SparseKey(row, col int) string {
	return strconv.Itoa(row) + "," + strconv.Itoa(col)
}

// ParseSparseKey is the inverse of SparseKey.
func ParseSparseKey(key string) (int, int, error) {
	rs, cs, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, fmt.Errorf("bad board key %q", key)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return 0, 0, fmt.Errorf("bad board key %q: %w", key, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(cs))
	if err != nil {
		return 0, 0, fmt.Errorf("bad board key %q: %w", key, err)
	}
	return row, col, nil
}

// ToSparseMap serializes the occupied squares as "row,col" → letter.
func (g *GameBoard) ToSparseMap() map[string]string {
	m := make(map[string]string, g.tilesPlayed)
	for i, row := range g.squares {
		for j, sq := range row {
			if !sq.IsEmpty() {
				m[SparseKey(i, j)] = string(sq.letter)
			}
		}
	}
	return m
}

// SortedKeys returns the keys of a sparse board in row-major order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ar, ac, aerr := ParseSparseKey(a)
		br, bc, berr := ParseSparseKey(b)
		if aerr != nil || berr != nil {
			return strings.Compare(a, b)
		}
		if ar != br {
			return ar - br
		}
		return ac - bc
	})
	return keys
}

// LoadFromSparseMap replaces the whole board with the contents of m. Every
// square ends up committed or empty. On error the board is left unchanged.
func (g *GameBoard) LoadFromSparseMap(m map[string]string) error {
	type placement struct {
		row, col int
		letter   rune
	}
	placements := make([]placement, 0, len(m))
	seen := make(map[[2]int]bool, len(m))
	for key, val := range m {
		row, col, err := ParseSparseKey(key)
		if err != nil {
			return err
		}
		if !g.posExists(row, col) {
			return fmt.Errorf("board key %q: %w", key, ErrOutOfBounds)
		}
		if seen[[2]int{row, col}] {
			return fmt.Errorf("board key %q: duplicate position", key)
		}
		seen[[2]int{row, col}] = true
		letter, err := tilemapping.ParseLetter(val)
		if err != nil {
			return fmt.Errorf("board key %q: %w", key, err)
		}
		placements = append(placements, placement{row, col, letter})
	}
	g.Clear()
	for _, p := range placements {
		g.squares[p.row][p.col].letter = p.letter
	}
	g.tilesPlayed = len(placements)
	return nil
}

// SetWord commits word starting at (row, col) in reading order: leftward
// for horizontal words, downward for vertical ones. A square that already
// holds the same letter is shared; any other occupied square is an error.
// It is meant for building positions.
func (g *GameBoard) SetWord(row, col int, dir BoardDirection, word string) error {
	dr, dc := readingStep(dir)
	r, c := row, col
	for _, letter := range word {
		if !g.posExists(r, c) {
			return ErrOutOfBounds
		}
		sq := g.squares[r][c]
		if !sq.IsEmpty() && sq.letter != letter {
			return ErrSquareOccupied
		}
		if sq.IsEmpty() {
			g.tilesPlayed++
		}
		sq.letter = letter
		sq.tentative = false
		r += dr
		c += dc
	}
	return nil
}

// ToDisplayText renders the board with column 0 on the left. Tentative
// tiles are shown in brackets.
func (g *GameBoard) ToDisplayText() string {
	var sb strings.Builder
	n := g.Dim()
	sb.WriteString("   ")
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("%2d ", i))
	}
	sb.WriteString("\n")
	sb.WriteString("   " + strings.Repeat("-", n*3) + "\n")
	for i, row := range g.squares {
		sb.WriteString(fmt.Sprintf("%2d|", i))
		for _, sq := range row {
			sb.WriteString(sq.DisplayString())
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   " + strings.Repeat("-", n*3) + "\n")
	return sb.String()
}
