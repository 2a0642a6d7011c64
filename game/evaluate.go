package game

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/domino14/tashbetz/board"
	"github.com/domino14/tashbetz/lexicon"
)

// NewWords returns the words on current that are not on previous. Words
// are compared as whole strings, so extending a word yields the longer
// word only.
func NewWords(current, previous *board.GameBoard) []string {
	return lo.Without(board.ExtractWords(current), board.ExtractWords(previous)...)
}

// WordScore is two points for every letter after the first.
func WordScore(word string) int {
	return max(0, (utf8.RuneCountInString(word)-1)*2)
}

type Evaluation struct {
	TotalScore   int
	ValidWords   []string
	InvalidWords []string
}

// Valid is true when every word was found in the lexicon. A turn that
// formed no words at all is valid and scores nothing.
func (e Evaluation) Valid() bool {
	return len(e.InvalidWords) == 0
}

// Evaluate looks up every word and totals the score of the valid ones.
// Each distinct word is credited once.
func Evaluate(words []string, lex lexicon.Lexicon) Evaluation {
	valid, invalid := lo.FilterReject(lo.Uniq(words), func(w string, _ int) bool {
		return lex.HasWord(w)
	})
	return Evaluation{
		TotalScore:   lo.SumBy(valid, WordScore),
		ValidWords:   valid,
		InvalidWords: invalid,
	}
}

type InvalidWordsError struct {
	Words []string
}

func (e *InvalidWordsError) Error() string {
	return "invalid words: " + strings.Join(e.Words, ", ")
}
