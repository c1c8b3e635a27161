// Package moderation masks blocked words in message content before it is
// persisted. Matching runs over a normalized view of the text (case and
// leet-speak folded, punctuation ignored) so trivial obfuscation does not
// slip through, while the original spacing of the message is preserved.
package moderation

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// leetFold maps common substitution characters back to the letter they
// stand in for.
var leetFold = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// Filter holds a compiled Aho-Corasick automaton over the blocked words.
// The zero value is unusable; build one with NewFilter.
type Filter struct {
	machine  *goahocorasick.Machine
	maskRune rune
}

// NewFilter compiles the automaton from the blocked word list.
// Words are normalized the same way message text is at match time.
func NewFilter(words []string, maskRune rune) (*Filter, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		folded, _ := fold(w)
		if len(folded) > 0 {
			patterns = append(patterns, folded)
		}
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{machine: machine, maskRune: maskRune}, nil
}

// ReadWords parses a word list: one entry per line, blank lines and
// #-comments skipped.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// Mask replaces every blocked word occurrence in content with the mask
// rune, character for character, leaving everything else untouched.
func (f *Filter) Mask(content string) string {
	folded, positions := fold(content)
	if len(folded) == 0 {
		return content
	}

	matches := f.machine.MultiPatternSearch(folded, false)
	if len(matches) == 0 {
		return content
	}

	out := []rune(content)
	for _, match := range matches {
		start := match.Pos
		end := start + len(match.Word)
		if start < 0 || end > len(positions) {
			continue
		}
		// Translate the span back to positions in the original text.
		for i := positions[start]; i <= positions[end-1]; i++ {
			out[i] = f.maskRune
		}
	}
	return string(out)
}

// fold lowers the text into its searchable form and records, for each
// folded rune, the index of the original rune it came from.
func fold(s string) ([]rune, []int) {
	original := []rune(s)
	folded := make([]rune, 0, len(original))
	positions := make([]int, 0, len(original))

	for i, r := range original {
		if mapped, ok := leetFold[r]; ok {
			r = mapped
		}
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		positions = append(positions, i)
	}
	return folded, positions
}
