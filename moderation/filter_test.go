package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Mask_Replaces_Blocked_Words(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"idiot", "stupid"}, '*')
	req.NoError(err)

	tests := []struct {
		content string
		want    string
	}{
		{"you idiot", "you *****"},
		{"that was stupid of me", "that was ****** of me"},
		{"nothing wrong here", "nothing wrong here"},
		{"", ""},
	}

	for _, tt := range tests {
		req.Equal(tt.want, filter.Mask(tt.content), tt.content)
	}
}

func Test_Mask_Folds_Case_And_Leet_Speak(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"idiot"}, '*')
	req.NoError(err)

	// Obfuscated spellings still match the blocked word.
	req.Equal("*****", filter.Mask("IDIOT"))
	req.Equal("*****", filter.Mask("1d10t"))
	req.Equal("you *****!", filter.Mask("you Id1ot!"))
}

func Test_Mask_Preserves_Surrounding_Text(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"idiot"}, '#')
	req.NoError(err)

	// Given a message where the blocked word sits mid-sentence
	masked := filter.Mask("no idiot would write that")

	// Then only the word span is replaced and lengths are unchanged
	req.Equal("no ##### would write that", masked)
	req.Len(masked, len("no idiot would write that"))
}

func Test_ReadWords_Skips_Blanks_And_Comments(t *testing.T) {
	req := require.New(t)

	input := strings.NewReader("idiot\n\n# slurs below\nstupid\n   \nmoron\n")
	words, err := ReadWords(input)
	req.NoError(err)
	req.Equal([]string{"idiot", "stupid", "moron"}, words)
}
