package moderation

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

// Words are long enough not to collide with common chat text
var censored = []string{"badger", "snake", "mushroom"}

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator(censored, '*')
	req.NoError(err)

	tests := []struct {
		name    string
		content string
		want    string
		words   []string
	}{
		{
			name:    "Plain word inside a message",
			content: "see the badger at noon",
			want:    "see the ****** at noon",
			words:   []string{"badger"},
		},
		{
			name:    "Distinct words reported in match order",
			content: "a mushroom, a snake and a badger",
			want:    "a ********, a ***** and a ******",
			words:   []string{"mushroom", "snake", "badger"},
		},
		{
			name:    "Repeated word reported each time",
			content: "snake snake",
			want:    "***** *****",
			words:   []string{"snake", "snake"},
		},
		{
			name:    "Leet and separators inside the word",
			content: "hey 5.n.4.k.3!",
			want:    "hey *********!",
			words:   []string{"snake"},
		},
		{
			name:    "Mixed case",
			content: "BadGer",
			want:    "******",
			words:   []string{"badger"},
		},
		{
			name:    "Multi byte runes around a match",
			content: "été badger ü",
			want:    "été ****** ü",
			words:   []string{"badger"},
		},
		{
			name:    "Clean message",
			content: "Chat-Hub ships today",
			want:    "Chat-Hub ships today",
		},
		{
			name:    "Only noise",
			content: "... !?",
			want:    "... !?",
		},
		{
			name: "Empty message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, words := mod.Censor(tt.content)
			req.Equal(tt.want, got)
			req.Equal(tt.words, words)
			req.Equal(utf8.RuneCountInString(tt.content), utf8.RuneCountInString(got))
		})
	}
}

func TestModerator_Uses_The_Given_Mask(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"snake"}, '●')
	req.NoError(err)

	got, words := mod.Censor("a snake!")
	req.Equal("a ●●●●●!", got)
	req.Equal([]string{"snake"}, words)
}

func TestModerator_Ignores_Noise_Only_Words(t *testing.T) {
	req := require.New(t)

	// Given a dictionary mixing noise only entries and one real word
	mod, err := NewModerator([]string{"...", ",,,", "", " - ", "badger"}, '#')
	req.NoError(err)

	// Then punctuation in messages is never masked
	got, words := mod.Censor("Hello ... , - badger")
	req.Equal("Hello ... , - ######", got)
	req.Equal([]string{"badger"}, words)
}

func TestModerator_Without_Words_Keeps_Content(t *testing.T) {
	req := require.New(t)

	// Given only noise words
	mod, err := NewModerator([]string{"...", " "}, '*')
	req.NoError(err)
	req.Nil(mod.matcher)

	// Then nothing is ever censored
	got, words := mod.Censor("The badger is safe")
	req.Equal("The badger is safe", got)
	req.Nil(words)
}
