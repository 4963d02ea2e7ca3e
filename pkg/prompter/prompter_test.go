package prompter

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withInput(t *testing.T, s string) {
	t.Helper()
	prev := in
	in = strings.NewReader(s)
	t.Cleanup(func() { in = prev })
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		withInput(t, tt.input)
		got, err := PromptConfirm("Clear cache?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestPromptString(t *testing.T) {
	withInput(t, "  alice \n")
	got, err := PromptString("Handle: ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	withInput(t, "")
	_, err = PromptString("Handle: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestConfirm(t *testing.T) {
	ok, err := Confirm("Clear?", true)
	require.NoError(t, err)
	assert.True(t, ok, "force skips the prompt")

	withInput(t, "y\n")
	ok, err = Confirm("Clear?", false)
	require.NoError(t, err)
	assert.True(t, ok)
}
