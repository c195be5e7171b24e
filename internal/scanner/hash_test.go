package scanner

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReader(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "empty input",
			content:  "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "known digest",
			content:  "hello world",
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HashReader(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHashReaderLargeInput(t *testing.T) {
	// Spans multiple read chunks; the digest must match the one-shot hash.
	content := bytes.Repeat([]byte("abcdefgh"), 32*1024)

	streamed, err := HashReader(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, HashBytes(content), streamed)
}

func TestHashReaderDeterministic(t *testing.T) {
	content := "id,name\n1,alpha\n2,beta\n"

	first, err := HashReader(strings.NewReader(content))
	require.NoError(t, err)
	second, err := HashReader(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestHashReaderPropagatesReadError(t *testing.T) {
	_, err := HashReader(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
}
