package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicScoreCleanContent(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	score := scorer.Score([]byte("id,name,amount\n1,alpha,100.50\n2,beta,200.00\n"))

	assert.False(t, score.BinaryContent)
	assert.Zero(t, score.SpecialCharRatio)
	assert.Zero(t, score.Base64RunDensity)
	assert.Zero(t, score.SQLKeywordScore)
	assert.Zero(t, score.ScriptTokenScore)
	assert.Zero(t, score.Score)
}

func TestHeuristicScoreBinaryContent(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	tests := []struct {
		name   string
		prefix []byte
	}{
		{name: "NUL byte", prefix: []byte{'a', 'b', 0x00, 'c'}},
		{name: "invalid UTF-8", prefix: []byte{0xFF, 0xFE, 0xFD}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(tt.prefix)
			assert.True(t, score.BinaryContent)
			assert.InDelta(t, 0.9, score.Score, 1e-9)
		})
	}
}

func TestHeuristicScoreBase64Run(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	// A prefix that is one long base64 run scores the full run-density
	// weight and nothing else.
	score := scorer.Score([]byte(strings.Repeat("QWxhZGRpbjpvcGVuIHNlc2FtZQ", 4)))

	assert.InDelta(t, 1.0, score.Base64RunDensity, 1e-9)
	assert.InDelta(t, 0.25, score.Score, 1e-9)
}

func TestHeuristicScoreShortBase64RunIgnored(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	// Runs shorter than the threshold are normal data, not payloads.
	score := scorer.Score([]byte("name photo\nalpha SGVsbG8=\nbeta V29ybGQ=\n"))

	assert.Zero(t, score.Base64RunDensity)
}

func TestHeuristicScoreSQLKeywords(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	score := scorer.Score([]byte(strings.Repeat("select union drop ", 10)))

	assert.InDelta(t, 1.0, score.SQLKeywordScore, 1e-9)
}

func TestHeuristicScoreScriptTokens(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	score := scorer.Score([]byte("<script>eval(payload)</script> onerror onload eval(x)"))

	assert.InDelta(t, 1.0, score.ScriptTokenScore, 1e-9)
}

func TestHeuristicScoreWeightedSum(t *testing.T) {
	weights := HeuristicWeights{
		SpecialChars: 0.5,
		Base64Runs:   0.5,
		SQLKeywords:  0,
		ScriptTokens: 0,
	}
	scorer := NewHeuristicScorer(weights)

	// Entirely special characters: ratio 1.0, so the score equals the
	// special-character weight.
	score := scorer.Score([]byte("{}{}{}{}"))

	assert.InDelta(t, 1.0, score.SpecialCharRatio, 1e-9)
	assert.InDelta(t, 0.5, score.Score, 1e-9)
}

func TestHeuristicScorePrefixCutInsideRune(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	tests := []struct {
		name string
		cut  []byte
	}{
		{
			// "é" is C3 A9; the cut keeps only the lead byte.
			name: "two-byte rune truncated",
			cut:  []byte("id,name\n1,caf\xc3"),
		},
		{
			// "😀" is F0 9F 98 80; the cut keeps two of four bytes.
			name: "four-byte rune truncated",
			cut:  []byte("id,note\n1,ok\xf0\x9f"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(tt.cut)
			assert.False(t, score.BinaryContent)
			assert.Zero(t, score.Score)
		})
	}
}

func TestHeuristicScoreInvalidMidContentStillBinary(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	// A stray continuation byte in the middle is real corruption, not a
	// prefix-cut artifact.
	score := scorer.Score([]byte("id,na\xbfme\n1,alpha\n"))

	assert.True(t, score.BinaryContent)
	assert.InDelta(t, 0.9, score.Score, 1e-9)
}

func TestHeuristicScoreUnicodeLettersNotSpecial(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	score := scorer.Score([]byte("région,süd\nmünchen,1\n"))

	assert.Zero(t, score.SpecialCharRatio)
}

func TestHeuristicScoreQuoteParenDensity(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	// Quotes are ordinary in delimited text; semicolons and parentheses
	// count toward the ratio.
	score := scorer.Score([]byte(`"a";(b);`))

	assert.InDelta(t, 0.5, score.SpecialCharRatio, 1e-9)
}

func TestHeuristicScoreEmptyPrefix(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultHeuristicWeights())

	assert.Zero(t, scorer.Score(nil).Score)
}
