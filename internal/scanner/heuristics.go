package scanner

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeuristicWeights holds the weight of each anomaly signal. The four weights
// are empirically tuned policy, not fixed law; the defaults preserve the
// established scoring behavior.
type HeuristicWeights struct {
	SpecialChars float64
	Base64Runs   float64
	SQLKeywords  float64
	ScriptTokens float64
}

// DefaultHeuristicWeights returns the compatibility default weights.
func DefaultHeuristicWeights() HeuristicWeights {
	return HeuristicWeights{
		SpecialChars: 0.35,
		Base64Runs:   0.25,
		SQLKeywords:  0.20,
		ScriptTokens: 0.20,
	}
}

// binaryPrefixScore is assigned outright to undecodable prefixes: binary
// content is inherently suspicious in a text-table context.
const binaryPrefixScore = 0.9

// minBase64RunLength is the shortest contiguous base64-alphabet run counted
// as an encoded-payload indicator.
const minBase64RunLength = 40

// sqlKeywords are counted per occurrence and normalized by dividing by 10.
var sqlKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "UNION",
}

// scriptTokens are counted per occurrence and normalized by dividing by 5.
var scriptTokens = []string{
	"<SCRIPT", "ONERROR", "ONLOAD", "EVAL(", "FUNCTION(", "XMLHTTPREQUEST",
}

// commonPunctuation are the characters that do not count toward the
// special-character ratio alongside letters, digits and whitespace. The set
// is deliberately narrow: quote/paren/semicolon-dense content must score.
const commonPunctuation = `,._-:/"`

// HeuristicScore is the composite suspicion score with its per-signal
// breakdown, every component normalized to [0,1].
type HeuristicScore struct {
	Score            float64 `json:"score"`
	SpecialCharRatio float64 `json:"special_char_ratio"`
	Base64RunDensity float64 `json:"base64_run_density"`
	SQLKeywordScore  float64 `json:"sql_keyword_score"`
	ScriptTokenScore float64 `json:"script_token_score"`
	BinaryContent    bool    `json:"binary_content"`
}

// HeuristicScorer computes the composite anomaly score of a content prefix.
type HeuristicScorer struct {
	weights HeuristicWeights
}

// NewHeuristicScorer builds a scorer with the given signal weights.
func NewHeuristicScorer(weights HeuristicWeights) *HeuristicScorer {
	return &HeuristicScorer{weights: weights}
}

// Score evaluates a bounded content prefix. Callers are responsible for
// limiting the prefix size; the scorer itself never reads beyond it.
func (h *HeuristicScorer) Score(prefix []byte) HeuristicScore {
	if len(prefix) == 0 {
		return HeuristicScore{}
	}

	prefix = trimPartialRune(prefix)
	if !utf8.Valid(prefix) || bytes.IndexByte(prefix, 0x00) >= 0 {
		return HeuristicScore{Score: binaryPrefixScore, BinaryContent: true}
	}

	content := string(prefix)
	upper := strings.ToUpper(content)

	result := HeuristicScore{
		SpecialCharRatio: specialCharRatio(content),
		Base64RunDensity: base64RunDensity(content),
		SQLKeywordScore:  keywordScore(upper, sqlKeywords, 10),
		ScriptTokenScore: keywordScore(upper, scriptTokens, 5),
	}

	result.Score = h.weights.SpecialChars*result.SpecialCharRatio +
		h.weights.Base64Runs*result.Base64RunDensity +
		h.weights.SQLKeywords*result.SQLKeywordScore +
		h.weights.ScriptTokens*result.ScriptTokenScore

	if result.Score > 1 {
		result.Score = 1
	}

	return result
}

// trimPartialRune drops a multibyte sequence truncated by the prefix cut
// from the end of p, so the cut point itself cannot make valid text look
// binary. Malformed bytes anywhere else still fail the validity check.
func trimPartialRune(p []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(p); i++ {
		b := p[len(p)-i]
		if b < utf8.RuneSelf {
			return p
		}
		if b >= 0xC0 {
			if utf8.FullRune(p[len(p)-i:]) {
				return p
			}
			return p[:len(p)-i]
		}
	}
	return p
}

// specialCharRatio is the share of characters that are neither alphanumeric,
// whitespace nor common punctuation.
func specialCharRatio(content string) float64 {
	total := 0
	special := 0
	for _, r := range content {
		total++
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
		case unicode.IsSpace(r):
		case strings.ContainsRune(commonPunctuation, r):
		default:
			special++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(special) / float64(total)
}

// base64RunDensity is the share of content covered by contiguous runs of
// base64-alphabet characters at least minBase64RunLength long.
func base64RunDensity(content string) float64 {
	covered := 0
	run := 0
	for i := 0; i < len(content); i++ {
		if isBase64Char(content[i]) {
			run++
			continue
		}
		if run >= minBase64RunLength {
			covered += run
		}
		run = 0
	}
	if run >= minBase64RunLength {
		covered += run
	}

	if len(content) == 0 {
		return 0
	}
	density := float64(covered) / float64(len(content))
	if density > 1 {
		density = 1
	}
	return density
}

func isBase64Char(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') || c == '+' || c == '/' || c == '='
}

// keywordScore counts occurrences of the given tokens in upper-cased content
// and normalizes by divisor, capping at 1.
func keywordScore(upperContent string, tokens []string, divisor float64) float64 {
	count := 0
	for _, token := range tokens {
		count += strings.Count(upperContent, token)
	}
	score := float64(count) / divisor
	if score > 1 {
		score = 1
	}
	return score
}
