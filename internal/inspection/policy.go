package inspection

import (
	"regexp"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/scanner"
)

// Policy is the immutable inspection configuration. It is built once and
// handed to the pipeline constructor; nothing is read from ambient state.
type Policy struct {
	MaxUploadSize      int64
	HeaderPrefixSize   int
	ScanChunkSize      int
	HeuristicPrefix    int
	HeuristicThreshold float64
	HeuristicWeights   scanner.HeuristicWeights
	MagicNumbers       []scanner.MagicNumber
	Signatures         []scanner.Signature
	BlockedExtensions  []string
}

// defaultBlockedExtensions are the executable and script extensions the
// naming policy refuses, both as the final extension and as the target of a
// double-extension spoof.
var defaultBlockedExtensions = []string{"exe", "bat", "sh", "bin", "dll", "ps1"}

// DefaultPolicy derives the inspection policy from the security
// configuration, with the built-in magic number and signature sets.
func DefaultPolicy(sec config.SecurityConfig) Policy {
	return Policy{
		MaxUploadSize:      sec.MaxUploadSize,
		HeaderPrefixSize:   sec.HeaderPrefixSize,
		ScanChunkSize:      sec.ScanChunkSize,
		HeuristicPrefix:    sec.HeuristicPrefix,
		HeuristicThreshold: sec.HeuristicThreshold,
		HeuristicWeights: scanner.HeuristicWeights{
			SpecialChars: config.DefaultWeightSpecialChars,
			Base64Runs:   config.DefaultWeightBase64Runs,
			SQLKeywords:  config.DefaultWeightSQLKeywords,
			ScriptTokens: config.DefaultWeightScriptTokens,
		},
		MagicNumbers:       scanner.DefaultMagicNumbers(),
		Signatures:         scanner.DefaultSignatures(),
		BlockedExtensions:  defaultBlockedExtensions,
	}
}

// spoofPattern matches a short alphanumeric extension segment immediately
// followed by a blocked extension, e.g. report.csv.exe.
func (p Policy) spoofPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)\.[a-z0-9]{2,4}\.(` + extensionAlternation(p.BlockedExtensions) + `)$`)
}

// blockedPattern matches a filename whose final extension is blocked.
func (p Policy) blockedPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)\.(` + extensionAlternation(p.BlockedExtensions) + `)$`)
}

func extensionAlternation(exts []string) string {
	alt := ""
	for i, ext := range exts {
		if i > 0 {
			alt += "|"
		}
		alt += regexp.QuoteMeta(ext)
	}
	return alt
}
