package scanner

import (
	"bytes"
	"fmt"
	"io"
)

// Signature is one fixed byte pattern associated with a known attack class.
// Matching is case-insensitive.
type Signature struct {
	Name    string
	Pattern []byte
}

// DefaultSignatures returns the built-in threat signature set: script
// injection, SQL injection and shell/command execution patterns. The set is
// fixed by design; this is not an extensible antivirus engine.
func DefaultSignatures() []Signature {
	return []Signature{
		// Script injection
		{Name: "script tag", Pattern: []byte("<script")},
		{Name: "javascript URI", Pattern: []byte("javascript:")},
		{Name: "onerror handler", Pattern: []byte("onerror=")},
		{Name: "onload handler", Pattern: []byte("onload=")},
		{Name: "eval call", Pattern: []byte("eval(")},
		{Name: "document.cookie access", Pattern: []byte("document.cookie")},
		// SQL injection
		{Name: "SQL union select", Pattern: []byte("union select")},
		{Name: "SQL drop table", Pattern: []byte("drop table")},
		{Name: "SQL comment attack", Pattern: []byte("' or '1'='1")},
		{Name: "SQL xp_cmdshell", Pattern: []byte("xp_cmdshell")},
		// Shell / command execution
		{Name: "shell rm -rf", Pattern: []byte("rm -rf")},
		{Name: "shell interpreter", Pattern: []byte("/bin/sh")},
		{Name: "cmd.exe invocation", Pattern: []byte("cmd.exe")},
		{Name: "powershell invocation", Pattern: []byte("powershell -")},
	}
}

// SignatureScanner scans content against a signature set in bounded chunks.
type SignatureScanner struct {
	signatures []Signature
	chunkSize  int
	overlap    int
}

// NewSignatureScanner builds a scanner over the given signature set.
// chunkSize bounds how much content is resident at once; the scanner keeps
// an overlap of maxPatternLen-1 bytes between chunks so a signature spanning
// a chunk seam is still found.
func NewSignatureScanner(signatures []Signature, chunkSize int) *SignatureScanner {
	maxLen := 0
	lowered := make([]Signature, len(signatures))
	for i, sig := range signatures {
		lowered[i] = Signature{Name: sig.Name, Pattern: bytes.ToLower(sig.Pattern)}
		if len(sig.Pattern) > maxLen {
			maxLen = len(sig.Pattern)
		}
	}
	if chunkSize < maxLen {
		chunkSize = maxLen
	}

	overlap := 0
	if maxLen > 0 {
		overlap = maxLen - 1
	}

	return &SignatureScanner{
		signatures: lowered,
		chunkSize:  chunkSize,
		overlap:    overlap,
	}
}

// Scan reads r in chunks and returns the first matching signature, if any.
// Scanning stops at the first match; the whole stream is consumed otherwise.
// The full content is never materialized in memory at once.
func (s *SignatureScanner) Scan(r io.Reader) (Signature, bool, error) {
	buf := make([]byte, s.overlap+s.chunkSize)
	carry := 0

	for {
		n, err := io.ReadFull(r, buf[carry:])
		window := buf[:carry+n]

		if sig, ok := s.matchWindow(window); ok {
			return sig, true, nil
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Signature{}, false, nil
		}
		if err != nil {
			return Signature{}, false, fmt.Errorf("failed to read content chunk: %w", err)
		}

		// Keep the window tail so seam-spanning patterns still match.
		if s.overlap > 0 && len(window) >= s.overlap {
			copy(buf, window[len(window)-s.overlap:])
			carry = s.overlap
		} else {
			carry = 0
		}
	}
}

// ScanBytes checks an in-memory buffer against the signature set.
func (s *SignatureScanner) ScanBytes(data []byte) (Signature, bool) {
	return s.matchWindow(data)
}

func (s *SignatureScanner) matchWindow(window []byte) (Signature, bool) {
	lowered := bytes.ToLower(window)
	for _, sig := range s.signatures {
		if len(sig.Pattern) == 0 {
			continue
		}
		if bytes.Contains(lowered, sig.Pattern) {
			return sig, true
		}
	}
	return Signature{}, false
}
