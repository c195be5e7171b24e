package inspection

import (
	"bytes"
	"fmt"
	"io"
	"os"

	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
)

// CandidateFile is one untrusted upload under inspection. The content is
// exposed as a re-openable stream so each inspection layer acquires its own
// reader with a well-defined position instead of sharing seek state.
type CandidateFile struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// Open acquires a fresh reader positioned at the start of the content.
func (c CandidateFile) Open() (io.ReadCloser, error) {
	if c.open == nil {
		return nil, fmt.Errorf("candidate %s has no content source", c.Name)
	}
	return c.open()
}

// NewCandidateFromPath builds a candidate from a file on disk. The declared
// size is taken from the filesystem.
func NewCandidateFromPath(path, name string) (CandidateFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return CandidateFile{}, fmt.Errorf("failed to stat candidate file: %w", err)
	}

	return CandidateFile{
		Name: name,
		Size: info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// NewCandidateFromBytes builds an in-memory candidate, used by tests and by
// callers that receive content over the wire.
func NewCandidateFromBytes(name string, data []byte) CandidateFile {
	return CandidateFile{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Verdict is the immutable outcome of inspecting one candidate file. Kind
// classifies a rejection into the gateway error taxonomy; it is empty on a
// passing verdict.
type Verdict struct {
	Safe           bool          `json:"safe"`
	Kind           gwerrors.Kind `json:"kind,omitempty"`
	Reason         string        `json:"reason"`
	ContentHash    string        `json:"content_hash"`
	HeuristicScore float64       `json:"heuristic_score"`
}

// ReasonClean is the exact reason string of a passing verdict.
const ReasonClean = "File is clean."
