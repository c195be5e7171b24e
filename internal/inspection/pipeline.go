package inspection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/audit"
	gwerrors "github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/errors"
	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/scanner"
)

// AuditSink receives one event per inspection. Implementations must be safe
// for concurrent use; the pipeline never lets a sink failure alter a verdict.
type AuditSink interface {
	Record(event audit.Event) error
}

// Pipeline screens candidate files layer by layer and produces a verdict per
// file. Layers run in strict order, cheapest first, and short-circuit on the
// first rejection.
type Pipeline struct {
	policy        Policy
	sink          AuditSink
	sigScanner    *scanner.SignatureScanner
	scorer        *scanner.HeuristicScorer
	spoofPattern  *regexp.Regexp
	blockPattern  *regexp.Regexp
	logger        *slog.Logger
}

// NewPipeline builds an inspection pipeline from an immutable policy and an
// audit sink. The signature matcher set is compiled here, once.
func NewPipeline(policy Policy, sink AuditSink, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		policy:       policy,
		sink:         sink,
		sigScanner:   scanner.NewSignatureScanner(policy.Signatures, policy.ScanChunkSize),
		scorer:       scanner.NewHeuristicScorer(policy.HeuristicWeights),
		spoofPattern: policy.spoofPattern(),
		blockPattern: policy.blockedPattern(),
		logger:       logger.With(slog.String("component", "inspection")),
	}
}

// Inspect evaluates one candidate file and returns its verdict. The verdict
// is a pure function of (name, bytes); exactly one audit event is recorded
// per invocation, pass or fail.
func (p *Pipeline) Inspect(ctx context.Context, file CandidateFile) Verdict {
	verdict := p.evaluate(file)

	status := audit.StatusClean
	if !verdict.Safe {
		status = audit.StatusBlocked
	}

	event := audit.NewEvent(file.Name, status, verdict.Reason, verdict.ContentHash)
	if err := p.sink.Record(event); err != nil {
		// Audit failures are reported separately, never surfaced as a
		// false rejection.
		p.logger.WarnContext(ctx, "failed to record audit event",
			slog.String("filename", file.Name),
			slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "inspection completed",
		slog.String("filename", file.Name),
		slog.Bool("safe", verdict.Safe),
		slog.String("reason", verdict.Reason),
		slog.String("content_hash", verdict.ContentHash))

	return verdict
}

// evaluate runs the inspection layers without side effects.
func (p *Pipeline) evaluate(file CandidateFile) Verdict {
	// Layer 1: naming policy. No content is read.
	if reason, ok := p.checkNaming(file.Name); !ok {
		return Verdict{Safe: false, Kind: gwerrors.KindPolicyViolation, Reason: reason}
	}

	// Layer 2: size policy. Enforced before any content read so oversized
	// uploads cannot consume memory or CPU.
	if file.Size > p.policy.MaxUploadSize {
		return Verdict{Safe: false, Kind: gwerrors.KindPolicyViolation, Reason: fmt.Sprintf(
			"size policy violation: declared size %d bytes exceeds the %d byte limit",
			file.Size, p.policy.MaxUploadSize)}
	}

	// Layer 3: integrity fingerprint over the full stream.
	hash, err := p.hashContent(file)
	if err != nil {
		return Verdict{Safe: false, Kind: gwerrors.KindIntegrityFailure,
			Reason: fmt.Sprintf("Hashing Failed: %v", err)}
	}

	// Layers 4-6 share one content pass: the bounded prefix is buffered
	// for the header check and heuristic scoring, the remainder streams
	// through the signature scanner in chunks.
	prefix, rest, closeStream, err := p.acquireContent(file)
	if err != nil {
		return Verdict{Safe: false, Kind: gwerrors.KindIntegrityFailure, ContentHash: hash,
			Reason: fmt.Sprintf("content read failed: %v", err)}
	}
	defer closeStream()

	// Layer 4: header verification against executable magic numbers.
	header := prefix
	if len(header) > p.policy.HeaderPrefixSize {
		header = header[:p.policy.HeaderPrefixSize]
	}
	if magic, ok := scanner.MatchMagic(header, p.policy.MagicNumbers); ok {
		return Verdict{Safe: false, Kind: gwerrors.KindThreatDetected, ContentHash: hash,
			Reason: fmt.Sprintf("executable content detected: %s", magic.Name)}
	}

	// Layer 5: deep signature scan over the entire content.
	sig, found, err := p.sigScanner.Scan(io.MultiReader(bytes.NewReader(prefix), rest))
	if err != nil {
		return Verdict{Safe: false, Kind: gwerrors.KindIntegrityFailure, ContentHash: hash,
			Reason: fmt.Sprintf("content read failed during signature scan: %v", err)}
	}
	if found {
		return Verdict{Safe: false, Kind: gwerrors.KindThreatDetected, ContentHash: hash,
			Reason: fmt.Sprintf("threat signature detected: %s", sig.Name)}
	}

	// Layer 6: heuristic anomaly scoring on the bounded prefix only.
	score := p.scorer.Score(prefix)
	if score.Score >= p.policy.HeuristicThreshold {
		return Verdict{Safe: false, Kind: gwerrors.KindThreatDetected,
			ContentHash: hash, HeuristicScore: score.Score,
			Reason: fmt.Sprintf("heuristic anomaly score %.2f exceeds threshold %.2f",
				score.Score, p.policy.HeuristicThreshold)}
	}

	return Verdict{Safe: true, Reason: ReasonClean, ContentHash: hash, HeuristicScore: score.Score}
}

// checkNaming rejects blocked extensions and double-extension spoofs.
func (p *Pipeline) checkNaming(name string) (string, bool) {
	if p.spoofPattern.MatchString(name) {
		return fmt.Sprintf("naming policy violation: double-extension spoof in %q", name), false
	}
	if p.blockPattern.MatchString(name) {
		return fmt.Sprintf("naming policy violation: disallowed extension in %q", name), false
	}
	return "", true
}

// hashContent streams the full content through SHA-256 in bounded chunks.
func (p *Pipeline) hashContent(file CandidateFile) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("cannot open content: %w", err)
	}
	defer rc.Close()

	return scanner.HashReader(rc)
}

// acquireContent opens a fresh content stream, buffers the bounded prefix
// needed by the header and heuristic layers, and returns the remainder as a
// reader. The caller owns closing via the returned func.
func (p *Pipeline) acquireContent(file CandidateFile) ([]byte, io.Reader, func(), error) {
	rc, err := file.Open()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cannot open content: %w", err)
	}

	prefixSize := p.policy.HeuristicPrefix
	if p.policy.HeaderPrefixSize > prefixSize {
		prefixSize = p.policy.HeaderPrefixSize
	}

	prefix := make([]byte, prefixSize)
	n, err := io.ReadFull(rc, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		rc.Close()
		return nil, nil, nil, fmt.Errorf("cannot read content prefix: %w", err)
	}

	return prefix[:n], rc, func() { rc.Close() }, nil
}
