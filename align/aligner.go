package align

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aligner drives the full alignment pipeline for one export job:
// retrieval, classification, and record building against one shared
// cell counter.
type Aligner struct {
	retriever   *Retriever
	classifier  *Classifier
	counter     *Counter
	concurrency int
	logger      *zap.Logger
	tracer      trace.Tracer
}

// AlignerOption customizes an Aligner.
type AlignerOption func(*Aligner)

// WithConcurrency bounds how many concepts are retrieved and classified
// in parallel during a batch run (default 1, fully sequential).
func WithConcurrency(n int) AlignerOption {
	return func(a *Aligner) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAligner creates an aligner. The counter is owned by the caller and
// shared across the whole run; pass a fresh one per export job.
func NewAligner(retriever *Retriever, classifier *Classifier, counter *Counter, logger *zap.Logger, opts ...AlignerOption) *Aligner {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aligner{
		retriever:   retriever,
		classifier:  classifier,
		counter:     counter,
		concurrency: 1,
		logger:      logger.With(zap.String("component", "aligner")),
		tracer:      otel.Tracer("semalign/align"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AlignConcept aligns one source concept: retrieves up to K candidates,
// classifies them, and builds records from the non-none verdicts. Zero
// retrieved candidates yields zero records with the counter unchanged,
// not an error.
func (a *Aligner) AlignConcept(ctx context.Context, src SourceConcept, taxonomyFilter string) ([]Record, error) {
	ctx, span := a.tracer.Start(ctx, "align.concept",
		trace.WithAttributes(attribute.String("concept.uri", src.URI)))
	defer span.End()

	candidates, verdicts, err := a.classify(ctx, src, taxonomyFilter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		a.logger.Debug("no candidates for concept", zap.String("uri", src.URI))
		return nil, nil
	}
	return Build(candidates, verdicts, a.counter)
}

func (a *Aligner) classify(ctx context.Context, src SourceConcept, taxonomyFilter string) ([]Candidate, []Verdict, error) {
	candidates, err := a.retriever.Retrieve(ctx, src, taxonomyFilter)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}
	verdicts, err := a.classifier.Classify(ctx, src.Label, src.Definition, candidates)
	if err != nil {
		return nil, nil, err
	}
	return candidates, verdicts, nil
}

// ConceptResult is the per-concept outcome of a batch run. A failed
// concept carries its error and no records; other concepts in the same
// run are unaffected.
type ConceptResult struct {
	Source  SourceConcept
	Records []Record
	Err     error
}

// Run aligns many source concepts against one shared counter. Retrieval
// and classification may run concurrently (bounded by WithConcurrency);
// record building always happens sequentially in input order, so cell
// identifiers are allocated deterministically.
func (a *Aligner) Run(ctx context.Context, concepts []SourceConcept, taxonomyFilter string) []ConceptResult {
	ctx, span := a.tracer.Start(ctx, "align.run",
		trace.WithAttributes(attribute.Int("concepts", len(concepts))))
	defer span.End()

	type classified struct {
		candidates []Candidate
		verdicts   []Verdict
		err        error
	}
	outcomes := make([]classified, len(concepts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, src := range concepts {
		g.Go(func() error {
			candidates, verdicts, err := a.classify(gctx, src, taxonomyFilter)
			// failures are isolated per concept, never cancel the group
			outcomes[i] = classified{candidates: candidates, verdicts: verdicts, err: err}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]ConceptResult, len(concepts))
	for i, src := range concepts {
		out := outcomes[i]
		result := ConceptResult{Source: src, Err: out.err}
		if out.err == nil && len(out.candidates) > 0 {
			result.Records, result.Err = Build(out.candidates, out.verdicts, a.counter)
		}
		if result.Err != nil {
			a.logger.Warn("concept alignment failed",
				zap.String("uri", src.URI),
				zap.Error(result.Err))
		}
		results[i] = result
	}
	return results
}
