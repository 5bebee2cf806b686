package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/acervo-legal/acervo/pkg/archive"
	"github.com/acervo-legal/acervo/pkg/parser"
	"github.com/acervo-legal/acervo/pkg/quality"
)

// State is the per-document processing state.
type State string

const (
	StatePending    State = "pending"
	StateAcquiring  State = "acquiring"
	StateExtracting State = "extracting"
	StateParsing    State = "parsing"
	StateScoring    State = "scoring"
	StatePersisted  State = "persisted"
	StateFailed     State = "failed"
)

// StageRecord is one completed stage with its duration.
type StageRecord struct {
	State    State         `json:"state"`
	Duration time.Duration `json:"duration"`
}

// Request describes one document to ingest.
type Request struct {
	// Key identifies the raw source in the source store.
	Key string

	// Kind selects the extraction path.
	Kind SourceKind

	// Metadata is the archival identity record for the document.
	Metadata archive.Metadata
}

// Result is the mutable per-document record owned exclusively by the
// orchestrator while a document is processed, and returned once
// terminal.
type Result struct {
	// IngestionID uniquely identifies this processing run.
	IngestionID string `json:"ingestion_id"`

	// Key is the source key from the request.
	Key string `json:"key"`

	// State is the terminal state: persisted or failed.
	State State `json:"state"`

	// Stages lists every completed stage in order, across the final
	// attempt, for partial-success introspection.
	Stages []StageRecord `json:"stages"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Document and Serialized are the hand-off payload on success.
	Document   *archive.Document `json:"-"`
	Serialized []byte            `json:"-"`

	// Metrics is the quality record on success. A low grade is still
	// a success.
	Metrics *quality.Metrics `json:"metrics,omitempty"`
}

// Orchestrator drives the per-document state machine:
// Pending, Acquiring, Extracting, Parsing, Scoring, then Persisted or
// Failed. It is the only component with retry semantics.
type Orchestrator struct {
	store     SourceStore
	extractor *Extractor
	parser    *parser.Parser
	scorer    *quality.Scorer
	logger    hclog.Logger

	acquireRetries  uint64
	unitRetries     uint64
	acquireInterval time.Duration
}

// Option is a functional option for creating an Orchestrator.
type Option func(*Orchestrator)

// WithStore sets the source store.
func WithStore(store SourceStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithExtractor sets the text extractor.
func WithExtractor(e *Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithParser sets the structural parser.
func WithParser(p *parser.Parser) Option {
	return func(o *Orchestrator) { o.parser = p }
}

// WithScorer sets the quality scorer.
func WithScorer(s *quality.Scorer) Option {
	return func(o *Orchestrator) { o.scorer = s }
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithAcquireRetries sets the number of extra acquisition attempts.
func WithAcquireRetries(n uint64) Option {
	return func(o *Orchestrator) { o.acquireRetries = n }
}

// WithUnitRetries sets the number of extra attempts for the whole
// Acquiring through Scoring sequence.
func WithUnitRetries(n uint64) Option {
	return func(o *Orchestrator) { o.unitRetries = n }
}

// WithAcquireInterval sets the initial acquisition backoff interval.
// Mainly for tests; the default is 2 seconds, doubling per attempt.
func WithAcquireInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.acquireInterval = d }
}

// NewOrchestrator creates an orchestrator. A source store is required;
// the parser, extractor, and scorer default to their standard
// configurations.
func NewOrchestrator(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		acquireRetries:  2,
		unitRetries:     1,
		acquireInterval: 2 * time.Second,
		logger: hclog.New(&hclog.LoggerOptions{
			Name: "ingest",
		}),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.store == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if o.extractor == nil {
		o.extractor = NewExtractor(ExtractorConfig{Logger: o.logger})
	}
	if o.parser == nil {
		o.parser = parser.New(parser.Config{Logger: o.logger})
	}
	if o.scorer == nil {
		o.scorer = quality.NewScorer(quality.Config{Logger: o.logger})
	}

	return o, nil
}

// Process runs the full state machine for one document. The whole
// Acquiring through Scoring sequence is retried as a unit on error; a
// low quality grade is a valid success and never retried. The returned
// result is terminal.
func (o *Orchestrator) Process(ctx context.Context, req Request) *Result {
	result := &Result{
		IngestionID: uuid.NewString(),
		Key:         req.Key,
		State:       StatePending,
	}

	if err := ctx.Err(); err != nil {
		result.State = StateFailed
		result.Error = err.Error()
		return result
	}

	var attemptErrs *multierror.Error
	attempts := o.unitRetries + 1
	for attempt := uint64(0); attempt < attempts; attempt++ {
		if attempt > 0 {
			o.logger.Warn("retrying document",
				"key", req.Key, "attempt", attempt+1)
			// Stage history reflects the final attempt only.
			result.Stages = nil
		}

		err := o.processOnce(ctx, req, result)
		if err == nil {
			result.State = StatePersisted
			result.Success = true
			return result
		}

		attemptErrs = multierror.Append(attemptErrs, err)
		if ctx.Err() != nil {
			break
		}
	}

	result.State = StateFailed
	result.Success = false
	result.Error = attemptErrs.Error()
	o.logger.Error("document failed",
		"key", req.Key, "error", result.Error, "stages", len(result.Stages))
	return result
}

// processOnce runs one attempt of the Acquiring through Scoring
// sequence, appending each completed stage to the result.
func (o *Orchestrator) processOnce(ctx context.Context, req Request, result *Result) error {
	attemptStart := time.Now()

	var raw []byte
	err := o.runStage(result, StateAcquiring, func() error {
		var err error
		raw, err = o.acquire(ctx, req.Key)
		return err
	})
	if err != nil {
		return fmt.Errorf("acquiring: %w", err)
	}

	var text string
	err = o.runStage(result, StateExtracting, func() error {
		var err error
		text, err = o.extractor.Extract(ctx, raw, req.Kind)
		return err
	})
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	var parsed *parseOutput
	err = o.runStage(result, StateParsing, func() error {
		parsed = o.parse(text, req.Metadata)
		return nil
	})
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	err = o.runStage(result, StateScoring, func() error {
		metrics := o.scorer.ScoreDocument(parsed.doc, quality.Input{
			SourceID:         req.Key,
			ExpectedArticles: req.Metadata.ExpectedArticles,
			Confidence:       parsed.confidence,
			Elapsed:          time.Since(attemptStart),
		})
		result.Metrics = &metrics
		return nil
	})
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	result.Document = parsed.doc
	result.Serialized = parsed.serialized
	return nil
}

type parseOutput struct {
	doc        *archive.Document
	serialized []byte
	confidence float64
}

// parse runs the structural parse, assembles the hierarchy, and
// serializes the archival document. Parsing never fails; serialization
// of the struct-only document model cannot fail either, so any marshal
// error would indicate a programming bug and is swallowed into an empty
// payload with a log line.
func (o *Orchestrator) parse(text string, meta archive.Metadata) *parseOutput {
	parseResult := o.parser.Parse(text)
	tree := o.parser.Assemble(parseResult)
	doc := archive.Serialize(tree, meta)

	serialized, err := doc.Marshal()
	if err != nil {
		o.logger.Error("failed to marshal archival document", "error", err)
	}
	return &parseOutput{
		doc:        doc,
		serialized: serialized,
		confidence: parseResult.Confidence,
	}
}

// acquire fetches raw bytes from the cache-first store with exponential
// backoff: the configured number of extra attempts, starting at the
// acquire interval and doubling.
func (o *Orchestrator) acquire(ctx context.Context, key string) ([]byte, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = o.acquireInterval
	expo.Multiplier = 2
	expo.RandomizationFactor = 0

	return backoff.RetryWithData(func() ([]byte, error) {
		data, err := o.store.Fetch(ctx, key)
		if err != nil {
			o.logger.Warn("acquisition attempt failed", "key", key, "error", err)
			return nil, err
		}
		return data, nil
	}, backoff.WithContext(backoff.WithMaxRetries(expo, o.acquireRetries), ctx))
}

// runStage runs fn under the given state, appending a stage record only
// when the stage completes.
func (o *Orchestrator) runStage(result *Result, state State, fn func() error) error {
	result.State = state
	start := time.Now()
	if err := fn(); err != nil {
		return err
	}
	result.Stages = append(result.Stages, StageRecord{
		State:    state,
		Duration: time.Since(start),
	})
	return nil
}

// ProcessBatch processes documents with a bounded worker pool, one
// in-flight document per worker. There is no cross-document
// coordination; batch cancellation is the caller's concern via ctx.
func (o *Orchestrator) ProcessBatch(ctx context.Context, reqs []Request, workers int) []*Result {
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(reqs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = o.Process(ctx, reqs[i])
			}
		}()
	}

	for i := range reqs {
		select {
		case <-ctx.Done():
			// Stop submitting new work; in-flight documents finish.
		case indexes <- i:
			continue
		}
		break
	}
	close(indexes)
	wg.Wait()

	for i := range results {
		if results[i] == nil {
			results[i] = &Result{
				IngestionID: uuid.NewString(),
				Key:         reqs[i].Key,
				State:       StateFailed,
				Error:       context.Canceled.Error(),
			}
		}
	}
	return results
}
