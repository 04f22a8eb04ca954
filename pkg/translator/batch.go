package translator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/pagetranslate/pagetranslate/internal/logging"
	"github.com/pagetranslate/pagetranslate/internal/metrics"
	"github.com/pagetranslate/pagetranslate/internal/storage"
	"github.com/pagetranslate/pagetranslate/pkg/client"
)

// DefaultStreams is the number of concurrent streams per batch.
const DefaultStreams = 2

// Translator is an authenticated handle that translates batches of jobs.
type Translator struct {
	backend  Backend
	store    storage.Backend
	streams  int
	inFlight *semaphore.Weighted // nil means no cap
}

// Option configures a Translator.
type Option func(*Translator)

// WithStreams sets how many streams a batch is split into. Values below 1 mean 1.
func WithStreams(n int) Option {
	return func(t *Translator) {
		if n < 1 {
			n = 1
		}
		t.streams = n
	}
}

// WithMaxInFlight caps the number of jobs running at once across all
// Translate calls on the Translator. Values below 1 mean no cap.
func WithMaxInFlight(n int) Option {
	return func(t *Translator) {
		if n < 1 {
			t.inFlight = nil
			return
		}
		t.inFlight = semaphore.NewWeighted(int64(n))
	}
}

// New authenticates backend with creds and returns a Translator writing
// results through store. If authentication fails no Translator is returned.
func New(ctx context.Context, backend Backend, store storage.Backend, creds Credentials, opts ...Option) (*Translator, error) {
	t := &Translator{
		backend: backend,
		store:   store,
		streams: DefaultStreams,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := backend.Authenticate(ctx, creds); err != nil {
		return nil, err
	}

	logging.WithContext(ctx).Info("authenticated",
		zap.String("backend", backend.Name()),
		zap.String("email", creds.Email),
	)
	return t, nil
}

// Partition deals jobs round-robin into n ordered subsets: job i goes to
// subset i mod n. Relative order is kept within each subset.
func Partition(jobs []Job, n int) [][]Job {
	if n < 1 {
		n = 1
	}
	subsets := make([][]Job, n)
	for i, job := range jobs {
		subsets[i%n] = append(subsets[i%n], job)
	}
	return subsets
}

// Translate runs every job and returns nil only if all of them succeeded.
//
// Jobs are partitioned into streams; each stream processes its jobs in
// order and stops at its first failure. Streams run concurrently and
// independently: a failing stream does not stop the others. When at most
// one stream has work it runs on the calling goroutine. The error of the
// lowest-numbered failing stream is returned.
func (t *Translator) Translate(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}

	var subsets [][]Job
	for _, s := range Partition(jobs, t.streams) {
		if len(s) > 0 {
			subsets = append(subsets, s)
		}
	}

	logger := logging.WithContext(ctx)
	logger.Info("batch started",
		zap.Int("jobs", len(jobs)),
		zap.Int("streams", len(subsets)),
	)
	start := time.Now()

	var err error
	if len(subsets) == 1 {
		err = t.runStream(ctx, 0, subsets[0])
	} else {
		err = t.runConcurrent(ctx, subsets)
	}

	if err != nil {
		logger.Error("batch failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}
	logger.Info("batch finished", zap.Int("jobs", len(jobs)), zap.Duration("duration", time.Since(start)))
	return nil
}

func (t *Translator) runConcurrent(ctx context.Context, subsets [][]Job) error {
	errs := make([]error, len(subsets))

	var wg sync.WaitGroup
	for i, subset := range subsets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = t.runStream(ctx, i, subset)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// runStream processes jobs sequentially and aborts on the first failure.
func (t *Translator) runStream(ctx context.Context, stream int, jobs []Job) error {
	ctx = logging.With(ctx, zap.Int("stream", stream))
	logger := logging.WithContext(ctx)

	for i, job := range jobs {
		if err := t.runJob(ctx, job); err != nil {
			logger.Warn("stream aborted",
				zap.String("source", job.Source),
				zap.Int("remaining", len(jobs)-i-1),
				zap.Error(err),
			)
			return fmt.Errorf("stream %d: job %q -> %q: %w", stream, job.Source, job.Destination, err)
		}
	}

	logger.Debug("stream finished", zap.Int("jobs", len(jobs)))
	return nil
}

func (t *Translator) runJob(ctx context.Context, job Job) error {
	if t.inFlight != nil {
		if err := t.inFlight.Acquire(ctx, 1); err != nil {
			return err
		}
		defer t.inFlight.Release(1)
	}

	start := time.Now()

	data, err := t.backend.TranslatePage(ctx, job.Source)
	if err != nil {
		metrics.RecordJob(time.Since(start), 0, false)
		return err
	}

	if err := t.store.WriteObject(ctx, job.Destination, data); err != nil {
		metrics.RecordJob(time.Since(start), 0, false)
		return &client.IOError{Op: "write", Path: job.Destination, Err: err}
	}

	duration := time.Since(start)
	metrics.RecordJob(duration, int64(len(data)), true)
	logging.WithContext(ctx).Info("page translated",
		zap.String("source", job.Source),
		zap.String("destination", job.Destination),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", duration),
	)
	return nil
}
