package churn

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/surgura/id-key-collections/internal/telemetry/logger"
	"github.com/surgura/id-key-collections/pkg/idmap"
)

// Object is the unit of load. Objects are keyed by identity, so the
// payload only exists to give the GC something to reclaim.
type Object struct {
	Seq     uint64
	payload [56]byte
}

// Config holds the workload parameters.
type Config struct {
	// Objects is the steady-state number of live objects.
	Objects int
	// Rate is the number of replacements per second.
	Rate float64
	// GCInterval is how often a forced GC cycle runs. Zero disables
	// forced cycles.
	GCInterval time.Duration
	// Logger receives engine progress. Defaults to the package default.
	Logger logger.Logger
}

// DefaultConfig returns a workload of 10k objects churning at 1k/s.
func DefaultConfig() Config {
	return Config{
		Objects:    10000,
		Rate:       1000,
		GCInterval: time.Second,
	}
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	Duration time.Duration
	// Churned is the number of objects replaced during the run.
	Churned uint64
	// Live is the store size after the final reclamation settle.
	Live int
	// Settled reports whether the store size converged back to the
	// configured population before the settle deadline.
	Settled bool
	// Stats is the store's counter snapshot at the end of the run.
	Stats idmap.Stats
}

// Engine replaces objects in an identity-keyed store at a fixed rate.
type Engine struct {
	cfg     Config
	runID   string
	store   *idmap.Map[Object, uint64]
	limiter *rate.Limiter
	log     logger.Logger

	mu      sync.Mutex
	held    []*Object
	churned uint64
	seq     uint64
}

// New creates an engine for the given workload.
func New(cfg Config) (*Engine, error) {
	if cfg.Objects <= 0 {
		return nil, fmt.Errorf("churn: objects must be positive, got %d", cfg.Objects)
	}
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("churn: rate must be positive, got %v", cfg.Rate)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	runID := ulid.Make().String()
	return &Engine{
		cfg:     cfg,
		runID:   runID,
		store:   idmap.New[Object, uint64](idmap.WithInitialCapacity(cfg.Objects), idmap.WithLogger(log.Slog())),
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		log:     log.With("run_id", runID),
	}, nil
}

// RunID returns the unique identifier of this engine's run.
func (e *Engine) RunID() string {
	return e.runID
}

// Store exposes the underlying store, e.g. for metrics registration.
func (e *Engine) Store() *idmap.Map[Object, uint64] {
	return e.store
}

// SetChurnRate adjusts the replacement rate of a running engine.
func (e *Engine) SetChurnRate(perSecond float64) {
	if perSecond <= 0 {
		return
	}
	e.limiter.SetLimit(rate.Limit(perSecond))
	e.log.Info("churn rate changed", "rate", perSecond)
}

// Run populates the store and churns it until ctx is canceled. It then
// waits for reclamation to settle and returns the run summary.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	if err := e.populate(); err != nil {
		return Result{}, err
	}
	e.log.Info("population ready",
		"objects", e.cfg.Objects,
		"rate", float64(e.limiter.Limit()),
	)

	var gcTick <-chan time.Time
	if e.cfg.GCInterval > 0 {
		ticker := time.NewTicker(e.cfg.GCInterval)
		defer ticker.Stop()
		gcTick = ticker.C
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

loop:
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			break loop
		}
		select {
		case <-gcTick:
			runtime.GC()
		default:
		}
		if err := e.replaceOne(rng); err != nil {
			return Result{}, err
		}
	}

	return e.finish(start)
}

// populate fills the store with the steady-state population.
func (e *Engine) populate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.held = make([]*Object, e.cfg.Objects)
	for i := range e.held {
		e.seq++
		obj := &Object{Seq: e.seq}
		if err := e.store.Set(obj, e.seq); err != nil {
			return fmt.Errorf("churn: populate: %w", err)
		}
		e.held[i] = obj
	}
	return nil
}

// replaceOne swaps a random held object for a fresh one. The old object
// becomes unreachable and its entry should be reclaimed.
func (e *Engine) replaceOne(rng *rand.Rand) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := rng.Intn(len(e.held))
	e.seq++
	obj := &Object{Seq: e.seq}
	if err := e.store.Set(obj, e.seq); err != nil {
		return fmt.Errorf("churn: replace: %w", err)
	}
	e.held[i] = obj
	e.churned++
	return nil
}

// settleDeadline bounds how long finish waits for reclamation.
const settleDeadline = 15 * time.Second

// finish forces GC until the store size converges back to the held
// population, then snapshots the result.
func (e *Engine) finish(start time.Time) (Result, error) {
	e.mu.Lock()
	churned := e.churned
	want := len(e.held)
	e.mu.Unlock()

	settled := false
	deadline := time.Now().Add(settleDeadline)
	for time.Now().Before(deadline) {
		runtime.GC()
		if e.store.Len() == want {
			settled = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	res := Result{
		RunID:    e.runID,
		Duration: time.Since(start),
		Churned:  churned,
		Live:     e.store.Len(),
		Settled:  settled,
		Stats:    e.store.Stats(),
	}

	e.log.Info("run finished",
		"duration", res.Duration,
		"churned", res.Churned,
		"live", res.Live,
		"settled", res.Settled,
		"reclaims", res.Stats.Reclaims,
	)
	if !settled {
		e.log.Warn("store did not settle to the configured population",
			"live", res.Live,
			"want", want,
		)
	}
	return res, nil
}
