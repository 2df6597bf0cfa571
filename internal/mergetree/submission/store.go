// Package submission holds the visualization state of recent sort submissions.
//
// Each submission is sorted once, synchronously, when it is created. The reveal delay only controls when the web layer stops showing a loading placeholder and shows the finished tree.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/bluesky-social/mergetree/internal/mergetree/metrics"
	"github.com/bluesky-social/mergetree/mergesort"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("mergetree/submission")

var ErrNotFound = errors.New("submission not found")

type Config struct {
	// Maximum number of submissions kept in memory
	Capacity int
	// How long a submission is kept after it was created
	TTL time.Duration
	// Time between creating a submission and revealing its tree
	Delay time.Duration
	// Clock used for CreatedAt/ReadyAt; defaults to time.Now
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Capacity: 10_000,
		TTL:      30 * time.Minute,
		Delay:    time.Second,
	}
}

type Submission struct {
	ID        string
	Input     []float64
	Tree      *mergesort.Node[float64]
	Nodes     int
	Depth     int
	CreatedAt time.Time
	ReadyAt   time.Time
}

// Ready reports whether the reveal delay has elapsed at now.
func (s *Submission) Ready(now time.Time) bool {
	return !now.Before(s.ReadyAt)
}

type Store struct {
	cache *expirable.LRU[string, *Submission]
	delay time.Duration
	now   func() time.Time
}

func NewStore(config Config) *Store {
	def := DefaultConfig()
	if config.Capacity <= 0 {
		config.Capacity = def.Capacity
	}
	if config.TTL <= 0 {
		config.TTL = def.TTL
	}
	if config.Delay < 0 {
		config.Delay = 0
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	onEvict := func(id string, sub *Submission) {
		metrics.SubmissionsEvicted.Inc()
	}
	return &Store{
		cache: expirable.NewLRU[string, *Submission](config.Capacity, onEvict, config.TTL),
		delay: config.Delay,
		now:   config.Now,
	}
}

// Submit sorts numbers and stores the resulting tree under a fresh ID.
func (s *Store) Submit(ctx context.Context, numbers []float64) *Submission {
	_, span := tracer.Start(ctx, "Submit")
	defer span.End()

	start := time.Now()
	tree := mergesort.Visualize(numbers)
	metrics.SortDuration.Observe(time.Since(start).Seconds())
	metrics.InputLength.Observe(float64(len(numbers)))

	created := s.now()
	sub := &Submission{
		ID:        uuid.NewString(),
		Input:     tree.Initial,
		Tree:      tree,
		Nodes:     mergesort.Count(tree),
		Depth:     mergesort.Depth(tree),
		CreatedAt: created,
		ReadyAt:   created.Add(s.delay),
	}
	span.SetAttributes(
		attribute.String("submission", sub.ID),
		attribute.Int("length", len(numbers)),
		attribute.Int("nodes", sub.Nodes),
	)

	s.cache.Add(sub.ID, sub)
	return sub
}

func (s *Store) Get(id string) (*Submission, error) {
	sub, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sub, nil
}

// Ready reports whether sub can be revealed now.
func (s *Store) Ready(sub *Submission) bool {
	return sub.Ready(s.now())
}

// Remaining returns how long until sub can be revealed, or zero.
func (s *Store) Remaining(sub *Submission) time.Duration {
	return max(sub.ReadyAt.Sub(s.now()), 0)
}

func (s *Store) Len() int {
	return s.cache.Len()
}
