package main

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/beorn7/perks/quantile"
	"github.com/sirupsen/logrus"
	"github.com/stripe/veneur/tdigest"

	"github.com/axiomhq/gksummary"
	"github.com/axiomhq/gksummary/quantgen"
)

// targetValue is the value planted at the queried quantile by the
// generators, so the expected answer is known without sorting the stream.
const targetValue = 17.0

type config struct {
	Algorithm string
	Values    uint64
	Workers   int
	Epsilon   float64
	Quantile  float64
	Seed      int64
}

type result struct {
	Build    time.Duration
	MergeDur time.Duration
	Query    time.Duration
	Answer   float64
	Retained int
	HeapUsed uint64
}

// sketch is the least common surface of the contenders: thread-local build,
// pairwise combine, one rank query.
type sketch interface {
	insert(v float64) error
	merge(other sketch) error
	quantile(phi float64) (float64, error)
	retained() int
}

func runBench(cfg config) (*result, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Values < uint64(cfg.Workers) {
		return nil, fmt.Errorf("need at least one value per worker, got %d values for %d workers", cfg.Values, cfg.Workers)
	}

	log := logrus.WithFields(logrus.Fields{
		"algorithm": cfg.Algorithm,
		"values":    cfg.Values,
		"workers":   cfg.Workers,
		"epsilon":   cfg.Epsilon,
	})
	log.Info("starting build phase")

	perWorker := int(cfg.Values / uint64(cfg.Workers))
	remainder := int(cfg.Values % uint64(cfg.Workers))

	sketches := make([]sketch, cfg.Workers)
	errs := make([]error, cfg.Workers)
	buildStart := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := newSketch(cfg)
			if err != nil {
				errs[i] = err
				return
			}
			count := perWorker
			if i == cfg.Workers-1 {
				count += remainder
			}
			gen := quantgen.NewRandom(cfg.Quantile, targetValue, count, cfg.Seed+int64(i))
			for {
				v, ok := gen.Next()
				if !ok {
					break
				}
				if err := s.insert(v); err != nil {
					errs[i] = err
					return
				}
			}
			sketches[i] = s
		}(i)
	}
	wg.Wait()
	build := time.Since(buildStart)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	log.WithField("duration", build).Info("build phase done")

	mergeStart := time.Now()
	combined := sketches[0]
	for _, s := range sketches[1:] {
		if err := combined.merge(s); err != nil {
			return nil, err
		}
	}
	mergeDur := time.Since(mergeStart)
	log.WithField("duration", mergeDur).Info("merge phase done")

	queryStart := time.Now()
	answer, err := combined.quantile(cfg.Quantile)
	if err != nil {
		return nil, err
	}
	query := time.Since(queryStart)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &result{
		Build:    build,
		MergeDur: mergeDur,
		Query:    query,
		Answer:   answer,
		Retained: combined.retained(),
		HeapUsed: mem.HeapAlloc,
	}, nil
}

func newSketch(cfg config) (sketch, error) {
	switch cfg.Algorithm {
	case "modified":
		return newSummarySketch(cfg.Epsilon, gksummary.Modified)
	case "classic":
		return newSummarySketch(cfg.Epsilon, gksummary.Classic)
	case "exact":
		return &exactSketch{e: gksummary.NewExact[float64]()}, nil
	case "ckms":
		return &ckmsSketch{s: quantile.NewTargeted(map[float64]float64{cfg.Quantile: cfg.Epsilon})}, nil
	case "tdigest":
		return &tdigestSketch{d: tdigest.NewMerging(1/cfg.Epsilon, false)}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
	}
}

type summarySketch struct {
	s *gksummary.Summary[float64]
}

func newSummarySketch(epsilon float64, strategy gksummary.Strategy) (*summarySketch, error) {
	s, err := gksummary.NewWithStrategy[float64](epsilon, strategy)
	if err != nil {
		return nil, err
	}
	return &summarySketch{s: s}, nil
}

func (s *summarySketch) insert(v float64) error { return s.s.Insert(v) }
func (s *summarySketch) retained() int          { return s.s.Len() }

func (s *summarySketch) merge(other sketch) error {
	return s.s.Merge(other.(*summarySketch).s)
}

func (s *summarySketch) quantile(phi float64) (float64, error) {
	return s.s.Quantile(phi)
}

type exactSketch struct {
	e *gksummary.Exact[float64]
}

func (s *exactSketch) insert(v float64) error { return s.e.Insert(v) }
func (s *exactSketch) retained() int          { return int(s.e.Count()) }

func (s *exactSketch) merge(other sketch) error {
	s.e.Merge(other.(*exactSketch).e)
	return nil
}

func (s *exactSketch) quantile(phi float64) (float64, error) {
	return s.e.Quantile(phi)
}

type ckmsSketch struct {
	s *quantile.Stream
}

func (s *ckmsSketch) insert(v float64) error { s.s.Insert(v); return nil }
func (s *ckmsSketch) retained() int          { return s.s.Count() }

func (s *ckmsSketch) merge(other sketch) error {
	s.s.Merge(other.(*ckmsSketch).s.Samples())
	return nil
}

func (s *ckmsSketch) quantile(phi float64) (float64, error) {
	return s.s.Query(phi), nil
}

type tdigestSketch struct {
	d *tdigest.MergingDigest
}

func (s *tdigestSketch) insert(v float64) error { s.d.Add(v, 1); return nil }

// The merging digest does not expose its centroid count.
func (s *tdigestSketch) retained() int { return 0 }

func (s *tdigestSketch) merge(other sketch) error {
	s.d.Merge(other.(*tdigestSketch).d)
	return nil
}

func (s *tdigestSketch) quantile(phi float64) (float64, error) {
	return s.d.Quantile(phi), nil
}
