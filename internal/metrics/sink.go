package metrics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every collector registered by this package.
const Namespace = "tallyrun"

// Sink is a progress sink that mirrors display notifications into
// Prometheus collectors. The dispatcher calls it from a single goroutine;
// scrapes read the collectors concurrently.
type Sink struct {
	steps       *prometheus.CounterVec
	progress    *prometheus.GaugeVec
	workerTotal *prometheus.GaugeVec
	grandTotal  prometheus.Gauge
	workers     prometheus.Gauge
	completions prometheus.Counter
	resets      prometheus.Counter

	mu     sync.Mutex
	labels []string
	grand  int
}

// NewSink registers the run collectors, plus memory gauges fed by mem when
// it is non-nil, against reg. A nil reg uses the default registerer.
func NewSink(reg prometheus.Registerer, mem *MemoryCollector) (*Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &Sink{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "worker_steps_total",
			Help:      "Steps delivered to the display, partitioned by worker.",
		}, []string{"worker"}),
		progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "worker_progress",
			Help:      "Latest progress value of each worker.",
		}, []string{"worker"}),
		workerTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "worker_total",
			Help:      "Cumulative count of each worker in the current generation.",
		}, []string{"worker"}),
		grandTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "grand_total",
			Help:      "Shared total of the current generation.",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "generation_workers",
			Help:      "Number of workers in the current generation.",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "worker_completions_total",
			Help:      "Workers that reached their final step.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generation_resets_total",
			Help:      "Generations started, including resets.",
		}),
	}
	collectors := []prometheus.Collector{
		s.steps, s.progress, s.workerTotal, s.grandTotal, s.workers, s.completions, s.resets,
	}
	if mem != nil {
		collectors = append(collectors, memoryGauges(mem)...)
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// OnReset clears the per-worker series and records a new generation.
func (s *Sink) OnReset(workers int) {
	if workers < 0 {
		workers = 0
	}
	s.progress.Reset()
	s.workerTotal.Reset()
	s.grandTotal.Set(0)
	s.workers.Set(float64(workers))
	s.resets.Inc()

	s.mu.Lock()
	s.grand = 0
	for i := 0; i < workers; i++ {
		l := s.label(i)
		s.progress.WithLabelValues(l).Set(0)
		s.workerTotal.WithLabelValues(l).Set(0)
	}
	s.mu.Unlock()
}

// OnProgress records one delivered step for worker.
func (s *Sink) OnProgress(worker, value int) {
	l := s.label(worker)
	s.steps.WithLabelValues(l).Inc()
	s.progress.WithLabelValues(l).Set(float64(value))
}

// OnWorkerTotalChanged updates the worker's cumulative gauge.
func (s *Sink) OnWorkerTotalChanged(worker, total int) {
	s.workerTotal.WithLabelValues(s.label(worker)).Set(float64(total))
}

// OnGrandTotalChanged keeps the highest total seen in the generation.
func (s *Sink) OnGrandTotalChanged(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if total > s.grand {
		s.grand = total
		s.grandTotal.Set(float64(total))
	}
}

// OnWorkerCompleted counts a finished worker.
func (s *Sink) OnWorkerCompleted(int) {
	s.completions.Inc()
}

// label caches the decimal label for worker indexes. It is only called from
// the delivering goroutine.
func (s *Sink) label(worker int) string {
	if worker < 0 {
		return strconv.Itoa(worker)
	}
	if worker < len(s.labels) {
		return s.labels[worker]
	}
	for i := len(s.labels); i <= worker; i++ {
		s.labels = append(s.labels, strconv.Itoa(i))
	}
	return s.labels[worker]
}

func memoryGauges(mem *MemoryCollector) []prometheus.Collector {
	gauge := func(name, help string, read func(MemorySnapshot) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return read(mem.Snapshot()) })
	}
	return []prometheus.Collector{
		gauge("memory_heap_alloc_bytes", "Bytes in use by the heap.", func(m MemorySnapshot) float64 { return float64(m.HeapAlloc) }),
		gauge("memory_sys_bytes", "Bytes obtained from the OS.", func(m MemorySnapshot) float64 { return float64(m.Sys) }),
		gauge("memory_gc_cycles", "Completed GC cycles.", func(m MemorySnapshot) float64 { return float64(m.NumGC) }),
	}
}
