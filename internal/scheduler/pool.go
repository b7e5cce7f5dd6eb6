package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleister1102/paramseeker/internal/models"
)

// Pool runs probe items through a fixed number of workers. Retries and splits
// re-enter the heap behind fresh work (priority+1 and +2), which keeps the
// scheduler moving forward even when one productive chunk keeps splitting.
type Pool struct {
	threads int
	logger  zerolog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	heap     itemHeap
	seq      uint64
	inFlight int
	done     bool
	err      error
	findings []models.Finding
}

// NewPool creates a pool with the given worker count.
func NewPool(threads int, logger zerolog.Logger) *Pool {
	if threads < 1 {
		threads = 1
	}
	p := &Pool{
		threads: threads,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Push seeds the heap before or during a run. Empty chunks are dropped.
func (p *Pool) Push(priority int, surface models.Surface, fn ProbeFunc, info *models.RequestInfo, names []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.push(&Item{priority: priority, surface: surface, fn: fn, info: info, names: names})
	p.cond.Signal()
}

// push appends an item under p.mu.
func (p *Pool) push(item *Item) {
	if len(item.names) == 0 {
		return
	}
	item.seq = p.seq
	p.seq++
	heap.Push(&p.heap, item)
}

// Run drains the heap with the configured workers and returns every recorded
// hit. It returns early with an error on context cancellation or when a probe
// produces an unrecognized verdict, which is a programming error.
func (p *Pool) Run(ctx context.Context) ([]models.Finding, error) {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.fail(ctx.Err())
		case <-stop:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx)
		}()
	}
	wg.Wait()
	close(stop)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil && ctx.Err() != nil {
		p.err = ctx.Err()
	}
	return p.findings, p.err
}

// fail stops the pool with an error, keeping the first one.
func (p *Pool) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
	p.done = true
	p.cond.Broadcast()
}

func (p *Pool) work(ctx context.Context) {
	for {
		p.mu.Lock()
		for len(p.heap) == 0 && !p.done {
			if p.inFlight == 0 {
				// Heap drained and nobody can refill it.
				p.done = true
				p.cond.Broadcast()
				p.mu.Unlock()
				return
			}
			p.cond.Wait()
		}
		if p.done {
			p.mu.Unlock()
			return
		}
		item := heap.Pop(&p.heap).(*Item)
		p.inFlight++
		p.mu.Unlock()

		verdict := item.fn(ctx, item.info, item.names)

		p.mu.Lock()
		p.inFlight--
		if err := p.dispatch(item, verdict); err != nil {
			if p.err == nil {
				p.err = err
			}
			p.done = true
			p.cond.Broadcast()
			p.mu.Unlock()
			return
		}
		if len(p.heap) == 0 && p.inFlight == 0 {
			p.done = true
			p.cond.Broadcast()
			p.mu.Unlock()
			return
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// dispatch applies a verdict under p.mu.
func (p *Pool) dispatch(item *Item, verdict models.Verdict) error {
	switch verdict.Kind {
	case models.VerdictDiscard:
		return nil

	case models.VerdictRetry:
		if item.retried {
			p.logger.Warn().
				Str("url", item.info.OriginURL).
				Str("surface", item.surface.String()).
				Int("names", len(item.names)).
				Msg("Chunk discarded after repeated transport failure")
			return nil
		}
		p.push(&Item{
			priority: item.priority + 1,
			surface:  item.surface,
			fn:       item.fn,
			info:     item.info,
			names:    item.names,
			retried:  true,
		})
		return nil

	case models.VerdictSplit:
		half := len(item.names) / 2
		p.push(&Item{priority: item.priority + 1, surface: item.surface, fn: item.fn, info: item.info, names: item.names[:half]})
		p.push(&Item{priority: item.priority + 2, surface: item.surface, fn: item.fn, info: item.info, names: item.names[half:]})
		return nil

	case models.VerdictHit:
		p.findings = append(p.findings, *verdict.Finding)
		return nil
	}

	return fmt.Errorf("probe returned unrecognized verdict %q", verdict.Kind)
}
