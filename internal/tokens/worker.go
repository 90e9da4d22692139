package tokens

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"

	"promptforge/internal/logging"
)

// DefaultCacheSize bounds the per-item count cache.
const DefaultCacheSize = 5000

// Dispatcher accepts requests and answers each on its own channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) <-chan Reply
}

type job struct {
	ctx   context.Context
	req   Request
	reply chan Reply
}

// Worker serves token count requests on one goroutine. The cache is only
// touched from that goroutine.
type Worker struct {
	backend Backend
	cache   *lru.Cache
	jobs    chan job
	sizes   chan chan int
	done    chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup

	// mu guards closed. Dispatch holds the read lock while it queues.
	mu     sync.RWMutex
	closed bool
}

// NewWorker starts a worker. cacheSize <= 0 uses DefaultCacheSize.
func NewWorker(backend Backend, cacheSize int) *Worker {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	w := &Worker{
		backend: backend,
		cache:   lru.New(cacheSize),
		jobs:    make(chan job, 16),
		sizes:   make(chan chan int),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Dispatch queues req. The returned channel receives exactly one reply
// unless ctx ends first, in which case it receives a reply carrying the
// context error.
func (w *Worker) Dispatch(ctx context.Context, req Request) <-chan Reply {
	out := make(chan Reply, 1)
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		out <- Reply{ID: req.ID, Err: errClosed}
		return out
	}
	select {
	case w.jobs <- job{ctx: ctx, req: req, reply: out}:
	case <-ctx.Done():
		out <- Reply{ID: req.ID, Err: ctx.Err().Error()}
	case <-w.done:
		out <- Reply{ID: req.ID, Err: errClosed}
	}
	return out
}

// Close stops the worker and waits for the in-flight job. Jobs still
// queued are answered with a closed error.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		w.wg.Wait()
		for {
			select {
			case j := <-w.jobs:
				j.reply <- Reply{ID: j.req.ID, Err: errClosed}
			default:
				return
			}
		}
	})
	w.wg.Wait()
}

const errClosed = "token worker closed"

// CacheLen reports the number of cached item counts.
func (w *Worker) CacheLen() int {
	res := make(chan int, 1)
	select {
	case w.sizes <- res:
	case <-w.done:
		return 0
	}
	return <-res
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		default:
		}
		select {
		case <-w.done:
			return
		case res := <-w.sizes:
			res <- w.cache.Len()
		case j := <-w.jobs:
			if err := j.ctx.Err(); err != nil {
				j.reply <- Reply{ID: j.req.ID, Err: err.Error()}
				continue
			}
			j.reply <- w.handle(j.ctx, j.req)
		}
	}
}

func (w *Worker) handle(ctx context.Context, req Request) Reply {
	total := 0
	var missing []int
	for i, it := range req.Items {
		if n, ok := w.cache.Get(cacheKey(req.Model, it.Checksum)); ok {
			total += n.(int)
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for k, i := range missing {
			texts[k] = req.Items[i].Text
		}
		counts, err := w.backend.CountText(ctx, req.Model, texts)
		if err == nil && len(counts) != len(texts) {
			err = fmt.Errorf("backend returned %d counts for %d items", len(counts), len(texts))
		}
		if err != nil {
			logging.Debug("token count failed", zap.Uint64("id", req.ID), zap.Error(err))
			return Reply{ID: req.ID, Err: err.Error()}
		}
		for k, i := range missing {
			w.cache.Add(cacheKey(req.Model, req.Items[i].Checksum), counts[k])
			total += counts[k]
		}
	}

	if len(req.Refs) > 0 {
		n, err := w.backend.CountRefs(ctx, req.Model, req.Refs)
		if err != nil {
			logging.Debug("attachment token count failed", zap.Uint64("id", req.ID), zap.Error(err))
			return Reply{ID: req.ID, Err: err.Error()}
		}
		total += n
	}
	return Reply{ID: req.ID, Total: total}
}

func cacheKey(model string, sum uint32) string {
	return model + "#" + strconv.FormatUint(uint64(sum), 16)
}
