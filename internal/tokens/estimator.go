package tokens

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"

	"promptforge/internal/events"
)

var ErrTimeout = errors.New("token count timed out")

const (
	DefaultDebounce = 1500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// Estimate is what a consumer displays. Tokens is 0 while nothing has
// been counted, when there is no content and when counting failed.
type Estimate struct {
	ID      uint64
	Tokens  int
	Err     string
	Pending bool
}

// Available reports whether Tokens is a real count.
func (e Estimate) Available() bool {
	return !e.Pending && e.Err == ""
}

type EstimatorOptions struct {
	Debounce time.Duration
	Timeout  time.Duration
	// Session tags emitted events.
	Session  string
	OnChange func(Estimate)
}

// Estimator tracks the token count of one consumer, such as a conversation
// or an edit draft. Only the reply to the most recent request is kept.
type Estimator struct {
	dispatcher Dispatcher
	model      string
	opts       EstimatorOptions
	debounced  func(f func())

	mu      sync.Mutex
	latest  uint64
	current Estimate
	changed chan struct{}
}

func NewEstimator(d Dispatcher, model string, opts EstimatorOptions) *Estimator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Estimator{
		dispatcher: d,
		model:      model,
		opts:       opts,
		debounced:  debounce.New(opts.Debounce),
		changed:    make(chan struct{}),
	}
}

// Current returns the latest accepted estimate.
func (e *Estimator) Current() Estimate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Recompute dispatches a request right away and returns its id. Any
// request still in flight is superseded.
func (e *Estimator) Recompute(items []Item, refs []FileRef) uint64 {
	id := e.begin()
	if len(items) == 0 && len(refs) == 0 {
		e.accept(Reply{ID: id})
		return id
	}
	go e.run(Request{ID: id, Model: e.model, Items: items, Refs: refs})
	return id
}

// RecomputeDebounced supersedes any in-flight request immediately but
// delays dispatch until edits pause for the debounce interval.
func (e *Estimator) RecomputeDebounced(items []Item, refs []FileRef) uint64 {
	id := e.begin()
	if len(items) == 0 && len(refs) == 0 {
		e.accept(Reply{ID: id})
		return id
	}
	req := Request{ID: id, Model: e.model, Items: items, Refs: refs}
	e.debounced(func() {
		if !e.isLatest(id) {
			return
		}
		e.run(req)
	})
	return id
}

// Wait blocks until the current estimate is no longer pending.
func (e *Estimator) Wait(ctx context.Context) (Estimate, error) {
	for {
		e.mu.Lock()
		cur, ch := e.current, e.changed
		e.mu.Unlock()
		if !cur.Pending {
			return cur, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return cur, ctx.Err()
		}
	}
}

func (e *Estimator) begin() uint64 {
	e.mu.Lock()
	e.latest++
	id := e.latest
	e.current = Estimate{ID: id, Tokens: e.current.Tokens, Pending: true}
	cur := e.current
	e.notifyLocked()
	e.mu.Unlock()
	e.publish(cur)
	return id
}

func (e *Estimator) isLatest(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return id == e.latest
}

func (e *Estimator) run(req Request) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.Timeout)
	defer cancel()
	ctx = events.WithSession(ctx, e.opts.Session)

	var reply Reply
	select {
	case reply = <-e.dispatcher.Dispatch(ctx, req):
		if reply.Err != "" && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reply = Reply{ID: req.ID, Err: ErrTimeout.Error()}
		}
	case <-ctx.Done():
		reply = Reply{ID: req.ID, Err: ErrTimeout.Error()}
	}
	e.accept(reply)
}

// accept applies reply if it answers the latest request.
func (e *Estimator) accept(reply Reply) bool {
	e.mu.Lock()
	if reply.ID != e.latest {
		latest := e.latest
		e.mu.Unlock()
		events.Emit(events.WithSession(context.Background(), e.opts.Session), events.TokensStale,
			events.NewDebug("discarded stale token count").
				WithMeta("reply", strconv.FormatUint(reply.ID, 10)).
				WithMeta("latest", strconv.FormatUint(latest, 10)))
		return false
	}
	e.current = Estimate{ID: reply.ID, Tokens: reply.Total, Err: reply.Err}
	if reply.Err != "" {
		e.current.Tokens = 0
	}
	cur := e.current
	e.notifyLocked()
	e.mu.Unlock()

	evt := events.NewDebug("token estimate updated").
		WithMeta("id", strconv.FormatUint(cur.ID, 10)).
		WithMeta("tokens", strconv.Itoa(cur.Tokens))
	if cur.Err != "" {
		evt = events.NewWarn("token estimate unavailable").
			WithMeta("id", strconv.FormatUint(cur.ID, 10)).
			WithMeta("error", cur.Err)
	}
	events.Emit(events.WithSession(context.Background(), e.opts.Session), events.TokensEstimate, evt)
	e.publish(cur)
	return true
}

func (e *Estimator) notifyLocked() {
	close(e.changed)
	e.changed = make(chan struct{})
}

func (e *Estimator) publish(cur Estimate) {
	if e.opts.OnChange != nil {
		e.opts.OnChange(cur)
	}
}
