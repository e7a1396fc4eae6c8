package apiclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type result struct {
	resp *Response
	err  error
}

// pending is a request parked behind the in-flight refresh. done is buffered so the
// replay never blocks on a caller that gave up.
type pending struct {
	ctx  context.Context
	req  *Request
	done chan result
}

// refresher is the two-state machine guarding the refresh call: idle, or refreshing with
// a queue of parked requests in arrival order.
type refresher struct {
	c *Client

	mu         sync.Mutex
	refreshing bool
	queue      []*pending
}

func (r *refresher) isRefreshing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshing
}

func (r *refresher) queueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// recover handles an eligible failure of req. The first caller performs the refresh; callers
// arriving while it runs are queued and settled by it.
func (r *refresher) recover(ctx context.Context, req *Request) (*Response, error) {
	r.mu.Lock()
	if r.refreshing {
		p := &pending{ctx: ctx, req: req.markRetried(), done: make(chan result, 1)}
		r.queue = append(r.queue, p)
		r.mu.Unlock()

		r.c.metrics.requestQueued()
		r.c.logger.Debug().Str("method", req.Method).Str("path", req.Path).Msg("request queued behind refresh")

		select {
		case res := <-p.done:
			return res.resp, res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.refreshing = true
	r.mu.Unlock()

	err := r.refresh(ctx)

	r.mu.Lock()
	queue := r.queue
	r.queue = nil
	r.refreshing = false
	r.mu.Unlock()

	if err != nil {
		for _, p := range queue {
			p.done <- result{err: err}
		}
		return nil, err
	}

	own := make(chan result, 1)
	r.replay(ctx, req.markRetried(), own)
	for _, p := range queue {
		if p.ctx.Err() != nil {
			r.c.metrics.replayDone(outcomeSkipped)
			p.done <- result{err: p.ctx.Err()}
			continue
		}
		r.replay(p.ctx, p.req, p.done)
	}

	res := <-own
	return res.resp, res.err
}

type dispatchKey struct{}

// withDispatchSignal marks ctx so the client transport calls fn when a request made with it
// is handed on to the underlying round tripper.
func withDispatchSignal(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, dispatchKey{}, fn)
}

func signalDispatch(ctx context.Context) {
	if fn, ok := ctx.Value(dispatchKey{}).(func()); ok {
		fn()
	}
}

// replay re-issues req through the normal path and returns once it has been dispatched,
// so replays reach the transport in queue order while completing independently.
func (r *refresher) replay(ctx context.Context, req *Request, out chan<- result) {
	dispatched := make(chan struct{})
	var once sync.Once
	signal := func() { once.Do(func() { close(dispatched) }) }

	go func() {
		defer signal()
		resp, err := r.c.Do(withDispatchSignal(ctx, signal), req)
		r.c.metrics.replayDone(outcome(err))
		out <- result{resp: resp, err: err}
	}()
	<-dispatched
}

// refresh performs the single refresh call. It is detached from the caller's
// cancellation because every queued request depends on its outcome.
func (r *refresher) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.c.refreshTimeout)
	defer cancel()

	start := time.Now()
	err := r.c.callRefresh(ctx)
	r.c.metrics.refreshDone(time.Since(start).Seconds(), err)
	if err != nil {
		r.c.logger.Warn().Err(err).Str("path", r.c.refreshPath).Msg("session refresh failed")
		return &RefreshError{Err: err}
	}
	r.c.logger.Debug().Dur("took", time.Since(start)).Msg("session refreshed")
	return nil
}

func (c *Client) callRefresh(ctx context.Context) error {
	if c.breaker == nil {
		return c.postRefresh(ctx)
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.postRefresh(ctx)
	})
	return err
}

// postRefresh sends an empty POST to the refresh endpoint. The new session arrives as
// cookies, which the shared jar stores.
func (c *Client) postRefresh(ctx context.Context) error {
	target, err := c.resolve(c.refreshPath)
	if err != nil {
		return err
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), nil)
	if err != nil {
		return errors.Wrap(err, "build refresh request")
	}
	httpResp, err := c.refreshClient.Do(hr)
	if err != nil {
		return errors.Wrap(err, "refresh request")
	}
	resp, err := readResponse(httpResp)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return newResponseError(&Request{Method: http.MethodPost, Path: c.refreshPath}, resp)
	}
	return nil
}
