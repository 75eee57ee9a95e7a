// Package browser implements the page-load pipeline of the shell.
//
// A Controller owns the current page State. RequestLoad validates the input,
// publishes Loading right away and fetches in the background; the terminal
// Loaded or Error state follows on the update Channel. Every request takes a
// sequence number and a result older than the newest published state is
// dropped, so the observer only ever sees the latest request settle.
package browser

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/fetcher"
	"github.com/ka2n/exo/log"
	"github.com/ka2n/exo/render"
	"github.com/ka2n/exo/weburl"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// AllowedSchemes lists the schemes the controller will fetch
var AllowedSchemes = []string{"http", "https"}

// Controller drives page loads and publishes their states
type Controller struct {
	fetcher     fetcher.Fetcher
	transformer render.Transformer
	updates     *Channel

	ctx    context.Context
	cancel context.CancelFunc
	tasks  errgroup.Group

	// lifecycle guards closed against dispatches racing Close
	lifecycle sync.RWMutex
	closed    bool
	closeOnce sync.Once

	seq atomic.Uint64

	// mu serializes publishing so channel order follows sequence order
	mu        sync.Mutex
	published uint64
	current   atomic.Pointer[State]
}

// NewController returns an Idle controller publishing to updates.
// A nil transformer uses render.Plain.
func NewController(f fetcher.Fetcher, t render.Transformer, updates *Channel) *Controller {
	if t == nil {
		t = render.Plain{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:     f,
		transformer: t,
		updates:     updates,
		ctx:         ctx,
		cancel:      cancel,
	}
	idle := Idle()
	c.current.Store(&idle)
	return c
}

// Updates returns the channel states are published on
func (c *Controller) Updates() *Channel {
	return c.updates
}

// Current returns the most recently published state
func (c *Controller) Current() State {
	return *c.current.Load()
}

// RequestLoad starts loading raw. It returns after the first state for this
// request has been published; the fetch runs in the background. A consumer
// that drains Updates on the same goroutine must call it from another one.
func (c *Controller) RequestLoad(raw string) {
	c.lifecycle.RLock()
	defer c.lifecycle.RUnlock()
	if c.closed {
		log.Warn("Load requested after close, ignoring", "input", raw)
		return
	}

	seq := c.seq.Add(1)
	logger := log.Logger.With("seq", seq)
	logger.Info("Core received request to load", "input", raw)

	u, err := weburl.Parse(raw)
	if err != nil {
		detail := exoerr.From(exoerr.URLParse, err).Detail
		logger.Error("Invalid URL format", "input", raw, "error", detail)
		c.fail(nil, exoerr.Newf(exoerr.URLParse, "Invalid URL [%s]: %s", raw, detail), seq)
		return
	}

	if !lo.Contains(AllowedSchemes, u.Scheme()) {
		logger.Warn("Unsupported scheme", "url", u.String(), "scheme", u.Scheme())
		c.fail(&u, exoerr.New(exoerr.URLParse, "Only http/https URLs are supported"), seq)
		return
	}

	c.publish(Loading(u), seq)

	c.tasks.Go(func() error {
		c.load(u, seq)
		return nil
	})
}

// Reload requests the URL of the current state again.
// It does nothing when the current state has no URL.
func (c *Controller) Reload() {
	cur := c.Current()
	if cur.URL == nil {
		log.Debug("Nothing to reload", "state", cur.Status.String())
		return
	}
	c.RequestLoad(cur.URL.String())
}

// Wait blocks until every dispatched load has published its result
func (c *Controller) Wait() {
	_ = c.tasks.Wait()
}

// Close cancels in-flight fetches, waits for their tasks and closes the
// update channel. Further RequestLoad calls are ignored.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.lifecycle.Lock()
		c.closed = true
		c.lifecycle.Unlock()
		c.Wait()
		c.updates.Close()
	})
}

// load fetches u and publishes the terminal state
func (c *Controller) load(u weburl.URL, seq uint64) {
	body, err := c.fetcher.Fetch(c.ctx, u)
	if err != nil {
		e := exoerr.From(exoerr.Network, err)
		log.Error("Failed to load URL", "url", u.String(), "seq", seq, "error", e)
		c.fail(&u, e, seq)
		return
	}
	c.publish(Loaded(u, c.transformer.Success(body)), seq)
}

// fail publishes an Error state with the transformer's rendering of err
func (c *Controller) fail(u *weburl.URL, err *exoerr.Error, seq uint64) {
	s := Failed(u, err)
	s.Output = c.transformer.Failure(err)
	c.publish(s, seq)
}

// publish stores s as current and sends a copy to the consumer.
// States from requests older than the last published one are dropped.
// mu is held across Send, so a full buffer blocks every publisher, including
// the RequestLoad caller, until the consumer drains or detaches.
func (c *Controller) publish(s State, seq uint64) bool {
	s.Seq = seq

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.published {
		log.Debug("Dropping stale state", "state", s.String(), "seq", seq, "latest", c.published)
		return false
	}
	c.published = seq
	c.current.Store(&s)

	if err := c.updates.Send(c.ctx, s); err != nil {
		log.Error("Failed to send update to consumer", "state", s.String(), "error", err)
	}
	return true
}
