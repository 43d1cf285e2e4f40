package capture

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Watcher runs capture sessions for every tab of a browser that is
// visiting the target host, including tabs opened after the watcher
// started.
type Watcher struct {
	browser *rod.Browser
	store   *Store
	policy  RetryPolicy
	host    string
	log     *zap.Logger

	mu       sync.RWMutex
	sessions map[TabID]*Session
}

func NewWatcher(browser *rod.Browser, store *Store, policy RetryPolicy, host string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		browser:  browser,
		store:    store,
		policy:   policy,
		host:     host,
		log:      log,
		sessions: make(map[TabID]*Session),
	}
}

// Store returns the shared aggregation store.
func (w *Watcher) Store() *Store { return w.store }

// Run watches for matching tabs until ctx is done. Existing tabs are
// picked up immediately; new targets attach as they are created.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	pages, err := w.browser.Pages()
	if err != nil {
		return err
	}
	for _, page := range pages {
		w.maybeWatch(ctx, g, page)
	}

	g.Go(func() error {
		browser := w.browser.Context(ctx)
		wait := browser.EachEvent(func(e *proto.TargetTargetCreated) {
			if e.TargetInfo.Type != proto.TargetTargetInfoTypePage {
				return
			}
			page, err := w.browser.PageFromTarget(e.TargetInfo.TargetID)
			if err != nil {
				w.log.Debug("attach new target", zap.Error(err))
				return
			}
			w.maybeWatch(ctx, g, page)
		})
		wait()
		return ctx.Err()
	})

	return g.Wait()
}

// maybeWatch starts a session for the page when its URL matches the
// target host and no session exists for the tab yet.
func (w *Watcher) maybeWatch(ctx context.Context, g *errgroup.Group, page *rod.Page) {
	info, err := page.Info()
	if err != nil || !w.matches(info.URL) {
		return
	}

	tab := TabID(page.TargetID)
	w.mu.Lock()
	if _, exists := w.sessions[tab]; exists {
		w.mu.Unlock()
		return
	}
	session := NewSession(page, w.store, w.policy, w.log)
	w.sessions[tab] = session
	w.mu.Unlock()

	w.log.Info("watching tab", zap.String("tab", string(tab)), zap.String("url", info.URL))

	g.Go(func() error {
		defer func() {
			w.mu.Lock()
			delete(w.sessions, tab)
			w.mu.Unlock()
		}()
		// A closed tab ends its own session, not the whole watcher.
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			w.log.Debug("session ended", zap.String("tab", string(tab)), zap.Error(err))
		}
		return ctx.Err()
	})
}

func (w *Watcher) matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(u.Host, w.host)
}

// Session returns the session for tab. An empty tab id selects the only
// active session, when exactly one exists.
func (w *Watcher) Session(tab TabID) (*Session, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if tab == "" && len(w.sessions) == 1 {
		for _, s := range w.sessions {
			return s, true
		}
	}
	s, ok := w.sessions[tab]
	return s, ok
}

// Tabs lists the tabs with an active session.
func (w *Watcher) Tabs() []TabID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tabs := make([]TabID, 0, len(w.sessions))
	for tab := range w.sessions {
		tabs = append(tabs, tab)
	}
	return tabs
}
