package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/ihsan606/win-store/internal/shopee"
)

// pullBinding is the function name exposed to the page context for pull
// requests: window.__winStorePull({type: "GET_CAPTURED_DATA"}).
const pullBinding = "__winStorePull"

// Session drives the capture pipeline for one browser tab: it enables
// the Network domain, classifies response events, resolves bodies,
// normalizes them into the store and dispatches the results. It also
// exposes the pull binding to the page and resets the tab's aggregation
// on every main-frame navigation.
type Session struct {
	page       *rod.Page
	tab        TabID
	store      *Store
	dispatcher *Dispatcher
	resolver   *Resolver
	log        *zap.Logger
}

func NewSession(page *rod.Page, store *Store, policy RetryPolicy, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	tab := TabID(page.TargetID)
	s := &Session{
		page:  page,
		tab:   tab,
		store: store,
		log:   log.With(zap.String("tab", string(tab))),
	}
	s.resolver = NewResolver(&rodFetcher{page: page}, policy)
	s.dispatcher = NewDispatcher(store, &pagePusher{page: page}, log)
	return s
}

// Tab returns the tab this session is bound to.
func (s *Session) Tab() TabID { return s.tab }

// Dispatcher returns the session's dispatcher, for pull-style consumers.
func (s *Session) Dispatcher() *Dispatcher { return s.dispatcher }

// Run blocks processing events until ctx is done or the tab closes. All
// state for the tab is dropped on return.
func (s *Session) Run(ctx context.Context) error {
	page := s.page.Context(ctx)

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return fmt.Errorf("enable network domain: %w", err)
	}
	if err := s.exposePull(page); err != nil {
		// The page may forbid bindings mid-navigation; push still works.
		s.log.Warn("expose pull binding", zap.Error(err))
	}

	defer s.store.RemoveTab(s.tab)

	wait := page.EachEvent(
		func(e *proto.NetworkResponseReceived) {
			s.handleResponse(ctx, e)
		},
		func(e *proto.PageFrameNavigated) {
			// Child frames navigate constantly; only a main-frame
			// navigation resets the aggregation.
			if e.Frame.ParentID == "" {
				s.store.ResetTab(s.tab)
				s.log.Debug("tab reset on navigation", zap.String("url", e.Frame.URL))
			}
		},
	)
	wait()
	return ctx.Err()
}

// handleResponse classifies the response and, when it matches a known
// endpoint, resolves and processes the body on its own goroutine. The
// whole chain is fire-and-forget: failures are logged, never surfaced.
func (s *Session) handleResponse(ctx context.Context, e *proto.NetworkResponseReceived) {
	kind := shopee.Classify(e.Response.URL)
	if kind == shopee.KindNone {
		return
	}

	requestID := string(e.RequestID)
	go func() {
		body, err := s.resolver.Resolve(ctx, requestID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Debug("resolve body failed",
					zap.String("kind", kind.String()),
					zap.String("url", e.Response.URL),
					zap.Error(err))
			}
			return
		}
		s.process(ctx, kind, body)
	}()
}

// process normalizes one resolved body and applies it to the store.
// Responses observed in order A,B can finish resolution as B,A when A
// needed retries; the store's upsert semantics make that safe for
// product lists, and the caches are deliberately last-resolved-wins.
func (s *Session) process(ctx context.Context, kind shopee.Kind, body []byte) {
	now := time.Now()

	switch kind {
	case shopee.KindShop:
		info, err := shopee.NormalizeShop(body)
		if err != nil {
			s.log.Debug("normalize shop", zap.Error(err))
			return
		}
		s.store.SetShopInfo(s.tab, info)
		s.dispatcher.PushCaptured(s.tab)
		ReportProgress(ctx, fmt.Sprintf("shop %s captured", info.Name))

	case shopee.KindProductList:
		products, total, err := shopee.NormalizeItems(body)
		if err != nil {
			s.log.Debug("normalize product list", zap.Error(err))
			return
		}
		s.store.UpsertProducts(s.tab, products, total)
		s.dispatcher.PushCaptured(s.tab)
		if snap := s.store.Snapshot(s.tab); snap != nil {
			ReportProgress(ctx, fmt.Sprintf("%d/%d products captured", snap.CapturedCount, snap.ExpectedTotal))
		}

	case shopee.KindSearch:
		res, err := shopee.NormalizeSearch(body, now)
		if err != nil {
			s.log.Debug("normalize search", zap.Error(err))
			return
		}
		s.store.SetSearchCache(s.tab, res)
		s.dispatcher.PushSearch(s.tab)
		ReportProgress(ctx, fmt.Sprintf("search page captured, %d items", len(res.Items)))

	case shopee.KindCategory:
		res, err := shopee.NormalizeCategory(body, now)
		if err != nil {
			s.log.Debug("normalize category", zap.Error(err))
			return
		}
		s.store.SetCategoryCache(s.tab, res)
		s.dispatcher.PushCategory(s.tab)
		ReportProgress(ctx, fmt.Sprintf("category page captured, %d items", len(res.Items)))

	case shopee.KindProductDetail:
		detail, err := shopee.NormalizeDetail(body)
		if err != nil {
			s.log.Debug("normalize detail", zap.Error(err))
			return
		}
		s.dispatcher.PushDetail(s.tab, detail)
		ReportProgress(ctx, fmt.Sprintf("product detail captured: %s", detail.Name))
	}
}

// exposePull registers the page-callable pull binding.
func (s *Session) exposePull(page *rod.Page) error {
	_, err := page.Expose(pullBinding, func(g gson.JSON) (interface{}, error) {
		reqType := g.Get("type").Str()
		switch reqType {
		case PullCapturedData:
			if snap := s.dispatcher.CapturedData(s.tab); snap != nil {
				return snap, nil
			}
			return nil, nil
		case PullSearchData:
			if res := s.dispatcher.SearchData(s.tab); res != nil {
				return res, nil
			}
			return nil, nil
		case PullCategoryData:
			if res := s.dispatcher.CategoryData(s.tab); res != nil {
				return res, nil
			}
			return nil, nil
		case PullForceRefresh:
			go s.ForceRefresh(context.Background())
			return map[string]bool{"ok": true}, nil
		default:
			return nil, fmt.Errorf("unknown pull request type %q", reqType)
		}
	})
	return err
}

// ForceRefresh resets the tab's aggregation and reloads the page so the
// endpoints fire again. On a product page that yields no detail capture
// on the wire, the rendered page's JSON-LD markup is extracted as a
// low-fidelity fallback.
func (s *Session) ForceRefresh(ctx context.Context) {
	page := s.page.Context(ctx)

	s.store.ResetTab(s.tab)
	if err := page.Reload(); err != nil {
		s.log.Debug("force refresh reload", zap.Error(err))
		return
	}
	if err := page.WaitLoad(); err != nil {
		return
	}

	info, err := page.Info()
	if err != nil || !isProductPage(info.URL) {
		return
	}

	// Give the passive capture a moment to win the race.
	if err := sleepCtx(ctx, 2*time.Second); err != nil {
		return
	}

	htmlContent, err := page.HTML()
	if err != nil {
		return
	}
	detail, err := shopee.ExtractJSONLD(htmlContent)
	if err != nil {
		s.log.Debug("json-ld fallback", zap.Error(err))
		return
	}
	s.dispatcher.PushDetail(s.tab, detail)
}

// isProductPage reports whether the URL is a product detail page. Shopee
// encodes the identity pair in the path as "...-i.<shopid>.<itemid>".
func isProductPage(url string) bool {
	return strings.Contains(url, "-i.") || strings.Contains(url, "/product/")
}

// rodFetcher retrieves response bodies over the DevTools protocol.
type rodFetcher struct {
	page *rod.Page
}

func (f *rodFetcher) FetchBody(ctx context.Context, requestID string) ([]byte, error) {
	res, err := proto.NetworkGetResponseBody{
		RequestID: proto.NetworkRequestID(requestID),
	}.Call(f.page.Context(ctx))
	if err != nil {
		if isBodyUnavailable(err) {
			return nil, fmt.Errorf("%w: %s", ErrBodyUnavailable, err)
		}
		return nil, err
	}

	if res.Base64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(res.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return decoded, nil
	}
	return []byte(res.Body), nil
}

// isBodyUnavailable matches the protocol errors Chromium emits when the
// response body is not buffered yet.
func isBodyUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no data found") ||
		strings.Contains(msg, "no resource with given identifier")
}

// pagePusher delivers dispatcher messages into the page context via
// window.postMessage. A failed delivery means no receiver is listening
// yet; the dispatcher swallows it.
type pagePusher struct {
	page *rod.Page
}

func (p *pagePusher) Push(tab TabID, msgType string, payload any) error {
	_, err := p.page.Eval(
		`(msg) => window.postMessage(msg, "*")`,
		map[string]any{"type": msgType, "payload": payload},
	)
	return err
}
