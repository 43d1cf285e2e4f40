package capture

import (
	"go.uber.org/zap"

	"github.com/ihsan606/win-store/internal/models"
)

// Push message types delivered to the page context.
const (
	MsgDataUpdate     = "SHOPEE_DATA_UPDATE"
	MsgSearchUpdate   = "SHOPEE_SEARCH_UPDATE"
	MsgCategoryUpdate = "SHOPEE_CATEGORY_UPDATE"
	MsgPDPUpdate      = "SHOPEE_PDP_UPDATE"
)

// Pull request types accepted from the page context.
const (
	PullCapturedData = "GET_CAPTURED_DATA"
	PullSearchData   = "GET_SEARCH_DATA"
	PullCategoryData = "GET_CATEGORY_DATA"
	PullForceRefresh = "FORCE_REFRESH_CAPTURE"
)

// Pusher delivers a typed message into a tab's page context.
type Pusher interface {
	Push(tab TabID, msgType string, payload any) error
}

// Dispatcher serves the same aggregation data over two paths. Pushes go
// out after every store mutation; a push with no receiver is expected
// (the panels may not be loaded yet) and swallowed. Pulls answer "give
// me what you have" synchronously from the store, so a consumer that
// attaches late is never stuck waiting for the next push. Neither path
// alone suffices: push-only loses data delivered before the consumer
// exists, pull-only misses live updates after the first ask.
type Dispatcher struct {
	store  *Store
	pusher Pusher // nil for pull-only consumers
	log    *zap.Logger
}

func NewDispatcher(store *Store, pusher Pusher, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{store: store, pusher: pusher, log: log}
}

func (d *Dispatcher) push(tab TabID, msgType string, payload any) {
	if d.pusher == nil {
		return
	}
	if err := d.pusher.Push(tab, msgType, payload); err != nil {
		d.log.Debug("push skipped, no receiver",
			zap.String("tab", string(tab)),
			zap.String("type", msgType),
			zap.Error(err))
	}
}

// PushCaptured delivers the tab's current full snapshot.
func (d *Dispatcher) PushCaptured(tab TabID) {
	if snap := d.store.Snapshot(tab); snap != nil {
		d.push(tab, MsgDataUpdate, snap)
	}
}

// PushSearch delivers the tab's latest search capture.
func (d *Dispatcher) PushSearch(tab TabID) {
	if res := d.store.SearchCache(tab); res != nil {
		d.push(tab, MsgSearchUpdate, res)
	}
}

// PushCategory delivers the tab's latest category capture.
func (d *Dispatcher) PushCategory(tab TabID) {
	if res := d.store.CategoryCache(tab); res != nil {
		d.push(tab, MsgCategoryUpdate, res)
	}
}

// PushDetail delivers an ephemeral product-detail record. Details are
// not stored, so the payload comes from the caller.
func (d *Dispatcher) PushDetail(tab TabID, detail *models.ProductDetail) {
	d.push(tab, MsgPDPUpdate, detail)
}

// CapturedData answers a pull for the tab's snapshot; nil when nothing
// was ever captured.
func (d *Dispatcher) CapturedData(tab TabID) *models.CaptureSnapshot {
	return d.store.Snapshot(tab)
}

// SearchData answers a pull for the latest search capture, or nil.
func (d *Dispatcher) SearchData(tab TabID) *models.SearchResult {
	return d.store.SearchCache(tab)
}

// CategoryData answers a pull for the latest category capture, or nil.
func (d *Dispatcher) CategoryData(tab TabID) *models.CategoryResult {
	return d.store.CategoryCache(tab)
}
