package capture

import (
	"sync"

	"github.com/ihsan606/win-store/internal/models"
)

// TabID identifies one browser tab; all aggregation state is scoped to
// it. Tab state is created on first use, reset wholesale on navigation
// and dropped when the tab closes.
type TabID string

type tabState struct {
	shop          *models.ShopInfo
	products      map[int64]models.Product
	order         []int64 // item ids in first-seen order, for stable snapshots
	expectedTotal int64
	search        *models.SearchResult
	category      *models.CategoryResult
}

func newTabState() *tabState {
	return &tabState{products: make(map[int64]models.Product)}
}

// Store owns every piece of tab-keyed aggregation state. It is mutated
// only by the normalization pipeline and read only by the Dispatcher.
// Event handlers run on separate goroutines, so access is guarded.
type Store struct {
	mu   sync.RWMutex
	tabs map[TabID]*tabState
}

func NewStore() *Store {
	return &Store{tabs: make(map[TabID]*tabState)}
}

// tab lazily creates the state bucket. A body that resolves before any
// navigation event for its tab must not be dropped.
func (s *Store) tab(id TabID) *tabState {
	t, ok := s.tabs[id]
	if !ok {
		t = newTabState()
		s.tabs[id] = t
	}
	return t
}

// ResetTab replaces the tab's state with an empty aggregation. Used on
// full page navigation; prior captures never survive a navigation.
func (s *Store) ResetTab(id TabID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[id] = newTabState()
}

// RemoveTab drops all state for a closed tab.
func (s *Store) RemoveTab(id TabID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tabs, id)
}

// UpsertProducts inserts or replaces each product by item id. Replacement
// is wholesale last-write-wins, not a field merge: a later capture can
// legitimately overwrite a richer earlier record when the site's own
// response changed. A non-zero expectedTotal updates the site-reported
// total hint.
func (s *Store) UpsertProducts(id TabID, products []models.Product, expectedTotal int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tab(id)
	for _, p := range products {
		if p.ItemID == 0 {
			continue
		}
		if _, seen := t.products[p.ItemID]; !seen {
			t.order = append(t.order, p.ItemID)
		}
		t.products[p.ItemID] = p
	}
	if expectedTotal > 0 {
		t.expectedTotal = expectedTotal
	}
}

// SetShopInfo replaces the tab's current shop record wholesale.
func (s *Store) SetShopInfo(id TabID, info *models.ShopInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab(id).shop = info
}

// SetSearchCache replaces the tab's latest search capture.
func (s *Store) SetSearchCache(id TabID, res *models.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab(id).search = res
}

// SetCategoryCache replaces the tab's latest category capture.
func (s *Store) SetCategoryCache(id TabID, res *models.CategoryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab(id).category = res
}

// Snapshot returns the tab's current aggregation, or nil when nothing
// was ever captured for the tab. A reset tab yields an empty non-nil
// snapshot.
func (s *Store) Snapshot(id TabID) *models.CaptureSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tabs[id]
	if !ok {
		return nil
	}

	products := make([]models.Product, 0, len(t.products))
	for _, itemID := range t.order {
		products = append(products, t.products[itemID])
	}
	return &models.CaptureSnapshot{
		Shop:          t.shop,
		Products:      products,
		CapturedCount: len(t.products),
		ExpectedTotal: t.expectedTotal,
	}
}

// SearchCache returns the latest search capture, or nil.
func (s *Store) SearchCache(id TabID) *models.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tabs[id]; ok {
		return t.search
	}
	return nil
}

// CategoryCache returns the latest category capture, or nil.
func (s *Store) CategoryCache(id TabID) *models.CategoryResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tabs[id]; ok {
		return t.category
	}
	return nil
}

// Tabs lists the tabs currently holding state.
func (s *Store) Tabs() []TabID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]TabID, 0, len(s.tabs))
	for id := range s.tabs {
		ids = append(ids, id)
	}
	return ids
}
