package shopee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ihsan606/win-store/internal/models"
)

// decode unmarshals with number preservation so variant-typed fields
// survive as json.Number instead of lossy float64.
func decode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// rawShop covers both the enveloped and the flat shop-info shapes.
type rawShop struct {
	Data *rawShopFields `json:"data"`
	rawShopFields
}

type rawShopFields struct {
	ShopID  json.Number `json:"shopid"`
	Name    string      `json:"name"`
	Account struct {
		Username string `json:"username"`
	} `json:"account"`
	FollowerCount json.Number `json:"follower_count"`
	ItemCount     json.Number `json:"item_count"`
	CTime         json.Number `json:"ctime"`
	RatingStar    json.Number `json:"rating_star"`
	RatingGood    json.Number `json:"rating_good"`
	RatingNormal  json.Number `json:"rating_normal"`
	RatingBad     json.Number `json:"rating_bad"`
	ResponseRate  json.Number `json:"response_rate"`
	ResponseTime  json.Number `json:"response_time"`
	IsOfficial    bool        `json:"is_official_shop"`
	IsPreferred   bool        `json:"is_preferred_plus_seller"`
	IsVerified    bool        `json:"is_shopee_verified"`
	OnVacation    bool        `json:"vacation"`
}

// NormalizeShop turns a shop-info payload into the canonical record.
// Missing fields default to zero values; only unparseable JSON fails.
func NormalizeShop(raw []byte) (*models.ShopInfo, error) {
	var r rawShop
	if err := decode(raw, &r); err != nil {
		return nil, fmt.Errorf("decode shop payload: %w", err)
	}

	f := &r.rawShopFields
	if r.Data != nil {
		f = r.Data
	}

	return &models.ShopInfo{
		ShopID:        asInt64(f.ShopID),
		Name:          f.Name,
		Username:      f.Account.Username,
		FollowerCount: asInt64(f.FollowerCount),
		ItemCount:     asInt64(f.ItemCount),
		JoinTime:      asInt64(f.CTime),
		RatingStar:    asFloat(f.RatingStar),
		RatingGood:    asInt64(f.RatingGood),
		RatingNormal:  asInt64(f.RatingNormal),
		RatingBad:     asInt64(f.RatingBad),
		ResponseRate:  int(asInt64(f.ResponseRate)),
		ResponseTime:  int(asInt64(f.ResponseTime)),
		IsOfficial:    f.IsOfficial,
		IsPreferred:   f.IsPreferred,
		IsVerified:    f.IsVerified,
		OnVacation:    f.OnVacation,
	}, nil
}

// NormalizeItems extracts the product list and the site-reported total
// from a search, category or generic product-list payload. Items without
// an item id are dropped; everything else defaults missing fields to
// zero rather than failing the batch.
func NormalizeItems(raw []byte) ([]models.Product, int64, error) {
	var list rawItemList
	if err := decode(raw, &list); err != nil {
		return nil, 0, fmt.Errorf("decode item list: %w", err)
	}

	rawItems := list.items()
	products := make([]models.Product, 0, len(rawItems))
	for i := range rawItems {
		p := rawItems[i].toProduct()
		if p.ItemID == 0 {
			continue
		}
		products = append(products, p)
	}
	return products, list.totalCount(), nil
}

// NormalizeSearch builds the search cache record. The search endpoint's
// item fields arrive wrapped in item_basic in one response variant; the
// unwrap happens inside the shared item extraction.
func NormalizeSearch(raw []byte, capturedAt time.Time) (*models.SearchResult, error) {
	items, total, err := NormalizeItems(raw)
	if err != nil {
		return nil, err
	}
	return &models.SearchResult{
		Items:      items,
		TotalCount: total,
		CapturedAt: capturedAt,
	}, nil
}

// NormalizeCategory builds the category cache record and derives the
// per-shop official-store aggregates in the same traversal as item
// extraction. The aggregate list is sorted by product count descending.
func NormalizeCategory(raw []byte, capturedAt time.Time) (*models.CategoryResult, error) {
	items, _, err := NormalizeItems(raw)
	if err != nil {
		return nil, err
	}

	byShop := make(map[int64]*models.OfficialStore)
	for _, it := range items {
		if !it.IsOfficialShop {
			continue
		}
		agg, ok := byShop[it.ShopID]
		if !ok {
			agg = &models.OfficialStore{ShopID: it.ShopID}
			byShop[it.ShopID] = agg
		}
		agg.ProductCount++
		agg.TotalSold += it.HistoricalSold
		if it.RatingStar > 0 {
			agg.RatingSum += it.RatingStar
			agg.RatingN++
		}
	}

	stores := make([]models.OfficialStore, 0, len(byShop))
	for _, agg := range byShop {
		stores = append(stores, *agg)
	}
	sort.Slice(stores, func(i, j int) bool {
		if stores[i].ProductCount != stores[j].ProductCount {
			return stores[i].ProductCount > stores[j].ProductCount
		}
		return stores[i].ShopID < stores[j].ShopID
	})

	return &models.CategoryResult{
		Items:          items,
		OfficialStores: stores,
		CapturedAt:     capturedAt,
	}, nil
}
