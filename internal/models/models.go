package models

import (
	"encoding/json"
	"time"
)

// ShopInfo is the canonical shop record, replaced wholesale whenever a
// shop-info response is captured for a tab.
type ShopInfo struct {
	ShopID        int64   `json:"shop_id"`
	Name          string  `json:"name"`
	Username      string  `json:"username"`
	FollowerCount int64   `json:"follower_count"`
	ItemCount     int64   `json:"item_count"`
	JoinTime      int64   `json:"ctime"`
	RatingStar    float64 `json:"rating_star"`
	RatingGood    int64   `json:"rating_good"`
	RatingNormal  int64   `json:"rating_normal"`
	RatingBad     int64   `json:"rating_bad"`
	ResponseRate  int     `json:"response_rate"`
	ResponseTime  int     `json:"response_time"`
	IsOfficial    bool    `json:"is_official"`
	IsPreferred   bool    `json:"is_preferred"`
	IsVerified    bool    `json:"is_verified"`
	OnVacation    bool    `json:"on_vacation"`
}

// Product is the canonical listing record. The (ItemID, ShopID) pair
// identifies a listing; ItemID alone is the upsert key within a tab.
// Price fields are always in the normalized denomination regardless of
// which endpoint produced them.
type Product struct {
	ItemID              int64   `json:"item_id"`
	ShopID              int64   `json:"shop_id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	PriceBeforeDiscount float64 `json:"price_before_discount"`
	DiscountPercent     int     `json:"discount_percent"`
	Stock               int64   `json:"stock"`
	HistoricalSold      int64   `json:"historical_sold"`
	HistoricalSoldText  string  `json:"historical_sold_text,omitempty"`
	MonthlySold         int64   `json:"monthly_sold"`
	MonthlySoldText     string  `json:"monthly_sold_text,omitempty"`
	RatingStar          float64 `json:"rating_star"`
	RatingCount         int64   `json:"rating_count"`
	LikedCount          int64   `json:"liked_count"`
	CommentCount        int64   `json:"comment_count"`
	Image               string  `json:"image,omitempty"`
	CTime               int64   `json:"ctime"`
	CatID               int64   `json:"cat_id,omitempty"`
	Brand               string  `json:"brand,omitempty"`
	IsOfficialShop      bool    `json:"is_official_shop,omitempty"`
}

// Variant is one purchasable model of a product.
type Variant struct {
	ModelID             int64   `json:"model_id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	PriceBeforeDiscount float64 `json:"price_before_discount"`
	Stock               int64   `json:"stock"`
	Sold                int64   `json:"sold"`
}

// TierVariation describes one axis of the product's variant matrix
// (e.g. color, size) and its options.
type TierVariation struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// RatingHistogram is the six-bucket review breakdown: Total plus the
// per-star counts from one star up to five.
type RatingHistogram struct {
	Total int64    `json:"total"`
	Stars [5]int64 `json:"stars"`
}

// ShopBrief is the shop sub-record embedded in a product-detail payload.
type ShopBrief struct {
	Username    string `json:"username"`
	IsVerified  bool   `json:"is_verified"`
	IsOfficial  bool   `json:"is_official"`
	IsPreferred bool   `json:"is_preferred"`
	OnVacation  bool   `json:"on_vacation"`
	LastActive  int64  `json:"last_active"`
}

// ProductDetail is the richer single-product record produced by the
// product-detail payload kind. Ephemeral: rebuilt fully on every
// detail-page capture, never merged with prior state.
type ProductDetail struct {
	Product

	PriceMin     float64         `json:"price_min"`
	PriceMax     float64         `json:"price_max"`
	Ratings      RatingHistogram `json:"ratings"`
	ViewCount    int64           `json:"view_count"`
	Variants     []Variant       `json:"variants,omitempty"`
	Tiers        []TierVariation `json:"tiers,omitempty"`
	IsPreOrder   bool            `json:"is_pre_order"`
	PreOrderDays int             `json:"pre_order_days,omitempty"`
	Shop         ShopBrief       `json:"shop"`
}

// SearchResult is the latest captured search page for a tab.
type SearchResult struct {
	Items      []Product `json:"items"`
	TotalCount int64     `json:"total_count"`
	CapturedAt time.Time `json:"captured_at"`
}

// OfficialStore aggregates the official-store listings of one shop seen
// in a category capture. The average rating is derived at read time from
// the running sums, not stored.
type OfficialStore struct {
	ShopID       int64   `json:"shop_id"`
	ProductCount int     `json:"product_count"`
	TotalSold    int64   `json:"total_sold"`
	RatingSum    float64 `json:"-"`
	RatingN      int     `json:"-"`
}

// AvgRating returns the mean rating over the sampled listings, or 0 when
// no listing carried a rating.
func (o OfficialStore) AvgRating() float64 {
	if o.RatingN == 0 {
		return 0
	}
	return o.RatingSum / float64(o.RatingN)
}

// MarshalJSON emits the derived average so consumers see it without the
// running sums ever being part of the wire shape.
func (o OfficialStore) MarshalJSON() ([]byte, error) {
	type alias OfficialStore
	return json.Marshal(struct {
		alias
		AvgRating float64 `json:"avg_rating"`
	}{alias(o), o.AvgRating()})
}

// CategoryResult is the latest captured category page for a tab, with the
// per-shop official-store aggregates derived in the same pass.
type CategoryResult struct {
	Items          []Product       `json:"items"`
	OfficialStores []OfficialStore `json:"official_stores"`
	CapturedAt     time.Time       `json:"captured_at"`
}

// CaptureSnapshot is the full per-tab aggregation state handed to
// consumers: current shop, accumulated deduplicated products, and the
// capture progress counters.
type CaptureSnapshot struct {
	Shop          *ShopInfo `json:"shop,omitempty"`
	Products      []Product `json:"products"`
	CapturedCount int       `json:"captured_count"`
	ExpectedTotal int64     `json:"expected_total"`
}
