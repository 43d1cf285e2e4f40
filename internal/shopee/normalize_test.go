package shopee

import (
	"reflect"
	"testing"
	"time"
)

const legacyListPayload = `{
	"items": [
		{
			"itemid": 101,
			"shopid": 7,
			"name": "Sepatu Lari",
			"price": 15000000000,
			"price_before_discount": 20000000000,
			"raw_discount": 25,
			"stock": 40,
			"historical_sold": 1200,
			"sold": 90,
			"item_rating": {"rating_star": 4.8, "rating_count": [350, 3, 5, 12, 80, 250]},
			"liked_count": 77,
			"cmt_count": 140,
			"ctime": 1600000000,
			"catid": 1201,
			"image": "abc123"
		}
	],
	"total_count": 800
}`

func TestNormalizeItemsLegacyShape(t *testing.T) {
	items, total, err := NormalizeItems([]byte(legacyListPayload))
	if err != nil {
		t.Fatalf("NormalizeItems: %v", err)
	}
	if total != 800 {
		t.Fatalf("total = %d, want 800", total)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	p := items[0]
	if p.ItemID != 101 || p.ShopID != 7 {
		t.Errorf("identity = (%d,%d), want (101,7)", p.ItemID, p.ShopID)
	}
	if p.Price != 150000 {
		t.Errorf("price = %v, want 150000 (rescaled from fixed-point)", p.Price)
	}
	if p.PriceBeforeDiscount != 200000 {
		t.Errorf("price_before_discount = %v, want 200000", p.PriceBeforeDiscount)
	}
	if p.HistoricalSold != 1200 || p.MonthlySold != 90 {
		t.Errorf("sold = (%d,%d), want (1200,90)", p.HistoricalSold, p.MonthlySold)
	}
	if p.RatingStar != 4.8 || p.RatingCount != 350 {
		t.Errorf("rating = (%v,%d), want (4.8,350)", p.RatingStar, p.RatingCount)
	}
}

// The newer shape nests items in the centralized card container, moves
// price into a display sub-object and reports sold counts as localized
// text. All three take precedence over their legacy counterparts.
const cardListPayload = `{
	"data": {
		"centralize_item_card": {
			"item_cards": [
				{
					"itemid": 202,
					"shopid": 9,
					"name": "Tas Selempang",
					"price": 999,
					"item_card_display_price": {"price": 4500000000, "strikethrough_price": 6000000000},
					"item_card_display_sold_count": {
						"historical_sold_count_text": "10RB+ terjual",
						"monthly_sold_count_text": "1,5RB terjual per bulan"
					},
					"historical_sold": 3
				}
			]
		},
		"total_count": 120
	}
}`

func TestNormalizeItemsCardShapePrecedence(t *testing.T) {
	items, total, err := NormalizeItems([]byte(cardListPayload))
	if err != nil {
		t.Fatalf("NormalizeItems: %v", err)
	}
	if total != 120 {
		t.Fatalf("total = %d, want 120", total)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	p := items[0]
	if p.Price != 45000 {
		t.Errorf("price = %v, want 45000 (display price wins over flat field)", p.Price)
	}
	if p.PriceBeforeDiscount != 60000 {
		t.Errorf("price_before_discount = %v, want 60000", p.PriceBeforeDiscount)
	}
	if p.HistoricalSold != 10000 || p.HistoricalSoldText != "10RB+ terjual" {
		t.Errorf("historical sold = (%d,%q), want text-parsed 10000", p.HistoricalSold, p.HistoricalSoldText)
	}
	if p.MonthlySold != 1500 {
		t.Errorf("monthly sold = %d, want 1500", p.MonthlySold)
	}
}

const searchPayload = `{
	"items": [
		{"item_basic": {"itemid": 301, "shopid": 4, "name": "Kaos Polos", "price": 50000, "historical_sold": 15}},
		{"item_basic": {"itemid": 302, "shopid": 4, "name": "Kemeja", "price": 2500000, "historical_sold": 2}}
	],
	"total_count": 2
}`

func TestNormalizeSearchUnwrapsItemBasic(t *testing.T) {
	now := time.Now()
	res, err := NormalizeSearch([]byte(searchPayload), now)
	if err != nil {
		t.Fatalf("NormalizeSearch: %v", err)
	}
	if len(res.Items) != 2 || res.TotalCount != 2 {
		t.Fatalf("items=%d total=%d, want 2/2", len(res.Items), res.TotalCount)
	}
	if res.Items[0].ItemID != 301 || res.Items[0].Name != "Kaos Polos" {
		t.Errorf("item_basic not unwrapped: %+v", res.Items[0])
	}
	if res.Items[0].Price != 50000 {
		t.Errorf("price = %v, want 50000 untouched (below rescale threshold)", res.Items[0].Price)
	}
	if res.Items[1].Price != 25 {
		t.Errorf("price = %v, want 25 (rescaled)", res.Items[1].Price)
	}
	if !res.CapturedAt.Equal(now) {
		t.Errorf("captured_at not stamped")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	a, _, err := NormalizeItems([]byte(cardListPayload))
	if err != nil {
		t.Fatalf("NormalizeItems: %v", err)
	}
	b, _, _ := NormalizeItems([]byte(cardListPayload))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("normalization not idempotent:\n%+v\n%+v", a, b)
	}
}

const categoryPayload = `{
	"items": [
		{"itemid": 1, "shopid": 10, "is_official_shop": true, "historical_sold": 100, "item_rating": {"rating_star": 4}},
		{"itemid": 2, "shopid": 10, "is_official_shop": true, "historical_sold": 50, "item_rating": {"rating_star": 5}},
		{"itemid": 3, "shopid": 20, "is_official_shop": false, "historical_sold": 999, "item_rating": {"rating_star": 1}}
	]
}`

func TestNormalizeCategoryOfficialStores(t *testing.T) {
	res, err := NormalizeCategory([]byte(categoryPayload), time.Now())
	if err != nil {
		t.Fatalf("NormalizeCategory: %v", err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(res.Items))
	}
	if len(res.OfficialStores) != 1 {
		t.Fatalf("got %d official stores, want 1 (non-official shop excluded)", len(res.OfficialStores))
	}

	s := res.OfficialStores[0]
	if s.ShopID != 10 || s.ProductCount != 2 || s.TotalSold != 150 {
		t.Errorf("aggregate = %+v, want shop 10, 2 products, 150 sold", s)
	}
	if s.AvgRating() != 4.5 {
		t.Errorf("avg rating = %v, want 4.5", s.AvgRating())
	}
}

func TestNormalizeCategorySortedByProductCount(t *testing.T) {
	payload := `{"items": [
		{"itemid": 1, "shopid": 1, "is_official_shop": true},
		{"itemid": 2, "shopid": 2, "is_official_shop": true},
		{"itemid": 3, "shopid": 2, "is_official_shop": true}
	]}`
	res, err := NormalizeCategory([]byte(payload), time.Now())
	if err != nil {
		t.Fatalf("NormalizeCategory: %v", err)
	}
	if len(res.OfficialStores) != 2 {
		t.Fatalf("got %d stores, want 2", len(res.OfficialStores))
	}
	if res.OfficialStores[0].ShopID != 2 {
		t.Errorf("stores not sorted by product count desc: %+v", res.OfficialStores)
	}
}

const detailPayload = `{
	"data": {
		"item": {
			"itemid": 501,
			"shopid": 33,
			"name": "Jam Tangan",
			"price": 30000000000,
			"price_min": 25000000000,
			"price_max": 35000000000,
			"historical_sold": 10,
			"liked_count": 5,
			"view_count": 9000,
			"is_pre_order": true,
			"estimated_days": 7,
			"models": [
				{"modelid": 1, "name": "Hitam", "price": 25000000000, "stock": 3, "sold": 8}
			],
			"tier_variations": [{"name": "Warna", "options": ["Hitam", "Putih"]}]
		},
		"product_review": {
			"rating_star": 4.9,
			"rating_count": [500, 2, 3, 15, 80, 400],
			"historical_sold": 2300,
			"liked_count": 410,
			"cmt_count": 350
		},
		"shop_detailed": {
			"account": {"username": "tokojam"},
			"is_shopee_verified": true,
			"is_official_shop": true,
			"last_active_time": 1700000000
		}
	}
}`

func TestNormalizeDetailReviewWins(t *testing.T) {
	d, err := NormalizeDetail([]byte(detailPayload))
	if err != nil {
		t.Fatalf("NormalizeDetail: %v", err)
	}

	if d.ItemID != 501 || d.ShopID != 33 {
		t.Fatalf("identity = (%d,%d), want (501,33)", d.ItemID, d.ShopID)
	}
	if d.Price != 300000 || d.PriceMin != 250000 || d.PriceMax != 350000 {
		t.Errorf("prices = (%v,%v,%v), want rescaled (300000,250000,350000)", d.Price, d.PriceMin, d.PriceMax)
	}

	// Review stats overrule the item-embedded values.
	if d.HistoricalSold != 2300 {
		t.Errorf("historical sold = %d, want 2300 from review stats", d.HistoricalSold)
	}
	if d.RatingStar != 4.9 || d.RatingCount != 500 {
		t.Errorf("rating = (%v,%d), want (4.9,500)", d.RatingStar, d.RatingCount)
	}
	if d.LikedCount != 410 || d.CommentCount != 350 {
		t.Errorf("engagement = (%d,%d), want (410,350)", d.LikedCount, d.CommentCount)
	}
	if d.Ratings.Total != 500 || d.Ratings.Stars[4] != 400 {
		t.Errorf("histogram = %+v, want total 500, five-star 400", d.Ratings)
	}

	if d.ViewCount != 9000 || !d.IsPreOrder || d.PreOrderDays != 7 {
		t.Errorf("detail extras = (%d,%v,%d)", d.ViewCount, d.IsPreOrder, d.PreOrderDays)
	}
	if len(d.Variants) != 1 || d.Variants[0].Price != 250000 {
		t.Errorf("variants = %+v, want one rescaled variant", d.Variants)
	}
	if len(d.Tiers) != 1 || d.Tiers[0].Name != "Warna" {
		t.Errorf("tiers = %+v", d.Tiers)
	}
	if d.Shop.Username != "tokojam" || !d.Shop.IsVerified || d.Shop.LastActive != 1700000000 {
		t.Errorf("shop brief = %+v", d.Shop)
	}
}

func TestNormalizeDetailMissingSubObjects(t *testing.T) {
	d, err := NormalizeDetail([]byte(`{"data": {"item": {"itemid": 9, "shopid": 1}}}`))
	if err != nil {
		t.Fatalf("NormalizeDetail: %v", err)
	}
	if d.ItemID != 9 || d.HistoricalSold != 0 || d.Shop.Username != "" {
		t.Errorf("missing sub-objects should default to zero: %+v", d)
	}
}

func TestNormalizeShop(t *testing.T) {
	payload := `{"data": {
		"shopid": 88,
		"name": "Toko Maju",
		"account": {"username": "majujaya"},
		"follower_count": 15000,
		"item_count": 320,
		"ctime": 1500000000,
		"rating_star": 4.7,
		"rating_good": 9000,
		"rating_normal": 400,
		"rating_bad": 100,
		"response_rate": 98,
		"is_official_shop": true,
		"is_shopee_verified": true
	}}`
	info, err := NormalizeShop([]byte(payload))
	if err != nil {
		t.Fatalf("NormalizeShop: %v", err)
	}
	if info.ShopID != 88 || info.Username != "majujaya" || info.FollowerCount != 15000 {
		t.Errorf("shop = %+v", info)
	}
	if !info.IsOfficial || !info.IsVerified || info.OnVacation {
		t.Errorf("flags = %+v", info)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	if _, _, err := NormalizeItems([]byte("{not json")); err == nil {
		t.Error("NormalizeItems should fail on unparseable JSON")
	}
	if _, err := NormalizeShop([]byte("<html>")); err == nil {
		t.Error("NormalizeShop should fail on unparseable JSON")
	}
	// Valid JSON with an alien shape yields empty data, not an error.
	items, total, err := NormalizeItems([]byte(`{"error": 4}`))
	if err != nil || len(items) != 0 || total != 0 {
		t.Errorf("alien shape: items=%v total=%d err=%v, want empty and nil", items, total, err)
	}
}
