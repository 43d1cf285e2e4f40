package shopee

import (
	"encoding/json"
	"fmt"

	"github.com/ihsan606/win-store/internal/models"
	"github.com/ihsan606/win-store/internal/parse"
)

// rawDetail covers the enveloped product-detail shape and its legacy
// flat variant. Three sub-objects feed the canonical record: the primary
// item, the review stats, and the shop sub-record. Review-stats values
// win over item-embedded ones for sold/rating/engagement fields — the
// review sub-object is refreshed more often by the site.
type rawDetail struct {
	Data *rawDetailData `json:"data"`
	rawDetailData
}

type rawDetailData struct {
	Item          *rawDetailItem `json:"item"`
	ProductReview *rawReview     `json:"product_review"`
	ShopDetailed  *rawShopBrief  `json:"shop_detailed"`
}

type rawDetailItem struct {
	rawItem

	Models         []rawVariant       `json:"models"`
	TierVariations []rawTierVariation `json:"tier_variations"`
	ViewCount      json.Number        `json:"view_count"`
	IsPreOrder     bool               `json:"is_pre_order"`
	EstimatedDays  json.Number        `json:"estimated_days"`
}

type rawVariant struct {
	ModelID             json.Number `json:"modelid"`
	Name                string      `json:"name"`
	Price               json.Number `json:"price"`
	PriceBeforeDiscount json.Number `json:"price_before_discount"`
	Stock               json.Number `json:"stock"`
	Sold                json.Number `json:"sold"`
}

type rawTierVariation struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type rawReview struct {
	RatingStar     json.Number   `json:"rating_star"`
	RatingCount    []json.Number `json:"rating_count"`
	HistoricalSold json.Number   `json:"historical_sold"`
	Sold           json.Number   `json:"sold"`
	LikedCount     json.Number   `json:"liked_count"`
	CmtCount       json.Number   `json:"cmt_count"`
}

type rawShopBrief struct {
	Account struct {
		Username string `json:"username"`
	} `json:"account"`
	Username    string      `json:"username"`
	IsVerified  bool        `json:"is_shopee_verified"`
	IsOfficial  bool        `json:"is_official_shop"`
	IsPreferred bool        `json:"is_preferred_plus_seller"`
	OnVacation  bool        `json:"vacation"`
	LastActive  json.Number `json:"last_active_time"`
}

// NormalizeDetail turns a product-detail payload into the canonical
// rich record. The record is rebuilt fully on every capture; missing
// sub-objects degrade to the item-embedded values or zero.
func NormalizeDetail(raw []byte) (*models.ProductDetail, error) {
	var r rawDetail
	if err := decode(raw, &r); err != nil {
		return nil, fmt.Errorf("decode detail payload: %w", err)
	}

	d := &r.rawDetailData
	if r.Data != nil {
		d = r.Data
	}
	if d.Item == nil {
		return nil, fmt.Errorf("detail payload has no item")
	}

	it := d.Item
	detail := &models.ProductDetail{
		Product:      it.toProduct(),
		PriceMin:     parse.RescalePrice(asFloat(it.PriceMin)),
		PriceMax:     parse.RescalePrice(asFloat(it.PriceMax)),
		ViewCount:    asInt64(it.ViewCount),
		IsPreOrder:   it.IsPreOrder,
		PreOrderDays: int(asInt64(it.EstimatedDays)),
	}

	for _, m := range it.Models {
		detail.Variants = append(detail.Variants, models.Variant{
			ModelID:             asInt64(m.ModelID),
			Name:                m.Name,
			Price:               parse.RescalePrice(asFloat(m.Price)),
			PriceBeforeDiscount: parse.RescalePrice(asFloat(m.PriceBeforeDiscount)),
			Stock:               asInt64(m.Stock),
			Sold:                asInt64(m.Sold),
		})
	}
	for _, tv := range it.TierVariations {
		detail.Tiers = append(detail.Tiers, models.TierVariation{
			Name:    tv.Name,
			Options: tv.Options,
		})
	}

	if rev := d.ProductReview; rev != nil {
		applyReview(detail, rev)
	} else if it.Rating != nil {
		detail.Ratings = histogram(it.Rating.RatingCount)
	}

	if sh := d.ShopDetailed; sh != nil {
		username := sh.Account.Username
		if username == "" {
			username = sh.Username
		}
		detail.Shop = models.ShopBrief{
			Username:    username,
			IsVerified:  sh.IsVerified,
			IsOfficial:  sh.IsOfficial,
			IsPreferred: sh.IsPreferred,
			OnVacation:  sh.OnVacation,
			LastActive:  asInt64(sh.LastActive),
		}
	}

	return detail, nil
}

// applyReview overlays the authoritative review stats onto the record.
func applyReview(detail *models.ProductDetail, rev *rawReview) {
	if v := asFloat(rev.RatingStar); v != 0 {
		detail.RatingStar = v
	}
	detail.Ratings = histogram(rev.RatingCount)
	if detail.Ratings.Total != 0 {
		detail.RatingCount = detail.Ratings.Total
	}
	if v := asInt64(rev.HistoricalSold); v != 0 {
		detail.HistoricalSold = v
	}
	if v := asInt64(rev.Sold); v != 0 {
		detail.MonthlySold = v
	}
	if v := asInt64(rev.LikedCount); v != 0 {
		detail.LikedCount = v
	}
	if v := asInt64(rev.CmtCount); v != 0 {
		detail.CommentCount = v
	}
}

// histogram converts the six-element rating_count array (total first,
// then one star through five) into the canonical breakdown. Short or
// missing arrays leave the remaining buckets at zero.
func histogram(counts []json.Number) models.RatingHistogram {
	var h models.RatingHistogram
	if len(counts) > 0 {
		h.Total = asInt64(counts[0])
	}
	for i := 0; i < 5 && i+1 < len(counts); i++ {
		h.Stars[i] = asInt64(counts[i+1])
	}
	return h
}
