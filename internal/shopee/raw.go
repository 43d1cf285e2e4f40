package shopee

import (
	"encoding/json"

	"github.com/ihsan606/win-store/internal/models"
	"github.com/ihsan606/win-store/internal/parse"
)

// asInt64 coerces a json.Number that may be absent or malformed. Missing
// fields decode to the empty Number, which parses to 0 here — the
// normalizers prefer partial data over dropped data.
func asInt64(n json.Number) int64 {
	v, err := n.Int64()
	if err != nil {
		// Some shapes report integral fields as floats.
		if f, ferr := n.Float64(); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return v
}

func asFloat(n json.Number) float64 {
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}

// rawDisplayPrice is the structured price sub-object of the newer item
// card shape.
type rawDisplayPrice struct {
	Price              json.Number `json:"price"`
	StrikethroughPrice json.Number `json:"strikethrough_price"`
}

// rawDisplaySold carries the localized sold-count strings of the newer
// item card shape.
type rawDisplaySold struct {
	HistoricalSoldText string `json:"historical_sold_count_text"`
	MonthlySoldText    string `json:"monthly_sold_count_text"`
}

// rawRating is the nested rating sub-object. RatingCount is a
// six-element histogram whose first element is the total.
type rawRating struct {
	RatingStar  json.Number   `json:"rating_star"`
	RatingCount []json.Number `json:"rating_count"`
}

// rawItem covers every item shape the site has shipped: the search
// variant wraps the real fields in item_basic, the newer card shape
// moves price and sold counts into display sub-objects, and the legacy
// shape keeps everything flat. Field extraction precedence lives in the
// methods below, documented once instead of inline per access.
type rawItem struct {
	ItemBasic *rawItem `json:"item_basic"`

	ItemID    json.Number `json:"itemid"`
	ItemIDAlt json.Number `json:"item_id"`
	ShopID    json.Number `json:"shopid"`
	ShopIDAlt json.Number `json:"shop_id"`

	Name  string `json:"name"`
	Title string `json:"title"`

	Price               json.Number      `json:"price"`
	PriceMin            json.Number      `json:"price_min"`
	PriceMax            json.Number      `json:"price_max"`
	PriceBeforeDiscount json.Number      `json:"price_before_discount"`
	DisplayPrice        *rawDisplayPrice `json:"item_card_display_price"`

	Stock          json.Number     `json:"stock"`
	Sold           json.Number     `json:"sold"`
	HistoricalSold json.Number     `json:"historical_sold"`
	DisplaySold    *rawDisplaySold `json:"item_card_display_sold_count"`

	Rating      *rawRating  `json:"item_rating"`
	RatingStar  json.Number `json:"rating_star"`
	CmtCount    json.Number `json:"cmt_count"`
	LikedCount  json.Number `json:"liked_count"`
	RawDiscount json.Number `json:"raw_discount"`
	Discount    string      `json:"show_discount"`

	Image  string      `json:"image"`
	Images []string    `json:"images"`
	CTime  json.Number `json:"ctime"`
	CatID  json.Number `json:"catid"`
	Brand  string      `json:"brand"`

	IsOfficialShop bool `json:"is_official_shop"`
	ShopeeVerified bool `json:"shopee_verified"`
}

// effective unwraps the item_basic envelope used by one search variant.
func (r *rawItem) effective() *rawItem {
	if r.ItemBasic != nil {
		return r.ItemBasic
	}
	return r
}

// Precedence: itemid, then item_id.
func (r *rawItem) id() int64 {
	if v := asInt64(r.ItemID); v != 0 {
		return v
	}
	return asInt64(r.ItemIDAlt)
}

func (r *rawItem) shop() int64 {
	if v := asInt64(r.ShopID); v != 0 {
		return v
	}
	return asInt64(r.ShopIDAlt)
}

func (r *rawItem) displayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Title
}

// Precedence: display-price sub-object, then the legacy flat price
// field. Either may carry the site's fixed-point scaling.
func (r *rawItem) price() float64 {
	if r.DisplayPrice != nil {
		if v := asFloat(r.DisplayPrice.Price); v != 0 {
			return parse.RescalePrice(v)
		}
	}
	return parse.RescalePrice(asFloat(r.Price))
}

func (r *rawItem) priceBeforeDiscount() float64 {
	if r.DisplayPrice != nil {
		if v := asFloat(r.DisplayPrice.StrikethroughPrice); v != 0 {
			return parse.RescalePrice(v)
		}
	}
	return parse.RescalePrice(asFloat(r.PriceBeforeDiscount))
}

// Precedence: localized sold-count text, then the legacy numeric field.
func (r *rawItem) historicalSold() (int64, string) {
	if r.DisplaySold != nil && r.DisplaySold.HistoricalSoldText != "" {
		if v := parse.SoldCount(r.DisplaySold.HistoricalSoldText); v != 0 {
			return v, r.DisplaySold.HistoricalSoldText
		}
	}
	return asInt64(r.HistoricalSold), ""
}

func (r *rawItem) monthlySold() (int64, string) {
	if r.DisplaySold != nil && r.DisplaySold.MonthlySoldText != "" {
		if v := parse.SoldCount(r.DisplaySold.MonthlySoldText); v != 0 {
			return v, r.DisplaySold.MonthlySoldText
		}
	}
	return asInt64(r.Sold), ""
}

// Precedence: nested rating sub-object, then top-level fields. The
// histogram's first element is the total review count.
func (r *rawItem) ratingStar() float64 {
	if r.Rating != nil {
		if v := asFloat(r.Rating.RatingStar); v != 0 {
			return v
		}
	}
	return asFloat(r.RatingStar)
}

func (r *rawItem) ratingCount() int64 {
	if r.Rating != nil && len(r.Rating.RatingCount) > 0 {
		if v := asInt64(r.Rating.RatingCount[0]); v != 0 {
			return v
		}
	}
	return asInt64(r.CmtCount)
}

func (r *rawItem) image() string {
	if r.Image != "" {
		return r.Image
	}
	if len(r.Images) > 0 {
		return r.Images[0]
	}
	return ""
}

func (r *rawItem) discountPercent() int {
	return int(asInt64(r.RawDiscount))
}

// toProduct flattens the raw item into the canonical record.
func (r *rawItem) toProduct() models.Product {
	it := r.effective()
	hist, histText := it.historicalSold()
	monthly, monthlyText := it.monthlySold()

	return models.Product{
		ItemID:              it.id(),
		ShopID:              it.shop(),
		Name:                it.displayName(),
		Price:               it.price(),
		PriceBeforeDiscount: it.priceBeforeDiscount(),
		DiscountPercent:     it.discountPercent(),
		Stock:               asInt64(it.Stock),
		HistoricalSold:      hist,
		HistoricalSoldText:  histText,
		MonthlySold:         monthly,
		MonthlySoldText:     monthlyText,
		RatingStar:          it.ratingStar(),
		RatingCount:         it.ratingCount(),
		LikedCount:          asInt64(it.LikedCount),
		CommentCount:        asInt64(it.CmtCount),
		Image:               it.image(),
		CTime:               asInt64(it.CTime),
		CatID:               asInt64(it.CatID),
		Brand:               it.Brand,
		IsOfficialShop:      it.IsOfficialShop,
	}
}

// rawItemList covers the three item-list container shapes. Precedence:
// centralized item card container, then a nested data.items array, then
// a bare items array at the root.
type rawItemList struct {
	Items      []rawItem   `json:"items"`
	TotalCount json.Number `json:"total_count"`

	Data *struct {
		CentralizeItemCard *struct {
			ItemCards []rawItem `json:"item_cards"`
		} `json:"centralize_item_card"`
		Items      []rawItem   `json:"items"`
		TotalCount json.Number `json:"total_count"`
	} `json:"data"`
}

func (l *rawItemList) items() []rawItem {
	if l.Data != nil {
		if c := l.Data.CentralizeItemCard; c != nil && len(c.ItemCards) > 0 {
			return c.ItemCards
		}
		if len(l.Data.Items) > 0 {
			return l.Data.Items
		}
	}
	return l.Items
}

func (l *rawItemList) totalCount() int64 {
	if v := asInt64(l.TotalCount); v != 0 {
		return v
	}
	if l.Data != nil {
		return asInt64(l.Data.TotalCount)
	}
	return 0
}
