// Package shopee maps Shopee's undocumented API responses onto the
// canonical record types in internal/models. The site has migrated its
// response shapes over time; old and new shapes are both supported, with
// the extraction precedence documented once per payload kind.
package shopee

import "strings"

// Kind is the semantic payload kind of an intercepted response.
type Kind int

const (
	KindNone Kind = iota
	KindShop
	KindProductDetail
	KindSearch
	KindCategory
	KindProductList
)

func (k Kind) String() string {
	switch k {
	case KindShop:
		return "shop"
	case KindProductDetail:
		return "product-detail"
	case KindSearch:
		return "search"
	case KindCategory:
		return "category"
	case KindProductList:
		return "product-list"
	default:
		return "none"
	}
}

// Endpoint path fragments per kind. Search and category are checked
// before the generic product-list fragments and matched exclusively:
// their payload shapes differ enough that double-processing one response
// as both would corrupt the aggregation state.
var (
	shopEndpoints = []string{
		"/api/v4/shop/get_shop_base",
		"/api/v4/shop/get_shop_info",
	}
	detailEndpoints = []string{
		"/api/v4/pdp/get_pc",
		"/api/v4/item/get",
	}
	searchEndpoints = []string{
		"/api/v4/search/search_items",
	}
	categoryEndpoints = []string{
		"/api/v4/recommend/recommend",
		"/api/v4/pages/category_landing",
	}
	productListEndpoints = []string{
		"/api/v4/shop/rcmd_items",
		"/api/v4/shop/search_items",
	}
)

// Classify maps a response URL to its payload kind. Unmatched URLs yield
// KindNone; that is the normal case for the vast majority of traffic,
// not a fault.
func Classify(rawURL string) Kind {
	for _, group := range []struct {
		fragments []string
		kind      Kind
	}{
		{shopEndpoints, KindShop},
		{detailEndpoints, KindProductDetail},
		{searchEndpoints, KindSearch},
		{categoryEndpoints, KindCategory},
		{productListEndpoints, KindProductList},
	} {
		for _, f := range group.fragments {
			if strings.Contains(rawURL, f) {
				return group.kind
			}
		}
	}
	return KindNone
}
