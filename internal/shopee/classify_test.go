package shopee

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		url  string
		want Kind
	}{
		{"https://shopee.co.id/api/v4/shop/get_shop_base?shopid=123", KindShop},
		{"https://shopee.co.id/api/v4/shop/get_shop_info?shopid=123", KindShop},
		{"https://shopee.co.id/api/v4/pdp/get_pc?item_id=1&shop_id=2", KindProductDetail},
		{"https://shopee.co.id/api/v4/item/get?itemid=1&shopid=2", KindProductDetail},
		{"https://shopee.co.id/api/v4/search/search_items?keyword=sepatu", KindSearch},
		{"https://shopee.co.id/api/v4/recommend/recommend?bundle=category", KindCategory},
		{"https://shopee.co.id/api/v4/shop/rcmd_items?shopid=9", KindProductList},
		{"https://shopee.co.id/api/v4/shop/search_items?shopid=9&offset=30", KindProductList},
		{"https://shopee.co.id/api/v4/account/basic/get", KindNone},
		{"https://cdn.example.com/banner.js", KindNone},
		{"", KindNone},
	}
	for _, c := range cases {
		if got := Classify(c.url); got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

// A search URL must classify as search only, never fall through to the
// generic product-list kind: the payload shapes differ and processing
// one response as both would corrupt the aggregation state.
func TestClassifySearchExclusive(t *testing.T) {
	url := "https://shopee.co.id/api/v4/search/search_items?keyword=x&page=2"
	if got := Classify(url); got != KindSearch {
		t.Fatalf("Classify(%q) = %v, want KindSearch", url, got)
	}
	for _, f := range productListEndpoints {
		if f == "/api/v4/search/search_items" {
			t.Fatalf("search endpoint listed under product-list fragments")
		}
	}
}
