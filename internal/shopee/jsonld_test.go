package shopee

import "testing"

const productHTML = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList"}</script>
<script type="application/ld+json">{
	"@type": "Product",
	"name": "Sepatu Sneakers Pria",
	"image": ["https://cf.example/img.jpg"],
	"brand": {"@type": "Brand", "name": "Ventela"},
	"offers": {"@type": "AggregateOffer", "lowPrice": 28500000000, "highPrice": 31000000000},
	"aggregateRating": {"ratingValue": 4.8, "ratingCount": 1250}
}</script>
</head><body></body></html>`

func TestExtractJSONLD(t *testing.T) {
	d, err := ExtractJSONLD(productHTML)
	if err != nil {
		t.Fatalf("ExtractJSONLD: %v", err)
	}
	if d.Name != "Sepatu Sneakers Pria" || d.Brand != "Ventela" {
		t.Errorf("detail = %+v", d)
	}
	if d.Image != "https://cf.example/img.jpg" {
		t.Errorf("image = %q", d.Image)
	}
	if d.PriceMin != 285000 || d.PriceMax != 310000 {
		t.Errorf("price range = (%v,%v), want rescaled (285000,310000)", d.PriceMin, d.PriceMax)
	}
	if d.Product.Price != 285000 {
		t.Errorf("price = %v, want low price fallback", d.Product.Price)
	}
	if d.RatingStar != 4.8 || d.RatingCount != 1250 {
		t.Errorf("rating = (%v,%d)", d.RatingStar, d.RatingCount)
	}
}

func TestExtractJSONLDNoProduct(t *testing.T) {
	if _, err := ExtractJSONLD("<html><body><p>kosong</p></body></html>"); err == nil {
		t.Fatal("pages without product JSON-LD must fail")
	}
}
