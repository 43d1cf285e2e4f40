package shopee

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ihsan606/win-store/internal/models"
	"github.com/ihsan606/win-store/internal/parse"
	"golang.org/x/net/html"
)

// ExtractJSONLD pulls a product-detail record out of the JSON-LD script
// tags of a rendered detail page. It is the low-fidelity fallback used
// when a forced refresh observes no detail endpoint on the wire; only
// the fields present in the structured-data markup are filled.
func ExtractJSONLD(htmlContent string) (*models.ProductDetail, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var detail *models.ProductDetail
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if detail != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, attr := range n.Attr {
				if attr.Key == "type" && attr.Val == "application/ld+json" && n.FirstChild != nil {
					if d, err := parseJSONLDProduct(n.FirstChild.Data); err == nil {
						detail = d
						return
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if detail == nil {
		return nil, fmt.Errorf("no product JSON-LD found")
	}
	return detail, nil
}

type jsonLDItem struct {
	Type  string      `json:"@type"`
	Name  string      `json:"name"`
	Image interface{} `json:"image"`
	Brand *struct {
		Name string `json:"name"`
	} `json:"brand"`
	Offers *struct {
		Price     json.Number `json:"price"`
		LowPrice  json.Number `json:"lowPrice"`
		HighPrice json.Number `json:"highPrice"`
	} `json:"offers"`
	AggregateRating *struct {
		RatingValue json.Number `json:"ratingValue"`
		RatingCount json.Number `json:"ratingCount"`
	} `json:"aggregateRating"`
}

func parseJSONLDProduct(data string) (*models.ProductDetail, error) {
	var item jsonLDItem
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &item); err != nil {
		return nil, err
	}
	if item.Type != "Product" {
		return nil, fmt.Errorf("not a product node")
	}

	d := &models.ProductDetail{}
	d.Name = item.Name
	if item.Brand != nil {
		d.Brand = item.Brand.Name
	}

	switch img := item.Image.(type) {
	case string:
		d.Image = img
	case []interface{}:
		if len(img) > 0 {
			if s, ok := img[0].(string); ok {
				d.Image = s
			}
		}
	}

	if item.Offers != nil {
		d.Product.Price = parse.RescalePrice(asFloat(item.Offers.Price))
		d.PriceMin = parse.RescalePrice(asFloat(item.Offers.LowPrice))
		d.PriceMax = parse.RescalePrice(asFloat(item.Offers.HighPrice))
		if d.Product.Price == 0 {
			d.Product.Price = d.PriceMin
		}
	}
	if item.AggregateRating != nil {
		d.RatingStar = asFloat(item.AggregateRating.RatingValue)
		d.RatingCount = asInt64(item.AggregateRating.RatingCount)
		d.Ratings.Total = d.RatingCount
	}

	return d, nil
}
