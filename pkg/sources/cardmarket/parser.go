package cardmarket

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mtgtools/arbitro-go/pkg/sources"
)

// Selectors match cardmarket's rendered markup. The search results table and
// the product page's article rows are the only structures we depend on.
const (
	productLinkSelector = ".table-body .row .col-md-8 a, .table-body .row .col-12 > a"
	articleRowSelector  = "div.article-row"
	sellerNameSelector  = ".seller-name a"
	sellerFlagSelector  = ".seller-name .fi"
	priceSelector       = ".price-container"
	shippingSelector    = ".shipping-cost"
)

// findProductLink extracts the first product href from a search results page.
func findProductLink(doc *goquery.Document) (string, bool) {
	link := doc.Find(productLinkSelector).First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return strings.TrimSpace(href), true
}

// parseArticleRows extracts seller listings from a product page. Rows missing
// a seller name or a parseable price are dropped; validation of what remains
// happens downstream.
func parseArticleRows(doc *goquery.Document, productURL string, shipsFrom map[string]bool) []sources.RawListing {
	var listings []sources.RawListing

	doc.Find(articleRowSelector).Each(func(_ int, row *goquery.Selection) {
		sellerName := strings.TrimSpace(row.Find(sellerNameSelector).First().Text())
		if sellerName == "" {
			return
		}

		price, ok := parseEuroPrice(row.Find(priceSelector).First().Text())
		if !ok {
			return
		}

		shipping := decimal.Zero
		if text := row.Find(shippingSelector).First().Text(); text != "" {
			if parsed, ok := parseEuroPrice(text); ok {
				shipping = parsed
			}
		}

		country := countryFromFlag(row.Find(sellerFlagSelector).First())
		shipsTo := len(shipsFrom) == 0 || shipsFrom[country]

		listings = append(listings, sources.RawListing{
			SellerName:    sellerName,
			SellerClass:   sellerClassFromRow(row),
			Country:       country,
			ShipsTo:       shipsTo,
			ItemPrice:     price,
			ShippingPrice: shipping,
			Currency:      "EUR",
			SourceURL:     productURL,
		})
	})

	return listings
}

// countryFromFlag maps a flag icon's "fi-xx" class to a country code.
func countryFromFlag(flag *goquery.Selection) string {
	class, ok := flag.Attr("class")
	if !ok {
		return ""
	}
	for _, c := range strings.Fields(class) {
		if strings.HasPrefix(c, "fi-") {
			return strings.ToLower(strings.TrimPrefix(c, "fi-"))
		}
	}
	return ""
}

// sellerClassFromRow reads cardmarket's seller badge title. Unbadged sellers
// are private individuals.
func sellerClassFromRow(row *goquery.Selection) string {
	class := ""
	row.Find(".seller-name [title]").EachWithBreak(func(_ int, badge *goquery.Selection) bool {
		title, _ := badge.Attr("title")
		switch strings.ToLower(strings.TrimSpace(title)) {
		case "professional":
			class = "professional"
			return false
		case "powerseller":
			class = "powerseller"
			return false
		}
		return true
	})
	return class
}

// parseEuroPrice parses cardmarket's comma-decimal euro format, e.g.
// "1.234,56 €".
func parseEuroPrice(text string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "€", "")
	cleaned = strings.ReplaceAll(cleaned, " ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, false
	}
	return price, true
}
