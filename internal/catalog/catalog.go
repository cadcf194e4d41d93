package catalog

import (
	"strings"
)

// DefaultFallbackPath is where requests land when the locale itself is
// unknown and no locale-specific fallback can be chosen.
const DefaultFallbackPath = "/payment"

// Product describes one locale's protected download: the Stripe product
// that must appear on a paid checkout session, the Google Drive file that
// holds the asset, and where to send visitors who have not paid yet.
type Product struct {
	Locale       string
	ProductID    string
	DriveID      string
	FallbackPath string
}

var products = map[string]Product{
	"en": {
		Locale:       "en",
		ProductID:    "prod_TGSwKIkmghLNuZ",
		DriveID:      "1JRrJGW0pYUDqKnox4lP7ImNB-XzDMuyC",
		FallbackPath: "/payment",
	},
	"fr": {
		Locale:       "fr",
		ProductID:    "prod_TGSjL24r4PjuHq",
		DriveID:      "1sV2LKogCwiuSjrNVDUy0ECyZW27zVI06",
		FallbackPath: "/fr/paiement",
	},
	"es": {
		Locale:       "es",
		ProductID:    "prod_TGT50OMoqWV3bx",
		DriveID:      "10R5m_w7SzaH6U6t6x_1IOphwSThh2vDv",
		FallbackPath: "/es/pago",
	},
	"de": {
		Locale:       "de",
		ProductID:    "prod_TGTEcCwUKQEBWB",
		DriveID:      "1uu6fi-qjT24xmsiyixsCN7q9l72OKQ4t",
		FallbackPath: "/de/zahlung",
	},
}

// Registry is the immutable locale-to-product table. It is built once at
// startup and shared read-only across requests.
type Registry struct {
	products map[string]Product
}

// NewRegistry returns the compiled-in product registry.
func NewRegistry() Registry {
	return Registry{products: products}
}

// Lookup resolves a locale key to its product. The key is trimmed and
// lowercased before the lookup, so "DE " and "de" resolve identically.
func (r Registry) Lookup(lang string) (Product, bool) {
	key := strings.ToLower(strings.TrimSpace(lang))
	p, ok := r.products[key]
	return p, ok
}

// Locales returns the registered locale keys.
func (r Registry) Locales() []string {
	keys := make([]string, 0, len(r.products))
	for k := range r.products {
		keys = append(keys, k)
	}
	return keys
}
