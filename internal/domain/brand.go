package domain

import "strings"

// Brand identifies the financial institution that issued a statement.
type Brand string

const (
	BrandBBVA            Brand = "BBVA"
	BrandSantander       Brand = "SANTANDER"
	BrandBanorte         Brand = "BANORTE"
	BrandHSBC            Brand = "HSBC"
	BrandCitibanamex     Brand = "CITIBANAMEX"
	BrandScotiabank      Brand = "SCOTIABANK"
	BrandInbursa         Brand = "INBURSA"
	BrandMultiva         Brand = "MULTIVA"
	BrandBanregio        Brand = "BANREGIO"
	BrandAzteca          Brand = "AZTECA"
	BrandAmericanExpress Brand = "AMERICAN_EXPRESS"
	BrandUnknown         Brand = "UNKNOWN"
)

// knownBrands is the enumeration order used to break detection ties.
var knownBrands = []Brand{
	BrandBBVA,
	BrandSantander,
	BrandBanorte,
	BrandHSBC,
	BrandCitibanamex,
	BrandScotiabank,
	BrandInbursa,
	BrandMultiva,
	BrandBanregio,
	BrandAzteca,
	BrandAmericanExpress,
}

// CLABE institution prefixes.
var routingCodes = map[Brand]string{
	BrandBBVA:        "012180002",
	BrandSantander:   "014180001",
	BrandBanorte:     "072180004",
	BrandHSBC:        "021180001",
	BrandCitibanamex: "002180002",
	BrandScotiabank:  "044180001",
	BrandInbursa:     "036180001",
	BrandMultiva:     "132180008",
	BrandBanregio:    "058180002",
	BrandAzteca:      "127180001",
}

// Brands returns every recognized brand in enumeration order, excluding BrandUnknown.
func Brands() []Brand {
	out := make([]Brand, len(knownBrands))
	copy(out, knownBrands)
	return out
}

// ParseBrand maps a free-form name to a Brand. Unrecognized names map to BrandUnknown.
func ParseBrand(s string) Brand {
	candidate := Brand(strings.ToUpper(strings.TrimSpace(s)))
	for _, b := range knownBrands {
		if b == candidate {
			return b
		}
	}
	return BrandUnknown
}

// RoutingCode returns the brand's routing code, or "" when it has none.
func (b Brand) RoutingCode() string {
	return routingCodes[b]
}

// IsKnown reports whether b is a recognized brand.
func (b Brand) IsKnown() bool {
	return b != BrandUnknown && ParseBrand(string(b)) == b
}

func (b Brand) String() string {
	return string(b)
}
