package importer

import (
	"strings"

	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/infrastructure/csvfeed"
)

// BuildAddress projects a feed order's raw address columns onto a canonical
// address. The recipient splits into first/last name at the first whitespace
// run; a single token goes entirely into the first name. Country defaults to
// US, the state resolves best-effort to a 2-letter code, and the postal code
// loses all whitespace. Every absent field stays an empty string.
func BuildAddress(fo *FeedOrder) order.Address {
	raw := fo.Address

	firstName := strings.TrimSpace(raw.Recipient)
	lastName := ""
	if parts := strings.Fields(firstName); len(parts) > 1 {
		firstName = parts[0]
		lastName = strings.Join(parts[1:], " ")
	}

	country := strings.ToUpper(strings.TrimSpace(raw.Country))
	if country == "" {
		country = "US"
	}

	return order.Address{
		FirstName:    firstName,
		LastName:     lastName,
		AddressLine1: strings.TrimSpace(raw.Address1),
		AddressLine2: strings.TrimSpace(raw.Address2),
		City:         strings.TrimSpace(raw.City),
		State:        strings.ToUpper(csvfeed.NormalizeState(raw.State)),
		PostalCode:   csvfeed.StripWhitespace(raw.Zipcode),
		Country:      country,
		Email:        fo.FallbackEmail,
		Phone:        csvfeed.PhoneDigits(raw.Phone),
	}
}

// AnnotateAddress mirrors every non-empty address field into billing_ and
// shipping_ prefixed metadata so consumers reading raw annotations rather
// than the structured columns still see correct data. Blank fields are never
// written, so existing values survive.
func AnnotateAddress(o *order.Order, addr order.Address) {
	for _, field := range addr.Fields() {
		if field.Value == "" {
			continue
		}
		o.SetMetadata("_billing_"+field.Name, field.Value)
		o.SetMetadata("_shipping_"+field.Name, field.Value)
	}
}
