package importer

import (
	"strings"

	"github.com/feedbridge/backend/internal/infrastructure/csvfeed"
	"github.com/shopspring/decimal"
)

// Optional address column names, as they appear lowercased in the feed header.
const (
	colRecipient = "recipient"
	colPhone     = "phone #"
	colCountry   = "country"
	colState     = "state"
	colCity      = "city"
	colZipcode   = "zipcode"
	colAddress1  = "address line 1"
	colAddress2  = "address line 2"
	colName      = "product name"
	colVariation = "variation"
)

// LineItemDraft is one line item derived from a single feed row. Immutable
// once created.
type LineItemDraft struct {
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	ProductName string
	Variation   string
}

// RawAddress holds the untouched recipient and address columns of the first
// row that carried them, for the address mapper to normalize later.
type RawAddress struct {
	Recipient string
	Phone     string
	Country   string
	State     string
	City      string
	Zipcode   string
	Address1  string
	Address2  string
}

// IsEmpty reports whether no address column carried a value
func (a RawAddress) IsEmpty() bool {
	return a == RawAddress{}
}

// FeedOrder is one logical order folded from the rows sharing an external
// order id. It exists only for the duration of one import run.
type FeedOrder struct {
	ExternalID    string
	FallbackEmail string
	Address       RawAddress
	Items         []LineItemDraft
	Shipping      decimal.Decimal
	Tax           decimal.Decimal
}

// GroupRows folds parsed rows into logical orders keyed by external order id.
// Rows with an empty order id are skipped. Group order follows first
// occurrence in the file; items append in file order. The first row carrying
// any address data wins; later rows never overwrite it.
func GroupRows(rows []*csvfeed.Row, cols csvfeed.Columns, defaultItemName string) []*FeedOrder {
	byID := make(map[string]*FeedOrder)
	ordered := make([]*FeedOrder, 0)

	for _, row := range rows {
		externalID := strings.TrimSpace(row.Get(cols.OrderID))
		if externalID == "" {
			continue
		}

		fo, ok := byID[externalID]
		if !ok {
			fo = &FeedOrder{
				ExternalID:    externalID,
				FallbackEmail: csvfeed.SafeEmail("", "", externalID),
				Items:         make([]LineItemDraft, 0, 1),
				Shipping:      decimal.Zero,
				Tax:           decimal.Zero,
			}
			byID[externalID] = fo
			ordered = append(ordered, fo)
		}

		quantity := int(csvfeed.ParseAmount(row.Get(cols.Quantity)).IntPart())
		if quantity < 1 {
			quantity = 1
		}
		fo.Items = append(fo.Items, LineItemDraft{
			SKU:         csvfeed.NormalizeSKU(row.Get(cols.SKU)),
			Quantity:    quantity,
			UnitPrice:   csvfeed.ParseAmount(row.Get(cols.UnitPrice)),
			ProductName: row.GetOrDefault(colName, defaultItemName),
			Variation:   row.Get(colVariation),
		})

		if fo.Address.IsEmpty() {
			addr := RawAddress{
				Recipient: row.Get(colRecipient),
				Phone:     row.Get(colPhone),
				Country:   row.Get(colCountry),
				State:     row.Get(colState),
				City:      row.Get(colCity),
				Zipcode:   row.Get(colZipcode),
				Address1:  row.Get(colAddress1),
				Address2:  row.Get(colAddress2),
			}
			if !addr.IsEmpty() {
				fo.Address = addr
			}
		}
	}

	return ordered
}
