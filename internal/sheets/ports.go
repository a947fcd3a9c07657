package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one sale flattened for the remote mirror, with client and
// worker references already resolved to display values.
type LedgerRow struct {
	Date       time.Time
	Client     string
	Plate      string
	Gallons    decimal.Decimal
	TotalPesos int64
	Paid       bool
	Worker     string
	Notes      string
}

// RowWriter is the outbound port for the sale-ledger mirror.
type RowWriter interface {
	AppendSale(ctx context.Context, row LedgerRow) (rowRef string, err error)
}
