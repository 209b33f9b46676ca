package models

import "github.com/shopspring/decimal"

// NetPosition is a fully validated snapshot row. Expiry, Strike and OptType
// are empty strings for fields that do not apply to the instrument; they
// persist as nulls.
type NetPosition struct {
	BrokerID       string
	Sheet          string
	Strategy       string
	Exchange       string
	InstrumentType string
	Symbol         string
	Expiry         string // DD-MMM-YYYY, empty for EQ
	Strike         string // numeric text as supplied, empty for non-options
	OptType        string
	NetQty         int64
	AvgPrice       decimal.Decimal
	CarryDate      string // DD-MMM-YYYY, single-valued per file
}

// Key returns the business key identifying this position for snapshot
// merging and upsert conflict resolution (carry date excluded: it is
// single-valued per file).
func (p NetPosition) Key() PositionKey {
	return PositionKey{
		BrokerID:       p.BrokerID,
		Sheet:          p.Sheet,
		Strategy:       p.Strategy,
		Exchange:       p.Exchange,
		InstrumentType: p.InstrumentType,
		Symbol:         p.Symbol,
		Expiry:         p.Expiry,
		Strike:         p.Strike,
		OptType:        p.OptType,
	}
}

// PositionKey is the business key of a net position. Empty fields are part
// of the key: rows with missing contract fields group together rather than
// being dropped.
type PositionKey struct {
	BrokerID       string
	Sheet          string
	Strategy       string
	Exchange       string
	InstrumentType string
	Symbol         string
	Expiry         string
	Strike         string
	OptType        string
}

// IntradayTrade is a fully validated execution row. Executions are
// append-only: there is no business-key dedup, every row is a distinct
// execution.
type IntradayTrade struct {
	BrokerID       string
	Sheet          string
	Strategy       string
	Exchange       string
	InstrumentType string
	Symbol         string
	Expiry         string
	Strike         string
	OptType        string
	BuyQty         int64
	SellQty        int64
	NetQty         int64 // always buy - sell
	BuyRate        *decimal.Decimal
	SellRate       *decimal.Decimal
	TradeDate      string
}
