package loader

import (
	"github.com/shopspring/decimal"

	"trading-backoffice/internal/models"
	"trading-backoffice/internal/store"
)

// NetConflictKey is the upsert conflict key for the snapshot table.
var NetConflictKey = []string{
	"broker_id",
	"strategy",
	"sheet",
	"exchange",
	"instrument_type",
	"symbol",
	"expiry",
	"strike",
	"opt_type",
	"carry_date",
}

// nullableString maps an empty field to SQL NULL.
func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// nullableStrike maps an empty strike to NULL and a present one to its
// decimal value. Snapshot rows only: their strike text passed the numeric
// checks, so the parse cannot fail here. Execution rows carry strike as
// supplied and use nullableString instead.
func nullableStrike(v string) interface{} {
	if v == "" {
		return nil
	}
	d, _ := decimal.NewFromString(v)
	return d
}

// nullableRate maps an absent rate to NULL.
func nullableRate(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

// netPositionRecords converts merged snapshot rows into store records.
func netPositionRecords(positions []models.NetPosition) []store.Record {
	records := make([]store.Record, 0, len(positions))
	for _, p := range positions {
		records = append(records, store.Record{
			"broker_id":       p.BrokerID,
			"sheet":           p.Sheet,
			"strategy":        p.Strategy,
			"exchange":        p.Exchange,
			"instrument_type": p.InstrumentType,
			"symbol":          p.Symbol,
			"expiry":          nullableString(p.Expiry),
			"strike":          nullableStrike(p.Strike),
			"opt_type":        nullableString(p.OptType),
			"net_qty":         p.NetQty,
			"avg_price":       p.AvgPrice,
			"carry_date":      p.CarryDate,
		})
	}
	return records
}

// intradayTradeRecords converts execution rows into store records. The row
// set is unmerged and append-only.
func intradayTradeRecords(trades []models.IntradayTrade) []store.Record {
	records := make([]store.Record, 0, len(trades))
	for _, t := range trades {
		records = append(records, store.Record{
			"broker_id":       t.BrokerID,
			"sheet":           t.Sheet,
			"strategy":        t.Strategy,
			"exchange":        t.Exchange,
			"instrument_type": t.InstrumentType,
			"symbol":          t.Symbol,
			"expiry":          nullableString(t.Expiry),
			"strike":          nullableString(t.Strike),
			"opt_type":        nullableString(t.OptType),
			"buy_qty":         t.BuyQty,
			"buy_rate":        nullableRate(t.BuyRate),
			"sell_qty":        t.SellQty,
			"sell_rate":       nullableRate(t.SellRate),
			"net_qty":         t.NetQty,
			"trade_date":      t.TradeDate,
		})
	}
	return records
}
