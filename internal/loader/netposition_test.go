package loader

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	errs "trading-backoffice/internal/errors"
	"trading-backoffice/internal/store"
)

// fakeStore captures the single batch write a pipeline performs.
type fakeStore struct {
	table       string
	op          string
	records     []store.Record
	conflictKey []string
	err         error
}

func (f *fakeStore) Insert(ctx context.Context, table string, records []store.Record) error {
	f.table, f.op, f.records = table, "insert", records
	return f.err
}

func (f *fakeStore) Upsert(ctx context.Context, table string, records []store.Record, conflictKey []string) error {
	f.table, f.op, f.records, f.conflictKey = table, "upsert", records, conflictKey
	return f.err
}

func (f *fakeStore) Close() error { return nil }

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const netHeader = "Broker_Id,Sheet,Strategy,Exchange,Instrument,Symbol,Expiry,Strike,Opt_Type,Net_Qty,Avg_Price,Carry_Date\n"

func loadNet(t *testing.T, csv string) (*fakeStore, error) {
	t.Helper()
	st := &fakeStore{}
	l := NewNetPositionLoader(st, "net_positions", zerolog.Nop())
	err := l.Load(context.Background(), writeCSV(t, csv))
	return st, err
}

func TestNetPositionLoad_SingleRow(t *testing.T) {
	st, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100.5,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.op != "upsert" || st.table != "net_positions" {
		t.Fatalf("expected upsert into net_positions, got %s into %s", st.op, st.table)
	}
	if !reflect.DeepEqual(st.conflictKey, NetConflictKey) {
		t.Fatalf("conflict key = %v", st.conflictKey)
	}
	if len(st.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(st.records))
	}
	rec := st.records[0]
	if rec["symbol"] != "NIFTY" || rec["instrument_type"] != "FUT" {
		t.Errorf("record = %v", rec)
	}
	if rec["net_qty"] != int64(10) {
		t.Errorf("net_qty = %v", rec["net_qty"])
	}
	if rec["strike"] != nil || rec["opt_type"] != nil {
		t.Errorf("expected null strike and opt_type, got %v / %v", rec["strike"], rec["opt_type"])
	}
}

func TestNetPositionLoad_MergesDuplicatesVWAP(t *testing.T) {
	st, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100,24-Jan-2024\n"+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,5,103,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.records) != 1 {
		t.Fatalf("expected 1 merged record, got %d", len(st.records))
	}
	rec := st.records[0]
	if rec["net_qty"] != int64(15) {
		t.Errorf("net_qty = %v, want 15", rec["net_qty"])
	}
	price := rec["avg_price"].(decimal.Decimal)
	if !price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("avg_price = %s, want 101", price)
	}
}

func TestNetPositionLoad_ZeroSumGroupPreserved(t *testing.T) {
	st, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100,24-Jan-2024\n"+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,-10,105,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.records) != 2 {
		t.Fatalf("expected offsetting rows preserved, got %d records", len(st.records))
	}
}

func TestNetPositionLoad_MissingColumns(t *testing.T) {
	_, err := loadNet(t, "Broker_Id,Sheet,Strategy,Exchange,Instrument,Symbol,Expiry,Strike,Opt_Type,Net_Qty\n"+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10\n")
	var se *errs.SchemaError
	if !errs.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	want := []string{"Avg_Price", "Carry_Date"}
	if !reflect.DeepEqual(se.Missing, want) {
		t.Errorf("missing = %v, want %v", se.Missing, want)
	}
}

func TestNetPositionLoad_CarryDateMustBeSingleValued(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100,24-Jan-2024\n"+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,5,101,25-Jan-2024\n")
	var de *errs.DateUniquenessError
	if !errs.As(err, &de) {
		t.Fatalf("expected DateUniquenessError, got %v", err)
	}
}

func TestNetPositionLoad_ImpossibleCalendarDateRejected(t *testing.T) {
	// Matches the DD-MMM-YYYY shape but is not a real date.
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100,31-Feb-2024\n")
	var de *errs.DateFormatError
	if !errs.As(err, &de) {
		t.Fatalf("expected DateFormatError, got %v", err)
	}
	if de.Column != "Carry_Date" {
		t.Errorf("column = %s", de.Column)
	}
}

func TestNetPositionLoad_InvalidExchange(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,MCX,FUT,GOLD,25-Jan-2024,,,10,100,24-Jan-2024\n")
	var ee *errs.InvalidExchangeError
	if !errs.As(err, &ee) {
		t.Fatalf("expected InvalidExchangeError, got %v", err)
	}
	if !reflect.DeepEqual(ee.Values, []string{"MCX"}) {
		t.Errorf("values = %v", ee.Values)
	}
}

func TestNetPositionLoad_MissingExpiry(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,,,,10,100,24-Jan-2024\n")
	var me *errs.MissingExpiryError
	if !errs.As(err, &me) {
		t.Fatalf("expected MissingExpiryError, got %v", err)
	}
	if me.Row != 1 {
		t.Errorf("row = %d, want 1", me.Row)
	}
}

func TestNetPositionLoad_EquityMustNotHaveExpiry(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,EQUITY,RELIANCE,25-Jan-2024,,,10,100,24-Jan-2024\n")
	var ee *errs.ExpiryFormatError
	if !errs.As(err, &ee) {
		t.Fatalf("expected ExpiryFormatError, got %v", err)
	}
}

func TestNetPositionLoad_BSEAliasCanonicalization(t *testing.T) {
	st, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,BSE,OPT,BSX,25-Jan-2024,72000,CE,10,150.25,24-Jan-2024\n"+
		"B1,F&O,ALPHA,BSE,FUT,BKX,25-Jan-2024,,,5,51000,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.records[0]["symbol"]; got != "SENSEX" {
		t.Errorf("symbol = %v, want SENSEX", got)
	}
	if got := st.records[0]["instrument_type"]; got != "OPTIDX" {
		t.Errorf("instrument_type = %v, want OPTIDX", got)
	}
	if got := st.records[1]["symbol"]; got != "BANKEX" {
		t.Errorf("symbol = %v, want BANKEX", got)
	}
	if got := st.records[1]["instrument_type"]; got != "FUTIDX" {
		t.Errorf("instrument_type = %v, want FUTIDX", got)
	}
}

func TestNetPositionLoad_BadIndexInstrumentRejected(t *testing.T) {
	// EQ against a BSE index symbol cannot resolve to OPTIDX/FUTIDX.
	// Violations across both alias groups are reported together.
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,BSE,XX,BSX,25-Jan-2024,,,10,100,24-Jan-2024\n"+
		"B1,F&O,ALPHA,BSE,YY,BKX,25-Jan-2024,,,5,100,24-Jan-2024\n")
	var ie *errs.InvalidIndexInstrumentError
	if !errs.As(err, &ie) {
		t.Fatalf("expected InvalidIndexInstrumentError, got %v", err)
	}
	if !reflect.DeepEqual(ie.Values, []string{"XX", "YY"}) {
		t.Errorf("values = %v", ie.Values)
	}
}

func TestNetPositionLoad_EquityForcedToPortfolio(t *testing.T) {
	st, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,CASH,RELIANCE,,,,10,2500.5,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := st.records[0]
	if rec["sheet"] != "PORTFOLIO" {
		t.Errorf("sheet = %v, want PORTFOLIO", rec["sheet"])
	}
	if rec["instrument_type"] != "EQ" {
		t.Errorf("instrument_type = %v, want EQ", rec["instrument_type"])
	}
	if rec["expiry"] != nil || rec["strike"] != nil || rec["opt_type"] != nil {
		t.Errorf("contract fields not cleared: %v", rec)
	}
}

func TestNetPositionLoad_UnknownInstrument(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,WARRANT,NIFTY,25-Jan-2024,,,10,100,24-Jan-2024\n")
	var ue *errs.UnknownInstrumentError
	if !errs.As(err, &ue) {
		t.Fatalf("expected UnknownInstrumentError, got %v", err)
	}
	if !reflect.DeepEqual(ue.Values, []string{"WARRANT"}) {
		t.Errorf("values = %v", ue.Values)
	}
}

func TestNetPositionLoad_OptionMissingStrike(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,OPTIDX,NIFTY,25-Jan-2024,,CE,10,100,24-Jan-2024\n")
	var ce *errs.ContractIncompleteError
	if !errs.As(err, &ce) {
		t.Fatalf("expected ContractIncompleteError, got %v", err)
	}
	if ce.Row != 1 || !reflect.DeepEqual(ce.Missing, []string{"strike"}) {
		t.Errorf("row %d missing %v", ce.Row, ce.Missing)
	}
}

func TestNetPositionLoad_NetQtyMustBeInteger(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10.5,100,24-Jan-2024\n")
	var ne *errs.NumericFormatError
	if !errs.As(err, &ne) {
		t.Fatalf("expected NumericFormatError, got %v", err)
	}
	if ne.Field != "Net_Qty" {
		t.Errorf("field = %s", ne.Field)
	}
}

func TestNetPositionLoad_PriceInvalid(t *testing.T) {
	cases := []struct {
		name  string
		price string
	}{
		{"negative", "-1.5"},
		{"four decimals", "100.1234"},
		{"not a number", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadNet(t, netHeader+
				"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,"+tc.price+",24-Jan-2024\n")
			var pe *errs.PriceInvalidError
			if !errs.As(err, &pe) {
				t.Fatalf("expected PriceInvalidError, got %v", err)
			}
		})
	}
}

func TestNetPositionLoad_StrikeInvalid(t *testing.T) {
	_, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,OPTIDX,NIFTY,25-Jan-2024,72000.1234,CE,10,100,24-Jan-2024\n")
	var se *errs.StrikeInvalidError
	if !errs.As(err, &se) {
		t.Fatalf("expected StrikeInvalidError, got %v", err)
	}
}

func TestNetPositionLoad_StoreErrorIsFatal(t *testing.T) {
	st := &fakeStore{err: errs.Wrap(os.ErrDeadlineExceeded, "connection lost")}
	l := NewNetPositionLoader(st, "net_positions", zerolog.Nop())
	err := l.Load(context.Background(), writeCSV(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100,24-Jan-2024\n"))
	var we *errs.StoreWriteError
	if !errs.As(err, &we) {
		t.Fatalf("expected StoreWriteError, got %v", err)
	}
	if we.Op != "upsert" {
		t.Errorf("op = %s", we.Op)
	}
}

func TestNetPositionLoad_RecordCountEqualsDistinctKeys(t *testing.T) {
	// Three distinct keys, one of them duplicated: four rows in, three out.
	st, err := loadNet(t, netHeader+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,10,100,24-Jan-2024\n"+
		"B1,F&O,ALPHA,NSE,FUT,NIFTY,25-Jan-2024,,,5,103,24-Jan-2024\n"+
		"B1,F&O,ALPHA,NSE,FUT,BANKNIFTY,25-Jan-2024,,,7,200,24-Jan-2024\n"+
		"B1,F&O,BETA,NSE,FUT,NIFTY,25-Jan-2024,,,3,99,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(st.records))
	}
}

func TestNetPositionLoad_WhitespaceAndCaseNormalized(t *testing.T) {
	st, err := loadNet(t, netHeader+
		" b1 , f&o ,alpha, nse ,fut, nifty ,25-Jan-2024,,,10,100,24-Jan-2024\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := st.records[0]
	if rec["broker_id"] != "B1" || rec["exchange"] != "NSE" || rec["symbol"] != "NIFTY" {
		t.Errorf("record = %v", rec)
	}
}
