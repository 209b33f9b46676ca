package loader

import (
	"context"

	"github.com/rs/zerolog"

	errs "trading-backoffice/internal/errors"
	"trading-backoffice/internal/logging"
	"trading-backoffice/internal/store"
)

// intradayRequiredColumns is the exact header set of an execution file.
var intradayRequiredColumns = []string{
	"Broker_Id",
	"Sheet",
	"Strategy",
	"Exchange",
	"Instrument",
	"Symbol",
	"Expiry",
	"Strike",
	"Opt_Type",
	"Buy_Qty",
	"Buy_Rate",
	"Sell_Qty",
	"Sell_Rate",
	"Net_Qty",
	"Trade_Date",
}

// IntradayLoader loads intraday execution files.
//
// Executions form an immutable, append-only ledger: insert only, no
// business-key dedup, every row a distinct execution.
type IntradayLoader struct {
	store  store.Store
	table  string
	logger zerolog.Logger
}

// NewIntradayLoader creates an execution loader writing to table.
func NewIntradayLoader(st store.Store, table string, logger zerolog.Logger) *IntradayLoader {
	return &IntradayLoader{
		store:  st,
		table:  table,
		logger: logging.WithPipeline(logger, "intraday"),
	}
}

// Load reads, validates and inserts one execution CSV. Any validation error
// aborts the load before anything reaches the store.
func (l *IntradayLoader) Load(ctx context.Context, csvPath string) error {
	log := logging.WithFile(l.logger, csvPath)
	log.Info().Msg("file received")

	t, err := ReadCSV(csvPath)
	if err != nil {
		return err
	}
	if err := t.RequireColumns(intradayRequiredColumns); err != nil {
		return err
	}
	t.Normalize()

	log.Info().Msg("validating file structure and formats")
	tradeDate, err := validateFileDate(t, "Trade_Date")
	if err != nil {
		return err
	}
	if err := validateExchanges(t); err != nil {
		return err
	}

	log.Info().Msg("normalizing symbols and instruments")
	if err := canonicalizeBSEIndexes(t, false); err != nil {
		return err
	}
	if err := canonicalizeEquities(t, false); err != nil {
		return err
	}

	log.Info().Msg("validating contract and numeric fields")
	for i, row := range t.Rows {
		if err := validateContract(row, i+1); err != nil {
			return err
		}
	}
	trades, err := buildIntradayTrades(t, tradeDate, log)
	if err != nil {
		return err
	}

	records := intradayTradeRecords(trades)
	log.Info().
		Int("rows", len(records)).
		Str("trade_date", tradeDate).
		Msg("inserting intraday executions")

	if err := l.store.Insert(ctx, l.table, records); err != nil {
		return errs.NewStoreWriteError(l.table, "insert", err)
	}

	log.Info().Str("trade_date", tradeDate).Msg("intraday trades loaded")
	return nil
}
