package loader

import (
	"context"

	"github.com/rs/zerolog"

	errs "trading-backoffice/internal/errors"
	"trading-backoffice/internal/logging"
	"trading-backoffice/internal/store"
)

// netRequiredColumns is the exact header set of a snapshot file.
var netRequiredColumns = []string{
	"Broker_Id",
	"Sheet",
	"Strategy",
	"Exchange",
	"Instrument",
	"Symbol",
	"Expiry",
	"Strike",
	"Opt_Type",
	"Net_Qty",
	"Avg_Price",
	"Carry_Date",
}

// NetPositionLoader loads day-0 / snapshot net position files.
//
// Strict rules: the entire file passes or fails, one row per business key
// after merge (zero-net groups excepted), and the write is an upsert on the
// business key.
type NetPositionLoader struct {
	store  store.Store
	table  string
	logger zerolog.Logger
}

// NewNetPositionLoader creates a snapshot loader writing to table.
func NewNetPositionLoader(st store.Store, table string, logger zerolog.Logger) *NetPositionLoader {
	return &NetPositionLoader{
		store:  st,
		table:  table,
		logger: logging.WithPipeline(logger, "net_position"),
	}
}

// Load reads, validates and upserts one snapshot CSV. Any validation error
// aborts the load before anything reaches the store.
func (l *NetPositionLoader) Load(ctx context.Context, csvPath string) error {
	log := logging.WithFile(l.logger, csvPath)
	log.Info().Msg("file received")

	t, err := ReadCSV(csvPath)
	if err != nil {
		return err
	}
	if err := t.RequireColumns(netRequiredColumns); err != nil {
		return err
	}
	t.Normalize()

	log.Info().Msg("validating file structure and formats")
	carryDate, err := validateFileDate(t, "Carry_Date")
	if err != nil {
		return err
	}
	if err := validateExchanges(t); err != nil {
		return err
	}
	if err := validateExpiryRules(t); err != nil {
		return err
	}

	log.Info().Msg("normalizing symbols and instruments")
	if err := canonicalizeBSEIndexes(t, true); err != nil {
		return err
	}
	if err := canonicalizeEquities(t, true); err != nil {
		return err
	}

	log.Info().Msg("validating contract and numeric fields")
	for i, row := range t.Rows {
		if err := validateContract(row, i+1); err != nil {
			return err
		}
	}
	positions, err := buildNetPositions(t, carryDate)
	if err != nil {
		return err
	}

	log.Info().Msg("resolving duplicate positions using snapshot rules")
	merged, groups := mergeSnapshots(positions)
	if groups > 0 {
		log.Info().Int("groups", groups).Msg("merged duplicate snapshot groups using VWAP")
	} else {
		log.Info().Msg("no duplicate positions detected")
	}

	if err := validateFinalShape(merged); err != nil {
		return err
	}

	records := netPositionRecords(merged)
	log.Info().
		Int("rows", len(records)).
		Str("carry_date", carryDate).
		Msg("upserting snapshot")

	if err := l.store.Upsert(ctx, l.table, records, NetConflictKey); err != nil {
		return errs.NewStoreWriteError(l.table, "upsert", err)
	}

	log.Info().Str("carry_date", carryDate).Msg("net position snapshot loaded")
	return nil
}
