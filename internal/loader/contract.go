package loader

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	errs "trading-backoffice/internal/errors"
	"trading-backoffice/internal/models"
)

// validateContract enforces contract-field completeness for one row by
// instrument family. Equities must carry no contract fields, futures need
// an expiry, options need expiry, strike and option type.
func validateContract(row Row, rowNum int) error {
	inst := row["Instrument"]

	switch {
	case inst == string(models.InstrumentEQ):
		var present []string
		if !isNullString(row["Expiry"]) {
			present = append(present, "no expiry")
		}
		if !isNullString(row["Strike"]) {
			present = append(present, "no strike")
		}
		if !isNullString(row["Opt_Type"]) {
			present = append(present, "no opt_type")
		}
		if len(present) > 0 {
			return errs.NewContractIncompleteError(rowNum, inst, present)
		}

	case strings.HasPrefix(inst, "FUT"):
		if isNullString(row["Expiry"]) {
			return errs.NewContractIncompleteError(rowNum, inst, []string{"expiry"})
		}

	case strings.HasPrefix(inst, "OPT"):
		var missing []string
		if isNullString(row["Expiry"]) {
			missing = append(missing, "expiry")
		}
		if isNullString(row["Strike"]) {
			missing = append(missing, "strike")
		}
		if isNullString(row["Opt_Type"]) {
			missing = append(missing, "opt_type")
		}
		if len(missing) > 0 {
			return errs.NewContractIncompleteError(rowNum, inst, missing)
		}
	}
	return nil
}

// hasAtMost3Decimals reports whether d carries no more than 3 decimal
// places of precision.
func hasAtMost3Decimals(d decimal.Decimal) bool {
	return d.Equal(d.Round(3))
}

// buildNetPositions parses the numeric fields of every row and produces the
// typed snapshot rows. The table must already be canonicalized.
func buildNetPositions(t *Table, carryDate string) ([]models.NetPosition, error) {
	out := make([]models.NetPosition, 0, len(t.Rows))

	for i, row := range t.Rows {
		rowNum := i + 1

		qty, err := strconv.ParseInt(row["Net_Qty"], 10, 64)
		if err != nil {
			return nil, errs.NewNumericFormatError(rowNum, "Net_Qty", row["Net_Qty"])
		}

		price, err := decimal.NewFromString(row["Avg_Price"])
		if err != nil || price.IsNegative() || !hasAtMost3Decimals(price) {
			return nil, errs.NewPriceInvalidError(rowNum, row["Avg_Price"])
		}

		strike := row["Strike"]
		if isNullString(strike) {
			strike = ""
		} else {
			d, err := decimal.NewFromString(strike)
			if err != nil || !hasAtMost3Decimals(d) {
				return nil, errs.NewStrikeInvalidError(rowNum, strike)
			}
		}

		expiry := row["Expiry"]
		if isNullString(expiry) {
			expiry = ""
		}
		optType := row["Opt_Type"]
		if isNullString(optType) {
			optType = ""
		}

		out = append(out, models.NetPosition{
			BrokerID:       row["Broker_Id"],
			Sheet:          row["Sheet"],
			Strategy:       row["Strategy"],
			Exchange:       row["Exchange"],
			InstrumentType: row["Instrument"],
			Symbol:         row["Symbol"],
			Expiry:         expiry,
			Strike:         strike,
			OptType:        optType,
			NetQty:         qty,
			AvgPrice:       price,
			CarryDate:      carryDate,
		})
	}
	return out, nil
}

// validateFinalShape re-checks the contract invariants on the typed rows.
// The merge inherits fields from the first row of each group, so this is
// the last gate before records are emitted.
func validateFinalShape(positions []models.NetPosition) error {
	for i, p := range positions {
		rowNum := i + 1

		switch {
		case p.InstrumentType == string(models.InstrumentEQ):
			var present []string
			if p.Expiry != "" {
				present = append(present, "no expiry")
			}
			if p.Strike != "" {
				present = append(present, "no strike")
			}
			if p.OptType != "" {
				present = append(present, "no opt_type")
			}
			if len(present) > 0 {
				return errs.NewContractIncompleteError(rowNum, p.InstrumentType, present)
			}

		case models.IsFutureInstrument(p.InstrumentType):
			if p.Expiry == "" {
				return errs.NewContractIncompleteError(rowNum, p.InstrumentType, []string{"expiry"})
			}

		case models.IsOptionInstrument(p.InstrumentType):
			var missing []string
			if p.Expiry == "" {
				missing = append(missing, "expiry")
			}
			if p.Strike == "" {
				missing = append(missing, "strike")
			}
			if p.OptType == "" {
				missing = append(missing, "opt_type")
			}
			if len(missing) > 0 {
				return errs.NewContractIncompleteError(rowNum, p.InstrumentType, missing)
			}
		}
	}
	return nil
}

// parseQty parses an execution quantity: null tokens mean zero, anything
// else parses as a float and truncates to an integer. Truncation that
// discards a fractional part is logged, not rejected.
func parseQty(v, field string, rowNum int, log zerolog.Logger) (int64, error) {
	if isNullString(v) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.NewNumericFormatError(rowNum, field, v)
	}
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errs.NewNumericFormatError(rowNum, field, v)
	}
	n := int64(f)
	if float64(n) != f {
		log.Warn().
			Int("row", rowNum).
			Str("field", field).
			Str("value", v).
			Msg("fractional quantity truncated")
	}
	return n, nil
}

// parseRate parses an execution rate: null tokens mean no rate, anything
// else must be a non-negative number.
func parseRate(v, field string, rowNum int) (*decimal.Decimal, error) {
	if isNullString(v) {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, errs.NewNumericFormatError(rowNum, field, v)
	}
	if d.IsNegative() {
		return nil, errs.NewNegativeRateError(rowNum, field, v)
	}
	return &d, nil
}

// buildIntradayTrades validates quantities and rates on every row and
// produces the typed execution rows.
func buildIntradayTrades(t *Table, tradeDate string, log zerolog.Logger) ([]models.IntradayTrade, error) {
	out := make([]models.IntradayTrade, 0, len(t.Rows))

	for i, row := range t.Rows {
		rowNum := i + 1

		buy, err := parseQty(row["Buy_Qty"], "Buy_Qty", rowNum, log)
		if err != nil {
			return nil, err
		}
		sell, err := parseQty(row["Sell_Qty"], "Sell_Qty", rowNum, log)
		if err != nil {
			return nil, err
		}
		net, err := parseQty(row["Net_Qty"], "Net_Qty", rowNum, log)
		if err != nil {
			return nil, err
		}

		if buy == 0 && sell == 0 {
			return nil, errs.NewEmptyExecutionError(rowNum)
		}
		if net != buy-sell {
			return nil, errs.NewQuantityMismatchError(rowNum, net, buy, sell)
		}

		buyRate, err := parseRate(row["Buy_Rate"], "Buy_Rate", rowNum)
		if err != nil {
			return nil, err
		}
		sellRate, err := parseRate(row["Sell_Rate"], "Sell_Rate", rowNum)
		if err != nil {
			return nil, err
		}

		expiry := row["Expiry"]
		if isNullString(expiry) {
			expiry = ""
		}
		strike := row["Strike"]
		if isNullString(strike) {
			strike = ""
		}
		optType := row["Opt_Type"]
		if isNullString(optType) {
			optType = ""
		}

		out = append(out, models.IntradayTrade{
			BrokerID:       row["Broker_Id"],
			Sheet:          row["Sheet"],
			Strategy:       row["Strategy"],
			Exchange:       row["Exchange"],
			InstrumentType: row["Instrument"],
			Symbol:         row["Symbol"],
			Expiry:         expiry,
			Strike:         strike,
			OptType:        optType,
			BuyQty:         buy,
			SellQty:        sell,
			NetQty:         net,
			BuyRate:        buyRate,
			SellRate:       sellRate,
			TradeDate:      tradeDate,
		})
	}
	return out, nil
}
