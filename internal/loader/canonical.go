package loader

import (
	"sort"

	errs "trading-backoffice/internal/errors"
	"trading-backoffice/internal/models"
)

// eqAliases are the broker spellings of a cash equity position.
var eqAliases = map[string]bool{
	"EQ":     true,
	"EQUITY": true,
	"CASH":   true,
}

// bseIndexes maps each canonical BSE index name to the broker aliases seen
// in the Symbol column. Ordered so canonicalization is deterministic.
var bseIndexes = []struct {
	canonical string
	aliases   map[string]bool
}{
	{"SENSEX", map[string]bool{"BSX": true, "BSE": true, "BSXOPT": true, "SENSEX": true}},
	{"BANKEX", map[string]bool{"BKX": true, "BKXOPT": true, "BANKEX": true}},
}

// Instrument aliases that resolve to the index option / future codes.
var (
	indexOptionAliases = map[string]bool{"IO": true, "OPT": true, "OPTIDX": true}
	indexFutureAliases = map[string]bool{"FUT": true, "FUTIDX": true}
)

// canonicalizeBSEIndexes rewrites BSE index products in place: alias
// symbols become the canonical index name and the instrument collapses to
// OPTIDX or FUTIDX. In strict mode a matched row with any other instrument
// is a violation; violations are accumulated across both indexes and
// reported together.
func canonicalizeBSEIndexes(t *Table, strict bool) error {
	badSet := make(map[string]bool)

	for _, idx := range bseIndexes {
		for _, row := range t.Rows {
			if row["Exchange"] != string(models.BSE) || !idx.aliases[row["Symbol"]] {
				continue
			}
			row["Symbol"] = idx.canonical

			inst := row["Instrument"]
			switch {
			case indexOptionAliases[inst]:
				row["Instrument"] = string(models.InstrumentOPTIDX)
			case indexFutureAliases[inst]:
				row["Instrument"] = string(models.InstrumentFUTIDX)
			case strict:
				badSet[inst] = true
			}
		}
	}

	if len(badSet) > 0 {
		bad := make([]string, 0, len(badSet))
		for v := range badSet {
			bad = append(bad, v)
		}
		sort.Strings(bad)
		return errs.NewInvalidIndexInstrumentError(bad)
	}
	return nil
}

// canonicalizeEquities rewrites equity-alias rows to instrument EQ and
// clears their contract fields. In the snapshot pipeline equities are also
// forced onto the PORTFOLIO sheet, and afterwards every instrument must be
// in the allowed set.
func canonicalizeEquities(t *Table, snapshot bool) error {
	for _, row := range t.Rows {
		if !eqAliases[row["Instrument"]] {
			continue
		}
		row["Instrument"] = string(models.InstrumentEQ)
		if snapshot {
			row["Sheet"] = "PORTFOLIO"
		}
		row["Expiry"] = ""
		row["Strike"] = ""
		row["Opt_Type"] = ""
	}

	if !snapshot {
		return nil
	}

	badSet := make(map[string]bool)
	for _, row := range t.Rows {
		if v := row["Instrument"]; !models.IsAllowedInstrument(v) {
			badSet[v] = true
		}
	}
	if len(badSet) > 0 {
		bad := make([]string, 0, len(badSet))
		for v := range badSet {
			bad = append(bad, v)
		}
		sort.Strings(bad)
		return errs.NewUnknownInstrumentError(bad)
	}
	return nil
}
