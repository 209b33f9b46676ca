package loader

import (
	"regexp"
	"sort"
	"strings"
	"time"

	errs "trading-backoffice/internal/errors"
	"trading-backoffice/internal/models"
)

// dateRegex is the shape check only; time.Parse catches impossible calendar
// dates like 31-Feb-2024 that still match the pattern.
var dateRegex = regexp.MustCompile(`^\d{2}-[A-Za-z]{3}-\d{4}$`)

// isValidDate reports whether v is a real DD-MMM-YYYY calendar date.
func isValidDate(v string) bool {
	if !dateRegex.MatchString(v) {
		return false
	}
	// The month abbreviation arrives in any case; time.Parse wants Jan.
	norm := v[:3] + strings.ToUpper(v[3:4]) + strings.ToLower(v[4:6]) + v[6:]
	_, err := time.Parse("02-Jan-2006", norm)
	return err == nil
}

// validateFileDate checks that col holds exactly one distinct value across
// the file and that the value is a valid date. Returns the value.
func validateFileDate(t *Table, col string) (string, error) {
	values := t.distinct(col)
	if len(values) != 1 {
		return "", errs.NewDateUniquenessError(col, values)
	}

	v := values[0]
	if !isValidDate(v) {
		return "", errs.NewDateFormatError(col, v, 0)
	}
	return v, nil
}

// validateExchanges checks every Exchange value against the allowed set.
func validateExchanges(t *Table) error {
	allowed := make(map[string]bool, len(models.AllowedExchanges))
	allowedNames := make([]string, len(models.AllowedExchanges))
	for i, ex := range models.AllowedExchanges {
		allowed[string(ex)] = true
		allowedNames[i] = string(ex)
	}

	badSet := make(map[string]bool)
	for _, row := range t.Rows {
		if v := row["Exchange"]; !allowed[v] {
			badSet[v] = true
		}
	}
	if len(badSet) == 0 {
		return nil
	}

	bad := make([]string, 0, len(badSet))
	for v := range badSet {
		bad = append(bad, v)
	}
	sort.Strings(bad)
	return errs.NewInvalidExchangeError(bad, allowedNames)
}

// validateExpiryRules enforces the snapshot pipeline's per-row expiry rules:
// equities carry no expiry, everything else carries a valid one.
func validateExpiryRules(t *Table) error {
	for i, row := range t.Rows {
		rowNum := i + 1
		expiry := row["Expiry"]

		if eqAliases[row["Instrument"]] {
			if !isNullString(expiry) {
				return errs.NewExpiryFormatError(rowNum, expiry, "must be empty for equities")
			}
			continue
		}

		if isNullString(expiry) {
			return errs.NewMissingExpiryError(rowNum)
		}
		if !isValidDate(expiry) {
			return errs.NewExpiryFormatError(rowNum, expiry, "expected DD-MMM-YYYY")
		}
	}
	return nil
}
