// Package models provides domain models for the back-office loader.
package models

// Exchange represents a stock exchange.
type Exchange string

const (
	NSE Exchange = "NSE"
	BSE Exchange = "BSE"
)

// AllowedExchanges is the set of exchanges accepted in broker files.
var AllowedExchanges = []Exchange{NSE, BSE}

// Instrument represents a canonical instrument type code.
type Instrument string

const (
	InstrumentEQ     Instrument = "EQ"
	InstrumentFUT    Instrument = "FUT"
	InstrumentFUTIDX Instrument = "FUTIDX"
	InstrumentFUTSTK Instrument = "FUTSTK"
	InstrumentOPT    Instrument = "OPT"
	InstrumentOPTIDX Instrument = "OPTIDX"
	InstrumentOPTSTK Instrument = "OPTSTK"
)

// AllowedInstruments is the set of instrument codes a canonical row may carry.
var AllowedInstruments = []Instrument{
	InstrumentEQ,
	InstrumentFUT,
	InstrumentFUTIDX,
	InstrumentFUTSTK,
	InstrumentOPT,
	InstrumentOPTIDX,
	InstrumentOPTSTK,
}

// IsAllowedInstrument reports whether code is a canonical instrument type.
func IsAllowedInstrument(code string) bool {
	for _, in := range AllowedInstruments {
		if code == string(in) {
			return true
		}
	}
	return false
}

// IsFutureInstrument reports whether code is in the futures family.
func IsFutureInstrument(code string) bool {
	switch Instrument(code) {
	case InstrumentFUT, InstrumentFUTIDX, InstrumentFUTSTK:
		return true
	}
	return false
}

// IsOptionInstrument reports whether code is in the options family.
func IsOptionInstrument(code string) bool {
	switch Instrument(code) {
	case InstrumentOPT, InstrumentOPTIDX, InstrumentOPTSTK:
		return true
	}
	return false
}
