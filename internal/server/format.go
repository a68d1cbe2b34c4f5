package server

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.English)

// FormatUSD renders a predicted price as currency with thousands
// separators, e.g. $510,787.41.
func FormatUSD(v float64) string {
	return usd.Sprintf("$%.2f", v)
}
