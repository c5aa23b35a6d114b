/*
Package balance implements the prepaid-balance workflow: recognizing the
carrier's balance notification in the SMS inbox, parsing the amount,
tracking spend against the previous reading, and persisting results.

KEY CONCEPTS IN THIS FILE (extract.go):
  - IsNotification: "does this SMS look like a balance notification?"
  - Extract: pull the numeric amount out of the notification text

THE PATTERN:
  The carrier writes the balance as free text, e.g. "Saldo on: 12,50€".
  The match is case-insensitive; the amount may use either "." or ","
  as the decimal separator, and a comma is normalized to a point.

  Note that IsNotification is deliberately looser than Extract: a message
  can look like a notification yet fail numeric extraction. Callers treat
  that combination as inconsistent data, not as "no notification".

DESIGN PRINCIPLES:
  1. Total functions: never panic, never error; absence is (zero, false)
  2. Precision: amounts are decimal.Decimal, never float64

SEE ALSO:
  - poller.go: Uses IsNotification to find the message
  - tracker.go: Uses Extract and treats mismatch as inconsistent data
*/
package balance

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// notificationMarker is the phrase that identifies a balance notification.
const notificationMarker = "saldo on"

// amountPattern captures the amount out of e.g. "Saldo on: 12,50€".
var amountPattern = regexp.MustCompile(`(?i)saldo on[:\s]*([\d.,]+)\s*€`)

// IsNotification reports whether text looks like a carrier balance
// notification. This is a substring test only; the amount may still fail
// to parse.
func IsNotification(text string) bool {
	return strings.Contains(strings.ToLower(text), notificationMarker)
}

// Extract parses the balance amount out of a notification text. The second
// return value is false when no well-formed amount is present.
func Extract(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Decimal{}, false
	}

	raw := strings.ReplaceAll(m[1], ",", ".")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
