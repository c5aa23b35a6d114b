/*
extract_test.go - Unit tests for balance notification parsing

Tests for:
- Amount extraction with both decimal separators
- Case insensitivity and separator variants after the marker
- Totality: junk text yields (zero, false), never a panic
*/
package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// EXTRACTION TESTS
// =============================================================================

func TestExtract_CommaSeparator_Normalized(t *testing.T) {
	// GIVEN: A notification using the comma decimal separator
	// WHEN: Extracting the amount
	// THEN: The comma is treated as a decimal point

	got, ok := Extract("Saldo on: 12,50€")

	assert.True(t, ok)
	assert.Equal(t, "12.50", got.StringFixed(2))
}

func TestExtract_DotSeparator(t *testing.T) {
	got, ok := Extract("saldo on 7.95 €")

	assert.True(t, ok)
	assert.Equal(t, "7.95", got.StringFixed(2))
}

func TestExtract_WholeAmount(t *testing.T) {
	got, ok := Extract("Hyva asiakas, saldo on 20€. Kiitos!")

	assert.True(t, ok)
	assert.Equal(t, "20.00", got.StringFixed(2))
}

func TestExtract_CaseInsensitive(t *testing.T) {
	got, ok := Extract("SALDO ON: 3,10€")

	assert.True(t, ok)
	assert.Equal(t, "3.10", got.StringFixed(2))
}

func TestExtract_NoPattern_ReturnsFalse(t *testing.T) {
	cases := []string{
		"",
		"Your package has been delivered",
		"saldo",
		"saldo on friday we meet", // marker present, no amount with currency
		"12,50€",                  // amount without the marker
	}

	for _, text := range cases {
		_, ok := Extract(text)
		assert.False(t, ok, "expected no extraction from %q", text)
	}
}

func TestExtract_AmountWithoutCurrencySymbol_ReturnsFalse(t *testing.T) {
	_, ok := Extract("saldo on 12,50")

	assert.False(t, ok)
}

// =============================================================================
// NOTIFICATION DETECTION TESTS
// =============================================================================

func TestIsNotification_LooserThanExtract(t *testing.T) {
	// GIVEN: A message that matches the notification test but carries a
	//        malformed amount
	// THEN: IsNotification says yes while Extract says no; callers treat
	//       this combination as inconsistent data

	text := "Saldo on tarkistettu"

	assert.True(t, IsNotification(text))
	_, ok := Extract(text)
	assert.False(t, ok)
}

func TestIsNotification_PlainText(t *testing.T) {
	assert.True(t, IsNotification("saldo on 5€"))
	assert.True(t, IsNotification("SALDO ON 5€"))
	assert.False(t, IsNotification("low balance warning"))
}
