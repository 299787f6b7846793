package numeral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal(t *testing.T) {
	v, err := Decimal("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestDecimalWithLeadingZeros(t *testing.T) {
	v, err := Decimal("007")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestOctal(t *testing.T) {
	v, err := Octal("17")
	require.NoError(t, err)
	assert.Equal(t, int64(15), v)
}

func TestOctalRejectsBadDigit(t *testing.T) {
	_, err := Octal("18")
	assert.Error(t, err)
}

func TestHex(t *testing.T) {
	v, err := Hex("FF")
	require.NoError(t, err)
	assert.Equal(t, int64(255), v)
}

func TestHexLowercaseAccepted(t *testing.T) {
	v, err := Hex("ff")
	require.NoError(t, err)
	assert.Equal(t, int64(255), v)
}

func TestRoman(t *testing.T) {
	assert.Equal(t, "mcmxcix", Roman(1999))
	assert.Equal(t, "iv", Roman(4))
	assert.Equal(t, "", Roman(0))
	assert.Equal(t, "", Roman(-5))
}

func TestParseSignedDigitsAccumulatesSign(t *testing.T) {
	sign, digits, err := ParseSignedDigits("- - -5")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), sign)
	assert.Equal(t, "5", digits)
}
