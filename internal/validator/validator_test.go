package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNationalID_Valid(t *testing.T) {
	assert.NoError(t, NationalID("V1234567"))
	assert.NoError(t, NationalID("E12345"))
	assert.NoError(t, NationalID("J123456789"))
	assert.NoError(t, NationalID("G987654321"))
}

func TestNationalID_Empty(t *testing.T) {
	assert.Error(t, NationalID(""))
	assert.Error(t, NationalID("   "))
}

func TestNationalID_BadPrefix(t *testing.T) {
	err := NationalID("X123456")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "V, E, J or G")
}

func TestNationalID_NonDigits(t *testing.T) {
	// Normalization strips punctuation first, so the rejection needs a real
	// letter in the numeric body.
	assert.Error(t, NationalID("V12A4567"))
}

func TestNationalID_NaturalPersonLength(t *testing.T) {
	assert.Error(t, NationalID("V123"))         // too short
	assert.Error(t, NationalID("V12345678901")) // too long
	assert.NoError(t, NationalID("V1234"))
	assert.NoError(t, NationalID("V1234567890"))
}

func TestNationalID_LegalEntityLength(t *testing.T) {
	assert.Error(t, NationalID("J12345")) // needs at least 9 digits
	assert.NoError(t, NationalID("J123456789"))
}

func TestNationalID_NormalizesBeforeValidating(t *testing.T) {
	assert.NoError(t, NationalID("v-12.34.56.78"))
	assert.Equal(t, "V12345678", FormatNationalID("v-12.34.56.78"))
}

func TestFormatNationalID(t *testing.T) {
	assert.Equal(t, "V1234567", FormatNationalID(" v 1234567 "))
	assert.Equal(t, "", FormatNationalID("---"))
}

func TestPhone_Valid(t *testing.T) {
	assert.NoError(t, Phone("0412-1234567"))
	assert.NoError(t, Phone("0212-7654321"))
}

func TestPhone_Invalid(t *testing.T) {
	assert.Error(t, Phone(""))
	assert.Error(t, Phone("0412-12345"))    // wrong digit count
	assert.Error(t, Phone("0999-1234567"))  // unknown prefix
	assert.Error(t, Phone("04121234567"))   // missing separator
	assert.Error(t, Phone("0412-12345678")) // too many digits
}
