package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAllMatchesDedupPreservesOrder(t *testing.T) {
	lib := Default()
	got := lib.ExtractAllMatches("Units: SN123456, SN123456, SN654321", lib.SerialNumber, false)
	assert.Equal(t, []string{"SN123456", "SN654321"}, got)
}

func TestExtractAllMatchesPatternOrderThenDocumentOrder(t *testing.T) {
	lib := Default()
	set := Set{
		p("second_word", `\b(beta|gamma)\b`),
		p("first_word", `\b(alpha)\b`),
	}
	got := lib.ExtractAllMatches("alpha gamma beta alpha gamma", set, false)
	assert.Equal(t, []string{"gamma", "beta", "alpha"}, got)
}

func TestExtractAllMatchesEmptyText(t *testing.T) {
	lib := Default()
	got := lib.ExtractAllMatches("", lib.Phone, false)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractFieldFirstPatternWins(t *testing.T) {
	lib := Default()
	text := "PO #: PO-778812 ... Order #: 901234"
	got, ok := lib.ExtractField(text, lib.OrderNumber, false)
	require.True(t, ok)
	assert.Equal(t, "901234", got)
}

func TestExtractFieldFallsThroughToAlternative(t *testing.T) {
	lib := Default()
	got, ok := lib.ExtractField("Client Order: AB-445566", lib.OrderNumber, false)
	require.True(t, ok)
	assert.Equal(t, "AB-445566", got)
}

func TestExtractFieldNoMatch(t *testing.T) {
	lib := Default()
	got, ok := lib.ExtractField("nothing to see here", lib.OrderNumber, false)
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestExtractFieldDiscardsBlankCapture(t *testing.T) {
	lib := Default()
	set := Set{
		p("optional_group", `label:(\s*)`),
		p("real", `value=(\w+)`),
	}
	got, ok := lib.ExtractField("label:   value=42", set, false)
	require.True(t, ok)
	assert.Equal(t, "42", got)
}

func TestExtractFieldLegalFilterContinuesToNextPattern(t *testing.T) {
	lib := Default()
	text := "Notes: Received, subject to individually determined rates or contracts that have been agreed upon\n" +
		"liftgate required"

	got, ok := lib.ExtractField(text, lib.SpecialInstructions, true)
	require.True(t, ok)
	assert.Equal(t, "liftgate", got)

	unfiltered, ok := lib.ExtractField(text, lib.SpecialInstructions, false)
	require.True(t, ok)
	assert.Contains(t, unfiltered, "subject to individually")
}

func TestExtractAllMatchesLegalFilter(t *testing.T) {
	lib := Default()
	text := "Notes: Received, subject to individually determined rates\nInstructions: call the dock manager first\nliftgate"
	got := lib.ExtractAllMatches(text, lib.SpecialInstructions, true)
	assert.Equal(t, []string{"call the dock manager first", "liftgate"}, got)
}

func TestIsLegalText(t *testing.T) {
	lib := Default()
	assert.True(t, lib.IsLegalText("subject to the classifications and rules that have been established"))
	assert.True(t, lib.IsLegalText("or otherwise to the rates"))
	assert.False(t, lib.IsLegalText("Liftgate needed"))
}

func TestPhonePatterns(t *testing.T) {
	lib := Default()
	got := lib.ExtractAllMatches("Call 801-555-1234 or (970) 753-9885 or 801.555.1234", lib.Phone, false)
	assert.Equal(t, []string{"801-555-1234", "801.555.1234", "(970) 753-9885"}, got)
}

func TestSerialPatternsIgnoreHeaderWords(t *testing.T) {
	lib := Default()
	text := "Asset Serial Number Description\nSerial Number ACV70119LLE7 Konica"
	got := lib.ExtractAllMatches(text, lib.SerialNumber, false)
	assert.Equal(t, []string{"ACV70119LLE7"}, got)
}

func TestMatches(t *testing.T) {
	lib := Default()
	assert.True(t, lib.Matches("Texas Truck Rental", lib.ClientTTR))
	assert.False(t, lib.Matches("attribute", lib.ClientTTR))
}
