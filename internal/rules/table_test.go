package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJurisdiction(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		for _, name := range []string{"India", "United States", "United Kingdom", "Germany", "France", "Singapore"} {
			j, err := ParseJurisdiction(name)
			require.NoError(t, err)
			assert.Equal(t, name, string(j))
		}
	})

	t.Run("unknown value", func(t *testing.T) {
		_, err := ParseJurisdiction("Atlantis")
		assert.ErrorIs(t, err, ErrUnknownJurisdiction)
	})
}

func TestParseServiceCategory(t *testing.T) {
	c, err := ParseServiceCategory("Technical Services")
	require.NoError(t, err)
	assert.Equal(t, Technical, c)

	_, err = ParseServiceCategory("Fortune Telling")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRatesWithinBounds(t *testing.T) {
	table := NewTable()

	for _, j := range []Jurisdiction{India, France, Singapore} {
		for _, c := range []ServiceCategory{
			Consulting, Technical, CloudServices, DataProcessing, Research,
			Legal, Accounting, DigitalContent, Telecom, Financial, Insurance, Ecommerce,
		} {
			for _, entry := range table.Rates(j, c) {
				assert.GreaterOrEqual(t, entry.Rate.Rate, 0.0,
					"%s/%s/%s rate below 0", j, c, entry.Type)
				assert.LessOrEqual(t, entry.Rate.Rate, 100.0,
					"%s/%s/%s rate above 100", j, c, entry.Type)
			}
		}
	}
}

func TestRatesData(t *testing.T) {
	table := NewTable()

	t.Run("india technical services", func(t *testing.T) {
		entries := table.Rates(India, Technical)
		require.Len(t, entries, 3)
		assert.Equal(t, TDS, entries[0].Type)
		assert.Equal(t, 10.0, entries[0].Rate.Rate)
		assert.Equal(t, GST, entries[1].Type)
		assert.Equal(t, 18.0, entries[1].Rate.Rate)
		assert.Equal(t, RCM, entries[2].Type)
	})

	t.Run("france financial services exempt", func(t *testing.T) {
		entries := table.Rates(France, Financial)
		require.Len(t, entries, 1)
		assert.Equal(t, TVA, entries[0].Type)
		assert.Equal(t, 0.0, entries[0].Rate.Rate)
	})

	t.Run("no entry for uncovered pair", func(t *testing.T) {
		assert.Empty(t, table.Rates(India, Printing))
		assert.Empty(t, table.Rates(USA, Technical))
	})
}

func TestTreatyLookupOrderIndependent(t *testing.T) {
	table := NewTable()

	forward, ok := table.Treaty(India, USA)
	require.True(t, ok)
	reverse, ok := table.Treaty(USA, India)
	require.True(t, ok)
	assert.Same(t, forward, reverse)

	// The treaty is stored under (Singapore, France); the reversed pair
	// must still find it.
	treaty, ok := table.Treaty(France, Singapore)
	require.True(t, ok)
	assert.Equal(t, 0.0, treaty.WithholdingRates["technical_services"])
	assert.Equal(t, 183, treaty.PermanentEstablishmentDays)

	_, ok = table.Treaty(Germany, Singapore)
	assert.False(t, ok)
}

func TestEUMembership(t *testing.T) {
	table := NewTable()

	assert.True(t, table.IsEUMember("France"))
	assert.True(t, table.IsEUMember("Germany"))
	assert.True(t, table.IsEUMember("Malta"))
	assert.False(t, table.IsEUMember("United Kingdom"))
	assert.False(t, table.IsEUMember("India"))
}

func TestForms(t *testing.T) {
	table := NewTable()

	indiaForms := table.Forms(India, TDS)
	require.Len(t, indiaForms, 3)
	assert.Equal(t, "26Q", indiaForms[0].FormNumber)
	assert.Equal(t, "15CA", indiaForms[1].FormNumber)
	assert.Equal(t, "15CB", indiaForms[2].FormNumber)

	usForms := table.Forms(USA, Withholding)
	require.Len(t, usForms, 2)
	assert.Equal(t, "1042-S", usForms[0].FormNumber)

	assert.Empty(t, table.Forms(India, VAT))
}

func TestRequiredDocuments(t *testing.T) {
	table := NewTable()

	docs := table.RequiredDocuments("INDIA", "15CA")
	require.Len(t, docs, 3)
	for _, doc := range docs {
		assert.True(t, doc.Required)
		assert.Equal(t, 96, doc.RetentionMonths)
	}

	euDocs := table.RequiredDocuments("EU", "VAT")
	require.Len(t, euDocs, 2)
	assert.Equal(t, 120, euDocs[0].RetentionMonths)

	assert.Empty(t, table.RequiredDocuments("SINGAPORE", "F5"))
}

func TestPEThresholds(t *testing.T) {
	table := NewTable()

	india, ok := table.PEThreshold("INDIA")
	require.True(t, ok)
	assert.Equal(t, 90, india.Days)
	assert.Equal(t, 500000.0, india.Amount)

	eu, ok := table.PEThreshold("EU")
	require.True(t, ok)
	assert.Equal(t, 183, eu.Days)

	_, ok = table.PEThreshold("USA")
	assert.False(t, ok)
}

func TestTaxIDPatterns(t *testing.T) {
	table := NewTable()

	gst, ok := table.TaxIDPattern("India", "GST")
	require.True(t, ok)
	assert.True(t, gst.MatchString("27AAPFU0939F1ZV"))
	assert.False(t, gst.MatchString("INVALID-GST-123"))

	pan, ok := table.TaxIDPattern("India", "PAN")
	require.True(t, ok)
	assert.True(t, pan.MatchString("AAPFU0939F"))

	uen, ok := table.TaxIDPattern("Singapore", "UEN")
	require.True(t, ok)
	assert.True(t, uen.MatchString("201912345A"))

	_, ok = table.TaxIDPattern("France", "VAT")
	assert.False(t, ok)
}
