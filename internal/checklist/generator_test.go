package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/rules"
)

func newTestGenerator() *Generator {
	return NewGenerator(rules.NewTable(), zap.NewNop())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthEnd(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"mid january", date(2025, time.January, 15), date(2025, time.January, 31)},
		{"february non-leap", date(2025, time.February, 10), date(2025, time.February, 28)},
		{"february leap year", date(2024, time.February, 10), date(2024, time.February, 29)},
		{"december", date(2025, time.December, 5), date(2025, time.December, 31)},
		{"thirty-day month", date(2025, time.April, 30), date(2025, time.April, 30)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MonthEnd(tc.in))
		})
	}
}

func TestQuarterEnd(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"q1 january", date(2025, time.January, 2), date(2025, time.March, 31)},
		{"q1 leap february", date(2024, time.February, 29), date(2024, time.March, 31)},
		{"q2 june", date(2025, time.June, 30), date(2025, time.June, 30)},
		{"q3 august", date(2025, time.August, 15), date(2025, time.September, 30)},
		{"q4 december", date(2025, time.December, 1), date(2025, time.December, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, QuarterEnd(tc.in))
		})
	}
}

func TestActionsIndia(t *testing.T) {
	gen := newTestGenerator()
	txDate := date(2025, time.February, 10)

	actions := gen.Actions(AdviceTriggers{
		Jurisdiction:      "INDIA",
		ForeignRemittance: true,
		TDSApplicable:     true,
	}, txDate)

	require.Len(t, actions, 2)

	remittance := actions[0]
	assert.Equal(t, "15CA", remittance.FormNumber)
	assert.Equal(t, date(2025, time.February, 17), remittance.DueDate)
	assert.Equal(t, StatusPending, remittance.Status)
	assert.Equal(t, "Medium", remittance.RiskLevel)
	require.Len(t, remittance.RequiredDocuments, 3)

	tds := actions[1]
	assert.Equal(t, "26Q", tds.FormNumber)
	assert.Equal(t, date(2025, time.March, 31), tds.DueDate)
	assert.Equal(t, "High", tds.RiskLevel)
	assert.Empty(t, tds.RequiredDocuments)

	for _, action := range actions {
		assert.False(t, action.DueDate.Before(txDate))
	}
}

func TestActionsUSA(t *testing.T) {
	gen := newTestGenerator()

	actions := gen.Actions(AdviceTriggers{
		Jurisdiction:          "USA",
		WithholdingApplicable: true,
	}, date(2025, time.July, 4))

	require.Len(t, actions, 1)
	assert.Equal(t, "1042-S", actions[0].FormNumber)
	assert.Equal(t, date(2026, time.March, 15), actions[0].DueDate)
	assert.Equal(t, StatusPending, actions[0].Status)
}

func TestActionsEU(t *testing.T) {
	gen := newTestGenerator()

	for _, jurisdiction := range []string{"EU_FR", "EU_DE"} {
		actions := gen.Actions(AdviceTriggers{Jurisdiction: jurisdiction}, date(2025, time.January, 10))
		require.Len(t, actions, 1, jurisdiction)
		assert.Equal(t, "VAT Return", actions[0].FormNumber)
		assert.Equal(t, "EU", actions[0].Jurisdiction)
		// Month end Jan 31 plus 20 days.
		assert.Equal(t, date(2025, time.February, 20), actions[0].DueDate)
	}
}

func TestActionsNoJurisdiction(t *testing.T) {
	gen := newTestGenerator()

	assert.Empty(t, gen.Actions(AdviceTriggers{}, time.Now()))
	assert.Empty(t, gen.Actions(AdviceTriggers{Jurisdiction: "SINGAPORE"}, time.Now()))
}

func TestChecklistIndia(t *testing.T) {
	gen := newTestGenerator()
	base := date(2025, time.March, 1)

	items := gen.Checklist("India", 25000, base)
	require.Len(t, items, 4)

	registration := items[0]
	assert.Equal(t, "Registration", registration.Type)
	assert.Equal(t, "2025-03-31", registration.Deadline)
	assert.Equal(t, "High", registration.Priority)

	gst := items[1]
	assert.Equal(t, "Monthly GST Return (GSTR-1)", gst.Description)
	assert.Equal(t, "2025-03-21", gst.Deadline)

	tds := items[2]
	assert.Equal(t, "TDS Return", tds.Description)
	assert.Equal(t, "2025-03-08", tds.Deadline)

	docs := items[3]
	assert.Equal(t, "Documentation", docs.Type)
	assert.Equal(t, "2025-03-08", docs.Deadline)
}

func TestChecklistIndiaBelowRegistrationThreshold(t *testing.T) {
	gen := newTestGenerator()

	items := gen.Checklist("India", 15000, date(2025, time.March, 1))
	require.Len(t, items, 3)
	for _, item := range items {
		assert.NotEqual(t, "Registration", item.Type)
	}
}

func TestChecklistSingapore(t *testing.T) {
	gen := newTestGenerator()

	items := gen.Checklist("Singapore", 50000, date(2025, time.May, 10))
	require.Len(t, items, 2)
	assert.Equal(t, "GST F5 Return", items[0].Description)
	assert.Equal(t, "2025-06-30", items[0].Deadline)
	assert.Equal(t, "Documentation", items[1].Type)
}

func TestValidateRequirements(t *testing.T) {
	gen := newTestGenerator()

	t.Run("all missing", func(t *testing.T) {
		result := gen.ValidateRequirements(RequirementsInput{})
		assert.False(t, result.IsCompliant)
		assert.Equal(t, []string{"tax_registration", "valid_tax_id", "filing_history"},
			result.MissingRequirements)
	})

	t.Run("compliant", func(t *testing.T) {
		result := gen.ValidateRequirements(RequirementsInput{
			TaxRegistration: true,
			ValidTaxID:      "27AAPFU0939F1ZV",
			FilingHistory:   []string{"2025Q1"},
		})
		assert.True(t, result.IsCompliant)
		assert.Empty(t, result.MissingRequirements)
	})
}
