package checklist

import (
	"time"

	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/rules"
)

// ComplianceStatus tracks where a compliance action sits in its
// lifecycle. The generator only ever creates Pending actions; the other
// states are applied by whichever workflow consumes the checklist.
type ComplianceStatus string

const (
	StatusPending    ComplianceStatus = "Pending"
	StatusInProgress ComplianceStatus = "In Progress"
	StatusCompleted  ComplianceStatus = "Completed"
	StatusEscalated  ComplianceStatus = "Escalated"
	StatusOverdue    ComplianceStatus = "Overdue"
)

// ComplianceAction represents a single filing obligation with its due
// date, supporting documents, and ownership.
type ComplianceAction struct {
	FormNumber        string                     `json:"form_number"`
	Jurisdiction      string                     `json:"jurisdiction"`
	DueDate           time.Time                  `json:"due_date"`
	RequiredDocuments []rules.ComplianceDocument `json:"required_documents"`
	Status            ComplianceStatus           `json:"status"`
	RiskLevel         string                     `json:"risk_level"`
	Assignee          string                     `json:"assignee"`
	Notes             string                     `json:"notes"`
}

// AdviceTriggers carries the jurisdiction-specific facts that drive
// advice-based checklist generation.
type AdviceTriggers struct {
	Jurisdiction          string `json:"jurisdiction"`
	ForeignRemittance     bool   `json:"foreign_remittance"`
	TDSApplicable         bool   `json:"tds_applicable"`
	WithholdingApplicable bool   `json:"withholding_applicable"`
}

// ChecklistItem is a country/amount-driven compliance task with a
// human-readable deadline.
type ChecklistItem struct {
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Deadline     string   `json:"deadline"`
	Priority     string   `json:"priority"`
	Requirements []string `json:"requirements"`
}

// RequirementsInput holds the compliance posture to be checked.
type RequirementsInput struct {
	TaxRegistration bool     `json:"tax_registration"`
	ValidTaxID      string   `json:"valid_tax_id"`
	FilingHistory   []string `json:"filing_history"`
}

// RequirementsResult reports which compliance prerequisites are absent.
type RequirementsResult struct {
	IsCompliant         bool     `json:"is_compliant"`
	MissingRequirements []string `json:"missing_requirements"`
}

// Monthly filing deadline offsets, in days from the base date.
const (
	gstMonthlyFilingDays  = 20
	whtMonthlyFilingDays  = 7
	registrationDays      = 30
	documentationDays     = 7
	remittanceFilingDays  = 7
	vatReturnDays         = 20
	registrationThreshold = 20000
)

// Generator produces compliance checklists and due dates from static
// deadline tables.
type Generator struct {
	table  *rules.Table
	logger *zap.Logger
}

// NewGenerator creates a compliance checklist generator.
func NewGenerator(table *rules.Table, logger *zap.Logger) *Generator {
	return &Generator{
		table:  table,
		logger: logger,
	}
}

// Actions builds the jurisdiction-specific compliance actions a resolved
// transaction triggers. All actions start Pending.
func (g *Generator) Actions(triggers AdviceTriggers, transactionDate time.Time) []ComplianceAction {
	actions := []ComplianceAction{}
	if triggers.Jurisdiction == "" {
		return actions
	}

	quarterEnd := QuarterEnd(transactionDate)
	monthEnd := MonthEnd(transactionDate)

	switch triggers.Jurisdiction {
	case "INDIA":
		if triggers.ForeignRemittance {
			actions = append(actions, ComplianceAction{
				FormNumber:        "15CA",
				Jurisdiction:      "INDIA",
				DueDate:           transactionDate.AddDate(0, 0, remittanceFilingDays),
				RequiredDocuments: g.table.RequiredDocuments("INDIA", "15CA"),
				Status:            StatusPending,
				RiskLevel:         "Medium",
				Assignee:          "Tax Team",
				Notes:             "Required before foreign remittance",
			})
		}
		if triggers.TDSApplicable {
			actions = append(actions, ComplianceAction{
				FormNumber:        "26Q",
				Jurisdiction:      "INDIA",
				DueDate:           quarterEnd,
				RequiredDocuments: []rules.ComplianceDocument{},
				Status:            StatusPending,
				RiskLevel:         "High",
				Assignee:          "Tax Team",
				Notes:             "Quarterly TDS return",
			})
		}
	case "USA":
		if triggers.WithholdingApplicable {
			actions = append(actions, ComplianceAction{
				FormNumber:        "1042-S",
				Jurisdiction:      "USA",
				DueDate:           time.Date(transactionDate.Year()+1, time.March, 15, 0, 0, 0, 0, transactionDate.Location()),
				RequiredDocuments: g.table.RequiredDocuments("USA", "1042-S"),
				Status:            StatusPending,
				RiskLevel:         "High",
				Assignee:          "Tax Team",
				Notes:             "Annual withholding tax return",
			})
		}
	case "EU_FR", "EU_DE":
		actions = append(actions, ComplianceAction{
			FormNumber:        "VAT Return",
			Jurisdiction:      "EU",
			DueDate:           monthEnd.AddDate(0, 0, vatReturnDays),
			RequiredDocuments: g.table.RequiredDocuments("EU", "VAT"),
			Status:            StatusPending,
			RiskLevel:         "Medium",
			Assignee:          "Tax Team",
			Notes:             "Monthly VAT return",
		})
	}

	g.logger.Debug("compliance actions generated",
		zap.String("jurisdiction", triggers.Jurisdiction),
		zap.Int("actions", len(actions)))

	return actions
}

// Checklist builds a country/amount-driven list of registration, filing,
// and documentation tasks independent of any tax advice.
func (g *Generator) Checklist(country string, amount float64, date time.Time) []ChecklistItem {
	checklist := []ChecklistItem{}

	if country == "India" && amount > registrationThreshold {
		checklist = append(checklist, ChecklistItem{
			Type:        "Registration",
			Description: "GST Registration Required",
			Deadline:    deadline(date, registrationDays),
			Priority:    "High",
			Requirements: []string{
				"Business PAN",
				"Proof of business address",
				"Bank account details",
			},
		})
	}

	switch country {
	case "India":
		checklist = append(checklist,
			ChecklistItem{
				Type:        "Filing",
				Description: "Monthly GST Return (GSTR-1)",
				Deadline:    deadline(date, gstMonthlyFilingDays),
				Priority:    "High",
				Requirements: []string{
					"Invoice details",
					"Tax payment challan",
					"E-way bills if applicable",
				},
			},
			ChecklistItem{
				Type:        "Filing",
				Description: "TDS Return",
				Deadline:    deadline(date, whtMonthlyFilingDays),
				Priority:    "Medium",
				Requirements: []string{
					"Form 26Q",
					"TDS certificates",
					"Vendor PAN details",
				},
			})
	case "Singapore":
		checklist = append(checklist, ChecklistItem{
			Type:        "Filing",
			Description: "GST F5 Return",
			Deadline:    QuarterEnd(date).Format("2006-01-02"),
			Priority:    "High",
			Requirements: []string{
				"Sales listing",
				"Purchase listing",
				"Input tax claims",
			},
		})
	}

	checklist = append(checklist, ChecklistItem{
		Type:        "Documentation",
		Description: "Supporting Documents",
		Deadline:    deadline(date, documentationDays),
		Priority:    "Medium",
		Requirements: []string{
			"Original invoices",
			"Payment proof",
			"Contracts or agreements",
		},
	})

	return checklist
}

// ValidateRequirements checks the minimum compliance posture: active tax
// registration, a tax identifier on file, and prior filing history.
func (g *Generator) ValidateRequirements(in RequirementsInput) RequirementsResult {
	missing := []string{}
	if !in.TaxRegistration {
		missing = append(missing, "tax_registration")
	}
	if in.ValidTaxID == "" {
		missing = append(missing, "valid_tax_id")
	}
	if len(in.FilingHistory) == 0 {
		missing = append(missing, "filing_history")
	}

	return RequirementsResult{
		IsCompliant:         len(missing) == 0,
		MissingRequirements: missing,
	}
}

// MonthEnd returns the last calendar day of the date's month.
func MonthEnd(date time.Time) time.Time {
	if date.Month() == time.December {
		return time.Date(date.Year(), time.December, 31, 0, 0, 0, 0, date.Location())
	}
	firstOfNext := time.Date(date.Year(), date.Month()+1, 1, 0, 0, 0, 0, date.Location())
	return firstOfNext.AddDate(0, 0, -1)
}

// QuarterEnd returns the last calendar day of the final month of the
// quarter containing the date.
func QuarterEnd(date time.Time) time.Time {
	quarter := (int(date.Month()) - 1) / 3
	lastMonth := time.Month((quarter + 1) * 3)
	firstOfLast := time.Date(date.Year(), lastMonth, 1, 0, 0, 0, 0, date.Location())
	return firstOfLast.AddDate(0, 1, -1)
}

func deadline(base time.Time, days int) string {
	return base.AddDate(0, 0, days).Format("2006-01-02")
}
