package advisory

import (
	"fmt"

	"go.uber.org/zap"
)

// TransactionTax is one tax line in a corridor analysis.
type TransactionTax struct {
	Type   string  `json:"type"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

// ComplianceRequirement is an obligation a corridor analysis surfaces,
// with a deadline in days from the transaction.
type ComplianceRequirement struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	DeadlineDays int    `json:"deadline_days"`
}

// TransactionAnalysis is the corridor-level view of a transaction:
// per-tax amounts, total tax, and the compliance work the taxes imply.
type TransactionAnalysis struct {
	SourceCountry          string                  `json:"source_country"`
	DestinationCountry     string                  `json:"destination_country"`
	TransactionType        string                  `json:"transaction_type"`
	Amount                 float64                 `json:"amount"`
	ApplicableTaxes        []TransactionTax        `json:"applicable_taxes"`
	TotalTaxAmount         float64                 `json:"total_tax_amount"`
	ComplianceRequirements []ComplianceRequirement `json:"compliance_requirements"`
}

// Analyzer performs simplified source/destination corridor analysis for
// the supported service corridors.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a corridor transaction analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

func isAnalyzedServiceType(transactionType string) bool {
	return transactionType == "Digital Services" || transactionType == "Technical Services"
}

// AnalyzeTransaction determines the taxes on a cross-border service
// corridor. Corridors outside the supported set yield an analysis with
// no tax lines.
func (a *Analyzer) AnalyzeTransaction(sourceCountry, destinationCountry, transactionType string, amount float64) *TransactionAnalysis {
	result := &TransactionAnalysis{
		SourceCountry:          sourceCountry,
		DestinationCountry:     destinationCountry,
		TransactionType:        transactionType,
		Amount:                 amount,
		ApplicableTaxes:        []TransactionTax{},
		ComplianceRequirements: []ComplianceRequirement{},
	}

	switch {
	case sourceCountry == "India" && destinationCountry == "Singapore":
		if isAnalyzedServiceType(transactionType) {
			// Exports of services are zero-rated for GST.
			result.ApplicableTaxes = append(result.ApplicableTaxes, TransactionTax{
				Type:  "GST",
				Rate:  0.0,
				Notes: "Zero-rated for exports",
			})

			wht := TransactionTax{
				Type:   "WHT",
				Rate:   0.17,
				Amount: amount * 0.17,
				Notes:  "Singapore WHT on technical services",
			}
			result.ApplicableTaxes = append(result.ApplicableTaxes, wht)
			result.TotalTaxAmount += wht.Amount
		}

	case sourceCountry == "Singapore" && destinationCountry == "India":
		if isAnalyzedServiceType(transactionType) {
			igst := TransactionTax{
				Type:   "IGST",
				Rate:   0.18,
				Amount: amount * 0.18,
				Notes:  "IGST on import of services",
			}
			result.ApplicableTaxes = append(result.ApplicableTaxes, igst)
			result.TotalTaxAmount += igst.Amount

			wht := TransactionTax{
				Type:   "WHT",
				Rate:   0.10,
				Amount: amount * 0.10,
				Notes:  "India WHT on technical services",
			}
			result.ApplicableTaxes = append(result.ApplicableTaxes, wht)
			result.TotalTaxAmount += wht.Amount
		}
	}

	result.ComplianceRequirements = complianceRequirements(
		sourceCountry, destinationCountry, result.ApplicableTaxes)

	a.logger.Debug("transaction analyzed",
		zap.String("source", sourceCountry),
		zap.String("destination", destinationCountry),
		zap.Float64("total_tax", result.TotalTaxAmount))

	return result
}

func complianceRequirements(sourceCountry, destinationCountry string, taxes []TransactionTax) []ComplianceRequirement {
	requirements := []ComplianceRequirement{}

	for _, tax := range taxes {
		switch tax.Type {
		case "GST":
			requirements = append(requirements,
				ComplianceRequirement{
					Type:         "Registration",
					Description:  fmt.Sprintf("GST registration in %s", sourceCountry),
					DeadlineDays: 30,
				},
				ComplianceRequirement{
					Type:         "Filing",
					Description:  fmt.Sprintf("GST return filing in %s", sourceCountry),
					DeadlineDays: 20,
				})
		case "WHT":
			requirements = append(requirements,
				ComplianceRequirement{
					Type:         "Filing",
					Description:  fmt.Sprintf("WHT return filing in %s", destinationCountry),
					DeadlineDays: 7,
				},
				ComplianceRequirement{
					Type:         "Documentation",
					Description:  "Tax residency certificate",
					DeadlineDays: 90,
				})
		}
	}

	return requirements
}
