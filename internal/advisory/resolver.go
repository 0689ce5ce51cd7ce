package advisory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/rules"
)

// TaxAdvice is the outcome of a single resolution: the taxes that apply,
// the forms they trigger, treaty context, and advisory notes. It is
// produced fresh per call and owned by the caller.
type TaxAdvice struct {
	ApplicableTaxes             map[rules.TaxType]rules.TaxRate `json:"applicable_taxes"`
	FilingRequirements          []rules.TaxForm                 `json:"filing_requirements"`
	DTAATreaty                  *rules.DTAATreaty               `json:"dtaa_treaty"`
	PermanentEstablishmentRisk  bool                            `json:"permanent_establishment_risk"`
	Exemptions                  []string                        `json:"exemptions"`
	ComplianceNotes             []string                        `json:"compliance_notes"`

	// taxOrder preserves rate-table order so filing requirements come
	// out the same way every call.
	taxOrder []rules.TaxType
}

// TaxOrder returns the applicable tax types in rate-table order.
func (a *TaxAdvice) TaxOrder() []rules.TaxType {
	out := make([]rules.TaxType, len(a.taxOrder))
	copy(out, a.taxOrder)
	return out
}

// Resolver determines applicable taxes and compliance requirements for
// cross-border service transactions.
type Resolver struct {
	table  *rules.Table
	logger *zap.Logger
}

// NewResolver creates a tax advisory resolver backed by a rule table.
func NewResolver(table *rules.Table, logger *zap.Logger) *Resolver {
	return &Resolver{
		table:  table,
		logger: logger,
	}
}

// AdviceInput carries one transaction's facts into a resolution.
type AdviceInput struct {
	PayerCountry            string
	VendorCountry           string
	ServiceType             string
	Amount                  float64
	Currency                string
	HasPermanentEstablish   bool
	TaxResidencyCertificate bool
}

// Advise resolves the taxes, filing requirements, exemptions, and notes
// for a transaction. Unrecognized jurisdiction or category values fail
// before any lookup. A recognized pair with no rate entry resolves to an
// empty advice, which means no applicable obligation is known.
func (r *Resolver) Advise(in AdviceInput) (*TaxAdvice, error) {
	payer, err := rules.ParseJurisdiction(in.PayerCountry)
	if err != nil {
		return nil, fmt.Errorf("payer country: %w", err)
	}
	vendor, err := rules.ParseJurisdiction(in.VendorCountry)
	if err != nil {
		return nil, fmt.Errorf("vendor country: %w", err)
	}
	category, err := rules.ParseServiceCategory(in.ServiceType)
	if err != nil {
		return nil, fmt.Errorf("service type: %w", err)
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	treaty, hasTreaty := r.table.Treaty(payer, vendor)
	isIntraEU := r.table.IsEUMember(string(payer)) && r.table.IsEUMember(string(vendor))
	peRisk := r.assessPERisk(in.HasPermanentEstablish)

	advice := &TaxAdvice{
		ApplicableTaxes:            make(map[rules.TaxType]rules.TaxRate),
		FilingRequirements:         []rules.TaxForm{},
		PermanentEstablishmentRisk: peRisk,
		Exemptions:                 []string{},
		ComplianceNotes:            []string{},
	}
	if hasTreaty {
		advice.DTAATreaty = treaty
	}

	for _, entry := range r.table.Rates(payer, category) {
		rate := entry.Rate

		if isIntraEU && entry.Type == rules.Withholding {
			advice.Exemptions = append(advice.Exemptions,
				"Intra-EU supply - No withholding tax applicable")
			continue
		}

		if hasTreaty && (entry.Type == rules.Withholding || entry.Type == rules.TDS) {
			if treatyRate, ok := treatyRateFor(treaty, category); ok && treatyRate < rate.Rate {
				rate = rules.TaxRate{
					Rate:              treatyRate,
					CurrencyThreshold: rate.CurrencyThreshold,
					Currency:          currency,
					Notes:             fmt.Sprintf("DTAA rate applied (%s-%s treaty)", payer, vendor),
				}
				advice.ComplianceNotes = append(advice.ComplianceNotes,
					fmt.Sprintf("DTAA benefit applied: Rate reduced to %g%%", treatyRate))
			}
		}

		rate.Currency = currency
		advice.ApplicableTaxes[entry.Type] = rate
		advice.taxOrder = append(advice.taxOrder, entry.Type)
	}

	for _, taxType := range advice.taxOrder {
		advice.FilingRequirements = append(advice.FilingRequirements,
			r.table.Forms(payer, taxType)...)
	}

	if in.TaxResidencyCertificate {
		advice.ComplianceNotes = append(advice.ComplianceNotes,
			"Tax Residency Certificate available - DTAA benefits applicable")
	}
	if in.HasPermanentEstablish {
		advice.ComplianceNotes = append(advice.ComplianceNotes,
			"Permanent Establishment exists - Local tax laws applicable")
	}
	if isIntraEU {
		advice.ComplianceNotes = append(advice.ComplianceNotes,
			"Intra-EU transaction - Special VAT rules apply")
	}

	r.logger.Debug("tax advice resolved",
		zap.String("payer", string(payer)),
		zap.String("vendor", string(vendor)),
		zap.String("category", string(category)),
		zap.Int("applicable_taxes", len(advice.ApplicableTaxes)),
		zap.Bool("treaty", hasTreaty))

	return advice, nil
}

// assessPERisk mirrors current policy: only the explicit flag elevates
// risk. Treaty day thresholds surface through validation instead.
func (r *Resolver) assessPERisk(hasPE bool) bool {
	return hasPE
}

// treatyRateFor maps a service category onto the treaty rate key that
// covers it. Categories outside royalty and technical-service scope get
// no treaty rate.
func treatyRateFor(treaty *rules.DTAATreaty, category rules.ServiceCategory) (float64, bool) {
	switch category {
	case rules.Royalty:
		rate, ok := treaty.WithholdingRates["royalty"]
		return rate, ok
	case rules.Technical, rules.Consulting:
		rate, ok := treaty.WithholdingRates["technical_services"]
		return rate, ok
	}
	return 0, false
}

// Exemptions lists jurisdiction-specific reliefs that may apply to a
// transaction, independent of the main resolution pass.
func (r *Resolver) Exemptions(jurisdiction rules.Jurisdiction, category rules.ServiceCategory, amount float64, hasPE bool) []string {
	exemptions := []string{}

	switch jurisdiction {
	case rules.India:
		if category == rules.Technical && amount < 30000 {
			exemptions = append(exemptions,
				"TDS exemption under Section 194J for amount below threshold")
		}
		if !hasPE && (category == rules.SaaS || category == rules.Royalty) {
			exemptions = append(exemptions,
				"Eligible for reduced withholding under DTAA with valid TRC")
		}
	case rules.USA:
		if category == rules.Technical && !hasPE {
			exemptions = append(exemptions,
				"Eligible for tax treaty benefits with valid W8-BEN")
		}
	}

	return exemptions
}
