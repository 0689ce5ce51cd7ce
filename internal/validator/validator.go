package validator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/rules"
)

// RiskLevel grades the severity of a validation issue.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

const validatorVersion = "1.0.0"

// ValidationIssue is one detected compliance problem.
type ValidationIssue struct {
	Code               string    `json:"code"`
	Description        string    `json:"description"`
	RiskLevel          RiskLevel `json:"risk_level"`
	Recommendation     string    `json:"recommendation"`
	RequiresEscalation bool      `json:"requires_escalation"`
}

// ValidationResult is the outcome of a filing validation pass. Valid
// holds exactly when no issues were found.
type ValidationResult struct {
	ID               string            `json:"id"`
	Valid            bool              `json:"valid"`
	Issues           []ValidationIssue `json:"issues"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidatorVersion string            `json:"validator_version"`
}

// FilingData carries the tax facts the risk checks run against. Amount
// and flag fields default to their zero values when the caller omits
// them.
type FilingData struct {
	Jurisdiction             string     `json:"jurisdiction"`
	ServiceType              string     `json:"service_type"`
	ServiceDays              int        `json:"service_days"`
	AnnualRevenue            float64    `json:"annual_revenue"`
	DTAAApplied              bool       `json:"dtaa_applied"`
	TRCAvailable             bool       `json:"trc_available"`
	AppliedRate              float64    `json:"applied_rate"`
	StatutoryRate            float64    `json:"statutory_rate"`
	SpecialRateApplied       bool       `json:"special_rate_applied"`
	SpecialRateDocumentation bool       `json:"special_rate_documentation"`
	Currency                 string     `json:"currency"`
	LocalCurrency            string     `json:"local_currency"`
	OfficialRateUsed         bool       `json:"official_rate_used"`
	RateDate                 *time.Time `json:"rate_date"`
}

// RequirementsData uses pointer fields so each check runs only when the
// caller supplied the corresponding input.
type RequirementsData struct {
	TaxRegistration *bool     `json:"tax_registration"`
	ValidTaxID      *string   `json:"valid_tax_id"`
	FilingHistory   *[]string `json:"filing_history"`
}

// RequirementCheck records one requirement check's outcome.
type RequirementCheck struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RequirementsResult accumulates requirement checks and the issues they
// raised. Valid is the conjunction of all checks that ran.
type RequirementsResult struct {
	Valid  bool               `json:"valid"`
	Checks []RequirementCheck `json:"checks"`
	Issues []string           `json:"issues"`
}

// Validator runs independent compliance risk checks against filing
// data. No check short-circuits another; every applicable issue is
// reported.
type Validator struct {
	table  *rules.Table
	logger *zap.Logger
	now    func() time.Time
}

// NewValidator creates a compliance validator backed by a rule table.
func NewValidator(table *rules.Table, logger *zap.Logger) *Validator {
	return &Validator{
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

// ValidateFiling runs the PE, DTAA, rate, and currency checks and
// accumulates every issue found.
func (v *Validator) ValidateFiling(data FilingData) ValidationResult {
	issues := []ValidationIssue{}
	issues = append(issues, v.validatePEConditions(data)...)
	issues = append(issues, v.validateDTAABenefits(data)...)
	issues = append(issues, v.validateTaxRates(data)...)
	issues = append(issues, v.validateCurrencyConversion(data)...)

	result := ValidationResult{
		ID:               uuid.New().String(),
		Valid:            len(issues) == 0,
		Issues:           issues,
		Timestamp:        v.now(),
		ValidatorVersion: validatorVersion,
	}

	v.logger.Debug("filing validated",
		zap.String("jurisdiction", data.Jurisdiction),
		zap.Bool("valid", result.Valid),
		zap.Int("issues", len(issues)))

	return result
}

// validatePEConditions flags service duration or revenue beyond the
// jurisdiction's permanent-establishment thresholds. Both checks can
// fire on the same filing.
func (v *Validator) validatePEConditions(data FilingData) []ValidationIssue {
	issues := []ValidationIssue{}
	if data.Jurisdiction == "" {
		return issues
	}
	threshold, ok := v.table.PEThreshold(data.Jurisdiction)
	if !ok {
		return issues
	}

	if data.ServiceDays > threshold.Days {
		issues = append(issues, ValidationIssue{
			Code: "PE001",
			Description: fmt.Sprintf("Service duration (%d days) exceeds PE threshold (%d days)",
				data.ServiceDays, threshold.Days),
			RiskLevel:          RiskHigh,
			Recommendation:     "Review PE implications and consider local entity registration",
			RequiresEscalation: true,
		})
	}
	if data.AnnualRevenue > threshold.Amount {
		issues = append(issues, ValidationIssue{
			Code:               "PE002",
			Description:        "Annual revenue exceeds PE threshold",
			RiskLevel:          RiskHigh,
			Recommendation:     "Review PE implications and consider local entity registration",
			RequiresEscalation: true,
		})
	}
	return issues
}

func (v *Validator) validateDTAABenefits(data FilingData) []ValidationIssue {
	issues := []ValidationIssue{}
	if !data.DTAAApplied {
		return issues
	}

	if !data.TRCAvailable {
		issues = append(issues, ValidationIssue{
			Code:               "DTAA001",
			Description:        "DTAA benefits applied without valid Tax Residency Certificate",
			RiskLevel:          RiskHigh,
			Recommendation:     "Obtain valid TRC before applying DTAA benefits",
			RequiresEscalation: true,
		})
	}
	if !isServiceDTAAEligible(data.ServiceType) {
		issues = append(issues, ValidationIssue{
			Code:               "DTAA002",
			Description:        "Service type may not qualify for DTAA benefits",
			RiskLevel:          RiskMedium,
			Recommendation:     "Review service classification and DTAA article applicability",
			RequiresEscalation: true,
		})
	}
	return issues
}

func (v *Validator) validateTaxRates(data FilingData) []ValidationIssue {
	issues := []ValidationIssue{}
	if data.Jurisdiction == "" {
		return issues
	}

	if data.AppliedRate < data.StatutoryRate {
		issues = append(issues, ValidationIssue{
			Code:               "RATE001",
			Description:        "Applied rate is lower than statutory rate",
			RiskLevel:          RiskMedium,
			Recommendation:     "Verify rate reduction justification and documentation",
			RequiresEscalation: false,
		})
	}
	if data.SpecialRateApplied && !data.SpecialRateDocumentation {
		issues = append(issues, ValidationIssue{
			Code:               "RATE002",
			Description:        "Special rate applied without supporting documentation",
			RiskLevel:          RiskHigh,
			Recommendation:     "Obtain and maintain documentation for special rate",
			RequiresEscalation: true,
		})
	}
	return issues
}

// validateCurrencyConversion runs only for cross-currency filings. The
// rate-date check accepts any date in the current month; it is a
// simplification, not a general as-of-transaction-date rule.
func (v *Validator) validateCurrencyConversion(data FilingData) []ValidationIssue {
	issues := []ValidationIssue{}
	if data.Currency == data.LocalCurrency {
		return issues
	}

	if !data.OfficialRateUsed {
		issues = append(issues, ValidationIssue{
			Code:               "CURR001",
			Description:        "Non-official exchange rate used for conversion",
			RiskLevel:          RiskMedium,
			Recommendation:     "Use official exchange rates as per regulatory requirements",
			RequiresEscalation: false,
		})
	}
	if !v.isValidRateDate(data.RateDate) {
		issues = append(issues, ValidationIssue{
			Code:               "CURR002",
			Description:        "Exchange rate date does not comply with regulations",
			RiskLevel:          RiskMedium,
			Recommendation:     "Use exchange rate as per prescribed date",
			RequiresEscalation: false,
		})
	}
	return issues
}

func (v *Validator) isValidRateDate(rateDate *time.Time) bool {
	if rateDate == nil {
		return false
	}
	now := v.now()
	return rateDate.Year() == now.Year() && rateDate.Month() == now.Month()
}

func isServiceDTAAEligible(serviceType string) bool {
	switch serviceType {
	case "Technical Services", "Professional Services", "Royalty", "Interest", "Dividend":
		return true
	}
	return false
}

// ValidateRequirements performs presence and format checks on the
// compliance posture. Each check runs only when its input field is
// present. Tax identifiers are format-checked only at the India GST
// length of 15; other formats are out of scope here.
func (v *Validator) ValidateRequirements(data RequirementsData) RequirementsResult {
	result := RequirementsResult{
		Valid:  true,
		Checks: []RequirementCheck{},
		Issues: []string{},
	}

	if data.TaxRegistration != nil {
		registered := *data.TaxRegistration
		check := RequirementCheck{
			Type:    "Tax Registration",
			Status:  "PASS",
			Message: "Tax registration verified",
		}
		if !registered {
			check.Status = "FAIL"
			check.Message = "Missing tax registration"
			result.Valid = false
			result.Issues = append(result.Issues, "Tax registration not found")
		}
		result.Checks = append(result.Checks, check)
	}

	if data.ValidTaxID != nil {
		taxID := *data.ValidTaxID
		if len(taxID) == 15 {
			pattern, _ := v.table.TaxIDPattern("India", "GST")
			valid := pattern != nil && pattern.MatchString(taxID)
			check := RequirementCheck{
				Type:    "Tax ID Format",
				Status:  "PASS",
				Message: fmt.Sprintf("Tax ID %s format is valid", taxID),
			}
			if !valid {
				check.Status = "FAIL"
				check.Message = fmt.Sprintf("Invalid tax ID format: %s", taxID)
				result.Valid = false
				result.Issues = append(result.Issues, fmt.Sprintf("Invalid tax ID format: %s", taxID))
			}
			result.Checks = append(result.Checks, check)
		}
	}

	if data.FilingHistory != nil {
		history := *data.FilingHistory
		check := RequirementCheck{
			Type:    "Filing History",
			Status:  "PASS",
			Message: fmt.Sprintf("Found %d previous filings", len(history)),
		}
		if len(history) == 0 {
			check.Status = "FAIL"
			check.Message = "No filing history found"
			result.Valid = false
			result.Issues = append(result.Issues, "No filing history found")
		}
		result.Checks = append(result.Checks, check)
	}

	return result
}
