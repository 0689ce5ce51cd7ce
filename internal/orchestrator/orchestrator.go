// Package orchestrator sequences the advisory engines and the external
// collaborators into end-to-end compliance workflows.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/advisory"
	"github.com/taxshield/advisory-engine/internal/audit"
	"github.com/taxshield/advisory-engine/internal/checklist"
	"github.com/taxshield/advisory-engine/internal/connectors"
	"github.com/taxshield/advisory-engine/internal/forms"
	"github.com/taxshield/advisory-engine/internal/metrics"
	"github.com/taxshield/advisory-engine/internal/rules"
	"github.com/taxshield/advisory-engine/internal/validator"
)

// StepResult records one workflow step's outcome.
type StepResult struct {
	Step   string      `json:"step"`
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// ProcessResult is the outcome of the invoice-driven workflow. Status is
// "completed" when every step passed, "failed" as soon as one does not.
type ProcessResult struct {
	InvoiceID string       `json:"invoice_id"`
	Status    string       `json:"status"`
	Steps     []StepResult `json:"steps"`
	Issues    []string     `json:"issues"`
}

// ReportSection is one part of a compliance report.
type ReportSection struct {
	Title string      `json:"title"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ComplianceReport combines workflow processing with document
// validation for an invoice.
type ComplianceReport struct {
	InvoiceID string          `json:"invoice_id"`
	Timestamp time.Time       `json:"timestamp"`
	Sections  []ReportSection `json:"sections"`
}

// AdvisoryInput is the transaction payload for the advisory workflow.
type AdvisoryInput struct {
	TransactionID           string  `json:"transaction_id"`
	PayerName               string  `json:"payer_name"`
	PayerCountry            string  `json:"payer_country"`
	PayerTaxID              string  `json:"payer_tax_id"`
	VendorName              string  `json:"vendor_name"`
	VendorCountry           string  `json:"vendor_country"`
	VendorTaxID             string  `json:"vendor_tax_id"`
	ServiceType             string  `json:"service_type"`
	Amount                  float64 `json:"amount"`
	AmountInINR             float64 `json:"amount_in_inr"`
	Currency                string  `json:"currency"`
	HasPermanentEstablish   bool    `json:"has_permanent_establishment"`
	TaxResidencyCertificate bool    `json:"tax_residency_certificate"`
}

// DashboardMetrics summarizes an advisory run for reporting surfaces.
type DashboardMetrics struct {
	TaxImpact struct {
		TotalTax float64 `json:"total_tax"`
		Currency string  `json:"currency"`
	} `json:"tax_impact"`
	ComplianceStatus struct {
		Pending   int `json:"pending"`
		Completed int `json:"completed"`
		Escalated int `json:"escalated"`
	} `json:"compliance_status"`
	RiskMetrics struct {
		HighRiskIssues int `json:"high_risk_issues"`
		TotalIssues    int `json:"total_issues"`
	} `json:"risk_metrics"`
}

// AdvisoryResult is the advisory workflow's full output.
type AdvisoryResult struct {
	TransactionID     string                       `json:"transaction_id"`
	Status            string                       `json:"status"`
	TaxAdvice         *advisory.TaxAdvice          `json:"tax_advice"`
	ComplianceActions []checklist.ComplianceAction `json:"compliance_actions"`
	FilingDrafts      []interface{}                `json:"filing_drafts"`
	ValidationResults []validator.ValidationResult `json:"validation_results"`
	DashboardMetrics  DashboardMetrics             `json:"dashboard_metrics"`
}

// Orchestrator wires the engines and collaborator connectors together.
type Orchestrator struct {
	resolver  *advisory.Resolver
	checklist *checklist.Generator
	forms     *forms.Generator
	validator *validator.Validator
	erp       connectors.ERP
	payment   connectors.PaymentGateway
	docs      connectors.DocumentManager
	portal    connectors.GovernmentPortal
	audit     *audit.Logger
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New creates an orchestrator over the given engines and connectors.
func New(
	resolver *advisory.Resolver,
	checklistGen *checklist.Generator,
	formsGen *forms.Generator,
	complianceValidator *validator.Validator,
	erp connectors.ERP,
	payment connectors.PaymentGateway,
	docs connectors.DocumentManager,
	portal connectors.GovernmentPortal,
	auditLogger *audit.Logger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		checklist: checklistGen,
		forms:     formsGen,
		validator: complianceValidator,
		erp:       erp,
		payment:   payment,
		docs:      docs,
		portal:    portal,
		audit:     auditLogger,
		metrics:   m,
		logger:    logger,
	}
}

// ProcessTransaction runs the invoice-driven compliance workflow: ERP
// lookup, payment verification, checklist generation, and requirement
// validation. The workflow stops at the first failing step.
func (o *Orchestrator) ProcessTransaction(ctx context.Context, invoiceID string) ProcessResult {
	result := ProcessResult{
		InvoiceID: invoiceID,
		Status:    "processing",
		Steps:     []StepResult{},
		Issues:    []string{},
	}

	transaction, err := o.erp.GetTransactionDetails(ctx, invoiceID)
	if err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("ERP verification failed: %v", err))
		result.Status = "failed"
		return result
	}
	result.Steps = append(result.Steps, StepResult{
		Step:   "ERP Verification",
		Status: "completed",
		Data:   transaction,
	})

	verified, err := o.payment.VerifyPayment(ctx, invoiceID)
	if err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("Payment verification failed: %v", err))
		result.Status = "failed"
		return result
	}
	paymentStatus := "completed"
	if !verified {
		paymentStatus = "failed"
	}
	result.Steps = append(result.Steps, StepResult{
		Step:   "Payment Verification",
		Status: paymentStatus,
		Data:   map[string]bool{"verified": verified},
	})
	if !verified {
		result.Issues = append(result.Issues, "Payment verification failed")
		result.Status = "failed"
		return result
	}

	items := o.checklist.Checklist(transaction.Country, transaction.Amount, time.Now())
	result.Steps = append(result.Steps, StepResult{
		Step:   "Compliance Checklist",
		Status: "completed",
		Data:   items,
	})
	o.metrics.ChecklistGenerations.WithLabelValues(transaction.Country).Inc()

	// Filing history would come from the tax engine of record; the
	// India ledger is seeded in the mock environment.
	filingHistory := []string{}
	if transaction.Country == "India" {
		filingHistory = []string{"2024Q4", "2025Q1"}
	}

	registered := true
	validation := o.validator.ValidateRequirements(validator.RequirementsData{
		TaxRegistration: &registered,
		ValidTaxID:      &transaction.TaxID,
		FilingHistory:   &filingHistory,
	})
	validationStatus := "completed"
	if !validation.Valid {
		validationStatus = "failed"
	}
	result.Steps = append(result.Steps, StepResult{
		Step:   "Compliance Validation",
		Status: validationStatus,
		Data:   validation,
	})
	if !validation.Valid {
		result.Issues = append(result.Issues, validation.Issues...)
		result.Status = "failed"
		return result
	}

	result.Status = "completed"
	o.audit.LogEvent("transaction_processed", invoiceID, "process_transaction", map[string]interface{}{
		"country": transaction.Country,
		"amount":  transaction.Amount,
		"status":  result.Status,
	})
	return result
}

// ProcessAdvisory runs the advice-driven workflow: resolution, checklist
// actions, filing drafts, draft validation, and escalation.
func (o *Orchestrator) ProcessAdvisory(ctx context.Context, in AdvisoryInput) (*AdvisoryResult, error) {
	advice, err := o.resolver.Advise(advisory.AdviceInput{
		PayerCountry:            in.PayerCountry,
		VendorCountry:           in.VendorCountry,
		ServiceType:             in.ServiceType,
		Amount:                  in.Amount,
		Currency:                in.Currency,
		HasPermanentEstablish:   in.HasPermanentEstablish,
		TaxResidencyCertificate: in.TaxResidencyCertificate,
	})
	if err != nil {
		o.metrics.AdvisoryResolutions.WithLabelValues(in.PayerCountry, "invalid_input").Inc()
		return nil, err
	}
	o.metrics.AdvisoryResolutions.WithLabelValues(in.PayerCountry, "resolved").Inc()

	triggers := deriveTriggers(in, advice)
	actions := o.checklist.Actions(triggers, time.Now())
	drafts := o.generateDrafts(triggers, in, advice)

	results := make([]validator.ValidationResult, 0, len(drafts))
	for range drafts {
		result := o.validator.ValidateFiling(validator.FilingData{
			Jurisdiction:  triggers.Jurisdiction,
			ServiceType:   in.ServiceType,
			DTAAApplied:   advice.DTAATreaty != nil,
			TRCAvailable:  in.TaxResidencyCertificate,
			Currency:      in.Currency,
			LocalCurrency: in.Currency,
		})
		for _, issue := range result.Issues {
			o.metrics.ValidationIssues.WithLabelValues(issue.Code, string(issue.RiskLevel)).Inc()
		}
		results = append(results, result)
	}

	out := &AdvisoryResult{
		TransactionID:     in.TransactionID,
		Status:            "processed",
		TaxAdvice:         advice,
		ComplianceActions: actions,
		FilingDrafts:      drafts,
		ValidationResults: results,
		DashboardMetrics:  buildDashboardMetrics(in, advice, actions, results),
	}
	if requiresEscalation(results) {
		out.Status = "escalated"
		o.logger.Warn("advisory workflow escalated",
			zap.String("transaction_id", in.TransactionID),
			zap.String("payer_country", in.PayerCountry))
	}

	o.audit.LogEvent("advisory_processed", in.TransactionID, "process_advisory", map[string]interface{}{
		"payer_country":  in.PayerCountry,
		"vendor_country": in.VendorCountry,
		"service_type":   in.ServiceType,
		"status":         out.Status,
	})

	return out, nil
}

// GenerateComplianceReport combines the invoice workflow output with
// document-set validation from the document manager.
func (o *Orchestrator) GenerateComplianceReport(ctx context.Context, invoiceID string) ComplianceReport {
	report := ComplianceReport{
		InvoiceID: invoiceID,
		Timestamp: time.Now(),
		Sections:  []ReportSection{},
	}

	processResult := o.ProcessTransaction(ctx, invoiceID)
	report.Sections = append(report.Sections, ReportSection{
		Title: "Transaction Processing",
		Data:  processResult,
	})

	docs, err := o.docs.FetchDocuments(ctx, invoiceID)
	switch {
	case err != nil:
		report.Sections = append(report.Sections, ReportSection{
			Title: "Document Validation",
			Error: err.Error(),
		})
	case len(docs) == 0:
		report.Sections = append(report.Sections, ReportSection{
			Title: "Document Validation",
			Error: "No documents found",
		})
	default:
		validation, err := o.docs.ValidateDocumentSet(ctx, docs)
		if err != nil {
			report.Sections = append(report.Sections, ReportSection{
				Title: "Document Validation",
				Error: err.Error(),
			})
			break
		}
		report.Sections = append(report.Sections, ReportSection{
			Title: "Document Validation",
			Data:  validation,
		})
	}

	return report
}

// SubmitFiling forwards a filing to the mock government portal.
func (o *Orchestrator) SubmitFiling(ctx context.Context, filing connectors.FilingSubmission) (connectors.SubmissionResult, error) {
	result, err := o.portal.SubmitFiling(ctx, filing)
	if err != nil {
		return connectors.SubmissionResult{}, err
	}
	o.metrics.PortalSubmissions.WithLabelValues(result.Portal, result.Status).Inc()
	o.audit.LogEvent("filing_submitted", result.SubmissionID, "submit_filing", map[string]interface{}{
		"portal":    result.Portal,
		"form_type": filing.FormType,
		"status":    result.Status,
	})
	return result, nil
}

// deriveTriggers maps a resolved advice onto the jurisdiction-coded
// trigger flags that drive checklist generation.
func deriveTriggers(in AdvisoryInput, advice *advisory.TaxAdvice) checklist.AdviceTriggers {
	triggers := checklist.AdviceTriggers{
		Jurisdiction:      jurisdictionCode(in.PayerCountry),
		ForeignRemittance: in.PayerCountry != in.VendorCountry,
	}
	_, triggers.TDSApplicable = advice.ApplicableTaxes[rules.TDS]
	_, triggers.WithholdingApplicable = advice.ApplicableTaxes[rules.Withholding]
	return triggers
}

func jurisdictionCode(country string) string {
	switch country {
	case "India":
		return "INDIA"
	case "United States":
		return "USA"
	case "United Kingdom":
		return "UK"
	case "France":
		return "EU_FR"
	case "Germany":
		return "EU_DE"
	case "Singapore":
		return "SINGAPORE"
	}
	return ""
}

func (o *Orchestrator) generateDrafts(triggers checklist.AdviceTriggers, in AdvisoryInput, advice *advisory.TaxAdvice) []interface{} {
	data := forms.FormData{
		PayerName:     in.PayerName,
		PayerAddress:  "",
		VendorName:    in.VendorName,
		VendorTaxID:   in.VendorTaxID,
		VendorCountry: in.VendorCountry,
		ServiceType:   in.ServiceType,
		Amount:        in.Amount,
		AmountInINR:   in.AmountInINR,
		Currency:      in.Currency,
		IntraEU:       triggers.Jurisdiction == "EU_FR" || triggers.Jurisdiction == "EU_DE",
	}
	if rate, ok := advice.ApplicableTaxes[rules.Withholding]; ok {
		wr := rate.Rate
		data.WithholdingRate = &wr
	}

	drafts := []interface{}{}
	switch triggers.Jurisdiction {
	case "INDIA":
		if triggers.ForeignRemittance {
			drafts = append(drafts, o.forms.Form15CA(data))
			o.metrics.FormDrafts.WithLabelValues("15CA").Inc()
		}
	case "USA":
		if triggers.WithholdingApplicable {
			drafts = append(drafts, o.forms.Form1042S(data))
			o.metrics.FormDrafts.WithLabelValues("1042-S").Inc()
		}
	case "EU_FR", "EU_DE", "UK":
		drafts = append(drafts, o.forms.VATInvoice(data))
		o.metrics.FormDrafts.WithLabelValues("VAT Invoice").Inc()
	}
	return drafts
}

func buildDashboardMetrics(in AdvisoryInput, advice *advisory.TaxAdvice, actions []checklist.ComplianceAction, results []validator.ValidationResult) DashboardMetrics {
	var m DashboardMetrics

	for _, taxType := range advice.TaxOrder() {
		rate := advice.ApplicableTaxes[taxType]
		m.TaxImpact.TotalTax += in.Amount * rate.Rate / 100
	}
	m.TaxImpact.Currency = in.Currency
	if m.TaxImpact.Currency == "" {
		m.TaxImpact.Currency = "USD"
	}

	for _, action := range actions {
		switch action.Status {
		case checklist.StatusPending:
			m.ComplianceStatus.Pending++
		case checklist.StatusCompleted:
			m.ComplianceStatus.Completed++
		case checklist.StatusEscalated:
			m.ComplianceStatus.Escalated++
		}
	}

	for _, result := range results {
		m.RiskMetrics.TotalIssues += len(result.Issues)
		for _, issue := range result.Issues {
			if issue.RiskLevel == validator.RiskHigh {
				m.RiskMetrics.HighRiskIssues++
				break
			}
		}
	}

	return m
}

func requiresEscalation(results []validator.ValidationResult) bool {
	for _, result := range results {
		for _, issue := range result.Issues {
			if issue.RequiresEscalation {
				return true
			}
		}
	}
	return false
}
