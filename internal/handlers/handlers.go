package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/advisory"
	"github.com/taxshield/advisory-engine/internal/audit"
	"github.com/taxshield/advisory-engine/internal/checklist"
	"github.com/taxshield/advisory-engine/internal/connectors"
	"github.com/taxshield/advisory-engine/internal/forms"
	"github.com/taxshield/advisory-engine/internal/orchestrator"
	"github.com/taxshield/advisory-engine/internal/rules"
	"github.com/taxshield/advisory-engine/internal/validator"
)

// Handler exposes the advisory engine over HTTP.
type Handler struct {
	resolver     *advisory.Resolver
	analyzer     *advisory.Analyzer
	checklist    *checklist.Generator
	tracker      *checklist.Tracker
	forms        *forms.Generator
	validator    *validator.Validator
	orchestrator *orchestrator.Orchestrator
	audit        *audit.Logger
	registry     *prometheus.Registry
	logger       *zap.Logger
}

// New creates the HTTP handler set.
func New(
	resolver *advisory.Resolver,
	analyzer *advisory.Analyzer,
	checklistGen *checklist.Generator,
	tracker *checklist.Tracker,
	formsGen *forms.Generator,
	complianceValidator *validator.Validator,
	orch *orchestrator.Orchestrator,
	auditLogger *audit.Logger,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolver:     resolver,
		analyzer:     analyzer,
		checklist:    checklistGen,
		tracker:      tracker,
		forms:        formsGen,
		validator:    complianceValidator,
		orchestrator: orch,
		audit:        auditLogger,
		registry:     registry,
		logger:       logger,
	}
}

// RegisterRoutes mounts all engine routes on the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/advice/tax", h.GetTaxAdvice)
		v1.POST("/analyze/tax", h.AnalyzeTransaction)
		v1.POST("/compliance/checklist", h.GenerateChecklist)
		v1.POST("/compliance/actions", h.GenerateActions)
		v1.POST("/compliance/validate", h.ValidateRequirements)
		v1.POST("/validate/filing", h.ValidateFiling)
		v1.POST("/forms/generate", h.GenerateForm)
		v1.POST("/process/transaction/:invoice_id", h.ProcessTransaction)
		v1.POST("/process/advisory", h.ProcessAdvisory)
		v1.POST("/reports/compliance/:invoice_id", h.ComplianceReport)
		v1.POST("/submit/filing", h.SubmitFiling)
		v1.GET("/audit/logs", h.AuditLogs)
	}
}

// Health returns service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "advisory-engine",
		"timestamp": time.Now().UTC(),
	})
}

// TaxAdviceRequest is the resolution request payload.
type TaxAdviceRequest struct {
	PayerCountry            string  `json:"payer_country" binding:"required"`
	VendorCountry           string  `json:"vendor_country" binding:"required"`
	ServiceType             string  `json:"service_type" binding:"required"`
	Amount                  float64 `json:"amount" binding:"min=0"`
	Currency                string  `json:"currency"`
	HasPermanentEstablish   bool    `json:"has_permanent_establishment"`
	TaxResidencyCertificate bool    `json:"tax_residency_certificate"`
}

// GetTaxAdvice resolves applicable taxes for a transaction.
func (h *Handler) GetTaxAdvice(c *gin.Context) {
	var req TaxAdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	advice, err := h.resolver.Advise(advisory.AdviceInput{
		PayerCountry:            req.PayerCountry,
		VendorCountry:           req.VendorCountry,
		ServiceType:             req.ServiceType,
		Amount:                  req.Amount,
		Currency:                req.Currency,
		HasPermanentEstablish:   req.HasPermanentEstablish,
		TaxResidencyCertificate: req.TaxResidencyCertificate,
	})
	if err != nil {
		if errors.Is(err, rules.ErrUnknownJurisdiction) || errors.Is(err, rules.ErrUnknownCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("tax advice resolution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve tax advice"})
		return
	}

	h.audit.LogEvent("tax_advice", req.PayerCountry, "resolve", map[string]interface{}{
		"vendor_country": req.VendorCountry,
		"service_type":   req.ServiceType,
	})

	c.JSON(http.StatusOK, advice)
}

// AnalyzeRequest is the corridor analysis payload.
type AnalyzeRequest struct {
	SourceCountry      string  `json:"source_country" binding:"required"`
	DestinationCountry string  `json:"destination_country" binding:"required"`
	TransactionType    string  `json:"transaction_type" binding:"required"`
	Amount             float64 `json:"amount" binding:"min=0"`
}

// AnalyzeTransaction performs corridor-level tax analysis.
func (h *Handler) AnalyzeTransaction(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis := h.analyzer.AnalyzeTransaction(
		req.SourceCountry, req.DestinationCountry, req.TransactionType, req.Amount)
	c.JSON(http.StatusOK, analysis)
}

// ChecklistRequest is the country/amount-driven checklist payload.
type ChecklistRequest struct {
	Country string  `json:"country" binding:"required"`
	Amount  float64 `json:"amount" binding:"min=0"`
	Date    string  `json:"date"`
}

// GenerateChecklist builds a country/amount-driven compliance checklist.
func (h *Handler) GenerateChecklist(c *gin.Context) {
	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
			return
		}
		date = parsed
	}

	items := h.checklist.Checklist(req.Country, req.Amount, date)
	c.JSON(http.StatusOK, gin.H{"checklist": items})
}

// ActionsRequest is the advice-driven action generation payload.
type ActionsRequest struct {
	Jurisdiction          string `json:"jurisdiction" binding:"required"`
	ForeignRemittance     bool   `json:"foreign_remittance"`
	TDSApplicable         bool   `json:"tds_applicable"`
	WithholdingApplicable bool   `json:"withholding_applicable"`
	TransactionDate       string `json:"transaction_date"`
	Track                 bool   `json:"track"`
}

// GenerateActions builds advice-driven compliance actions, optionally
// registering them with the deadline tracker.
func (h *Handler) GenerateActions(c *gin.Context) {
	var req ActionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if req.TransactionDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TransactionDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_date must be in YYYY-MM-DD format"})
			return
		}
		date = parsed
	}

	actions := h.checklist.Actions(checklist.AdviceTriggers{
		Jurisdiction:          req.Jurisdiction,
		ForeignRemittance:     req.ForeignRemittance,
		TDSApplicable:         req.TDSApplicable,
		WithholdingApplicable: req.WithholdingApplicable,
	}, date)

	trackingIDs := []string{}
	if req.Track {
		for _, action := range actions {
			trackingIDs = append(trackingIDs, h.tracker.Track(action))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"actions":      actions,
		"tracking_ids": trackingIDs,
	})
}

// ValidateRequirements checks a compliance posture.
func (h *Handler) ValidateRequirements(c *gin.Context) {
	var req validator.RequirementsData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.validator.ValidateRequirements(req)
	c.JSON(http.StatusOK, result)
}

// ValidateFiling runs the compliance risk checks on filing data.
func (h *Handler) ValidateFiling(c *gin.Context) {
	var req validator.FilingData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.validator.ValidateFiling(req)
	h.audit.LogEvent("filing_validation", result.ID, "validate_filing", map[string]interface{}{
		"jurisdiction": req.Jurisdiction,
		"valid":        result.Valid,
		"issues":       len(result.Issues),
	})
	c.JSON(http.StatusOK, result)
}

// FormRequest selects a filing draft type and supplies its source data.
type FormRequest struct {
	FormType string         `json:"form_type" binding:"required"`
	Data     forms.FormData `json:"data"`
}

// GenerateForm produces a filing draft.
func (h *Handler) GenerateForm(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var draft interface{}
	switch req.FormType {
	case "15CA":
		draft = h.forms.Form15CA(req.Data)
	case "1042-S":
		draft = h.forms.Form1042S(req.Data)
	case "VAT Invoice":
		draft = h.forms.VATInvoice(req.Data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported form type: " + req.FormType})
		return
	}

	c.JSON(http.StatusOK, draft)
}

// ProcessTransaction runs the invoice-driven compliance workflow.
func (h *Handler) ProcessTransaction(c *gin.Context) {
	invoiceID := c.Param("invoice_id")
	result := h.orchestrator.ProcessTransaction(c.Request.Context(), invoiceID)
	c.JSON(http.StatusOK, result)
}

// ProcessAdvisory runs the advice-driven workflow end to end: advice,
// checklist actions, filing drafts, and draft validation.
func (h *Handler) ProcessAdvisory(c *gin.Context) {
	var req orchestrator.AdvisoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orchestrator.ProcessAdvisory(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, rules.ErrUnknownJurisdiction) || errors.Is(err, rules.ErrUnknownCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("advisory workflow failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process advisory workflow"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ComplianceReport builds the full compliance report for an invoice.
func (h *Handler) ComplianceReport(c *gin.Context) {
	invoiceID := c.Param("invoice_id")
	report := h.orchestrator.GenerateComplianceReport(c.Request.Context(), invoiceID)
	c.JSON(http.StatusOK, report)
}

// SubmitFiling forwards a filing to its government portal.
func (h *Handler) SubmitFiling(c *gin.Context) {
	var req connectors.FilingSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FormType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form_type is required"})
		return
	}

	result, err := h.orchestrator.SubmitFiling(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("filing submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit filing"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// AuditLogs returns the recorded audit trail, optionally filtered by
// event type.
func (h *Handler) AuditLogs(c *gin.Context) {
	eventType := c.Query("event_type")

	var entries []audit.Entry
	if eventType != "" {
		entries = h.audit.EntriesByType(eventType)
	} else {
		entries = h.audit.Entries()
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
