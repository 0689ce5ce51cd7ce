package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/advisory"
	"github.com/taxshield/advisory-engine/internal/audit"
	"github.com/taxshield/advisory-engine/internal/checklist"
	"github.com/taxshield/advisory-engine/internal/connectors"
	"github.com/taxshield/advisory-engine/internal/forms"
	"github.com/taxshield/advisory-engine/internal/metrics"
	"github.com/taxshield/advisory-engine/internal/orchestrator"
	"github.com/taxshield/advisory-engine/internal/rules"
	"github.com/taxshield/advisory-engine/internal/validator"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	table := rules.NewTable()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	auditLogger := audit.NewLogger(100, logger)

	resolver := advisory.NewResolver(table, logger)
	checklistGen := checklist.NewGenerator(table, logger)
	formsGen := forms.NewGenerator(logger)
	complianceValidator := validator.NewValidator(table, logger)

	orch := orchestrator.New(
		resolver,
		checklistGen,
		formsGen,
		complianceValidator,
		connectors.NewMockERP(),
		connectors.NewMockPaymentGateway(),
		connectors.NewMockDocumentManager(),
		connectors.NewMockGovernmentPortal(),
		auditLogger,
		m,
		logger,
	)

	handler := New(
		resolver,
		advisory.NewAnalyzer(logger),
		checklistGen,
		checklist.NewTracker(logger),
		formsGen,
		complianceValidator,
		orch,
		auditLogger,
		registry,
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestTaxAdviceEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("resolves advice", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/v1/advice/tax", map[string]interface{}{
			"payer_country":  "India",
			"vendor_country": "United States",
			"service_type":   "Technical Services",
			"amount":         10000,
			"currency":       "USD",
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		taxes, ok := body["applicable_taxes"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, taxes, "Tax Deducted at Source")
		assert.Contains(t, taxes, "Goods and Services Tax")
	})

	t.Run("rejects unknown jurisdiction", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/v1/advice/tax", map[string]interface{}{
			"payer_country":  "Narnia",
			"vendor_country": "India",
			"service_type":   "Consulting",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/v1/advice/tax", map[string]interface{}{
			"payer_country": "India",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestChecklistEndpoint(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/api/v1/compliance/checklist", map[string]interface{}{
		"country": "India",
		"amount":  25000,
		"date":    "2025-03-01",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Checklist []checklist.ChecklistItem `json:"checklist"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Checklist, 4)
	assert.Equal(t, "Registration", body.Checklist[0].Type)
}

func TestActionsEndpointWithTracking(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/api/v1/compliance/actions", map[string]interface{}{
		"jurisdiction":       "INDIA",
		"foreign_remittance": true,
		"tds_applicable":     true,
		"transaction_date":   "2025-02-10",
		"track":              true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Actions     []checklist.ComplianceAction `json:"actions"`
		TrackingIDs []string                     `json:"tracking_ids"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Actions, 2)
	assert.Len(t, body.TrackingIDs, 2)
}

func TestValidateFilingEndpoint(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/api/v1/validate/filing", map[string]interface{}{
		"jurisdiction": "INDIA",
		"service_days": 100,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result validator.ValidationResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "PE001", result.Issues[0].Code)
}

func TestGenerateFormEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("15CA", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/v1/forms/generate", map[string]interface{}{
			"form_type": "15CA",
			"data": map[string]interface{}{
				"service_type":  "Technical Services",
				"amount_in_inr": 850000,
			},
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var form forms.Form15CA
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &form))
		assert.Equal(t, "B", form.Part)
		assert.NotNil(t, form.Certificate)
	})

	t.Run("unsupported type", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/api/v1/forms/generate", map[string]interface{}{
			"form_type": "UStVA",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestProcessTransactionEndpoint(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/api/v1/process/transaction/INV-42", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result orchestrator.ProcessResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "INV-42", result.InvoiceID)
	assert.Equal(t, "completed", result.Status)
}

func TestSubmitFilingEndpoint(t *testing.T) {
	router := newTestRouter()

	recorder := doJSON(t, router, http.MethodPost, "/api/v1/submit/filing", map[string]interface{}{
		"form_type":    "1042-S",
		"jurisdiction": "USA",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result connectors.SubmissionResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "IRS", result.Portal)
}

func TestAuditLogsEndpoint(t *testing.T) {
	router := newTestRouter()

	// Seed the trail through the advice route.
	doJSON(t, router, http.MethodPost, "/api/v1/advice/tax", map[string]interface{}{
		"payer_country":  "India",
		"vendor_country": "Singapore",
		"service_type":   "Consulting",
		"amount":         5000,
	})

	recorder := doJSON(t, router, http.MethodGet, "/api/v1/audit/logs?event_type=tax_advice", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Entries []audit.Entry `json:"entries"`
		Count   int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "resolve", body.Entries[0].Action)
}
