package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockERP returns canned ledger data for any invoice id.
type MockERP struct{}

func NewMockERP() *MockERP {
	return &MockERP{}
}

func (m *MockERP) GetTransactionDetails(_ context.Context, invoiceID string) (TransactionDetails, error) {
	return TransactionDetails{
		InvoiceID: invoiceID,
		Amount:    50000,
		Vendor:    "Test Corp",
		Country:   "India",
	}, nil
}

// MockPaymentGateway reports every payment as verified.
type MockPaymentGateway struct{}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) VerifyPayment(_ context.Context, _ string) (bool, error) {
	return true, nil
}

// MockDocumentManager serves a fixed document set and validates against
// the required-type/format catalog.
type MockDocumentManager struct {
	requiredFormats map[string][]string
}

func NewMockDocumentManager() *MockDocumentManager {
	return &MockDocumentManager{
		requiredFormats: map[string][]string{
			"invoice":         {"pdf", "xml"},
			"tax_certificate": {"pdf"},
			"registration":    {"pdf", "jpg"},
		},
	}
}

func (m *MockDocumentManager) FetchDocuments(_ context.Context, _ string) ([]StoredDocument, error) {
	return []StoredDocument{
		{
			ID:         "DOC001",
			Type:       "invoice",
			Format:     "pdf",
			URL:        "https://example.com/docs/invoice.pdf",
			UploadedAt: "2025-03-20T10:30:00Z",
			Status:     "verified",
		},
		{
			ID:         "DOC002",
			Type:       "tax_certificate",
			Format:     "pdf",
			URL:        "https://example.com/docs/tax_cert.pdf",
			UploadedAt: "2025-01-15T09:00:00Z",
			Status:     "verified",
		},
	}, nil
}

func (m *MockDocumentManager) ValidateDocumentSet(_ context.Context, documents []StoredDocument) (DocumentSetValidation, error) {
	result := DocumentSetValidation{
		Valid:            true,
		MissingDocuments: []string{},
		InvalidFormats:   []InvalidFormat{},
		ExpiredDocuments: []string{},
	}

	byType := make(map[string]StoredDocument)
	for _, doc := range documents {
		byType[doc.Type] = doc
	}

	for _, requiredType := range []string{"invoice", "tax_certificate", "registration"} {
		doc, ok := byType[requiredType]
		if !ok {
			result.Valid = false
			result.MissingDocuments = append(result.MissingDocuments, requiredType)
			continue
		}
		allowed := m.requiredFormats[requiredType]
		if !contains(allowed, doc.Format) {
			result.Valid = false
			result.InvalidFormats = append(result.InvalidFormats, InvalidFormat{
				Type:           requiredType,
				CurrentFormat:  doc.Format,
				AllowedFormats: allowed,
			})
		}
	}

	return result, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// MockGovernmentPortal routes filings to the portal that owns the form
// type and acknowledges them immediately.
type MockGovernmentPortal struct{}

func NewMockGovernmentPortal() *MockGovernmentPortal {
	return &MockGovernmentPortal{}
}

func (m *MockGovernmentPortal) SubmitFiling(_ context.Context, filing FilingSubmission) (SubmissionResult, error) {
	portal := portalForForm(filing.FormType)
	if portal == "" {
		return SubmissionResult{
			Portal:    "UNKNOWN",
			Timestamp: time.Now(),
			Status:    "ERROR",
			Errors:    []string{fmt.Sprintf("no portal accepts form type %q", filing.FormType)},
		}, nil
	}

	return SubmissionResult{
		Portal:               portal,
		SubmissionID:         uuid.New().String(),
		Timestamp:            time.Now(),
		Status:               "SUBMITTED",
		AcknowledgmentNumber: fmt.Sprintf("ACK-%s", uuid.New().String()[:8]),
		Errors:               []string{},
	}, nil
}

func portalForForm(formType string) string {
	switch formType {
	case "15CA", "15CB", "26Q", "GSTR-1":
		return "GSTN"
	case "1042-S", "W-8BEN":
		return "IRS"
	case "VAT Return", "CT61", "CIS300":
		return "HMRC"
	}
	return ""
}
