// Package connectors defines the contracts for the external systems the
// orchestrator talks to, plus in-process mock implementations used for
// local operation and tests. The advisory core never imports this
// package; collaborator failures stay at the orchestration layer.
package connectors

import (
	"context"
	"time"
)

// TransactionDetails is the ERP view of an invoiced transaction.
type TransactionDetails struct {
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
	Vendor    string  `json:"vendor"`
	Country   string  `json:"country"`
	TaxID     string  `json:"tax_id,omitempty"`
}

// ERP exposes transaction lookups from the ledger system.
type ERP interface {
	GetTransactionDetails(ctx context.Context, invoiceID string) (TransactionDetails, error)
}

// PaymentGateway verifies payments against the payment processor.
type PaymentGateway interface {
	VerifyPayment(ctx context.Context, invoiceID string) (bool, error)
}

// StoredDocument is one document on file for an entity.
type StoredDocument struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Format     string `json:"format"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
	Status     string `json:"status"`
}

// InvalidFormat describes a document whose format is not accepted for
// its type.
type InvalidFormat struct {
	Type           string   `json:"type"`
	CurrentFormat  string   `json:"current_format"`
	AllowedFormats []string `json:"allowed_formats"`
}

// DocumentSetValidation reports completeness of a document set.
type DocumentSetValidation struct {
	Valid            bool            `json:"valid"`
	MissingDocuments []string        `json:"missing_documents"`
	InvalidFormats   []InvalidFormat `json:"invalid_formats"`
	ExpiredDocuments []string        `json:"expired_documents"`
}

// DocumentManager fetches and validates compliance document sets.
type DocumentManager interface {
	FetchDocuments(ctx context.Context, entityID string) ([]StoredDocument, error)
	ValidateDocumentSet(ctx context.Context, documents []StoredDocument) (DocumentSetValidation, error)
}

// SubmissionResult is a government portal's response to a filing.
type SubmissionResult struct {
	Portal               string    `json:"portal"`
	SubmissionID         string    `json:"submission_id"`
	Timestamp            time.Time `json:"timestamp"`
	Status               string    `json:"status"`
	AcknowledgmentNumber string    `json:"acknowledgment_number,omitempty"`
	Errors               []string  `json:"errors"`
}

// FilingSubmission is the payload sent to a government portal.
type FilingSubmission struct {
	FormType     string                 `json:"form_type"`
	Jurisdiction string                 `json:"jurisdiction"`
	Data         map[string]interface{} `json:"data"`
}

// GovernmentPortal submits filings to a tax authority.
type GovernmentPortal interface {
	SubmitFiling(ctx context.Context, filing FilingSubmission) (SubmissionResult, error)
}
