package forms

import (
	"time"

	"go.uber.org/zap"
)

// FormData carries the transaction and advice fields a filing draft is
// built from. No validation happens here; missing fields flow into the
// draft as zero values for the validator to catch.
type FormData struct {
	PayerName     string  `json:"payer_name"`
	PayerPAN      string  `json:"payer_pan"`
	PayerTAN      string  `json:"payer_tan"`
	PayerEIN      string  `json:"payer_ein"`
	PayerVAT      string  `json:"payer_vat"`
	PayerAddress  string  `json:"payer_address"`
	VendorName    string  `json:"vendor_name"`
	VendorTaxID   string  `json:"vendor_tax_id"`
	VendorVAT     string  `json:"vendor_vat"`
	VendorAddress string  `json:"vendor_address"`
	VendorCountry string  `json:"vendor_country"`
	ServiceType   string  `json:"service_type"`
	Amount        float64 `json:"amount"`
	AmountInINR   float64 `json:"amount_in_inr"`
	Currency      string  `json:"currency"`
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`

	WithholdingRate *float64 `json:"withholding_rate"`
	TaxWithheld     float64  `json:"tax_withheld"`
	VATRate         float64  `json:"vat_rate"`
	VATAmount       float64  `json:"vat_amount"`
	TotalAmount     float64  `json:"total_amount"`
	ReverseCharge   bool     `json:"reverse_charge"`
	IntraEU         bool     `json:"intra_eu"`
}

// Form15CA is the India foreign remittance certificate draft.
type Form15CA struct {
	FormType          string              `json:"form_type"`
	Part              string              `json:"part"`
	RemitterDetails   RemitterDetails     `json:"remitter_details"`
	RemittanceDetails RemittanceDetails   `json:"remittance_details"`
	Beneficiary       BeneficiaryDetails  `json:"beneficiary_details"`
	Certificate       *CertificateDetails `json:"certificate_details"`
}

type RemitterDetails struct {
	Name    string `json:"name"`
	PAN     string `json:"pan"`
	TAN     string `json:"tan"`
	Address string `json:"address"`
}

type RemittanceDetails struct {
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	PurposeCode        string  `json:"purpose_code"`
	NatureOfRemittance string  `json:"nature_of_remittance"`
}

type BeneficiaryDetails struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Country string `json:"country"`
}

// CertificateDetails is present only above the Part B threshold; the CA
// fills it in after the draft is produced.
type CertificateDetails struct {
	CAName          string `json:"ca_name"`
	CARegistration  string `json:"ca_registration"`
	CertificateDate string `json:"certificate_date"`
}

// Form1042S is the USA foreign-person income reporting draft.
type Form1042S struct {
	FormType         string           `json:"form_type"`
	TaxYear          int              `json:"tax_year"`
	WithholdingAgent WithholdingAgent `json:"withholding_agent"`
	Recipient        Recipient        `json:"recipient"`
	PaymentDetails   PaymentDetails   `json:"payment_details"`
}

type WithholdingAgent struct {
	Name    string `json:"name"`
	EIN     string `json:"ein"`
	Address string `json:"address"`
}

type Recipient struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Country string `json:"country"`
	TaxID   string `json:"tax_id"`
}

type PaymentDetails struct {
	IncomeType      string  `json:"income_type"`
	GrossAmount     float64 `json:"gross_amount"`
	WithholdingRate float64 `json:"withholding_rate"`
	TaxWithheld     float64 `json:"tax_withheld"`
}

// VATInvoice is the EU/UK VAT invoice draft.
type VATInvoice struct {
	DocumentType   string         `json:"document_type"`
	InvoiceNumber  string         `json:"invoice_number"`
	Date           string         `json:"date"`
	Supplier       VATParty       `json:"supplier"`
	Customer       VATParty       `json:"customer"`
	ServiceDetails ServiceDetails `json:"service_details"`
	Notes          []string       `json:"notes"`
}

type VATParty struct {
	Name      string `json:"name"`
	VATNumber string `json:"vat_number"`
	Address   string `json:"address"`
}

type ServiceDetails struct {
	Description   string  `json:"description"`
	AmountExclVAT float64 `json:"amount_excl_vat"`
	VATRate       float64 `json:"vat_rate"`
	VATAmount     float64 `json:"vat_amount"`
	TotalAmount   float64 `json:"total_amount"`
}

// form15CAPartThreshold is the INR amount above which Part B applies and
// a CA certificate is required.
const form15CAPartThreshold = 500000

// defaultWithholdingRate applies to US-source payments with no treaty
// documentation on file.
const defaultWithholdingRate = 30

// Generator produces jurisdiction-specific filing drafts from
// transaction data.
type Generator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a filing draft generator.
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{
		logger: logger,
		now:    time.Now,
	}
}

// Form15CA builds the India foreign remittance certificate draft. The
// certificate block is present only when the INR amount exceeds the
// Part B threshold.
func (g *Generator) Form15CA(data FormData) *Form15CA {
	form := &Form15CA{
		FormType: "15CA",
		Part:     "A",
		RemitterDetails: RemitterDetails{
			Name:    data.PayerName,
			PAN:     data.PayerPAN,
			TAN:     data.PayerTAN,
			Address: data.PayerAddress,
		},
		RemittanceDetails: RemittanceDetails{
			Amount:             data.Amount,
			Currency:           data.Currency,
			PurposeCode:        purposeCode(data.ServiceType),
			NatureOfRemittance: data.ServiceType,
		},
		Beneficiary: BeneficiaryDetails{
			Name:    data.VendorName,
			Address: data.VendorAddress,
			Country: data.VendorCountry,
		},
	}
	if data.AmountInINR > form15CAPartThreshold {
		form.Part = "B"
		form.Certificate = &CertificateDetails{}
	}
	return form
}

// Form1042S builds the USA withholding report draft for the current tax
// year.
func (g *Generator) Form1042S(data FormData) *Form1042S {
	rate := float64(defaultWithholdingRate)
	if data.WithholdingRate != nil {
		rate = *data.WithholdingRate
	}
	return &Form1042S{
		FormType: "1042-S",
		TaxYear:  g.now().Year(),
		WithholdingAgent: WithholdingAgent{
			Name:    data.PayerName,
			EIN:     data.PayerEIN,
			Address: data.PayerAddress,
		},
		Recipient: Recipient{
			Name:    data.VendorName,
			Address: data.VendorAddress,
			Country: data.VendorCountry,
			TaxID:   data.VendorTaxID,
		},
		PaymentDetails: PaymentDetails{
			IncomeType:      incomeCode(data.ServiceType),
			GrossAmount:     data.Amount,
			WithholdingRate: rate,
			TaxWithheld:     data.TaxWithheld,
		},
	}
}

// VATInvoice builds the EU/UK VAT invoice draft. Reverse-charge and
// intra-EU notes appear only when the corresponding flags are set.
func (g *Generator) VATInvoice(data FormData) *VATInvoice {
	notes := []string{}
	if data.ReverseCharge {
		notes = append(notes, "Reverse Charge Applies")
	}
	if data.IntraEU {
		notes = append(notes, "Intra-EU Supply")
	}
	return &VATInvoice{
		DocumentType:  "VAT Invoice",
		InvoiceNumber: data.InvoiceNumber,
		Date:          data.InvoiceDate,
		Supplier: VATParty{
			Name:      data.VendorName,
			VATNumber: data.VendorVAT,
			Address:   data.VendorAddress,
		},
		Customer: VATParty{
			Name:      data.PayerName,
			VATNumber: data.PayerVAT,
			Address:   data.PayerAddress,
		},
		ServiceDetails: ServiceDetails{
			Description:   data.ServiceType,
			AmountExclVAT: data.Amount,
			VATRate:       data.VATRate,
			VATAmount:     data.VATAmount,
			TotalAmount:   data.TotalAmount,
		},
		Notes: notes,
	}
}

// purposeCode maps a service type to its RBI remittance purpose code.
func purposeCode(serviceType string) string {
	switch serviceType {
	case "Technical Services", "Professional Services":
		return "S0304"
	case "Royalty":
		return "S0306"
	case "Software":
		return "S0302"
	}
	return "S0304"
}

// incomeCode maps a service type to its 1042-S income code.
func incomeCode(serviceType string) string {
	switch serviceType {
	case "Royalty", "Software":
		return "12"
	}
	return "50"
}
