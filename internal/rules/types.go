package rules

import (
	"errors"
	"fmt"
	"time"
)

// Jurisdiction identifies a supported tax jurisdiction.
type Jurisdiction string

const (
	India     Jurisdiction = "India"
	USA       Jurisdiction = "United States"
	UK        Jurisdiction = "United Kingdom"
	Germany   Jurisdiction = "Germany"
	France    Jurisdiction = "France"
	Singapore Jurisdiction = "Singapore"
)

// ServiceCategory classifies the nature of the supplied service for
// rate determination.
type ServiceCategory string

const (
	Consulting     ServiceCategory = "Consulting"
	Technical      ServiceCategory = "Technical Services"
	Professional   ServiceCategory = "Professional Services"
	Royalty        ServiceCategory = "Royalty/License"
	SaaS           ServiceCategory = "Software as a Service"
	Goods          ServiceCategory = "Goods"
	Printing       ServiceCategory = "Printing"
	Advertising    ServiceCategory = "Advertising"
	Commission     ServiceCategory = "Commission"
	Rent           ServiceCategory = "Rent"
	Manpower       ServiceCategory = "Manpower Services"
	CloudServices  ServiceCategory = "Cloud Services"
	DataProcessing ServiceCategory = "Data Processing"
	Research       ServiceCategory = "Research and Development"
	Legal          ServiceCategory = "Legal Services"
	Accounting     ServiceCategory = "Accounting Services"
	DigitalContent ServiceCategory = "Digital Content"
	Telecom        ServiceCategory = "Telecommunication Services"
	Financial      ServiceCategory = "Financial Services"
	Insurance      ServiceCategory = "Insurance Services"
	Ecommerce      ServiceCategory = "E-commerce Services"
)

// TaxType identifies a kind of tax levied on a transaction.
type TaxType string

const (
	Withholding            TaxType = "Withholding Tax"
	TDS                    TaxType = "Tax Deducted at Source"
	VAT                    TaxType = "Value Added Tax"
	GST                    TaxType = "Goods and Services Tax"
	CGST                   TaxType = "Central Goods and Services Tax"
	SGST                   TaxType = "State Goods and Services Tax"
	RCM                    TaxType = "Reverse Charge Mechanism"
	Corporation            TaxType = "Corporation Tax"
	PermanentEstablishment TaxType = "Permanent Establishment Tax"
	CIS                    TaxType = "Construction Industry Scheme"
	MWST                   TaxType = "Mehrwertsteuer"
	TVA                    TaxType = "Taxe sur la Valeur Ajoutée"
)

// Sentinel errors for enumeration lookups. Callers should check them
// with errors.Is and translate them to bad-request responses.
var (
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	ErrUnknownCategory     = errors.New("unknown service category")
)

var jurisdictions = []Jurisdiction{India, USA, UK, Germany, France, Singapore}

var serviceCategories = []ServiceCategory{
	Consulting, Technical, Professional, Royalty, SaaS, Goods, Printing,
	Advertising, Commission, Rent, Manpower, CloudServices, DataProcessing,
	Research, Legal, Accounting, DigitalContent, Telecom, Financial,
	Insurance, Ecommerce,
}

// ParseJurisdiction maps a country name to its Jurisdiction. The match is
// exact: the engine deliberately rejects anything outside the closed set
// before any table lookup happens.
func ParseJurisdiction(name string) (Jurisdiction, error) {
	for _, j := range jurisdictions {
		if string(j) == name {
			return j, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJurisdiction, name)
}

// ParseServiceCategory maps a service type name to its ServiceCategory.
func ParseServiceCategory(name string) (ServiceCategory, error) {
	for _, c := range serviceCategories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// TaxRate is a statutory or treaty rate with its conditions.
type TaxRate struct {
	Rate              float64  `json:"rate"`
	CurrencyThreshold *float64 `json:"currency_threshold"`
	Currency          string   `json:"currency"`
	Notes             string   `json:"notes"`
}

// TaxForm describes a filing form required by a jurisdiction.
type TaxForm struct {
	FormNumber     string `json:"form_number"`
	Name           string `json:"name"`
	FilingDeadline string `json:"filing_deadline"`
	Notes          string `json:"notes"`
}

// DTAATreaty holds the negotiated rates and thresholds of a double tax
// avoidance agreement between two countries.
type DTAATreaty struct {
	Country1                   Jurisdiction       `json:"country1"`
	Country2                   Jurisdiction       `json:"country2"`
	EffectiveDate              time.Time          `json:"effective_date"`
	WithholdingRates           map[string]float64 `json:"withholding_rates"`
	PermanentEstablishmentDays int                `json:"permanent_establishment_days"`
	SpecialProvisions          []string           `json:"special_provisions"`
}

// ComplianceDocument is a static catalog entry for a document required
// alongside a filing.
type ComplianceDocument struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Required        bool   `json:"required"`
	Description     string `json:"description"`
	RetentionMonths int    `json:"retention_period_months"`
}

// PEThreshold is the permanent-establishment trigger for a region:
// either staying beyond Days or billing beyond Amount in local currency.
type PEThreshold struct {
	Days   int     `json:"days"`
	Amount float64 `json:"amount"`
}
