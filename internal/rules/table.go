package rules

import (
	"regexp"
	"time"
)

// RateEntry pairs a tax type with its statutory rate. Rate sets are kept
// as ordered slices so that resolution output is deterministic across
// calls with identical input.
type RateEntry struct {
	Type TaxType
	Rate TaxRate
}

// Table is the engine's immutable rule set: statutory rates, treaties,
// EU membership, filing form catalogs, required-document catalogs,
// filing deadline constants, PE thresholds, and tax-id formats. It is
// built once at startup and is safe for unrestricted concurrent reads.
type Table struct {
	rates        map[Jurisdiction]map[ServiceCategory][]RateEntry
	treaties     map[[2]Jurisdiction]*DTAATreaty
	euMembers    map[string]struct{}
	forms        map[Jurisdiction]map[TaxType][]TaxForm
	documents    map[string]map[string][]ComplianceDocument
	peThresholds map[string]PEThreshold
	taxIDFormats map[string]map[string]*regexp.Regexp
}

// NewTable constructs the rule table. Rates and thresholds are
// illustrative reference data, not legal advice.
func NewTable() *Table {
	t := &Table{
		rates:        make(map[Jurisdiction]map[ServiceCategory][]RateEntry),
		treaties:     make(map[[2]Jurisdiction]*DTAATreaty),
		euMembers:    make(map[string]struct{}),
		forms:        make(map[Jurisdiction]map[TaxType][]TaxForm),
		documents:    make(map[string]map[string][]ComplianceDocument),
		peThresholds: make(map[string]PEThreshold),
		taxIDFormats: make(map[string]map[string]*regexp.Regexp),
	}
	t.loadTreaties()
	t.loadRates()
	t.loadForms()
	t.loadDocuments()
	t.loadThresholds()
	return t
}

// Rates returns the ordered rate set for a jurisdiction and category.
// A nil result means no entry is known for the pair, which resolves to
// "no applicable obligation" rather than an error.
func (t *Table) Rates(j Jurisdiction, c ServiceCategory) []RateEntry {
	byCategory, ok := t.rates[j]
	if !ok {
		return nil
	}
	entries := byCategory[c]
	out := make([]RateEntry, len(entries))
	copy(out, entries)
	return out
}

// Treaty looks up the DTAA between two countries. The lookup is
// order-independent: Treaty(a, b) and Treaty(b, a) return the same
// treaty.
func (t *Table) Treaty(a, b Jurisdiction) (*DTAATreaty, bool) {
	if treaty, ok := t.treaties[[2]Jurisdiction{a, b}]; ok {
		return treaty, true
	}
	treaty, ok := t.treaties[[2]Jurisdiction{b, a}]
	return treaty, ok
}

// IsEUMember reports whether a country participates in the EU VAT area.
func (t *Table) IsEUMember(country string) bool {
	_, ok := t.euMembers[country]
	return ok
}

// Forms returns the filing forms a jurisdiction requires for a tax type.
func (t *Table) Forms(j Jurisdiction, taxType TaxType) []TaxForm {
	byType, ok := t.forms[j]
	if !ok {
		return nil
	}
	forms := byType[taxType]
	out := make([]TaxForm, len(forms))
	copy(out, forms)
	return out
}

// RequiredDocuments returns the document catalog for a region/form pair,
// e.g. ("INDIA", "15CA") or ("EU", "VAT").
func (t *Table) RequiredDocuments(region, form string) []ComplianceDocument {
	byForm, ok := t.documents[region]
	if !ok {
		return nil
	}
	docs := byForm[form]
	out := make([]ComplianceDocument, len(docs))
	copy(out, docs)
	return out
}

// PEThreshold returns the permanent-establishment thresholds for a
// region code ("INDIA", "EU").
func (t *Table) PEThreshold(region string) (PEThreshold, bool) {
	threshold, ok := t.peThresholds[region]
	return threshold, ok
}

// TaxIDPattern returns the compiled format pattern for a country's tax
// identifier kind ("India"/"GST", "Singapore"/"UEN", ...).
func (t *Table) TaxIDPattern(country, kind string) (*regexp.Regexp, bool) {
	byKind, ok := t.taxIDFormats[country]
	if !ok {
		return nil, false
	}
	pattern, ok := byKind[kind]
	return pattern, ok
}

func (t *Table) loadTreaties() {
	t.treaties[[2]Jurisdiction{India, USA}] = &DTAATreaty{
		Country1:      India,
		Country2:      USA,
		EffectiveDate: time.Date(1991, time.January, 1, 0, 0, 0, 0, time.UTC),
		WithholdingRates: map[string]float64{
			"royalty":            15.0,
			"technical_services": 15.0,
			"interest":           15.0,
			"dividend":           15.0,
		},
		PermanentEstablishmentDays: 90,
		SpecialProvisions: []string{
			"Article 12 covers Royalties and Technical Services",
			"Reduced rates available with Tax Residency Certificate",
		},
	}
	t.treaties[[2]Jurisdiction{India, UK}] = &DTAATreaty{
		Country1:      India,
		Country2:      UK,
		EffectiveDate: time.Date(1994, time.January, 1, 0, 0, 0, 0, time.UTC),
		WithholdingRates: map[string]float64{
			"royalty":            15.0,
			"technical_services": 15.0,
			"interest":           15.0,
			"dividend":           15.0,
		},
		PermanentEstablishmentDays: 90,
		SpecialProvisions: []string{
			"Article 13 covers Royalties and Technical Services",
			"Reduced rates available with Tax Residency Certificate",
		},
	}
	t.treaties[[2]Jurisdiction{Singapore, France}] = &DTAATreaty{
		Country1:      Singapore,
		Country2:      France,
		EffectiveDate: time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC),
		WithholdingRates: map[string]float64{
			"royalty":            5.0,
			"technical_services": 0.0,
			"interest":           10.0,
			"dividend":           15.0,
		},
		PermanentEstablishmentDays: 183,
		SpecialProvisions: []string{
			"No withholding tax on technical services",
			"Digital services may be subject to DST",
		},
	}

	// UK excluded post-Brexit.
	for _, member := range []string{
		"Germany", "France", "Italy", "Spain", "Netherlands",
		"Belgium", "Austria", "Ireland", "Greece", "Portugal",
		"Finland", "Sweden", "Denmark", "Poland", "Czech Republic",
		"Romania", "Hungary", "Slovakia", "Croatia", "Bulgaria",
		"Lithuania", "Slovenia", "Latvia", "Estonia", "Cyprus",
		"Luxembourg", "Malta",
	} {
		t.euMembers[member] = struct{}{}
	}
}

func (t *Table) loadRates() {
	t.rates[India] = map[ServiceCategory][]RateEntry{
		Technical: {
			{TDS, TaxRate{Rate: 10.0, Currency: "USD", Notes: "Section 194J applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
			{RCM, TaxRate{Rate: 18.0, Currency: "USD", Notes: "For foreign vendors"}},
		},
		Consulting: {
			{TDS, TaxRate{Rate: 10.0, Currency: "USD", Notes: "Section 194J applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		CloudServices: {
			{TDS, TaxRate{Rate: 2.0, Currency: "USD", Notes: "Section 194C applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
			{RCM, TaxRate{Rate: 18.0, Currency: "USD", Notes: "For foreign vendors"}},
		},
		DataProcessing: {
			{TDS, TaxRate{Rate: 2.0, Currency: "USD", Notes: "Section 194C applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		Research: {
			{TDS, TaxRate{Rate: 10.0, Currency: "USD", Notes: "Section 194J applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		Legal: {
			{TDS, TaxRate{Rate: 10.0, Currency: "USD", Notes: "Section 194J applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		Accounting: {
			{TDS, TaxRate{Rate: 10.0, Currency: "USD", Notes: "Section 194J applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		DigitalContent: {
			{TDS, TaxRate{Rate: 2.0, Currency: "USD", Notes: "Section 194C applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
			{RCM, TaxRate{Rate: 18.0, Currency: "USD", Notes: "For foreign vendors"}},
		},
		Telecom: {
			{TDS, TaxRate{Rate: 2.0, Currency: "USD", Notes: "Section 194C applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		Financial: {
			{TDS, TaxRate{Rate: 10.0, Currency: "USD", Notes: "Section 194J applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD", Notes: "Certain services exempt"}},
		},
		Insurance: {
			{TDS, TaxRate{Rate: 5.0, Currency: "USD", Notes: "Section 194D applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
		Ecommerce: {
			{TDS, TaxRate{Rate: 1.0, Currency: "USD", Notes: "Section 194-O applicable"}},
			{GST, TaxRate{Rate: 18.0, Currency: "USD"}},
		},
	}

	t.rates[France] = map[ServiceCategory][]RateEntry{
		Technical: {
			{TVA, TaxRate{Rate: 20.0, Currency: "USD", Notes: "Standard French VAT rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "For non-EU residents"}},
		},
		CloudServices: {
			{TVA, TaxRate{Rate: 20.0, Currency: "USD", Notes: "Digital services VAT"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "For non-EU digital services"}},
		},
		DataProcessing: {
			{TVA, TaxRate{Rate: 20.0, Currency: "USD", Notes: "Standard French VAT rate"}},
		},
		Research: {
			{TVA, TaxRate{Rate: 20.0, Currency: "USD", Notes: "Standard French VAT rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "For non-EU R&D services"}},
		},
		DigitalContent: {
			{TVA, TaxRate{Rate: 20.0, Currency: "USD", Notes: "Digital services VAT"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "For non-EU digital content"}},
		},
		Financial: {
			{TVA, TaxRate{Rate: 0.0, Currency: "USD", Notes: "Financial services exempt from VAT"}},
		},
		Insurance: {
			{TVA, TaxRate{Rate: 0.0, Currency: "USD", Notes: "Insurance services exempt from VAT"}},
		},
		Ecommerce: {
			{TVA, TaxRate{Rate: 20.0, Currency: "USD", Notes: "Digital services VAT"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "For non-EU e-commerce"}},
		},
	}

	t.rates[Singapore] = map[ServiceCategory][]RateEntry{
		Technical: {
			{GST, TaxRate{Rate: 8.0, Currency: "USD", Notes: "Standard Singapore GST rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "Technical service withholding"}},
		},
		CloudServices: {
			{GST, TaxRate{Rate: 8.0, Currency: "USD", Notes: "Standard Singapore GST rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "Digital service withholding"}},
		},
		DataProcessing: {
			{GST, TaxRate{Rate: 8.0, Currency: "USD", Notes: "Standard Singapore GST rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "Technical service withholding"}},
		},
		Research: {
			{GST, TaxRate{Rate: 8.0, Currency: "USD", Notes: "Standard Singapore GST rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "Technical service withholding"}},
		},
		DigitalContent: {
			{GST, TaxRate{Rate: 8.0, Currency: "USD", Notes: "Standard Singapore GST rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "Digital service withholding"}},
		},
		Financial: {
			{GST, TaxRate{Rate: 0.0, Currency: "USD", Notes: "Financial services exempt from GST"}},
		},
		Insurance: {
			{GST, TaxRate{Rate: 0.0, Currency: "USD", Notes: "Insurance services exempt from GST"}},
		},
		Ecommerce: {
			{GST, TaxRate{Rate: 8.0, Currency: "USD", Notes: "Standard Singapore GST rate"}},
			{Withholding, TaxRate{Rate: 15.0, Currency: "USD", Notes: "Digital service withholding"}},
		},
	}
}

func (t *Table) loadForms() {
	t.forms[India] = map[TaxType][]TaxForm{
		TDS: {
			{
				FormNumber:     "26Q",
				Name:           "TDS Return for Non-salary Payments",
				FilingDeadline: "Quarterly",
				Notes:          "Due within 30 days from end of quarter",
			},
			{
				FormNumber:     "15CA",
				Name:           "Foreign Remittance Certificate",
				FilingDeadline: "Before remittance",
				Notes:          "Required for all foreign remittances",
			},
			{
				FormNumber:     "15CB",
				Name:           "CA Certificate for Foreign Remittance",
				FilingDeadline: "Before remittance",
				Notes:          "Required if payment exceeds INR 5 lakhs",
			},
		},
	}
	t.forms[USA] = map[TaxType][]TaxForm{
		Withholding: {
			{
				FormNumber:     "1042-S",
				Name:           "Foreign Person's U.S. Source Income",
				FilingDeadline: "March 15",
				Notes:          "Annual filing required",
			},
			{
				FormNumber:     "W-8BEN",
				Name:           "Certificate of Foreign Status",
				FilingDeadline: "Before payment",
				Notes:          "Valid for 3 years",
			},
		},
	}
	t.forms[UK] = map[TaxType][]TaxForm{
		VAT: {
			{
				FormNumber:     "VAT Return",
				Name:           "Value Added Tax Return",
				FilingDeadline: "Quarterly",
				Notes:          "Due one month and seven days after quarter end",
			},
		},
		CIS: {
			{
				FormNumber:     "CIS300",
				Name:           "Contractor Monthly Return",
				FilingDeadline: "Monthly",
				Notes:          "Due by 19th of each month",
			},
		},
		Withholding: {
			{
				FormNumber:     "CT61",
				Name:           "Return of Income Tax",
				FilingDeadline: "Quarterly",
				Notes:          "For payments to non-residents",
			},
		},
	}
	t.forms[Germany] = map[TaxType][]TaxForm{
		MWST: {
			{
				FormNumber:     "UStVA",
				Name:           "Umsatzsteuer-Voranmeldung",
				FilingDeadline: "Monthly/Quarterly",
				Notes:          "VAT advance return",
			},
			{
				FormNumber:     "ZM",
				Name:           "Zusammenfassende Meldung",
				FilingDeadline: "Monthly",
				Notes:          "EU sales listing",
			},
		},
	}
	t.forms[France] = map[TaxType][]TaxForm{
		TVA: {
			{
				FormNumber:     "CA3",
				Name:           "TVA Return",
				FilingDeadline: "Monthly",
				Notes:          "Standard VAT return",
			},
			{
				FormNumber:     "DES",
				Name:           "Declaration Européenne de Services",
				FilingDeadline: "Monthly",
				Notes:          "EU services declaration",
			},
		},
	}
	t.forms[Singapore] = map[TaxType][]TaxForm{
		GST: {
			{
				FormNumber:     "F5",
				Name:           "GST Return",
				FilingDeadline: "Quarterly",
				Notes:          "Due one month after quarter end",
			},
		},
		Withholding: {
			{
				FormNumber:     "S45",
				Name:           "Withholding Tax Return",
				FilingDeadline: "Within 30 days",
				Notes:          "Due within 30 days of payment",
			},
		},
	}
}

func (t *Table) loadDocuments() {
	t.documents["INDIA"] = map[string][]ComplianceDocument{
		"15CA": {
			{
				Name:            "Invoice",
				Type:            "Transaction",
				Required:        true,
				Description:     "Original invoice from vendor",
				RetentionMonths: 96,
			},
			{
				Name:            "Tax Residency Certificate",
				Type:            "Tax",
				Required:        true,
				Description:     "Valid for current financial year",
				RetentionMonths: 96,
			},
			{
				Name:            "Service Agreement",
				Type:            "Contract",
				Required:        true,
				Description:     "Master service agreement or SOW",
				RetentionMonths: 96,
			},
		},
	}
	t.documents["USA"] = map[string][]ComplianceDocument{
		"1042-S": {
			{
				Name:            "W-8BEN/W-8BEN-E",
				Type:            "Tax",
				Required:        true,
				Description:     "Valid for 3 years from signing",
				RetentionMonths: 84,
			},
			{
				Name:            "Invoice",
				Type:            "Transaction",
				Required:        true,
				Description:     "Original invoice with tax breakdown",
				RetentionMonths: 84,
			},
		},
	}
	t.documents["EU"] = map[string][]ComplianceDocument{
		"VAT": {
			{
				Name:            "VAT Invoice",
				Type:            "Transaction",
				Required:        true,
				Description:     "Invoice with VAT registration numbers",
				RetentionMonths: 120,
			},
			{
				Name:            "Proof of Service",
				Type:            "Transaction",
				Required:        true,
				Description:     "Evidence of B2B service provision",
				RetentionMonths: 120,
			},
		},
	}
}

func (t *Table) loadThresholds() {
	t.peThresholds["INDIA"] = PEThreshold{Days: 90, Amount: 500000}
	t.peThresholds["EU"] = PEThreshold{Days: 183, Amount: 100000}

	t.taxIDFormats["India"] = map[string]*regexp.Regexp{
		"GST": regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z]{1}[A-Z\d]{1}[Z]{1}[A-Z\d]{1}$`),
		"PAN": regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]{1}$`),
	}
	t.taxIDFormats["Singapore"] = map[string]*regexp.Regexp{
		"UEN": regexp.MustCompile(`^\d{9}[A-Z]$`),
		"GST": regexp.MustCompile(`^[MF]\d{8}[A-Z]$`),
	}
}
