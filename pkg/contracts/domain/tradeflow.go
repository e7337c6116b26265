package domain

// TradeFlow is one bilateral trade observation: the reporter imported
// Qty (thousand kg) of the commodity from the partner during the period,
// valued at CIFValue (thousand USD). PartnerWGI carries the partner's
// political stability indicator for that year, normalized to [0,1].
//
// Sentinel forms in the source data ("NA", blank, null) are resolved at
// load time: quantities and values default to zero, a missing WGI is
// flagged so aggregation can substitute the neutral value.
type TradeFlow struct {
	Period       int     `json:"period" db:"period"`
	ReporterCode int     `json:"reporter_code" db:"reporter_code"`
	ReporterISO  string  `json:"reporter_iso" db:"reporter_iso"`
	ReporterName string  `json:"reporter_name" db:"reporter_name"`
	PartnerCode  int     `json:"partner_code" db:"partner_code"`
	PartnerISO   string  `json:"partner_iso" db:"partner_iso"`
	PartnerName  string  `json:"partner_name" db:"partner_name"`
	CmdCode      int     `json:"cmd_code" db:"cmd_code"`
	Qty          float64 `json:"qty" db:"qty"`
	CIFValue     float64 `json:"cifvalue" db:"cifvalue"`
	PartnerWGI   float64 `json:"partner_wgi" db:"partner_wgi"`
	WGIMissing   bool    `json:"wgi_missing,omitempty"`
}

// NeutralWGI is substituted when the partner's stability indicator is
// absent from the reference data.
const NeutralWGI = 0.5

// WGI returns the partner stability weight, substituting the neutral
// value when the indicator is missing.
func (f TradeFlow) WGI() float64 {
	if f.WGIMissing {
		return NeutralWGI
	}
	return f.PartnerWGI
}

// CompanyReporterCode is the synthetic reporter code used for
// company-level trade ingested from the template workbook.
const CompanyReporterCode = 999

// CompanyReporterName labels company-level trade rows.
const CompanyReporterName = "Company"
