package domain

// AssessmentRequest describes one batch run: the cross-product of
// periods, countries (or regions) and resources to assess. Countries
// and resources accept either coded identifiers or display names.
//
// Regions map a region name to its member country names. Members must
// already exist as valid countries in the reference data; a region with
// an unresolvable member rejects the whole request before the run
// starts.
type AssessmentRequest struct {
	Periods   []int               `json:"periods" validate:"required,min=1,dive,min=1900,max=2100"`
	Countries []string            `json:"countries" validate:"required,min=1,dive,required"`
	Resources []string            `json:"resources" validate:"required,min=1,dive,required"`
	Regions   map[string][]string `json:"regions,omitempty" validate:"omitempty,dive,min=1,dive,required"`
}

// AssessmentResponse is the HTTP shape of a completed batch run.
type AssessmentResponse struct {
	RunID   string       `json:"run_id"`
	Records []RiskRecord `json:"records"`
}
