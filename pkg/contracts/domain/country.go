package domain

// Country identifies an economic entity by its canonical ISO numeric
// code and display name.
type Country struct {
	Name string `json:"name" db:"name" validate:"required"`
	ISO  int    `json:"iso" db:"iso" validate:"required,min=1"`
}

// Region is a named set of member countries aggregated as a single
// reporting unit. Members are country display names; they must resolve
// against the reference data before a run starts.
type Region struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members" validate:"required,min=1,dive,required"`
}
