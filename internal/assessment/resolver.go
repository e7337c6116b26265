package assessment

import (
	"strconv"

	"geopolrisk/internal/dataset"
	"geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

// Resolver converts resource and country identifiers between their
// coded forms (HS commodity code, ISO numeric code) and their display
// names. Inputs may be either form; the resolver detects which was
// given. Preset region names pass through unchanged regardless of
// target form; request-scoped regions are expanded by the batch
// orchestrator, not here.
//
// Resolution is a pure lookup over the static mapping tables. A miss
// is a LookupError: the input is malformed and callers must not retry.
type Resolver struct {
	ref *dataset.Ref
}

// NewResolver creates a resolver over the loaded reference data.
func NewResolver(ref *dataset.Ref) *Resolver {
	return &Resolver{ref: ref}
}

// Resource resolves an identifier (name or HS code) to the full
// resource entry.
func (r *Resolver) Resource(id string) (domain.Resource, error) {
	if res, ok := r.ref.ResourceByName(id); ok {
		return res, nil
	}
	if code, err := strconv.Atoi(id); err == nil {
		if res, ok := r.ref.ResourceByHS(code); ok {
			return res, nil
		}
	}
	return domain.Resource{}, errors.NewLookupError(errors.KindResource, id)
}

// ResourceHS resolves an identifier to its HS commodity code.
func (r *Resolver) ResourceHS(id string) (int, error) {
	res, err := r.Resource(id)
	if err != nil {
		return 0, err
	}
	if res.HSCode == 0 {
		return 0, errors.NewLookupError(errors.KindResource, id)
	}
	return res.HSCode, nil
}

// ResourceName resolves an identifier to the resource display name.
func (r *Resolver) ResourceName(id string) (string, error) {
	res, err := r.Resource(id)
	if err != nil {
		return "", err
	}
	return res.Name, nil
}

// Country resolves an identifier (name or ISO code) to the full
// country entry. Region names do not resolve here; use CountryCode or
// CountryName when regions may appear.
func (r *Resolver) Country(id string) (domain.Country, error) {
	if c, ok := r.ref.CountryByName(id); ok {
		return c, nil
	}
	if code, err := strconv.Atoi(id); err == nil {
		if c, ok := r.ref.CountryByISO(code); ok {
			return c, nil
		}
	}
	return domain.Country{}, errors.NewLookupError(errors.KindCountry, id)
}

// CountryCode resolves an identifier to its ISO numeric code, rendered
// as a string so region names can pass through unchanged.
func (r *Resolver) CountryCode(id string) (string, error) {
	if r.ref.IsRegion(id) {
		return id, nil
	}
	c, err := r.Country(id)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(c.ISO), nil
}

// CountryName resolves an identifier to the country display name, with
// region passthrough.
func (r *Resolver) CountryName(id string) (string, error) {
	if r.ref.IsRegion(id) {
		return id, nil
	}
	c, err := r.Country(id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}
