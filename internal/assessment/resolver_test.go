package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopolrisk/internal/dataset"
	apperrors "geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	ref := dataset.NewStaticRef(dataset.StaticData{
		Resources: []domain.Resource{
			{Name: "Cobalt", HSCode: 810520, Sheet: "Cobalt"},
			{Name: "Rare earths", Sheet: "Rare earths"},
		},
		Countries: []domain.Country{
			{Name: "Germany", ISO: 276},
		},
	})
	return NewResolver(ref)
}

func TestResolverResource(t *testing.T) {
	r := newTestResolver(t)

	t.Run("by name", func(t *testing.T) {
		res, err := r.Resource("Cobalt")
		require.NoError(t, err)
		assert.Equal(t, 810520, res.HSCode)
	})

	t.Run("by HS code", func(t *testing.T) {
		res, err := r.Resource("810520")
		require.NoError(t, err)
		assert.Equal(t, "Cobalt", res.Name)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := r.Resource("Unobtainium")
		require.Error(t, err)
		assert.True(t, apperrors.IsLookup(err))
	})

	t.Run("name without HS code has no code form", func(t *testing.T) {
		name, err := r.ResourceName("Rare earths")
		require.NoError(t, err)
		assert.Equal(t, "Rare earths", name)

		_, err = r.ResourceHS("Rare earths")
		require.Error(t, err)
		assert.True(t, apperrors.IsLookup(err))
	})
}

func TestResolverCountry(t *testing.T) {
	r := newTestResolver(t)

	t.Run("by name", func(t *testing.T) {
		c, err := r.Country("Germany")
		require.NoError(t, err)
		assert.Equal(t, 276, c.ISO)
	})

	t.Run("by ISO code", func(t *testing.T) {
		c, err := r.Country("276")
		require.NoError(t, err)
		assert.Equal(t, "Germany", c.Name)
	})

	t.Run("code form round trip", func(t *testing.T) {
		code, err := r.CountryCode("Germany")
		require.NoError(t, err)
		assert.Equal(t, "276", code)

		name, err := r.CountryName("276")
		require.NoError(t, err)
		assert.Equal(t, "Germany", name)
	})

	t.Run("region names pass through", func(t *testing.T) {
		code, err := r.CountryCode("EU")
		require.NoError(t, err)
		assert.Equal(t, "EU", code)

		name, err := r.CountryName("EU")
		require.NoError(t, err)
		assert.Equal(t, "EU", name)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := r.Country("Narnia")
		require.Error(t, err)
		assert.True(t, apperrors.IsLookup(err))
	})
}
