package assessment

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopolrisk/internal/dataset"
	apperrors "geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

func TestHHIEngineCompute(t *testing.T) {
	engine := NewHHIEngine(newTestRef(), discardLogger())

	t.Run("concentration of a 70/30 split", func(t *testing.T) {
		result, err := engine.Compute("Cobalt", 2020, []string{"Congo"})
		require.NoError(t, err)
		assert.InDelta(t, 0.58, result.HHI, 1e-9)
		assert.InDelta(t, 70, result.Quantity, 1e-9)
	})

	t.Run("scope quantity for a multi member tuple", func(t *testing.T) {
		result, err := engine.Compute("Cobalt", 2020, []string{"Australia", "Congo"})
		require.NoError(t, err)
		assert.InDelta(t, 0.58, result.HHI, 1e-9)
		assert.InDelta(t, 100, result.Quantity, 1e-9)
	})

	t.Run("non producing scope keeps global concentration", func(t *testing.T) {
		result, err := engine.Compute("Cobalt", 2020, []string{"Germany"})
		require.NoError(t, err)
		assert.InDelta(t, 0.58, result.HHI, 1e-9)
		assert.Zero(t, result.Quantity)
	})

	t.Run("withdrawn rows are excluded", func(t *testing.T) {
		// The fixture carries a withdrawn 1000 t row; including it
		// would collapse the HHI towards 1.
		result, err := engine.Compute("Cobalt", 2020, []string{"Congo"})
		require.NoError(t, err)
		assert.InDelta(t, 0.58, result.HHI, 1e-9)
	})

	t.Run("missing year degrades to zero", func(t *testing.T) {
		result, err := engine.Compute("Cobalt", 2050, []string{"Congo"})
		require.NoError(t, err)
		assert.Zero(t, result.HHI)
		assert.Zero(t, result.Quantity)
	})

	t.Run("unknown resource degrades to zero", func(t *testing.T) {
		result, err := engine.Compute("Unobtainium", 2020, []string{"Congo"})
		require.NoError(t, err)
		assert.Zero(t, result.HHI)
		assert.Zero(t, result.Quantity)
	})

	t.Run("kilogram tables normalize to tons", func(t *testing.T) {
		result, err := engine.Compute("Bauxite", 2020, []string{"Australia"})
		require.NoError(t, err)
		assert.InDelta(t, 5.0, result.Quantity, 1e-9)
	})

	t.Run("gas volumes normalize to ton equivalents", func(t *testing.T) {
		result, err := engine.Compute("Natural gas", 2020, []string{"Australia"})
		require.NoError(t, err)
		assert.InDelta(t, 0.008, result.Quantity, 1e-9)
	})

	t.Run("unrecognized unit is a validation error", func(t *testing.T) {
		_, err := engine.Compute("Helium", 2020, []string{"Canada"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

// newConcentrationEngine builds an engine over a single Tin table with
// the given per-country production quantities.
func newConcentrationEngine(quantities map[string]float64) *HHIEngine {
	rows := make([]domain.ProductionRow, 0, len(quantities))
	code := 1
	for country, qty := range quantities {
		rows = append(rows, domain.ProductionRow{
			Country:     country,
			CountryCode: strconv.Itoa(code),
			Quantities:  map[int]float64{2020: qty},
		})
		code++
	}
	ref := dataset.NewStaticRef(dataset.StaticData{
		Resources: []domain.Resource{{Name: "Tin", HSCode: 800110, Sheet: "Tin"}},
		Production: map[string]*domain.ProductionTable{
			"Tin": {
				Resource: "Tin",
				Unit:     domain.UnitMetricTons,
				Years:    []int{2020},
				Rows:     rows,
			},
		},
	})
	return NewHHIEngine(ref, discardLogger())
}

func TestHHISingleProducer(t *testing.T) {
	// A monopoly producer concentrates everything: the index is
	// exactly one, independent of the quantity.
	for _, qty := range []float64{1, 250, 1e6} {
		engine := newConcentrationEngine(map[string]float64{"Indonesia": qty})
		result, err := engine.Compute("Tin", 2020, []string{"Indonesia"})
		require.NoError(t, err)
		assert.Equal(t, 1.0, result.HHI)
	}
}

func TestHHIEqualProducers(t *testing.T) {
	names := []string{"Indonesia", "Peru", "Bolivia", "China", "Myanmar", "Brazil"}
	for n := 2; n <= len(names); n++ {
		quantities := make(map[string]float64, n)
		for _, name := range names[:n] {
			quantities[name] = 100
		}
		engine := newConcentrationEngine(quantities)
		result, err := engine.Compute("Tin", 2020, []string{names[0]})
		require.NoError(t, err)
		assert.InDelta(t, 1.0/float64(n), result.HHI, 1e-12, "n=%d", n)
	}
}

func TestNormalizeQuantity(t *testing.T) {
	tests := []struct {
		name    string
		qty     float64
		unit    string
		want    float64
		wantErr bool
	}{
		{name: "metric tons pass through", qty: 42, unit: "metr. t", want: 42},
		{name: "kilograms divide by thousand", qty: 5000, unit: "kg", want: 5},
		{name: "million cubic meters convert", qty: 10, unit: "Mio m3", want: 0.008},
		{name: "unknown unit rejected", qty: 1, unit: "barrels", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeQuantity(tt.qty, tt.unit)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
