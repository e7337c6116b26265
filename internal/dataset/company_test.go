package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

func newCompanyRef() *Ref {
	return NewStaticRef(StaticData{
		Resources: []domain.Resource{{Name: "Cobalt", HSCode: 810520, Sheet: "Cobalt"}},
		Countries: []domain.Country{
			{Name: "Congo", ISO: 180},
			{Name: "Australia", ISO: 36},
		},
		WGI: map[int]map[int]float64{180: {2020: 0.2}},
	})
}

func writeTemplate(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), CompanySheet))

	header := []interface{}{"Metal", "Country of Origin", "Quantity (kg)", "Value (USD)", "Year"}
	require.NoError(t, f.SetSheetRow(CompanySheet, "A1", &header))
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(CompanySheet, cell, &rows[i]))
	}

	path := filepath.Join(t.TempDir(), "company.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadCompanyTrade(t *testing.T) {
	ref := newCompanyRef()
	path := writeTemplate(t, [][]interface{}{
		{"Cobalt", "Congo", 2, 5, 2020},
		{"Cobalt", "Australia", 1, 3, 2020},
	})

	flows, err := ref.LoadCompanyTrade(path, CompanySheet, discardLogger())
	require.NoError(t, err)
	require.Len(t, flows, 2)

	congo := flows[0]
	assert.Equal(t, domain.CompanyReporterCode, congo.ReporterCode)
	assert.Equal(t, domain.CompanyReporterName, congo.ReporterName)
	assert.Equal(t, 180, congo.PartnerCode)
	assert.Equal(t, 810520, congo.CmdCode)
	// Template figures are recorded in thousands.
	assert.InDelta(t, 2000, congo.Qty, 1e-9)
	assert.InDelta(t, 5000, congo.CIFValue, 1e-9)
	assert.InDelta(t, 0.2, congo.PartnerWGI, 1e-9)
	assert.False(t, congo.WGIMissing)

	// Australia has no indicator in the fixture.
	assert.True(t, flows[1].WGIMissing)
	assert.InDelta(t, domain.NeutralWGI, flows[1].WGI(), 1e-9)
}

func TestLoadCompanyTradeValidation(t *testing.T) {
	ref := newCompanyRef()

	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{name: "unknown metal", rows: [][]interface{}{{"Vibranium", "Congo", 1, 1, 2020}}},
		{name: "unknown origin", rows: [][]interface{}{{"Cobalt", "Atlantis", 1, 1, 2020}}},
		{name: "non numeric quantity", rows: [][]interface{}{{"Cobalt", "Congo", "lots", 1, 2020}}},
		{name: "non numeric year", rows: [][]interface{}{{"Cobalt", "Congo", 1, 1, "soon"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemplate(t, tt.rows)
			_, err := ref.LoadCompanyTrade(path, CompanySheet, discardLogger())
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestLoadCompanyTradeSkipsBlankRows(t *testing.T) {
	ref := newCompanyRef()
	path := writeTemplate(t, [][]interface{}{
		{"Cobalt", "Congo", 2, 5, 2020},
		{"", "", "", "", ""},
	})

	flows, err := ref.LoadCompanyTrade(path, CompanySheet, discardLogger())
	require.NoError(t, err)
	assert.Len(t, flows, 1)
}
