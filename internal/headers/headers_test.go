package headers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
)

func textRow(values ...string) sheet.Row {
	row := make(sheet.Row, len(values))
	for i, v := range values {
		row[i] = sheet.TextCell(v)
	}
	return row
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  número  oc ":   "NUMERO OC",
		"Razón Social":    "RAZON SOCIAL",
		"CONDICIÓN\tPAGO": "CONDICION PAGO",
		"N° OC":           "N° OC",
		"":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestMapColumnsOrderNumberSynonyms(t *testing.T) {
	for _, label := range []string{"N° OC", "NUMERO OC", "No OC", "Número OC", "n oc"} {
		t.Run(label, func(t *testing.T) {
			mapping := MapColumns(textRow("Proveedor", label, "Monto"), MainDictionary)

			col, ok := mapping.Index(FieldOrderNumber)
			require.True(t, ok)
			assert.Equal(t, 1, col)
			assert.NoError(t, mapping.Require(MainRequired...))
		})
	}
}

func TestMapColumnsIsExactNotSubstring(t *testing.T) {
	mapping := MapColumns(textRow("MONTO APROXIMADO", "PROVEEDOR PRINCIPAL", "OC"), MainDictionary)

	_, ok := mapping.Index(FieldAmount)
	assert.False(t, ok)
	_, ok = mapping.Index(FieldSupplierName)
	assert.False(t, ok)
	_, ok = mapping.Index(FieldOrderNumber)
	assert.True(t, ok)
}

func TestMapColumnsFirstMatchingColumnWins(t *testing.T) {
	mapping := MapColumns(textRow("TOTAL", "MONTO", "PROVEEDOR"), MainDictionary)
	col, _ := mapping.Index(FieldAmount)
	assert.Equal(t, 0, col)
}

func TestRequireNamesMissingFieldsInOrder(t *testing.T) {
	mapping := MapColumns(textRow("PROVEEDOR", "FECHA"), MainDictionary)

	err := mapping.Require(MainRequired...)
	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []Field{FieldOrderNumber, FieldAmount}, missing.Fields)
	assert.Equal(t, "required columns not found: orderNumber, amount", err.Error())
}

func TestLocateSkipsBannerRows(t *testing.T) {
	grid := sheet.Grid{Rows: []sheet.Row{
		textRow("CONSTRUCTORA EJEMPLO S.A."),
		textRow("Reporte de órdenes de compra", "", "2024"),
		{},
		textRow("N° OC", "Nombre OC", "Fecha", "Obra", "Proveedor", "Condición de pago", "Monto"),
		textRow("OC-1", "Cemento", "05-03-2024", "Torre A", "Acme", "30 días", "1000"),
	}}

	idx, err := Locate(grid, MainDictionary, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestLocateNeedsHalfTheGroups(t *testing.T) {
	// Four of seven main groups: ceil(7/2) = 4 qualifies.
	grid := sheet.Grid{Rows: []sheet.Row{
		textRow("OC", "PROVEEDOR", "MONTO", "FECHA"),
	}}
	idx, err := Locate(grid, MainDictionary, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	// Three of seven does not.
	grid = sheet.Grid{Rows: []sheet.Row{
		textRow("OC", "PROVEEDOR", "MONTO", "OTRA COSA"),
	}}
	_, err = Locate(grid, MainDictionary, 20)
	var notFound *HeaderNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 1, notFound.ScannedRows)
	assert.Equal(t, 7, notFound.Groups)
}

func TestLocateNeedsThreeNonEmptyCells(t *testing.T) {
	// Two of four detail groups match, but the row has only two cells.
	grid := sheet.Grid{Rows: []sheet.Row{
		textRow("N° OC", "CC"),
		textRow("N° OC", "CC", "Cuenta"),
	}}
	idx, err := Locate(grid, DetailDictionary, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestLocateScanWindow(t *testing.T) {
	rows := make([]sheet.Row, 25)
	for i := range rows {
		rows[i] = textRow("x", "y", "z")
	}
	rows[21] = textRow("N° OC", "CC", "CUENTA", "DESCRIPCION")
	grid := sheet.Grid{Rows: rows}

	_, err := Locate(grid, DetailDictionary, 20)
	var notFound *HeaderNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 20, notFound.ScannedRows)

	idx, err := Locate(grid, DetailDictionary, 25)
	require.NoError(t, err)
	assert.Equal(t, 21, idx)
}

func TestLocateEmptyGrid(t *testing.T) {
	_, err := Locate(sheet.Grid{}, MainDictionary, 20)
	var notFound *HeaderNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestDictionaryFields(t *testing.T) {
	assert.Equal(t,
		[]Field{FieldOrderNumber, FieldCostCenterCode, FieldCostAccountName, FieldDescription},
		DetailDictionary.Fields())
}
