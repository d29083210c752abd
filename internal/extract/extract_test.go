package extract

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/oc-consolidator/internal/headers"
	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
)

var fixedToday = time.Date(2024, time.June, 1, 15, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedToday }

func text(s string) sheet.Cell { return sheet.TextCell(s) }

func num(n float64) sheet.Cell { return sheet.NumberCell(n) }

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name   string
		cell   sheet.Cell
		want   string
		parsed bool
	}{
		{"chilean dashes", text("05-03-2024"), "2024-03-05", true},
		{"chilean slashes single digits", text("5/3/2024"), "2024-03-05", true},
		{"with time of day", text("05/03/2024 10:30"), "2024-03-05", true},
		{"iso", text("2024-03-05"), "2024-03-05", true},
		{"excel serial", num(45356), "2024-03-05", true},
		{"impossible day", text("31-02-2024"), "2024-06-01", false},
		{"month out of range", text("05-13-2024"), "2024-06-01", false},
		{"garbage", text("pronto"), "2024-06-01", false},
		{"empty", sheet.Cell{}, "2024-06-01", false},
		{"non-positive serial", num(0), "2024-06-01", false},
		{"serial exported as text", text("45356"), "2024-03-05", true},
		{"serial text with time fraction", text(" 45356.75 "), "2024-03-05", true},
		{"serial text out of range", text("12345"), "2024-06-01", false},
		{"short digit text", text("2024"), "2024-06-01", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, parsed := NormalizeDate(tc.cell, false, fixedToday)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.parsed, parsed)
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		name string
		cell sheet.Cell
		want string
		ok   bool
	}{
		{"chilean text", text("$1.234.567,89"), "1234567.89", true},
		{"thousands only", text("CLP 50.000"), "50000", true},
		{"spaces and symbol", text(" $ 1 500 "), "1500", true},
		{"negative", text("-2.000"), "-2000", true},
		{"native number", num(50000), "50000", true},
		{"native fraction", num(12.5), "12.5", true},
		{"garbage", text("sin monto"), "0", false},
		{"dollar code", text("US$ 1.200,5"), "1200.5", true},
		{"trailing code", text("1.500,50 clp"), "1500.5", true},
		{"installments note", text("50.000 (2 cuotas)"), "0", false},
		{"tax note", text("$1.000 + IVA 19%"), "0", false},
		{"digit after words", text("N/A 3"), "0", false},
		{"two amounts", text("1.000 - 2.000"), "0", false},
		{"lonely minus", text("-"), "0", false},
		{"empty", sheet.Cell{}, "0", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeAmount(tc.cell)
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Acme", NormalizeText(text("  Acme ")))
	assert.Equal(t, "100", NormalizeText(num(100)))
	assert.Equal(t, "", NormalizeText(sheet.Cell{}))
}

func mainGrid() (sheet.Grid, headers.Mapping) {
	grid := sheet.Grid{Rows: []sheet.Row{
		{text("N° OC"), text("Fecha"), text("Proveedor"), text("Monto"), text("Condición de pago")},
		{text("OC-1"), text("05-03-2024"), text("Acme"), num(50000), text("30 días")},
		{},
		{text("OC-2"), text("??"), text("Beta"), text("$1.500,50")},
		{text(""), text("05-03-2024"), text("Gamma"), num(10)},
		{text("OC-4"), text("05-03-2024"), text(""), num(0)},
		{text("OC-5"), num(45356), text("Delta"), text("abc")},
	}}
	return grid, headers.MapColumns(grid.Rows[0], headers.MainDictionary)
}

func TestExtractMain(t *testing.T) {
	grid, mapping := mainGrid()

	result, err := New(WithClock(fixedClock)).Main(context.Background(), grid, mapping, 1)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	first := result.Records[0]
	assert.Equal(t, "OC-1", first.OrderNumber)
	assert.Equal(t, "2024-03-05", first.Date)
	assert.Equal(t, "Acme", first.SupplierName)
	assert.Equal(t, "30 días", first.PaymentTerms)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, 2, first.SourceRow)
	assert.Equal(t, "", first.OrderName, "unmapped field reads as empty")

	second := result.Records[1]
	assert.Equal(t, "OC-2", second.OrderNumber)
	assert.Equal(t, "2024-06-01", second.Date)
	assert.Equal(t, "1500.5", second.Amount.String())

	assert.Equal(t, 5, result.Scanned)
	assert.Equal(t, 1, result.DefaultedDates)

	require.Len(t, result.Rejected, 3)
	assert.Equal(t, 5, result.Rejected[0].Row)
	assert.Equal(t, ReasonMissingOrderNumber, result.Rejected[0].Reason)
	assert.Equal(t, 6, result.Rejected[1].Row)
	assert.Equal(t, ReasonMissingSupplier+"; "+ReasonNonPositiveAmount, result.Rejected[1].Reason)
	assert.Equal(t, 7, result.Rejected[2].Row)
	assert.Equal(t, ReasonNonPositiveAmount, result.Rejected[2].Reason)
}

func TestExtractDetail(t *testing.T) {
	grid := sheet.Grid{Rows: []sheet.Row{
		{text("Reporte")},
		{text("N° OC"), text("CC"), text("Cuenta"), text("Descripción")},
		{text("OC-100"), text("CC-01"), text("Materiales"), text("Materials")},
		{text("OC-100"), text(" CC-01 "), text("Materiales"), text("Rebar")},
		{text("OC-101"), text(""), text("Materiales")},
		{num(102), text("CC-02")},
	}}
	mapping := headers.MapColumns(grid.Rows[1], headers.DetailDictionary)
	require.NoError(t, mapping.Require(headers.DetailRequired...))

	result, err := New().Detail(context.Background(), grid, mapping, 2)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "CC-01", result.Records[1].CostCenterCode)
	assert.Equal(t, "Rebar", result.Records[1].Description)
	assert.Equal(t, "102", result.Records[2].OrderNumber)
	assert.Equal(t, "", result.Records[2].CostAccountName)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 5, result.Rejected[0].Row)
	assert.Equal(t, ReasonMissingCostCenterCode, result.Rejected[0].Reason)
}

func TestExtractStopsOnCancelledContext(t *testing.T) {
	grid, mapping := mainGrid()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Main(ctx, grid, mapping, 1)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = New().Detail(ctx, grid, mapping, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractStartRowPastEnd(t *testing.T) {
	grid, mapping := mainGrid()
	result, err := New().Main(context.Background(), grid, mapping, 50)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.Scanned)
}
