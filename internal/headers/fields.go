package headers

// Field is a canonical column identifier.
type Field string

const (
	FieldOrderNumber     Field = "orderNumber"
	FieldOrderName       Field = "orderName"
	FieldDate            Field = "date"
	FieldCostCenterLabel Field = "costCenterLabel"
	FieldSupplierName    Field = "supplierName"
	FieldPaymentTerms    Field = "paymentTerms"
	FieldAmount          Field = "amount"

	FieldCostCenterCode  Field = "costCenterCode"
	FieldCostAccountName Field = "costAccountName"
	FieldDescription     Field = "description"
)

// Synonyms is one header synonym group: every spelling accepted for a field.
// Spellings are compared after Normalize, so case, accents and spacing do
// not matter.
type Synonyms struct {
	Field    Field
	Spelling []string
}

// Dictionary is an ordered list of synonym groups.
type Dictionary []Synonyms

// Fields returns the fields of the dictionary in order.
func (d Dictionary) Fields() []Field {
	fields := make([]Field, len(d))
	for i, group := range d {
		fields[i] = group.Field
	}
	return fields
}

var orderNumberSpellings = []string{
	"N° OC", "Nº OC", "N OC", "NO OC", "NO. OC", "N. OC", "NRO OC", "NRO. OC",
	"NUMERO OC", "NÚMERO OC", "NUMERO DE OC", "NUMERO ORDEN", "NUMERO ORDEN DE COMPRA",
	"OC", "ORDEN DE COMPRA", "N° ORDEN DE COMPRA",
}

// MainDictionary describes the main order spreadsheet.
var MainDictionary = Dictionary{
	{Field: FieldOrderNumber, Spelling: orderNumberSpellings},
	{Field: FieldOrderName, Spelling: []string{"NOMBRE OC", "NOMBRE", "NOMBRE ORDEN", "DESCRIPCION OC", "GLOSA OC"}},
	{Field: FieldDate, Spelling: []string{"FECHA", "FECHA OC", "FECHA EMISION", "FECHA DE EMISION"}},
	{Field: FieldCostCenterLabel, Spelling: []string{"OBRA", "CENTRO DE COSTO", "PROYECTO", "NOMBRE OBRA"}},
	{Field: FieldSupplierName, Spelling: []string{"PROVEEDOR", "RAZON SOCIAL", "NOMBRE PROVEEDOR", "RAZON SOCIAL PROVEEDOR"}},
	{Field: FieldPaymentTerms, Spelling: []string{"CONDICION DE PAGO", "CONDICIONES DE PAGO", "FORMA DE PAGO", "CONDICION PAGO"}},
	{Field: FieldAmount, Spelling: []string{"MONTO", "MONTO TOTAL", "TOTAL", "VALOR", "MONTO NETO", "TOTAL OC"}},
}

// DetailDictionary describes the detail (cost allocation) spreadsheet.
var DetailDictionary = Dictionary{
	{Field: FieldOrderNumber, Spelling: orderNumberSpellings},
	{Field: FieldCostCenterCode, Spelling: []string{"CODIGO CENTRO DE COSTO", "COD CENTRO DE COSTO", "COD CC", "COD. CC", "CC", "CODIGO CC", "CENTRO DE COSTO"}},
	{Field: FieldCostAccountName, Spelling: []string{"CUENTA DE COSTO", "CUENTA COSTO", "CUENTA", "PARTIDA", "NOMBRE CUENTA"}},
	{Field: FieldDescription, Spelling: []string{"DESCRIPCION", "DETALLE", "GLOSA", "ITEM"}},
}

// Required fields per spreadsheet. Their absence aborts the import.
var (
	MainRequired   = []Field{FieldOrderNumber, FieldSupplierName, FieldAmount}
	DetailRequired = []Field{FieldOrderNumber, FieldCostCenterCode}
)
