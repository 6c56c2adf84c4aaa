package model

// TipoEntrada distinguishes root products from their variants in the catalog.
type TipoEntrada string

const (
	TipoProducto TipoEntrada = "product"
	TipoVariante TipoEntrada = "variant"
)

// EntradaCatalogo is what a SKU resolves to.
// Stock updates are always addressed to ProductoID; for variants the stock
// row that moves is keyed by VarianteID.
type EntradaCatalogo struct {
	Tipo        TipoEntrada
	SKU         string
	ProductoID  string
	VarianteID  string // empty unless Tipo == TipoVariante
	Nombre      string
	StockActual float64 // catalog-level stock as reported by the product listing
}

func (e EntradaCatalogo) EsVariante() bool { return e.Tipo == TipoVariante }

// ItemID is the key used inside the stock payload for this entry.
func (e EntradaCatalogo) ItemID() string {
	if e.EsVariante() {
		return e.VarianteID
	}
	return e.ProductoID
}
