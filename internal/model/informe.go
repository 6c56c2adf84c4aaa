package model

// InformeStock is the stock-by-warehouse report. The same document is
// embedded in every run log as the pre-run database snapshot.
type InformeStock struct {
	Status    string            `json:"status"`
	Almacenes []Almacen         `json:"warehouses"`
	Productos []ProductoInforme `json:"products"`
	Resumen   ResumenInforme    `json:"summary"`
}

// ProductoInforme is one SKU row of the report; stock is keyed by warehouse id.
type ProductoInforme struct {
	SKU             string             `json:"sku"`
	Nombre          string             `json:"name"`
	Tipo            string             `json:"type"` // principal | variante
	StockPorAlmacen map[string]float64 `json:"stock_by_warehouse"`
}

type ResumenInforme struct {
	TotalAlmacenes int `json:"total_warehouses"`
	TotalProductos int `json:"total_products"`
	TotalVariantes int `json:"total_variants"`
}

const (
	InformeTipoPrincipal = "principal"
	InformeTipoVariante  = "variante"
)
