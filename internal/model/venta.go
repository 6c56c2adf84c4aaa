package model

// FilaVenta is one line of the Glop sales export.
// Fila is the 0-based position among data rows (header excluded).
type FilaVenta struct {
	Fila     int
	Terminal string
	SKU      string
	Articulo string
	Unidades float64
}

// VentaAgregada is the per-SKU total used by the validation report.
type VentaAgregada struct {
	SKU      string
	Articulo string
	Unidades float64
}
