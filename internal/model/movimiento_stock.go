package model

// EstadoActualizacion is the terminal state of one row's stock adjustment.
type EstadoActualizacion string

const (
	EstadoSimulado EstadoActualizacion = "simulated"
	EstadoExito    EstadoActualizacion = "success"
	EstadoError    EstadoActualizacion = "error"
)

// MovimientoStock records the adjustment computed (and possibly applied) for a CSV row.
type MovimientoStock struct {
	Fila             int                 `json:"row"`
	SKU              string              `json:"sku"`
	Producto         string              `json:"product"`
	Almacen          string              `json:"warehouse"` // terminal as written in the CSV
	AlmacenID        string              `json:"warehouse_id"`
	UnidadesVendidas float64             `json:"units_sold"`
	Ajuste           float64             `json:"adjustment"`
	StockActual      float64             `json:"current_stock"`
	StockNuevo       float64             `json:"new_stock"`
	Estado           EstadoActualizacion `json:"status"`
	ErrorDetalle     string              `json:"error_detail,omitempty"`
}

// ErrorFila is a row-level failure. It never aborts the batch.
type ErrorFila struct {
	Fila     int      `json:"row"`
	Error    string   `json:"error"`
	SKU      string   `json:"sku"`
	Producto string   `json:"product"`
	Unidades *float64 `json:"units"`
	Terminal string   `json:"terminal"`
}

// ResultadoLote is the outcome of a streaming reconciliation run.
type ResultadoLote struct {
	Procesadas   int               `json:"processed"`
	Actualizadas int               `json:"updated"`
	Errores      []ErrorFila       `json:"errors"`
	Movimientos  []MovimientoStock `json:"updates"`
}

// NuevoResultadoLote returns an empty result with non-nil slices so it always
// serialises as arrays.
func NuevoResultadoLote() *ResultadoLote {
	return &ResultadoLote{Errores: []ErrorFila{}, Movimientos: []MovimientoStock{}}
}
