package model

// StockItem is a product's stock line inside one warehouse.
type StockItem struct {
	Stock     float64
	Variantes map[string]float64
}

// SnapshotStock maps warehouse id → product id → stock line.
// It is captured once per run, before any row is processed.
type SnapshotStock map[string]map[string]StockItem

// Registrar stores the stock lines of a warehouse, replacing any previous capture.
func (s SnapshotStock) Registrar(almacenID string, items map[string]StockItem) {
	s[almacenID] = items
}

// Cantidad returns the current stock of e in the warehouse. Anything missing
// from the snapshot (warehouse, product or variant) counts as zero.
func (s SnapshotStock) Cantidad(almacenID string, e EntradaCatalogo) float64 {
	item, ok := s[almacenID][e.ProductoID]
	if !ok {
		return 0
	}
	if e.EsVariante() {
		return item.Variantes[e.VarianteID]
	}
	return item.Stock
}
