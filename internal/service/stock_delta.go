package service

import (
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"
)

// Delta is the stock movement computed for one sale line.
type Delta struct {
	AlmacenID   string
	ItemID      string
	Ajuste      float64
	StockActual float64
	StockNuevo  float64
}

// CalcularDelta turns units sold into a negative adjustment against the
// snapshot taken before the run. Missing snapshot entries count as zero stock.
func CalcularDelta(unidades float64, almacenID string, e model.EntradaCatalogo, snap model.SnapshotStock) Delta {
	ajuste := -unidades
	actual := snap.Cantidad(almacenID, e)
	return Delta{
		AlmacenID:   almacenID,
		ItemID:      e.ItemID(),
		Ajuste:      ajuste,
		StockActual: actual,
		StockNuevo:  actual + ajuste,
	}
}

// Payload is the body Holded expects for this delta.
func (d Delta) Payload(desc string) infra.StockPayload {
	return infra.NuevoStockPayload(d.AlmacenID, d.ItemID, d.Ajuste, desc)
}
