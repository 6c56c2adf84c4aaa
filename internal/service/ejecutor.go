package service

import (
	"context"
	"fmt"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
)

// Actualizador applies a stock adjustment in Holded.
type Actualizador interface {
	ActualizarStock(ctx context.Context, productoID string, payload infra.StockPayload) ([]byte, error)
}

// EjecutorActualizaciones applies one stock movement per resolved sale line.
// In dry-run mode nothing is sent; the payload is still computed.
type EjecutorActualizaciones struct {
	proveedor Actualizador
	dryRun    bool
}

func NuevoEjecutorActualizaciones(proveedor Actualizador, dryRun bool) *EjecutorActualizaciones {
	return &EjecutorActualizaciones{proveedor: proveedor, dryRun: dryRun}
}

// Aplicar computes the delta for f and, unless dry-running, pushes it.
// The returned error is the provider failure for this row; the movement
// already carries EstadoError and the detail.
func (e *EjecutorActualizaciones) Aplicar(ctx context.Context, f model.FilaVenta, almacenID string, entrada model.EntradaCatalogo, snap model.SnapshotStock) (model.MovimientoStock, error) {
	d := CalcularDelta(f.Unidades, almacenID, entrada, snap)
	mov := model.MovimientoStock{
		Fila:             f.Fila,
		SKU:              f.SKU,
		Producto:         entrada.Nombre,
		Almacen:          f.Terminal,
		AlmacenID:        almacenID,
		UnidadesVendidas: f.Unidades,
		Ajuste:           d.Ajuste,
		StockActual:      d.StockActual,
		StockNuevo:       d.StockNuevo,
	}

	if e.dryRun {
		mov.Estado = model.EstadoSimulado
		return mov, nil
	}

	_, err := e.proveedor.ActualizarStock(ctx, entrada.ProductoID, d.Payload(""))
	if err != nil {
		mov.Estado = model.EstadoError
		mov.ErrorDetalle = detalleError(err)
		return mov, err
	}
	mov.Estado = model.EstadoExito
	return mov, nil
}

// detalleError renders a provider failure as "HTTP <status> - <body>" when
// there was a response.
func detalleError(err error) string {
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("HTTP %d - %s", httpErr.Status, httpErr.Body)
	}
	return err.Error()
}

// mensajeErrorAPI is the row error text for a failed adjustment.
func mensajeErrorAPI(err error) string {
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) {
		return "API Error: " + httpErr.Body
	}
	return "API Error: " + err.Error()
}
