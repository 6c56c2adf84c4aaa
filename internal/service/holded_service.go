package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/dto"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
)

// Proveedor is the part of the Holded API this service layer uses.
// *infra.HoldedClient implements it.
type Proveedor interface {
	Actualizador
	Configurado() bool
	ListarProductos(ctx context.Context) ([]infra.HoldedProducto, error)
	ListarAlmacenes(ctx context.Context) ([]model.Almacen, error)
	StockAlmacen(ctx context.Context, almacenID string) (map[string]model.StockItem, error)
	URLActualizacion(productoID string) string
}

var _ Proveedor = (*infra.HoldedClient)(nil)

// HoldedService covers the read-side queries and the single-SKU adjustment.
type HoldedService interface {
	ListarAlmacenes(ctx context.Context) (*dto.AlmacenesResponse, error)
	StockPorAlmacen(ctx context.Context) (*model.InformeStock, error)
	ActualizarPorSKU(ctx context.Context, req dto.ActualizarStockRequest) (*dto.ActualizarStockResponse, error)
	Estado(ctx context.Context) dto.HoldedHealthResponse
}

// Diagnostico exposes what the health endpoint reports about the client.
type Diagnostico interface {
	APIKeySuffix() string
	BaseURL() string
}

type holdedService struct {
	proveedor Proveedor
	diag      Diagnostico
}

func NewHoldedService(proveedor Proveedor, diag Diagnostico) HoldedService {
	return &holdedService{proveedor: proveedor, diag: diag}
}

func errSinAPIKey() error {
	return apierror.Configuracion("API key de Holded no configurada")
}

func (s *holdedService) ListarAlmacenes(ctx context.Context) (*dto.AlmacenesResponse, error) {
	if !s.proveedor.Configurado() {
		return nil, errSinAPIKey()
	}
	almacenes, err := s.proveedor.ListarAlmacenes(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AlmacenesResponse{Status: "success", Count: len(almacenes), Warehouses: almacenes}, nil
}

// StockPorAlmacen builds the full stock-by-warehouse report: every SKU'd
// product and variant with its stock in each warehouse.
func (s *holdedService) StockPorAlmacen(ctx context.Context) (*model.InformeStock, error) {
	if !s.proveedor.Configurado() {
		return nil, errSinAPIKey()
	}
	almacenes, err := s.proveedor.ListarAlmacenes(ctx)
	if err != nil {
		return nil, err
	}
	informe := &model.InformeStock{
		Status:    "success",
		Almacenes: []model.Almacen{},
		Productos: []model.ProductoInforme{},
	}
	if len(almacenes) == 0 {
		return informe, nil
	}

	productos, err := s.proveedor.ListarProductos(ctx)
	if err != nil {
		return nil, err
	}

	snap := model.SnapshotStock{}
	for _, a := range almacenes {
		if a.ID == "" {
			continue
		}
		items, err := s.proveedor.StockAlmacen(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		snap.Registrar(a.ID, items)
	}

	for _, a := range almacenes {
		nombre := a.Nombre
		if nombre == "" {
			nombre = "Sin nombre"
		}
		informe.Almacenes = append(informe.Almacenes, model.Almacen{ID: a.ID, Nombre: nombre})
	}

	stockPor := func(e model.EntradaCatalogo) map[string]float64 {
		out := make(map[string]float64, len(almacenes))
		for _, a := range almacenes {
			out[a.ID] = snap.Cantidad(a.ID, e)
		}
		return out
	}

	for _, p := range productos {
		if sku := p.SKU.String(); sku != "" {
			e := model.EntradaCatalogo{Tipo: model.TipoProducto, ProductoID: p.ID}
			informe.Productos = append(informe.Productos, model.ProductoInforme{
				SKU:             sku,
				Nombre:          p.Nombre,
				Tipo:            model.InformeTipoPrincipal,
				StockPorAlmacen: stockPor(e),
			})
			informe.Resumen.TotalProductos++
		}
		for _, v := range p.Variantes {
			sku := v.SKU.String()
			if sku == "" {
				continue
			}
			nombre := p.Nombre
			if v.Nombre != "" {
				nombre = p.Nombre + " - " + v.Nombre
			}
			e := model.EntradaCatalogo{Tipo: model.TipoVariante, ProductoID: p.ID, VarianteID: v.ID}
			informe.Productos = append(informe.Productos, model.ProductoInforme{
				SKU:             sku,
				Nombre:          nombre,
				Tipo:            model.InformeTipoVariante,
				StockPorAlmacen: stockPor(e),
			})
			informe.Resumen.TotalVariantes++
		}
	}
	informe.Resumen.TotalAlmacenes = len(almacenes)
	return informe, nil
}

// ActualizarPorSKU applies (or simulates) a manual adjustment for one SKU in
// one warehouse.
func (s *holdedService) ActualizarPorSKU(ctx context.Context, req dto.ActualizarStockRequest) (*dto.ActualizarStockResponse, error) {
	if !s.proveedor.Configurado() {
		return nil, errSinAPIKey()
	}
	productos, err := s.proveedor.ListarProductos(ctx)
	if err != nil {
		return nil, err
	}
	entrada, ok := NuevoCatalogo(productos, NombreConVariante).Buscar(req.SKU)
	if !ok {
		return nil, apierror.NoEncontrado("No se encontró ningún producto o variante con SKU: %s", req.SKU)
	}

	almacenes, err := s.proveedor.ListarAlmacenes(ctx)
	if err != nil {
		return nil, err
	}
	var almacen *model.Almacen
	for i := range almacenes {
		if almacenes[i].ID == req.WarehouseID {
			almacen = &almacenes[i]
			break
		}
	}
	if almacen == nil {
		return nil, apierror.NoEncontrado("No se encontró el almacén con ID: %s", req.WarehouseID)
	}

	items, err := s.proveedor.StockAlmacen(ctx, almacen.ID)
	if err != nil {
		return nil, err
	}
	snap := model.SnapshotStock{almacen.ID: items}

	ajuste := *req.StockAdjustment
	actual := snap.Cantidad(almacen.ID, entrada)
	payload := infra.NuevoStockPayload(almacen.ID, entrada.ItemID(), ajuste, req.Description)

	resp := &dto.ActualizarStockResponse{
		ProductInfo: dto.ProductoInfo{
			SKU:         req.SKU,
			ProductID:   entrada.ProductoID,
			ProductName: entrada.Nombre,
			IsVariant:   entrada.EsVariante(),
		},
		WarehouseInfo: dto.AlmacenInfo{WarehouseID: almacen.ID, WarehouseName: almacen.Nombre},
		StockUpdate: dto.AjusteStock{
			CurrentStock:    actual,
			StockAdjustment: ajuste,
			NewStock:        actual + ajuste,
		},
	}
	if entrada.EsVariante() {
		id := entrada.VarianteID
		resp.ProductInfo.VariantID = &id
	}
	if req.Description != "" {
		desc := req.Description
		resp.StockUpdate.Description = &desc
	}

	if req.DryRun {
		resp.Status = "dry_run"
		resp.Message = "Simulación exitosa - No se realizó ninguna actualización real"
		resp.APICall = &dto.LlamadaAPI{
			Method:  "PUT",
			URL:     s.proveedor.URLActualizacion(entrada.ProductoID),
			Payload: payload,
		}
		return resp, nil
	}

	body, err := s.proveedor.ActualizarStock(ctx, entrada.ProductoID, payload)
	if err != nil {
		var httpErr *infra.HTTPError
		if errors.As(err, &httpErr) {
			return nil, apierror.Proveedor("Error al actualizar stock en Holded: HTTP %d - %s", httpErr.Status, httpErr.Body)
		}
		return nil, errors.Mark(errors.Wrap(err, "Error al actualizar stock en Holded"), apierror.ErrProveedor)
	}
	resp.Status = "success"
	resp.Message = "Stock actualizado exitosamente"
	if json.Valid(body) {
		resp.HoldedResponse = body
	}
	return resp, nil
}

// Estado reports whether the API key is set and whether Holded answers.
func (s *holdedService) Estado(ctx context.Context) dto.HoldedHealthResponse {
	out := dto.HoldedHealthResponse{
		Configured:     s.proveedor.Configurado(),
		APIKeySuffix:   "NO CONFIGURADA",
		BaseURL:        s.diag.BaseURL(),
		ConnectionTest: dto.PruebaConexion{Status: "not_tested"},
	}
	if suf := s.diag.APIKeySuffix(); suf != "" {
		out.APIKeySuffix = "..." + suf
	}
	if !out.Configured {
		out.ConnectionTest = dto.PruebaConexion{Status: "not_configured", Message: "API key no configurada"}
		return out
	}

	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	productos, err := s.proveedor.ListarProductos(testCtx)
	switch {
	case err == nil:
		n := len(productos)
		out.ConnectionTest = dto.PruebaConexion{Status: "success", Message: "Conexión exitosa con Holded API", ProductsCount: &n}
	case errors.Is(err, apierror.ErrCredenciales):
		out.ConnectionTest = dto.PruebaConexion{Status: "error", Message: "API key inválida o sin permisos"}
	case errors.Is(err, context.DeadlineExceeded):
		out.ConnectionTest = dto.PruebaConexion{Status: "error", Message: "Timeout al conectar con Holded API"}
	default:
		out.ConnectionTest = dto.PruebaConexion{Status: "error", Message: fmt.Sprintf("Error: %s", err)}
	}
	return out
}
