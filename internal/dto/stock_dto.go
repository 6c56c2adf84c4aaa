package dto

import (
	"encoding/json"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"
)

// ActualizarDesdeGCSRequest triggers a streaming run over a CSV stored in GCS.
// DryRun defaults to true when omitted.
type ActualizarDesdeGCSRequest struct {
	GSURI  string `json:"gs_uri" validate:"required"`
	DryRun *bool  `json:"dry_run"`
}

func (r ActualizarDesdeGCSRequest) EsDryRun() bool {
	return r.DryRun == nil || *r.DryRun
}

// ActualizarStockRequest adjusts one SKU in one warehouse.
type ActualizarStockRequest struct {
	SKU             string   `json:"sku" validate:"required"`
	WarehouseID     string   `json:"warehouse_id" validate:"required"`
	StockAdjustment *float64 `json:"stock_adjustment" validate:"required"`
	Description     string   `json:"description"`
	DryRun          bool     `json:"dry_run"`
}

type ProductoInfo struct {
	SKU         string  `json:"sku"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	IsVariant   bool    `json:"is_variant"`
	VariantID   *string `json:"variant_id"`
}

type AlmacenInfo struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
}

type AjusteStock struct {
	CurrentStock    float64 `json:"current_stock"`
	StockAdjustment float64 `json:"stock_adjustment"`
	NewStock        float64 `json:"new_stock"`
	Description     *string `json:"description"`
}

// LlamadaAPI describes the request a dry run would have sent.
type LlamadaAPI struct {
	Method  string `json:"method"`
	URL     string `json:"url"`
	Payload any    `json:"payload"`
}

type ActualizarStockResponse struct {
	Status         string          `json:"status"` // dry_run | success
	Message        string          `json:"message"`
	ProductInfo    ProductoInfo    `json:"product_info"`
	WarehouseInfo  AlmacenInfo     `json:"warehouse_info"`
	StockUpdate    AjusteStock     `json:"stock_update"`
	APICall        *LlamadaAPI     `json:"api_call,omitempty"`
	HoldedResponse json.RawMessage `json:"holded_response,omitempty"`
}

type AlmacenesResponse struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Warehouses []model.Almacen `json:"warehouses"`
}

type EjecucionesResponse struct {
	Count int                      `json:"count"`
	Runs  []model.ResumenEjecucion `json:"runs"`
}

type PruebaConexion struct {
	Status        string `json:"status"` // success | error | not_configured | not_tested
	Message       string `json:"message"`
	ProductsCount *int   `json:"products_count,omitempty"`
}

type HoldedHealthResponse struct {
	Configured     bool           `json:"configured"`
	APIKeySuffix   string         `json:"api_key_suffix"`
	BaseURL        string         `json:"base_url"`
	ConnectionTest PruebaConexion `json:"connection_test"`
}
