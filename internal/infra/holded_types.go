package infra

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"
)

// Holded is loose about JSON types: SKUs come back as numbers for some
// products, stock as strings, and empty maps are serialised as [].
// The types below absorb that.

// Texto decodes a JSON string, number or bool into its textual form.
type Texto string

func (t *Texto) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Texto(s)
		return nil
	}
	*t = Texto(data)
	return nil
}

func (t Texto) String() string { return string(t) }

// Cantidad decodes a JSON number, numeric string or null into a float64.
type Cantidad float64

func (c *Cantidad) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*c = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*c = Cantidad(f)
	return nil
}

// HoldedProducto is an element of GET /products.
type HoldedProducto struct {
	ID        string         `json:"id"`
	Nombre    string         `json:"name"`
	SKU       Texto          `json:"sku"`
	Stock     Cantidad       `json:"stock"`
	Variantes ListaVariantes `json:"variants"`
}

type HoldedVariante struct {
	ID     string   `json:"id"`
	Nombre string   `json:"name"`
	SKU    Texto    `json:"sku"`
	Stock  Cantidad `json:"stock"`
}

// ListaVariantes only accepts a JSON array; anything else decodes as empty.
type ListaVariantes []HoldedVariante

func (l *ListaVariantes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var out []HoldedVariante
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

type holdedAlmacen struct {
	ID     string `json:"id"`
	Nombre string `json:"name"`
}

// holdedStockAlmacen is the body of GET /warehouses/{id}/stock.
type holdedStockAlmacen struct {
	Warehouse struct {
		Products []holdedStockProducto `json:"products"`
	} `json:"warehouse"`
}

type holdedStockProducto struct {
	ProductoID string        `json:"product_id"`
	Stock      Cantidad      `json:"stock"`
	Variantes  mapaVariantes `json:"variants"`
}

// mapaVariantes only accepts a JSON object; anything else decodes as empty.
type mapaVariantes map[string]Cantidad

func (m *mapaVariantes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*m = nil
		return nil
	}
	out := map[string]Cantidad{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

func (s holdedStockAlmacen) items() map[string]model.StockItem {
	out := make(map[string]model.StockItem, len(s.Warehouse.Products))
	for _, p := range s.Warehouse.Products {
		if p.ProductoID == "" {
			continue
		}
		item := model.StockItem{Stock: float64(p.Stock)}
		if len(p.Variantes) > 0 {
			item.Variantes = make(map[string]float64, len(p.Variantes))
			for id, qty := range p.Variantes {
				item.Variantes[id] = float64(qty)
			}
		}
		out[p.ProductoID] = item
	}
	return out
}

// StockPayload is the body of PUT /products/{id}/stock:
// {"stock": {warehouseId: {itemId: adjustment}}, "desc": "..."}.
type StockPayload struct {
	Stock map[string]map[string]float64 `json:"stock"`
	Desc  string                        `json:"desc,omitempty"`
}

// NuevoStockPayload builds the single-item adjustment payload.
func NuevoStockPayload(almacenID, itemID string, ajuste float64, desc string) StockPayload {
	return StockPayload{
		Stock: map[string]map[string]float64{almacenID: {itemID: ajuste}},
		Desc:  desc,
	}
}
