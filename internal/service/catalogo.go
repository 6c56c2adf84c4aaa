package service

import (
	"strings"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"
)

// EstiloNombre controls how variant display names are built.
type EstiloNombre int

const (
	// NombreConVariante: "Producto - Variante".
	NombreConVariante EstiloNombre = iota
	// NombreConSKU: "Producto (sku-variante)".
	NombreConSKU
)

// Catalogo resolves SKUs to products or variants.
// SKUs are trimmed and matched case-sensitively. When a SKU appears more than
// once (including a variant reusing its parent's SKU) the last one wins.
type Catalogo struct {
	entradas  map[string]model.EntradaCatalogo
	productos int
	variantes int
}

func NuevoCatalogo(productos []infra.HoldedProducto, estilo EstiloNombre) *Catalogo {
	c := &Catalogo{entradas: make(map[string]model.EntradaCatalogo, len(productos))}
	for _, p := range productos {
		if sku := strings.TrimSpace(p.SKU.String()); sku != "" {
			c.entradas[sku] = model.EntradaCatalogo{
				Tipo:        model.TipoProducto,
				SKU:         sku,
				ProductoID:  p.ID,
				Nombre:      p.Nombre,
				StockActual: float64(p.Stock),
			}
			c.productos++
		}
		for _, v := range p.Variantes {
			sku := strings.TrimSpace(v.SKU.String())
			if sku == "" {
				continue
			}
			c.entradas[sku] = model.EntradaCatalogo{
				Tipo:        model.TipoVariante,
				SKU:         sku,
				ProductoID:  p.ID,
				VarianteID:  v.ID,
				Nombre:      nombreVariante(p.Nombre, v, estilo),
				StockActual: float64(v.Stock),
			}
			c.variantes++
		}
	}
	return c
}

func nombreVariante(producto string, v infra.HoldedVariante, estilo EstiloNombre) string {
	if estilo == NombreConSKU {
		return producto + " (" + v.SKU.String() + ")"
	}
	return producto + " - " + v.Nombre
}

// Buscar looks up a SKU as read from the CSV.
func (c *Catalogo) Buscar(sku string) (model.EntradaCatalogo, bool) {
	e, ok := c.entradas[strings.TrimSpace(sku)]
	return e, ok
}

// TotalProductos counts root products carrying a SKU.
func (c *Catalogo) TotalProductos() int { return c.productos }

// TotalVariantes counts variants carrying a SKU.
func (c *Catalogo) TotalVariantes() int { return c.variantes }

// TotalSKUs counts distinct SKUs after collisions were resolved.
func (c *Catalogo) TotalSKUs() int { return len(c.entradas) }

// TablaAlmacenes maps normalised warehouse names (and ids) to warehouse ids.
type TablaAlmacenes struct {
	ids    map[string]string
	claves []string // insertion order, for substring scans
}

func NuevaTablaAlmacenes(almacenes []model.Almacen) *TablaAlmacenes {
	t := &TablaAlmacenes{ids: make(map[string]string, 2*len(almacenes))}
	for _, a := range almacenes {
		if a.ID == "" {
			continue
		}
		t.registrar(normalizarNombre(a.Nombre), a.ID)
		t.registrar(normalizarNombre(a.ID), a.ID)
	}
	return t
}

func (t *TablaAlmacenes) registrar(clave, id string) {
	if clave == "" {
		return
	}
	if _, ok := t.ids[clave]; !ok {
		t.claves = append(t.claves, clave)
	}
	t.ids[clave] = id
}

// Buscar does an exact lookup on the normalised name.
func (t *TablaAlmacenes) Buscar(nombre string) (string, bool) {
	id, ok := t.ids[normalizarNombre(nombre)]
	return id, ok
}

// BuscarContiene returns the first warehouse whose normalised key contains
// every fragment.
func (t *TablaAlmacenes) BuscarContiene(fragmentos ...string) (string, bool) {
	for _, clave := range t.claves {
		if contieneTodos(clave, fragmentos) {
			return t.ids[clave], true
		}
	}
	return "", false
}

func normalizarNombre(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func contieneTodos(s string, fragmentos []string) bool {
	for _, f := range fragmentos {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}
