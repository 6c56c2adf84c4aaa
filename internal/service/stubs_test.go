package service

import (
	"context"
	"sync"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"
)

// ── In-memory Holded stub ────────────────────────────────────────────────────

type llamadaStock struct {
	productoID string
	payload    infra.StockPayload
}

type stubProveedor struct {
	sinKey    bool
	productos []infra.HoldedProducto
	almacenes []model.Almacen
	stock     map[string]map[string]model.StockItem

	errProductos  error
	errAlmacenes  error
	errStock      map[string]error
	errUpdate     map[string]error // by product id
	panicAlListar bool

	mu              sync.Mutex
	consultasStock  []string
	actualizaciones []llamadaStock
}

func (s *stubProveedor) Configurado() bool { return !s.sinKey }

func (s *stubProveedor) ListarProductos(context.Context) ([]infra.HoldedProducto, error) {
	if s.panicAlListar {
		panic("boom")
	}
	if s.errProductos != nil {
		return nil, s.errProductos
	}
	return s.productos, nil
}

func (s *stubProveedor) ListarAlmacenes(context.Context) ([]model.Almacen, error) {
	if s.errAlmacenes != nil {
		return nil, s.errAlmacenes
	}
	return s.almacenes, nil
}

func (s *stubProveedor) StockAlmacen(_ context.Context, almacenID string) (map[string]model.StockItem, error) {
	s.mu.Lock()
	s.consultasStock = append(s.consultasStock, almacenID)
	s.mu.Unlock()
	if err := s.errStock[almacenID]; err != nil {
		return nil, err
	}
	return s.stock[almacenID], nil
}

func (s *stubProveedor) URLActualizacion(productoID string) string {
	return "https://holded.test/products/" + productoID + "/stock"
}

func (s *stubProveedor) ActualizarStock(_ context.Context, productoID string, payload infra.StockPayload) ([]byte, error) {
	s.mu.Lock()
	s.actualizaciones = append(s.actualizaciones, llamadaStock{productoID: productoID, payload: payload})
	s.mu.Unlock()
	if err := s.errUpdate[productoID]; err != nil {
		return nil, err
	}
	return []byte(`{"status":1}`), nil
}

// ── In-memory object store ───────────────────────────────────────────────────

type blob struct {
	data        []byte
	contentType string
}

type memStore struct {
	mu       sync.Mutex
	objetos  map[string]blob // "bucket/objeto"
	errSubir error
}

func newMemStore() *memStore {
	return &memStore{objetos: map[string]blob{}}
}

func (m *memStore) put(bucket, objeto string, data []byte) {
	m.objetos[bucket+"/"+objeto] = blob{data: data}
}

func (m *memStore) Existe(_ context.Context, bucket, objeto string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objetos[bucket+"/"+objeto]
	return ok, nil
}

func (m *memStore) Descargar(_ context.Context, bucket, objeto string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objetos[bucket+"/"+objeto]
	if !ok {
		return nil, apierror.NoEncontrado("no such object")
	}
	return b.data, nil
}

func (m *memStore) Subir(_ context.Context, bucket, objeto string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errSubir != nil {
		return m.errSubir
	}
	m.objetos[bucket+"/"+objeto] = blob{data: data, contentType: contentType}
	return nil
}

// logs returns the keys of every uploaded run log.
func (m *memStore) logs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k, b := range m.objetos {
		if b.contentType == "application/json" {
			out = append(out, k)
		}
	}
	return out
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

const (
	almMurcia    = "wh-murcia"
	almSalamanca = "wh-salamanca"
	almCaceres   = "wh-caceres"
)

func almacenesTiendas() []model.Almacen {
	return []model.Almacen{
		{ID: almMurcia, Nombre: "Tienda Murcia"},
		{ID: almSalamanca, Nombre: "Tienda Salamanca"},
		{ID: almCaceres, Nombre: "Tienda Cáceres Centro"},
	}
}

func catalogoBasico() []infra.HoldedProducto {
	return []infra.HoldedProducto{
		{ID: "p1", Nombre: "Aceite CBD 10%", SKU: "8400001", Stock: 40},
		{
			ID: "p2", Nombre: "Flor", Stock: 0,
			Variantes: infra.ListaVariantes{
				{ID: "v21", Nombre: "5g", SKU: "8400021", Stock: 12},
				{ID: "v22", Nombre: "10g", SKU: "8400022", Stock: 7},
			},
		},
	}
}

func nuevoStub() *stubProveedor {
	return &stubProveedor{
		productos: catalogoBasico(),
		almacenes: almacenesTiendas(),
		stock: map[string]map[string]model.StockItem{
			almMurcia: {
				"p1": {Stock: 10},
				"p2": {Variantes: map[string]float64{"v21": 4, "v22": 2}},
			},
			almSalamanca: {
				"p1": {Stock: 3},
			},
		},
	}
}

type diagFijo struct{}

func (diagFijo) APIKeySuffix() string { return "abcd" }
func (diagFijo) BaseURL() string { return "https://holded.test/api/invoicing/v1" }
