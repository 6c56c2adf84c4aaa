package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/dto"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Service stubs ────────────────────────────────────────────────────────────

type stubHoldedSvc struct {
	informe *model.InformeStock
	err     error
	ultimo  dto.ActualizarStockRequest
}

func (s *stubHoldedSvc) ListarAlmacenes(context.Context) (*dto.AlmacenesResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AlmacenesResponse{Status: "success", Count: 1, Warehouses: []model.Almacen{{ID: "w1", Nombre: "Tienda Murcia"}}}, nil
}

func (s *stubHoldedSvc) StockPorAlmacen(context.Context) (*model.InformeStock, error) {
	return s.informe, s.err
}

func (s *stubHoldedSvc) ActualizarPorSKU(_ context.Context, req dto.ActualizarStockRequest) (*dto.ActualizarStockResponse, error) {
	s.ultimo = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ActualizarStockResponse{Status: "dry_run"}, nil
}

func (s *stubHoldedSvc) Estado(context.Context) dto.HoldedHealthResponse {
	return dto.HoldedHealthResponse{Configured: true, APIKeySuffix: "...abcd"}
}

type stubActualizacion struct {
	err         error
	req         dto.ActualizarDesdeGCSRequest
	nombre      string
	data        []byte
	dryRunFile  bool
	llamadasGCS int
}

func (s *stubActualizacion) ActualizarDesdeGCS(_ context.Context, req dto.ActualizarDesdeGCSRequest) (*model.ResultadoLote, error) {
	s.req = req
	s.llamadasGCS++
	if s.err != nil {
		return nil, s.err
	}
	res := model.NuevoResultadoLote()
	res.Procesadas = 3
	return res, nil
}

func (s *stubActualizacion) ActualizarDesdeArchivo(_ context.Context, nombre string, data []byte, dryRun bool) (*model.ResultadoLote, error) {
	s.nombre, s.data, s.dryRunFile = nombre, data, dryRun
	if s.err != nil {
		return nil, s.err
	}
	return model.NuevoResultadoLote(), nil
}

type stubEjecuciones struct{}

func (stubEjecuciones) Guardar(context.Context, string, *model.RegistroEjecucion) (string, error) {
	return "", nil
}

func (stubEjecuciones) ListarRecientes(_ context.Context, limit int) ([]model.ResumenEjecucion, error) {
	return []model.ResumenEjecucion{{RunID: "r1", Status: model.EjecucionExitosa}}, nil
}

type stubCSV struct {
	err error
}

func (s *stubCSV) Previsualizar(nombre string, data []byte) (*dto.PreviewCSVResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PreviewCSVResponse{Filename: nombre, Size: len(data)}, nil
}

func (s *stubCSV) ValidarStock(_ context.Context, nombre string, _ []byte, _ time.Time) (*dto.ValidacionStockResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ValidacionStockResponse{FileInfo: dto.ArchivoInfo{Filename: nombre}}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func init() { gin.SetMode(gin.TestMode) }

type entorno struct {
	r    *gin.Engine
	svc  *stubHoldedSvc
	act  *stubActualizacion
	csvS *stubCSV
}

func nuevoEntorno() *entorno {
	e := &entorno{
		svc:  &stubHoldedSvc{},
		act:  &stubActualizacion{},
		csvS: &stubCSV{},
	}
	h := NewHoldedHandler(e.svc, e.act, stubEjecuciones{}, 1<<20)
	c := NewCSVHandler(e.csvS, 1<<20)

	r := gin.New()
	r.GET("/api/holded/health", h.Estado)
	r.GET("/api/holded/warehouses", h.ListarAlmacenes)
	r.GET("/api/holded/stock-by-warehouse", h.StockPorAlmacen)
	r.PUT("/api/holded/stock/update", h.ActualizarPorSKU)
	r.POST("/api/holded/stock/update-from-gcs", h.ActualizarDesdeGCS)
	r.POST("/api/holded/stock/update-from-file", h.ActualizarDesdeArchivo)
	r.GET("/api/holded/stock/runs", h.ListarEjecuciones)
	r.POST("/api/upload-csv", c.Previsualizar)
	r.POST("/api/stock/validate", c.ValidarStock)
	e.r = r
	return e
}

func (e *entorno) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartReq(t *testing.T, path, nombre string, data []byte, campos map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if nombre != "" {
		fw, err := mw.CreateFormFile("file", nombre)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range campos {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func detalle(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestActualizarDesdeGCS_DryRunPorDefecto(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(jsonReq(http.MethodPost, "/api/holded/stock/update-from-gcs", `{"gs_uri":"gs://b/v.csv"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, e.act.req.EsDryRun())
	assert.Equal(t, "gs://b/v.csv", e.act.req.GSURI)

	var res model.ResultadoLote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Procesadas)
	assert.Contains(t, w.Body.String(), `"updates":[]`)
}

func TestActualizarDesdeGCS_DryRunFalse(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(jsonReq(http.MethodPost, "/api/holded/stock/update-from-gcs", `{"gs_uri":"gs://b/v.csv","dry_run":false}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, e.act.req.EsDryRun())
}

func TestActualizarDesdeGCS_SinURI(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(jsonReq(http.MethodPost, "/api/holded/stock/update-from-gcs", `{"dry_run":true}`))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"GSURI":"required"`)
	assert.Zero(t, e.act.llamadasGCS)
}

func TestActualizarDesdeGCS_JSONInvalido(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(jsonReq(http.MethodPost, "/api/holded/stock/update-from-gcs", `{`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActualizarDesdeGCS_Errores(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apierror.NoEncontrado("Archivo no encontrado en GCS: %s", "gs://b/v.csv"), http.StatusNotFound},
		{apierror.Entrada("La URI debe comenzar con gs://"), http.StatusBadRequest},
		{apierror.Proveedor("Error al obtener almacenes de Holded: HTTP 503"), http.StatusBadGateway},
		{apierror.Configuracion("API key de Holded no configurada"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			e := nuevoEntorno()
			e.act.err = tc.err
			w := e.do(jsonReq(http.MethodPost, "/api/holded/stock/update-from-gcs", `{"gs_uri":"gs://b/v.csv"}`))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.err.Error(), detalle(t, w))
		})
	}
}

func TestActualizarDesdeArchivo(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(multipartReq(t, "/api/holded/stock/update-from-file", "ventas.csv", []byte("TERMINAL;UNIDADES\n"), map[string]string{"dry_run": "false"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ventas.csv", e.act.nombre)
	assert.Equal(t, "TERMINAL;UNIDADES\n", string(e.act.data))
	assert.False(t, e.act.dryRunFile)
}

func TestActualizarDesdeArchivo_DryRunPorDefecto(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(multipartReq(t, "/api/holded/stock/update-from-file", "ventas.csv", []byte("x"), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, e.act.dryRunFile)
}

func TestActualizarDesdeArchivo_SinArchivo(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(multipartReq(t, "/api/holded/stock/update-from-file", "", nil, map[string]string{"dry_run": "true"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Falta el archivo (campo 'file')", detalle(t, w))
}

func TestActualizarDesdeArchivo_Demasiado(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(multipartReq(t, "/api/holded/stock/update-from-file", "ventas.csv", bytes.Repeat([]byte("a"), 2<<20), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestActualizarPorSKU(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(jsonReq(http.MethodPut, "/api/holded/stock/update",
		`{"sku":"8400001","warehouse_id":"w1","stock_adjustment":0,"dry_run":true}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, e.svc.ultimo.StockAdjustment)
	assert.Equal(t, 0.0, *e.svc.ultimo.StockAdjustment)
	assert.True(t, e.svc.ultimo.DryRun)
}

func TestActualizarPorSKU_SinAjuste(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(jsonReq(http.MethodPut, "/api/holded/stock/update", `{"sku":"8400001","warehouse_id":"w1"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "StockAdjustment")
}

func TestStockPorAlmacen_JSONyXLSX(t *testing.T) {
	e := nuevoEntorno()
	e.svc.informe = &model.InformeStock{
		Status:    "success",
		Almacenes: []model.Almacen{{ID: "w1", Nombre: "Tienda Murcia"}},
		Productos: []model.ProductoInforme{{SKU: "1", Nombre: "A", Tipo: model.InformeTipoPrincipal, StockPorAlmacen: map[string]float64{"w1": 2}}},
	}

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/holded/stock-by-warehouse", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stock_by_warehouse":{"w1":2}`)

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/holded/stock-by-warehouse?format=xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "stock_por_almacen.xlsx")
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestListarAlmacenes_Credenciales(t *testing.T) {
	e := nuevoEntorno()
	e.svc.err = errors.Mark(apierror.Proveedor("API key inválida o sin permisos"), apierror.ErrCredenciales)
	w := e.do(httptest.NewRequest(http.MethodGet, "/api/holded/warehouses", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "API key inválida o sin permisos", detalle(t, w))
}

func TestListarEjecuciones(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(httptest.NewRequest(http.MethodGet, "/api/holded/stock/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.EjecucionesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "r1", resp.Runs[0].RunID)
}

func TestCSV_PrevisualizarYValidar(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(multipartReq(t, "/api/upload-csv", "ventas.csv", []byte("a;b\n"), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"filename":"ventas.csv"`)

	e.csvS.err = apierror.Entrada("El archivo debe ser CSV")
	w = e.do(multipartReq(t, "/api/stock/validate", "ventas.txt", []byte("a;b\n"), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El archivo debe ser CSV", detalle(t, w))
}

func TestHoldedEstado(t *testing.T) {
	e := nuevoEntorno()
	w := e.do(httptest.NewRequest(http.MethodGet, "/api/holded/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_key_suffix":"...abcd"`)
}

func TestHealth_SinRedis(t *testing.T) {
	cb := infra.NewHoldedClient(infra.HoldedConfig{}, nil)
	r := gin.New()
	r.GET("/health", Health(cb, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"holded_circuit":"closed","redis":"disabled"}`, w.Body.String())
}
