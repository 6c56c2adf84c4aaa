package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// HTTPError is a non-success response from Holded. Body is kept verbatim so
// callers can surface it.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("holded: HTTP %d", e.Status)
}

// HoldedConfig holds the client settings, usually taken from config.Config.
type HoldedConfig struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration // reads
	ProductsTimeout time.Duration // product catalog download
	UpdateTimeout   time.Duration // stock adjustments
	RateLimitRPS    float64       // 0 disables throttling
}

// HoldedClient talks to the Holded invoicing API v1.
// Reads go through the circuit breaker; only transport failures and 5xx
// responses count against it. Stock adjustments bypass it: every row of a run
// is sent regardless of how the previous ones ended.
type HoldedClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *CircuitBreaker
	limiter    *rate.Limiter

	timeout         time.Duration
	productsTimeout time.Duration
	updateTimeout   time.Duration
}

func NewHoldedClient(cfg HoldedConfig, cb *CircuitBreaker) *HoldedClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ProductsTimeout <= 0 {
		cfg.ProductsTimeout = 60 * time.Second
	}
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = 10 * time.Second
	}
	if cb == nil {
		cb = NewCircuitBreaker("holded", DefaultCBConfig())
	}
	c := &HoldedClient{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		httpClient:      &http.Client{},
		cb:              cb,
		timeout:         cfg.Timeout,
		productsTimeout: cfg.ProductsTimeout,
		updateTimeout:   cfg.UpdateTimeout,
	}
	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	return c
}

// Configurado reports whether an API key is set.
func (c *HoldedClient) Configurado() bool { return c.apiKey != "" }

func (c *HoldedClient) BaseURL() string { return c.baseURL }

// APIKeySuffix returns the last four characters of the key, for diagnostics.
func (c *HoldedClient) APIKeySuffix() string {
	if len(c.apiKey) < 4 {
		return ""
	}
	return c.apiKey[len(c.apiKey)-4:]
}

func (c *HoldedClient) CircuitState() CBState { return c.cb.State() }

// Sesion returns a client sharing transport, key and throttle with c but with
// a fresh circuit breaker. Each run gets its own, so a provider outage seen by
// one run does not fail the next one.
func (c *HoldedClient) Sesion() *HoldedClient {
	s := *c
	s.cb = NewCircuitBreaker(c.cb.name+"-run", c.cb.cfg)
	return &s
}

// URLActualizacion is the endpoint a stock adjustment for productoID is sent to.
func (c *HoldedClient) URLActualizacion(productoID string) string {
	return c.baseURL + "/products/" + productoID + "/stock"
}

// ListarProductos downloads the full product catalog, variants included.
func (c *HoldedClient) ListarProductos(ctx context.Context) ([]HoldedProducto, error) {
	body, err := c.leer(ctx, "/products", c.productsTimeout)
	if err != nil {
		return nil, errorConsulta("productos", err)
	}
	var productos []HoldedProducto
	if err := json.Unmarshal(body, &productos); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "Error al decodificar productos de Holded"), apierror.ErrProveedor)
	}
	return productos, nil
}

// ListarAlmacenes lists every warehouse.
func (c *HoldedClient) ListarAlmacenes(ctx context.Context) ([]model.Almacen, error) {
	body, err := c.leer(ctx, "/warehouses", c.timeout)
	if err != nil {
		return nil, errorConsulta("almacenes", err)
	}
	var raw []holdedAlmacen
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "Error al decodificar almacenes de Holded"), apierror.ErrProveedor)
	}
	out := make([]model.Almacen, 0, len(raw))
	for _, a := range raw {
		out = append(out, model.Almacen{ID: a.ID, Nombre: a.Nombre})
	}
	return out, nil
}

// StockAlmacen returns the stock lines of a warehouse keyed by product id.
func (c *HoldedClient) StockAlmacen(ctx context.Context, almacenID string) (map[string]model.StockItem, error) {
	body, err := c.leer(ctx, "/warehouses/"+almacenID+"/stock", c.timeout)
	if err != nil {
		return nil, errorConsulta("stock del almacén "+almacenID, err)
	}
	var raw holdedStockAlmacen
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "Error al decodificar stock del almacén %s", almacenID), apierror.ErrProveedor)
	}
	return raw.items(), nil
}

// ActualizarStock applies a relative stock adjustment. The URL always uses
// the root product id, even when the payload targets a variant.
// 200 and 204 are success; any other status comes back as *HTTPError.
func (c *HoldedClient) ActualizarStock(ctx context.Context, productoID string, payload StockPayload) ([]byte, error) {
	if c.apiKey == "" {
		return nil, apierror.Configuracion("API key de Holded no configurada")
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("holded: marshal payload: %w", err)
	}
	if err := c.esperar(ctx); err != nil {
		return nil, err
	}
	status, body, err := c.enviar(ctx, http.MethodPut, "/products/"+productoID+"/stock", reqBody, c.updateTimeout)
	if err != nil {
		return nil, err
	}
	return respuesta(status, body)
}

// leer issues a GET through the circuit breaker.
func (c *HoldedClient) leer(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	if c.apiKey == "" {
		return nil, apierror.Configuracion("API key de Holded no configurada")
	}
	if err := c.esperar(ctx); err != nil {
		return nil, err
	}

	var (
		status int
		body   []byte
	)
	err := c.cb.Execute(func() error {
		var err error
		status, body, err = c.enviar(ctx, http.MethodGet, path, nil, timeout)
		if err != nil {
			return err
		}
		if status >= http.StatusInternalServerError {
			return &HTTPError{Status: status, Body: string(body)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respuesta(status, body)
}

func (c *HoldedClient) esperar(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("holded: rate limiter: %w", err)
	}
	return nil
}

// enviar performs one request. Only transport failures are errors here; the
// status is left to the caller.
func (c *HoldedClient) enviar(ctx context.Context, method, path string, reqBody []byte, timeout time.Duration) (int, []byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rd io.Reader
	if reqBody != nil {
		rd = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("holded: create request: %w", err)
	}
	req.Header.Set("key", c.apiKey)
	req.Header.Set("accept", "application/json")
	if reqBody != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("holded: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("holded: read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func respuesta(status int, body []byte) ([]byte, error) {
	if status != http.StatusOK && status != http.StatusNoContent {
		return nil, &HTTPError{Status: status, Body: string(body)}
	}
	return body, nil
}

// errorConsulta turns a failed read into the error reported to the caller.
func errorConsulta(recurso string, err error) error {
	if errors.Is(err, apierror.ErrConfiguracion) {
		return err
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusUnauthorized {
			return errors.Mark(errors.Mark(errors.New("API key inválida o sin permisos"), apierror.ErrCredenciales), apierror.ErrProveedor)
		}
		return apierror.Proveedor("Error al obtener %s de Holded: HTTP %d", recurso, httpErr.Status)
	}
	return errors.Mark(errors.Wrapf(err, "Error al obtener %s de Holded", recurso), apierror.ErrProveedor)
}
