package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/dto"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// Almacenamiento reads sales exports from object storage.
type Almacenamiento interface {
	Existe(ctx context.Context, bucket, objeto string) (bool, error)
	Descargar(ctx context.Context, bucket, objeto string) ([]byte, error)
}

// ActualizacionService runs the streaming reconciliation: every CSV row
// becomes one stock adjustment against the warehouse its terminal maps to.
// Each run leaves an audit log behind, whatever the outcome.
type ActualizacionService interface {
	ActualizarDesdeGCS(ctx context.Context, req dto.ActualizarDesdeGCSRequest) (*model.ResultadoLote, error)
	ActualizarDesdeArchivo(ctx context.Context, nombre string, data []byte, dryRun bool) (*model.ResultadoLote, error)
}

type actualizacionService struct {
	proveedor       Proveedor
	store           Almacenamiento
	auditoria       *Auditoria
	fallbackCaceres string
}

func NewActualizacionService(proveedor Proveedor, store Almacenamiento, auditoria *Auditoria, fallbackCaceres string) ActualizacionService {
	return &actualizacionService{
		proveedor:       proveedor,
		store:           store,
		auditoria:       auditoria,
		fallbackCaceres: fallbackCaceres,
	}
}

func (s *actualizacionService) ActualizarDesdeGCS(ctx context.Context, req dto.ActualizarDesdeGCSRequest) (*model.ResultadoLote, error) {
	return s.ejecutar(ctx, req.GSURI, req.EsDryRun(), func() ([]byte, error) {
		obj, err := infra.ParseGSURI(req.GSURI)
		if err != nil {
			return nil, err
		}
		existe, err := s.store.Existe(ctx, obj.Bucket, obj.Nombre)
		if err != nil {
			return nil, errorAlmacenamiento(err)
		}
		if !existe {
			return nil, apierror.NoEncontrado("Archivo no encontrado en GCS: %s", req.GSURI)
		}
		data, err := s.store.Descargar(ctx, obj.Bucket, obj.Nombre)
		if err != nil {
			return nil, errorAlmacenamiento(err)
		}
		return data, nil
	})
}

func (s *actualizacionService) ActualizarDesdeArchivo(ctx context.Context, nombre string, data []byte, dryRun bool) (*model.ResultadoLote, error) {
	return s.ejecutar(ctx, "upload://"+nombre, dryRun, func() ([]byte, error) {
		if !esCSV(nombre) {
			return nil, apierror.Entrada("El archivo debe ser CSV")
		}
		return data, nil
	})
}

func errorAlmacenamiento(err error) error {
	if errors.Is(err, apierror.ErrConfiguracion) {
		return err
	}
	return errors.Mark(errors.Wrap(err, "Error al acceder a GCS"), apierror.ErrProveedor)
}

func esCSV(nombre string) bool {
	return strings.HasSuffix(strings.ToLower(nombre), ".csv")
}

// ejecutar wraps one run with its audit log. The log is finalised on every
// exit path, panics included; the run's own error is returned untouched.
func (s *actualizacionService) ejecutar(ctx context.Context, inputURI string, dryRun bool, cargar func() ([]byte, error)) (res *model.ResultadoLote, err error) {
	reg := s.auditoria.Iniciar(inputURI, dryRun)
	logger := log.With().Str("run_id", reg.RunID).Str("input_uri", inputURI).Bool("dry_run", dryRun).Logger()
	logger.Info().Msg("stock update run started")

	defer func() {
		if r := recover(); r != nil {
			reg.Fallo(fmt.Errorf("panic: %v", r))
			s.auditoria.Finalizar(ctx, reg)
			panic(r)
		}
		if err != nil {
			reg.Fallo(err)
			logger.Error().Err(err).Msg("stock update run failed")
		} else {
			reg.Exito(res)
			logger.Info().
				Int("processed", res.Procesadas).
				Int("updated", res.Actualizadas).
				Int("errors", len(res.Errores)).
				Msg("stock update run finished")
		}
		s.auditoria.Finalizar(ctx, reg)
	}()

	if !s.proveedor.Configurado() {
		return nil, errSinAPIKey()
	}
	prov := s.proveedorEjecucion()

	capturarSnapshot(ctx, prov, reg)

	data, err := cargar()
	if err != nil {
		return nil, err
	}
	return s.procesar(ctx, prov, data, dryRun)
}

// sesionable providers keep failure state (*infra.HoldedClient's circuit
// breaker); each run works on its own session of them.
type sesionable interface {
	Sesion() *infra.HoldedClient
}

func (s *actualizacionService) proveedorEjecucion() Proveedor {
	if p, ok := s.proveedor.(sesionable); ok {
		return p.Sesion()
	}
	return s.proveedor
}

// capturarSnapshot stores the pre-run stock report in the log. Failing to get
// it does not stop the run.
func capturarSnapshot(ctx context.Context, prov Proveedor, reg *model.RegistroEjecucion) {
	informe, err := (&holdedService{proveedor: prov}).StockPorAlmacen(ctx)
	if err != nil {
		reg.DatabaseSnapshotError = err.Error()
		log.Warn().Err(err).Str("run_id", reg.RunID).Msg("failed to capture database snapshot")
		return
	}
	reg.DatabaseSnapshot = informe
}

// filaLeida is a CSV row plus its row-level error, if any.
type filaLeida struct {
	fila model.FilaVenta
	err  error
}

func (s *actualizacionService) procesar(ctx context.Context, prov Proveedor, data []byte, dryRun bool) (*model.ResultadoLote, error) {
	lector, err := NuevoLectorVentas(data, OpcionesCSV{ColumnasRequeridas: true})
	if err != nil {
		return nil, err
	}
	filas, err := leerFilas(lector)
	if err != nil {
		return nil, err
	}

	almacenes, err := prov.ListarAlmacenes(ctx)
	if err != nil {
		return nil, err
	}
	resolutor := NuevoResolutorTerminales(NuevaTablaAlmacenes(almacenes), ReglasPorDefecto(s.fallbackCaceres))

	productos, err := prov.ListarProductos(ctx)
	if err != nil {
		return nil, err
	}
	catalogo := NuevoCatalogo(productos, NombreConVariante)

	snap, err := precargarStock(ctx, prov, filas, resolutor)
	if err != nil {
		return nil, err
	}

	ejecutor := NuevoEjecutorActualizaciones(prov, dryRun)
	res := model.NuevoResultadoLote()
	for _, l := range filas {
		res.Procesadas++
		f := l.fila

		if l.err != nil {
			if errors.Is(l.err, ErrSinUnidades) {
				continue
			}
			res.Errores = append(res.Errores, model.ErrorFila{
				Fila:     f.Fila,
				Error:    l.err.Error(),
				SKU:      f.SKU,
				Producto: f.Articulo,
				Terminal: f.Terminal,
			})
			continue
		}

		almacenID, ok := resolutor.Resolver(f.Terminal)
		if !ok {
			res.Errores = append(res.Errores, errorFila(f, f.Articulo, fmt.Sprintf("Almacén '%s' no encontrado", f.Terminal)))
			continue
		}
		entrada, ok := catalogo.Buscar(f.SKU)
		if !ok {
			res.Errores = append(res.Errores, errorFila(f, f.Articulo, fmt.Sprintf("SKU '%s' no encontrado", f.SKU)))
			continue
		}

		mov, err := ejecutor.Aplicar(ctx, f, almacenID, entrada, snap)
		res.Movimientos = append(res.Movimientos, mov)
		if err != nil {
			res.Errores = append(res.Errores, errorFila(f, entrada.Nombre, mensajeErrorAPI(err)))
			continue
		}
		if mov.Estado == model.EstadoExito {
			res.Actualizadas++
		}
	}
	return res, nil
}

func errorFila(f model.FilaVenta, producto, msg string) model.ErrorFila {
	unidades := f.Unidades
	return model.ErrorFila{
		Fila:     f.Fila,
		Error:    msg,
		SKU:      f.SKU,
		Producto: producto,
		Unidades: &unidades,
		Terminal: f.Terminal,
	}
}

// leerFilas drains the reader. Row-level problems travel with their row;
// anything else aborts.
func leerFilas(lector *LectorVentas) ([]filaLeida, error) {
	var filas []filaLeida
	for {
		f, err := lector.Next()
		if errors.Is(err, io.EOF) {
			return filas, nil
		}
		var filaErr *FilaInvalidaError
		if err != nil && !errors.Is(err, ErrSinUnidades) && !errors.As(err, &filaErr) {
			return nil, err
		}
		filas = append(filas, filaLeida{fila: f, err: err})
	}
}

// precargarStock fetches current stock once per distinct warehouse the CSV
// resolves to, in order of first appearance.
func precargarStock(ctx context.Context, prov Proveedor, filas []filaLeida, resolutor *ResolutorTerminales) (model.SnapshotStock, error) {
	snap := model.SnapshotStock{}
	vistos := map[string]bool{}
	terminales := map[string]bool{}
	for _, l := range filas {
		t := l.fila.Terminal
		if terminales[t] {
			continue
		}
		terminales[t] = true

		almacenID, ok := resolutor.Resolver(t)
		if !ok || vistos[almacenID] {
			continue
		}
		vistos[almacenID] = true

		start := time.Now()
		items, err := prov.StockAlmacen(ctx, almacenID)
		if err != nil {
			return nil, err
		}
		snap.Registrar(almacenID, items)
		log.Debug().Str("warehouse_id", almacenID).Int("items", len(items)).Dur("latency", time.Since(start)).Msg("warehouse stock loaded")
	}
	return snap, nil
}
