package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/dto"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// CSVService handles uploaded sales exports that are inspected, never applied.
type CSVService interface {
	// Previsualizar parses the file and returns its rows as-is.
	Previsualizar(nombre string, data []byte) (*dto.PreviewCSVResponse, error)
	// ValidarStock aggregates sales per SKU and compares them with Holded's
	// catalog-level stock.
	ValidarStock(ctx context.Context, nombre string, data []byte, recibido time.Time) (*dto.ValidacionStockResponse, error)
}

type csvService struct {
	proveedor Proveedor
}

func NewCSVService(proveedor Proveedor) CSVService {
	return &csvService{proveedor: proveedor}
}

func (s *csvService) Previsualizar(nombre string, data []byte) (*dto.PreviewCSVResponse, error) {
	if !esCSV(nombre) {
		return nil, apierror.Entrada("El archivo debe ser CSV")
	}

	r := csv.NewReader(strings.NewReader(DecodificarCSV(data)))
	r.Comma = delimitadorDefecto
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, apierror.Entrada("El archivo CSV está vacío")
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "Error al procesar el archivo"), apierror.ErrEntrada)
	}
	columnas := make([]string, len(header))
	for i, h := range header {
		columnas[i] = strings.TrimSpace(h)
	}

	filas := []map[string]string{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "Error al procesar el archivo"), apierror.ErrEntrada)
		}
		fila := make(map[string]string, len(columnas))
		for i, col := range columnas {
			if i < len(rec) {
				fila[col] = rec[i]
			} else {
				fila[col] = ""
			}
		}
		filas = append(filas, fila)
	}

	return &dto.PreviewCSVResponse{
		Message:  "Archivo procesado exitosamente",
		Filename: nombre,
		Size:     len(data),
		Rows:     len(filas),
		Columns:  columnas,
		Data:     filas,
	}, nil
}

func (s *csvService) ValidarStock(ctx context.Context, nombre string, data []byte, recibido time.Time) (*dto.ValidacionStockResponse, error) {
	if !esCSV(nombre) {
		return nil, apierror.Entrada("El archivo debe ser CSV")
	}
	if !s.proveedor.Configurado() {
		return nil, errSinAPIKey()
	}

	productos, err := s.proveedor.ListarProductos(ctx)
	if err != nil {
		return nil, err
	}
	catalogo := NuevoCatalogo(productos, NombreConSKU)

	lector, err := NuevoLectorVentas(data, OpcionesCSV{DetectarDelimitador: true})
	if err != nil {
		return nil, err
	}
	ventas, totalFilas, err := AgregarPorSKU(lector)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidacionStockResponse{
		HoldedInfo: dto.HoldedInfo{
			TotalProducts: catalogo.TotalProductos(),
			TotalVariants: catalogo.TotalVariantes(),
			TotalSKUs:     catalogo.TotalSKUs(),
		},
		ValidationResults: []dto.ValidacionItem{},
		MissingSKUs:       []dto.SKUFaltante{},
	}

	total := decimal.Zero
	for _, v := range ventas {
		vendidas := decimal.NewFromFloat(v.Unidades)
		total = total.Add(vendidas)

		entrada, ok := catalogo.Buscar(v.SKU)
		if !ok {
			resp.MissingSKUs = append(resp.MissingSKUs, dto.SKUFaltante{
				SKU:     v.SKU,
				CSVName: v.Articulo,
				SoldQty: vendidas.IntPart(),
			})
			continue
		}
		resp.ValidationResults = append(resp.ValidationResults, dto.ValidacionItem{
			SKU:        v.SKU,
			CSVName:    v.Articulo,
			HoldedName: entrada.Nombre,
			OldStock:   entrada.StockActual,
			SoldQty:    vendidas.IntPart(),
			NewStock:   entrada.StockActual - v.Unidades,
			Found:      true,
			Kind:       string(entrada.Tipo),
		})
	}

	resp.FileInfo = dto.ArchivoInfo{
		Filename:       nombre,
		CreationDate:   recibido.Format("2006-01-02 15:04:05"),
		TotalRows:      totalFilas,
		UniqueSKUs:     len(ventas),
		TotalUnitsSold: total.IntPart(),
	}
	resp.Summary = dto.ValidacionResumen{
		TotalItems:   len(ventas),
		FoundItems:   len(resp.ValidationResults),
		MissingItems: len(resp.MissingSKUs),
	}
	return resp, nil
}
