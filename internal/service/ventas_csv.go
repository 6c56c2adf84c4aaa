package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Glop sales export columns.
const (
	ColTerminal = "TERMINAL"
	ColSKU      = "C.BARRAS ARTICULO"
	ColUnidades = "UNIDADES"

	colArticuloDefecto  = "ARTICULO"
	articuloDesconocido = "Desconocido"

	delimitadorDefecto = ';'
	muestraDelimitador = 1024
)

var candidatosDelimitador = []rune{';', ',', '\t', '|'}

// ErrSinUnidades marks a row whose UNIDADES cell is empty or "nan".
// Such rows are skipped without being reported.
var ErrSinUnidades = errors.New("fila sin unidades")

// FilaInvalidaError is a row whose units could not be parsed. The row's other
// fields are still returned alongside it.
type FilaInvalidaError struct {
	Fila  int
	Causa error
}

func (e *FilaInvalidaError) Error() string {
	return "Error parsing data: " + e.Causa.Error()
}

func (e *FilaInvalidaError) Unwrap() error { return e.Causa }

// OpcionesCSV selects between the reconciliation and the validation reading modes.
type OpcionesCSV struct {
	// DetectarDelimitador sniffs the delimiter instead of assuming ';'.
	DetectarDelimitador bool
	// ColumnasRequeridas makes a missing TERMINAL / C.BARRAS ARTICULO / UNIDADES fatal.
	ColumnasRequeridas bool
}

// DecodificarCSV returns data as text: UTF-8 when valid, Latin-1 otherwise.
// A leading UTF-8 BOM is dropped.
func DecodificarCSV(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// DetectarDelimitador picks the delimiter that appears the same non-zero
// number of times on every complete line of the sample. Ties go to the
// candidate with more occurrences, then to ';'. Falls back to ';'.
func DetectarDelimitador(texto string) rune {
	muestra := texto
	truncada := false
	if len(muestra) > muestraDelimitador {
		muestra = muestra[:muestraDelimitador]
		truncada = true
	}
	lineas := strings.Split(muestra, "\n")
	if truncada && len(lineas) > 1 {
		lineas = lineas[:len(lineas)-1]
	}

	mejor, mejorCuenta := rune(delimitadorDefecto), 0
	for _, cand := range candidatosDelimitador {
		cuenta := -1
		for _, l := range lineas {
			l = strings.TrimRight(l, "\r")
			if strings.TrimSpace(l) == "" {
				continue
			}
			n := strings.Count(l, string(cand))
			if cuenta == -1 {
				cuenta = n
			} else if n != cuenta {
				cuenta = 0
				break
			}
		}
		if cuenta > mejorCuenta {
			mejor, mejorCuenta = cand, cuenta
		}
	}
	return mejor
}

// LectorVentas pulls rows out of a Glop sales export one at a time.
// It cannot be rewound.
type LectorVentas struct {
	r           *csv.Reader
	columnas    []string
	indice      map[string]int
	colArticulo string
	fila        int
}

// NuevoLectorVentas decodes data, reads the header and checks the required
// columns. Structural problems are reported here, before any row is read.
func NuevoLectorVentas(data []byte, opts OpcionesCSV) (*LectorVentas, error) {
	texto := DecodificarCSV(data)

	delim := rune(delimitadorDefecto)
	if opts.DetectarDelimitador {
		delim = DetectarDelimitador(texto)
	}

	r := csv.NewReader(strings.NewReader(texto))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, apierror.Entrada("El archivo CSV está vacío")
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "Error al leer la cabecera del CSV"), apierror.ErrEntrada)
	}

	l := &LectorVentas{r: r, indice: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		l.columnas = append(l.columnas, h)
		if _, dup := l.indice[h]; !dup {
			l.indice[h] = i
		}
	}

	if opts.ColumnasRequeridas {
		for _, col := range []string{ColTerminal, ColSKU, ColUnidades} {
			if _, ok := l.indice[col]; !ok {
				return nil, apierror.Entrada("Columna faltante en CSV: %s", col)
			}
		}
	}
	l.colArticulo = columnaArticulo(l.columnas)
	return l, nil
}

// columnaArticulo finds the product-name column: the first header mentioning
// ART that is not the barcode column.
func columnaArticulo(columnas []string) string {
	for _, c := range columnas {
		up := strings.ToUpper(c)
		if strings.Contains(up, "ART") && !strings.Contains(up, "BARRAS") {
			return c
		}
	}
	return colArticuloDefecto
}

// Columnas returns the trimmed header.
func (l *LectorVentas) Columnas() []string { return l.columnas }

// Next returns the next row, or io.EOF when there are none left.
// ErrSinUnidades and *FilaInvalidaError are row-level: the returned row is
// populated and reading can continue.
func (l *LectorVentas) Next() (model.FilaVenta, error) {
	rec, err := l.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.FilaVenta{}, io.EOF
		}
		return model.FilaVenta{}, errors.Mark(errors.Wrapf(err, "Error al leer la fila %d del CSV", l.fila), apierror.ErrEntrada)
	}

	f := model.FilaVenta{
		Fila:     l.fila,
		Terminal: strings.TrimSpace(l.campo(rec, ColTerminal)),
		SKU:      strings.TrimSpace(l.campo(rec, ColSKU)),
		Articulo: articuloDesconocido,
	}
	if _, ok := l.indice[l.colArticulo]; ok {
		f.Articulo = strings.TrimSpace(l.campo(rec, l.colArticulo))
	}
	l.fila++

	raw := "0"
	if _, ok := l.indice[ColUnidades]; ok {
		raw = l.campo(rec, ColUnidades)
	}
	unidades, err := parseUnidades(raw)
	if err != nil {
		if errors.Is(err, ErrSinUnidades) {
			return f, ErrSinUnidades
		}
		return f, &FilaInvalidaError{Fila: f.Fila, Causa: err}
	}
	f.Unidades = unidades
	return f, nil
}

func (l *LectorVentas) campo(rec []string, col string) string {
	i, ok := l.indice[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// parseUnidades accepts both decimal comma and decimal point.
func parseUnidades(raw string) (float64, error) {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if v == "" || strings.EqualFold(v, "nan") {
		return 0, ErrSinUnidades
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("could not convert string to float: '%s'", v)
	}
	return f, nil
}

// AgregarPorSKU consumes the reader and totals units per SKU, keeping the
// first product label seen for each SKU and first-seen order. Rows without a
// SKU or with unusable units are ignored. It also returns how many data rows
// were read.
func AgregarPorSKU(l *LectorVentas) ([]model.VentaAgregada, int, error) {
	var orden []string
	sumas := map[string]decimal.Decimal{}
	nombre := map[string]string{}
	total := 0
	for {
		f, err := l.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var filaErr *FilaInvalidaError
		if err != nil && !errors.Is(err, ErrSinUnidades) && !errors.As(err, &filaErr) {
			return nil, total, err
		}
		total++
		if err != nil || f.SKU == "" {
			continue
		}
		if _, ok := sumas[f.SKU]; !ok {
			orden = append(orden, f.SKU)
			sumas[f.SKU] = decimal.Zero
			nombre[f.SKU] = f.Articulo
		}
		sumas[f.SKU] = sumas[f.SKU].Add(decimal.NewFromFloat(f.Unidades))
	}

	out := make([]model.VentaAgregada, 0, len(orden))
	for _, sku := range orden {
		out = append(out, model.VentaAgregada{
			SKU:      sku,
			Articulo: nombre[sku],
			Unidades: sumas[sku].InexactFloat64(),
		})
	}
	return out, total, nil
}
