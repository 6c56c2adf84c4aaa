package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subida struct {
	bucket, objeto, contentType string
	data                        []byte
}

type fakeBlobWriter struct {
	subidas []subida
	err     error
}

func (f *fakeBlobWriter) Subir(_ context.Context, bucket, objeto string, data []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.subidas = append(f.subidas, subida{bucket: bucket, objeto: objeto, contentType: contentType, data: data})
	return nil
}

func registroCerrado() *model.RegistroEjecucion {
	inicio := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	reg := &model.RegistroEjecucion{
		RunID:          "run-1",
		TimestampStart: inicio,
		InputURI:       "gs://in/ventas.csv",
		DryRun:         true,
		Status:         model.EjecucionIniciada,
	}
	res := model.NuevoResultadoLote()
	res.Procesadas = 4
	res.Actualizadas = 0
	res.Errores = append(res.Errores, model.ErrorFila{Fila: 1, Error: "SKU 'x' no encontrado"})
	reg.Exito(res)
	reg.Cerrar(inicio.Add(90 * time.Second))
	return reg
}

func TestNombreLog(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	cierre := time.Date(2026, 10, 19, 8, 30, 5, 0, loc)
	assert.Equal(t, "logs/stock_update_log_20261019_073005_run-1.json", NombreLog(cierre, "run-1"))
	assert.Equal(t, "logs/stock_update_log_20261019_073005.json", NombreLog(cierre, ""))
}

func TestGuardar_MismoSegundoNoSobrescribe(t *testing.T) {
	blobs := &fakeBlobWriter{}
	repo := NewEjecucionRepository(blobs, nil)

	vivo := registroCerrado()
	simulado := registroCerrado()
	simulado.RunID = "run-2"
	require.Equal(t, *vivo.TimestampEnd, *simulado.TimestampEnd)

	uri1, err := repo.Guardar(context.Background(), "in", vivo)
	require.NoError(t, err)
	uri2, err := repo.Guardar(context.Background(), "in", simulado)
	require.NoError(t, err)

	assert.NotEqual(t, uri1, uri2)
	require.Len(t, blobs.subidas, 2)
	assert.NotEqual(t, blobs.subidas[0].objeto, blobs.subidas[1].objeto)
}

func TestGuardar(t *testing.T) {
	blobs := &fakeBlobWriter{}
	repo := NewEjecucionRepository(blobs, nil)

	uri, err := repo.Guardar(context.Background(), "in", registroCerrado())
	require.NoError(t, err)
	assert.Equal(t, "gs://in/logs/stock_update_log_20261019_080130_run-1.json", uri)

	require.Len(t, blobs.subidas, 1)
	s := blobs.subidas[0]
	assert.Equal(t, "in", s.bucket)
	assert.Equal(t, "application/json", s.contentType)
	assert.Contains(t, string(s.data), "\n  \"run_id\": \"run-1\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(s.data, &doc))
	assert.Equal(t, "success", doc["status"])
	assert.Equal(t, 90.0, doc["duration_seconds"])
	assert.Nil(t, doc["error"])
	results := doc["results"].(map[string]any)
	assert.Equal(t, 4.0, results["processed"])
	assert.Len(t, results["errors"], 1)
	assert.Empty(t, results["updates"])
}

func TestGuardar_ErrorSubida(t *testing.T) {
	repo := NewEjecucionRepository(&fakeBlobWriter{err: errors.New("403")}, nil)
	_, err := repo.Guardar(context.Background(), "in", registroCerrado())
	assert.Error(t, err)
}

func TestListarRecientes_SinRedis(t *testing.T) {
	repo := NewEjecucionRepository(&fakeBlobWriter{}, nil)
	runs, err := repo.ListarRecientes(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestResumir(t *testing.T) {
	r := registroCerrado().Resumir("gs://in/logs/x.json")
	assert.Equal(t, model.ResumenEjecucion{
		RunID:        "run-1",
		Status:       model.EjecucionExitosa,
		InputURI:     "gs://in/ventas.csv",
		DryRun:       true,
		Procesadas:   4,
		Actualizadas: 0,
		Errores:      1,
		Inicio:       time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Duracion:     90,
		LogURI:       "gs://in/logs/x.json",
	}, r)
}
