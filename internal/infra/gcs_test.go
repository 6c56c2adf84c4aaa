package infra

import (
	"context"
	"testing"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGSURI(t *testing.T) {
	obj, err := ParseGSURI("gs://glop-reports/exports/ventas%20octubre.csv")
	require.NoError(t, err)
	assert.Equal(t, ObjetoGCS{Bucket: "glop-reports", Nombre: "exports/ventas octubre.csv"}, obj)
	assert.Equal(t, "gs://glop-reports/exports/ventas octubre.csv", obj.URI())
}

func TestParseGSURI_Invalida(t *testing.T) {
	cases := map[string]string{
		"https://x/y.csv": "La URI debe comenzar con gs://",
		"gs://bucket":     "URI inválida. Formato: gs://bucket/path/file.csv",
		"gs://bucket/":    "URI inválida. Formato: gs://bucket/path/file.csv",
		"gs:///file.csv":  "URI inválida. Formato: gs://bucket/path/file.csv",
	}
	for uri, msg := range cases {
		t.Run(uri, func(t *testing.T) {
			_, err := ParseGSURI(uri)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierror.ErrEntrada))
			assert.Equal(t, msg, err.Error())
		})
	}
}

func TestBucketDeURI(t *testing.T) {
	b, ok := BucketDeURI("gs://mi-bucket/a/b.csv")
	assert.True(t, ok)
	assert.Equal(t, "mi-bucket", b)

	b, ok = BucketDeURI("gs://solo-bucket")
	assert.True(t, ok)
	assert.Equal(t, "solo-bucket", b)

	_, ok = BucketDeURI("upload://ventas.csv")
	assert.False(t, ok)
}

func TestNewGCSStore_SinCredenciales(t *testing.T) {
	_, err := NewGCSStore(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrConfiguracion))

	_, err = NewGCSStore(context.Background(), "%%%not-base64")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrConfiguracion))
}

func TestStoreNoConfigurado(t *testing.T) {
	var s StoreNoConfigurado
	ctx := context.Background()

	_, err := s.Existe(ctx, "b", "o")
	assert.True(t, errors.Is(err, apierror.ErrConfiguracion))
	_, err = s.Descargar(ctx, "b", "o")
	assert.True(t, errors.Is(err, apierror.ErrConfiguracion))
	assert.True(t, errors.Is(s.Subir(ctx, "b", "o", nil, "text/csv"), apierror.ErrConfiguracion))
	assert.Error(t, s.Ping(ctx, "b"))
}
