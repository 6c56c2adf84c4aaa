package infra

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/option"
)

// GCSStore reads sales exports from and writes run logs to Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore builds a client from a base64-encoded service account JSON.
func NewGCSStore(ctx context.Context, credentialsBase64 string) (*GCSStore, error) {
	if strings.TrimSpace(credentialsBase64) == "" {
		return nil, apierror.Configuracion("Credenciales de GCS no configuradas")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(credentialsBase64))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "GCS_CREDENTIALS_BASE64 no es base64 válido"), apierror.ErrConfiguracion)
	}
	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "no se pudo crear el cliente de GCS"), apierror.ErrConfiguracion)
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Existe(ctx context.Context, bucket, objeto string) (bool, error) {
	_, err := s.client.Bucket(bucket).Object(objeto).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "gcs: attrs gs://%s/%s", bucket, objeto)
	}
	return true, nil
}

func (s *GCSStore) Descargar(ctx context.Context, bucket, objeto string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(objeto).NewReader(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "gcs: open gs://%s/%s", bucket, objeto)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "gcs: read gs://%s/%s", bucket, objeto)
	}
	return data, nil
}

func (s *GCSStore) Subir(ctx context.Context, bucket, objeto string, data []byte, contentType string) error {
	w := s.client.Bucket(bucket).Object(objeto).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "gcs: write gs://%s/%s", bucket, objeto)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "gcs: close gs://%s/%s", bucket, objeto)
	}
	return nil
}

// Ping checks that the bucket exists and the credentials can see it.
func (s *GCSStore) Ping(ctx context.Context, bucket string) error {
	_, err := s.client.Bucket(bucket).Attrs(ctx)
	return err
}

func (s *GCSStore) Close() error { return s.client.Close() }

// StoreNoConfigurado stands in for GCSStore when no credentials are set.
// Every operation fails with a configuration error.
type StoreNoConfigurado struct{}

func (StoreNoConfigurado) err() error {
	return apierror.Configuracion("GCS no configurado: defina GCS_CREDENTIALS_BASE64")
}

func (n StoreNoConfigurado) Existe(context.Context, string, string) (bool, error) {
	return false, n.err()
}

func (n StoreNoConfigurado) Descargar(context.Context, string, string) ([]byte, error) {
	return nil, n.err()
}

func (n StoreNoConfigurado) Subir(context.Context, string, string, []byte, string) error {
	return n.err()
}

func (n StoreNoConfigurado) Ping(context.Context, string) error { return n.err() }

// ── gs:// URIs ────────────────────────────────────────────────────────────────

// ObjetoGCS identifies an object by bucket and name.
type ObjetoGCS struct {
	Bucket string
	Nombre string
}

func (o ObjetoGCS) URI() string { return "gs://" + o.Bucket + "/" + o.Nombre }

// ParseGSURI splits gs://bucket/path/file.csv. "%20" in the object name is
// decoded to a space; no other escapes are interpreted.
func ParseGSURI(uri string) (ObjetoGCS, error) {
	if !strings.HasPrefix(uri, "gs://") {
		return ObjetoGCS{}, apierror.Entrada("La URI debe comenzar con gs://")
	}
	bucket, nombre, ok := strings.Cut(strings.TrimPrefix(uri, "gs://"), "/")
	if !ok || bucket == "" || nombre == "" {
		return ObjetoGCS{}, apierror.Entrada("URI inválida. Formato: gs://bucket/path/file.csv")
	}
	return ObjetoGCS{Bucket: bucket, Nombre: strings.ReplaceAll(nombre, "%20", " ")}, nil
}

// BucketDeURI returns the bucket part of a gs:// URI even when the object
// part is missing. ok is false for anything else.
func BucketDeURI(uri string) (string, bool) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", false
	}
	bucket, _, _ := strings.Cut(strings.TrimPrefix(uri, "gs://"), "/")
	return bucket, bucket != ""
}
