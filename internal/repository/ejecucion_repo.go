package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// RecentRunsKey is the redis list holding the latest run summaries, newest first.
	RecentRunsKey = "glop2holded:runs"
	recentRunsCap = 50

	logContentType = "application/json"
)

// BlobWriter is the part of the object store used to persist run logs.
type BlobWriter interface {
	Subir(ctx context.Context, bucket, objeto string, data []byte, contentType string) error
}

// EjecucionRepository persists run logs and keeps the recent-runs index.
type EjecucionRepository interface {
	// Guardar writes the log to bucket and returns its gs:// URI.
	Guardar(ctx context.Context, bucket string, reg *model.RegistroEjecucion) (string, error)
	ListarRecientes(ctx context.Context, limit int) ([]model.ResumenEjecucion, error)
}

type ejecucionRepo struct {
	store BlobWriter
	rdb   *redis.Client // nil disables the index
}

func NewEjecucionRepository(store BlobWriter, rdb *redis.Client) EjecucionRepository {
	return &ejecucionRepo{store: store, rdb: rdb}
}

// NombreLog is the object name for the log of run runID closed at t. The run
// id keeps runs closing within the same second from overwriting each other.
func NombreLog(t time.Time, runID string) string {
	nombre := "logs/stock_update_log_" + t.UTC().Format("20060102_150405")
	if runID != "" {
		nombre += "_" + runID
	}
	return nombre + ".json"
}

func (r *ejecucionRepo) Guardar(ctx context.Context, bucket string, reg *model.RegistroEjecucion) (string, error) {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal run log")
	}

	cierre := time.Now()
	if reg.TimestampEnd != nil {
		cierre = *reg.TimestampEnd
	}
	nombre := NombreLog(cierre, reg.RunID)
	if err := r.store.Subir(ctx, bucket, nombre, data, logContentType); err != nil {
		return "", err
	}
	uri := "gs://" + bucket + "/" + nombre

	r.indexar(ctx, reg.Resumir(uri))
	return uri, nil
}

// indexar pushes the summary to the recent-runs list. Failures only cost the
// index entry, never the run.
func (r *ejecucionRepo) indexar(ctx context.Context, resumen model.ResumenEjecucion) {
	if r.rdb == nil {
		return
	}
	data, err := json.Marshal(resumen)
	if err != nil {
		log.Error().Err(err).Str("run_id", resumen.RunID).Msg("runs index: marshal failed")
		return
	}
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, RecentRunsKey, data)
	pipe.LTrim(ctx, RecentRunsKey, 0, recentRunsCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("run_id", resumen.RunID).Msg("runs index: push failed")
	}
}

func (r *ejecucionRepo) ListarRecientes(ctx context.Context, limit int) ([]model.ResumenEjecucion, error) {
	if r.rdb == nil {
		return []model.ResumenEjecucion{}, nil
	}
	if limit < 1 || limit > recentRunsCap {
		limit = 20
	}
	raw, err := r.rdb.LRange(ctx, RecentRunsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "runs index: lrange")
	}
	out := make([]model.ResumenEjecucion, 0, len(raw))
	for _, item := range raw {
		var resumen model.ResumenEjecucion
		if err := json.Unmarshal([]byte(item), &resumen); err != nil {
			log.Warn().Err(err).Msg("runs index: skipping malformed entry")
			continue
		}
		out = append(out, resumen)
	}
	return out, nil
}
