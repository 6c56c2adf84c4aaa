package service

import (
	"context"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/infra"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const timeoutSubidaLog = 30 * time.Second

// Auditoria opens and closes run logs. Closing never fails the run: upload
// problems are logged and dropped.
type Auditoria struct {
	repo          repository.EjecucionRepository
	bucketDefecto string
	now           func() time.Time
}

func NuevaAuditoria(repo repository.EjecucionRepository, bucketDefecto string) *Auditoria {
	return &Auditoria{repo: repo, bucketDefecto: bucketDefecto, now: time.Now}
}

// Iniciar creates the log for a run that starts now.
func (a *Auditoria) Iniciar(inputURI string, dryRun bool) *model.RegistroEjecucion {
	return &model.RegistroEjecucion{
		RunID:          uuid.NewString(),
		TimestampStart: a.now().UTC(),
		InputURI:       inputURI,
		DryRun:         dryRun,
		Status:         model.EjecucionIniciada,
	}
}

// BucketLogs is where the log of a run over inputURI is written: the input's
// own bucket for gs:// inputs, the configured default otherwise.
func (a *Auditoria) BucketLogs(inputURI string) string {
	if bucket, ok := infra.BucketDeURI(inputURI); ok {
		return bucket
	}
	return a.bucketDefecto
}

// Finalizar stamps the end of the run and uploads the log.
func (a *Auditoria) Finalizar(ctx context.Context, reg *model.RegistroEjecucion) {
	reg.Cerrar(a.now().UTC())

	// The request may already be cancelled; the log still has to go out.
	upCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeoutSubidaLog)
	defer cancel()

	bucket := a.BucketLogs(reg.InputURI)
	uri, err := a.repo.Guardar(upCtx, bucket, reg)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", reg.RunID).
			Str("bucket", bucket).
			Msg("failed to upload run log")
		return
	}
	log.Info().
		Str("run_id", reg.RunID).
		Str("status", string(reg.Status)).
		Float64("duration_seconds", reg.DurationSeconds).
		Str("log_uri", uri).
		Msg("run log uploaded")
}
