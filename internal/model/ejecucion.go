package model

import "time"

type EstadoEjecucion string

const (
	EjecucionIniciada EstadoEjecucion = "started"
	EjecucionExitosa  EstadoEjecucion = "success"
	EjecucionFallida  EstadoEjecucion = "error"
)

// RegistroEjecucion is the audit document written for every reconciliation
// run, whatever its outcome.
type RegistroEjecucion struct {
	RunID                 string          `json:"run_id"`
	TimestampStart        time.Time       `json:"timestamp_start"`
	TimestampEnd          *time.Time      `json:"timestamp_end,omitempty"`
	DurationSeconds       float64         `json:"duration_seconds"`
	InputURI              string          `json:"input_uri"`
	DryRun                bool            `json:"dry_run"`
	Status                EstadoEjecucion `json:"status"`
	DatabaseSnapshot      *InformeStock   `json:"database_snapshot,omitempty"`
	DatabaseSnapshotError string          `json:"database_snapshot_error,omitempty"`
	Results               *ResultadoLote  `json:"results"`
	Error                 *string         `json:"error"`
}

// Exito records the final result of a completed run.
func (r *RegistroEjecucion) Exito(res *ResultadoLote) {
	r.Results = res
	r.Status = EjecucionExitosa
}

// Fallo records the error that aborted the run.
func (r *RegistroEjecucion) Fallo(err error) {
	msg := err.Error()
	r.Status = EjecucionFallida
	r.Error = &msg
}

// Cerrar stamps the end time and duration.
func (r *RegistroEjecucion) Cerrar(fin time.Time) {
	r.TimestampEnd = &fin
	r.DurationSeconds = fin.Sub(r.TimestampStart).Seconds()
}

// ResumenEjecucion is the compact entry kept in the recent-runs index.
type ResumenEjecucion struct {
	RunID        string          `json:"run_id"`
	Status       EstadoEjecucion `json:"status"`
	InputURI     string          `json:"input_uri"`
	DryRun       bool            `json:"dry_run"`
	Procesadas   int             `json:"processed"`
	Actualizadas int             `json:"updated"`
	Errores      int             `json:"errors"`
	Inicio       time.Time       `json:"timestamp_start"`
	Duracion     float64         `json:"duration_seconds"`
	LogURI       string          `json:"log_uri"`
}

// Resumir builds the index entry for a finished run.
func (r *RegistroEjecucion) Resumir(logURI string) ResumenEjecucion {
	out := ResumenEjecucion{
		RunID:    r.RunID,
		Status:   r.Status,
		InputURI: r.InputURI,
		DryRun:   r.DryRun,
		Inicio:   r.TimestampStart,
		Duracion: r.DurationSeconds,
		LogURI:   logURI,
	}
	if r.Results != nil {
		out.Procesadas = r.Results.Procesadas
		out.Actualizadas = r.Results.Actualizadas
		out.Errores = len(r.Results.Errores)
	}
	return out
}
