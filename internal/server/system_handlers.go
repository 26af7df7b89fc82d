package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/olufemi424/agentic-ui/internal/reliability"
)

// SystemHandlers serves process status and backup operations.
type SystemHandlers struct {
	log       zerolog.Logger
	backup    *reliability.BackupService
	startedAt time.Time
}

func NewSystemHandlers(backup *reliability.BackupService, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system").Logger(),
		backup:    backup,
		startedAt: time.Now(),
	}
}

// SystemStatus is the response shape for GET /api/system/status.
type SystemStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemPercent    float64 `json:"memPercent"`
	Goroutines    int     `json:"goroutines"`
}

// HandleSystemStatus reports process health.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()
	status := SystemStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPct,
		MemPercent:    memPct,
		Goroutines:    runtime.NumGoroutine(),
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleTriggerBackup runs a snapshot immediately.
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Backups are not configured")
		return
	}
	info, err := h.backup.RunBackup()
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		writeJSONError(w, http.StatusInternalServerError, "Backup failed")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleListBackups returns existing snapshots, newest first.
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Backups are not configured")
		return
	}
	backups, err := h.backup.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeJSONError(w, http.StatusInternalServerError, "Failed to list backups")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backups": backups})
}

// systemStats samples CPU over a short interval so the endpoint stays
// responsive for pollers.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPct := 0.0
	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		cpuPct = percents[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to sample CPU usage")
	}

	memPct := 0.0
	if stat, err := mem.VirtualMemory(); err == nil {
		memPct = stat.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory statistics")
	}
	return cpuPct, memPct
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
