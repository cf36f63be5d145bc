package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/voicescribe/voicescribe/internal/app"
	"github.com/voicescribe/voicescribe/internal/transcription"
)

type HealthHandler struct {
	app *app.App
}

func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{app: a}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	engine := h.app.Engine()
	if engine == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Model not loaded")
		return
	}

	free, err := h.app.Store().FreeSpace()
	if err != nil {
		free = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"model":      engine.Model(),
		"temp_dir":   h.app.Store().Dir(),
		"disk_space": free,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Config(w http.ResponseWriter, r *http.Request) {
	cfg := h.app.Config()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"model_name":    cfg.STT.Model,
		"max_file_size": cfg.Store.MaxFileSize,
		"allowed_types": transcription.AllowedMIMETypes,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
