package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/voicescribe/voicescribe/internal/transcription"
)

type TranscriptionHandler struct {
	svc *transcription.Service
}

func NewTranscriptionHandler(svc *transcription.Service) *TranscriptionHandler {
	return &TranscriptionHandler{svc: svc}
}

// Transcribe accepts a multipart audio upload and returns the
// transcript with a best-effort assistant reply attached.
func (h *TranscriptionHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	// Read at most one byte past the cap so the oversize rejection is
	// deterministic without buffering an arbitrarily large body.
	data, err := io.ReadAll(io.LimitReader(file, h.svc.MaxFileSize()+1))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	resp, err := h.svc.TranscribeAndAugment(r.Context(), transcription.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		var ve *transcription.ValidationError
		if errors.As(err, &ve) {
			writeDetail(w, http.StatusBadRequest, ve.Detail)
			return
		}
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ProcessText runs the augmentation step on raw text.
func (h *TranscriptionHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeDetail(w, http.StatusBadRequest, "text required")
		return
	}

	writeJSON(w, http.StatusOK, h.svc.AugmentText(r.Context(), req.Text))
}
