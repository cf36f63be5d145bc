package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// WhisperConfig holds configuration for the whisper HTTP backend.
type WhisperConfig struct {
	BaseURL string // default: "http://localhost:8178"
	Model   string // default: "base"
	APIKey  string // optional; unused for a local whisper.cpp server
}

// WhisperEngine transcribes audio through a whisper.cpp server (or any
// OpenAI-compatible /audio/transcriptions endpoint).
// Start the server with: ./server -m models/ggml-base.en.bin --port 8178
type WhisperEngine struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

// NewWhisperEngine creates a WhisperEngine with defaults applied.
func NewWhisperEngine(cfg WhisperConfig) *WhisperEngine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8178"
	}
	if cfg.Model == "" {
		cfg.Model = "base"
	}
	return &WhisperEngine{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (e *WhisperEngine) Model() string { return e.cfg.Model }

// Load probes the engine so that a misconfigured or absent server is
// caught at startup instead of on the first upload.
func (e *WhisperEngine) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisper server unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisper server not ready (status %d)", resp.StatusCode)
	}
	return nil
}

// Transcribe uploads the stored audio file and decodes the verbose
// response, segment timeline included. Segments are passed through in
// the order the engine returned them.
func (e *WhisperEngine) Transcribe(ctx context.Context, filePath string) (*Transcript, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = mw.WriteField("model", e.cfg.Model)
	_ = mw.WriteField("response_format", "verbose_json")

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if e.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var transcript Transcript
	if err := json.Unmarshal(respBody, &transcript); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &transcript, nil
}
