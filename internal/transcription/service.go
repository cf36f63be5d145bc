// Package transcription composes the upload pipeline: validation,
// transient storage with guaranteed cleanup, inference, and best-effort
// augmentation.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/voicescribe/voicescribe/internal/augment"
	"github.com/voicescribe/voicescribe/internal/stt"
	"github.com/voicescribe/voicescribe/internal/tempstore"
)

// AllowedMIMETypes is the accepted set of declared upload content types.
var AllowedMIMETypes = []string{
	"audio/wav",
	"audio/mp3",
	"audio/mpeg",
	"audio/webm",
	"video/webm",
	"video/mp4",
}

var allowedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".webm": true,
	".mp4":  true,
}

// Upload is one inbound audio file, owned by a single request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Response is the terminal artifact returned for an upload.
type Response struct {
	Text       string          `json:"text"`
	Language   string          `json:"language"`
	Segments   []stt.Segment   `json:"segments"`
	AIResponse *augment.Result `json:"ai_response,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// TextResponse is the result of the text-only augmentation operation.
type TextResponse struct {
	Text       string         `json:"text"`
	AIResponse augment.Result `json:"ai_response"`
}

type Service struct {
	store       *tempstore.Store
	engine      stt.Engine
	augmenter   augment.Provider
	maxFileSize int64
	retention   time.Duration
}

func NewService(store *tempstore.Store, engine stt.Engine, augmenter augment.Provider, maxFileSize int64, retention time.Duration) *Service {
	return &Service{
		store:       store,
		engine:      engine,
		augmenter:   augmenter,
		maxFileSize: maxFileSize,
		retention:   retention,
	}
}

func (s *Service) MaxFileSize() int64 { return s.maxFileSize }

// TranscribeAndAugment runs the full pipeline for one upload. The
// stored file is deleted on every exit path; anything a crash leaves
// behind is bounded by the retention sweep in CollectExpired.
func (s *Service) TranscribeAndAugment(ctx context.Context, up Upload) (*Response, error) {
	if err := s.validate(up); err != nil {
		return nil, err
	}

	if n := s.store.CollectExpired(s.retention); n > 0 {
		slog.Info("collected expired uploads", "count", n)
	}

	stored, err := s.store.Save(up.Data, strings.ToLower(filepath.Ext(up.Filename)))
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	defer func() {
		if err := s.store.Delete(stored); err != nil {
			slog.Warn("failed to delete stored upload", "file", stored.Name, "error", err)
		}
	}()

	transcript, err := s.engine.Transcribe(ctx, stored.Path)
	if err != nil {
		return nil, &TranscriptionError{Err: err}
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return nil, &TranscriptionError{Err: errors.New("engine returned an empty transcript")}
	}

	// Best effort: an augmentation failure rides along in the response
	// instead of failing the request.
	result := s.augmenter.Augment(ctx, transcript.Text)

	return &Response{
		Text:       transcript.Text,
		Language:   transcript.Language,
		Segments:   transcript.Segments,
		AIResponse: &result,
	}, nil
}

// AugmentText runs the augmentation step on caller-supplied text, no
// file handling involved.
func (s *Service) AugmentText(ctx context.Context, text string) *TextResponse {
	return &TextResponse{
		Text:       text,
		AIResponse: s.augmenter.Augment(ctx, text),
	}
}

func (s *Service) validate(up Upload) error {
	if up.Filename == "" {
		return &ValidationError{Detail: "Missing filename"}
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !allowedExtensions[ext] {
		return &ValidationError{Detail: fmt.Sprintf("File extension %q not supported", ext)}
	}

	ct := up.ContentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !allowedMIME(ct) {
		return &ValidationError{Detail: "File type not supported. Must be one of: " + strings.Join(AllowedMIMETypes, ", ")}
	}

	if len(up.Data) == 0 {
		return &ValidationError{Detail: "Empty file"}
	}
	if int64(len(up.Data)) > s.maxFileSize {
		return &ValidationError{Detail: fmt.Sprintf("File size too large. Maximum size is %dMB", s.maxFileSize>>20)}
	}

	return nil
}

func allowedMIME(ct string) bool {
	for _, t := range AllowedMIMETypes {
		if t == ct {
			return true
		}
	}
	return false
}
