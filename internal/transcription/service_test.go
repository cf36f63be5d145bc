package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voicescribe/voicescribe/internal/augment"
	"github.com/voicescribe/voicescribe/internal/stt"
	"github.com/voicescribe/voicescribe/internal/tempstore"
)

type stubEngine struct {
	transcript *stt.Transcript
	err        error
	sawFile    bool
}

func (s *stubEngine) Transcribe(_ context.Context, filePath string) (*stt.Transcript, error) {
	if _, err := os.Stat(filePath); err == nil {
		s.sawFile = true
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.transcript, nil
}

func (s *stubEngine) Model() string { return "stub" }

type stubAugmenter struct {
	result augment.Result
}

func (s *stubAugmenter) Augment(_ context.Context, _ string) augment.Result { return s.result }

func (s *stubAugmenter) Name() string { return "stub" }

func goodTranscript() *stt.Transcript {
	return &stt.Transcript{
		Text:     " Hello world.",
		Language: "en",
		Segments: []stt.Segment{
			{ID: 0, Start: 0, End: 2.5, Text: " Hello"},
			{ID: 1, Start: 2.5, End: 4.0, Text: " world."},
		},
	}
}

func newTestService(t *testing.T, engine stt.Engine, aug augment.Provider) (*Service, *tempstore.Store) {
	t.Helper()
	store := tempstore.New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, store.Provision())
	return NewService(store, engine, aug, 25<<20, time.Hour), store
}

func goodUpload() Upload {
	return Upload{Filename: "clip.wav", ContentType: "audio/wav", Data: []byte("RIFF fake wav")}
}

func storeEntries(t *testing.T, store *tempstore.Store) int {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	return len(entries)
}

func TestTranscribeAndAugmentSuccess(t *testing.T) {
	engine := &stubEngine{transcript: goodTranscript()}
	svc, store := newTestService(t, engine, &stubAugmenter{result: augment.Result{Response: "Hi!"}})

	resp, err := svc.TranscribeAndAugment(context.Background(), goodUpload())
	require.NoError(t, err)

	require.Equal(t, " Hello world.", resp.Text)
	require.Equal(t, "en", resp.Language)
	require.Len(t, resp.Segments, 2)
	require.Less(t, resp.Segments[0].Start, resp.Segments[1].Start)
	require.NotNil(t, resp.AIResponse)
	require.Equal(t, "Hi!", resp.AIResponse.Response)

	require.True(t, engine.sawFile)
	require.Zero(t, storeEntries(t, store), "stored file must be cleaned up after success")
}

func TestCleanupRunsWhenTranscriptionFails(t *testing.T) {
	engine := &stubEngine{err: errors.New("decode blew up")}
	svc, store := newTestService(t, engine, &stubAugmenter{})

	_, err := svc.TranscribeAndAugment(context.Background(), goodUpload())
	var te *TranscriptionError
	require.ErrorAs(t, err, &te)

	require.True(t, engine.sawFile)
	require.Zero(t, storeEntries(t, store), "stored file must be cleaned up after failure")
}

func TestEmptyTranscriptIsFailure(t *testing.T) {
	engine := &stubEngine{transcript: &stt.Transcript{Text: "   ", Language: "en"}}
	svc, store := newTestService(t, engine, &stubAugmenter{})

	_, err := svc.TranscribeAndAugment(context.Background(), goodUpload())
	var te *TranscriptionError
	require.ErrorAs(t, err, &te)
	require.Zero(t, storeEntries(t, store))
}

func TestAugmentationFailureDoesNotFailRequest(t *testing.T) {
	engine := &stubEngine{transcript: goodTranscript()}
	svc, _ := newTestService(t, engine, &stubAugmenter{result: augment.Result{Error: "remote API down"}})

	resp, err := svc.TranscribeAndAugment(context.Background(), goodUpload())
	require.NoError(t, err)
	require.Equal(t, " Hello world.", resp.Text)
	require.NotNil(t, resp.AIResponse)
	require.Empty(t, resp.AIResponse.Response)
	require.Equal(t, "remote API down", resp.AIResponse.Error)
}

func TestValidationRejectsBeforeStorage(t *testing.T) {
	tests := []struct {
		name   string
		upload Upload
		detail string
	}{
		{
			name:   "missing filename",
			upload: Upload{ContentType: "audio/wav", Data: []byte("x")},
			detail: "Missing filename",
		},
		{
			name:   "unsupported extension",
			upload: Upload{Filename: "clip.flac", ContentType: "audio/wav", Data: []byte("x")},
			detail: "not supported",
		},
		{
			name:   "unsupported content type",
			upload: Upload{Filename: "clip.wav", ContentType: "application/pdf", Data: []byte("x")},
			detail: "File type not supported",
		},
		{
			name:   "empty body",
			upload: Upload{Filename: "clip.wav", ContentType: "audio/wav"},
			detail: "Empty file",
		},
		{
			name:   "oversized body",
			upload: Upload{Filename: "clip.wav", ContentType: "audio/wav", Data: make([]byte, (25<<20)+1)},
			detail: "Maximum size is 25MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{transcript: goodTranscript()}
			svc, store := newTestService(t, engine, &stubAugmenter{})

			_, err := svc.TranscribeAndAugment(context.Background(), tt.upload)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Contains(t, ve.Detail, tt.detail)

			require.False(t, engine.sawFile, "engine must not run for rejected input")
			require.Zero(t, storeEntries(t, store), "no file may be written for rejected input")
		})
	}
}

func TestContentTypeParametersIgnored(t *testing.T) {
	engine := &stubEngine{transcript: goodTranscript()}
	svc, _ := newTestService(t, engine, &stubAugmenter{result: augment.Result{Response: "ok"}})

	up := goodUpload()
	up.ContentType = "audio/wav; codecs=1"
	_, err := svc.TranscribeAndAugment(context.Background(), up)
	require.NoError(t, err)
}

func TestExpiredFilesCollectedBeforeSave(t *testing.T) {
	engine := &stubEngine{transcript: goodTranscript()}
	svc, store := newTestService(t, engine, &stubAugmenter{})

	orphan, err := store.Save([]byte("orphan"), ".wav")
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(orphan.Path, past, past))

	_, err = svc.TranscribeAndAugment(context.Background(), goodUpload())
	require.NoError(t, err)

	_, err = os.Stat(orphan.Path)
	require.True(t, os.IsNotExist(err), "orphan past retention must be collected")
}

func TestAugmentText(t *testing.T) {
	svc, _ := newTestService(t, &stubEngine{}, &stubAugmenter{result: augment.Result{Response: "sure"}})

	resp := svc.AugmentText(context.Background(), "hello")
	require.Equal(t, "hello", resp.Text)
	require.Equal(t, "sure", resp.AIResponse.Response)
	require.Empty(t, resp.AIResponse.Error)
}
