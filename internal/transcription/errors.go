package transcription

// ValidationError rejects an upload before any work is done. Detail is
// safe to show to the client.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// StorageError reports a failed write to the transient store.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "Error storing audio: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// TranscriptionError reports an engine failure, including an empty
// transcript, which is never treated as success.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return "Error processing audio: " + e.Err.Error() }
func (e *TranscriptionError) Unwrap() error { return e.Err }
