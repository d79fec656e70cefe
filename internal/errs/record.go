package errs

import (
	"time"

	"github.com/google/uuid"
)

// Record is the ErrorRecord entity from the data model: an immutable record
// of one failure, appended to a job's errors[] list.
type Record struct {
	ErrorID    string
	Timestamp  time.Time
	Type       ErrorType
	Message    string
	StackTrace string
	RetryCount int
}

// IsRetryable mirrors ErrorType.Retryable for the persisted record.
func (r Record) IsRetryable() bool {
	return r.Type.Retryable()
}

// NewRecord builds a Record with a fresh identity and the current timestamp.
func NewRecord(t ErrorType, message string, retryCount int) Record {
	return Record{
		ErrorID:    uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Type:       t,
		Message:    message,
		RetryCount: retryCount,
	}
}

// ClassifyError maps an error from the taxonomy onto an ErrorType for
// recording on the job.
func ClassifyError(err error) ErrorType {
	switch e := err.(type) {
	case *TransientError:
		return e.Type
	case *PermanentError:
		return e.Type
	case *ValidationError:
		return Validation
	default:
		return Unknown
	}
}
