package refresh

import (
	"errors"
	"fmt"
)

// ErrCredentialDeclined is wrapped by CredentialError when the prompt was
// dismissed without a credential.
var ErrCredentialDeclined = errors.New("credential declined")

// CredentialError means no usable credential was available. When Rejected is
// set the workflow host refused the credential and it has been evicted from
// storage.
type CredentialError struct {
	Rejected   bool
	StatusCode int
	Err        error
}

func (e *CredentialError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("credential rejected (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		return "credential unavailable: " + e.Err.Error()
	}
	return "credential unavailable"
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TriggerError is a non-2xx dispatch response other than 401 or 403.
type TriggerError struct {
	StatusCode int
	Message    string
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("trigger workflow: HTTP %d: %s", e.StatusCode, e.Message)
}

// PollTimeoutError means the run did not complete within the poll budget.
type PollTimeoutError struct {
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("workflow did not complete after %d status checks", e.Attempts)
}

// CrawlFailedError means the run completed with a conclusion other than success.
type CrawlFailedError struct {
	Conclusion string
	RunURL     string
}

func (e *CrawlFailedError) Error() string {
	return fmt.Sprintf("crawl finished with conclusion %q", e.Conclusion)
}
