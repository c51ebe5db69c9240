package entity

import "time"

// Workflow run statuses and conclusions reported by the CI host.
const (
	RunStatusQueued     = "queued"
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"

	RunConclusionSuccess = "success"
)

// WorkflowRun is the latest run of the crawl workflow.
// Status is empty when the workflow has never run.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	HTMLURL    string    `json:"html_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// Completed reports whether the run has finished.
func (r WorkflowRun) Completed() bool {
	return r.Status == RunStatusCompleted
}

// Succeeded reports whether the run finished successfully.
func (r WorkflowRun) Succeeded() bool {
	return r.Completed() && r.Conclusion == RunConclusionSuccess
}

// RefreshReport summarises one finished refresh run for notifications.
type RefreshReport struct {
	Outcome    string // done, failed or aborted
	Conclusion string
	RunURL     string
	Attempts   int
	Delta      int
	Message    string
	Duration   time.Duration
}
