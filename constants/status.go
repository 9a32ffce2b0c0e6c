package constants

// JobStatus is the canonical state of an extraction job (stored as-is in extract_job).
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusIdle       JobStatus = "IDLE"
	JobStatusExtracting JobStatus = "EXTRACTING" // archive input only
	JobStatusParsing    JobStatus = "PARSING"
	JobStatusSorting    JobStatus = "SORTING"
	JobStatusRendering  JobStatus = "RENDERING"
	JobStatusDone       JobStatus = "DONE"   // terminal success
	JobStatusFailed     JobStatus = "FAILED" // terminal failure
)

// IsTerminal reports whether s is DONE or FAILED.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}
