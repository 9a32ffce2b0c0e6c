package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/common"
)

// ExtractJob is one run of the material-list pipeline.
type ExtractJob struct {
	ID           uuid.UUID           `json:"id"`
	InputPath    string              `json:"input_path"`
	DocumentName string              `json:"document_name"`
	Thickness    int                 `json:"thickness_mm,omitempty"` // 0 lists every thickness
	OutputPath   string              `json:"output_path,omitempty"`
	ScratchDir   string              `json:"-"`
	Status       constants.JobStatus `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// NewExtractJob validates the request and returns an IDLE job.
func NewExtractJob(inputPath, documentName string) (*ExtractJob, error) {
	documentName = constants.EnsurePDFName(documentName)
	err := common.NewValidator().
		Field("input_path", inputPath, common.Required).
		Field("document_name", documentName, common.Required, common.FileName, common.MaxLength(255)).
		Err()
	if err != nil {
		return nil, err
	}
	return &ExtractJob{
		ID:           uuid.New(),
		InputPath:    inputPath,
		DocumentName: documentName,
		Status:       constants.JobStatusIdle,
	}, nil
}

// FilterThickness restricts the job to materials of mm millimetres; 0 clears
// the filter.
func (j *ExtractJob) FilterThickness(mm int) error {
	if err := common.NewValidator().Field("thickness", mm, common.NonNegative).Err(); err != nil {
		return err
	}
	j.Thickness = mm
	return nil
}

// Outcome is the terminal result reported for a job.
type Outcome struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path"`
	Kind       string `json:"kind,omitempty"` // error code on failure
	Entries    int    `json:"entries"`
	Pages      int    `json:"pages"`
	XLSXPath   string `json:"xlsx_path,omitempty"`
}

// JobRecord is the persisted summary of a finished job (extract_job row).
type JobRecord struct {
	ID         uuid.UUID           `json:"id"`
	InputPath  string              `json:"input_path"`
	OutputPath string              `json:"output_path"`
	Status     constants.JobStatus `json:"status"`
	ErrorKind  string              `json:"error_kind,omitempty"`
	Message    string              `json:"message"`
	Entries    int                 `json:"entries"`
	Pages      int                 `json:"pages"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// RecordOf summarizes a terminal job and its outcome.
func RecordOf(job *ExtractJob, out Outcome) JobRecord {
	finished := time.Now().UTC()
	if job.FinishedAt != nil {
		finished = *job.FinishedAt
	}
	status := constants.JobStatusDone
	if !out.Success {
		status = constants.JobStatusFailed
	}
	return JobRecord{
		ID:         job.ID,
		InputPath:  job.InputPath,
		OutputPath: out.OutputPath,
		Status:     status,
		ErrorKind:  out.Kind,
		Message:    out.Message,
		Entries:    out.Entries,
		Pages:      out.Pages,
		StartedAt:  job.StartedAt,
		FinishedAt: finished,
	}
}
