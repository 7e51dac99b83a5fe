package wizard

import (
	"fmt"

	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
)

// Snapshot is the persisted form of a wizard session. It is the only way
// wizard state leaves the Wizard; file content is not part of it.
type Snapshot struct {
	Step         Step                `json:"step"`
	Template     templates.Type      `json:"template"`
	JobID        string              `json:"jobId,omitempty"`
	FileName     string              `json:"fileName,omitempty"`
	SourceFormat types.SourceFormat  `json:"sourceFormat,omitempty"`
	Columns      []string            `json:"columns,omitempty"`
	Preview      []types.PreviewRow  `json:"preview,omitempty"`
	Mappings     types.ColumnMapping `json:"mappings,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Save captures the current session.
func (w *Wizard) Save() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.data.clone()
	s := Snapshot{
		Step:     w.step,
		Template: w.template.Type,
		JobID:    d.JobID,
		Columns:  d.Columns,
		Preview:  d.Preview,
		Mappings: d.Mappings,
		Error:    w.errMsg,
	}
	if d.File != nil {
		s.FileName = d.File.FileName
		s.SourceFormat = d.File.Source
	}
	return s
}

// Restore replaces the session with a snapshot.
//
// Restore is refused while a service call is outstanding, when the step is
// unknown, when the snapshot belongs to another template, or when the data
// the step needs is missing: map and later need a job and columns, review
// and later also need mappings.
func (w *Wizard) Restore(s Snapshot) error {
	if !s.Step.Valid() {
		return fmt.Errorf("unknown wizard step %q", s.Step)
	}
	if s.Template != "" && s.Template != w.template.Type {
		return fmt.Errorf("snapshot is for template %s, wizard uses %s", s.Template, w.template.Type)
	}
	idx := s.Step.index()
	if idx >= StepMap.index() && (s.JobID == "" || s.Columns == nil) {
		return fmt.Errorf("snapshot at %s has no import job or columns", s.Step)
	}
	if idx >= StepReview.index() && s.Mappings == nil {
		return fmt.Errorf("snapshot at %s has no mappings", s.Step)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.loading {
		return ErrBusy
	}

	data := Data{
		JobID:    s.JobID,
		Columns:  s.Columns,
		Preview:  s.Preview,
		Mappings: s.Mappings,
	}
	if s.FileName != "" {
		data.File = &SelectedFile{FileName: s.FileName, Source: s.SourceFormat}
	}

	w.data = data.clone()
	w.step = s.Step
	w.errMsg = s.Error
	w.gen++
	return nil
}
