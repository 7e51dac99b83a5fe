// =============================================================================
// BRO.AI - Import Wizard
// =============================================================================
//
// The wizard drives one import through four steps:
//
//   upload -> map -> review -> complete
//
// STEP TRANSITIONS:
//   - upload -> map:      StartImport. Needs a selected file. Creates an
//                         import job and loads its preview.
//   - map -> review:      ProceedToReview. Needs a complete column mapping.
//                         No service call.
//   - review -> complete: Confirm. Confirms the job with the mappings.
//   - GoBack moves one step back (no-op at upload); Reset returns to upload
//     from anywhere and clears everything.
//
// CONCURRENCY:
//   A Wizard is safe for concurrent use. Service calls are serialized: a
//   second StartImport or Confirm waits for the first and then runs against
//   the state the first one left behind. Loading() is true exactly while a
//   service call is outstanding. Results of a call that returns after Reset
//   or Restore are discarded.
//
// ERRORS:
//   A failed transition stores a single banner message (Error()) and returns
//   a *TransitionError. The banner is cleared by the next transition attempt.
//   Calling an operation in the wrong step returns ErrWrongStep and leaves
//   the banner alone.
//
// =============================================================================

package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/importer"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/validation"
	"github.com/ginjaninja78/broai/pkg/utils"
)

// =============================================================================
// STEPS
// =============================================================================

// Step is a wizard state.
type Step string

const (
	StepUpload   Step = "upload"
	StepMap      Step = "map"
	StepReview   Step = "review"
	StepComplete Step = "complete"
)

var stepOrder = []Step{StepUpload, StepMap, StepReview, StepComplete}

func (s Step) index() int {
	for i, v := range stepOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the four steps.
func (s Step) Valid() bool {
	return s.index() >= 0
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrWrongStep is returned when an operation is not allowed in the
	// current step.
	ErrWrongStep = errors.New("operation not allowed in current step")

	// ErrBusy is returned by calls that would change the session while a
	// service call is outstanding.
	ErrBusy = errors.New("wizard is busy")

	// ErrAbandoned is returned by a service call whose result was dropped
	// because the wizard was reset or restored meanwhile.
	ErrAbandoned = errors.New("wizard was reset while the call was in flight")
)

// Banner messages.
const (
	MsgNoFile             = "No file selected"
	MsgStartImportPrefix  = "Error starting import"
	MsgLoadPreviewPrefix  = "Error loading preview"
	MsgIncompleteConfirm  = "Incomplete data to confirm import"
	MsgConfirmPrefix      = "Error confirming import"
	MsgIncompleteMappings = "Incomplete column mappings"
)

// TransitionError is a failed step transition.
type TransitionError struct {
	// Op is the operation that failed ("start", "preview", "review", "confirm").
	Op string

	// From is the step the wizard stayed in.
	From Step

	// Message is the banner shown to the user.
	Message string

	// Err is the underlying failure, if any.
	Err error
}

func (e *TransitionError) Error() string {
	return e.Message
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SERVICE
// =============================================================================

// ImportService is the external import service the wizard talks to.
type ImportService interface {
	CreateImport(ctx context.Context, req types.CreateImportRequest) (types.ImportJob, error)
	GetImportPreview(ctx context.Context, jobID string) (types.ImportPreview, error)
	ConfirmImport(ctx context.Context, jobID string, req types.ConfirmImportRequest) (types.OKResponse, error)
}

// =============================================================================
// WIZARD DATA
// =============================================================================

// SelectedFile is the file picked at the upload step.
type SelectedFile struct {
	FileName string
	Source   types.SourceFormat
	Content  []byte
}

// Data is the session state collected across steps.
type Data struct {
	JobID    string
	File     *SelectedFile
	Columns  []string
	Preview  []types.PreviewRow
	Mappings types.ColumnMapping
}

func (d Data) clone() Data {
	out := Data{
		JobID:    d.JobID,
		Mappings: d.Mappings.Clone(),
	}
	if d.File != nil {
		f := *d.File
		f.Content = append([]byte(nil), d.File.Content...)
		out.File = &f
	}
	if d.Columns != nil {
		out.Columns = append([]string(nil), d.Columns...)
	}
	if d.Preview != nil {
		out.Preview = make([]types.PreviewRow, len(d.Preview))
		for i, p := range d.Preview {
			out.Preview[i] = p.Clone()
		}
	}
	return out
}

// =============================================================================
// WIZARD
// =============================================================================

// Wizard is one import session.
type Wizard struct {
	svc      ImportService
	template templates.Template
	logger   *zap.SugaredLogger

	// runMu serializes service calls.
	runMu sync.Mutex

	// mu guards everything below.
	mu      sync.Mutex
	step    Step
	loading bool
	errMsg  string
	data    Data
	gen     uint64
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTemplate sets the template used for mapping suggestions, mapping
// checks and review validation. The default is the recipe template.
func WithTemplate(t templates.Type) Option {
	return func(w *Wizard) {
		w.template = templates.Get(t)
	}
}

// New creates a wizard at the upload step.
func New(svc ImportService, opts ...Option) *Wizard {
	w := &Wizard{
		svc:      svc,
		template: templates.Get(templates.RECIPE),
		logger:   logging.Nop(),
		step:     StepUpload,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// =============================================================================
// GETTERS
// =============================================================================

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Loading reports whether a service call is outstanding.
func (w *Wizard) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Error returns the current banner message, or "".
func (w *Wizard) Error() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// Data returns a copy of the session data.
func (w *Wizard) Data() Data {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data.clone()
}

// Template returns the template the wizard maps onto.
func (w *Wizard) Template() templates.Template {
	return templates.Get(w.template.Type)
}

// =============================================================================
// NAVIGATION
// =============================================================================

// GoBack moves one step back and clears the banner. It does nothing at the
// upload step or while a service call is outstanding, and reports whether
// the step changed.
func (w *Wizard) GoBack() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.loading {
		return false
	}
	w.errMsg = ""
	idx := w.step.index()
	if idx <= 0 {
		return false
	}
	w.step = stepOrder[idx-1]
	w.logger.Debugf("Wizard moved back to %s", w.step)
	return true
}

// Reset returns to the upload step and clears all session data, the banner
// and the loading flag. A call still in flight is abandoned.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step = StepUpload
	w.data = Data{}
	w.errMsg = ""
	w.loading = false
	w.gen++
	w.logger.Debug("Wizard reset")
}

// =============================================================================
// UPLOAD STEP
// =============================================================================

// SelectFile records the file to import. The source format is csv when the
// name ends in .csv and xlsx otherwise. The file cannot change while its
// import is being created.
func (w *Wizard) SelectFile(name string, content []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.loading {
		return fmt.Errorf("%w: call in flight", ErrBusy)
	}
	if w.step != StepUpload {
		return fmt.Errorf("%w: select file at %s", ErrWrongStep, w.step)
	}
	if name == "" {
		return errors.New("file name is required")
	}

	w.data.File = &SelectedFile{
		FileName: name,
		Source:   utils.DetectSourceFormat(name),
		Content:  append([]byte(nil), content...),
	}
	w.errMsg = ""
	return nil
}

// StartImport creates the import job for the selected file and loads its
// preview. On success the wizard moves to the map step with the preview
// columns and suggested mappings; on failure it stays at upload.
func (w *Wizard) StartImport(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	if w.step != StepUpload {
		step := w.step
		w.mu.Unlock()
		return fmt.Errorf("%w: start import at %s", ErrWrongStep, step)
	}
	if w.data.File == nil {
		err := w.failLocked("start", MsgNoFile, nil)
		w.mu.Unlock()
		return err
	}
	req := types.CreateImportRequest{Source: w.data.File.Source, FileName: w.data.File.FileName}
	gen := w.beginLocked()
	w.mu.Unlock()

	w.logger.Infof("Creating import job for %s (%s)", req.FileName, req.Source)
	job, err := w.svc.CreateImport(ctx, req)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return ErrAbandoned
	}
	if err != nil {
		w.loading = false
		e := w.failLocked("start", prefixed(MsgStartImportPrefix, err), err)
		w.mu.Unlock()
		w.logger.Warnf("Create import failed: %v", err)
		return e
	}
	w.data.JobID = job.ID
	w.mu.Unlock()

	w.logger.Debugf("Loading preview for job %s", job.ID)
	preview, err := w.svc.GetImportPreview(ctx, job.ID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return ErrAbandoned
	}
	w.loading = false
	if err != nil {
		w.logger.Warnf("Load preview failed: %v", err)
		return w.failLocked("preview", prefixed(MsgLoadPreviewPrefix, err), err)
	}

	w.data.Columns = append([]string(nil), preview.Columns...)
	w.data.Preview = clonePreview(preview.Preview)
	w.data.Mappings = templates.SuggestMappings(w.template, w.data.Columns)
	w.step = StepMap
	w.logger.Infof("Import job %s ready: %d columns, %d preview rows", job.ID, len(preview.Columns), len(preview.Preview))
	return nil
}

// =============================================================================
// MAP STEP
// =============================================================================

// SuggestMappings replaces the current mappings with suggestions derived
// from the template synonyms and returns them.
func (w *Wizard) SuggestMappings() (types.ColumnMapping, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepMap {
		return nil, fmt.Errorf("%w: suggest mappings at %s", ErrWrongStep, w.step)
	}
	w.data.Mappings = templates.SuggestMappings(w.template, w.data.Columns)
	return w.data.Mappings.Clone(), nil
}

// SetMappings replaces the column mappings.
func (w *Wizard) SetMappings(m types.ColumnMapping) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepMap {
		return fmt.Errorf("%w: set mappings at %s", ErrWrongStep, w.step)
	}
	w.data.Mappings = m.Clone()
	return nil
}

// ProceedToReview moves to the review step when the mappings are complete.
func (w *Wizard) ProceedToReview() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.loading {
		return fmt.Errorf("%w: call in flight", ErrBusy)
	}
	if w.step != StepMap {
		return fmt.Errorf("%w: proceed to review at %s", ErrWrongStep, w.step)
	}
	w.errMsg = ""

	if err := templates.CheckMapping(w.template, w.data.Columns, w.data.Mappings); err != nil {
		var mErr *templates.MappingError
		msg := MsgIncompleteMappings
		if errors.As(err, &mErr) && len(mErr.Problems) > 0 {
			msg = fmt.Sprintf("%s: %s", MsgIncompleteMappings, mErr.Problems[0])
		}
		return w.failLocked("review", msg, err)
	}

	w.step = StepReview
	return nil
}

// =============================================================================
// REVIEW STEP
// =============================================================================

// MappedPreview returns the preview rows re-keyed by template key.
func (w *Wizard) MappedPreview() []types.PreviewRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	return importer.ApplyPreviewMappings(w.data.Columns, w.data.Preview, w.data.Mappings)
}

// Review validates the mapped preview rows against the template.
func (w *Wizard) Review() validation.Result {
	rows := w.MappedPreview()
	data := make([]types.Row, len(rows))
	for i, r := range rows {
		data[i] = r.Data
	}
	return validation.Validate(w.template.Columns, data)
}

// UpdatePreview replaces the preview rows wholesale, for example after the
// user fixed cells. Allowed at the map and review steps.
func (w *Wizard) UpdatePreview(rows []types.PreviewRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepMap && w.step != StepReview {
		return fmt.Errorf("%w: update preview at %s", ErrWrongStep, w.step)
	}
	w.data.Preview = clonePreview(rows)
	return nil
}

// Confirm confirms the import job with the current mappings. On success the
// wizard moves to complete; on failure it stays at review.
func (w *Wizard) Confirm(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	if w.step != StepReview {
		step := w.step
		w.mu.Unlock()
		return fmt.Errorf("%w: confirm at %s", ErrWrongStep, step)
	}
	if w.data.JobID == "" || w.data.Mappings == nil {
		err := w.failLocked("confirm", MsgIncompleteConfirm, nil)
		w.mu.Unlock()
		return err
	}
	jobID := w.data.JobID
	req := types.ConfirmImportRequest{Mappings: w.data.Mappings.Clone()}
	gen := w.beginLocked()
	w.mu.Unlock()

	w.logger.Infof("Confirming import job %s", jobID)
	_, err := w.svc.ConfirmImport(ctx, jobID, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return ErrAbandoned
	}
	w.loading = false
	if err != nil {
		w.logger.Warnf("Confirm import failed: %v", err)
		return w.failLocked("confirm", prefixed(MsgConfirmPrefix, err), err)
	}

	w.step = StepComplete
	w.logger.Infof("Import job %s confirmed", jobID)
	return nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// beginLocked marks a service call as started. Callers hold w.mu.
func (w *Wizard) beginLocked() uint64 {
	w.loading = true
	w.errMsg = ""
	return w.gen
}

// failLocked stores the banner and builds the TransitionError. Callers hold w.mu.
func (w *Wizard) failLocked(op, msg string, cause error) error {
	w.errMsg = msg
	return &TransitionError{Op: op, From: w.step, Message: msg, Err: cause}
}

func prefixed(prefix string, err error) string {
	return fmt.Sprintf("%s: %s", prefix, apperrors.HumanMessage(err))
}

func clonePreview(rows []types.PreviewRow) []types.PreviewRow {
	if rows == nil {
		return nil
	}
	out := make([]types.PreviewRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
