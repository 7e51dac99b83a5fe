// =============================================================================
// BRO.AI - In-Memory Backend
// =============================================================================
//
// Store is an in-memory stand-in for the BRO.AI API. It implements the same
// interfaces as the HTTP client, so every session (wizard, recipe editor,
// dashboard) can run against either one.
//
// Each Store owns its data. Nothing is shared between stores, and nothing
// lives at package level.
//
// IMPORT JOBS:
//   CreateImport -> parsing, GetImportPreview -> ready,
//   ConfirmImport -> confirmed. A file staged with StageUpload before
//   CreateImport is previewed with its real columns and rows; any other file
//   gets the sample preview.
//
// =============================================================================

package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/types"
)

type importJob struct {
	job      types.ImportJob
	fileName string
	columns  []string
	rows     []types.PreviewRow
	mappings types.ColumnMapping
}

type stagedUpload struct {
	columns []string
	rows    []types.PreviewRow
}

// Store is the in-memory backend. It is safe for concurrent use.
type Store struct {
	latency time.Duration
	now     func() time.Time
	logger  *zap.SugaredLogger

	mu      sync.Mutex
	recipes []types.Recipe
	jobs    map[string]*importJob
	staged  map[string]stagedUpload
}

// Option configures a Store.
type Option func(*Store)

// WithLatency delays every call by d, or until the call's context ends.
func WithLatency(d time.Duration) Option {
	return func(s *Store) {
		s.latency = d
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store seeded with the sample recipes.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: logging.Nop(),
		jobs:   make(map[string]*importJob),
		staged: make(map[string]stagedUpload),
	}
	for _, o := range opts {
		o(s)
	}
	s.recipes = seedRecipes(s.now().UTC())
	return s
}

// wait simulates network latency. It returns a timeout error when the
// context deadline passes first.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError()
		}
		return apperrors.NewNetworkError(ctx.Err())
	}
}

func badRequest(format string, args ...any) error {
	return apperrors.NewAPIError(http.StatusBadRequest, http.StatusText(http.StatusBadRequest), fmt.Sprintf(format, args...))
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// =============================================================================
// IMPORTS
// =============================================================================

// StageUpload records the parsed content of a file. The next CreateImport
// for the same file name previews this content instead of the sample rows.
func (s *Store) StageUpload(fileName string, columns []string, rows []types.PreviewRow) {
	staged := stagedUpload{columns: append([]string(nil), columns...), rows: make([]types.PreviewRow, len(rows))}
	for i, r := range rows {
		staged.rows[i] = r.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[fileName] = staged
}

// CreateImport opens an import job in the parsing state.
func (s *Store) CreateImport(ctx context.Context, req types.CreateImportRequest) (types.ImportJob, error) {
	if err := s.wait(ctx); err != nil {
		return types.ImportJob{}, err
	}
	if req.Source != types.SourceCSV && req.Source != types.SourceXLSX {
		return types.ImportJob{}, badRequest("unsupported source %q", req.Source)
	}
	if req.FileName == "" {
		return types.ImportJob{}, badRequest("fileName is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j := &importJob{
		job: types.ImportJob{
			ID:        "mock-import-" + uuid.NewString(),
			Status:    types.ImportParsing,
			CreatedAt: s.timestamp(),
		},
		fileName: req.FileName,
		columns:  fixtureColumns,
		rows:     fixtureRows(),
	}
	if staged, ok := s.staged[req.FileName]; ok {
		j.columns, j.rows = staged.columns, staged.rows
		delete(s.staged, req.FileName)
	}
	s.jobs[j.job.ID] = j

	s.logger.Debugf("Created import job %s for %s", j.job.ID, req.FileName)
	return j.job, nil
}

// GetImportPreview returns the columns and rows of a job and marks it ready.
func (s *Store) GetImportPreview(ctx context.Context, jobID string) (types.ImportPreview, error) {
	if err := s.wait(ctx); err != nil {
		return types.ImportPreview{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return types.ImportPreview{}, &apperrors.NotFoundError{Resource: "Import", ID: jobID}
	}
	if j.job.Status == types.ImportParsing || j.job.Status == types.ImportUploaded {
		j.job.Status = types.ImportReady
	}

	preview := types.ImportPreview{
		Job:     j.job,
		Columns: append([]string(nil), j.columns...),
		Preview: make([]types.PreviewRow, len(j.rows)),
	}
	for i, r := range j.rows {
		preview.Preview[i] = r.Clone()
	}
	return preview, nil
}

// ConfirmImport commits a ready job with its mappings. Confirming a job
// twice is a conflict.
func (s *Store) ConfirmImport(ctx context.Context, jobID string, req types.ConfirmImportRequest) (types.OKResponse, error) {
	if err := s.wait(ctx); err != nil {
		return types.OKResponse{}, err
	}
	if len(req.Mappings) == 0 {
		return types.OKResponse{}, apperrors.NewAPIError(http.StatusUnprocessableEntity,
			http.StatusText(http.StatusUnprocessableEntity), "mappings are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return types.OKResponse{}, &apperrors.NotFoundError{Resource: "Import", ID: jobID}
	}
	if j.job.Status == types.ImportConfirmed {
		return types.OKResponse{}, apperrors.NewAPIError(http.StatusConflict, http.StatusText(http.StatusConflict),
			fmt.Sprintf("import %s is already confirmed", jobID))
	}
	j.job.Status = types.ImportConfirmed
	j.mappings = req.Mappings.Clone()

	s.logger.Debugf("Confirmed import job %s with %d mappings", jobID, len(req.Mappings))
	return types.OKResponse{OK: true}, nil
}

// Job returns the current state of an import job.
func (s *Store) Job(jobID string) (types.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return types.ImportJob{}, &apperrors.NotFoundError{Resource: "Import", ID: jobID}
	}
	return j.job, nil
}

// JobMappings returns the mappings a job was confirmed with.
func (s *Store) JobMappings(jobID string) (types.ColumnMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "Import", ID: jobID}
	}
	return j.mappings.Clone(), nil
}

// =============================================================================
// RECIPES
// =============================================================================

// ListRecipes returns every recipe in insertion order.
func (s *Store) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out, nil
}

// GetRecipe returns one recipe.
func (s *Store) GetRecipe(ctx context.Context, id string) (types.Recipe, error) {
	if err := s.wait(ctx); err != nil {
		return types.Recipe{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.recipes[i].Clone(), nil
	}
	return types.Recipe{}, &apperrors.NotFoundError{Resource: "Recipe", ID: id}
}

// SaveRecipe stores a recipe. A recipe without ID gets a new one; a recipe
// with an unknown ID is added under that ID. Items without ID get one, and
// the item count and update time are refreshed.
func (s *Store) SaveRecipe(ctx context.Context, r types.Recipe) (types.Recipe, error) {
	if err := s.wait(ctx); err != nil {
		return types.Recipe{}, err
	}

	saved := r.Clone()
	if saved.ID == "" {
		saved.ID = "mock-" + uuid.NewString()
	}
	for i := range saved.Items {
		if saved.Items[i].ID == "" {
			saved.Items[i].ID = fmt.Sprintf("%s-%s", saved.ID, uuid.NewString()[:8])
		}
	}
	saved.ItemsCount = len(saved.Items)
	ts := s.now().UTC()
	saved.UpdatedAt = &ts

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(saved.ID); i >= 0 {
		s.recipes[i] = saved
	} else {
		s.recipes = append(s.recipes, saved)
	}
	return saved.Clone(), nil
}

// DeleteRecipe removes a recipe. Deleting an unknown ID succeeds.
func (s *Store) DeleteRecipe(ctx context.Context, id string) (types.OKResponse, error) {
	if err := s.wait(ctx); err != nil {
		return types.OKResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	}
	return types.OKResponse{OK: true}, nil
}

func (s *Store) indexLocked(id string) int {
	for i, r := range s.recipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetKPIs returns the sample KPI cards. Deltas are present only when the
// params carry a comparison window.
func (s *Store) GetKPIs(ctx context.Context, params types.KPIParams) (types.KPIs, error) {
	if err := s.wait(ctx); err != nil {
		return types.KPIs{}, err
	}
	return buildKPIs(params), nil
}

// GetSuggestions returns the sample suggestions.
func (s *Store) GetSuggestions(ctx context.Context) ([]types.Suggestion, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return buildSuggestions(), nil
}
