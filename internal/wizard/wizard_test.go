package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/validation"
)

// fakeService is an ImportService with scripted results. When gate is set,
// every call blocks until a value is sent on it.
type fakeService struct {
	mu         sync.Mutex
	createErr  error
	previewErr error
	confirmErr error
	preview    types.ImportPreview
	gate       chan struct{}

	creates   int
	confirmed []types.ConfirmImportRequest
}

func (f *fakeService) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeService) CreateImport(ctx context.Context, req types.CreateImportRequest) (types.ImportJob, error) {
	if err := f.wait(ctx); err != nil {
		return types.ImportJob{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return types.ImportJob{}, f.createErr
	}
	return types.ImportJob{ID: "job-1", Status: types.ImportParsing}, nil
}

func (f *fakeService) GetImportPreview(ctx context.Context, jobID string) (types.ImportPreview, error) {
	if f.previewErr != nil {
		return types.ImportPreview{}, f.previewErr
	}
	p := f.preview
	p.Job = types.ImportJob{ID: jobID, Status: types.ImportReady}
	return p, nil
}

func (f *fakeService) ConfirmImport(ctx context.Context, jobID string, req types.ConfirmImportRequest) (types.OKResponse, error) {
	if err := f.wait(ctx); err != nil {
		return types.OKResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return types.OKResponse{}, f.confirmErr
	}
	f.confirmed = append(f.confirmed, req)
	return types.OKResponse{OK: true}, nil
}

func recipePreview() types.ImportPreview {
	return types.ImportPreview{
		Columns: []string{"Prato", "Insumo", "Qtd", "Unidade", "Obs"},
		Preview: []types.PreviewRow{
			{RowNumber: 1, Data: types.Row{"Prato": types.String("Pizza"), "Insumo": types.String("Queijo"), "Qtd": types.String("0,2"), "Unidade": types.String("kg"), "Obs": types.Null()}},
			{RowNumber: 2, Data: types.Row{"Prato": types.String("Pizza"), "Insumo": types.String(""), "Qtd": types.String("abc"), "Unidade": types.String("xx"), "Obs": types.Null()}},
		},
	}
}

func newWizard(svc *fakeService) *Wizard {
	return New(svc, WithTemplate(templates.RECIPE))
}

func toMap(t *testing.T, w *Wizard, svc *fakeService) {
	t.Helper()
	require.NoError(t, w.SelectFile("fichas.csv", []byte("x")))
	require.NoError(t, w.StartImport(context.Background()))
	require.Equal(t, StepMap, w.Step())
}

func TestWizard_HappyPath(t *testing.T) {
	svc := &fakeService{preview: recipePreview()}
	w := newWizard(svc)
	assert.Equal(t, StepUpload, w.Step())

	toMap(t, w, svc)

	d := w.Data()
	assert.Equal(t, "job-1", d.JobID)
	assert.Equal(t, types.SourceCSV, d.File.Source)
	assert.Equal(t, []string{"Prato", "Insumo", "Qtd", "Unidade", "Obs"}, d.Columns)
	assert.Equal(t, "produto_final", d.Mappings["Prato"])
	assert.Equal(t, types.MappingIgnore, d.Mappings["Obs"])

	require.NoError(t, w.ProceedToReview())
	assert.Equal(t, StepReview, w.Step())

	res := w.Review()
	assert.Equal(t, 1, res.InvalidCount)
	assert.Equal(t, validation.RowErrors{
		"ingrediente": {Message: validation.MsgRequired},
		"quantidade":  {Message: validation.MsgInvalidNumber},
		"unidade":     {Message: validation.MsgInvalidUnit},
	}, res.Errors[1])

	require.NoError(t, w.Confirm(context.Background()))
	assert.Equal(t, StepComplete, w.Step())
	require.Len(t, svc.confirmed, 1)
	assert.Equal(t, "quantidade", svc.confirmed[0].Mappings["Qtd"])
	assert.Empty(t, w.Error())
}

func TestWizard_StartWithoutFile(t *testing.T) {
	w := newWizard(&fakeService{})

	err := w.StartImport(context.Background())
	var tErr *TransitionError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, MsgNoFile, w.Error())
	assert.Equal(t, StepUpload, w.Step())
}

func TestWizard_CreateFailureStaysAtUpload(t *testing.T) {
	svc := &fakeService{createErr: apperrors.NewAPIError(500, "Internal Server Error", nil)}
	w := newWizard(svc)
	require.NoError(t, w.SelectFile("vendas.xlsx", nil))

	err := w.StartImport(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error starting import: Internal server error.", w.Error())
	assert.Equal(t, StepUpload, w.Step())
	assert.False(t, w.Loading())

	// Manual retry after the service recovers clears the banner.
	svc.createErr = nil
	svc.preview = recipePreview()
	require.NoError(t, w.StartImport(context.Background()))
	assert.Empty(t, w.Error())
	assert.Equal(t, StepMap, w.Step())
}

func TestWizard_PreviewFailure(t *testing.T) {
	svc := &fakeService{previewErr: apperrors.NewTimeoutError()}
	w := newWizard(svc)
	require.NoError(t, w.SelectFile("vendas.csv", nil))

	require.Error(t, w.StartImport(context.Background()))
	assert.Equal(t, "Error loading preview: Timeout. Try again.", w.Error())
	assert.Equal(t, StepUpload, w.Step())
	assert.Equal(t, "job-1", w.Data().JobID)
}

func TestWizard_ReviewNeedsCompleteMappings(t *testing.T) {
	svc := &fakeService{preview: recipePreview()}
	w := newWizard(svc)
	toMap(t, w, svc)

	require.NoError(t, w.SetMappings(types.ColumnMapping{"Prato": "produto_final"}))
	err := w.ProceedToReview()
	require.Error(t, err)
	assert.Contains(t, w.Error(), MsgIncompleteMappings)
	assert.Equal(t, StepMap, w.Step())

	require.NoError(t, w.SetMappings(nil))
	require.Error(t, w.ProceedToReview())

	suggested, err := w.SuggestMappings()
	require.NoError(t, err)
	assert.Equal(t, "ingrediente", suggested["Insumo"])
	require.NoError(t, w.ProceedToReview())
	assert.Empty(t, w.Error())
}

func TestWizard_ConfirmFailureStaysAtReview(t *testing.T) {
	svc := &fakeService{preview: recipePreview(), confirmErr: apperrors.NewAPIError(409, "Conflict", nil)}
	w := newWizard(svc)
	toMap(t, w, svc)
	require.NoError(t, w.ProceedToReview())

	require.Error(t, w.Confirm(context.Background()))
	assert.Equal(t, StepReview, w.Step())
	assert.Equal(t, "Error confirming import: Error 409: Conflict. The resource already exists or is in use.", w.Error())
}

func TestWizard_GoBackAndReset(t *testing.T) {
	svc := &fakeService{preview: recipePreview()}
	w := newWizard(svc)

	assert.False(t, w.GoBack())
	assert.Equal(t, StepUpload, w.Step())

	toMap(t, w, svc)
	require.NoError(t, w.ProceedToReview())
	assert.True(t, w.GoBack())
	assert.Equal(t, StepMap, w.Step())
	assert.True(t, w.GoBack())
	assert.Equal(t, StepUpload, w.Step())

	w.Reset()
	assert.Equal(t, StepUpload, w.Step())
	assert.Equal(t, Data{}, w.Data())
	assert.Empty(t, w.Error())
	assert.False(t, w.Loading())
}

func TestWizard_WrongStep(t *testing.T) {
	w := newWizard(&fakeService{})

	assert.ErrorIs(t, w.Confirm(context.Background()), ErrWrongStep)
	assert.ErrorIs(t, w.SetMappings(types.ColumnMapping{}), ErrWrongStep)
	assert.ErrorIs(t, w.ProceedToReview(), ErrWrongStep)
	assert.ErrorIs(t, w.UpdatePreview(nil), ErrWrongStep)
	_, err := w.SuggestMappings()
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Empty(t, w.Error())
}

func TestWizard_LoadingAndSerialization(t *testing.T) {
	svc := &fakeService{preview: recipePreview(), gate: make(chan struct{})}
	w := newWizard(svc)
	require.NoError(t, w.SelectFile("vendas.csv", nil))

	errs := make(chan error, 2)
	go func() { errs <- w.StartImport(context.Background()) }()

	require.Eventually(t, w.Loading, time.Second, time.Millisecond)
	go func() { errs <- w.StartImport(context.Background()) }()

	// Let the first call finish; the second runs after it, finds the wizard
	// at map and refuses without calling the service.
	svc.gate <- struct{}{}

	var got []error
	got = append(got, <-errs, <-errs)
	if got[0] != nil {
		got[0], got[1] = got[1], got[0]
	}
	assert.NoError(t, got[0])
	assert.ErrorIs(t, got[1], ErrWrongStep)
	assert.Equal(t, 1, svc.creates)
	assert.False(t, w.Loading())
	assert.Equal(t, StepMap, w.Step())
}

func TestWizard_SelectFileRefusedWhileImporting(t *testing.T) {
	svc := &fakeService{preview: recipePreview(), gate: make(chan struct{})}
	w := newWizard(svc)
	require.NoError(t, w.SelectFile("a.csv", []byte("x")))

	done := make(chan error, 1)
	go func() { done <- w.StartImport(context.Background()) }()
	require.Eventually(t, w.Loading, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.SelectFile("b.xlsx", []byte("y")), ErrBusy)

	close(svc.gate)
	require.NoError(t, <-done)
	assert.Equal(t, StepMap, w.Step())
	data := w.Data()
	require.NotNil(t, data.File)
	assert.Equal(t, "a.csv", data.File.FileName)
	assert.NotEmpty(t, data.JobID)
}

func TestWizard_ResetAbandonsCallInFlight(t *testing.T) {
	svc := &fakeService{preview: recipePreview(), gate: make(chan struct{})}
	w := newWizard(svc)
	require.NoError(t, w.SelectFile("vendas.csv", nil))

	done := make(chan error, 1)
	go func() { done <- w.StartImport(context.Background()) }()
	require.Eventually(t, w.Loading, time.Second, time.Millisecond)

	w.Reset()
	assert.False(t, w.Loading())

	close(svc.gate)
	assert.ErrorIs(t, <-done, ErrAbandoned)
	assert.Equal(t, StepUpload, w.Step())
	assert.Empty(t, w.Data().JobID)
}

func TestWizard_UpdatePreviewIsValidatedAtReview(t *testing.T) {
	svc := &fakeService{preview: recipePreview()}
	w := newWizard(svc)
	toMap(t, w, svc)
	require.NoError(t, w.ProceedToReview())

	rows := w.Data().Preview
	rows[1].Data["Insumo"] = types.String("Molho")
	rows[1].Data["Qtd"] = types.Number(150)
	rows[1].Data["Unidade"] = types.String("g")
	require.NoError(t, w.UpdatePreview(rows))

	assert.True(t, w.Review().IsValid)
}

func TestWizard_SaveRestore(t *testing.T) {
	svc := &fakeService{preview: recipePreview()}
	w := newWizard(svc)
	toMap(t, w, svc)
	require.NoError(t, w.ProceedToReview())

	raw, err := json.Marshal(w.Save())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	other := newWizard(svc)
	require.NoError(t, other.Restore(snap))
	assert.Equal(t, StepReview, other.Step())
	assert.Equal(t, w.Data().Mappings, other.Data().Mappings)
	assert.Equal(t, "fichas.csv", other.Data().File.FileName)
	assert.Equal(t, w.Review(), other.Review())

	require.NoError(t, other.Confirm(context.Background()))
	assert.Equal(t, StepComplete, other.Step())
}

func TestWizard_RestoreRejectsBadSnapshots(t *testing.T) {
	w := newWizard(&fakeService{})

	assert.Error(t, w.Restore(Snapshot{Step: "done"}))
	assert.Error(t, w.Restore(Snapshot{Step: StepMap}))
	assert.Error(t, w.Restore(Snapshot{Step: StepReview, JobID: "j", Columns: []string{"a"}}))
	assert.Error(t, w.Restore(Snapshot{Step: StepUpload, Template: templates.PDV}))
	assert.Equal(t, StepUpload, w.Step())
}
