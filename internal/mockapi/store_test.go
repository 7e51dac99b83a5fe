package mockapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/dashboard"
	"github.com/ginjaninja78/broai/internal/recipes"
	"github.com/ginjaninja78/broai/internal/types"
	"github.com/ginjaninja78/broai/internal/wizard"
)

var (
	_ wizard.ImportService         = (*Store)(nil)
	_ recipes.Repository           = (*Store)(nil)
	_ dashboard.KPIProvider        = (*Store)(nil)
	_ dashboard.SuggestionProvider = (*Store)(nil)
)

var fixedNow = time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)

func newStore(opts ...Option) *Store {
	return NewStore(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestStore_ImportLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	job, err := s.CreateImport(ctx, types.CreateImportRequest{Source: types.SourceCSV, FileName: "vendas.csv"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(job.ID, "mock-import-"))
	assert.Equal(t, types.ImportParsing, job.Status)
	assert.Equal(t, "2025-12-10T12:00:00Z", job.CreatedAt)

	preview, err := s.GetImportPreview(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportReady, preview.Job.Status)
	assert.Equal(t, []string{"produto", "quantidade", "preco", "data", "categoria"}, preview.Columns)
	require.Len(t, preview.Preview, 11)
	assert.Equal(t, []string{"Campo obrigatório ausente"}, preview.Preview[1].Issues)
	assert.True(t, preview.Preview[3].Data["data"].IsNull())
	assert.Equal(t, types.Number(25.5), preview.Preview[0].Data["preco"])

	mappings := types.ColumnMapping{"produto": "item", "data": "data_venda"}
	ok, err := s.ConfirmImport(ctx, job.ID, types.ConfirmImportRequest{Mappings: mappings})
	require.NoError(t, err)
	assert.True(t, ok.OK)

	got, err := s.Job(job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportConfirmed, got.Status)
	stored, err := s.JobMappings(job.ID)
	require.NoError(t, err)
	assert.Equal(t, mappings, stored)

	_, err = s.ConfirmImport(ctx, job.ID, types.ConfirmImportRequest{Mappings: mappings})
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.Status)
}

func TestStore_ImportErrors(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	_, err := s.CreateImport(ctx, types.CreateImportRequest{Source: "pdf", FileName: "x.pdf"})
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)

	_, err = s.CreateImport(ctx, types.CreateImportRequest{Source: types.SourceCSV})
	assert.Error(t, err)

	_, err = s.GetImportPreview(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	job, err := s.CreateImport(ctx, types.CreateImportRequest{Source: types.SourceXLSX, FileName: "a.xlsx"})
	require.NoError(t, err)
	_, err = s.ConfirmImport(ctx, job.ID, types.ConfirmImportRequest{})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.Status)
}

func TestStore_StagedUpload(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.StageUpload("fichas.csv", []string{"Prato", "Insumo"}, []types.PreviewRow{
		{RowNumber: 1, Data: types.Row{"Prato": types.String("Pizza"), "Insumo": types.String("Queijo")}},
	})

	job, err := s.CreateImport(ctx, types.CreateImportRequest{Source: types.SourceCSV, FileName: "fichas.csv"})
	require.NoError(t, err)
	preview, err := s.GetImportPreview(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Prato", "Insumo"}, preview.Columns)
	assert.Len(t, preview.Preview, 1)

	// Staging is consumed by the first job.
	job2, err := s.CreateImport(ctx, types.CreateImportRequest{Source: types.SourceCSV, FileName: "fichas.csv"})
	require.NoError(t, err)
	preview2, err := s.GetImportPreview(ctx, job2.ID)
	require.NoError(t, err)
	assert.Len(t, preview2.Preview, 11)
}

func TestStore_Recipes(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	list, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Hambúrguer Artesanal", list[0].Name)
	assert.Equal(t, 5, list[0].ItemsCount)

	// Callers get copies.
	list[0].Name = "changed"
	r, err := s.GetRecipe(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Hambúrguer Artesanal", r.Name)

	_, err = s.GetRecipe(ctx, "99")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "Recipe with ID 99 not found")

	created, err := s.SaveRecipe(ctx, types.Recipe{
		Name: "Suco", YieldQty: 1, SalePrice: 9,
		Items: []types.RecipeItem{{Name: "Laranja", Qty: 3, Unit: "un", CostUnit: 0.6}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "mock-"))
	assert.NotEmpty(t, created.Items[0].ID)
	assert.Equal(t, 1, created.ItemsCount)
	require.NotNil(t, created.UpdatedAt)
	assert.Equal(t, fixedNow, *created.UpdatedAt)

	created.SalePrice = 10
	_, err = s.SaveRecipe(ctx, created)
	require.NoError(t, err)
	list, _ = s.ListRecipes(ctx)
	assert.Len(t, list, 4)
	assert.Equal(t, 10.0, list[3].SalePrice)

	_, err = s.DeleteRecipe(ctx, "2")
	require.NoError(t, err)
	_, err = s.DeleteRecipe(ctx, "2")
	require.NoError(t, err)
	list, _ = s.ListRecipes(ctx)
	assert.Len(t, list, 3)
}

func TestStore_StoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	a, b := newStore(), newStore()

	_, err := a.DeleteRecipe(ctx, "1")
	require.NoError(t, err)

	la, _ := a.ListRecipes(ctx)
	lb, _ := b.ListRecipes(ctx)
	assert.Len(t, la, 2)
	assert.Len(t, lb, 3)
}

func TestStore_KPIs(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	plain, err := s.GetKPIs(ctx, types.KPIParams{From: "2025-12-01", To: "2025-12-31"})
	require.NoError(t, err)
	require.Len(t, plain.Cards, 6)
	for _, c := range plain.Cards {
		assert.True(t, c.DeltaValue.IsNull(), c.ID)
	}

	cmp, err := s.GetKPIs(ctx, types.KPIParams{From: "2025-12-01", To: "2025-12-31", CompareFrom: "2025-11-01", CompareTo: "2025-11-30"})
	require.NoError(t, err)
	assert.Equal(t, types.String("+8%"), cmp.Cards[0].DeltaValue)
	assert.True(t, cmp.Cards[5].DeltaValue.IsNull())

	sugs, err := s.GetSuggestions(ctx)
	require.NoError(t, err)
	assert.Len(t, sugs, 2)
}

func TestStore_LatencyHonorsContext(t *testing.T) {
	s := newStore(WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.ListRecipes(ctx)
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Timeout)
	assert.Equal(t, "Timeout. Try again.", apperrors.HumanMessage(err))
}
