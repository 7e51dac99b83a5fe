package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/types"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRanges(t *testing.T) {
	feb := date("2024-02-15")

	m := MonthRange(feb)
	assert.Equal(t, "2024-02-01..2024-02-29", m.String())
	assert.Equal(t, 29, m.Days())

	assert.Equal(t, "2023-12-01..2023-12-31", PreviousMonthRange(date("2024-01-10")).String())
	assert.Equal(t, "2023-03-01..2024-02-29", Last12Range(feb).String())
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01..2025-12-31", MonthRange(m).String())

	_, err = ParseMonth("12/2025")
	assert.Error(t, err)
}

func TestPeriod_WithCompare(t *testing.T) {
	p, err := NewPeriod(date("2024-03-01"), date("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, types.KPIParams{From: "2024-03-01", To: "2024-03-31"}, p.Params())

	c := p.WithCompare()
	require.NotNil(t, c.Compare)
	assert.Equal(t, "2024-01-30..2024-02-29", c.Compare.String())
	assert.Equal(t, p.Days(), c.Compare.Days())
	assert.True(t, c.Params().Comparing())

	assert.Nil(t, p.Compare)
	assert.Nil(t, c.WithoutCompare().Compare)

	_, err = NewPeriod(date("2024-03-02"), date("2024-03-01"))
	assert.Error(t, err)
}

type fakeFeed struct {
	kpiErr  error
	sugErr  error
	gotKPIs types.KPIParams
}

func (f *fakeFeed) GetKPIs(ctx context.Context, params types.KPIParams) (types.KPIs, error) {
	f.gotKPIs = params
	if f.kpiErr != nil {
		return types.KPIs{}, f.kpiErr
	}
	return types.KPIs{Cards: []types.KPICard{
		{ID: "saude-uso", Label: "Usage health"},
		{ID: "extra", Label: "Not on the main row"},
		{ID: "faturamento", Label: "Revenue"},
		{ID: "cmv", Label: "CMV"},
	}}, nil
}

func (f *fakeFeed) GetSuggestions(ctx context.Context) ([]types.Suggestion, error) {
	if f.sugErr != nil {
		return nil, f.sugErr
	}
	return []types.Suggestion{{ID: "1", Text: "Adjust portion", Source: "rule"}}, nil
}

func TestLoader_Load(t *testing.T) {
	feed := &fakeFeed{}
	ld := NewLoader(feed, feed)
	p, err := NewPeriod(date("2024-03-01"), date("2024-03-31"))
	require.NoError(t, err)

	view, err := ld.Load(context.Background(), p.WithCompare())
	require.NoError(t, err)

	assert.Equal(t, "2024-01-30", feed.gotKPIs.CompareFrom)
	assert.Len(t, view.Suggestions, 1)

	var ids []string
	for _, c := range view.MainCards() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"faturamento", "cmv", "saude-uso"}, ids)
	assert.Empty(t, ld.Error())
	assert.False(t, ld.Loading())
}

func TestLoader_EitherFailureFails(t *testing.T) {
	p, _ := NewPeriod(date("2024-03-01"), date("2024-03-31"))

	feed := &fakeFeed{kpiErr: apperrors.NewAPIError(401, "Unauthorized", nil)}
	ld := NewLoader(feed, feed)
	_, err := ld.Load(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, "Unauthorized. Check your credentials.", ld.Error())

	feed = &fakeFeed{sugErr: apperrors.NewTimeoutError()}
	ld = NewLoader(feed, feed)
	_, err = ld.Load(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, "Timeout. Try again.", ld.Error())

	feed.sugErr = nil
	_, err = ld.Load(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, ld.Error())
}
