package dashboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/types"
)

// KPIProvider serves the KPI cards of a period.
type KPIProvider interface {
	GetKPIs(ctx context.Context, params types.KPIParams) (types.KPIs, error)
}

// SuggestionProvider serves the data-driven suggestions.
type SuggestionProvider interface {
	GetSuggestions(ctx context.Context) ([]types.Suggestion, error)
}

// CardOrder is the display order of the main KPI cards.
var CardOrder = []string{"faturamento", "cmv", "lucro-bruto", "margem-bruta", "perdas", "saude-uso"}

// View is everything the dashboard shows for one period.
type View struct {
	Period      Period
	KPIs        types.KPIs
	Suggestions []types.Suggestion
}

// MainCards returns the cards listed in CardOrder, in that order. Cards the
// feed did not send are skipped.
func (v View) MainCards() []types.KPICard {
	byID := make(map[string]types.KPICard, len(v.KPIs.Cards))
	for _, c := range v.KPIs.Cards {
		byID[c.ID] = c
	}
	out := make([]types.KPICard, 0, len(CardOrder))
	for _, id := range CardOrder {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Loader fetches dashboard views. It keeps the last error as a display
// string, like the other sessions.
type Loader struct {
	kpis        KPIProvider
	suggestions SuggestionProvider
	logger      *zap.SugaredLogger

	mu      sync.Mutex
	loading bool
	errMsg  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader creates a loader over the two feeds.
func NewLoader(kpis KPIProvider, suggestions SuggestionProvider, opts ...Option) *Loader {
	ld := &Loader{kpis: kpis, suggestions: suggestions, logger: logging.Nop()}
	for _, o := range opts {
		o(ld)
	}
	return ld
}

// Loading reports whether a load is outstanding.
func (ld *Loader) Loading() bool {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.loading
}

// Error returns the message of the last failed load, or "".
func (ld *Loader) Error() string {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.errMsg
}

// Load fetches the KPIs and the suggestions of a period concurrently. Both
// must succeed; the first failure cancels the other fetch.
//
// PARAMETERS:
//   - ctx: Context for cancellation
//   - p: The period; its comparison window, if any, enables card deltas
//
// RETURNS:
//   - View: The loaded data
//   - error: The first failure. Error() holds its human message afterwards.
func (ld *Loader) Load(ctx context.Context, p Period) (View, error) {
	ld.mu.Lock()
	ld.loading = true
	ld.errMsg = ""
	ld.mu.Unlock()

	view := View{Period: p}
	params := p.Params()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		k, err := ld.kpis.GetKPIs(gctx, params)
		if err != nil {
			return fmt.Errorf("failed to load KPIs: %w", err)
		}
		view.KPIs = k
		return nil
	})
	g.Go(func() error {
		s, err := ld.suggestions.GetSuggestions(gctx)
		if err != nil {
			return fmt.Errorf("failed to load suggestions: %w", err)
		}
		view.Suggestions = s
		return nil
	})
	err := g.Wait()

	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.loading = false
	if err != nil {
		ld.errMsg = apperrors.HumanMessage(err)
		ld.logger.Warnf("Dashboard load for %s failed: %v", p.Range, err)
		return View{}, err
	}

	ld.logger.Debugf("Dashboard loaded for %s: %d cards, %d suggestions", p.Range, len(view.KPIs.Cards), len(view.Suggestions))
	return view, nil
}
