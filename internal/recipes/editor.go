// =============================================================================
// BRO.AI - Recipe Editor Session
// =============================================================================
//
// An Editor holds the recipe list, the recipe being edited, a search filter,
// a loading flag and a single error banner. It talks to a Repository, which
// is either the HTTP client or the in-memory mock store.
//
// Service failures never escape as raw errors to the caller's display: they
// are turned into banner strings ("Error loading recipes: <msg>") and also
// returned so scripted callers can stop.
//
// =============================================================================

package recipes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/types"
)

// Repository is the recipe store.
type Repository interface {
	ListRecipes(ctx context.Context) ([]types.Recipe, error)
	GetRecipe(ctx context.Context, id string) (types.Recipe, error)

	// SaveRecipe creates the recipe when its ID is empty and updates it
	// otherwise. It returns the stored recipe.
	SaveRecipe(ctx context.Context, r types.Recipe) (types.Recipe, error)

	DeleteRecipe(ctx context.Context, id string) (types.OKResponse, error)
}

// Banner prefixes.
const (
	MsgLoadListPrefix = "Error loading recipes"
	MsgLoadPrefix     = "Error loading recipe"
	MsgSavePrefix     = "Error saving recipe"
	MsgDeletePrefix   = "Error deleting recipe"
)

// Defaults of a new recipe.
const (
	DefaultYieldQty  = 1
	DefaultYieldUnit = "portion"
)

// Editor is one recipe editing session. It is safe for concurrent use.
type Editor struct {
	repo   Repository
	logger *zap.SugaredLogger

	mu       sync.Mutex
	recipes  []types.Recipe
	selected *types.Recipe
	search   string
	loading  int
	errMsg   string
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEditor creates an empty session. Call Load to fetch the list.
func NewEditor(repo Repository, opts ...EditorOption) *Editor {
	e := &Editor{repo: repo, logger: logging.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// =============================================================================
// GETTERS
// =============================================================================

// Recipes returns the recipes whose name contains the search text, ignoring
// case, in list order.
func (e *Editor) Recipes() []types.Recipe {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := strings.ToLower(e.search)
	out := make([]types.Recipe, 0, len(e.recipes))
	for _, r := range e.recipes {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Selected returns a copy of the recipe being edited.
func (e *Editor) Selected() (types.Recipe, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return types.Recipe{}, false
	}
	return e.selected.Clone(), true
}

// Search returns the current filter text.
func (e *Editor) Search() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// SetSearch sets the filter text used by Recipes.
func (e *Editor) SetSearch(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = q
}

// Loading reports whether a repository call is outstanding.
func (e *Editor) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading > 0
}

// Error returns the banner message, or "".
func (e *Editor) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Load fetches the recipe list.
func (e *Editor) Load(ctx context.Context) error {
	e.begin()
	list, err := e.repo.ListRecipes(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading--
	if err != nil {
		return e.failLocked(MsgLoadListPrefix, err)
	}

	e.recipes = make([]types.Recipe, len(list))
	for i, r := range list {
		e.recipes[i] = r.Clone()
	}
	e.logger.Debugf("Loaded %d recipes", len(list))
	return nil
}

// Select fetches one recipe and makes it the recipe being edited.
func (e *Editor) Select(ctx context.Context, id string) error {
	e.begin()
	r, err := e.repo.GetRecipe(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading--
	if err != nil {
		return e.failLocked(MsgLoadPrefix, err)
	}
	e.selected = &r
	return nil
}

// NewRecipe starts editing a blank recipe: no ID, one portion, price zero,
// no items.
func (e *Editor) NewRecipe() types.Recipe {
	r := types.Recipe{
		YieldQty:  DefaultYieldQty,
		YieldUnit: DefaultYieldUnit,
		Items:     []types.RecipeItem{},
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = &r
	return r.Clone()
}

// Save validates and stores a recipe, then puts the stored copy in the
// list (replacing the entry with the same ID or appending) and selects it.
//
// RETURNS:
//   - types.Recipe: The stored recipe
//   - error: FieldErrors when validation fails (no repository call is made
//     and the banner is untouched), or the repository error
func (e *Editor) Save(ctx context.Context, r types.Recipe) (types.Recipe, error) {
	if fe := Validate(r); fe != nil {
		return types.Recipe{}, fe
	}

	e.begin()
	saved, err := e.repo.SaveRecipe(ctx, r.Clone())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading--
	if err != nil {
		return types.Recipe{}, e.failLocked(MsgSavePrefix, err)
	}

	replaced := false
	for i := range e.recipes {
		if e.recipes[i].ID == saved.ID {
			e.recipes[i] = saved.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		e.recipes = append(e.recipes, saved.Clone())
	}
	sel := saved.Clone()
	e.selected = &sel

	e.logger.Infof("Saved recipe %s (%s)", saved.ID, saved.Name)
	return saved, nil
}

// Delete removes a recipe from the store and the list. The selection is
// cleared when it was the deleted recipe.
func (e *Editor) Delete(ctx context.Context, id string) error {
	e.begin()
	_, err := e.repo.DeleteRecipe(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading--
	if err != nil {
		return e.failLocked(MsgDeletePrefix, err)
	}

	kept := e.recipes[:0:0]
	for _, r := range e.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	e.recipes = kept
	if e.selected != nil && e.selected.ID == id {
		e.selected = nil
	}
	e.logger.Infof("Deleted recipe %s", id)
	return nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func (e *Editor) begin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading++
	e.errMsg = ""
}

func (e *Editor) failLocked(prefix string, err error) error {
	e.errMsg = fmt.Sprintf("%s: %s", prefix, apperrors.HumanMessage(err))
	e.logger.Warnf("%s: %v", prefix, err)
	return fmt.Errorf("%s: %w", strings.ToLower(prefix[:1])+prefix[1:], err)
}
