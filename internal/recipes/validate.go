package recipes

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/broai/internal/types"
)

// Field messages shown next to the offending input.
const (
	MsgNameRequired      = "Name is required"
	MsgYieldPositive     = "Yield must be greater than zero"
	MsgSalePriceNegative = "Sale price cannot be negative"
	MsgItemNameRequired  = "Ingredient name is required"
	MsgItemQtyPositive   = "Quantity must be greater than zero"
	MsgItemCostNegative  = "Unit cost cannot be negative"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// recipeForm is the save-time view of a recipe. Names are trimmed before
// validation so whitespace-only names count as missing.
type recipeForm struct {
	Name      string     `json:"name" validate:"required"`
	YieldQty  float64    `json:"yieldQty" validate:"gt=0"`
	SalePrice float64    `json:"salePrice" validate:"gte=0"`
	Items     []itemForm `json:"items" validate:"dive"`
}

type itemForm struct {
	Name     string  `json:"name" validate:"required"`
	Qty      float64 `json:"qty" validate:"gt=0"`
	CostUnit float64 `json:"costUnit" validate:"gte=0"`
}

// FieldErrors maps a field key ("name", "items[2].qty") to its message.
type FieldErrors map[string]string

// Error lists the problems in key order, so FieldErrors can be returned as
// an error.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, fe[k])
	}
	return "invalid recipe: " + strings.Join(parts, "; ")
}

// Validate checks a recipe before it is saved.
//
// RULES:
//   - name: required
//   - yieldQty: greater than zero
//   - salePrice: zero or more
//   - items[i].name: required
//   - items[i].qty: greater than zero
//   - items[i].costUnit: zero or more
//
// RETURNS:
//   - FieldErrors: nil when the recipe is valid
func Validate(r types.Recipe) FieldErrors {
	form := recipeForm{
		Name:      strings.TrimSpace(r.Name),
		YieldQty:  r.YieldQty,
		SalePrice: r.SalePrice,
		Items:     make([]itemForm, len(r.Items)),
	}
	for i, it := range r.Items {
		form.Items[i] = itemForm{Name: strings.TrimSpace(it.Name), Qty: it.Qty, CostUnit: it.CostUnit}
	}

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"recipe": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		// Namespace is "recipeForm.items[0].qty"; drop the struct name.
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		out[key] = fieldMessage(key, fe.Field())
	}
	return out
}

func fieldMessage(key, field string) string {
	item := strings.HasPrefix(key, "items[")
	switch field {
	case "name":
		if item {
			return MsgItemNameRequired
		}
		return MsgNameRequired
	case "yieldQty":
		return MsgYieldPositive
	case "salePrice":
		return MsgSalePriceNegative
	case "qty":
		return MsgItemQtyPositive
	case "costUnit":
		return MsgItemCostNegative
	default:
		return "Invalid value"
	}
}
