// Package booking turns a visitor's booking form into a notification to
// the venue owner.
package booking

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/eventika/venue-api/internal/pricing"
	"github.com/go-playground/validator/v10"
)

// Payload is the submitted booking form. Selection fields sit at the top
// level of the JSON body next to the contact fields.
type Payload struct {
	Name             string `json:"name,omitempty" validate:"required,min=2,max=200"`
	Email            string `json:"email,omitempty" validate:"required,email,max=320"`
	Phone            string `json:"phone,omitempty" validate:"required,min=5,max=50"`
	Date             string `json:"date,omitempty" validate:"required,max=100"`
	AlternativeDates string `json:"alternativeDates,omitempty" validate:"max=500"`
	Message          string `json:"message,omitempty" validate:"max=5000"`

	pricing.Selection

	// TotalEstimate is what the visitor saw. It is informational only;
	// the server always prices the selection itself.
	TotalEstimate float64 `json:"totalEstimate,omitempty" validate:"gte=0"`
}

// Normalize trims free text and fills unset selection fields with their
// defaults.
func (p Payload) Normalize() Payload {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Date = strings.TrimSpace(p.Date)
	p.AlternativeDates = strings.TrimSpace(p.AlternativeDates)
	p.Message = strings.TrimSpace(p.Message)
	p.Adults = strings.TrimSpace(p.Adults)
	p.Children = strings.TrimSpace(p.Children)
	p.CateringBudget = strings.TrimSpace(p.CateringBudget)
	p.Selection = p.Selection.Merge()
	return p
}

// FieldError describes one rejected field, named as in the JSON body.
type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid booking request: " + strings.Join(parts, "; ")
}

var countPattern = regexp.MustCompile(`^\d+$`)

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
	v.RegisterStructValidation(validateSelection, pricing.Selection{})
	return v
}

// validateSelection checks the embedded form selection. Guest counts
// must be plain digits here even though the estimator reads them
// leniently.
func validateSelection(sl validator.StructLevel) {
	sel := sl.Current().Interface().(pricing.Selection)

	if !countPattern.MatchString(sel.Adults) || pricing.ParseCount(sel.Adults) < 1 {
		sl.ReportError(sel.Adults, "adults", "Adults", "guests", "1")
	}
	if sel.Children != "" && !countPattern.MatchString(sel.Children) {
		sl.ReportError(sel.Children, "children", "Children", "guests", "0")
	}
	switch sel.Food {
	case "", pricing.FoodNone, pricing.FoodOwnCooking, pricing.FoodCatering:
	default:
		sl.ReportError(sel.Food, "foodOption", "Food", "food", "")
	}
	if sel.CateringBudget != "" && !countPattern.MatchString(sel.CateringBudget) {
		sl.ReportError(sel.CateringBudget, "cateringBudget", "CateringBudget", "budget", "")
	}
	for _, id := range sel.Units {
		if _, ok := pricing.UnitByID(id); !ok {
			sl.ReportError(sel.Units, "accommodations", "Units", "unit", string(id))
			break
		}
	}
}

// Validate reports every invalid field of a normalized payload.
func Validate(p Payload) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate booking request: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return "must not be negative"
	case "guests":
		return fmt.Sprintf("must be a whole number of at least %s", fe.Param())
	case "food":
		return "must be one of none, ownCooking, catering"
	case "budget":
		return "must be a whole number of SEK"
	case "unit":
		return fmt.Sprintf("unknown accommodation %q", fe.Param())
	}
	return "is invalid"
}
