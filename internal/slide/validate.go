package slide

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hpungsan/autord/internal/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("layout", func(fl validator.FieldLevel) bool {
			return Layout(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("elementtype", func(fl validator.FieldLevel) bool {
			return ElementType(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Validate checks the validity predicate: a known layout and, for custom
// layouts, a present element set whose ids are unique and whose geometry is
// non-negative. Elements are ignored for other layouts.
//
// Nothing calls Validate implicitly. The renderer and exporter accept
// malformed data and treat missing lists as empty.
func (s SlideData) Validate() error {
	var problems []string

	v := structValidator()
	if err := v.Var(string(s.Layout), "required,layout"); err != nil {
		problems = append(problems, fmt.Sprintf("layout %q is not one of %v", s.Layout, Layouts))
	}

	if s.Layout == LayoutCustom {
		if s.Elements == nil {
			problems = append(problems, "custom layout requires elements")
		}
		seen := make(map[string]bool, len(s.Elements))
		for i, el := range s.Elements {
			problems = append(problems, elementProblems(v, i, el)...)
			if el.ID != "" && seen[el.ID] {
				problems = append(problems, fmt.Sprintf("elements[%d]: duplicate id %q", i, el.ID))
			}
			seen[el.ID] = true
		}
	}

	if len(problems) > 0 {
		return errors.NewInvalidSlide(problems)
	}
	return nil
}

func elementProblems(v *validator.Validate, i int, el Element) []string {
	var problems []string
	if err := v.Struct(el); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("elements[%d].%s: failed %q", i, fe.Field(), fe.Tag()))
			}
		} else {
			problems = append(problems, fmt.Sprintf("elements[%d]: %v", i, err))
		}
	}
	if el.Type != "" {
		if err := v.Var(string(el.Type), "elementtype"); err != nil {
			problems = append(problems, fmt.Sprintf("elements[%d].Type: unknown type %q", i, el.Type))
		}
	}
	return problems
}
