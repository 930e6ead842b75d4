package pricing

import (
	"fmt"
	"strings"
)

// Constraint holds the tiered quantity rules of a catalog item.
// Legal quantities are Minimum + k*Circulation, never above Maximum when set.
type Constraint struct {
	Minimum     int  `json:"minimumQuantity" yaml:"minimumQuantity"`
	Maximum     *int `json:"maximumQuantity,omitempty" yaml:"maximumQuantity,omitempty"`
	Circulation int  `json:"circulation" yaml:"circulation"`
}

// Resolve snaps a requested quantity to the nearest legal quantity for
// (min, max, step). max == nil means unbounded.
//
// Ties between the lower and upper lattice point go to the lower one, and the
// upper point is never allowed to cross max. When min > max the constraint is
// unsatisfiable and min is returned.
func Resolve(requested, min int, max *int, step int) int {
	if requested < min {
		return min
	}
	if max != nil && *max < min {
		return min
	}
	if max != nil && requested > *max {
		return *max
	}

	if step <= 1 {
		return clamp(requested, min, max)
	}

	base := min + ((requested-min)/step)*step
	next := base + step

	if requested-base <= next-requested {
		return clamp(base, min, max)
	}

	if max != nil && next > *max {
		return base
	}
	return clamp(next, min, max)
}

func clamp(q, min int, max *int) int {
	if max != nil && q > *max {
		q = *max
	}
	if q < min {
		q = min
	}
	return q
}

// Resolve snaps q through the constraint.
func (c Constraint) Resolve(q int) int {
	return Resolve(q, c.Minimum, c.Maximum, c.Circulation)
}

// Satisfiable reports whether at least one quantity meets the constraint.
func (c Constraint) Satisfiable() bool {
	return c.Maximum == nil || *c.Maximum >= c.Minimum
}

// IsValid reports whether q is already a legal quantity.
func (c Constraint) IsValid(q int) bool {
	if q < c.Minimum {
		return false
	}
	if c.Maximum != nil && q > *c.Maximum {
		return false
	}
	if c.Circulation <= 1 {
		return true
	}
	return (q-c.Minimum)%c.Circulation == 0
}

func (c Constraint) step() int {
	if c.Circulation < 1 {
		return 1
	}
	return c.Circulation
}

// Increment moves q up by one circulation step. It returns q and false when
// the step would cross the maximum.
func (c Constraint) Increment(q int) (int, bool) {
	n := q + c.step()
	if c.Maximum != nil && n > *c.Maximum {
		return q, false
	}
	return n, true
}

// Decrement moves q down by one circulation step. It returns q and false when
// the step would go below the minimum.
func (c Constraint) Decrement(q int) (int, bool) {
	n := q - c.step()
	if n < c.Minimum {
		return q, false
	}
	return n, true
}

// FieldError is one rejected field of a constraint or option tree.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects data-entry problems. It is only produced by the
// Validate helpers; the calculation functions never fail.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the constraint at the admin data-entry boundary.
//
// The minimum must be a multiple of the circulation and the circulation may not
// exceed a positive minimum. A maximum must sit on the circulation lattice, so
// snapping to it yields a legal quantity.
func (c Constraint) Validate() error {
	verr := &ValidationError{}
	if c.Minimum < 0 {
		verr.add("minimumQuantity", "must be non-negative")
	}
	if c.Maximum != nil {
		if *c.Maximum < 0 {
			verr.add("maximumQuantity", "must be non-negative")
		} else if *c.Maximum <= c.Minimum {
			verr.add("maximumQuantity", "must be greater than minimum quantity")
		}
	}
	if c.Circulation < 1 {
		verr.add("circulation", "must be at least 1")
		return verr.orNil()
	}
	if c.Minimum > 0 && c.Circulation > c.Minimum {
		verr.add("circulation", "cannot be higher than minimum quantity")
	}
	if c.Minimum > 0 && c.Minimum%c.Circulation != 0 {
		verr.add("circulation", "minimum quantity must be a multiple of circulation")
	}
	if c.Maximum != nil && *c.Maximum > c.Minimum && (*c.Maximum-c.Minimum)%c.Circulation != 0 {
		verr.add("maximumQuantity", "must be minimum quantity plus a multiple of circulation")
	}
	return verr.orNil()
}
