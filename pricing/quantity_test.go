package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		min       int
		max       *int
		step      int
		want      int
	}{
		{"below minimum snaps to minimum", 0, 5, nil, 5, 5},
		{"above maximum snaps to maximum", 50, 5, intPtr(40), 5, 40},
		{"step one clamps only", 7, 1, intPtr(10), 1, 7},
		{"step zero behaves like step one", 7, 0, nil, 0, 7},
		{"tie favours base", 3, 1, nil, 4, 1},
		{"closer next wins", 4, 1, nil, 4, 5},
		{"already on lattice", 9, 1, nil, 4, 9},
		{"next above maximum falls back to base", 13, 0, intPtr(14), 8, 8},
		{"exact maximum on lattice", 12, 0, intPtr(12), 4, 12},
		{"unsatisfiable returns minimum", 20, 10, intPtr(5), 2, 10},
		{"unsatisfiable below minimum", 1, 10, intPtr(5), 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.requested, tt.min, tt.max, tt.step))
		})
	}
}

func TestResolveProperties(t *testing.T) {
	constraints := []Constraint{
		{Minimum: 0, Circulation: 1},
		{Minimum: 1, Circulation: 4},
		{Minimum: 6, Maximum: intPtr(30), Circulation: 6},
		{Minimum: 10, Maximum: intPtr(100), Circulation: 10},
		{Minimum: 3, Maximum: intPtr(15), Circulation: 3},
	}

	for _, c := range constraints {
		for q := -5; q <= 120; q++ {
			got := c.Resolve(q)

			require.GreaterOrEqual(t, got, c.Minimum, "constraint %+v q=%d", c, q)
			if c.Maximum != nil {
				require.LessOrEqual(t, got, *c.Maximum, "constraint %+v q=%d", c, q)
			}
			require.True(t, c.IsValid(got), "constraint %+v q=%d got=%d off lattice", c, q, got)
			require.Equal(t, got, c.Resolve(got), "not idempotent for %+v q=%d", c, q)
		}
	}
}

func TestResolveOffLatticeMaximum(t *testing.T) {
	c := Constraint{Minimum: 10, Maximum: intPtr(95), Circulation: 10}

	// Snapping above such a maximum lands off the lattice and a second pass
	// moves it again, so the constraint is refused at data entry.
	first := c.Resolve(100)
	assert.Equal(t, 95, first)
	assert.False(t, c.IsValid(first))
	assert.Equal(t, 90, c.Resolve(first))

	var verr *ValidationError
	require.ErrorAs(t, c.Validate(), &verr)
	assert.Equal(t, "maximumQuantity", verr.Fields[0].Field)
}

func TestResolveBoundaries(t *testing.T) {
	c := Constraint{Minimum: 4, Maximum: intPtr(20), Circulation: 4}

	assert.Equal(t, c.Minimum, c.Resolve(c.Minimum-1))
	assert.Equal(t, *c.Maximum, c.Resolve(*c.Maximum+1))
}

func TestConstraintSatisfiable(t *testing.T) {
	assert.True(t, Constraint{Minimum: 1, Circulation: 1}.Satisfiable())
	assert.True(t, Constraint{Minimum: 5, Maximum: intPtr(5), Circulation: 1}.Satisfiable())
	assert.False(t, Constraint{Minimum: 6, Maximum: intPtr(5), Circulation: 1}.Satisfiable())
}

func TestConstraintIncrementDecrement(t *testing.T) {
	c := Constraint{Minimum: 5, Maximum: intPtr(15), Circulation: 5}

	q, ok := c.Increment(5)
	assert.True(t, ok)
	assert.Equal(t, 10, q)

	q, ok = c.Increment(15)
	assert.False(t, ok)
	assert.Equal(t, 15, q)

	q, ok = c.Decrement(10)
	assert.True(t, ok)
	assert.Equal(t, 5, q)

	q, ok = c.Decrement(5)
	assert.False(t, ok)
	assert.Equal(t, 5, q)

	unbounded := Constraint{Minimum: 0, Circulation: 0}
	q, ok = unbounded.Increment(0)
	assert.True(t, ok)
	assert.Equal(t, 1, q)
}

func TestConstraintValidate(t *testing.T) {
	tests := []struct {
		name   string
		c      Constraint
		fields []string
	}{
		{"valid defaults", Constraint{Minimum: 1, Circulation: 1}, nil},
		{"valid tiered", Constraint{Minimum: 10, Maximum: intPtr(100), Circulation: 5}, nil},
		{"zero minimum", Constraint{Minimum: 0, Circulation: 3}, nil},
		{"negative minimum", Constraint{Minimum: -1, Circulation: 1}, []string{"minimumQuantity"}},
		{"maximum not above minimum", Constraint{Minimum: 10, Maximum: intPtr(10), Circulation: 5}, []string{"maximumQuantity"}},
		{"circulation zero", Constraint{Minimum: 1, Circulation: 0}, []string{"circulation"}},
		{"circulation above minimum", Constraint{Minimum: 2, Circulation: 4}, []string{"circulation", "circulation"}},
		{"minimum not a multiple", Constraint{Minimum: 10, Circulation: 4}, []string{"circulation"}},
		{"maximum off lattice", Constraint{Minimum: 10, Maximum: intPtr(95), Circulation: 10}, []string{"maximumQuantity"}},
		{"maximum on lattice", Constraint{Minimum: 10, Maximum: intPtr(90), Circulation: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
