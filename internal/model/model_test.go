package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func speedLoad() ([]Condition, []Condition) {
	pre := []Condition{
		{Name: "Speed", States: []State{{Name: "Slow"}, {Name: "Fast"}}},
		{Name: "Load", States: []State{{Name: "Empty"}, {Name: "Full"}}},
	}
	post := []Condition{
		{Name: "Result", States: []State{{Name: "Ok"}, {Name: "Error"}}},
	}
	return pre, post
}

func TestCondition_SpanIncludesSentinel(t *testing.T) {
	c := Condition{Name: "Speed", States: []State{{Name: "Slow"}, {Name: "Fast"}}}

	assert.Equal(t, 2, c.Cardinality())
	assert.Equal(t, 3, c.Span())
	assert.Equal(t, 2, c.NAIndex())
}

func TestCondition_NAExempt(t *testing.T) {
	c := Condition{Name: "Mode", States: []State{{Name: "Only"}}, NAExempt: true}

	assert.Equal(t, 1, c.Cardinality())
	assert.Equal(t, 1, c.Span())
	assert.Equal(t, -1, c.NAIndex())

	_, ok := c.StateIndex(NAName)
	assert.False(t, ok)
}

func TestCondition_SingleStateStillCarriesSentinel(t *testing.T) {
	c := Condition{Name: "Mode", States: []State{{Name: "Only"}}}

	assert.Equal(t, 2, c.Span())
}

func TestCondition_StateName(t *testing.T) {
	c := Condition{Name: "Speed", States: []State{{Name: "Slow"}, {Name: "Fast"}}}

	assert.Equal(t, "Slow", c.StateName(0))
	assert.Equal(t, "Fast", c.StateName(1))
	assert.Equal(t, NAName, c.StateName(2))
	assert.Equal(t, "?3", c.StateName(3))
}

func TestCondition_StateIndex(t *testing.T) {
	c := Condition{Name: "Speed", States: []State{{Name: "Slow"}, {Name: "Fast"}}}

	i, ok := c.StateIndex("Fast")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = c.StateIndex(NAName)
	require.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = c.StateIndex("Warp")
	assert.False(t, ok)
}

func TestNew_Valid(t *testing.T) {
	pre, post := speedLoad()
	m, err := New("red-green", pre, post)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3}, m.PreSpans())
	assert.Equal(t, 9, m.GenerationSize())
}

func TestNew_Errors(t *testing.T) {
	pre, post := speedLoad()

	tests := []struct {
		name string
		pre  []Condition
		post []Condition
	}{
		{
			"empty condition name",
			[]Condition{{States: []State{{Name: "X"}}}},
			post,
		},
		{
			"duplicate condition name",
			[]Condition{
				{Name: "Speed", States: []State{{Name: "Slow"}}},
				{Name: "Speed", States: []State{{Name: "Fast"}}},
			},
			post,
		},
		{
			"condition without states",
			[]Condition{{Name: "Speed"}},
			post,
		},
		{
			"reserved state name",
			[]Condition{{Name: "Speed", States: []State{{Name: "NA"}}}},
			post,
		},
		{
			"duplicate state name",
			[]Condition{{Name: "Speed", States: []State{{Name: "Slow"}, {Name: "Slow"}}}},
			post,
		},
		{
			"NA-exempt post-condition",
			pre,
			[]Condition{{Name: "Result", States: []State{{Name: "Ok"}}, NAExempt: true}},
		},
		{
			"skip annotation on post-condition state",
			pre,
			[]Condition{{Name: "Result", States: []State{{Name: "Ok", SkipInner: true}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("item", tt.pre, tt.post)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestConfigurationError_Format(t *testing.T) {
	err := &ConfigurationError{
		Code:      ErrCodeBadState,
		Item:      "red-green",
		Entry:     2,
		Condition: "Speed",
		Message:   "undeclared state \"Warp\"",
	}
	assert.Contains(t, err.Error(), "BAD_STATE")
	assert.Contains(t, err.Error(), "Speed")
	assert.Contains(t, err.Error(), "entry 2")
	assert.Contains(t, err.Error(), "red-green")
}
