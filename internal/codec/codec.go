// Package codec implements the mixed-radix index encoding for combination
// spaces.
//
// Given the spans c_0..c_{n-1} of the pre-condition dimensions (outermost to
// innermost, each including the NA sentinel), the weight of dimension i is the
// trailing product w_i = c_{i+1} * ... * c_{n-1}, with w_{n-1} = 1. Encoding
// a state-index vector as sum(v_i * w_i) is the unique linear bijection from
// the product space onto [0, prod c_i) that preserves lexicographic
// outer-to-inner ordering; decoding inverts it by successive division.
//
// The codec never clamps or wraps: a component outside its span is a caller
// contract violation and fails with OutOfRangeError.
package codec

import (
	"errors"
	"fmt"
)

// Codec converts between state-index vectors and linear table indices.
//
// A Codec is immutable after construction and safe for concurrent readers.
type Codec struct {
	spans   []int
	weights []int
	size    int
}

// OutOfRangeError reports a vector component or linear index outside the
// space the codec was built for.
type OutOfRangeError struct {
	// Dimension is the offending vector component, -1 for a linear index.
	Dimension int

	// Value is the rejected value.
	Value int

	// Limit is the exclusive upper bound that was violated.
	Limit int
}

// Error implements the error interface.
func (e *OutOfRangeError) Error() string {
	if e.Dimension < 0 {
		return fmt.Sprintf("OUT_OF_RANGE: index %d outside [0, %d)", e.Value, e.Limit)
	}
	return fmt.Sprintf("OUT_OF_RANGE: dimension %d: state index %d outside [0, %d)", e.Dimension, e.Value, e.Limit)
}

// IsOutOfRange returns true if the error is a codec range violation.
// Uses errors.As to handle wrapped errors.
func IsOutOfRange(err error) bool {
	var oe *OutOfRangeError
	return errors.As(err, &oe)
}

// New builds a codec for the given spans, outermost dimension first.
// Every span must be at least 1.
func New(spans []int) (*Codec, error) {
	for i, span := range spans {
		if span < 1 {
			return nil, &OutOfRangeError{Dimension: i, Value: span, Limit: 1}
		}
	}
	c := &Codec{
		spans:   append([]int(nil), spans...),
		weights: make([]int, len(spans)),
		size:    1,
	}
	for i := len(spans) - 1; i >= 0; i-- {
		c.weights[i] = c.size
		c.size *= spans[i]
	}
	return c, nil
}

// Size returns the number of points in the combination space.
func (c *Codec) Size() int {
	return c.size
}

// Dimensions returns the number of dimensions.
func (c *Codec) Dimensions() int {
	return len(c.spans)
}

// Weights returns a copy of the positional weights, outermost first.
func (c *Codec) Weights() []int {
	return append([]int(nil), c.weights...)
}

// Spans returns a copy of the per-dimension spans, outermost first.
func (c *Codec) Spans() []int {
	return append([]int(nil), c.spans...)
}

// Encode maps a state-index vector to its linear index.
func (c *Codec) Encode(vector []int) (int, error) {
	if len(vector) != len(c.spans) {
		return 0, fmt.Errorf("encode: vector has %d components, codec has %d dimensions", len(vector), len(c.spans))
	}
	index := 0
	for i, v := range vector {
		if v < 0 || v >= c.spans[i] {
			return 0, &OutOfRangeError{Dimension: i, Value: v, Limit: c.spans[i]}
		}
		index += v * c.weights[i]
	}
	return index, nil
}

// Decode maps a linear index back to its state-index vector.
func (c *Codec) Decode(index int) ([]int, error) {
	if index < 0 || index >= c.size {
		return nil, &OutOfRangeError{Dimension: -1, Value: index, Limit: c.size}
	}
	vector := make([]int, len(c.spans))
	for i, w := range c.weights {
		vector[i] = index / w
		index -= vector[i] * w
	}
	return vector, nil
}
