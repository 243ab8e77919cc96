package spec

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transom/internal/model"
)

func TestLoadItem_Valid(t *testing.T) {
	item, err := LoadItem(filepath.Join("testdata", "red-green.yml"))
	require.NoError(t, err)

	assert.Equal(t, "red-green", item.Model.Name)
	require.Len(t, item.Model.Pre, 2)
	assert.Equal(t, "Speed", item.Model.Pre[0].Name)
	assert.Equal(t, "Load", item.Model.Pre[1].Name)
	require.Len(t, item.Model.Post, 1)
	assert.Equal(t, "Result", item.Model.Post[0].Name)

	assert.Len(t, item.Rows, 2)
	assert.Equal(t, 9, item.Table.GenerationSize())
	assert.Equal(t, 2, item.Table.Len())
}

func TestLoadItem_Missing(t *testing.T) {
	_, err := LoadItem(filepath.Join("testdata", "no-such-item.yml"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "read")
}

func TestLoadItem_Incomplete(t *testing.T) {
	_, err := LoadItem(filepath.Join("testdata", "incomplete.yml"))
	require.Error(t, err)
	require.True(t, model.IsConfigurationError(err))
	assert.Equal(t, model.ErrCodeIncomplete, err.(*model.ConfigurationError).Code)
}

func TestParseItem_SchemaViolation(t *testing.T) {
	_, err := LoadItem(filepath.Join("testdata", "typo.yml"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "schema")
}

func TestParseItem_BadYAML(t *testing.T) {
	_, err := ParseItem("inline.yml", []byte("{unbalanced"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "parse")
}

func TestParseItem_MissingRowState(t *testing.T) {
	doc := []byte(`name: gap
pre-conditions:
  - name: Speed
    states:
      - name: Slow
  - name: Load
    states:
      - name: Empty
post-conditions:
  - name: Result
    states:
      - name: Ok
transition-map:
  - pre:  { Speed: NA }
    post: { Result: Ok }
`)
	_, err := ParseItem("gap.yml", doc)
	require.Error(t, err)

	ce := err.(*model.ConfigurationError)
	assert.Equal(t, model.ErrCodeBadState, ce.Code)
	assert.Equal(t, "Load", ce.Condition)
	assert.Equal(t, 0, ce.Entry)
}

func TestParseItem_UnknownRowKey(t *testing.T) {
	doc := []byte(`name: extra
pre-conditions:
  - name: Speed
    states:
      - name: Slow
post-conditions:
  - name: Result
    states:
      - name: Ok
transition-map:
  - pre:  { Speed: NA, Color: Red }
    post: { Result: Ok }
`)
	_, err := ParseItem("extra.yml", doc)
	require.Error(t, err)

	ce := err.(*model.ConfigurationError)
	assert.Equal(t, model.ErrCodeBadCondition, ce.Code)
	assert.Contains(t, ce.Message, "Color")
}

func TestParseItem_SkipRowAndSkipState(t *testing.T) {
	doc := []byte(`name: pruned
pre-conditions:
  - name: Speed
    states:
      - name: Slow
      - name: Fast
        skip: true
  - name: Load
    states:
      - name: Empty
      - name: Full
post-conditions:
  - name: Result
    states:
      - name: Ok
transition-map:
  - pre:  { Speed: NA, Load: NA }
    post: { Result: Ok }
  - pre:  { Speed: NA, Load: Full }
    skip: true
`)
	_, err := ParseItem("pruned.yml", doc)
	require.Error(t, err)

	// The skip row is declared after the catch-all and covers nothing.
	ce := err.(*model.ConfigurationError)
	assert.Equal(t, model.ErrCodeDeadRow, ce.Code)
	assert.Equal(t, 1, ce.Entry)
}

func TestParseItem_SkipStateAnnotation(t *testing.T) {
	doc := []byte(`name: pruned
pre-conditions:
  - name: Speed
    states:
      - name: Slow
      - name: Fast
        skip: true
post-conditions:
  - name: Result
    states:
      - name: Ok
transition-map:
  - pre:  { Speed: NA }
    post: { Result: Ok }
`)
	item, err := ParseItem("pruned.yml", doc)
	require.NoError(t, err)

	assert.False(t, item.Model.Pre[0].States[0].SkipInner)
	assert.True(t, item.Model.Pre[0].States[1].SkipInner)
}

func TestLoadDir(t *testing.T) {
	items, errs := LoadDir("testdata")

	// One good item; the incomplete and typo fixtures fail independently.
	// The .txt file is ignored.
	require.Len(t, items, 1)
	assert.Equal(t, "red-green", items[0].Model.Name)
	assert.Len(t, errs, 2)
}

func TestLoadDir_Missing(t *testing.T) {
	items, errs := LoadDir(filepath.Join("testdata", "no-such-dir"))
	assert.Nil(t, items)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
}