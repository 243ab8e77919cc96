// Package spec loads specification item documents and cross-references them
// into validated condition models and transition tables.
//
// # Item Format
//
// Items are YAML documents, one item per file:
//
//	name: red-green
//	pre-conditions:
//	  - name: Speed
//	    states:
//	      - name: Slow
//	      - name: Fast
//	  - name: Load
//	    states:
//	      - name: Empty
//	      - name: Full
//	post-conditions:
//	  - name: Result
//	    states:
//	      - name: Ok
//	      - name: Error
//	transition-map:
//	  - pre:  { Speed: Fast, Load: Full }
//	    post: { Result: Error }
//	  - pre:  { Speed: NA, Load: NA }
//	    post: { Result: Ok }
//
// Rows match generation-order slots first-row-wins; "NA" covers every state
// of a dimension. A state may carry "skip: true" to mark it skip-eligible
// for the synthesizer's pruning; a row may carry "skip: true" to exclude its
// combinations from the plan.
//
// Documents are validated twice: structurally against the embedded CUE
// schema, then semantically while building the model and table (duplicate
// names, undeclared states, coverage gaps). A failing item aborts loading
// for that item only; sibling items proceed.
package spec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/transom/internal/model"
	"github.com/roach88/transom/internal/table"
)

// Document is the raw shape of an item file.
type Document struct {
	Name string `yaml:"name"`

	PreConditions  []ConditionDoc `yaml:"pre-conditions"`
	PostConditions []ConditionDoc `yaml:"post-conditions"`

	TransitionMap []RowDoc `yaml:"transition-map"`
}

// ConditionDoc declares one condition and its ordered states.
type ConditionDoc struct {
	Name     string     `yaml:"name"`
	States   []StateDoc `yaml:"states"`
	NAExempt bool       `yaml:"na-exempt,omitempty"`
}

// StateDoc declares one named state. Skip marks the state skip-eligible.
type StateDoc struct {
	Name string `yaml:"name"`
	Skip bool   `yaml:"skip,omitempty"`
}

// RowDoc is one transition row, keyed by condition name.
type RowDoc struct {
	Pre  map[string]string `yaml:"pre"`
	Post map[string]string `yaml:"post,omitempty"`
	Skip bool              `yaml:"skip,omitempty"`
}

// Item is a fully cross-referenced test item, validated and ready for
// synthesis.
type Item struct {
	Path  string
	Model *model.Model
	Rows  []table.Row
	Table *table.Table
}

// LoadError reports a failure to read or structurally validate an item file.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadItem reads, validates, and cross-references a single item file.
func LoadItem(path string) (*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read item file", Err: err}
	}
	return ParseItem(path, data)
}

// ParseItem validates and cross-references item document bytes.
// Path is used for diagnostics only.
func ParseItem(path string, data []byte) (*Item, error) {
	// First pass: a generic decode for schema validation.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse YAML", Err: err}
	}
	if err := validateSchema(raw); err != nil {
		return nil, &LoadError{Path: path, Message: "item does not satisfy schema", Err: err}
	}

	// Second pass: strict typed decode. The schema already rejected unknown
	// fields; KnownFields keeps both passes honest about the same shape.
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to decode item", Err: err}
	}

	m, err := buildModel(&doc)
	if err != nil {
		return nil, err
	}
	rows, err := buildRows(m, doc.TransitionMap)
	if err != nil {
		return nil, err
	}
	t, err := table.Build(m, rows)
	if err != nil {
		return nil, err
	}
	return &Item{Path: path, Model: m, Rows: rows, Table: t}, nil
}

func buildModel(doc *Document) (*model.Model, error) {
	return model.New(doc.Name, buildConditions(doc.PreConditions), buildConditions(doc.PostConditions))
}

func buildConditions(docs []ConditionDoc) []model.Condition {
	conditions := make([]model.Condition, len(docs))
	for i, cd := range docs {
		states := make([]model.State, len(cd.States))
		for j, sd := range cd.States {
			states[j] = model.State{Name: sd.Name, SkipInner: sd.Skip}
		}
		conditions[i] = model.Condition{Name: cd.Name, States: states, NAExempt: cd.NAExempt}
	}
	return conditions
}

// buildRows converts name-keyed row documents to positional rows in the
// model's declared condition order. Every pre-condition must be named in
// every row; post-conditions must be named unless the row is a skip row.
func buildRows(m *model.Model, docs []RowDoc) ([]table.Row, error) {
	rows := make([]table.Row, len(docs))
	for r, rd := range docs {
		row := table.Row{
			Pre:  make([]string, len(m.Pre)),
			Skip: rd.Skip,
		}
		if err := fillStates(m, "pre-condition", r, rd.Pre, m.Pre, row.Pre); err != nil {
			return nil, err
		}
		if !rd.Skip || len(rd.Post) > 0 {
			row.Post = make([]string, len(m.Post))
			if err := fillStates(m, "post-condition", r, rd.Post, m.Post, row.Post); err != nil {
				return nil, err
			}
		}
		rows[r] = row
	}
	return rows, nil
}

func fillStates(m *model.Model, kind string, row int, named map[string]string, conditions []model.Condition, out []string) error {
	for i, c := range conditions {
		name, ok := named[c.Name]
		if !ok {
			return &model.ConfigurationError{
				Code:      model.ErrCodeBadState,
				Item:      m.Name,
				Entry:     row,
				Condition: c.Name,
				Message:   "row names no state for " + kind,
			}
		}
		out[i] = name
	}
	if len(named) != len(conditions) {
		return &model.ConfigurationError{
			Code:    model.ErrCodeBadCondition,
			Item:    m.Name,
			Entry:   row,
			Message: fmt.Sprintf("row references unknown %ss: %s", kind, unknownKeys(named, conditions)),
		}
	}
	return nil
}

func unknownKeys(named map[string]string, conditions []model.Condition) string {
	declared := make(map[string]bool, len(conditions))
	for _, c := range conditions {
		declared[c.Name] = true
	}
	var unknown []string
	for k := range named {
		if !declared[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return strings.Join(unknown, ", ")
}

// LoadDir loads every item file in a directory, non-recursively. Files must
// have a .yml or .yaml extension; other files are ignored. A failing item is
// reported in the returned error slice and does not block sibling items.
func LoadDir(dir string) ([]*Item, []error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{&LoadError{Path: dir, Message: "failed to read item directory", Err: err}}
	}
	var items []*Item
	var errs []error
	for _, de := range names {
		if de.IsDir() {
			continue
		}
		ext := filepath.Ext(de.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		item, err := LoadItem(filepath.Join(dir, de.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, item)
	}
	return items, errs
}
