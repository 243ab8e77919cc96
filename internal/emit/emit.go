// Package emit renders the transition-map data tables of a test item as C
// source text: condition state enums, pre-condition description strings, the
// packed entry type with its entries array, the generation-order map, and the
// mixed-radix weights. The emitted tables are exactly what a generated
// validation test consumes; the surrounding fixture scaffolding stays with
// the external test framework.
package emit

import (
	"fmt"
	"strings"

	"github.com/roach88/transom/internal/codec"
	"github.com/roach88/transom/internal/model"
	"github.com/roach88/transom/internal/table"
)

// Source renders the data tables for one item. The output is deterministic
// for a given model and table; golden tests pin it down.
func Source(m *model.Model, t *table.Table) ([]byte, error) {
	c, err := codec.New(m.PreSpans())
	if err != nil {
		return nil, err
	}
	ident := Ident(m.Name)
	var b strings.Builder
	writeConditionEnums(&b, ident+"_Pre", m.Pre)
	writeConditionEnums(&b, ident+"_Post", m.Post)
	writeEntryType(&b, ident, m)
	writePreDesc(&b, ident, m)
	writeEntries(&b, ident, m, t)
	writeMap(&b, ident, t)
	writeWeights(&b, ident, c)
	return []byte(b.String()), nil
}

// writeConditionEnums emits one enum per condition. The NA enumerator is
// last, after all declared states; NA-exempt conditions omit it.
func writeConditionEnums(b *strings.Builder, prefix string, conditions []model.Condition) {
	for _, c := range conditions {
		name := prefix + "_" + Ident(c.Name)
		b.WriteString("typedef enum {\n")
		for i, s := range c.States {
			if i > 0 {
				b.WriteString(",\n")
			}
			fmt.Fprintf(b, "  %s_%s", name, Ident(s.Name))
		}
		if !c.NAExempt {
			fmt.Fprintf(b, ",\n  %s_NA", name)
		}
		fmt.Fprintf(b, "\n} %s;\n\n", name)
	}
}

// writeEntryType emits the packed entry struct: a skip bit, one NA bit per
// pre-condition carrying the sentinel, and one field per post-condition wide
// enough for its state indices.
func writeEntryType(b *strings.Builder, ident string, m *model.Model) {
	b.WriteString("typedef struct {\n")
	fmt.Fprintf(b, "  uint32_t Skip : 1;\n")
	for _, c := range m.Pre {
		if c.NAExempt {
			continue
		}
		fmt.Fprintf(b, "  uint32_t Pre_%s_NA : 1;\n", Ident(c.Name))
	}
	for _, c := range m.Post {
		fmt.Fprintf(b, "  uint32_t Post_%s : %d;\n", Ident(c.Name), bitsFor(c.Cardinality()))
	}
	fmt.Fprintf(b, "} %s_Entry;\n\n", ident)
}

func writePreDesc(b *strings.Builder, ident string, m *model.Model) {
	for _, c := range m.Pre {
		fmt.Fprintf(b, "static const char * const %s_PreDesc_%s[] = {\n", ident, Ident(c.Name))
		for _, s := range c.States {
			fmt.Fprintf(b, "  \"%s\",\n", s.Name)
		}
		if !c.NAExempt {
			fmt.Fprintf(b, "  \"%s\",\n", model.NAName)
		}
		b.WriteString("};\n\n")
	}
	fmt.Fprintf(b, "static const char * const * const %s_PreDesc[] = {\n", ident)
	for _, c := range m.Pre {
		fmt.Fprintf(b, "  %s_PreDesc_%s,\n", ident, Ident(c.Name))
	}
	b.WriteString("  NULL\n};\n\n")
}

func writeEntries(b *strings.Builder, ident string, m *model.Model, t *table.Table) {
	fmt.Fprintf(b, "static const %s_Entry\n%s_Entries[] = {\n", ident, ident)
	for s := 0; s < t.Len(); s++ {
		e := t.EntryAt(s)
		fields := []string{boolBit(e.Skip)}
		for i, c := range m.Pre {
			if c.NAExempt {
				continue
			}
			fields = append(fields, boolBit(e.Applicability[i] == table.NotApplicable))
		}
		for j, c := range m.Post {
			if e.Skip {
				// Skip entries carry no meaningful expectations; emit the
				// first declared state so the initializer stays readable.
				fields = append(fields, fmt.Sprintf("%s_Post_%s_%s", ident, Ident(c.Name), naOrFirst(c)))
				continue
			}
			fields = append(fields, fmt.Sprintf("%s_Post_%s_%s", ident, Ident(c.Name), Ident(c.StateName(e.Expected[j]))))
		}
		fmt.Fprintf(b, "  { %s },\n", strings.Join(fields, ", "))
	}
	b.WriteString("};\n\n")
}

func writeMap(b *strings.Builder, ident string, t *table.Table) {
	fmt.Fprintf(b, "static const %s\n%s_Map[] = {\n", integerType(t.Len()-1), ident)
	values := make([]string, t.GenerationSize())
	for g := range values {
		values[g] = fmt.Sprintf("%d", t.StorageIndex(g))
	}
	wrapList(b, values)
	b.WriteString("};\n\n")
}

func writeWeights(b *strings.Builder, ident string, c *codec.Codec) {
	weights := c.Weights()
	max := 1
	if len(weights) > 0 {
		max = weights[0]
	}
	fmt.Fprintf(b, "static const %s %s_Weights[] = {\n", integerType(max), ident)
	values := make([]string, len(weights))
	for i, w := range weights {
		values[i] = fmt.Sprintf("%d", w)
	}
	wrapList(b, values)
	b.WriteString("};\n")
}

// wrapList writes comma-separated values wrapped at 76 columns with a
// two-space indent.
func wrapList(b *strings.Builder, values []string) {
	const limit = 76
	line := " "
	for i, v := range values {
		item := " " + v
		if i < len(values)-1 {
			item += ","
		}
		if len(line)+len(item) > limit {
			b.WriteString(line + "\n")
			line = " "
		}
		line += item
	}
	if strings.TrimSpace(line) != "" {
		b.WriteString(line + "\n")
	}
}

func boolBit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func naOrFirst(c model.Condition) string {
	return Ident(c.StateName(0))
}
