package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/mesh-intelligence/modelcore/pkg/metamodel"
	"github.com/mesh-intelligence/modelcore/pkg/properties"
)

// elementJSON is the --json rendering of an element.
type elementJSON struct {
	ID            string         `json:"id"`
	Class         string         `json:"class"`
	Name          string         `json:"name,omitempty"`
	QualifiedName string         `json:"qualified_name,omitempty"`
	Properties    []propertyJSON `json:"properties,omitempty"`
}

// propertyJSON is one property value. References render as element ids.
type propertyJSON struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// classJSON is the --json rendering of a metamodel class.
type classJSON struct {
	Name       string   `json:"name"`
	Abstract   bool     `json:"abstract"`
	Supers     []string `json:"supers,omitempty"`
	Properties []string `json:"properties,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func propertyKind(p properties.Property) string {
	switch p.(type) {
	case *properties.Attribute:
		return "attribute"
	case *properties.Enumeration:
		return "enumeration"
	case *properties.Association:
		return "association"
	case *properties.DerivedUnion:
		return "derived"
	case *properties.Redefinition:
		return "redefinition"
	}
	return "property"
}

func summarize(mm *metamodel.Metamodel, e *properties.Element) elementJSON {
	out := elementJSON{ID: e.ID(), Class: e.Class().Name(), Name: mm.NameOf(e)}
	if out.Name != "" {
		out.QualifiedName = mm.QualifiedName(e)
	}
	return out
}

func describe(mm *metamodel.Metamodel, e *properties.Element) elementJSON {
	out := summarize(mm, e)
	out.Properties = lo.Map(e.Class().Properties(), func(p properties.Property, _ int) propertyJSON {
		return propertyJSON{Name: p.Name(), Kind: propertyKind(p), Value: jsonValue(e, p)}
	})
	return out
}

func jsonValue(e *properties.Element, p properties.Property) any {
	v, err := e.Get(p.Name())
	if err != nil {
		return nil
	}
	ref, ok := v.(properties.Value)
	if !ok {
		return v
	}
	if ref.IsMany() {
		return lo.Map(ref.Items(), func(t *properties.Element, _ int) string { return t.ID() })
	}
	if one := ref.One(); one != nil {
		return one.ID()
	}
	return nil
}

// label renders an element for text output.
func label(mm *metamodel.Metamodel, e *properties.Element) string {
	if name := mm.NameOf(e); name != "" {
		return fmt.Sprintf("%s %q", e, name)
	}
	return e.String()
}

func textValue(mm *metamodel.Metamodel, e *properties.Element, p properties.Property) string {
	v, err := e.Get(p.Name())
	if err != nil {
		return ""
	}
	ref, ok := v.(properties.Value)
	if !ok {
		return fmt.Sprint(v)
	}
	labels := lo.Map(ref.Items(), func(t *properties.Element, _ int) string { return label(mm, t) })
	if ref.IsMany() {
		return "[" + strings.Join(labels, ", ") + "]"
	}
	if len(labels) == 0 {
		return "-"
	}
	return labels[0]
}
