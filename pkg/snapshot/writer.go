package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
)

// Write serializes a model in canonical order: packages, then classes, then
// members, each sorted by name.
func Write(m *apimodel.Model) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteTo(&sb, m)
	return sb.String()
}

// WriteTo serializes a model to w.
func WriteTo(w io.Writer, m *apimodel.Model) error {
	bw := bufio.NewWriter(w)
	for _, name := range m.PackageNames() {
		pkg := m.Packages[name]
		fmt.Fprintf(bw, "package %s {\n\n", name)
		for _, class := range pkg.SortedClasses() {
			writeClass(bw, class)
		}
		fmt.Fprint(bw, "}\n\n")
	}
	return bw.Flush()
}

func writeClass(w *bufio.Writer, c *apimodel.ClassType) {
	parts := []string{c.Kind.String(), c.Visibility.String()}
	if mods := c.Modifiers.String(); mods != "" {
		parts = append(parts, mods)
	}
	parts = append(parts, c.Name+formatTypeParams(c.TypeParams))
	if c.Superclass != "" {
		parts = append(parts, "extends", c.Superclass)
	}
	if len(c.Interfaces) > 0 {
		word := "implements"
		if c.Kind == apimodel.KindInterface || c.Kind == apimodel.KindAnnotation {
			word = "extends"
		}
		parts = append(parts, word, strings.Join(c.Interfaces, ", "))
	}
	fmt.Fprintf(w, "  %s {\n", strings.Join(parts, " "))

	for _, m := range c.SortedMembers() {
		fmt.Fprintf(w, "    %s\n", formatMember(m))
	}
	fmt.Fprint(w, "  }\n\n")
}

func formatMember(m *apimodel.Member) string {
	parts := []string{m.Kind.String(), m.Visibility.String()}
	if mods := m.Modifiers.String(); mods != "" {
		parts = append(parts, mods)
	}

	switch m.Kind {
	case apimodel.MemberConstructor, apimodel.MemberMethod:
		if tp := formatTypeParams(m.TypeParams); tp != "" {
			parts = append(parts, tp)
		}
		if m.Kind == apimodel.MemberMethod {
			parts = append(parts, m.ReturnType)
		}
		parts = append(parts, m.Name+"("+strings.Join(m.Params, ", ")+")")
		if len(m.Throws) > 0 {
			parts = append(parts, "throws", strings.Join(m.Throws, ", "))
		}
		return strings.Join(parts, " ") + ";"
	case apimodel.MemberField:
		parts = append(parts, m.Type, m.Name)
		line := strings.Join(parts, " ")
		if !m.HasValue {
			return line + ";"
		}
		line += " = " + m.Value + ";"
		if n, err := strconv.ParseInt(m.Value, 10, 64); err == nil && n >= 0 {
			line += fmt.Sprintf(" // 0x%x", n)
		}
		return line
	}
	panic(fmt.Sprintf("unknown member kind %d", m.Kind))
}

func formatTypeParams(params []apimodel.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
		if len(p.Bounds) > 0 {
			out[i] += " extends " + strings.Join(p.Bounds, " & ")
		}
	}
	return "<" + strings.Join(out, ", ") + ">"
}
