package notification

import (
	"fmt"
	"strconv"
	"strings"
)

// Render expands a template string against ctx: {{ path.dotted }} resolves
// a dotted path (undefined -> empty string, never an error), and
// {{#each path as name}}...{{/each}} iterates a list value, binding name to
// each element inside the block. This is deliberately a small,
// dependency-free engine rather than a general templating library: the
// alert path is hot enough and small enough in scope that html/template or
// text/template overhead and API surface bring nothing.
func Render(tmpl string, ctx map[string]any) string {
	return render(tmpl, []frame{{name: "", value: ctx}})
}

type frame struct {
	name  string
	value any
}

func render(tmpl string, scopes []frame) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		start := strings.Index(tmpl[i:], "{{")
		if start == -1 {
			out.WriteString(tmpl[i:])
			break
		}
		out.WriteString(tmpl[i : i+start])
		i += start

		end := strings.Index(tmpl[i:], "}}")
		if end == -1 {
			out.WriteString(tmpl[i:])
			break
		}
		tag := strings.TrimSpace(tmpl[i+2 : i+end])
		i += end + 2

		if strings.HasPrefix(tag, "#each ") {
			blockEnd, body := findBlockEnd(tmpl, i, tag)
			if blockEnd == -1 {
				out.WriteString(tmpl[i:])
				break
			}
			out.WriteString(renderEach(tag, body, scopes))
			i = blockEnd
			continue
		}

		out.WriteString(resolveString(tag, scopes))
	}
	return out.String()
}

// findBlockEnd locates the matching {{/each}} for the {{#each ...}} tag that
// begins at position i, returning the index just past {{/each}} and the
// enclosed body. Nested {{#each ...}} blocks are counted, so the close tag
// returned is the one that matches this block rather than the first one.
func findBlockEnd(tmpl string, i int, _ string) (int, string) {
	closeTag := "{{/each}}"
	depth, pos := 1, i
	for {
		idx := strings.Index(tmpl[pos:], closeTag)
		if idx == -1 {
			return -1, ""
		}
		if open := strings.Index(tmpl[pos:pos+idx], "{{#each "); open != -1 {
			depth, pos = depth+1, pos+open+len("{{#each ")
			continue
		}
		if depth--; depth == 0 {
			return pos + idx + len(closeTag), tmpl[i : pos+idx]
		}
		pos += idx + len(closeTag)
	}
}

func renderEach(tag, body string, scopes []frame) string {
	// tag is "#each <path> as <name>"
	fields := strings.Fields(tag)
	if len(fields) != 4 || fields[2] != "as" {
		return ""
	}
	path, name := fields[1], fields[3]

	val, ok := resolve(path, scopes)
	if !ok {
		return ""
	}
	items, ok := val.([]any)
	if !ok {
		return ""
	}

	var out strings.Builder
	for _, item := range items {
		out.WriteString(render(body, append(append([]frame{}, scopes...), frame{name: name, value: item})))
	}
	return out.String()
}

func resolveString(path string, scopes []frame) string {
	val, ok := resolve(path, scopes)
	if !ok || val == nil {
		return ""
	}
	return toString(val)
}

// resolve walks path (e.g. "node.metrics.cpuUtilizationPercent") against the
// innermost matching scope first, so an each-bound variable shadows an
// outer key of the same name.
func resolve(path string, scopes []frame) (any, bool) {
	parts := strings.Split(path, ".")
	head := parts[0]

	var current any
	found := false
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].name == head {
			current = scopes[i].value
			found = true
			break
		}
		if scopes[i].name == "" {
			if m, ok := scopes[i].value.(map[string]any); ok {
				if v, ok := m[head]; ok {
					current = v
					found = true
					break
				}
			}
		}
	}
	if !found {
		return nil, false
	}

	for _, key := range parts[1:] {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[key]
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
