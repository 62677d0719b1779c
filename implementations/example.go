package implementations

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is an example keyword argument: an int, a string or a []Value.
type Value interface{}

type Kwarg struct {
	Key   string
	Value Value
}

// Example is one entry of an element's example list, written
// "cell,degree[,variant][ {key=value,...}]".
type Example struct {
	Cell    string
	Degree  int
	Variant string
	Kwargs  []Kwarg
}

func ParseExample(s string) (ex Example, err error) {
	var (
		head = s
		rest string
	)
	if i := strings.Index(s, " {"); i >= 0 {
		head, rest = s[:i], s[i+2:]
		j := strings.LastIndex(rest, "}")
		if j < 0 {
			err = fmt.Errorf("example %q: unterminated keyword arguments", s)
			return
		}
		if ex.Kwargs, err = parseKwargs(rest[:j]); err != nil {
			err = fmt.Errorf("example %q: %w", s, err)
			return
		}
	}
	parts := strings.Split(head, ",")
	if len(parts) != 2 && len(parts) != 3 {
		err = fmt.Errorf("example %q: want cell,degree[,variant]", s)
		return
	}
	ex.Cell = strings.TrimSpace(parts[0])
	if ex.Degree, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		err = fmt.Errorf("example %q: degree: %w", s, err)
		return
	}
	if len(parts) == 3 {
		ex.Variant = strings.TrimSpace(parts[2])
	}
	return
}

// splitTopLevel splits on any rune of seps outside of square brackets
func splitTopLevel(s string, seps string) (out []string, err error) {
	var (
		depth, start int
	)
	for i, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']':
			if depth--; depth < 0 {
				return nil, fmt.Errorf("unbalanced ] in %q", s)
			}
		case depth == 0 && strings.ContainsRune(seps, r):
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced [ in %q", s)
	}
	out = append(out, s[start:])
	return
}

func parseKwargs(s string) (kwargs []Kwarg, err error) {
	var (
		items []string
	)
	if strings.TrimSpace(s) == "" {
		return
	}
	if items, err = splitTopLevel(s, ","); err != nil {
		return
	}
	for _, item := range items {
		kv := strings.SplitN(item, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("keyword argument %q has no value", item)
		}
		var v Value
		if v, err = parseValue(kv[1]); err != nil {
			return
		}
		kwargs = append(kwargs, Kwarg{Key: strings.TrimSpace(kv[0]), Value: v})
	}
	return
}

func parseValue(s string) (v Value, err error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		var items []string
		if items, err = splitTopLevel(s[1:len(s)-1], ",;"); err != nil {
			return
		}
		list := make([]Value, len(items))
		for i, item := range items {
			if list[i], err = parseValue(item); err != nil {
				return
			}
		}
		return list, nil
	}
	if isDigits(s) {
		return strconv.Atoi(s)
	}
	return s, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatValue(v Value) string {
	switch x := v.(type) {
	case []Value:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ";") + "]"
	default:
		return fmt.Sprint(x)
	}
}

func (ex Example) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s,%d", ex.Cell, ex.Degree)
	if ex.Variant != "" {
		b.WriteString("," + ex.Variant)
	}
	if len(ex.Kwargs) != 0 {
		parts := make([]string, len(ex.Kwargs))
		for i, kw := range ex.Kwargs {
			parts[i] = kw.Key + "=" + formatValue(kw.Value)
		}
		b.WriteString(" {" + strings.Join(parts, ",") + "}")
	}
	return b.String()
}

// KwargMap returns the keyword arguments keyed by name.
func (ex Example) KwargMap() map[string]Value {
	m := make(map[string]Value, len(ex.Kwargs))
	for _, kw := range ex.Kwargs {
		m[kw.Key] = kw.Value
	}
	return m
}
