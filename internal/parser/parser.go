// Package parser turns a raw token vector into typed arguments and flags
// according to a command's declared schema. Parsing is pure and synchronous;
// it fails with a field-named error on the first invalid value.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/cmdgrid/internal/command"
)

// Result holds the typed outcome of one parse: resolved positional arguments,
// resolved flags, and whatever raw tokens were left over.
type Result struct {
	Args  map[string]cty.Value
	Flags map[string]cty.Value
	Rest  []string
}

// FieldError reports an invalid or missing argument/flag value. Field always
// names the offending schema entry.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Parse resolves tokens against the given argument and flag specs. Leading
// non-flag tokens bind to positional specs in declaration order; flag tokens
// are matched by long name or single-character alias in either dash form.
func Parse(tokens []string, args []command.ArgSpec, flags []command.FlagSpec) (*Result, error) {
	res := &Result{
		Args:  make(map[string]cty.Value),
		Flags: make(map[string]cty.Value),
	}

	i := 0
	var positionals []string
	for i < len(tokens) && !IsFlagToken(tokens[i]) {
		positionals = append(positionals, tokens[i])
		i++
	}

	// List flags accumulate across repeated occurrences, so element values
	// are buffered and assembled after the token walk.
	listAcc := make(map[string][]cty.Value)

	for ; i < len(tokens); i++ {
		tok := tokens[i]
		if !IsFlagToken(tok) {
			res.Rest = append(res.Rest, tok)
			continue
		}

		name, inline, hasInline := splitFlagToken(tok)
		spec, ok := flagByName(flags, name)
		if !ok {
			res.Rest = append(res.Rest, tok)
			continue
		}

		var raw string
		switch {
		case hasInline:
			raw = inline
		case spec.Type == cty.Bool:
			// Bare boolean flags are treated as present/true. A following
			// token is consumed only if it is itself a boolean literal.
			raw = "true"
			if i+1 < len(tokens) {
				if _, err := strconv.ParseBool(tokens[i+1]); err == nil {
					raw = tokens[i+1]
					i++
				}
			}
		default:
			if i+1 >= len(tokens) || IsFlagToken(tokens[i+1]) {
				return nil, &FieldError{Field: spec.Name, Reason: "flag is missing a value"}
			}
			raw = tokens[i+1]
			i++
		}

		if spec.Type.IsListType() {
			elems, err := coerceList(spec.Name, raw, spec.Type.ElementType())
			if err != nil {
				return nil, err
			}
			listAcc[spec.Name] = append(listAcc[spec.Name], elems...)
			continue
		}

		val, err := coerce(spec.Name, raw, spec.Type)
		if err != nil {
			return nil, err
		}
		res.Flags[spec.Name] = val
	}

	for name, elems := range listAcc {
		spec, _ := flagByName(flags, name)
		res.Flags[name] = listVal(elems, spec.Type.ElementType())
	}

	// Bind positionals in declaration order; extras become residual tokens,
	// ahead of any unmatched flag tokens collected above.
	for idx, spec := range args {
		if idx >= len(positionals) {
			break
		}
		if spec.Type.IsListType() {
			elems, err := coerceList(spec.Name, positionals[idx], spec.Type.ElementType())
			if err != nil {
				return nil, err
			}
			res.Args[spec.Name] = listVal(elems, spec.Type.ElementType())
			continue
		}
		val, err := coerce(spec.Name, positionals[idx], spec.Type)
		if err != nil {
			return nil, err
		}
		res.Args[spec.Name] = val
	}
	if len(positionals) > len(args) {
		res.Rest = append(append([]string{}, positionals[len(args):]...), res.Rest...)
	}

	for _, spec := range args {
		if err := applyMissing(res.Args, spec.Name, spec.Default, spec.Required); err != nil {
			return nil, err
		}
	}
	for _, spec := range flags {
		if err := applyMissing(res.Flags, spec.Name, spec.Default, spec.Required); err != nil {
			return nil, err
		}
	}

	for _, spec := range args {
		if val, ok := res.Args[spec.Name]; ok {
			if err := checkValue(spec.Name, val, spec.Choices, spec.Validate); err != nil {
				return nil, err
			}
		}
	}
	for _, spec := range flags {
		if val, ok := res.Flags[spec.Name]; ok {
			if err := checkValue(spec.Name, val, spec.Choices, spec.Validate); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// IsFlagToken reports whether tok is flag-shaped, i.e. begins with a dash
// prefix. Bare "-" and "--" are passed through as ordinary tokens.
func IsFlagToken(tok string) bool {
	return strings.HasPrefix(tok, "-") && tok != "-" && tok != "--"
}

func splitFlagToken(tok string) (name, inline string, hasInline bool) {
	name = strings.TrimLeft(tok, "-")
	if eq := strings.IndexByte(name, '='); eq >= 0 {
		return name[:eq], name[eq+1:], true
	}
	return name, "", false
}

func flagByName(flags []command.FlagSpec, name string) (command.FlagSpec, bool) {
	for _, spec := range flags {
		if spec.Name == name || (spec.Alias != "" && spec.Alias == name) {
			return spec, true
		}
	}
	return command.FlagSpec{}, false
}

func coerce(field, raw string, typ cty.Type) (cty.Value, error) {
	switch typ {
	case cty.String:
		return cty.StringVal(raw), nil
	case cty.Number:
		val, err := cty.ParseNumberVal(raw)
		if err != nil {
			return cty.NilVal, &FieldError{Field: field, Reason: fmt.Sprintf("expected a number, got %q", raw)}
		}
		return val, nil
	case cty.Bool:
		val, err := convert.Convert(cty.StringVal(raw), cty.Bool)
		if err != nil {
			return cty.NilVal, &FieldError{Field: field, Reason: fmt.Sprintf("expected a boolean, got %q", raw)}
		}
		return val, nil
	}
	return cty.NilVal, &FieldError{Field: field, Reason: fmt.Sprintf("unsupported value type %s", typ.FriendlyName())}
}

// coerceList splits a raw value on commas and coerces each element. Repeated
// flag occurrences and comma-separated values both accumulate.
func coerceList(field, raw string, elem cty.Type) ([]cty.Value, error) {
	var out []cty.Value
	for _, part := range strings.Split(raw, ",") {
		val, err := coerce(field, strings.TrimSpace(part), elem)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func listVal(elems []cty.Value, elem cty.Type) cty.Value {
	if len(elems) == 0 {
		return cty.ListValEmpty(elem)
	}
	return cty.ListVal(elems)
}

func applyMissing(resolved map[string]cty.Value, name string, def cty.Value, required bool) error {
	if _, ok := resolved[name]; ok {
		return nil
	}
	if def != cty.NilVal {
		resolved[name] = def
		return nil
	}
	if required {
		return &FieldError{Field: name, Reason: "required value is missing"}
	}
	return nil
}

func checkValue(field string, val cty.Value, choices []cty.Value, validate command.ValidateFunc) error {
	if len(choices) > 0 {
		ok := false
		for _, c := range choices {
			if c.RawEquals(val) {
				ok = true
				break
			}
		}
		if !ok {
			return &FieldError{Field: field, Reason: fmt.Sprintf("must be one of %s", renderChoices(choices))}
		}
	}
	if validate != nil {
		if err := validate(val); err != nil {
			return &FieldError{Field: field, Reason: err.Error()}
		}
	}
	return nil
}

func renderChoices(choices []cty.Value) string {
	parts := make([]string, 0, len(choices))
	for _, c := range choices {
		switch c.Type() {
		case cty.String:
			parts = append(parts, c.AsString())
		case cty.Number:
			parts = append(parts, c.AsBigFloat().Text('f', -1))
		default:
			parts = append(parts, c.GoString())
		}
	}
	return strings.Join(parts, ", ")
}
