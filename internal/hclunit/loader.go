// Package hclunit implements the unit Loader for HCL manifest files. It is
// the concrete loading capability injected into discovery; the resolution
// engine itself never depends on the manifest format, only on the validated
// unit shape this loader produces.
package hclunit

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/discovery"
	"github.com/vk/cmdgrid/internal/handlers"
)

// Loader loads HCL unit manifests, resolving handler references against a
// Handlers registry.
type Loader struct {
	handlers *handlers.Handlers
}

// NewLoader creates a Loader resolving names against the given registry.
func NewLoader(h *handlers.Handlers) *Loader {
	return &Loader{handlers: h}
}

// Load parses and validates one unit file. Discovery may call it
// concurrently, so each call uses its own parser instance.
func (l *Loader) Load(ctx context.Context, path string) (*discovery.Unit, error) {
	ctxlog.FromContext(ctx).Debug("Loading unit file.", "path", path)

	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse unit file: %w", diags)
	}

	var root unitFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode unit file: %w", diags)
	}

	switch {
	case root.Command != nil && root.Extension != nil:
		return nil, errors.New("unit declares both a command and an extension block")
	case root.Command != nil:
		return l.commandUnit(root.Command)
	case root.Extension != nil:
		return l.extensionUnit(root.Extension)
	}
	return nil, errors.New("unit declares neither a command nor an extension block")
}

func (l *Loader) commandUnit(b *commandBlock) (*discovery.Unit, error) {
	u := &discovery.Unit{
		Name:        b.Name,
		Description: b.Description,
		Aliases:     b.Aliases,
		Hidden:      b.Hidden,
	}

	for _, ab := range b.Args {
		spec, err := l.argSpec(ab)
		if err != nil {
			return nil, err
		}
		u.Args = append(u.Args, spec)
	}
	for _, fb := range b.Flags {
		spec, err := l.flagSpec(fb)
		if err != nil {
			return nil, err
		}
		u.Flags = append(u.Flags, spec)
	}

	for _, name := range b.Middleware {
		mw, ok := l.handlers.Middleware(name)
		if !ok {
			return nil, fmt.Errorf("middleware %q is not registered", name)
		}
		u.Middleware = append(u.Middleware, mw)
	}

	if b.Handler != "" {
		fn, ok := l.handlers.Command(b.Handler)
		if !ok {
			return nil, fmt.Errorf("handler %q is not registered", b.Handler)
		}
		u.Handler = fn
	}

	for _, cb := range b.Children {
		child, err := l.commandUnit(cb)
		if err != nil {
			return nil, err
		}
		if child.Name == "" {
			return nil, errors.New("inline child command must declare a name")
		}
		u.Children = append(u.Children, child)
	}

	return u, nil
}

func (l *Loader) extensionUnit(b *extensionBlock) (*discovery.Unit, error) {
	u := &discovery.Unit{
		Name:        b.Name,
		Description: b.Description,
		DependsOn:   b.Dependencies,
	}

	setup, ok := l.handlers.Setup(b.Setup)
	if !ok {
		return nil, fmt.Errorf("setup procedure %q is not registered", b.Setup)
	}
	u.Setup = setup

	if b.Teardown != "" {
		teardown, ok := l.handlers.Teardown(b.Teardown)
		if !ok {
			return nil, fmt.Errorf("teardown procedure %q is not registered", b.Teardown)
		}
		u.Teardown = teardown
	}

	return u, nil
}

func (l *Loader) argSpec(b *argBlock) (command.ArgSpec, error) {
	typ, def, choices, validate, err := l.valueSpec(b.Name, b.Type, b.Default, b.Choices, b.Validate)
	if err != nil {
		return command.ArgSpec{}, err
	}
	return command.ArgSpec{
		Name:     b.Name,
		Type:     typ,
		Required: b.Required,
		Choices:  choices,
		Default:  def,
		Validate: validate,
	}, nil
}

func (l *Loader) flagSpec(b *flagBlock) (command.FlagSpec, error) {
	typ, def, choices, validate, err := l.valueSpec(b.Name, b.Type, b.Default, b.Choices, b.Validate)
	if err != nil {
		return command.FlagSpec{}, err
	}
	if len(b.Alias) > 1 {
		return command.FlagSpec{}, fmt.Errorf("flag %q: alias %q must be a single character", b.Name, b.Alias)
	}
	return command.FlagSpec{
		Name:     b.Name,
		Alias:    b.Alias,
		Type:     typ,
		Required: b.Required,
		Choices:  choices,
		Default:  def,
		Validate: validate,
	}, nil
}

// valueSpec resolves the shared parts of arg and flag declarations: the type
// tag, a default converted to that type, the choice set, and a registered
// validator.
func (l *Loader) valueSpec(field, tag string, rawDefault, rawChoices *cty.Value, validatorName string) (cty.Type, cty.Value, []cty.Value, command.ValidateFunc, error) {
	typ, err := command.ParseTypeTag(tag)
	if err != nil {
		return cty.NilType, cty.NilVal, nil, nil, fmt.Errorf("field %q: %w", field, err)
	}

	def := cty.NilVal
	if rawDefault != nil {
		def, err = convert.Convert(*rawDefault, typ)
		if err != nil {
			return cty.NilType, cty.NilVal, nil, nil, fmt.Errorf("field %q: default does not match type %s: %w", field, tag, err)
		}
	}

	var choices []cty.Value
	if rawChoices != nil {
		if !rawChoices.CanIterateElements() {
			return cty.NilType, cty.NilVal, nil, nil, fmt.Errorf("field %q: choices must be a list", field)
		}
		for it := rawChoices.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			cv, err := convert.Convert(ev, typ)
			if err != nil {
				return cty.NilType, cty.NilVal, nil, nil, fmt.Errorf("field %q: choice does not match type %s: %w", field, tag, err)
			}
			choices = append(choices, cv)
		}
	}

	var validate command.ValidateFunc
	if validatorName != "" {
		fn, ok := l.handlers.Validator(validatorName)
		if !ok {
			return cty.NilType, cty.NilVal, nil, nil, fmt.Errorf("field %q: validator %q is not registered", field, validatorName)
		}
		validate = fn
	}

	return typ, def, choices, validate, nil
}
