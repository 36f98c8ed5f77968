package hclunit

import "github.com/zclconf/go-cty/cty"

// unitFile is the top-level structure of a unit manifest. A file declares
// exactly one command or extension block.
type unitFile struct {
	Command   *commandBlock   `hcl:"command,block"`
	Extension *extensionBlock `hcl:"extension,block"`
}

// commandBlock is the manifest shape of a command unit. Handler, middleware,
// and validators are referenced by registered Go handler name.
type commandBlock struct {
	Name        string          `hcl:"name,optional"`
	Description string          `hcl:"description,optional"`
	Aliases     []string        `hcl:"aliases,optional"`
	Hidden      bool            `hcl:"hidden,optional"`
	Args        []*argBlock     `hcl:"arg,block"`
	Flags       []*flagBlock    `hcl:"flag,block"`
	Middleware  []string        `hcl:"middleware,optional"`
	Handler     string          `hcl:"handler,optional"`
	Children    []*commandBlock `hcl:"command,block"`
}

// argBlock declares a positional argument. Type is one of the unit type
// tags: text, number, boolean, text-list, number-list.
type argBlock struct {
	Name     string     `hcl:"name,label"`
	Type     string     `hcl:"type"`
	Required bool       `hcl:"required,optional"`
	Choices  *cty.Value `hcl:"choices,optional"`
	Default  *cty.Value `hcl:"default,optional"`
	Validate string     `hcl:"validate,optional"`
}

// flagBlock declares a flag. Alias is an optional single-character short form.
type flagBlock struct {
	Name     string     `hcl:"name,label"`
	Type     string     `hcl:"type"`
	Alias    string     `hcl:"alias,optional"`
	Required bool       `hcl:"required,optional"`
	Choices  *cty.Value `hcl:"choices,optional"`
	Default  *cty.Value `hcl:"default,optional"`
	Validate string     `hcl:"validate,optional"`
}

// extensionBlock is the manifest shape of an extension unit.
type extensionBlock struct {
	Name         string   `hcl:"name,optional"`
	Description  string   `hcl:"description,optional"`
	Dependencies []string `hcl:"dependencies,optional"`
	Setup        string   `hcl:"setup"`
	Teardown     string   `hcl:"teardown,optional"`
}
