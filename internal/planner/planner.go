// Package planner translates structured intents into ordered execution plans
package planner

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/workmesh/maestro/pkg/api"
)

// Planner builds plans from a fixed table of category templates. The table
// is populated before the planner is shared and read-only during Build, so
// Build is a pure function of the intent
type Planner struct {
	templates map[api.Category]*Template
}

var (
	ErrTemplateCategoryEmpty = errors.New("template category empty")
	ErrTemplateExists        = errors.New("template already registered")
)

// New creates a planner seeded with the builtin task templates
func New() *Planner {
	p := &Planner{templates: map[api.Category]*Template{}}
	for _, t := range builtinTemplates() {
		if err := p.RegisterTemplate(t); err != nil {
			panic(err)
		}
	}
	return p
}

// RegisterTemplate adds a category template. Re-registering a category fails
// rather than overwriting; planning must stay deterministic
func (p *Planner) RegisterTemplate(t *Template) error {
	if t.Category == "" {
		return ErrTemplateCategoryEmpty
	}
	if _, ok := p.templates[t.Category]; ok {
		return fmt.Errorf("%w: %s", ErrTemplateExists, t.Category)
	}
	p.templates[t.Category] = t
	return nil
}

// Recognizes reports whether the category has a registered template
func (p *Planner) Recognizes(category api.Category) bool {
	_, ok := p.templates[category]
	return ok
}

// Build produces the plan for an intent. An unrecognized category yields an
// empty plan and no error; a recognized category missing required parameters
// yields a *api.PlanningError and no plan. Same intent, same plan: step
// order and bound parameters depend on nothing but the template table and
// the intent itself
func (p *Planner) Build(intent *api.Intent) (*api.Plan, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	digest, err := intent.Parameters.HashKey()
	if err != nil {
		return nil, err
	}

	tmpl, ok := p.templates[intent.Category]
	if !ok {
		return &api.Plan{
			ID:       api.NewPlanID(),
			Category: intent.Category,
			Digest:   digest,
		}, nil
	}

	if err := checkRequired(tmpl, intent); err != nil {
		return nil, err
	}

	steps := make([]api.Step, len(tmpl.Steps))
	for i, st := range tmpl.Steps {
		steps[i] = api.NewStep(st.Action, bindParams(&st, intent), i)
	}

	return &api.Plan{
		ID:       api.NewPlanID(),
		Category: intent.Category,
		Digest:   digest,
		Steps:    steps,
	}, nil
}

func checkRequired(tmpl *Template, intent *api.Intent) error {
	var missing []api.Name
	for _, name := range tmpl.Required {
		if _, ok := intent.Parameters[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return api.NewPlanningError(intent.Category, missing)
	}
	return nil
}

func bindParams(st *StepTemplate, intent *api.Intent) api.Args {
	params := api.Args{}
	for name, def := range st.Defaults {
		params[name] = gjson.Parse(def).Value()
	}
	for _, name := range st.Bind {
		if value, ok := intent.Parameters[name]; ok {
			params[name] = value
		}
	}
	return params
}
