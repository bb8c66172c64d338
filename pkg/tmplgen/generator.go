package tmplgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/prompt"
)

// TemplatesDir is the directory under a generator holding its templates.
const TemplatesDir = "templates"

// Generator renders a manifest's files into the destination root.
type Generator struct {
	*env.Base

	manifest *Manifest
	dir      string
	answers  prompt.Answers
}

// NewGenerator builds a generator for the manifest found in dir.
func NewGenerator(b *env.Base, m *Manifest, dir string) *Generator {
	return &Generator{Base: b, manifest: m, dir: dir, answers: prompt.Answers{}}
}

// Manifest returns the parsed manifest.
func (g *Generator) Manifest() *Manifest { return g.manifest }

// Answers returns the answers collected in the prompting stage.
func (g *Generator) Answers() prompt.Answers { return g.answers.Clone() }

// Tasks implements env.Generator.
func (g *Generator) Tasks() []env.Task {
	return []env.Task{
		{Priority: env.PriorityPrompting, Name: "prompting", Run: g.prompting},
		{Priority: env.PriorityDefault, Name: "compose", Run: g.compose},
		{Priority: env.PriorityWriting, Name: "writing", Run: g.writing},
	}
}

func (g *Generator) prompting(ctx context.Context) error {
	if len(g.manifest.Questions) == 0 {
		return nil
	}
	answers, err := g.Prompt(ctx, g.manifest.Questions)
	for k, v := range answers {
		g.answers[k] = v
	}
	return err
}

func (g *Generator) compose(ctx context.Context) error {
	for _, ns := range g.manifest.Compose {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := g.ComposeWith(ns, g.Args(), g.Options()); err != nil {
			return fmt.Errorf("compose %s: %w", ns, err)
		}
	}
	return nil
}

// vars returns the substitution context for the current answers.
func (g *Generator) vars() *VarContext {
	c := NewVarContext()
	c.Set("answers", map[string]any(g.answers))
	c.Set("options", g.Options())
	c.SetBuiltin("namespace", g.Namespace())
	c.SetBuiltin("appname", AppName(g.DestinationRoot()))
	return c
}

func (g *Generator) writing(ctx context.Context) error {
	vars := g.vars()
	exprEnv := map[string]any{
		"answers": map[string]any(g.answers),
		"options": g.Options(),
	}

	for _, f := range g.manifest.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.When != "" {
			ok, err := prompt.EvalCondition(f.When, exprEnv)
			if err != nil {
				return fmt.Errorf("file %s: %w", f.Source, err)
			}
			if !ok {
				g.Logger().Debug("skipping file", "source", f.Source, "when", f.When)
				continue
			}
		}
		if err := g.render(vars, f); err != nil {
			return fmt.Errorf("file %s: %w", f.Source, err)
		}
	}
	return nil
}

func (g *Generator) render(vars *VarContext, f File) error {
	raw, err := os.ReadFile(filepath.Join(g.dir, TemplatesDir, f.Source))
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	target, err := vars.Substitute(f.Destination())
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	contents, err := vars.Substitute(string(raw))
	if err != nil {
		return err
	}

	if f.JSON {
		var obj map[string]any
		if err := json.Unmarshal([]byte(contents), &obj); err != nil {
			return fmt.Errorf("rendered JSON: %w", err)
		}
		return g.ExtendJSON(target, obj)
	}
	return g.Write(target, contents)
}
