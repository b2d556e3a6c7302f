// Package selector parses and resolves pipeline selection expressions.
//
// An expression is a comma-separated union of clauses. Each clause is a
// base selector — a pipeline name or a "tag:" prefixed tag — optionally
// wrapped in graph closures: a leading "+" pulls in the transitive
// upstream of every matched pipeline, a trailing "+" the transitive
// downstream, and both together pull in both directions. The tag: prefix
// is mandatory for tag matching; a bare token only ever matches a
// pipeline name.
package selector

import (
	"fmt"
	"strings"

	"github.com/alexeiveselov92/dft-pipeline/internal/graph"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
)

// tagPrefix marks a clause base as a tag selector.
const tagPrefix = "tag:"

// UnknownSelectorError reports a selector naming a pipeline that does not
// exist. Unknown names fail fast to catch typos; tags with no members do
// not, they resolve to the empty set.
type UnknownSelectorError struct {
	Name string
}

func (e *UnknownSelectorError) Error() string {
	return fmt.Sprintf("unknown selector: no pipeline named %q", e.Name)
}

// Selector is one parsed clause of a selection expression.
type Selector struct {
	// Base is the pipeline name or tag name.
	Base string
	// IsTag is true when Base came with the tag: prefix.
	IsTag bool
	// Upstream is true for a leading "+".
	Upstream bool
	// Downstream is true for a trailing "+".
	Downstream bool
}

// String renders the selector back to its expression form.
func (s Selector) String() string {
	var b strings.Builder
	if s.Upstream {
		b.WriteByte('+')
	}
	if s.IsTag {
		b.WriteString(tagPrefix)
	}
	b.WriteString(s.Base)
	if s.Downstream {
		b.WriteByte('+')
	}
	return b.String()
}

// Parse splits an expression into its clauses. An empty expression yields
// no selectors; blank clauses (stray commas) are an error.
func Parse(expr string) ([]Selector, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	var out []Selector
	for _, raw := range strings.Split(expr, ",") {
		clause := strings.TrimSpace(raw)
		if clause == "" {
			return nil, fmt.Errorf("invalid selector expression %q: empty clause", expr)
		}

		var s Selector
		if strings.HasPrefix(clause, "+") {
			s.Upstream = true
			clause = clause[1:]
		}
		if strings.HasSuffix(clause, "+") {
			s.Downstream = true
			clause = clause[:len(clause)-1]
		}
		if strings.HasPrefix(clause, tagPrefix) {
			s.IsTag = true
			clause = clause[len(tagPrefix):]
		}
		if clause == "" || strings.ContainsAny(clause, "+ ") {
			return nil, fmt.Errorf("invalid selector clause %q", raw)
		}
		s.Base = clause
		out = append(out, s)
	}
	return out, nil
}

// Resolve evaluates an expression against the project and its pipeline
// graph, returning the set of matched pipeline names. Clause results are
// unioned; duplicates collapse.
func Resolve(expr string, project *model.Project, g *graph.Graph) (map[string]struct{}, error) {
	selectors, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	out := make(map[string]struct{})
	for _, s := range selectors {
		base, err := baseSet(s, project)
		if err != nil {
			return nil, err
		}
		for name := range base {
			out[name] = struct{}{}
			if s.Upstream {
				for up := range g.Upstream(name, false) {
					out[up] = struct{}{}
				}
			}
			if s.Downstream {
				for down := range g.Downstream(name, false) {
					out[down] = struct{}{}
				}
			}
		}
	}
	return out, nil
}

// ResolveTargets combines a select and an exclude expression into the
// final target set. An empty select expression means "all pipelines".
// The exclude set is subtracted after both sides are resolved; an empty
// final set is valid and produces a no-op run.
func ResolveTargets(selectExpr, excludeExpr string, project *model.Project, g *graph.Graph) (map[string]struct{}, error) {
	var targets map[string]struct{}
	if strings.TrimSpace(selectExpr) == "" {
		targets = make(map[string]struct{})
		for _, name := range project.Names() {
			targets[name] = struct{}{}
		}
	} else {
		var err error
		targets, err = Resolve(selectExpr, project, g)
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(excludeExpr) != "" {
		excluded, err := Resolve(excludeExpr, project, g)
		if err != nil {
			return nil, err
		}
		for name := range excluded {
			delete(targets, name)
		}
	}
	return targets, nil
}

func baseSet(s Selector, project *model.Project) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if s.IsTag {
		for _, p := range project.Pipelines() {
			if p.HasTag(s.Base) {
				out[p.Name] = struct{}{}
			}
		}
		// A tag nobody carries is an empty set, not an error.
		return out, nil
	}

	if _, ok := project.Pipeline(s.Base); !ok {
		return nil, &UnknownSelectorError{Name: s.Base}
	}
	out[s.Base] = struct{}{}
	return out, nil
}
