// Package moduleshorthand expands short preset, plugin and theme names into
// the full module names they may stand for.
package moduleshorthand

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/module"
)

// OrgScope is the scope official modules are published under.
const OrgScope = "@docsite"

// Resolver resolves a module request to an ID.
type Resolver interface {
	Resolve(request string) (string, error)
}

// UnresolvedError reports that none of the candidate names resolved.
type UnresolvedError struct {
	Name       string
	Kind       module.Kind
	Candidates []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("docsite was unable to resolve the %q %s. Make sure one of the following modules is installed: %s",
		e.Name, e.Kind, strings.Join(e.Candidates, ", "))
}

// NamePatterns lists the module names name may stand for, most specific first.
func NamePatterns(name string, kind module.Kind) []string {
	if module.IsPathRequest(name) {
		return []string{name}
	}

	if strings.HasPrefix(name, "@") {
		scope, rest, hasSlash := strings.Cut(name, "/")
		if !hasSlash {
			return []string{fmt.Sprintf("%s/docsite-%s", scope, kind)}
		}
		return []string{name, fmt.Sprintf("%s/docsite-%s-%s", scope, kind, rest)}
	}

	return []string{
		name,
		fmt.Sprintf("%s/%s-%s", OrgScope, kind, name),
		fmt.Sprintf("docsite-%s-%s", kind, name),
	}
}

// ResolveModuleName returns the ID of the first candidate that resolves.
func ResolveModuleName(name string, resolver Resolver, kind module.Kind) (string, error) {
	candidates := NamePatterns(name, kind)
	for _, candidate := range candidates {
		if id, err := resolver.Resolve(candidate); err == nil {
			return id, nil
		}
	}
	return "", &UnresolvedError{Name: name, Kind: kind, Candidates: candidates}
}
