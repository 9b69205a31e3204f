// Package match decides whether a registry project and an installed item
// are the same piece of content. Matching is heuristic: an exact registry
// linkage always wins, an exact name match beats a substring match, and
// substring matches are a best effort for manually installed files that
// were never linked.
package match

import (
	"strings"

	"launcher-sync/registry"
	"launcher-sync/store"
)

// Rule identifies which heuristic produced a match. Lower is stronger.
type Rule int

const (
	// RuleProject is an exact provider + project ID linkage.
	RuleProject Rule = iota + 1
	// RuleTitle is a case-insensitive equality of project title and item
	// name.
	RuleTitle
	// RuleSubstring matches the project title against the filename, or
	// the slug against filename or name.
	RuleSubstring
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Match reports whether project and item refer to the same content and,
// if so, which rule decided it.
func Match(project registry.Project, item store.Item) (Rule, bool) {
	if item.ProjectID != "" && item.Provider == project.Provider && item.ProjectID == project.ID {
		return RuleProject, true
	}

	title := normalize(project.Title)
	name := normalize(item.Name)
	if title != "" && name != "" && title == name {
		return RuleTitle, true
	}

	filename := normalize(item.Filename)
	slug := normalize(project.Slug)
	if title != "" && strings.Contains(filename, title) {
		return RuleSubstring, true
	}
	if slug != "" && (strings.Contains(filename, slug) || (name != "" && strings.Contains(name, slug))) {
		return RuleSubstring, true
	}

	return 0, false
}

// FindInstalled returns the installed item best matching project. When
// several items match at the same strength the first one wins, so callers
// should pass items in a stable order.
func FindInstalled(items []store.Item, project registry.Project) (store.Item, bool) {
	var best store.Item
	var bestRule Rule
	found := false
	for _, item := range items {
		rule, ok := Match(project, item)
		if !ok {
			continue
		}
		if !found || rule < bestRule {
			best = item
			bestRule = rule
			found = true
			if bestRule == RuleProject {
				break
			}
		}
	}
	return best, found
}

// FindProject returns the search hit best matching item. This is the
// inverse direction of FindInstalled and is used when resolving metadata
// for a manually installed file.
func FindProject(hits []registry.Project, item store.Item) (registry.Project, bool) {
	var best registry.Project
	var bestRule Rule
	found := false
	for _, hit := range hits {
		rule, ok := Match(hit, item)
		if !ok {
			continue
		}
		if !found || rule < bestRule {
			best = hit
			bestRule = rule
			found = true
			if bestRule == RuleProject {
				break
			}
		}
	}
	return best, found
}
