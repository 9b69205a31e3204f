package match

import (
	"testing"

	"launcher-sync/registry"
	"launcher-sync/store"
)

func TestMatchRules(t *testing.T) {
	tests := []struct {
		name     string
		project  registry.Project
		item     store.Item
		wantRule Rule
		wantOK   bool
	}{
		{
			name:     "exact project linkage",
			project:  registry.Project{ID: "AANobbMI", Provider: registry.Modrinth, Title: "Sodium"},
			item:     store.Item{Provider: registry.Modrinth, ProjectID: "AANobbMI", Name: "Something Else"},
			wantRule: RuleProject,
			wantOK:   true,
		},
		{
			name:    "same project id different provider",
			project: registry.Project{ID: "12345", Provider: registry.Modrinth},
			item:    store.Item{Provider: registry.CurseForge, ProjectID: "12345"},
			wantOK:  false,
		},
		{
			name:     "title equals name ignoring case",
			project:  registry.Project{ID: "p1", Title: "Just Enough Items"},
			item:     store.Item{Name: "just enough items", Filename: "jei.jar"},
			wantRule: RuleTitle,
			wantOK:   true,
		},
		{
			name:     "title equals name with surrounding space",
			project:  registry.Project{ID: "p1", Title: " Sodium "},
			item:     store.Item{Name: "sodium"},
			wantRule: RuleTitle,
			wantOK:   true,
		},
		{
			name:     "filename contains title",
			project:  registry.Project{ID: "p1", Title: "Sodium"},
			item:     store.Item{Filename: "sodium-fabric-0.6.0.jar"},
			wantRule: RuleSubstring,
			wantOK:   true,
		},
		{
			name:     "filename contains slug",
			project:  registry.Project{ID: "p1", Title: "Fabric API", Slug: "fabric-api"},
			item:     store.Item{Filename: "fabric-api-0.102.0.jar"},
			wantRule: RuleSubstring,
			wantOK:   true,
		},
		{
			name:     "name contains slug",
			project:  registry.Project{ID: "p1", Title: "Iris Shaders", Slug: "iris"},
			item:     store.Item{Name: "iris 1.7.2", Filename: "unrelated.jar"},
			wantRule: RuleSubstring,
			wantOK:   true,
		},
		{
			name:    "no relation",
			project: registry.Project{ID: "p1", Title: "Sodium", Slug: "sodium"},
			item:    store.Item{Name: "Lithium", Filename: "lithium-0.12.jar"},
			wantOK:  false,
		},
		{
			name:    "empty title never matches empty name",
			project: registry.Project{ID: "p1"},
			item:    store.Item{Filename: "whatever.jar"},
			wantOK:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := Match(tt.project, tt.item)
			if ok != tt.wantOK {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && rule != tt.wantRule {
				t.Errorf("Match() rule = %d, want %d", rule, tt.wantRule)
			}
		})
	}
}

func TestFindInstalledPriority(t *testing.T) {
	// Two items could plausibly match: one by name collision and one by
	// registry linkage. The linkage must win regardless of slice order.
	project := registry.Project{ID: "AANobbMI", Provider: registry.Modrinth, Title: "Sodium", Slug: "sodium"}
	items := []store.Item{
		{Name: "Sodium", Filename: "sodium-imposter.jar"},
		{Provider: registry.Modrinth, ProjectID: "AANobbMI", Filename: "sodium-real.jar"},
	}

	got, ok := FindInstalled(items, project)
	if !ok {
		t.Fatal("FindInstalled() found nothing")
	}
	if got.Filename != "sodium-real.jar" {
		t.Errorf("FindInstalled() = %q, want the linked item", got.Filename)
	}
}

func TestFindInstalledTitleBeatsSubstring(t *testing.T) {
	project := registry.Project{ID: "p1", Title: "Iris", Slug: "iris"}
	items := []store.Item{
		{Name: "iris companion", Filename: "iris-extras.jar"},
		{Name: "Iris", Filename: "renamed.jar"},
	}

	got, ok := FindInstalled(items, project)
	if !ok {
		t.Fatal("FindInstalled() found nothing")
	}
	if got.Filename != "renamed.jar" {
		t.Errorf("FindInstalled() = %q, want the exact-title item", got.Filename)
	}
}

func TestFindInstalledNoMatch(t *testing.T) {
	project := registry.Project{ID: "p1", Title: "Sodium", Slug: "sodium"}
	items := []store.Item{
		{Name: "Lithium", Filename: "lithium.jar"},
	}
	if _, ok := FindInstalled(items, project); ok {
		t.Error("FindInstalled() matched unrelated content")
	}
}

func TestFindInstalledFirstWinsOnTie(t *testing.T) {
	project := registry.Project{ID: "p1", Title: "Sodium"}
	items := []store.Item{
		{Filename: "sodium-a.jar"},
		{Filename: "sodium-b.jar"},
	}
	got, ok := FindInstalled(items, project)
	if !ok || got.Filename != "sodium-a.jar" {
		t.Errorf("FindInstalled() = %v %v, want first item on equal strength", got.Filename, ok)
	}
}

func TestFindProject(t *testing.T) {
	item := store.Item{Name: "Fabric API", Filename: "fabric-api-0.102.0.jar"}
	hits := []registry.Project{
		{ID: "h1", Title: "Fabric API Lookup", Slug: "fabric-api-lookup"},
		{ID: "h2", Title: "Fabric API", Slug: "fabric-api"},
	}
	got, ok := FindProject(hits, item)
	if !ok {
		t.Fatal("FindProject() found nothing")
	}
	if got.ID != "h2" {
		t.Errorf("FindProject() = %q, want exact-title hit h2", got.ID)
	}
}

func TestFindProjectNoHits(t *testing.T) {
	item := store.Item{Name: "Unknown", Filename: "unknown.jar"}
	if _, ok := FindProject(nil, item); ok {
		t.Error("FindProject() on empty hits should not match")
	}
}
