package bundle

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"launcher-sync/gateway"
	"launcher-sync/registry"
	"launcher-sync/store"
)

type versionCall struct {
	projectID   string
	gameVersion string
	loader      string
}

type fakeRegistry struct {
	versions map[string][]registry.Version
	verErr   map[string]error
	verCalls []versionCall
	projects map[string]registry.Project
}

func (f *fakeRegistry) Search(ctx context.Context, q gateway.SearchQuery) (gateway.SearchPage, error) {
	return gateway.SearchPage{}, nil
}

func (f *fakeRegistry) Project(ctx context.Context, p registry.Provider, id string) (registry.Project, error) {
	if proj, ok := f.projects[id]; ok {
		return proj, nil
	}
	return registry.Project{ID: id, Provider: p, Title: "Project " + id}, nil
}

func (f *fakeRegistry) ProjectVersions(ctx context.Context, p registry.Provider, id, gv, loader string, ct registry.ContentType) ([]registry.Version, error) {
	f.verCalls = append(f.verCalls, versionCall{projectID: id, gameVersion: gv, loader: loader})
	if err := f.verErr[id]; err != nil {
		return nil, err
	}
	return f.versions[id], nil
}

type fakeInstance struct {
	preinstalled []store.Item
	installs     []store.InstallRequest
	failInstall  map[string]error
}

func (f *fakeInstance) Installed(ctx context.Context, instanceID string, ct registry.ContentType) ([]store.Item, error) {
	return f.preinstalled, nil
}

func (f *fakeInstance) InstallFile(ctx context.Context, req store.InstallRequest) (string, error) {
	if err := f.failInstall[req.ProjectID]; err != nil {
		return "", err
	}
	f.installs = append(f.installs, req)
	return req.File.Filename, nil
}

func newTestImporter(reg *fakeRegistry, inst *fakeInstance) *Importer {
	target := store.Instance{UID: "inst-1", Name: "default", GameVersion: "1.21.1", Loader: "fabric"}
	return NewImporter(reg, inst, target, zap.NewNop().Sugar())
}

func modCode(t *testing.T, refs ...Ref) string {
	t.Helper()
	code, err := Encode(Bundle{Name: "shared", GameVersion: "1.21.1", Loader: "fabric", Mods: refs})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return code
}

func simpleVersions(projects ...string) map[string][]registry.Version {
	out := make(map[string][]registry.Version, len(projects))
	for _, p := range projects {
		out[p] = []registry.Version{{
			ID:    p + "-latest",
			Label: "2.0",
			Files: []registry.File{{Filename: p + "-2.0.jar", Primary: true}},
		}}
	}
	return out
}

func TestImportSkipsAlreadyInstalled(t *testing.T) {
	// Three references, the second already present locally: only the
	// first and third install, yet all three count as installed.
	reg := &fakeRegistry{versions: simpleVersions("p1", "p2", "p3")}
	inst := &fakeInstance{preinstalled: []store.Item{
		{ProjectID: "p2", Provider: registry.Modrinth, Filename: "p2-1.0.jar"},
	}}
	im := newTestImporter(reg, inst)

	code := modCode(t,
		Ref{ProjectID: "p1", Provider: registry.Modrinth, Name: "One"},
		Ref{ProjectID: "p2", Provider: registry.Modrinth, Name: "Two"},
		Ref{ProjectID: "p3", Provider: registry.Modrinth, Name: "Three"},
	)
	res, err := im.Import(context.Background(), code, registry.ContentMods, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if res.Installed != 3 {
		t.Errorf("Installed = %d, want 3", res.Installed)
	}
	if len(res.Failed) != 0 {
		t.Errorf("Failed = %v, want none", res.Failed)
	}
	if len(inst.installs) != 2 {
		t.Fatalf("%d install calls, want 2", len(inst.installs))
	}
	if inst.installs[0].ProjectID != "p1" || inst.installs[1].ProjectID != "p3" {
		t.Errorf("installed %s then %s, want p1 then p3", inst.installs[0].ProjectID, inst.installs[1].ProjectID)
	}
}

func TestImportNeverInstallsSameProjectTwice(t *testing.T) {
	reg := &fakeRegistry{versions: simpleVersions("p1")}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	code := modCode(t,
		Ref{ProjectID: "p1", Provider: registry.Modrinth},
		Ref{ProjectID: "p1", Provider: registry.Modrinth},
	)
	res, err := im.Import(context.Background(), code, registry.ContentMods, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(inst.installs) != 1 {
		t.Errorf("%d install calls for a duplicated reference, want 1", len(inst.installs))
	}
	if res.Installed != 2 {
		t.Errorf("Installed = %d, want 2 (duplicate counts as already present)", res.Installed)
	}
}

func TestImportProgressScaling(t *testing.T) {
	reg := &fakeRegistry{versions: simpleVersions("p1", "p2", "p3")}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	var events []Progress
	code := modCode(t,
		Ref{ProjectID: "p1", Provider: registry.Modrinth},
		Ref{ProjectID: "p2", Provider: registry.Modrinth},
		Ref{ProjectID: "p3", Provider: registry.Modrinth},
	)
	if _, err := im.Import(context.Background(), code, registry.ContentMods, func(p Progress) {
		events = append(events, p)
	}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if len(events) != 5 {
		t.Fatalf("%d progress events, want 5 (decode, start, one per item)", len(events))
	}
	wantPercents := []int{0, 10, 40, 70, 100}
	for i, want := range wantPercents {
		if events[i].Percent != want {
			t.Errorf("event %d percent = %d, want %d", i, events[i].Percent, want)
		}
	}
	last := 0
	for i, ev := range events {
		if ev.Percent < last {
			t.Errorf("progress went backwards at event %d: %d after %d", i, ev.Percent, last)
		}
		last = ev.Percent
	}
}

func TestImportEmptyBucketIsNoop(t *testing.T) {
	reg := &fakeRegistry{}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	var events []Progress
	code := modCode(t, Ref{ProjectID: "p1", Provider: registry.Modrinth})
	res, err := im.Import(context.Background(), code, registry.ContentShaderPacks, func(p Progress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatalf("Import() error = %v, empty bucket must not be an error", err)
	}
	if res.Installed != 0 || len(res.Failed) != 0 {
		t.Errorf("result = %+v, want empty", res)
	}
	if len(reg.verCalls) != 0 {
		t.Errorf("registry consulted %d times for an empty bucket", len(reg.verCalls))
	}
	if events[len(events)-1].Percent != 100 {
		t.Errorf("final progress = %d, want 100", events[len(events)-1].Percent)
	}
}

func TestImportBadCodeIsFatal(t *testing.T) {
	reg := &fakeRegistry{}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	res, err := im.Import(context.Background(), "not a code", registry.ContentMods, nil)
	if !errors.Is(err, ErrBadCode) {
		t.Fatalf("Import() error = %v, want ErrBadCode", err)
	}
	if res.Installed != 0 || len(inst.installs) != 0 {
		t.Error("bad code caused partial processing")
	}
}

func TestImportFailureIsolation(t *testing.T) {
	reg := &fakeRegistry{
		versions: simpleVersions("p1", "p3"),
		verErr:   map[string]error{"p2": errors.New("registry down")},
	}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	code := modCode(t,
		Ref{ProjectID: "p1", Provider: registry.Modrinth, Name: "One"},
		Ref{ProjectID: "p2", Provider: registry.Modrinth, Name: "Two"},
		Ref{ProjectID: "p3", Provider: registry.Modrinth, Name: "Three"},
	)
	res, err := im.Import(context.Background(), code, registry.ContentMods, nil)
	if err != nil {
		t.Fatalf("Import() error = %v, per-item failure must not abort", err)
	}
	if res.Installed != 2 {
		t.Errorf("Installed = %d, want 2", res.Installed)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "Two" {
		t.Errorf("Failed = %v, want [Two]", res.Failed)
	}
	if len(inst.installs) != 2 {
		t.Errorf("%d installs, want 2", len(inst.installs))
	}
}

func TestImportPinnedVersion(t *testing.T) {
	reg := &fakeRegistry{versions: map[string][]registry.Version{
		"p1": {
			{ID: "v2", Label: "2.0", Files: []registry.File{{Filename: "p1-2.0.jar", Primary: true}}},
			{ID: "v1", Label: "1.0", Files: []registry.File{{Filename: "p1-1.0.jar", Primary: true}}},
		},
	}}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	code := modCode(t, Ref{ProjectID: "p1", Provider: registry.Modrinth, VersionID: "v1"})
	if _, err := im.Import(context.Background(), code, registry.ContentMods, nil); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(inst.installs) != 1 || inst.installs[0].VersionID != "v1" {
		t.Errorf("installs = %+v, want the pinned v1", inst.installs)
	}
	if inst.installs[0].File.Filename != "p1-1.0.jar" {
		t.Errorf("installed file = %q, want the pinned version's file", inst.installs[0].File.Filename)
	}
}

func TestImportPinnedVersionMissingFallsBack(t *testing.T) {
	reg := &fakeRegistry{versions: simpleVersions("p1")}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	code := modCode(t, Ref{ProjectID: "p1", Provider: registry.Modrinth, VersionID: "ghost"})
	res, err := im.Import(context.Background(), code, registry.ContentMods, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Installed != 1 {
		t.Fatalf("result = %+v", res)
	}
	if inst.installs[0].VersionID != "p1-latest" {
		t.Errorf("installed version = %q, want fallback to latest", inst.installs[0].VersionID)
	}
}

func TestImportResolvesAgainstTargetInstance(t *testing.T) {
	reg := &fakeRegistry{versions: simpleVersions("p1")}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	// The bundle was shared from a 1.20.4 quilt instance; versions must
	// still be resolved for the importing instance.
	code, err := Encode(Bundle{
		Name: "other", GameVersion: "1.20.4", Loader: "quilt",
		Mods: []Ref{{ProjectID: "p1", Provider: registry.Modrinth}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := im.Import(context.Background(), code, registry.ContentMods, nil); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(reg.verCalls) != 1 {
		t.Fatalf("%d version lookups, want 1", len(reg.verCalls))
	}
	call := reg.verCalls[0]
	if call.gameVersion != "1.21.1" || call.loader != "fabric" {
		t.Errorf("resolved for %s/%s, want the target instance's 1.21.1/fabric", call.gameVersion, call.loader)
	}
}

func TestImportRejectsUnknownProvider(t *testing.T) {
	reg := &fakeRegistry{}
	inst := &fakeInstance{}
	im := newTestImporter(reg, inst)

	code := modCode(t, Ref{ProjectID: "p1", Provider: "unknown", Name: "Odd"})
	res, err := im.Import(context.Background(), code, registry.ContentMods, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(res.Failed) != 1 {
		t.Errorf("result = %+v, want one isolated failure", res)
	}
}

func TestExportLinkedItemsOnly(t *testing.T) {
	lister := &bucketLister{items: map[registry.ContentType][]store.Item{
		registry.ContentMods: {
			{Provider: registry.Modrinth, ProjectID: "p1", VersionID: "v1", Name: "Sodium", Filename: "sodium.jar"},
			{Filename: "manual-thing.jar"},
		},
		registry.ContentResourcePacks: {
			{Provider: registry.CurseForge, ProjectID: "42", Name: "Faithful", Filename: "faithful.zip"},
		},
	}}
	instance := store.Instance{UID: "inst-1", Name: "default", GameVersion: "1.21.1", Loader: "fabric"}

	code, err := Export(context.Background(), lister, instance)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	b, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b.Name != "default" || b.GameVersion != "1.21.1" || b.Loader != "fabric" {
		t.Errorf("bundle header = %q/%q/%q", b.Name, b.GameVersion, b.Loader)
	}
	if len(b.Mods) != 1 {
		t.Fatalf("%d mod refs, want 1 (manual item excluded)", len(b.Mods))
	}
	if b.Mods[0].ProjectID != "p1" || b.Mods[0].VersionID != "v1" {
		t.Errorf("mod ref = %+v", b.Mods[0])
	}
	if len(b.ResourcePacks) != 1 || b.ResourcePacks[0].ProjectID != "42" {
		t.Errorf("resourcepack refs = %+v", b.ResourcePacks)
	}
}

type bucketLister struct {
	items map[registry.ContentType][]store.Item
}

func (l *bucketLister) Installed(ctx context.Context, instanceID string, ct registry.ContentType) ([]store.Item, error) {
	return l.items[ct], nil
}
