// Package registry defines the normalized model for remote content
// catalogs. Two registries are supported; their raw payload shapes differ,
// so each registry call is normalized into these types immediately and no
// downstream code ever sees a provider-native payload.
package registry

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies a content registry.
type Provider string

const (
	Modrinth   Provider = "modrinth"
	CurseForge Provider = "curseforge"
)

// Providers returns all configured registries, in resolution order.
func Providers() []Provider {
	return []Provider{Modrinth, CurseForge}
}

// ParseProvider converts user input into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case Modrinth:
		return Modrinth, nil
	case CurseForge:
		return CurseForge, nil
	default:
		return "", fmt.Errorf("unknown provider %q (expected modrinth or curseforge)", s)
	}
}

// Known reports whether p names a configured registry. An installed item
// with an unknown (usually empty) provider is a manual item.
func (p Provider) Known() bool {
	return p == Modrinth || p == CurseForge
}

// Display returns the human-readable registry name.
func (p Provider) Display() string {
	switch p {
	case Modrinth:
		return "Modrinth"
	case CurseForge:
		return "CurseForge"
	default:
		return "Manual"
	}
}

// ContentType is a bucket of installable content inside an instance. The
// value doubles as the instance subdirectory name.
type ContentType string

const (
	ContentMods          ContentType = "mods"
	ContentResourcePacks ContentType = "resourcepacks"
	ContentShaderPacks   ContentType = "shaderpacks"
)

// ContentTypes returns all supported buckets.
func ContentTypes() []ContentType {
	return []ContentType{ContentMods, ContentResourcePacks, ContentShaderPacks}
}

// ParseContentType converts user input into a ContentType. It accepts both
// the bucket name and the singular registry project type.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mod", "mods":
		return ContentMods, nil
	case "resourcepack", "resourcepacks":
		return ContentResourcePacks, nil
	case "shader", "shaderpack", "shaderpacks":
		return ContentShaderPacks, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// Dir returns the instance subdirectory holding this bucket's files.
func (c ContentType) Dir() string {
	return string(c)
}

// Valid reports whether c is a supported bucket.
func (c ContentType) Valid() bool {
	switch c {
	case ContentMods, ContentResourcePacks, ContentShaderPacks:
		return true
	default:
		return false
	}
}

// Sort is the ordering index for a registry search.
type Sort string

const (
	// SortRelevance orders by how well a hit matches the query text.
	SortRelevance Sort = "relevance"
	// SortPopularity orders by download count, used for empty queries.
	SortPopularity Sort = "popularity"
)

// Project is a normalized remote catalog entry. It is immutable once
// fetched and only cached for the lifetime of a result page.
type Project struct {
	ID          string
	Provider    Provider
	Slug        string
	Title       string
	Author      string
	IconURL     string
	Downloads   int
	Categories  []string
	Description string
}

// Version is a specific downloadable release of a Project.
type Version struct {
	ID          string
	ProjectID   string
	Label       string
	PublishedAt time.Time
	Files       []File
}

// File is one downloadable artifact of a Version.
type File struct {
	Filename string
	URL      string
	Primary  bool
}

// PrimaryFile returns the file to install for a version: the first file
// flagged primary, else the first file. Returns nil when the version has no
// files at all (such a version is not installable).
func PrimaryFile(v Version) *File {
	for i := range v.Files {
		if v.Files[i].Primary {
			return &v.Files[i]
		}
	}
	if len(v.Files) > 0 {
		return &v.Files[0]
	}
	return nil
}
