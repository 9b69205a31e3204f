package registry

import "time"

// Raw Modrinth payload shapes. Field names follow the v2 API.

// ModrinthHit is a single project as returned by the Modrinth search
// endpoint.
type ModrinthHit struct {
	ProjectID   string   `json:"project_id"`
	ProjectType string   `json:"project_type"` // "mod", "shader", "resourcepack"
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	IconURL     string   `json:"icon_url"`
	Downloads   int      `json:"downloads"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// ModrinthVersion is a project version as returned by the Modrinth
// versions endpoint.
type ModrinthVersion struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"project_id"`
	VersionNumber string         `json:"version_number"`
	DatePublished string         `json:"date_published"`
	GameVersions  []string       `json:"game_versions"`
	Loaders       []string       `json:"loaders"`
	Files         []ModrinthFile `json:"files"`
}

// ModrinthFile is a file within a Modrinth version.
type ModrinthFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Primary  bool   `json:"primary"`
}

// ContentType maps the Modrinth project type onto a local content bucket.
func (h ModrinthHit) ContentType() ContentType {
	switch h.ProjectType {
	case "shader":
		return ContentShaderPacks
	case "resourcepack":
		return ContentResourcePacks
	default:
		return ContentMods
	}
}

// FromModrinthHit normalizes a raw Modrinth search hit.
func FromModrinthHit(h ModrinthHit) Project {
	return Project{
		ID:          h.ProjectID,
		Provider:    Modrinth,
		Slug:        h.Slug,
		Title:       h.Title,
		Author:      h.Author,
		IconURL:     h.IconURL,
		Downloads:   h.Downloads,
		Categories:  h.Categories,
		Description: h.Description,
	}
}

// FromModrinthVersion normalizes a raw Modrinth version. An unparseable
// publication timestamp becomes the zero time rather than an error; the
// ordering of version lists is owned by the caller anyway.
func FromModrinthVersion(v ModrinthVersion) Version {
	published, err := time.Parse(time.RFC3339Nano, v.DatePublished)
	if err != nil {
		published = time.Time{}
	}
	files := make([]File, 0, len(v.Files))
	for _, f := range v.Files {
		files = append(files, File{Filename: f.Filename, URL: f.URL, Primary: f.Primary})
	}
	return Version{
		ID:          v.ID,
		ProjectID:   v.ProjectID,
		Label:       v.VersionNumber,
		PublishedAt: published,
		Files:       files,
	}
}
