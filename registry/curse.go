package registry

import (
	"strconv"
	"time"
)

// Raw CurseForge payload shapes. Field names follow the core API; ids are
// numeric there and stringified during normalization so both registries
// share one id representation downstream.

// CurseForge class ids for the content buckets this engine handles.
const (
	curseClassMods          = 6
	curseClassResourcePacks = 12
	curseClassShaderPacks   = 6552
)

// CurseMod is a single mod as returned by the CurseForge search endpoint.
type CurseMod struct {
	ID            int64           `json:"id"`
	ClassID       int64           `json:"classId"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	Summary       string          `json:"summary"`
	DownloadCount int64           `json:"downloadCount"`
	Logo          CurseLogo       `json:"logo"`
	Authors       []CurseAuthor   `json:"authors"`
	Categories    []CurseCategory `json:"categories"`
}

// CurseLogo carries the mod icon URLs.
type CurseLogo struct {
	ThumbnailURL string `json:"thumbnailUrl"`
}

// CurseAuthor is a mod author entry.
type CurseAuthor struct {
	Name string `json:"name"`
}

// CurseCategory is a mod category entry.
type CurseCategory struct {
	Name string `json:"name"`
}

// CurseFile is a downloadable file as returned by the CurseForge files
// endpoint. GameVersions mixes game versions and loader names ("1.21.1",
// "Fabric") in one list, a quirk the compatibility filter has to know.
type CurseFile struct {
	ID           int64    `json:"id"`
	ModID        int64    `json:"modId"`
	DisplayName  string   `json:"displayName"`
	FileName     string   `json:"fileName"`
	FileDate     string   `json:"fileDate"`
	DownloadURL  string   `json:"downloadUrl"`
	GameVersions []string `json:"gameVersions"`
}

// ContentType maps the CurseForge class id onto a local content bucket.
func (m CurseMod) ContentType() ContentType {
	switch m.ClassID {
	case curseClassShaderPacks:
		return ContentShaderPacks
	case curseClassResourcePacks:
		return ContentResourcePacks
	default:
		return ContentMods
	}
}

// CurseClassFor returns the CurseForge class id for a content bucket.
func CurseClassFor(ct ContentType) int64 {
	switch ct {
	case ContentShaderPacks:
		return curseClassShaderPacks
	case ContentResourcePacks:
		return curseClassResourcePacks
	default:
		return curseClassMods
	}
}

// FromCurseMod normalizes a raw CurseForge mod.
func FromCurseMod(m CurseMod) Project {
	author := ""
	if len(m.Authors) > 0 {
		author = m.Authors[0].Name
	}
	categories := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		categories = append(categories, c.Name)
	}
	return Project{
		ID:          strconv.FormatInt(m.ID, 10),
		Provider:    CurseForge,
		Slug:        m.Slug,
		Title:       m.Name,
		Author:      author,
		IconURL:     m.Logo.ThumbnailURL,
		Downloads:   int(m.DownloadCount),
		Categories:  categories,
		Description: m.Summary,
	}
}

// FromCurseFile normalizes a raw CurseForge file into a single-file
// version. CurseForge has no primary flag; the one file is the primary.
func FromCurseFile(f CurseFile) Version {
	published, err := time.Parse(time.RFC3339Nano, f.FileDate)
	if err != nil {
		published = time.Time{}
	}
	return Version{
		ID:          strconv.FormatInt(f.ID, 10),
		ProjectID:   strconv.FormatInt(f.ModID, 10),
		Label:       f.DisplayName,
		PublishedAt: published,
		Files: []File{{
			Filename: f.FileName,
			URL:      f.DownloadURL,
			Primary:  true,
		}},
	}
}
