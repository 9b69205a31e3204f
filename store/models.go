package store

import (
	"path"

	"gorm.io/gorm"

	"launcher-sync/registry"
)

// Instance is a local game instance whose content this engine keeps in
// sync. UID is the stable identifier handed to the engine components.
type Instance struct {
	gorm.Model
	UID         string `gorm:"uniqueIndex;size:36"`
	Name        string `gorm:"uniqueIndex"`
	GameVersion string
	Loader      string
}

// Item is a piece of content installed into an instance. Filename is the
// unique key within its (instance, content type) bucket. Provider and
// ProjectID are empty for manual items, i.e. files placed by hand with no
// recorded registry linkage.
type Item struct {
	gorm.Model
	InstanceID  string               `gorm:"size:36;uniqueIndex:idx_instance_bucket_file"`
	ContentType registry.ContentType `gorm:"uniqueIndex:idx_instance_bucket_file"`
	Filename    string               `gorm:"uniqueIndex:idx_instance_bucket_file"`
	Name        string
	Author      string
	Provider    registry.Provider
	ProjectID   string `gorm:"index"`
	VersionID   string
	Version     string // display label
	Enabled     bool   `gorm:"default:true"`
	Categories  []string `gorm:"serializer:json"`
}

// ItemHistory records the version an item held before an update replaced
// it, so `history` can show what changed when.
type ItemHistory struct {
	gorm.Model
	InstanceID  string `gorm:"size:36;index"`
	ContentType registry.ContentType
	ProjectID   string
	Filename    string
	VersionID   string
	Version     string
}

// Linked reports whether the item carries a registry linkage. Unlinked
// items are the manual ones the metadata resolver works on.
func (i Item) Linked() bool {
	return i.Provider.Known() && i.ProjectID != ""
}

// DisplayName returns the best human-readable name for the item.
func (i Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Filename
}

// Stem returns the filename without its extension, the starting point for
// search-based metadata resolution.
func (i Item) Stem() string {
	ext := path.Ext(i.Filename)
	return i.Filename[:len(i.Filename)-len(ext)]
}
