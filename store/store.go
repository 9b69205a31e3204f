// Package store is the local side of the sync engine: a SQLite database of
// instances and their installed content records. It is the source of truth
// for what is installed; engine components read it through their narrow
// interfaces and write back only through InstallFile, DeleteFile and
// LinkMetadata, then reload.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"launcher-sync/registry"
)

// InstallRequest carries everything needed to record a file install into an
// instance bucket. The file itself is placed by the hosting application;
// this layer owns the record.
type InstallRequest struct {
	InstanceID  string
	Provider    registry.Provider
	ProjectID   string
	VersionID   string
	File        registry.File
	ContentType registry.ContentType
	Name        string
	Author      string
	Version     string // display label
	Categories  []string
}

// MetadataLink is the registry linkage the resolver persists onto a manual
// item. The filename and file contents stay untouched.
type MetadataLink struct {
	Provider  registry.Provider
	ProjectID string
	VersionID string
	Version   string
}

// Store wraps the content database.
type Store struct {
	// KeepHistory controls whether version replacements are recorded in
	// the item history table.
	KeepHistory bool

	db  *gorm.DB
	log *zap.SugaredLogger
}

// Open opens (or creates) the content database at path and migrates the
// schema.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(gormlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open content database: %w", err)
	}

	if err := db.AutoMigrate(&Instance{}, &Item{}, &ItemHistory{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &Store{KeepHistory: true, db: db, log: logger}, nil
}

// EnsureInstance returns the instance with the given name, creating it if
// necessary. Game version and loader follow the configuration.
func (s *Store) EnsureInstance(ctx context.Context, name, gameVersion, loader string) (Instance, error) {
	db := s.db.WithContext(ctx)

	var inst Instance
	err := db.Where("name = ?", name).First(&inst).Error
	if err == nil {
		if inst.GameVersion != gameVersion || inst.Loader != loader {
			inst.GameVersion = gameVersion
			inst.Loader = loader
			if err := db.Save(&inst).Error; err != nil {
				return Instance{}, fmt.Errorf("failed to update instance %q: %w", name, err)
			}
		}
		return inst, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Instance{}, fmt.Errorf("failed to look up instance %q: %w", name, err)
	}

	inst = Instance{
		UID:         uuid.NewString(),
		Name:        name,
		GameVersion: gameVersion,
		Loader:      loader,
	}
	if err := db.Create(&inst).Error; err != nil {
		return Instance{}, fmt.Errorf("failed to create instance %q: %w", name, err)
	}
	s.log.Infow("Created instance", zap.String("name", name), zap.String("uid", inst.UID))
	return inst, nil
}

// Installed returns all recorded items of one content bucket, ordered by
// filename.
func (s *Store) Installed(ctx context.Context, instanceID string, ct registry.ContentType) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Where("instance_id = ? AND content_type = ?", instanceID, ct).
		Order("filename").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s for instance %s: %w", ct, instanceID, err)
	}
	return items, nil
}

// InstalledAll returns every recorded item of the instance across all
// content buckets.
func (s *Store) InstalledAll(ctx context.Context, instanceID string) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Order("content_type, filename").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list content for instance %s: %w", instanceID, err)
	}
	return items, nil
}

// InstallFile records a file install and returns the installed filename.
// Installing over an existing filename updates that record in place;
// replacing a linked project's version leaves a history entry behind.
func (s *Store) InstallFile(ctx context.Context, req InstallRequest) (string, error) {
	if req.File.Filename == "" {
		return "", errors.New("install request has no filename")
	}
	if !req.ContentType.Valid() {
		return "", fmt.Errorf("install request has invalid content type %q", req.ContentType)
	}
	db := s.db.WithContext(ctx)

	if s.KeepHistory && req.ProjectID != "" {
		s.recordHistory(db, req)
	}

	var existing Item
	err := db.Where("instance_id = ? AND content_type = ? AND filename = ?",
		req.InstanceID, req.ContentType, req.File.Filename).First(&existing).Error
	switch {
	case err == nil:
		existing.Name = req.Name
		existing.Author = req.Author
		existing.Provider = req.Provider
		existing.ProjectID = req.ProjectID
		existing.VersionID = req.VersionID
		existing.Version = req.Version
		existing.Categories = req.Categories
		if err := db.Save(&existing).Error; err != nil {
			return "", fmt.Errorf("failed to update record for %s: %w", req.File.Filename, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := Item{
			InstanceID:  req.InstanceID,
			ContentType: req.ContentType,
			Filename:    req.File.Filename,
			Name:        req.Name,
			Author:      req.Author,
			Provider:    req.Provider,
			ProjectID:   req.ProjectID,
			VersionID:   req.VersionID,
			Version:     req.Version,
			Enabled:     true,
			Categories:  req.Categories,
		}
		if err := db.Create(&item).Error; err != nil {
			return "", fmt.Errorf("failed to save record for %s: %w", req.File.Filename, err)
		}
	default:
		return "", fmt.Errorf("failed to look up record for %s: %w", req.File.Filename, err)
	}

	return req.File.Filename, nil
}

// recordHistory captures the version a project held before this install
// replaces it. Best effort: a failed history write never blocks an install.
func (s *Store) recordHistory(db *gorm.DB, req InstallRequest) {
	var prev Item
	err := db.Where("instance_id = ? AND content_type = ? AND project_id = ?",
		req.InstanceID, req.ContentType, req.ProjectID).First(&prev).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warnw("Failed to look up previous version for history", zap.Error(err))
		}
		return
	}
	if prev.VersionID == req.VersionID {
		return
	}
	hist := ItemHistory{
		InstanceID:  req.InstanceID,
		ContentType: req.ContentType,
		ProjectID:   req.ProjectID,
		Filename:    prev.Filename,
		VersionID:   prev.VersionID,
		Version:     prev.Version,
	}
	if err := db.Create(&hist).Error; err != nil {
		s.log.Warnw("Failed to record item history", zap.Error(err))
	}
}

// DeleteFile removes the record of an installed file. Deleting a filename
// that is not recorded is a no-op, matching how file removal tolerates
// already-missing files.
func (s *Store) DeleteFile(ctx context.Context, instanceID string, ct registry.ContentType, filename string) error {
	err := s.db.WithContext(ctx).Unscoped().
		Where("instance_id = ? AND content_type = ? AND filename = ?", instanceID, ct, filename).
		Delete(&Item{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete record for %s: %w", filename, err)
	}
	return nil
}

// LinkMetadata persists a registry linkage onto an installed item without
// touching its filename.
func (s *Store) LinkMetadata(ctx context.Context, instanceID string, ct registry.ContentType, filename string, link MetadataLink) error {
	db := s.db.WithContext(ctx)

	var item Item
	err := db.Where("instance_id = ? AND content_type = ? AND filename = ?",
		instanceID, ct, filename).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no installed item %s in %s", filename, ct)
		}
		return fmt.Errorf("failed to look up %s: %w", filename, err)
	}

	item.Provider = link.Provider
	item.ProjectID = link.ProjectID
	item.VersionID = link.VersionID
	if link.Version != "" {
		item.Version = link.Version
	}
	if err := db.Save(&item).Error; err != nil {
		return fmt.Errorf("failed to link %s: %w", filename, err)
	}
	return nil
}

// History returns the most recent version replacements for an instance,
// newest first.
func (s *Store) History(ctx context.Context, instanceID string, limit int) ([]ItemHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []ItemHistory
	err := s.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}
