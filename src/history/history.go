// Package history keeps a local index of every persisted capture.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "history.db"
	defaultDBDir  = ".config/screenotate"
)

// Record is one saved capture. Location is the file path for local saves
// and the remote path (later the share link) for uploads.
type Record struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Filename    string    `gorm:"not null" json:"filename"`
	Destination string    `gorm:"not null;index" json:"destination"`
	Location    string    `json:"location"`
	ShareURL    string    `json:"share_url,omitempty"`
	FellBack    bool      `gorm:"not null;default:false" json:"fell_back"`
	Error       string    `json:"error,omitempty"`
	WindowTitle string    `json:"window_title,omitempty"`
	AppTitle    string    `json:"app_title,omitempty"`
	PageURL     string    `json:"page_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Repository stores capture records in SQLite.
type Repository struct {
	db *gorm.DB
}

func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, defaultDBDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}
	return filepath.Join(dir, defaultDBName), nil
}

// Open connects to (and migrates) the database at path; "" means DefaultPath.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Add inserts rec, assigning an ID when it has none.
func (r *Repository) Add(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if result := r.db.Create(rec); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert capture record")
	}
	return nil
}

// SetShareURL attaches the share link retrieved after an upload.
func (r *Repository) SetShareURL(id, url string) error {
	result := r.db.Model(&Record{}).Where("id = ?", id).Update("share_url", url)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update share url")
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *Repository) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []Record
	if result := r.db.Order("created_at DESC").Limit(limit).Find(&records); result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query capture records")
	}
	return records, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
