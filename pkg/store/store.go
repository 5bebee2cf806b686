// Package store records where serialized archival documents live and
// the quality outcome of their ingestion. It is the relational
// collaborator downstream of the parsing core: only the storage
// location, publication date, and metrics summary are persisted, never
// the document body itself.
package store

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/acervo-legal/acervo/pkg/quality"
)

// LawDocument is the stored record for one ingested document.
type LawDocument struct {
	gorm.Model

	// UUID is the stable ingestion identity.
	UUID string `gorm:"uniqueIndex;not null"`

	// Slug identifies the document within its jurisdiction.
	Slug string `gorm:"index;not null"`

	// WorkURI is the language- and format-independent identity.
	WorkURI string `gorm:"uniqueIndex;not null"`

	// StorageLocation is where the serialized document was written
	// (object key, file path).
	StorageLocation string `gorm:"not null"`

	// PublicationDate is the official publication date.
	PublicationDate time.Time `gorm:"not null"`

	// Quality summary of the ingestion that produced this record.
	OverallScore float64
	Grade        string
	SchemaValid  bool
	ArticleCount int
}

// RegisterModels migrates the store schema.
func RegisterModels(db *gorm.DB) error {
	return db.AutoMigrate(&LawDocument{})
}

// validate checks required fields before any write.
func (d *LawDocument) validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.UUID, validation.Required),
		validation.Field(&d.Slug, validation.Required),
		validation.Field(&d.WorkURI, validation.Required),
		validation.Field(&d.StorageLocation, validation.Required),
		validation.Field(&d.PublicationDate, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// Create inserts the record.
func (d *LawDocument) Create(db *gorm.DB) error {
	if err := d.validate(); err != nil {
		return err
	}
	return db.Create(d).Error
}

// GetByUUID retrieves a record by ingestion UUID.
func (d *LawDocument) GetByUUID(db *gorm.DB, uuid string) error {
	if err := validation.Validate(uuid, validation.Required); err != nil {
		return err
	}
	return db.
		Where("uuid = ?", uuid).
		First(d).
		Error
}

// GetBySlug retrieves the most recently created record for a slug.
func (d *LawDocument) GetBySlug(db *gorm.DB, slug string) error {
	if err := validation.Validate(slug, validation.Required); err != nil {
		return err
	}
	return db.
		Where("slug = ?", slug).
		Order("created_at DESC").
		First(d).
		Error
}

// Upsert creates or updates the record keyed by WorkURI.
func (d *LawDocument) Upsert(db *gorm.DB) error {
	if err := d.validate(); err != nil {
		return err
	}

	var existing LawDocument
	err := db.Where("work_uri = ?", d.WorkURI).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(d).Error
	}
	if err != nil {
		return err
	}

	d.ID = existing.ID
	d.CreatedAt = existing.CreatedAt
	return db.Save(d).Error
}

// ApplyMetrics copies the quality summary onto the record.
func (d *LawDocument) ApplyMetrics(m *quality.Metrics) {
	if m == nil {
		return
	}
	d.OverallScore = m.OverallScore
	d.Grade = m.Grade
	d.SchemaValid = m.SchemaValid
	d.ArticleCount = m.Counts.Articles
}

// ParsePublicationDate parses a publication date in whatever format the
// upstream metadata arrives in. DOF portals publish dd/mm/yyyy,
// ISO dates, and prose variants; lenient parsing keeps the boundary
// forgiving.
func ParsePublicationDate(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable publication date %q: %w", s, err)
	}
	return t, nil
}
