// Package store persists cleaned records into an optional relational
// archive, so downstream analysis can query sites without re-parsing CSVs.
package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edwenger/prism-data-viewer/pkg/common/logger"
	"github.com/edwenger/prism-data-viewer/pkg/common/models"
)

type RecordModel struct {
	ID              uint              `gorm:"primaryKey;autoIncrement;column:id"`
	RunID           string            `gorm:"column:run_id;index"`
	Site            string            `gorm:"column:site;index"`
	Date            time.Time         `gorm:"column:date"`
	ParticipantID   string            `gorm:"column:participant_id;index"`
	HouseholdID     string            `gorm:"column:household_id;index"`
	ParasiteDensity *float64          `gorm:"column:parasite_density"`
	Clinical        datatypes.JSONMap `gorm:"column:clinical"`
	CreatedAt       time.Time         `gorm:"column:created_at"`
}

func (RecordModel) TableName() string {
	return "cleaned_records"
}

type Archive struct {
	db *gorm.DB
}

// Open connects to the archive. A DSN starting with "postgres://" or
// containing "host=" selects postgres; anything else is treated as a
// sqlite file path.
func Open(dsn string) (*Archive, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, err
	}

	logger.WithField("dialect", dialector.Name()).Info("Connected to cleaned-record archive")
	return &Archive{db: db}, nil
}

// SaveBatch archives one site's cleaned records under the given run id.
func (a *Archive) SaveBatch(ctx context.Context, runID string, site models.Site, records []models.CleanedRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]RecordModel, 0, len(records))
	now := time.Now().UTC()
	for _, r := range records {
		rows = append(rows, RecordModel{
			RunID:           runID,
			Site:            site.Name,
			Date:            r.Date,
			ParticipantID:   r.ParticipantID,
			HouseholdID:     r.HouseholdID,
			ParasiteDensity: r.ParasiteDensity,
			Clinical:        clinicalMap(r),
			CreatedAt:       now,
		})
	}
	return a.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func (a *Archive) CountBySite(ctx context.Context, site models.Site) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&RecordModel{}).Where("site = ?", site.Name).Count(&count).Error
	return count, err
}

func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// clinicalMap carries the pass-through clinical fields that the archive
// does not promote to columns.
func clinicalMap(r models.CleanedRecord) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	if r.Age != nil {
		m["age"] = *r.Age
	}
	if r.AgeAtEnrollment != nil {
		m["age_at_enrollment"] = *r.AgeAtEnrollment
	}
	if r.Gender != "" {
		m["gender"] = r.Gender
	}
	if r.Temperature != nil {
		m["temperature"] = *r.Temperature
	}
	if r.Fever != "" {
		m["fever"] = r.Fever
	}
	if r.Gametocytes != "" {
		m["gametocytes"] = r.Gametocytes
	}
	if r.LAMP != "" {
		m["lamp"] = r.LAMP
	}
	if r.VisitType != "" {
		m["visittype"] = r.VisitType
	}
	if r.Hemoglobin != nil {
		m["hemoglobin"] = *r.Hemoglobin
	}
	if r.MalariaDiagnosis != "" {
		m["malaria_diagnosis"] = r.MalariaDiagnosis
	}
	if r.Antimalarial != "" {
		m["antimalarial"] = r.Antimalarial
	}
	return m
}
