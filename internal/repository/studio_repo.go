package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/niranjan-aware/resonance-system/internal/domain"
)

type StudioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) *StudioRepository {
	return &StudioRepository{db: db}
}

type studioModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Size        string    `gorm:"column:size"`
	Capacity    int       `gorm:"column:capacity"`
	Description string    `gorm:"column:description;type:text"`
	HourlyRate  int64     `gorm:"column:hourly_rate"`
	OpenTime    string    `gorm:"column:open_time"`
	CloseTime   string    `gorm:"column:close_time"`
	IsActive    bool      `gorm:"column:is_active;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (studioModel) TableName() string { return "studios" }

func toDomainStudio(m studioModel) *domain.Studio {
	return &domain.Studio{
		ID:          m.ID,
		Name:        m.Name,
		Size:        domain.StudioSize(m.Size),
		Capacity:    m.Capacity,
		Description: m.Description,
		HourlyRate:  m.HourlyRate,
		OpenTime:    m.OpenTime,
		CloseTime:   m.CloseTime,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *StudioRepository) GetByID(ctx context.Context, id int64) (*domain.Studio, error) {
	var m studioModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainStudio(m), nil
}

func (r *StudioRepository) ListActive(ctx context.Context) ([]domain.Studio, error) {
	var rows []studioModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Studio, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainStudio(m))
	}
	return out, nil
}

func (r *StudioRepository) Create(ctx context.Context, s *domain.Studio) error {
	m := studioModel{
		Name:        s.Name,
		Size:        string(s.Size),
		Capacity:    s.Capacity,
		Description: s.Description,
		HourlyRate:  s.HourlyRate,
		OpenTime:    s.OpenTime,
		CloseTime:   s.CloseTime,
		IsActive:    s.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	s.ID = m.ID
	return nil
}
