package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/niranjan-aware/resonance-system/internal/domain"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

type customerModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Phone     string    `gorm:"column:phone;uniqueIndex"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (customerModel) TableName() string { return "customers" }

func toDomainCustomer(m customerModel) *domain.Customer {
	return &domain.Customer{
		ID:        m.ID,
		Phone:     m.Phone,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var m customerModel
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainCustomer(m), nil
}

// FindOrCreateByPhone returns the customer for the phone, creating a guest
// record on first contact. A concurrent insert losing the unique-phone race
// falls back to re-reading the winner's row, so repeated bookings always
// resolve to the same identity. A real name supplied later replaces the
// guest placeholder.
func (r *CustomerRepository) FindOrCreateByPhone(ctx context.Context, phone, name string) (*domain.Customer, error) {
	var m customerModel
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = customerModel{Phone: phone, Name: name}
		if m.Name == "" {
			m.Name = domain.GuestName
		}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return r.GetByPhone(ctx, phone)
			}
			return nil, err
		}
		return toDomainCustomer(m), nil
	}
	if err != nil {
		return nil, err
	}

	if name != "" && (m.Name == "" || m.Name == domain.GuestName) {
		m.Name = name
		if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
			return nil, err
		}
	}
	return toDomainCustomer(m), nil
}
