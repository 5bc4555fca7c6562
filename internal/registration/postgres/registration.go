package postgres

import (
	"time"

	"github.com/KarlovS28/dela/internal/registration"
	"gorm.io/gorm"
)

// RegistrationRepository implements registration.Repository using GORM.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) registration.Repository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(req *registration.Request) error {
	return r.db.Create(req).Error
}

func (r *RegistrationRepository) GetByID(id int64) (*registration.Request, error) {
	var req registration.Request
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, registration.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *RegistrationRepository) List(status registration.Status, limit, offset int) ([]*registration.Request, error) {
	var requests []*registration.Request

	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Limit(limit).Offset(offset).Find(&requests).Error
	return requests, err
}

func (r *RegistrationRepository) Update(req *registration.Request) error {
	req.UpdatedAt = time.Now()
	return r.db.Save(req).Error
}

func (r *RegistrationRepository) HasPending(email string) (bool, error) {
	var count int64
	err := r.db.Model(&registration.Request{}).
		Where("email = ? AND status = ?", email, registration.StatusPending).
		Count(&count).Error
	return count > 0, err
}
