package repository

import (
	"edu_diagnosis_backend/internal/model"

	"gorm.io/gorm"
)

type AlertRepository struct {
	DB *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

func (r *AlertRepository) Create(a *model.Alert) error {
	return r.DB.Create(a).Error
}

func (r *AlertRepository) FindByID(id uint) (*model.Alert, error) {
	var a model.Alert
	err := r.DB.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlertRepository) ListByRecipient(recipientID uint, unreadOnly bool, page, limit int) ([]model.Alert, int64, error) {
	var alerts []model.Alert
	var total int64

	query := r.DB.Model(&model.Alert{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&alerts).Error
	return alerts, total, err
}

func (r *AlertRepository) MarkRead(recipientID, alertID uint) error {
	res := r.DB.Model(&model.Alert{}).
		Where("id = ? AND recipient_id = ?", alertID, recipientID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AlertRepository) MarkAllRead(recipientID uint) error {
	return r.DB.Model(&model.Alert{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}
