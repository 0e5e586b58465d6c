package repository

import (
	"learntwin_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) Create(a *model.Achievement) error {
	return r.DB.Create(a).Error
}

func (r *AchievementRepository) FindByUserID(userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&achievements).Error
	return achievements, err
}

// Recent 最近获得的成就，用于前端的"新成就"提示
func (r *AchievementRepository) Recent(userID uint, limit int) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Find(&achievements).Error
	return achievements, err
}

type MintRepository struct {
	DB *gorm.DB
}

func NewMintRepository(db *gorm.DB) *MintRepository {
	return &MintRepository{DB: db}
}

func (r *MintRepository) FindModuleMint(userID, moduleID uint) (*model.MintRecord, error) {
	var rec model.MintRecord
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateModuleMint 建立 pending 铸造记录。(user_id, module_id) 唯一键
// 使同一模块的重复完成事件在这里天然去重
func (r *MintRepository) CreateModuleMint(rec *model.MintRecord) error {
	return r.DB.Create(rec).Error
}

func (r *MintRepository) ConfirmModuleMint(recID uint, txRef string) error {
	now := time.Now()
	return r.DB.Model(&model.MintRecord{}).
		Where("id = ? AND status <> ?", recID, model.MintConfirmed).
		Updates(map[string]interface{}{
			"status":       model.MintConfirmed,
			"tx_ref":       txRef,
			"last_error":   "",
			"confirmed_at": now,
		}).Error
}

func (r *MintRepository) FailModuleMint(recID uint, cause string) error {
	return r.DB.Model(&model.MintRecord{}).
		Where("id = ? AND status <> ?", recID, model.MintConfirmed).
		Updates(map[string]interface{}{
			"status":     model.MintFailed,
			"last_error": cause,
		}).Error
}

func (r *MintRepository) FindCertificate(userID, courseID uint) (*model.CertificateRecord, error) {
	var rec model.CertificateRecord
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *MintRepository) CreateCertificate(rec *model.CertificateRecord) error {
	return r.DB.Create(rec).Error
}

func (r *MintRepository) ConfirmCertificate(recID uint, txRef string) error {
	now := time.Now()
	return r.DB.Model(&model.CertificateRecord{}).
		Where("id = ? AND status <> ?", recID, model.MintConfirmed).
		Updates(map[string]interface{}{
			"status":       model.MintConfirmed,
			"tx_ref":       txRef,
			"last_error":   "",
			"confirmed_at": now,
		}).Error
}

func (r *MintRepository) FailCertificate(recID uint, cause string) error {
	return r.DB.Model(&model.CertificateRecord{}).
		Where("id = ? AND status <> ?", recID, model.MintConfirmed).
		Updates(map[string]interface{}{
			"status":     model.MintFailed,
			"last_error": cause,
		}).Error
}
