package model

import "time"

// Achievement 学习成就，模块/课程完成时发放
type Achievement struct {
	BaseModel
	UserID   uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	ModuleID uint   `gorm:"index;type:bigint unsigned" json:"moduleId,omitempty"`
	CourseID uint   `gorm:"index;type:bigint unsigned" json:"courseId,omitempty"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Icon     string `gorm:"size:255" json:"icon"`
	EarnedXP int    `gorm:"default:0" json:"earnedXp"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type MintStatus string

const (
	MintPending   MintStatus = "pending"
	MintConfirmed MintStatus = "confirmed"
	MintFailed    MintStatus = "failed" // 可重试，不影响完成状态
)

// MintRecord 模块完成触发的NFT铸造请求记录。
// (user_id, module_id) 唯一键保证同一模块的铸造副作用恰好触发一次；
// 只有外部协作方确认后才置为 confirmed，失败保留记录供重试
type MintRecord struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_module_mint;type:bigint unsigned" json:"userId"`
	ModuleID    uint       `gorm:"uniqueIndex:idx_user_module_mint;type:bigint unsigned" json:"moduleId"`
	ModuleTitle string     `gorm:"size:255" json:"moduleTitle"`
	Score       int        `gorm:"default:0" json:"score"` // 触发完成的测验得分
	Status      MintStatus `gorm:"type:enum('pending','confirmed','failed');default:'pending'" json:"status"`
	TxRef       string     `gorm:"size:128" json:"txRef,omitempty"` // 协作方返回的交易/请求引用
	LastError   string     `gorm:"size:512" json:"-"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

func (MintRecord) TableName() string {
	return "mint_records"
}

// CertificateRecord 课程完成证书请求，护栏语义与 MintRecord 一致
type CertificateRecord struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_course_cert;type:bigint unsigned" json:"userId"`
	CourseID    uint       `gorm:"uniqueIndex:idx_user_course_cert;type:bigint unsigned" json:"courseId"`
	CourseTitle string     `gorm:"size:255" json:"courseTitle"`
	Status      MintStatus `gorm:"type:enum('pending','confirmed','failed');default:'pending'" json:"status"`
	TxRef       string     `gorm:"size:128" json:"txRef,omitempty"`
	LastError   string     `gorm:"size:512" json:"-"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

func (CertificateRecord) TableName() string {
	return "certificate_records"
}
