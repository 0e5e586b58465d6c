package model

import (
	"time"
)

type UserRole string

const (
	Student  UserRole = "student"
	Teacher  UserRole = "teacher"
	Employer UserRole = "employer"
	Admin    UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name          string    `gorm:"size:100;not null" json:"name"`
	Email         string    `gorm:"size:100;unique;not null" json:"email"`
	Password      string    `gorm:"size:100;not null" json:"-"`
	Role          UserRole  `gorm:"type:enum('student','teacher','employer','admin');default:'student'" json:"role"`
	XP            int       `gorm:"default:0" json:"xp"` // 模块完成奖励的经验值
	WalletAddress string    `gorm:"size:64" json:"walletAddress"` // NFT证书铸造的目标钱包地址
	Language      string    `gorm:"size:10;default:'en'" json:"language"`
	Avatar        string    `gorm:"size:255" json:"avatar"`
	Disabled      bool      `gorm:"default:false" json:"disabled"`
	LastLogin     time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen      time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
