package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TierModel 回报档位
type TierModel struct {
	Id         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt  time.Time `json:"created_at"`
	CampaignId string    `json:"campaign_id" gorm:"type:varchar(36);not null;index"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Emoji       string `json:"emoji" gorm:"type:varchar(32)"`
	Perk        string `json:"perk" gorm:"type:text"`

	// 档位最低金额
	Amount decimal.Decimal `json:"amount" gorm:"type:decimal(30,8);not null"`
}

// TableName 自定义表名
func (TierModel) TableName() string {
	return "tier"
}

// BeforeCreate 生成主键
func (t *TierModel) BeforeCreate(tx *gorm.DB) error {
	if t.Id == "" {
		t.Id = uuid.NewString()
	}
	return nil
}
