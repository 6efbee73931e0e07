package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// 金额以数字而不是字符串输出，和前端约定保持一致
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCampaignEmoji 未指定时的众筹图标
const DefaultCampaignEmoji = "🚀"

// CampaignModel 众筹活动
type CampaignModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Emoji       string `json:"emoji" gorm:"type:varchar(32)"`

	// 众筹信息
	Goal    decimal.Decimal `json:"goal" gorm:"type:decimal(30,8);not null"`
	EndDate *time.Time      `json:"end_date"`

	// 创建者收款地址，对账时与支付的收款地址匹配
	CreatorAddress string `json:"creator_address" gorm:"type:varchar(128);not null;index"`

	// 关联
	Tiers         []TierModel         `json:"tiers,omitempty" gorm:"foreignKey:CampaignId;constraint:OnDelete:CASCADE"`
	Contributions []ContributionModel `json:"contributions,omitempty" gorm:"foreignKey:CampaignId;constraint:OnDelete:CASCADE"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}

// BeforeCreate 生成主键
func (c *CampaignModel) BeforeCreate(tx *gorm.DB) error {
	if c.Id == "" {
		c.Id = uuid.NewString()
	}
	return nil
}

// FindTier 按ID查找本活动下的档位
func (c *CampaignModel) FindTier(tierId string) *TierModel {
	for i := range c.Tiers {
		if c.Tiers[i].Id == tierId {
			return &c.Tiers[i]
		}
	}
	return nil
}
