package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContributionModel 贡献记录，只追加不修改
type ContributionModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// (campaign_id, transaction_hash) 唯一，同一笔链上支付只能入账一次；
	// transaction_hash 为 NULL 的直接贡献不受约束
	CampaignId      string  `json:"campaign_id" gorm:"type:varchar(36);not null;index;uniqueIndex:uk_contribution_campaign_tx,priority:1"`
	TransactionHash *string `json:"transaction_hash" gorm:"type:varchar(128);uniqueIndex:uk_contribution_campaign_tx,priority:2"`

	TierId             *string         `json:"tier_id" gorm:"type:varchar(36);index"`
	Amount             decimal.Decimal `json:"amount" gorm:"type:decimal(30,8);not null"`
	ContributorAddress string          `json:"contributor_address" gorm:"type:varchar(128);not null"`
	Message            *string         `json:"message" gorm:"type:text"`

	// 关联
	Tier *TierModel `json:"tier,omitempty" gorm:"foreignKey:TierId"`
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}

// BeforeCreate 生成主键
func (c *ContributionModel) BeforeCreate(tx *gorm.DB) error {
	if c.Id == "" {
		c.Id = uuid.NewString()
	}
	return nil
}

// HasTier 是否关联了档位
func (c *ContributionModel) HasTier() bool {
	return c.TierId != nil && *c.TierId != ""
}
