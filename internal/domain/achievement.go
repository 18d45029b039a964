package domain

import (
	"time"

	"github.com/google/uuid"
)

type AchievementCategory string

const (
	AchievementMilestone   AchievementCategory = "milestone"
	AchievementExcellence  AchievementCategory = "excellence"
	AchievementDedication  AchievementCategory = "dedication"
	AchievementConsistency AchievementCategory = "consistency"
	AchievementAssessment  AchievementCategory = "assessment"
	AchievementDomain      AchievementCategory = "domain"
)

type AchievementRarity string

const (
	RarityCommon    AchievementRarity = "common"
	RarityUncommon  AchievementRarity = "uncommon"
	RarityRare      AchievementRarity = "rare"
	RarityEpic      AchievementRarity = "epic"
	RarityLegendary AchievementRarity = "legendary"
)

// UserAchievement records an earned achievement. Earning is one-way and unique
// per (user, type).
type UserAchievement struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_user_achievement,unique,priority:1" json:"user_id"`
	AchievementType string    `gorm:"column:achievement_type;not null;index:idx_user_achievement,unique,priority:2" json:"achievement_type"`

	EarnedAt time.Time `gorm:"column:earned_at;not null" json:"earned_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserAchievement) TableName() string { return "user_achievements" }
