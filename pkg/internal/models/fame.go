package models

import "gorm.io/datatypes"

const (
	FameLevelSuperPro = "Super Pro"

	// The tier a fame record is created at on the first offense.
	FameLevelFloorName  = "Confuser"
	FameLevelFloorValue = -10
)

// ExpertiseArea doubles as a community: users opt in via user_communities.
type ExpertiseArea struct {
	BaseModel

	Alias       string                      `json:"alias" gorm:"uniqueIndex" validate:"lowercase"`
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Keywords    datatypes.JSONSlice[string] `json:"keywords"`

	Members []User `json:"members" gorm:"many2many:user_communities"`
}

// FameLevel is a reputation tier, totally ordered by NumericValue.
// The same table backs the classifier's truth ratings.
type FameLevel struct {
	BaseModel

	Name         string `json:"name" gorm:"uniqueIndex"`
	NumericValue int    `json:"numeric_value" gorm:"uniqueIndex"`
}

// Fame maps a (user, expertise area) pair to its current level, unique per pair.
type Fame struct {
	BaseModel

	UserID          uint          `json:"user_id" gorm:"uniqueIndex:idx_fame_user_area"`
	User            User          `json:"user"`
	ExpertiseAreaID uint          `json:"expertise_area_id" gorm:"uniqueIndex:idx_fame_user_area"`
	ExpertiseArea   ExpertiseArea `json:"expertise_area"`
	FameLevelID     uint          `json:"fame_level_id"`
	FameLevel       FameLevel     `json:"fame_level"`
}
