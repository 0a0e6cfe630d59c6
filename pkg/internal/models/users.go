package models

type User struct {
	BaseModel

	Email     string `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nick      string `json:"nick"`

	// IsActive is flipped to false when the fame engine bans the user.
	IsActive bool `json:"is_active" gorm:"default:true"`

	Follows     []User          `json:"follows" gorm:"many2many:user_follows;joinForeignKey:UserID;joinReferences:TargetID"`
	Communities []ExpertiseArea `json:"communities" gorm:"many2many:user_communities"`
	Posts       []Post          `json:"posts" gorm:"foreignKey:AuthorID"`
}
