package models

type Post struct {
	BaseModel

	Content  string `json:"content" validate:"required,max=4096"`
	Language string `json:"language"`

	// Published may flip to false after submission (ban cascade); the post is
	// otherwise immutable. CreatedAt is the submission timestamp.
	Published bool `json:"published"`

	AuthorID uint `json:"author_id"`
	Author   User `json:"author"`

	CiteID  *uint  `json:"cite_id"`
	Cite    *Post  `json:"cite" gorm:"foreignKey:CiteID"`
	ReplyID *uint  `json:"reply_id"`
	ReplyTo *Post  `json:"reply_to" gorm:"foreignKey:ReplyID"`
	Replies []Post `json:"replies" gorm:"foreignKey:ReplyID"`

	Classifications []PostClassification `json:"classifications"`
}

// PostClassification is one classifier verdict for a post: the detected
// expertise area plus the truth rating it earned there. Derived once at
// submission and never updated.
type PostClassification struct {
	BaseModel

	PostID          uint          `json:"post_id" gorm:"uniqueIndex:idx_post_area"`
	ExpertiseAreaID uint          `json:"expertise_area_id" gorm:"uniqueIndex:idx_post_area"`
	ExpertiseArea   ExpertiseArea `json:"expertise_area"`

	TruthRatingID *uint      `json:"truth_rating_id"`
	TruthRating   *FameLevel `json:"truth_rating" gorm:"foreignKey:TruthRatingID"`

	Bullshit bool `json:"bullshit"`
}

// PostRating is unique per (user, post, rating type); resubmitting updates
// the score in place.
type PostRating struct {
	BaseModel

	UserID      uint   `json:"user_id" gorm:"uniqueIndex:idx_rating_user_post_type"`
	User        User   `json:"user"`
	PostID      uint   `json:"post_id" gorm:"uniqueIndex:idx_rating_user_post_type"`
	Post        Post   `json:"post"`
	RatingType  string `json:"rating_type" gorm:"uniqueIndex:idx_rating_user_post_type"`
	RatingScore int    `json:"rating_score"`
}
