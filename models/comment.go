package models

// Comment is a reply left on a post by a registered user.
type Comment struct {
	ID       uint   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Text     string `json:"text" gorm:"column:text;type:text;not null"`
	AuthorID uint   `json:"authorId" gorm:"column:id_author;not null;index"`
	PostID   uint   `json:"postId" gorm:"column:post_id;not null;index"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
}

func (Comment) TableName() string {
	return "comments"
}
