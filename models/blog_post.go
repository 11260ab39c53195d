package models

import "time"

// PostDateLayout is the long-form date stamped on a post when it is created,
// e.g. "April 05, 2024".
const PostDateLayout = "January 02, 2006"

// BlogPost is a post written by an administrator. Author holds the author's
// display name so listings can show it without a join; it is recomputed from
// the acting administrator on every create and edit.
type BlogPost struct {
	ID       uint   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title    string `json:"title" gorm:"column:title;type:varchar(250);not null;uniqueIndex"`
	Subtitle string `json:"subtitle" gorm:"column:subtitle;type:varchar(250);not null"`
	Body     string `json:"body" gorm:"column:text;type:text;not null"`
	ImgURL   string `json:"imgUrl" gorm:"column:url_image;type:varchar(250);not null"`
	Author   string `json:"author" gorm:"column:author;type:varchar(250);not null"`
	AuthorID uint   `json:"authorId" gorm:"column:author_id;not null;index"`
	Date     string `json:"date" gorm:"column:date;type:varchar(250);not null"`

	AuthorUser *User     `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Comments   []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// StampDate sets the creation date from t. It is only called on insert.
func (p *BlogPost) StampDate(t time.Time) {
	p.Date = t.Format(PostDateLayout)
}
