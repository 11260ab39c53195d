package models

// User is a registered account. Users are created on registration and are
// never updated or deleted.
type User struct {
	ID       uint   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"column:name;type:varchar(100);not null"`
	Email    string `json:"email" gorm:"column:email;type:varchar(150);not null;uniqueIndex"`
	Password string `json:"-" gorm:"column:password;type:varchar(250);not null"`
}

func (User) TableName() string {
	return "users"
}
