package entities

// User is the legacy account table carried over from the first version
// of the chat app. Nothing authenticates against it yet.
type User struct {
	ID       int    `json:"id" gorm:"primary_key;column:id"`
	Username string `json:"username" gorm:"column:username;not null;unique"`
	Password string `json:"-" gorm:"column:password;not null"`
}

func (User) TableName() string {
	return "users"
}
