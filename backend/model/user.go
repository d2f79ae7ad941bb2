package model

// User is a registered account. Password holds a bcrypt digest and is never
// serialized.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:24"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password string `json:"-" gorm:"size:100;not null"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName is what the welcome mail greets the user with.
func (user *User) DisplayName() string {
	return user.Email
}
