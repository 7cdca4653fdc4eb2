package models

// User roles. Mobile is the primary login key; passwords are optional
// because OTP-only and Firebase accounts carry no credential.
const (
	RoleUser   = "user"
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the recognized values.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User represents a marketplace account. Mobile and Email are pointers so
// that accounts created through one identity method may lack the other
// without tripping the unique indexes.
type User struct {
	BaseModel
	Name         string  `json:"name"`
	Email        *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Mobile       *string `gorm:"uniqueIndex" json:"mobile,omitempty"`
	PasswordHash string  `json:"-"`
	Role         string  `gorm:"default:user" json:"role"`
	FirebaseUID  *string `gorm:"uniqueIndex" json:"-"`
	Provider     string  `json:"provider,omitempty"`
}

// MobileString returns the mobile number or an empty string.
func (u *User) MobileString() string {
	if u.Mobile != nil {
		return *u.Mobile
	}
	return ""
}
