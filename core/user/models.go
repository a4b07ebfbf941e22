package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleStudent     = "student"
	RoleTutor       = "tutor"
	RoleCoordinator = "coordinator"
)

var AllRoles = []string{RoleStudent, RoleTutor, RoleCoordinator}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a registered account profile. Role is set at registration and
// never changes afterwards; SubjectIDs is only meaningful for tutors.
type User struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	Username      string    `json:"username,omitempty" bson:"username,omitempty"`
	AccountNumber string    `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	Role          string    `json:"role" bson:"role"`
	SubjectIDs    []string  `json:"subjectIds,omitempty" bson:"subjectIds,omitempty"`
	PasswordHash  []byte    `json:"-" bson:"passwordHash,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"` // UTC
	LastLogin     time.Time `json:"lastLogin" bson:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsStudent() bool     { return u.Role == RoleStudent }
func (u User) IsTutor() bool       { return u.Role == RoleTutor }
func (u User) IsCoordinator() bool { return u.Role == RoleCoordinator }

func (u User) TeachesSubject(subjectID string) bool {
	for _, id := range u.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// NewAccount holds the data of a registration request.
type NewAccount struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Username      string `json:"username"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role"`
}
