package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Membership string

const (
	MembershipBronze Membership = "B"
	MembershipSilver Membership = "S"
	MembershipGold   Membership = "G"
)

func ParseMembership(s string) (Membership, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "bronze":
		return MembershipBronze, nil
	case "s", "silver":
		return MembershipSilver, nil
	case "g", "gold":
		return MembershipGold, nil
	default:
		return "", NewValidationError("membership", fmt.Sprintf("%q is not a valid choice.", s))
	}
}

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	FirstName    string    `json:"first_name" gorm:"size:150"`
	LastName     string    `json:"last_name" gorm:"size:150"`
	IsStaff      bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"-" gorm:"autoCreateTime"`
}

type Customer struct {
	ID         uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint64          `json:"user_id" gorm:"not null;uniqueIndex"`
	User       *User           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Phone      string          `json:"phone" gorm:"size:255"`
	BirthDate  *datatypes.Date `json:"birth_date"`
	Membership Membership      `json:"membership" gorm:"type:varchar(1);not null;default:'B'"`
}
