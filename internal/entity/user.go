package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the single persisted identity record. Password always holds the
// bcrypt digest, never plaintext.
type User struct {
	ID          primitive.ObjectID
	FirstName   string
	LastName    string
	NationalID  string // optional, unique when present
	Email       string // stored lower-cased, unique
	Password    string // bcrypt hash
	Phone       string
	IsAdmin     bool
	IsSeller    bool
	IsActive    bool // soft-delete marker; records are never physically removed
	IsProtected bool // a protected record can never be deactivated
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Seller is the minimal projection returned by the seller listing.
type Seller struct {
	ID         primitive.ObjectID
	FirstName  string
	LastName   string
	NationalID string
}
