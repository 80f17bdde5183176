package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role describes the authorization level of a user account
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role string onto a known Role, defaulting to RoleUser
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// AuthProvider identifies where a user account originates from
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderKakao  AuthProvider = "kakao"
)

type User struct {
	ID        UserID `json:"id" bson:"_id"`
	CreatedAt int64  `json:"-" bson:"created_at"`
	UpdatedAt int64  `json:"-" bson:"updated_at"`
	LastLogin int64  `json:"-" bson:"last_login_at"`

	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password_hash"`

	Nickname  string `json:"nickname" bson:"nickname"`
	AvatarURL string `json:"avatar_url,omitempty" bson:"avatar_url"`
	Role      Role   `json:"role" bson:"role"`

	Provider      AuthProvider `json:"provider" bson:"provider"`
	ProviderID    string       `json:"-" bson:"provider_id"`
	EmailVerified bool         `json:"email_verified" bson:"email_verified"`
}

type UserID bson.ObjectID

func ParseUserID(id string) (UserID, error) {
	uid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return UserID{}, err
	}

	return UserID(uid), nil
}

func (id UserID) String() string {
	return bson.ObjectID(id).Hex()
}

// IsZero reports whether the ID is the all-zero ObjectID
func (id UserID) IsZero() bool {
	return bson.ObjectID(id).IsZero()
}

func (id UserID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// MarshalBSONValue stores the ID as a native ObjectID rather than a byte array
func (id UserID) MarshalBSONValue() (byte, []byte, error) {
	t, data, err := bson.MarshalValue(bson.ObjectID(id))
	return byte(t), data, err
}

func (id *UserID) UnmarshalBSONValue(t byte, data []byte) error {
	var oid bson.ObjectID
	if err := bson.UnmarshalValue(bson.Type(t), data, &oid); err != nil {
		return err
	}

	*id = UserID(oid)
	return nil
}
