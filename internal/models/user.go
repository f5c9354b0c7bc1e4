package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SocialLinks are the optional profile links shown on a user page.
type SocialLinks struct {
	Website  string `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Github   string `json:"github,omitempty" bson:"github,omitempty" validate:"omitempty,url"`
	Twitter  string `json:"twitter,omitempty" bson:"twitter,omitempty" validate:"omitempty,url"`
	LinkedIn string `json:"linkedin,omitempty" bson:"linkedin,omitempty" validate:"omitempty,url"`
}

// User is stored in the "users" collection. Followers and Following are the two
// directions of the social graph; they are not kept symmetric by the database.
type User struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	Email     string               `json:"email" bson:"email"`
	Phone     string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio       string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Education string               `json:"education,omitempty" bson:"education,omitempty"`
	Work      string               `json:"work,omitempty" bson:"work,omitempty"`
	Skills    []string             `json:"skills,omitempty" bson:"skills,omitempty"`
	Social    SocialLinks          `json:"social" bson:"social"`
	Avatar    string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Password  string               `json:"-" bson:"password"`
	Role      string               `json:"role" bson:"role"`
	Followers []primitive.ObjectID `json:"followers" bson:"followers"`
	Following []primitive.ObjectID `json:"following" bson:"following"`

	ResetPasswordCode    string     `json:"-" bson:"reset_password_code,omitempty"`
	ResetPasswordExpires *time.Time `json:"-" bson:"reset_password_expires,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the author/actor summary embedded in other responses.
type UserCompact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID.Hex(), Name: u.Name, Avatar: u.Avatar}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFollowedBy reports whether id is in the user's followers list.
func (u *User) IsFollowedBy(id primitive.ObjectID) bool {
	for _, f := range u.Followers {
		if f == id {
			return true
		}
	}
	return false
}

// UserProfile is the public profile with graph and post counters.
type UserProfile struct {
	*User
	FollowersCount int   `json:"followers_count"`
	FollowingCount int   `json:"following_count"`
	PostsCount     int64 `json:"posts_count"`
	IsFollowing    bool  `json:"is_following"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserRequest is a merge update: nil fields are left untouched.
type UpdateUserRequest struct {
	Name      *string      `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Phone     *string      `json:"phone,omitempty" validate:"omitempty,max=20"`
	Bio       *string      `json:"bio,omitempty" validate:"omitempty,max=500"`
	Education *string      `json:"education,omitempty" validate:"omitempty,max=200"`
	Work      *string      `json:"work,omitempty" validate:"omitempty,max=200"`
	Skills    []string     `json:"skills,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	Social    *SocialLinks `json:"social,omitempty"`
	Avatar    *string      `json:"avatar,omitempty" validate:"omitempty,url"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
