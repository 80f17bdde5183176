package forms

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// UserForm represents the base form structure for user profile forms
type UserForm struct{}

// ProfileForm contains the editable profile fields
type ProfileForm struct {
	Nickname  string `form:"nickname" json:"nickname" binding:"required,min=2,max=50"`
	AvatarURL string `form:"avatar_url" json:"avatar_url" binding:"omitempty,url,max=512"`
}

// Nickname returns the appropriate error message for nickname validation tags
func (f UserForm) Nickname(tag string) (message string) {
	switch tag {
	case "required":
		return "Please enter a nickname"
	case "min", "max":
		return "Your nickname should be between 2 and 50 characters"
	default:
		return "Something went wrong, please try again later"
	}
}

// AvatarURL returns the appropriate error message for avatar validation tags
func (f UserForm) AvatarURL(tag string) (message string) {
	switch tag {
	case "url", "max":
		return "Please provide a valid avatar URL"
	default:
		return "Something went wrong, please try again later"
	}
}

// Profile validates the profile form and returns appropriate error messages
func (f UserForm) Profile(err error) string {
	switch err.(type) {
	case validator.ValidationErrors:

		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return "Something went wrong, please try again later"
		}

		for _, err := range err.(validator.ValidationErrors) {
			if err.Field() == "Nickname" {
				return f.Nickname(err.Tag())
			}
			if err.Field() == "AvatarURL" {
				return f.AvatarURL(err.Tag())
			}
		}

	default:
		return "Invalid request"
	}

	return "Something went wrong, please try again later"
}
