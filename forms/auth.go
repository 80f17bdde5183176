package forms

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// AuthForm represents the base form structure for authentication forms
type AuthForm struct{}

// LoginForm contains the fields required for user login
type LoginForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=3,max=50"`
}

// RegisterForm contains the fields required for user registration
type RegisterForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=3,max=50"`
	Nickname string `form:"nickname" json:"nickname" binding:"required,min=2,max=50"`
}

// Email returns the appropriate error message for email validation tags
func (f AuthForm) Email(tag string) (message string) {
	switch tag {
	case "required":
		return "Please enter your email"
	case "min", "max", "email":
		return "Please enter a valid email"
	default:
		return "Something went wrong, please try again later"
	}
}

// Password returns the appropriate error message for password validation tags
func (f AuthForm) Password(tag string) (message string) {
	switch tag {
	case "required":
		return "Please enter your password"
	case "min", "max":
		return "Your password should be between 3 and 50 characters"
	default:
		return "Something went wrong, please try again later"
	}
}

// Nickname returns the appropriate error message for nickname validation tags
func (f AuthForm) Nickname(tag string) (message string) {
	switch tag {
	case "required":
		return "Please enter a nickname"
	case "min", "max":
		return "Your nickname should be between 2 and 50 characters"
	default:
		return "Something went wrong, please try again later"
	}
}

// Login validates the login form and returns appropriate error messages
func (f AuthForm) Login(err error) string {
	switch err.(type) {
	case validator.ValidationErrors:

		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return "Something went wrong, please try again later"
		}

		for _, err := range err.(validator.ValidationErrors) {
			if err.Field() == "Email" {
				return f.Email(err.Tag())
			}
			if err.Field() == "Password" {
				return f.Password(err.Tag())
			}
		}

	default:
		return "Invalid request"
	}

	return "Something went wrong, please try again later"
}

// Register validates the registration form and returns appropriate error messages
func (f AuthForm) Register(err error) string {
	switch err.(type) {
	case validator.ValidationErrors:

		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return "Something went wrong, please try again later"
		}

		for _, err := range err.(validator.ValidationErrors) {
			if err.Field() == "Email" {
				return f.Email(err.Tag())
			}
			if err.Field() == "Password" {
				return f.Password(err.Tag())
			}
			if err.Field() == "Nickname" {
				return f.Nickname(err.Tag())
			}
		}

	default:
		return "Invalid request"
	}

	return "Something went wrong, please try again later"
}
