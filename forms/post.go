package forms

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// PostFormHelper represents the base form structure for post forms
type PostFormHelper struct{}

// PostForm contains the fields required to create or update a post
type PostForm struct {
	Slug      string `form:"slug" json:"slug" binding:"required,min=1,max=180"`
	Title     string `form:"title" json:"title" binding:"required,min=1,max=200"`
	Content   string `form:"content" json:"content" binding:"required,min=1"`
	Thumbnail string `form:"thumbnail_url" json:"thumbnail_url" binding:"omitempty,url,max=512"`
	Category  string `form:"category" json:"category" binding:"omitempty,max=100"`
}

// Field returns the appropriate error message for a post field validation tag
func (f PostFormHelper) Field(field, tag string) string {
	switch tag {
	case "required":
		switch field {
		case "Slug":
			return "Please provide a slug"
		case "Title":
			return "Please provide a title"
		case "Content":
			return "Please provide post content"
		}
	case "min", "max":
		return "The " + field + " length is out of range"
	case "url":
		return "Please provide a valid thumbnail URL"
	}
	return "Something went wrong, please try again later"
}

// Post validates the post form and returns appropriate error messages
func (f PostFormHelper) Post(err error) string {
	switch err.(type) {
	case validator.ValidationErrors:

		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return "Something went wrong, please try again later"
		}

		for _, err := range err.(validator.ValidationErrors) {
			return f.Field(err.Field(), err.Tag())
		}

	default:
		return "Invalid request"
	}

	return "Something went wrong, please try again later"
}
