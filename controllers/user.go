package controllers

import (
	"errors"
	"net/http"

	"github.com/codelily98/codelily/forms"
	"github.com/codelily98/codelily/models"
	"github.com/codelily98/codelily/service"
	"github.com/gin-gonic/gin"
)

var userForm = new(forms.UserForm)

// UserController handles user registration, lookup and profile editing
type UserController struct {
	users *service.UserService
}

// NewUserController creates and returns a new UserController instance
func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles new user registration requests, validates input and
// creates a new local account
func (ctrl UserController) Register(c *gin.Context) {
	var registerForm forms.RegisterForm

	if err := c.ShouldBindJSON(&registerForm); err != nil {
		message := authForm.Register(err)
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": message})
		return
	}

	_, err := ctrl.users.Register(c.Request.Context(), registerForm)
	if errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrNicknameTaken) {
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

// Me returns the profile of the authenticated caller
func (ctrl UserController) Me(c *gin.Context) {
	p, _ := GetPrincipal(c)

	user, err := ctrl.users.One(c.Request.Context(), p.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser returns a single user by id
func (ctrl UserController) GetUser(c *gin.Context) {
	userID, err := models.ParseUserID(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	user, err := ctrl.users.One(c.Request.Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// CheckNickname reports whether a nickname is still available
func (ctrl UserController) CheckNickname(c *gin.Context) {
	nickname := c.Query("nickname")
	if nickname == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Please provide a nickname"})
		return
	}

	taken, err := ctrl.users.NicknameTaken(c.Request.Context(), nickname)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"taken": taken})
}

// UpdateProfile changes the authenticated caller's nickname and avatar
func (ctrl UserController) UpdateProfile(c *gin.Context) {
	p, _ := GetPrincipal(c)

	var profileForm forms.ProfileForm
	if err := c.ShouldBindJSON(&profileForm); err != nil {
		message := userForm.Profile(err)
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": message})
		return
	}

	user, err := ctrl.users.UpdateProfile(c.Request.Context(), p.UserID, profileForm.Nickname, profileForm.AvatarURL)
	if errors.Is(err, service.ErrNicknameTaken) {
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": err.Error()})
		return
	}
	if errors.Is(err, service.ErrUserNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, user)
}
