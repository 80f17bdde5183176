package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/codelily98/codelily/forms"
	"github.com/codelily98/codelily/service"
	"github.com/gin-gonic/gin"
)

var postForm = new(forms.PostFormHelper)

// PostController handles blog post CRUD and listings
type PostController struct {
	posts *service.PostService
}

// NewPostController creates and returns a new PostController instance
func NewPostController(posts *service.PostService) *PostController {
	return &PostController{posts: posts}
}

// List returns all posts, newest first
func (ctrl PostController) List(c *gin.Context) {
	posts, err := ctrl.posts.All(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// Top returns the most viewed posts, default limit 5
func (ctrl PostController) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	posts, err := ctrl.posts.Top(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// One returns a single post by slug and counts the view
func (ctrl PostController) One(c *gin.Context) {
	post, err := ctrl.posts.One(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, service.ErrPostNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// Create publishes a new post authored by the caller
func (ctrl PostController) Create(c *gin.Context) {
	p, _ := GetPrincipal(c)

	var form forms.PostForm
	if err := c.ShouldBindJSON(&form); err != nil {
		message := postForm.Post(err)
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": message})
		return
	}

	post, err := ctrl.posts.Create(c.Request.Context(), p, form)
	if errors.Is(err, service.ErrSlugTaken) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// Update edits a post; only the author or an admin may do so
func (ctrl PostController) Update(c *gin.Context) {
	p, _ := GetPrincipal(c)

	var form forms.PostForm
	if err := c.ShouldBindJSON(&form); err != nil {
		message := postForm.Post(err)
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": message})
		return
	}

	post, err := ctrl.posts.Update(c.Request.Context(), p, c.Param("slug"), form)
	if errors.Is(err, service.ErrPostNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if errors.Is(err, service.ErrNotAuthor) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// Delete removes a post; only the author or an admin may do so
func (ctrl PostController) Delete(c *gin.Context) {
	p, _ := GetPrincipal(c)

	err := ctrl.posts.Delete(c.Request.Context(), p, c.Param("slug"))
	if errors.Is(err, service.ErrPostNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if errors.Is(err, service.ErrNotAuthor) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
