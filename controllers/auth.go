package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/codelily98/codelily/forms"
	"github.com/codelily98/codelily/models"
	"github.com/codelily98/codelily/service"
	"github.com/gin-gonic/gin"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token
const refreshCookieName = "refreshToken"

// gatewaySecretHeader authenticates the OAuth2 gateway on the callback
// endpoint; only the gateway that completed the provider handshake may
// submit profiles for token minting
const gatewaySecretHeader = "X-Gateway-Secret"

var authForm = new(forms.AuthForm)

// AuthController handles login, token refresh, logout and the OAuth2
// identity callback
type AuthController struct {
	auth     *service.AuthService
	identity *service.IdentityService

	// frontRedirect is where the OAuth2 callback sends the browser,
	// with the access token appended as a query parameter
	frontRedirect string
	gatewaySecret string
	secureCookies bool
	refreshMaxAge int
}

// NewAuthController creates and returns a new AuthController instance
func NewAuthController(auth *service.AuthService, identity *service.IdentityService, frontRedirect, gatewaySecret string, secureCookies bool, refreshMaxAge int) *AuthController {
	return &AuthController{
		auth:          auth,
		identity:      identity,
		frontRedirect: frontRedirect,
		gatewaySecret: gatewaySecret,
		secureCookies: secureCookies,
		refreshMaxAge: refreshMaxAge,
	}
}

// gatewayAuthorized reports whether the request carries the shared gateway
// secret. An empty configured secret authorizes nobody.
func (ctrl AuthController) gatewayAuthorized(c *gin.Context) bool {
	if ctrl.gatewaySecret == "" {
		return false
	}
	presented := c.GetHeader(gatewaySecretHeader)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(ctrl.gatewaySecret)) == 1
}

// setRefreshCookie attaches the refresh token as an HttpOnly SameSite=Lax
// cookie on path /
func (ctrl AuthController) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, maxAge, "/", "", ctrl.secureCookies, true)
}

func (ctrl AuthController) clearRefreshCookie(c *gin.Context) {
	ctrl.setRefreshCookie(c, "", -1)
}

func loginResponse(user models.User, td *models.TokenDetails) gin.H {
	return gin.H{
		"access_token": td.AccessToken,
		"nickname":     user.Nickname,
		"role":         user.Role,
	}
}

// Login authenticates an email/password pair. The access token is returned
// in the JSON body, the refresh token only as an HttpOnly cookie.
func (ctrl AuthController) Login(c *gin.Context) {
	var loginForm forms.LoginForm

	if validationErr := c.ShouldBindJSON(&loginForm); validationErr != nil {
		message := authForm.Login(validationErr)
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": message})
		return
	}

	user, td, err := ctrl.auth.Login(c.Request.Context(), loginForm.Email, loginForm.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid login details"})
		return
	}
	if errors.Is(err, service.ErrStoreUnavailable) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Service temporarily unavailable"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	ctrl.setRefreshCookie(c, td.RefreshToken, ctrl.refreshMaxAge)
	c.JSON(http.StatusOK, loginResponse(user, td))
}

// Refresh rotates the token pair using the refresh cookie. Stale, replayed
// and structurally invalid tokens all get the same generic rejection so
// rotation state is not leaked to an attacker.
func (ctrl AuthController) Refresh(c *gin.Context) {
	presented, _ := c.Cookie(refreshCookieName)

	user, td, err := ctrl.auth.Refresh(c.Request.Context(), presented)
	if errors.Is(err, service.ErrInvalidRefresh) || errors.Is(err, service.ErrRefreshMismatch) {
		ctrl.clearRefreshCookie(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization, please login again"})
		return
	}
	if errors.Is(err, service.ErrStoreUnavailable) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Service temporarily unavailable"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	ctrl.setRefreshCookie(c, td.RefreshToken, ctrl.refreshMaxAge)
	c.JSON(http.StatusOK, loginResponse(user, td))
}

// Logout revokes whatever credentials the request carries and clears the
// refresh cookie. It always succeeds.
func (ctrl AuthController) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)
	accessToken := service.ExtractBearer(c.GetHeader("Authorization"))

	ctrl.auth.Logout(c.Request.Context(), refreshToken, accessToken)
	ctrl.clearRefreshCookie(c)

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// OAuthCallback completes a social login. The OAuth2 gateway has already
// terminated the provider protocol; this endpoint receives the provider's
// user-info attributes, resolves them to an internal identity, mints a
// token pair exactly as login does and redirects to the frontend with the
// access token. Only the gateway itself may call it: the profile is
// trusted, so an unauthenticated caller could otherwise mint tokens for
// any account.
func (ctrl AuthController) OAuthCallback(c *gin.Context) {
	if !ctrl.gatewayAuthorized(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	provider := models.AuthProvider(c.Param("provider"))

	var attrs map[string]any
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": "Invalid request"})
		return
	}

	profile, err := service.NormalizeProfile(provider, attrs)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"message": "Unsupported provider"})
		return
	}

	user, err := ctrl.identity.Resolve(c.Request.Context(), profile)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "OAuth2 login failed"})
		return
	}

	td, err := ctrl.auth.IssueFor(c.Request.Context(), user)
	if errors.Is(err, service.ErrStoreUnavailable) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Service temporarily unavailable"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again later"})
		return
	}

	ctrl.setRefreshCookie(c, td.RefreshToken, ctrl.refreshMaxAge)
	c.Redirect(http.StatusFound, ctrl.frontRedirect+"?accessToken="+td.AccessToken)
}
