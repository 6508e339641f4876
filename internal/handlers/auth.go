package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mmonco/mpute/internal/middleware"
	"github.com/mmonco/mpute/internal/models"
	"github.com/mmonco/mpute/internal/services"
	"github.com/mmonco/mpute/pkg/logger"
)

type AuthHandler struct {
	userService   *services.UserService
	githubService *services.GitHubService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		githubService: services.NewGitHubService(),
	}
}

// Login initiates the GitHub OAuth flow
func (h *AuthHandler) Login(c *gin.Context) {
	authURL := h.githubService.GetAuthURL()
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Logout clears the session
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	c.Redirect(http.StatusFound, "/")
}

// GitHubCallback handles the GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/login?error=no_code")
		return
	}

	// Exchange code for token
	token, err := h.githubService.ExchangeCodeForToken(code)
	if err != nil {
		logger.WithError(err).Warn("GitHub token exchange failed")
		c.Redirect(http.StatusFound, "/login?error=token_exchange_failed")
		return
	}

	// Get user info from GitHub
	githubUser, err := h.githubService.GetUserInfo(token)
	if err != nil {
		logger.WithError(err).Warn("GitHub user lookup failed")
		c.Redirect(http.StatusFound, "/login?error=user_info_failed")
		return
	}

	// Check if user exists in our database
	user, err := h.userService.GetUserByUsername(githubUser.Login)
	if err != nil || user == nil {
		// User doesn't exist, create new user
		user = &models.User{
			ID:                uuid.New(),
			Name:              githubUser.Name,
			Username:          githubUser.Login,
			Email:             githubUser.Email,
			ProfilePicture:    githubUser.AvatarURL,
			GitHubAccessToken: token.AccessToken,
			CreatedAt:         time.Now().UTC(),
		}

		if err := h.userService.CreateUser(user); err != nil {
			logger.WithError(err).Error("User creation failed")
			c.Redirect(http.StatusFound, "/login?error=user_creation_failed")
			return
		}
	} else {
		// Update existing user's GitHub token
		user.GitHubAccessToken = token.AccessToken
		if err := h.userService.UpdateUser(user); err != nil {
			logger.WithError(err).Error("User update failed")
			c.Redirect(http.StatusFound, "/login?error=user_update_failed")
			return
		}
	}

	// Create session
	if err := middleware.SetSession(c, user.ID.String(), user.Username); err != nil {
		c.Redirect(http.StatusFound, "/login?error=session_creation_failed")
		return
	}

	c.Redirect(http.StatusFound, "/projects/mine")
}
