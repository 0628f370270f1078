package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/middleware"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// AuthHandler coordinates authentication and profile HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type registerRequest struct {
	Username   string   `json:"username" binding:"required,min=2,max=100"`
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required"`
	Mobile     string   `json:"mobile"`
	Address    string   `json:"address"`
	Skills     []string `json:"skills"`
	ProjectIDs []uint64 `json:"project_ids"`
}

type profileRequest struct {
	Username       *string                `json:"username"`
	Email          *string                `json:"email" binding:"omitempty,email"`
	Password       *string                `json:"password"`
	Mobile         *string                `json:"mobile"`
	Address        *string                `json:"address"`
	Skills         *[]string              `json:"skills"`
	SocialLinks    *models.SocialLinks    `json:"social_links"`
	CompanyDetails *models.CompanyDetails `json:"company_details"`
	ProjectIDs     *[]uint64              `json:"project_ids"`
}

func (r profileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		Username:       r.Username,
		Email:          r.Email,
		Password:       r.Password,
		Mobile:         r.Mobile,
		Address:        r.Address,
		Skills:         r.Skills,
		SocialLinks:    r.SocialLinks,
		CompanyDetails: r.CompanyDetails,
		ProjectIDs:     r.ProjectIDs,
	}
}

// Register creates a principal of kind. When a manager registers a developer,
// the developer joins that manager's team.
func (h *AuthHandler) Register(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if !bindRequest(c, &req) {
			return
		}
		image, closeFiles, ok := formFile(c, fieldImage)
		if !ok {
			return
		}
		defer closeFiles()

		input := services.RegisterInput{
			Kind:       kind,
			Username:   req.Username,
			Email:      req.Email,
			Password:   req.Password,
			Mobile:     req.Mobile,
			Address:    req.Address,
			Skills:     req.Skills,
			Image:      image,
			ProjectIDs: req.ProjectIDs,
		}
		if actor, ok := middleware.GetPrincipal(c); ok && actor.Kind == models.KindManager && kind == models.KindDeveloper {
			managerID := actor.ID
			input.ManagerID = &managerID
		}

		principal, err := h.authService.Register(c.Request.Context(), input)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, dto.ToPrincipalDTO(*principal))
	}
}

// Login authenticates a principal of kind and stores the token in the session.
func (h *AuthHandler) Login(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		type LoginRequest struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}

		principal, token, err := h.authService.Login(kind, req.Email, req.Password)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		response := dto.LoginResponse{
			Token:     token,
			Principal: dto.ToPrincipalDTO(*principal),
		}
		if kind == models.KindDeveloper {
			manager, err := h.authService.ManagerOf(principal.ID)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			if manager != nil {
				managerDTO := dto.ToPrincipalDTO(*manager)
				response.Manager = &managerDTO
			}
		}

		session := sessions.Default(c)
		session.Set(constants.SessionKeyToken, token)
		session.Set(constants.SessionKeyKind, string(kind))
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to save session")
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetProfile returns the authenticated principal.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToPrincipalDTO(*principal))
}

// UpdateProfile applies profile changes and optional new media to the
// authenticated principal.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	h.updatePrincipal(c, principal.Kind, principal.ID)
}

// UpdateMedia replaces the profile image and company logo.
func (h *AuthHandler) UpdateMedia(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	image, closeImage, ok := formFile(c, fieldImage)
	if !ok {
		return
	}
	defer closeImage()
	logo, closeLogo, ok := formFile(c, fieldLogo)
	if !ok {
		return
	}
	defer closeLogo()

	if image == nil && logo == nil {
		apierrors.BadRequest(c, "No media uploaded")
		return
	}

	updated, err := h.authService.UpdateMedia(c.Request.Context(), principal.Kind, principal.ID, image, logo)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPrincipalDTO(*updated))
}

// DeleteProfile deletes the authenticated principal and ends the session.
func (h *AuthHandler) DeleteProfile(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	if err := h.authService.Delete(c.Request.Context(), principal.Kind, principal.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

// ListPrincipals lists every principal of kind.
func (h *AuthHandler) ListPrincipals(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		principals, err := h.authService.List(kind)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToPrincipalDTOs(principals))
	}
}

// GetPrincipal returns one principal of kind.
func (h *AuthHandler) GetPrincipal(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		principal, err := h.authService.Get(kind, id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToPrincipalDTO(*principal))
	}
}

// UpdatePrincipal applies profile changes to another principal of kind.
func (h *AuthHandler) UpdatePrincipal(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		h.updatePrincipal(c, kind, id)
	}
}

// DeletePrincipal deletes another principal of kind.
func (h *AuthHandler) DeletePrincipal(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := h.authService.Delete(c.Request.Context(), kind, id); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
	}
}

func (h *AuthHandler) updatePrincipal(c *gin.Context, kind models.PrincipalKind, id uint64) {
	var req profileRequest
	if !bindRequest(c, &req) {
		return
	}
	image, closeFiles, ok := formFile(c, fieldImage)
	if !ok {
		return
	}
	defer closeFiles()

	principal, err := h.authService.UpdateProfile(kind, id, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if image != nil {
		principal, err = h.authService.UpdateMedia(c.Request.Context(), kind, id, image, nil)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, dto.ToPrincipalDTO(*principal))
}

// RequestPasswordReset emails a one-time reset code to an admin.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	type ResetRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

// ResetPassword sets a new admin password using a reset code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(req.Email, req.OTP, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
