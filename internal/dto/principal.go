package dto

import (
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
)

// PrincipalDTO represents a principal in API responses
type PrincipalDTO struct {
	ID             uint64                 `json:"id"`
	Kind           models.PrincipalKind   `json:"kind"`
	Username       string                 `json:"username"`
	Email          string                 `json:"email"`
	Image          string                 `json:"image,omitempty"`
	Mobile         string                 `json:"mobile,omitempty"`
	Address        string                 `json:"address,omitempty"`
	Skills         []string               `json:"skills,omitempty"`
	SocialLinks    *models.SocialLinks    `json:"social_links,omitempty"`
	CompanyDetails *models.CompanyDetails `json:"company_details,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// PrincipalSummaryDTO is the short form used in member listings.
type PrincipalSummaryDTO struct {
	ID       uint64               `json:"id"`
	Kind     models.PrincipalKind `json:"kind"`
	Username string               `json:"username"`
	Email    string               `json:"email"`
}

// LoginResponse is returned by every login endpoint.
type LoginResponse struct {
	Token     string        `json:"token"`
	Principal PrincipalDTO  `json:"principal"`
	Manager   *PrincipalDTO `json:"manager,omitempty"`
}

// ToPrincipalDTO converts a Principal model to PrincipalDTO
func ToPrincipalDTO(p models.Principal) PrincipalDTO {
	out := PrincipalDTO{
		ID:        p.ID,
		Kind:      p.Kind,
		Username:  p.Username,
		Email:     p.Email,
		Image:     p.Image,
		Mobile:    p.Mobile,
		Address:   p.Address,
		Skills:    []string(p.Skills),
		CreatedAt: p.CreatedAt,
	}

	links := p.SocialLinks.Data()
	if links != (models.SocialLinks{}) {
		out.SocialLinks = &links
	}
	if p.Kind == models.KindAdmin {
		company := p.CompanyDetails.Data()
		out.CompanyDetails = &company
	}
	return out
}

func ToPrincipalDTOs(principals []models.Principal) []PrincipalDTO {
	out := make([]PrincipalDTO, 0, len(principals))
	for _, p := range principals {
		out = append(out, ToPrincipalDTO(p))
	}
	return out
}

func ToPrincipalSummaries(principals []models.Principal) []PrincipalSummaryDTO {
	out := make([]PrincipalSummaryDTO, 0, len(principals))
	for _, p := range principals {
		out = append(out, PrincipalSummaryDTO{
			ID:       p.ID,
			Kind:     p.Kind,
			Username: p.Username,
			Email:    p.Email,
		})
	}
	return out
}
