package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/storage"
	"github.com/yukikurage/project-hub-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPrincipalNotFound    = errors.New("principal not found")
	ErrInvalidPrincipalKind = errors.New("invalid principal kind")
	ErrUsernameRequired     = errors.New("username is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrInvalidOTP           = errors.New("invalid or expired reset code")
)

// AuthService handles identity, credentials and profiles of every principal kind.
type AuthService struct {
	repos    *repository.Repositories
	tokens   *TokenIssuer
	files    attachments
	notifier *NotificationService
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repos *repository.Repositories, tokens *TokenIssuer, store storage.ObjectStore, notifier *NotificationService) *AuthService {
	return &AuthService{
		repos:    repos,
		tokens:   tokens,
		files:    attachments{store: store},
		notifier: notifier,
		now:      time.Now,
	}
}

// RegisterInput represents the information needed to create a principal.
type RegisterInput struct {
	Kind     models.PrincipalKind
	Username string
	Email    string
	Password string
	Mobile   string
	Address  string
	Skills   []string
	Image    *Upload
	// ProjectIDs links a client to its projects.
	ProjectIDs []uint64
	// ManagerID adds a new developer to the registering manager's team.
	ManagerID *uint64
}

// Register creates a principal of the given kind.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Principal, error) {
	if !input.Kind.Valid() {
		return nil, ErrInvalidPrincipalKind
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repos.Principals.FindByEmail(input.Kind, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	principal := &models.Principal{
		Kind:         input.Kind,
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Mobile:       input.Mobile,
		Address:      input.Address,
		Skills:       datatypes.JSONSlice[string](input.Skills),
	}

	var uploaded []string
	if input.Image != nil {
		uploaded, err = s.files.upload(ctx, constants.FolderProfiles, []Upload{*input.Image})
		if err != nil {
			return nil, err
		}
		principal.Image = uploaded[0]
	}

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Principals.Create(principal); err != nil {
			return fmt.Errorf("failed to create principal: %w", err)
		}
		if input.Kind == models.KindClient && len(input.ProjectIDs) > 0 {
			if err := tx.Principals.SetClientProjects(principal.ID, input.ProjectIDs); err != nil {
				return fmt.Errorf("failed to link client projects: %w", err)
			}
		}
		if input.Kind == models.KindDeveloper && input.ManagerID != nil {
			member := models.ManagerMember{
				MemberKind: models.KindDeveloper,
				MemberID:   principal.ID,
				MemberName: principal.Username,
				AssignedAt: s.now(),
			}
			if err := tx.Principals.AddMembers(*input.ManagerID, []models.ManagerMember{member}); err != nil {
				return fmt.Errorf("failed to add developer to team: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.files.discard(ctx, uploaded)
		return nil, err
	}

	return principal, nil
}

// Login verifies credentials and returns the principal with a fresh token.
func (s *AuthService) Login(kind models.PrincipalKind, email, password string) (*models.Principal, string, error) {
	principal, err := s.repos.Principals.FindByEmail(kind, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find principal: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(principal.Ref())
	if err != nil {
		return nil, "", err
	}
	return principal, token, nil
}

// ResolvePrincipal verifies a token and loads the principal of the requested
// kind it was issued to. ErrInvalidToken means the token itself is unusable;
// ErrPrincipalNotFound means it grants no principal of that kind.
func (s *AuthService) ResolvePrincipal(token string, kind models.PrincipalKind) (*models.Principal, error) {
	ref, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if ref.Kind != kind {
		return nil, ErrPrincipalNotFound
	}
	return s.Get(kind, ref.ID)
}

// Get retrieves a principal by kind and ID.
func (s *AuthService) Get(kind models.PrincipalKind, id uint64) (*models.Principal, error) {
	principal, err := s.repos.Principals.FindByID(kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}
	return principal, nil
}

// List returns every principal of a kind.
func (s *AuthService) List(kind models.PrincipalKind) ([]models.Principal, error) {
	if !kind.Valid() {
		return nil, ErrInvalidPrincipalKind
	}
	principals, err := s.repos.Principals.List(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	return principals, nil
}

// ManagerOf returns the manager whose team contains the developer, if any.
func (s *AuthService) ManagerOf(developerID uint64) (*models.Principal, error) {
	managers, err := s.repos.Principals.ManagersOf(models.KindDeveloper, []uint64{developerID})
	if err != nil {
		return nil, fmt.Errorf("failed to find manager: %w", err)
	}
	if len(managers) == 0 {
		return nil, nil
	}
	return &managers[0], nil
}

// ProfileInput holds optional profile changes.
type ProfileInput struct {
	Username       *string
	Email          *string
	Password       *string
	Mobile         *string
	Address        *string
	Skills         *[]string
	SocialLinks    *models.SocialLinks
	CompanyDetails *models.CompanyDetails
	ProjectIDs     *[]uint64
}

// UpdateProfile applies profile changes to a principal.
func (s *AuthService) UpdateProfile(kind models.PrincipalKind, id uint64, input ProfileInput) (*models.Principal, error) {
	principal, err := s.Get(kind, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrUsernameRequired
		}
		principal.Username = username
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != principal.Email {
			if _, err := s.repos.Principals.FindByEmail(kind, email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			principal.Email = email
		}
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		principal.PasswordHash = string(hashedPassword)
	}
	if input.Mobile != nil {
		principal.Mobile = *input.Mobile
	}
	if input.Address != nil {
		principal.Address = *input.Address
	}
	if input.Skills != nil {
		principal.Skills = datatypes.JSONSlice[string](*input.Skills)
	}
	if input.SocialLinks != nil {
		principal.SocialLinks = datatypes.NewJSONType(*input.SocialLinks)
	}
	if input.CompanyDetails != nil && kind == models.KindAdmin {
		details := *input.CompanyDetails
		// the logo is only replaced through UpdateMedia
		details.Logo = principal.CompanyDetails.Data().Logo
		principal.CompanyDetails = datatypes.NewJSONType(details)
	}

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Principals.Update(principal); err != nil {
			return fmt.Errorf("failed to update principal: %w", err)
		}
		if input.ProjectIDs != nil && kind == models.KindClient {
			if err := tx.Principals.SetClientProjects(principal.ID, *input.ProjectIDs); err != nil {
				return fmt.Errorf("failed to link client projects: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// UpdateMedia replaces the profile image and, for admins, the company logo.
// Replaced objects are removed from storage.
func (s *AuthService) UpdateMedia(ctx context.Context, kind models.PrincipalKind, id uint64, image, logo *Upload) (*models.Principal, error) {
	principal, err := s.Get(kind, id)
	if err != nil {
		return nil, err
	}

	var uploaded, replaced []string
	if image != nil {
		urls, err := s.files.upload(ctx, constants.FolderProfiles, []Upload{*image})
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, urls...)
		if principal.Image != "" {
			replaced = append(replaced, principal.Image)
		}
		principal.Image = urls[0]
	}
	if logo != nil && kind == models.KindAdmin {
		urls, err := s.files.upload(ctx, constants.FolderCompanyLogos, []Upload{*logo})
		if err != nil {
			s.files.discard(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, urls...)
		details := principal.CompanyDetails.Data()
		if details.Logo != "" {
			replaced = append(replaced, details.Logo)
		}
		details.Logo = urls[0]
		principal.CompanyDetails = datatypes.NewJSONType(details)
	}

	if err := s.repos.Principals.Update(principal); err != nil {
		s.files.discard(ctx, uploaded)
		return nil, fmt.Errorf("failed to update principal: %w", err)
	}

	s.files.discard(ctx, replaced)
	return principal, nil
}

// Delete removes a principal and its stored profile media.
func (s *AuthService) Delete(ctx context.Context, kind models.PrincipalKind, id uint64) error {
	principal, err := s.Get(kind, id)
	if err != nil {
		return err
	}

	if err := s.repos.Principals.Delete(kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("failed to delete principal: %w", err)
	}

	var media []string
	if principal.Image != "" {
		media = append(media, principal.Image)
	}
	if logo := principal.CompanyDetails.Data().Logo; logo != "" {
		media = append(media, logo)
	}
	s.files.discard(ctx, media)
	return nil
}

// ClientProjectIDs lists the projects linked to a client.
func (s *AuthService) ClientProjectIDs(clientID uint64) ([]uint64, error) {
	ids, err := s.repos.Principals.ClientProjectIDs(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client projects: %w", err)
	}
	return ids, nil
}

// RequestPasswordReset stores a one-time code for an admin and emails it. An
// unknown email is reported as ErrPrincipalNotFound.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	admin, err := s.repos.Principals.FindByEmail(models.KindAdmin, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("failed to find admin: %w", err)
	}

	code, err := utils.GenerateOTP(constants.ResetOTPLength)
	if err != nil {
		return err
	}
	expiry := s.now().Add(constants.ResetOTPTTL)
	admin.ResetOTPCode = code
	admin.ResetOTPExpiry = &expiry

	if err := s.repos.Principals.Update(admin); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	s.notifier.SendEmail(ctx, []string{admin.Email}, "Password Reset OTP",
		fmt.Sprintf("Your OTP for password reset is: %s\nThis OTP will expire in %d minutes.",
			code, int(constants.ResetOTPTTL.Minutes())))
	return nil
}

// ResetPassword sets a new admin password when the code matches and has not expired.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	admin, err := s.repos.Principals.FindByEmail(models.KindAdmin, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to find admin: %w", err)
	}

	if admin.ResetOTPCode == "" || admin.ResetOTPCode != code ||
		admin.ResetOTPExpiry == nil || s.now().After(*admin.ResetOTPExpiry) {
		return ErrInvalidOTP
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}
	admin.PasswordHash = string(hashedPassword)
	admin.ResetOTPCode = ""
	admin.ResetOTPExpiry = nil

	if err := s.repos.Principals.Update(admin); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
