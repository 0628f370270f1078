package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
)

type AuthServiceTestSuite struct {
	serviceSuite
	service *AuthService
	tokens  *TokenIssuer
	now     time.Time
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.tokens = NewTokenIssuer("test-secret", time.Hour)
	suite.service = NewAuthService(suite.repos, suite.tokens, suite.store, suite.notifier)
	suite.now = time.Now()
	suite.service.now = func() time.Time { return suite.now }
}

func (suite *AuthServiceTestSuite) register(kind models.PrincipalKind, email string) *models.Principal {
	p, err := suite.service.Register(suite.ctx, RegisterInput{
		Kind:     kind,
		Username: "User " + string(kind),
		Email:    email,
		Password: "password123",
	})
	suite.Require().NoError(err)
	return p
}

func (suite *AuthServiceTestSuite) TestRegister_NormalizesAndHashes() {
	p, err := suite.service.Register(suite.ctx, RegisterInput{
		Kind:     models.KindDeveloper,
		Username: "  Ada ",
		Email:    " Ada@Example.COM ",
		Password: "password123",
		Skills:   []string{"go", "sql"},
		Image:    &Upload{Filename: "ada.png", Content: strings.NewReader("img")},
	})
	suite.Require().NoError(err)
	suite.Equal("Ada", p.Username)
	suite.Equal("ada@example.com", p.Email)
	suite.NotEqual("password123", p.PasswordHash)
	suite.True(suite.store.Has(p.Image))
	suite.Equal([]string{"go", "sql"}, []string(p.Skills))
}

func (suite *AuthServiceTestSuite) TestRegister_EmailUniquePerKind() {
	suite.register(models.KindManager, "same@example.com")

	_, err := suite.service.Register(suite.ctx, RegisterInput{
		Kind: models.KindManager, Username: "Dup", Email: "SAME@example.com", Password: "password123",
	})
	suite.ErrorIs(err, ErrEmailTaken)

	// another kind may reuse the address
	suite.register(models.KindDeveloper, "same@example.com")
}

func (suite *AuthServiceTestSuite) TestRegister_Validation() {
	_, err := suite.service.Register(suite.ctx, RegisterInput{Kind: "robot", Username: "R", Email: "r@x.io", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidPrincipalKind)

	_, err = suite.service.Register(suite.ctx, RegisterInput{Kind: models.KindClient, Username: "C", Email: "c@x.io", Password: "123"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.service.Register(suite.ctx, RegisterInput{Kind: models.KindClient, Email: "c@x.io", Password: "password123"})
	suite.ErrorIs(err, ErrUsernameRequired)
}

func (suite *AuthServiceTestSuite) TestRegister_DeveloperJoinsManagerTeam() {
	manager := suite.register(models.KindManager, "boss@example.com")

	dev, err := suite.service.Register(suite.ctx, RegisterInput{
		Kind:      models.KindDeveloper,
		Username:  "Dev",
		Email:     "dev@example.com",
		Password:  "password123",
		ManagerID: &manager.ID,
	})
	suite.Require().NoError(err)

	found, err := suite.service.ManagerOf(dev.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(manager.ID, found.ID)
}

func (suite *AuthServiceTestSuite) TestLoginAndResolve() {
	dev := suite.register(models.KindDeveloper, "dev@example.com")

	_, _, err := suite.service.Login(models.KindDeveloper, "dev@example.com", "wrong-password")
	suite.ErrorIs(err, ErrInvalidCredentials)

	// credentials are scoped to a kind
	_, _, err = suite.service.Login(models.KindManager, "dev@example.com", "password123")
	suite.ErrorIs(err, ErrInvalidCredentials)

	principal, token, err := suite.service.Login(models.KindDeveloper, "DEV@example.com", "password123")
	suite.Require().NoError(err)
	suite.Equal(dev.ID, principal.ID)
	suite.NotEmpty(token)

	resolved, err := suite.service.ResolvePrincipal(token, models.KindDeveloper)
	suite.Require().NoError(err)
	suite.Equal(dev.ID, resolved.ID)

	_, err = suite.service.ResolvePrincipal(token, models.KindAdmin)
	suite.ErrorIs(err, ErrPrincipalNotFound)

	_, err = suite.service.ResolvePrincipal("not-a-token", models.KindDeveloper)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestResolve_DeletedPrincipal() {
	client := suite.register(models.KindClient, "client@example.com")
	_, token, err := suite.service.Login(models.KindClient, "client@example.com", "password123")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Delete(suite.ctx, models.KindClient, client.ID))

	_, err = suite.service.ResolvePrincipal(token, models.KindClient)
	suite.ErrorIs(err, ErrPrincipalNotFound)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile() {
	admin := suite.register(models.KindAdmin, "admin@example.com")
	suite.register(models.KindAdmin, "taken@example.com")

	taken := "taken@example.com"
	_, err := suite.service.UpdateProfile(models.KindAdmin, admin.ID, ProfileInput{Email: &taken})
	suite.ErrorIs(err, ErrEmailTaken)

	mobile := "555-0100"
	details := models.CompanyDetails{Name: "Acme", Achievements: []string{"first"}}
	updated, err := suite.service.UpdateProfile(models.KindAdmin, admin.ID, ProfileInput{
		Mobile:         &mobile,
		CompanyDetails: &details,
	})
	suite.Require().NoError(err)
	suite.Equal("555-0100", updated.Mobile)
	suite.Equal("Acme", updated.CompanyDetails.Data().Name)

	stored, err := suite.service.Get(models.KindAdmin, admin.ID)
	suite.Require().NoError(err)
	suite.Equal("Acme", stored.CompanyDetails.Data().Name)
}

func (suite *AuthServiceTestSuite) TestUpdateMedia_ReplacesStoredImage() {
	admin := suite.register(models.KindAdmin, "admin@example.com")

	first, err := suite.service.UpdateMedia(suite.ctx, models.KindAdmin, admin.ID,
		&Upload{Filename: "me.png", Content: strings.NewReader("1")},
		&Upload{Filename: "logo.png", Content: strings.NewReader("2")})
	suite.Require().NoError(err)
	oldImage := first.Image
	suite.NotEmpty(first.CompanyDetails.Data().Logo)

	second, err := suite.service.UpdateMedia(suite.ctx, models.KindAdmin, admin.ID,
		&Upload{Filename: "me2.png", Content: strings.NewReader("3")}, nil)
	suite.Require().NoError(err)
	suite.False(suite.store.Has(oldImage))
	suite.True(suite.store.Has(second.Image))
	suite.Equal(2, suite.store.Len())
}

func (suite *AuthServiceTestSuite) TestPasswordReset() {
	suite.register(models.KindAdmin, "admin@example.com")

	suite.ErrorIs(suite.service.RequestPasswordReset(suite.ctx, "nobody@example.com"), ErrPrincipalNotFound)
	suite.Require().NoError(suite.service.RequestPasswordReset(suite.ctx, "admin@example.com"))

	admin, err := suite.repos.Principals.FindByEmail(models.KindAdmin, "admin@example.com")
	suite.Require().NoError(err)
	code := admin.ResetOTPCode
	suite.Len(code, constants.ResetOTPLength)

	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.Equal("Password Reset OTP", sent[0].subject)
	suite.Contains(sent[0].body, code)

	suite.ErrorIs(suite.service.ResetPassword("admin@example.com", "000000x", "newpassword"), ErrInvalidOTP)
	suite.ErrorIs(suite.service.ResetPassword("admin@example.com", code, "123"), ErrPasswordTooShort)

	suite.Require().NoError(suite.service.ResetPassword("admin@example.com", code, "newpassword"))
	_, _, err = suite.service.Login(models.KindAdmin, "admin@example.com", "newpassword")
	suite.NoError(err)

	// the code is single use
	suite.ErrorIs(suite.service.ResetPassword("admin@example.com", code, "another1"), ErrInvalidOTP)
}

func (suite *AuthServiceTestSuite) TestPasswordReset_Expired() {
	suite.register(models.KindAdmin, "admin@example.com")
	suite.Require().NoError(suite.service.RequestPasswordReset(suite.ctx, "admin@example.com"))

	admin, err := suite.repos.Principals.FindByEmail(models.KindAdmin, "admin@example.com")
	suite.Require().NoError(err)

	suite.now = suite.now.Add(constants.ResetOTPTTL + time.Minute)
	suite.ErrorIs(suite.service.ResetPassword("admin@example.com", admin.ResetOTPCode, "newpassword"), ErrInvalidOTP)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
