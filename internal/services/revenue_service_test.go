package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/models"
)

type RevenueServiceTestSuite struct {
	serviceSuite
	service  *RevenueService
	admin    *models.Principal
	manager  *models.Principal
	marketer *models.Principal
	project  *models.Project
}

func (suite *RevenueServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.service = NewRevenueService(suite.repos, suite.store, suite.notifier)
	suite.admin = suite.createPrincipal(models.KindAdmin, "Admin")
	suite.manager = suite.createPrincipal(models.KindManager, "Boss")
	suite.marketer = suite.createPrincipal(models.KindMarketing, "Marketer")
	suite.project = suite.createProject("Campaign", nil)
}

func (suite *RevenueServiceTestSuite) TestCreate_BroadcastsAndEmailsStaff() {
	revenue, err := suite.service.Create(suite.ctx, suite.marketer, RevenueInput{
		ProjectID:   &suite.project.ID,
		Amount:      1500.5,
		Description: "Spring deals",
		Attachments: []Upload{upload("invoice.pdf", "pdf")},
	})
	suite.Require().NoError(err)
	suite.Equal("Marketer", revenue.CreatedByName)
	suite.False(revenue.Date.IsZero())
	suite.Require().Len(revenue.Attachments, 1)

	broadcasts := suite.broadcasts()
	suite.Require().Len(broadcasts, 1)
	suite.Equal("New revenue of 1500.5 added for project Campaign", broadcasts[0].Content)

	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.Equal("New Revenue Entry for Campaign", sent[0].subject)
	suite.ElementsMatch([]string{suite.admin.Email, suite.manager.Email}, sent[0].to)
	suite.Contains(sent[0].body, "Attachments: 1 file(s) uploaded")
}

func (suite *RevenueServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.ctx, suite.marketer, RevenueInput{Amount: -1})
	suite.ErrorIs(err, ErrInvalidAmount)

	missing := uint64(999)
	_, err = suite.service.Create(suite.ctx, suite.marketer, RevenueInput{ProjectID: &missing, Amount: 10})
	suite.ErrorIs(err, ErrProjectNotFound)

	suite.Empty(suite.notifications())
}

func (suite *RevenueServiceTestSuite) TestCreate_ByAdminIsQuiet() {
	_, err := suite.service.Create(suite.ctx, suite.admin, RevenueInput{Amount: 10})
	suite.Require().NoError(err)
	suite.Empty(suite.notifications())
	// staff are still emailed
	suite.Len(suite.mail.Sent(), 1)
}

func (suite *RevenueServiceTestSuite) TestUpdateAndDelete() {
	revenue, err := suite.service.Create(suite.ctx, suite.marketer, RevenueInput{
		Amount:      100,
		Attachments: []Upload{upload("a.pdf", "a")},
	})
	suite.Require().NoError(err)

	amount := 250.0
	updated, err := suite.service.Update(suite.ctx, suite.marketer, revenue.ID, RevenueUpdateInput{
		ProjectID:   &suite.project.ID,
		Amount:      &amount,
		Attachments: []Upload{upload("b.pdf", "b")},
	})
	suite.Require().NoError(err)
	suite.Equal(250.0, updated.Amount)
	suite.Len(updated.Attachments, 2)

	negative := -5.0
	_, err = suite.service.Update(suite.ctx, suite.marketer, revenue.ID, RevenueUpdateInput{Amount: &negative})
	suite.ErrorIs(err, ErrInvalidAmount)

	byProject, err := suite.service.ListByProject(suite.project.ID)
	suite.Require().NoError(err)
	suite.Len(byProject, 1)

	suite.Require().NoError(suite.service.Delete(suite.ctx, revenue.ID))
	suite.Equal(0, suite.store.Len())
	_, err = suite.service.Get(revenue.ID)
	suite.ErrorIs(err, ErrRevenueNotFound)
}

func TestRevenueServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RevenueServiceTestSuite))
}
