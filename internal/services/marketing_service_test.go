package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/models"
)

type MarketingServiceTestSuite struct {
	serviceSuite
	service  *MarketingService
	updates  *TaskUpdateService
	admin    *models.Principal
	manager  *models.Principal
	marketer *models.Principal
	creator  *models.Principal
	project  *models.Project
}

func (suite *MarketingServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.service = NewMarketingService(suite.repos, suite.store, suite.notifier)
	suite.updates = NewTaskUpdateService(suite.repos, suite.store, suite.notifier)
	suite.admin = suite.createPrincipal(models.KindAdmin, "Admin")
	suite.manager = suite.createPrincipal(models.KindManager, "Boss")
	suite.marketer = suite.createPrincipal(models.KindMarketing, "Marketer")
	suite.creator = suite.createPrincipal(models.KindContentCreator, "Creator")
	suite.project = suite.createProject("Campaign", nil)
}

func (suite *MarketingServiceTestSuite) createTask(actor *models.Principal, assignees ...*models.Principal) *models.MarketingTask {
	refs := make([]models.PrincipalRef, 0, len(assignees))
	for _, a := range assignees {
		refs = append(refs, a.Ref())
	}
	task, err := suite.service.Create(suite.ctx, actor, MarketingTaskInput{
		TaskName:        "Spring launch",
		TaskDescription: "Social posts",
		ProjectID:       suite.project.ID,
		Assignees:       refs,
		StartDate:       time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	})
	suite.Require().NoError(err)
	return task
}

func (suite *MarketingServiceTestSuite) TestCreate_ByManagerAlsoBroadcasts() {
	task := suite.createTask(suite.manager, suite.marketer, suite.creator)

	suite.Equal(models.PriorityMedium, task.Priority)
	suite.Equal(models.MarketingPending, task.Status)
	suite.Len(task.Assignees, 2)

	suite.Len(suite.directTo(suite.marketer.Ref()), 1)
	suite.Len(suite.directTo(suite.creator.Ref()), 1)
	suite.Len(suite.broadcasts(), 1)

	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.ElementsMatch([]string{suite.marketer.Email, suite.creator.Email}, sent[0].to)
}

func (suite *MarketingServiceTestSuite) TestCreate_ByAdminSkipsBroadcast() {
	suite.createTask(suite.admin, suite.marketer)
	suite.Empty(suite.broadcasts())
	suite.Len(suite.notifications(), 1)
}

func (suite *MarketingServiceTestSuite) TestCreate_RejectsInvalidAssignees() {
	dev := suite.createPrincipal(models.KindDeveloper, "Dev")

	_, err := suite.service.Create(suite.ctx, suite.admin, MarketingTaskInput{
		TaskName:  "Wrong kind",
		ProjectID: suite.project.ID,
		Assignees: []models.PrincipalRef{dev.Ref()},
	})
	suite.ErrorIs(err, ErrInvalidAssignee)

	_, err = suite.service.Create(suite.ctx, suite.admin, MarketingTaskInput{
		TaskName:  "Missing",
		ProjectID: suite.project.ID,
		Assignees: []models.PrincipalRef{{Kind: models.KindMarketing, ID: 999}},
	})
	suite.ErrorIs(err, ErrInvalidAssignee)

	_, err = suite.service.Create(suite.ctx, suite.admin, MarketingTaskInput{
		TaskName:  "Bad priority",
		ProjectID: suite.project.ID,
		Priority:  "urgent",
	})
	suite.ErrorIs(err, ErrInvalidPriority)
}

func (suite *MarketingServiceTestSuite) TestUpdateLeads_Permissions() {
	task := suite.createTask(suite.manager, suite.marketer)

	_, err := suite.service.UpdateLeads(suite.ctx, suite.creator, task.ID, 4)
	suite.ErrorIs(err, ErrNotAssignee)

	_, err = suite.service.UpdateLeads(suite.ctx, suite.marketer, task.ID, -1)
	suite.ErrorIs(err, ErrInvalidLeads)

	updated, err := suite.service.UpdateLeads(suite.ctx, suite.marketer, task.ID, 12)
	suite.Require().NoError(err)
	suite.Equal(12, updated.Leads)

	// the creator hears about it
	notes := suite.directTo(suite.manager.Ref())
	suite.Require().Len(notes, 1)
	suite.Equal("Leads updated for task: Spring launch. New leads count: 12", notes[0].Content)

	// admins are not restricted to assigned tasks
	_, err = suite.service.UpdateLeads(suite.ctx, suite.admin, task.ID, 3)
	suite.NoError(err)
}

func (suite *MarketingServiceTestSuite) TestUpdate_ReplacesAssignees() {
	task := suite.createTask(suite.manager, suite.marketer)

	refs := []models.PrincipalRef{suite.creator.Ref()}
	status := models.MarketingInProgress
	updated, err := suite.service.Update(suite.ctx, suite.manager, task.ID, MarketingTaskUpdateInput{
		Assignees: &refs,
		Status:    &status,
	})
	suite.Require().NoError(err)
	suite.Equal(models.MarketingInProgress, updated.Status)

	assigned, err := suite.service.ListAssigned(suite.creator.Ref())
	suite.Require().NoError(err)
	suite.Len(assigned, 1)

	assigned, err = suite.service.ListAssigned(suite.marketer.Ref())
	suite.Require().NoError(err)
	suite.Empty(assigned)
}

func (suite *MarketingServiceTestSuite) TestTaskUpdates_AuthorshipAndComments() {
	task := suite.createTask(suite.manager, suite.marketer, suite.creator)

	_, err := suite.updates.Create(suite.ctx, suite.manager, task.ID, TaskUpdateInput{Description: "Not mine"})
	suite.ErrorIs(err, ErrNotAssignee)

	update, err := suite.updates.Create(suite.ctx, suite.marketer, task.ID, TaskUpdateInput{
		Description: "Week one",
		LeadsInfo:   []models.LeadContact{{Name: "Jane", Contact: "555"}},
		Attachments: []Upload{upload("report.pdf", "pdf")},
	})
	suite.Require().NoError(err)
	suite.Equal("Marketer", update.UpdatedByName)
	suite.Len(update.Attachments, 1)

	description := "Edited"
	_, err = suite.updates.Update(suite.ctx, suite.creator, update.ID, TaskUpdateEditInput{Description: &description})
	suite.ErrorIs(err, ErrNotTaskUpdateAuthor)

	withComment, err := suite.updates.AddComment(suite.ctx, suite.manager, update.ID, "Nice work")
	suite.Require().NoError(err)
	suite.Require().Len(withComment.Comments, 1)
	comment := withComment.Comments[0]

	_, err = suite.updates.DeleteComment(suite.ctx, suite.creator, update.ID, comment.ID)
	suite.ErrorIs(err, ErrNotCommentAuthor)

	// admins may delete any comment
	cleared, err := suite.updates.DeleteComment(suite.ctx, suite.admin, update.ID, comment.ID)
	suite.Require().NoError(err)
	suite.Empty(cleared.Comments)

	suite.ErrorIs(suite.updates.Delete(suite.ctx, suite.creator, update.ID), ErrNotTaskUpdateAuthor)
	suite.Require().NoError(suite.updates.Delete(suite.ctx, suite.marketer, update.ID))
	suite.Equal(0, suite.store.Len())
}

func (suite *MarketingServiceTestSuite) TestDelete_RemovesUpdatesAndFiles() {
	task := suite.createTask(suite.manager, suite.marketer)
	_, err := suite.updates.Create(suite.ctx, suite.marketer, task.ID, TaskUpdateInput{
		Description: "Week one",
		Attachments: []Upload{upload("report.pdf", "pdf")},
	})
	suite.Require().NoError(err)
	suite.Equal(1, suite.store.Len())

	suite.Require().NoError(suite.service.Delete(suite.ctx, suite.manager, task.ID))

	_, err = suite.service.Get(task.ID)
	suite.ErrorIs(err, ErrMarketingTaskNotFound)
	byProject, err := suite.updates.ListByProject(suite.project.ID)
	suite.Require().NoError(err)
	suite.Empty(byProject)
	suite.Equal(0, suite.store.Len())
}

func TestMarketingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MarketingServiceTestSuite))
}
