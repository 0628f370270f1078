package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

type ProjectServiceTestSuite struct {
	serviceSuite
	service *ProjectService
	admin   *models.Principal
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.service = NewProjectService(suite.repos, suite.store, suite.notifier)
	suite.admin = suite.createPrincipal(models.KindAdmin, "Admin")
}

func (suite *ProjectServiceTestSuite) TestCreate_FansOutToDevelopersManagersAndAdmins() {
	dev1 := suite.createPrincipal(models.KindDeveloper, "Dev1")
	dev2 := suite.createPrincipal(models.KindDeveloper, "Dev2")
	m1 := suite.createPrincipal(models.KindManager, "Manager1")
	m2 := suite.createPrincipal(models.KindManager, "Manager2")
	suite.addToTeam(m1, dev1, dev2)
	suite.addToTeam(m2, dev2)

	project, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{
		Title:        "Website",
		Description:  "Rebuild the site",
		Deadline:     datePtr(2026, time.March, 1),
		DeveloperIDs: []uint64{dev1.ID, dev2.ID},
		Docs:         []Upload{upload("brief.pdf", "brief")},
	})
	suite.Require().NoError(err)
	suite.Equal(models.StatusAssigned, project.Status)
	suite.ElementsMatch([]uint64{dev1.ID, dev2.ID}, project.DeveloperIDs())
	suite.Require().Len(project.RelatedDocs, 1)
	suite.True(suite.store.Has(project.RelatedDocs[0]))

	// two developers, two distinct managers, one broadcast
	suite.Len(suite.notifications(), 5)
	suite.Len(suite.broadcasts(), 1)
	suite.Len(suite.directTo(m1.Ref()), 1)
	suite.Len(suite.directTo(m2.Ref()), 1)
	for _, n := range suite.notifications() {
		suite.Equal("New Project created: Website", n.Content)
		suite.Equal(models.NotifyProject, n.Type)
		suite.Require().NotNil(n.RelatedID)
		suite.Equal(project.ID, *n.RelatedID)
	}

	event, err := suite.repos.Events.FindByRelated(models.EventProjectDeadline, project.ID)
	suite.Require().NoError(err)
	suite.Equal("Project Assigned: Website", event.Title)
	suite.True(event.IsAllDay)
	suite.True(event.EventDate.Equal(*project.Deadline))
	suite.ElementsMatch([]models.PrincipalRef{dev1.Ref(), dev2.Ref()}, event.ParticipantRefs())

	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.ElementsMatch([]string{dev1.Email, dev2.Email}, sent[0].to)
	suite.Equal("Assigned to a New Project: Website", sent[0].subject)
}

func (suite *ProjectServiceTestSuite) TestCreate_WithoutDeadlineHasNoEvent() {
	project, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{Title: "Internal"})
	suite.Require().NoError(err)

	events, err := suite.repos.Events.List(repository.EventFilter{})
	suite.Require().NoError(err)
	suite.Empty(events)

	// only the broadcast, no developers
	suite.Len(suite.notifications(), 1)
	suite.Empty(suite.mail.Sent())
	suite.NotZero(project.ID)
}

func (suite *ProjectServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{Title: "  "})
	suite.ErrorIs(err, ErrProjectTitleRequired)

	_, err = suite.service.Create(suite.ctx, suite.admin, ProjectInput{Title: "X", Status: "Done"})
	suite.ErrorIs(err, ErrInvalidWorkStatus)

	_, err = suite.service.Create(suite.ctx, suite.admin, ProjectInput{Title: "X", DeveloperIDs: []uint64{999}})
	suite.ErrorIs(err, ErrInvalidDeveloper)

	suite.Empty(suite.notifications())
}

func (suite *ProjectServiceTestSuite) TestCreate_RollsBackWhenNotificationsFail() {
	dev := suite.createPrincipal(models.KindDeveloper, "Dev")
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.Notification{}))

	_, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{
		Title:        "Half done",
		Deadline:     datePtr(2026, time.March, 1),
		DeveloperIDs: []uint64{dev.ID},
		Docs:         []Upload{upload("brief.pdf", "brief")},
	})
	suite.Require().Error(err)

	var projects, events int64
	suite.Require().NoError(suite.db.Model(&models.Project{}).Count(&projects).Error)
	suite.Require().NoError(suite.db.Model(&models.CalendarEvent{}).Count(&events).Error)
	suite.Zero(projects)
	suite.Zero(events)
	// uploaded documents are discarded again
	suite.Equal(0, suite.store.Len())
	suite.Empty(suite.mail.Sent())
}

func (suite *ProjectServiceTestSuite) TestUpdate_RefreshesDeadlineEvent() {
	dev := suite.createPrincipal(models.KindDeveloper, "Dev")
	project, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{
		Title:    "Website",
		Deadline: datePtr(2026, time.March, 1),
	})
	suite.Require().NoError(err)

	title := "Portal"
	newDeadline := datePtr(2026, time.April, 15)
	ids := []uint64{dev.ID}
	_, err = suite.service.Update(suite.ctx, suite.admin, project.ID, ProjectUpdateInput{
		Title:        &title,
		Deadline:     newDeadline,
		DeveloperIDs: &ids,
	})
	suite.Require().NoError(err)

	event, err := suite.repos.Events.FindByRelated(models.EventProjectDeadline, project.ID)
	suite.Require().NoError(err)
	suite.Equal("Project Assigned: Portal", event.Title)
	suite.True(event.EventDate.Equal(*newDeadline))
	suite.Equal([]models.PrincipalRef{dev.Ref()}, event.ParticipantRefs())

	// clearing the deadline drops the event
	_, err = suite.service.Update(suite.ctx, suite.admin, project.ID, ProjectUpdateInput{ClearDeadline: true})
	suite.Require().NoError(err)
	_, err = suite.repos.Events.FindByRelated(models.EventProjectDeadline, project.ID)
	suite.Error(err)
}

func (suite *ProjectServiceTestSuite) TestUpdate_AppendsAndRemovesDocs() {
	project, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{
		Title: "Docs",
		Docs:  []Upload{upload("a.txt", "a"), upload("b.txt", "b")},
	})
	suite.Require().NoError(err)
	first, second := project.RelatedDocs[0], project.RelatedDocs[1]

	updated, err := suite.service.Update(suite.ctx, suite.admin, project.ID, ProjectUpdateInput{
		Docs:       []Upload{upload("c.txt", "c")},
		RemoveDocs: []string{first},
	})
	suite.Require().NoError(err)
	suite.Len(updated.RelatedDocs, 2)
	suite.Equal(second, updated.RelatedDocs[0])
	suite.False(suite.store.Has(first))
	suite.True(suite.store.Has(updated.RelatedDocs[1]))
}

func (suite *ProjectServiceTestSuite) TestDelete_RemovesEventsAndFiles() {
	dev := suite.createPrincipal(models.KindDeveloper, "Dev")
	manager := suite.createPrincipal(models.KindManager, "Boss")
	suite.addToTeam(manager, dev)

	project, err := suite.service.Create(suite.ctx, suite.admin, ProjectInput{
		Title:        "Doomed",
		Deadline:     datePtr(2026, time.May, 1),
		DeveloperIDs: []uint64{dev.ID},
		Docs:         []Upload{upload("notes.md", "x")},
	})
	suite.Require().NoError(err)
	suite.Equal(1, suite.store.Len())

	suite.Require().NoError(suite.service.Delete(suite.ctx, project.ID))

	_, err = suite.service.Get(project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
	_, err = suite.repos.Events.FindByRelated(models.EventProjectDeadline, project.ID)
	suite.Error(err)
	suite.Equal(0, suite.store.Len())

	deleted := suite.directTo(dev.Ref())
	suite.Require().Len(deleted, 2)
	suite.Equal("Project deleted: Doomed", deleted[1].Content)
	suite.Nil(deleted[1].RelatedID)

	last := suite.mail.Sent()[len(suite.mail.Sent())-1]
	suite.Equal("Project Deleted: Doomed", last.subject)
	suite.ElementsMatch([]string{dev.Email, manager.Email}, last.to)
}

func (suite *ProjectServiceTestSuite) TestUpdateStatusByDeveloper() {
	dev := suite.createPrincipal(models.KindDeveloper, "Dev")
	other := suite.createPrincipal(models.KindDeveloper, "Other")
	project := suite.createProject("Status", nil, dev)

	updated, err := suite.service.UpdateStatusByDeveloper(dev, project.ID, models.StatusTesting)
	suite.Require().NoError(err)
	suite.Equal(models.StatusTesting, updated.Status)
	suite.Equal(dev.Ref(), updated.LastUpdatedBy)

	_, err = suite.service.UpdateStatusByDeveloper(other, project.ID, models.StatusCompleted)
	suite.ErrorIs(err, ErrNotAssigned)

	_, err = suite.service.UpdateStatusByDeveloper(dev, project.ID, "Finished")
	suite.ErrorIs(err, ErrInvalidWorkStatus)
}

func (suite *ProjectServiceTestSuite) TestListingAndClientProjects() {
	dev := suite.createPrincipal(models.KindDeveloper, "Dev")
	p1 := suite.createProject("One", nil, dev)
	p2 := suite.createProject("Two", nil)
	client := suite.createPrincipal(models.KindClient, "Client")
	suite.Require().NoError(suite.repos.Principals.SetClientProjects(client.ID, []uint64{p2.ID}))

	params := utils.PaginationParams{Page: 1, Limit: 10}
	all, total, err := suite.service.List(&params)
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(all, 2)

	mine, err := suite.service.DeveloperProjects(dev.ID)
	suite.Require().NoError(err)
	suite.Require().Len(mine, 1)
	suite.Equal(p1.ID, mine[0].ID)

	theirs, err := suite.service.ClientProjects(client.ID)
	suite.Require().NoError(err)
	suite.Require().Len(theirs, 1)
	suite.Equal(p2.ID, theirs[0].ID)
	suite.NotNil(theirs[0].Tasks)

	assigned, err := suite.service.ListByStatus(models.StatusAssigned)
	suite.Require().NoError(err)
	suite.Len(assigned, 2)
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
