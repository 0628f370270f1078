package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/models"
)

type CalendarServiceTestSuite struct {
	serviceSuite
	service  *CalendarService
	projects *ProjectService
	admin    *models.Principal
	dev      *models.Principal
	client   *models.Principal
}

func (suite *CalendarServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.service = NewCalendarService(suite.repos, suite.notifier)
	suite.projects = NewProjectService(suite.repos, suite.store, suite.notifier)
	suite.admin = suite.createPrincipal(models.KindAdmin, "Admin")
	suite.dev = suite.createPrincipal(models.KindDeveloper, "Dev")
	suite.client = suite.createPrincipal(models.KindClient, "Client")
}

func (suite *CalendarServiceTestSuite) deadlineEvent(project *models.Project) *models.CalendarEvent {
	event, err := suite.repos.Events.FindByRelated(models.EventProjectDeadline, project.ID)
	suite.Require().NoError(err)
	return event
}

func (suite *CalendarServiceTestSuite) TestCreate_NotifiesAndEmailsParticipants() {
	marketer := suite.createPrincipal(models.KindMarketing, "Marketer")

	event, err := suite.service.Create(suite.ctx, suite.admin, EventInput{
		Title:        "Kickoff",
		EventDate:    time.Date(2026, time.August, 3, 10, 0, 0, 0, time.UTC),
		EventType:    models.EventMeeting,
		Participants: []models.PrincipalRef{suite.dev.Ref(), suite.client.Ref(), marketer.Ref()},
	})
	suite.Require().NoError(err)
	suite.Equal(models.EventActive, event.Status)

	suite.Len(suite.directTo(suite.dev.Ref()), 1)
	suite.Len(suite.directTo(suite.client.Ref()), 1)
	suite.Len(suite.directTo(marketer.Ref()), 1)
	suite.Empty(suite.broadcasts())

	// marketing roles are notified but not emailed
	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.Equal("New Event: Kickoff", sent[0].subject)
	suite.ElementsMatch([]string{suite.dev.Email, suite.client.Email}, sent[0].to)

	meetings, err := suite.service.ActiveMeetings(suite.client.Ref())
	suite.Require().NoError(err)
	suite.Len(meetings, 1)
}

func (suite *CalendarServiceTestSuite) TestCreate_WithoutParticipantsBroadcasts() {
	event, err := suite.service.Create(suite.ctx, suite.dev, EventInput{
		Title:     "Focus time",
		EventDate: time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC),
	})
	suite.Require().NoError(err)
	suite.Equal(models.EventOther, event.EventType)

	suite.Len(suite.notifications(), 1)
	suite.Len(suite.broadcasts(), 1)
	suite.Empty(suite.mail.Sent())
}

func (suite *CalendarServiceTestSuite) TestCreate_Validation() {
	date := time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC)

	_, err := suite.service.Create(suite.ctx, suite.admin, EventInput{EventDate: date})
	suite.ErrorIs(err, ErrEventTitleRequired)

	_, err = suite.service.Create(suite.ctx, suite.admin, EventInput{Title: "No date"})
	suite.ErrorIs(err, ErrEventDateRequired)

	_, err = suite.service.Create(suite.ctx, suite.admin, EventInput{Title: "Bad", EventDate: date, EventType: "Party"})
	suite.ErrorIs(err, ErrInvalidEventType)

	_, err = suite.service.Create(suite.ctx, suite.admin, EventInput{
		Title:        "Bad",
		EventDate:    date,
		Participants: []models.PrincipalRef{{Kind: "robot", ID: 1}},
	})
	suite.ErrorIs(err, ErrInvalidParticipant)
}

func (suite *CalendarServiceTestSuite) TestProjectDeadlineFlowsToEvent() {
	project, err := suite.projects.Create(suite.ctx, suite.admin, ProjectInput{
		Title:        "Launch",
		Deadline:     datePtr(2026, time.September, 1),
		DeveloperIDs: []uint64{suite.dev.ID},
	})
	suite.Require().NoError(err)

	moved := datePtr(2026, time.September, 20)
	_, err = suite.projects.Update(suite.ctx, suite.admin, project.ID, ProjectUpdateInput{Deadline: moved})
	suite.Require().NoError(err)

	event := suite.deadlineEvent(project)
	suite.True(event.EventDate.Equal(*moved))

	involving, err := suite.service.ListInvolving(suite.dev.Ref())
	suite.Require().NoError(err)
	suite.Require().Len(involving, 1)
	suite.False(involving[0].ByMe)
}

func (suite *CalendarServiceTestSuite) TestDeadlineEventEditFlowsToProject() {
	project, err := suite.projects.Create(suite.ctx, suite.admin, ProjectInput{
		Title:       "Launch",
		Description: "Original",
		Deadline:    datePtr(2026, time.September, 1),
	})
	suite.Require().NoError(err)
	event := suite.deadlineEvent(project)

	title := "Relaunch"
	date := time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC)
	updated, err := suite.service.Update(suite.ctx, event.ID, EventUpdateInput{Title: &title, EventDate: &date})
	suite.Require().NoError(err)
	suite.Equal("Project Assigned: Relaunch", updated.Title)
	suite.Equal("Project Assigned: Relaunch", suite.deadlineEvent(project).Title)

	stored, err := suite.projects.Get(project.ID)
	suite.Require().NoError(err)
	suite.Equal("Relaunch", stored.Title)
	suite.Require().NotNil(stored.Deadline)
	suite.True(stored.Deadline.Equal(date))
	// fields that were not edited stay as they were
	suite.Equal("Original", stored.Description)

	// an already prefixed title is not prefixed twice
	title = "Project Assigned: Relaunch v2"
	updated, err = suite.service.Update(suite.ctx, event.ID, EventUpdateInput{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("Project Assigned: Relaunch v2", updated.Title)

	stored, err = suite.projects.Get(project.ID)
	suite.Require().NoError(err)
	suite.Equal("Relaunch v2", stored.Title)
}

func (suite *CalendarServiceTestSuite) TestDeleteDeadlineEventClearsProjectDeadline() {
	project, err := suite.projects.Create(suite.ctx, suite.admin, ProjectInput{
		Title:        "Launch",
		Deadline:     datePtr(2026, time.September, 1),
		DeveloperIDs: []uint64{suite.dev.ID},
	})
	suite.Require().NoError(err)
	event := suite.deadlineEvent(project)

	suite.Require().NoError(suite.service.Delete(suite.ctx, event.ID))

	stored, err := suite.projects.Get(project.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.Deadline)

	_, err = suite.service.Get(event.ID)
	suite.ErrorIs(err, ErrEventNotFound)

	cancelled := suite.directTo(suite.dev.Ref())
	suite.Require().NotEmpty(cancelled)
	suite.Contains(cancelled[len(cancelled)-1].Content, "has been cancelled")
}

func (suite *CalendarServiceTestSuite) TestDeadlineEditWithDeletedProject() {
	project, err := suite.projects.Create(suite.ctx, suite.admin, ProjectInput{
		Title:    "Gone",
		Deadline: datePtr(2026, time.September, 1),
	})
	suite.Require().NoError(err)
	event := suite.deadlineEvent(project)
	suite.Require().NoError(suite.repos.Projects.Delete(project.ID))

	title := "Project Assigned: Still gone"
	_, err = suite.service.Update(suite.ctx, event.ID, EventUpdateInput{Title: &title})
	suite.ErrorIs(err, ErrRelatedProjectGone)
}

func (suite *CalendarServiceTestSuite) TestUpdate_ReplacesParticipants() {
	event, err := suite.service.Create(suite.ctx, suite.admin, EventInput{
		Title:        "Standup",
		EventDate:    time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC),
		Participants: []models.PrincipalRef{suite.dev.Ref()},
	})
	suite.Require().NoError(err)

	participants := []models.PrincipalRef{suite.client.Ref()}
	status := models.EventNotActive
	updated, err := suite.service.Update(suite.ctx, event.ID, EventUpdateInput{
		Participants: &participants,
		Status:       &status,
	})
	suite.Require().NoError(err)
	suite.Equal(models.EventNotActive, updated.Status)
	suite.Require().Len(updated.Participants, 1)
	suite.Equal(event.ID, updated.Participants[0].EventID)
	suite.Equal(suite.client.Ref(), updated.Participants[0].Ref())

	stored, err := suite.service.Get(event.ID)
	suite.Require().NoError(err)
	suite.Equal(participants, stored.ParticipantRefs())
	suite.Len(suite.directTo(suite.client.Ref()), 1)

	bad := models.EventStatus("Paused")
	_, err = suite.service.Update(suite.ctx, event.ID, EventUpdateInput{Status: &bad})
	suite.ErrorIs(err, ErrInvalidEventStatus)
}

func TestCalendarServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CalendarServiceTestSuite))
}
