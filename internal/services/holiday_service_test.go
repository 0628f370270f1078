package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

type HolidayServiceTestSuite struct {
	serviceSuite
	service   *HolidayService
	developer *models.Principal
	manager   *models.Principal
	appliedOn time.Time
}

func (suite *HolidayServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.setupFixtures()
}

func (suite *HolidayServiceTestSuite) setupFixtures() {
	suite.service = NewHolidayService(suite.repos, suite.notifier)
	suite.appliedOn = time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.appliedOn }

	suite.developer = suite.createPrincipal(models.KindDeveloper, "Dev")
	suite.manager = suite.createPrincipal(models.KindManager, "Boss")
	suite.addToTeam(suite.manager, suite.developer)
}

func (suite *HolidayServiceTestSuite) apply() (*models.Holiday, *models.CalendarEvent) {
	holiday, event, err := suite.service.Apply(suite.ctx, suite.developer, HolidayInput{
		StartDate: *datePtr(2026, time.July, 1),
		EndDate:   *datePtr(2026, time.July, 5),
		Reason:    "Family trip",
	})
	suite.Require().NoError(err)
	return holiday, event
}

func (suite *HolidayServiceTestSuite) TestApply_CreatesEventAndNotifies() {
	holiday, event := suite.apply()

	suite.Equal(models.HolidayPending, holiday.Status)
	suite.Equal("Dev", holiday.DeveloperName)
	suite.True(holiday.AppliedOn.Equal(suite.appliedOn))

	suite.Equal(models.EventHoliday, event.EventType)
	suite.Equal("Holiday", event.Title)
	suite.Equal("Family trip", event.Description)
	suite.Equal(models.EventActive, event.Status)
	suite.True(event.IsAllDay)
	suite.Require().NotNil(event.RelatedID)
	suite.Equal(holiday.ID, *event.RelatedID)
	suite.Equal(suite.developer.Ref(), event.CreatedBy)
	suite.Equal([]models.PrincipalRef{suite.developer.Ref()}, event.ParticipantRefs())

	suite.Len(suite.broadcasts(), 1)
	direct := suite.directTo(suite.manager.Ref())
	suite.Require().Len(direct, 1)
	suite.Equal("Holiday request from Dev", direct[0].Content)
	suite.Empty(suite.directTo(suite.developer.Ref()))
}

func (suite *HolidayServiceTestSuite) TestApply_Validation() {
	_, _, err := suite.service.Apply(suite.ctx, suite.developer, HolidayInput{
		StartDate: *datePtr(2026, time.July, 1),
		EndDate:   *datePtr(2026, time.July, 5),
		Reason:    " ",
	})
	suite.ErrorIs(err, ErrHolidayReasonRequired)

	_, _, err = suite.service.Apply(suite.ctx, suite.developer, HolidayInput{
		StartDate: *datePtr(2026, time.July, 5),
		EndDate:   *datePtr(2026, time.July, 1),
		Reason:    "Backwards",
	})
	suite.ErrorIs(err, ErrHolidayDatesOutOfOrder)
}

func (suite *HolidayServiceTestSuite) TestWithdraw_DisablesEvent() {
	holiday, _ := suite.apply()

	withdrawn, event, err := suite.service.Withdraw(suite.developer, holiday.ID)
	suite.Require().NoError(err)
	suite.Equal(models.HolidayWithdrawn, withdrawn.Status)
	suite.Equal("Withdrawn Holiday", event.Title)
	suite.Equal(models.EventNotActive, event.Status)

	stored, err := suite.repos.Events.FindByRelated(models.EventHoliday, holiday.ID)
	suite.Require().NoError(err)
	suite.Equal(event.ID, stored.ID)
	suite.Equal(models.EventNotActive, stored.Status)

	_, err = suite.service.Decide(suite.ctx, holiday.ID, models.HolidayApproved)
	suite.ErrorIs(err, ErrHolidayClosed)
}

func (suite *HolidayServiceTestSuite) TestWithdraw_Rules() {
	holiday, _ := suite.apply()

	other := suite.createPrincipal(models.KindDeveloper, "Other")
	_, _, err := suite.service.Withdraw(other, holiday.ID)
	suite.ErrorIs(err, ErrHolidayNotFound)

	_, err = suite.service.Decide(suite.ctx, holiday.ID, models.HolidayApproved)
	suite.Require().NoError(err)

	_, _, err = suite.service.Withdraw(suite.developer, holiday.ID)
	suite.ErrorIs(err, ErrHolidayApproved)
}

// useFileDatabase moves the suite onto a file database with two
// connections so a second writer can commit while a transaction is open.
func (suite *HolidayServiceTestSuite) useFileDatabase() {
	path := filepath.Join(suite.T().TempDir(), "holidays.db")
	suite.useDatabase(path+"?_busy_timeout=5000", 2)
	suite.setupFixtures()
}

// commitBeforeStatusWrite commits status on the holiday from another
// connection just before the next holidays UPDATE runs.
func (suite *HolidayServiceTestSuite) commitBeforeStatusWrite(id uint64, status models.HolidayStatus) *bool {
	fired := false
	err := suite.db.Callback().Update().Before("gorm:update").Register("test:concurrent_holiday_status", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "holidays" {
			return
		}
		fired = true
		suite.Require().NoError(suite.db.Exec("UPDATE holidays SET status = ? WHERE id = ?", status, id).Error)
	})
	suite.Require().NoError(err)
	return &fired
}

func (suite *HolidayServiceTestSuite) TestWithdraw_LosesToConcurrentApproval() {
	suite.useFileDatabase()
	holiday, event := suite.apply()

	fired := suite.commitBeforeStatusWrite(holiday.ID, models.HolidayApproved)

	_, _, err := suite.service.Withdraw(suite.developer, holiday.ID)
	suite.True(*fired)
	suite.ErrorIs(err, ErrHolidayApproved)

	stored, err := suite.service.Get(holiday.ID)
	suite.Require().NoError(err)
	suite.Equal(models.HolidayApproved, stored.Status)

	// the event was not disabled
	storedEvent, err := suite.repos.Events.FindByID(event.ID)
	suite.Require().NoError(err)
	suite.Equal(models.EventActive, storedEvent.Status)
}

func (suite *HolidayServiceTestSuite) TestDecide_LosesToConcurrentWithdrawal() {
	suite.useFileDatabase()
	holiday, _ := suite.apply()

	fired := suite.commitBeforeStatusWrite(holiday.ID, models.HolidayWithdrawn)

	_, err := suite.service.Decide(suite.ctx, holiday.ID, models.HolidayApproved)
	suite.True(*fired)
	suite.ErrorIs(err, ErrHolidayClosed)

	stored, err := suite.service.Get(holiday.ID)
	suite.Require().NoError(err)
	suite.Equal(models.HolidayWithdrawn, stored.Status)
	suite.Empty(suite.directTo(suite.developer.Ref()))
}

func (suite *HolidayServiceTestSuite) TestUpdate_KeepsConcurrentDecision() {
	suite.useFileDatabase()
	holiday, _ := suite.apply()

	fired := suite.commitBeforeStatusWrite(holiday.ID, models.HolidayApproved)

	reason := "Shorter trip"
	updated, err := suite.service.Update(holiday.ID, HolidayUpdateInput{Reason: &reason})
	suite.Require().NoError(err)
	suite.True(*fired)
	suite.Equal("Shorter trip", updated.Reason)
	suite.Equal(models.HolidayApproved, updated.Status)

	stored, err := suite.service.Get(holiday.ID)
	suite.Require().NoError(err)
	suite.Equal(models.HolidayApproved, stored.Status)
}

func (suite *HolidayServiceTestSuite) TestDecide_NotifiesDeveloper() {
	holiday, _ := suite.apply()

	_, err := suite.service.Decide(suite.ctx, holiday.ID, models.HolidayPending)
	suite.ErrorIs(err, ErrInvalidHolidayDecision)

	denied, err := suite.service.Decide(suite.ctx, holiday.ID, models.HolidayDenied)
	suite.Require().NoError(err)
	suite.Equal(models.HolidayDenied, denied.Status)

	direct := suite.directTo(suite.developer.Ref())
	suite.Require().Len(direct, 1)
	suite.Equal("Your holiday request has been denied", direct[0].Content)

	// a denied request can still be approved
	approved, err := suite.service.Decide(suite.ctx, holiday.ID, models.HolidayApproved)
	suite.Require().NoError(err)
	suite.Equal(models.HolidayApproved, approved.Status)
}

func (suite *HolidayServiceTestSuite) TestUpdateAndDelete() {
	holiday, event := suite.apply()

	reason := "Moved trip"
	end := datePtr(2026, time.July, 9)
	updated, err := suite.service.Update(holiday.ID, HolidayUpdateInput{EndDate: end, Reason: &reason})
	suite.Require().NoError(err)
	suite.Equal("Moved trip", updated.Reason)

	stored, err := suite.repos.Events.FindByID(event.ID)
	suite.Require().NoError(err)
	suite.Equal("Moved trip", stored.Description)
	suite.Require().NotNil(stored.EndDate)
	suite.True(stored.EndDate.Equal(*end))

	early := datePtr(2026, time.June, 1)
	_, err = suite.service.Update(holiday.ID, HolidayUpdateInput{EndDate: early})
	suite.ErrorIs(err, ErrHolidayDatesOutOfOrder)

	suite.Require().NoError(suite.service.Delete(holiday.ID))
	_, err = suite.service.Get(holiday.ID)
	suite.ErrorIs(err, ErrHolidayNotFound)
	_, err = suite.repos.Events.FindByID(event.ID)
	suite.Error(err)
}

func (suite *HolidayServiceTestSuite) TestListByDeveloper() {
	suite.apply()
	suite.apply()

	holidays, err := suite.service.ListByDeveloper(suite.developer.ID)
	suite.Require().NoError(err)
	suite.Len(holidays, 2)

	_, err = suite.service.ListByDeveloper(999)
	suite.ErrorIs(err, ErrPrincipalNotFound)
}

func TestHolidayServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HolidayServiceTestSuite))
}
