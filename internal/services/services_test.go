package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

// recordingMailer keeps every message instead of sending it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// serviceSuite wires every service against an in-memory SQLite database.
type serviceSuite struct {
	suite.Suite
	db       *gorm.DB
	repos    *repository.Repositories
	store    *storage.MemoryStore
	hub      *realtime.Hub
	mail     *recordingMailer
	notifier *NotificationService
	ctx      context.Context
}

// SetupTest runs before each test
func (suite *serviceSuite) SetupTest() {
	// every connection to :memory: opens a fresh database
	suite.useDatabase(":memory:", 1)
}

// useDatabase rebuilds the repositories and notifier on the SQLite
// database at dsn.
func (suite *serviceSuite) useDatabase(dsn string, maxConns int) {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(maxConns)
	suite.T().Cleanup(func() {
		sqlDB.Close()
	})

	suite.Require().NoError(suite.db.AutoMigrate(database.Models()...))

	suite.repos = repository.New(suite.db)
	suite.store = storage.NewMemoryStore("http://files.test")
	suite.hub = realtime.NewHub()
	suite.mail = &recordingMailer{}
	suite.notifier = NewNotificationService(suite.repos, suite.hub, suite.mail)
	suite.ctx = context.Background()
}

// TearDownTest runs after each test
func (suite *serviceSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *serviceSuite) createPrincipal(kind models.PrincipalKind, name string) *models.Principal {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	suite.Require().NoError(err)

	p := &models.Principal{
		Kind:         kind,
		Username:     name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: string(hash),
	}
	suite.Require().NoError(suite.repos.Principals.Create(p))
	return p
}

func (suite *serviceSuite) addToTeam(manager *models.Principal, members ...*models.Principal) {
	entries := make([]models.ManagerMember, 0, len(members))
	for _, m := range members {
		entries = append(entries, models.ManagerMember{
			MemberKind: m.Kind,
			MemberID:   m.ID,
			MemberName: m.Username,
			AssignedAt: time.Now(),
		})
	}
	suite.Require().NoError(suite.repos.Principals.AddMembers(manager.ID, entries))
}

func (suite *serviceSuite) createProject(title string, deadline *time.Time, developers ...*models.Principal) *models.Project {
	ids := make([]uint64, 0, len(developers))
	for _, d := range developers {
		ids = append(ids, d.ID)
	}
	project := &models.Project{
		Title:       title,
		Description: title + " description",
		Deadline:    deadline,
		Status:      models.StatusAssigned,
		CreatedBy:   models.PrincipalRef{Kind: models.KindAdmin, ID: 1},
	}
	suite.Require().NoError(suite.repos.Projects.Create(project, ids))
	return project
}

func (suite *serviceSuite) notifications() []models.Notification {
	var all []models.Notification
	suite.Require().NoError(suite.db.Order("id ASC").Find(&all).Error)
	return all
}

func (suite *serviceSuite) directTo(ref models.PrincipalRef) []models.Notification {
	var found []models.Notification
	for _, n := range suite.notifications() {
		if n.Scope == models.ScopeDirect && n.Recipient == ref {
			found = append(found, n)
		}
	}
	return found
}

func (suite *serviceSuite) broadcasts() []models.Notification {
	var found []models.Notification
	for _, n := range suite.notifications() {
		if n.Scope == models.ScopeBroadcast {
			found = append(found, n)
		}
	}
	return found
}

func upload(name, content string) Upload {
	return Upload{Filename: name, Content: strings.NewReader(content)}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
