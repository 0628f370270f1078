package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB migrates a fresh in-memory SQLite database and closes it when
// the running test ends.
func openTestDB(s *suite.Suite) (*gorm.DB, *repository.Repositories) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() {
		sqlDB.Close()
	})

	s.Require().NoError(db.AutoMigrate(database.Models()...))
	database.SetDB(db)
	gin.SetMode(gin.TestMode)
	return db, repository.New(db)
}

func createTestPrincipal(s *suite.Suite, repos *repository.Repositories, kind models.PrincipalKind, name string) *models.Principal {
	p := &models.Principal{
		Kind:         kind,
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hashedpassword",
	}
	s.Require().NoError(repos.Principals.Create(p))
	return p
}

// newAuthContext builds a test context for principal with an optional JSON
// body and the route id parameter.
func newAuthContext(method, url string, body []byte, principal *models.Principal, id string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyPrincipal, principal)
	if id != "" {
		c.Params = gin.Params{{Key: "id", Value: id}}
	}
	return c, w
}
