package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-hub-api/internal/models"
)

type MessageServiceTestSuite struct {
	serviceSuite
	service *MessageService
	admin   *models.Principal
	dev     *models.Principal
}

func (suite *MessageServiceTestSuite) SetupTest() {
	suite.serviceSuite.SetupTest()
	suite.service = NewMessageService(suite.repos, suite.notifier)
	suite.admin = suite.createPrincipal(models.KindAdmin, "Admin")
	suite.dev = suite.createPrincipal(models.KindDeveloper, "Dev")
}

func (suite *MessageServiceTestSuite) TestSend_PushesAndEmails() {
	sub := suite.hub.Subscribe(suite.dev.Ref().Room())
	defer suite.hub.Unsubscribe(sub)

	long := strings.Repeat("é", 150)
	message, err := suite.service.Send(suite.ctx, suite.admin, suite.dev.Ref(), long)
	suite.Require().NoError(err)
	suite.Equal(suite.admin.Ref(), message.Sender)
	suite.False(message.Read)

	ev := <-sub.C
	suite.Equal(EventNewMessage, ev.Name)

	sent := suite.mail.Sent()
	suite.Require().Len(sent, 1)
	suite.Equal([]string{suite.dev.Email}, sent[0].to)
	suite.Contains(sent[0].body, strings.Repeat("é", 100)+"...")
	suite.NotContains(sent[0].body, strings.Repeat("é", 101))
}

func (suite *MessageServiceTestSuite) TestSend_Rules() {
	client := suite.createPrincipal(models.KindClient, "Client")

	_, err := suite.service.Send(suite.ctx, suite.admin, client.Ref(), "hi")
	suite.ErrorIs(err, ErrInvalidMessageParty)

	_, err = suite.service.Send(suite.ctx, client, suite.admin.Ref(), "hi")
	suite.ErrorIs(err, ErrInvalidMessageParty)

	_, err = suite.service.Send(suite.ctx, suite.admin, models.PrincipalRef{Kind: models.KindManager, ID: 999}, "hi")
	suite.ErrorIs(err, ErrReceiverNotFound)

	_, err = suite.service.Send(suite.ctx, suite.admin, suite.dev.Ref(), "   ")
	suite.ErrorIs(err, ErrMessageContentRequired)
}

func (suite *MessageServiceTestSuite) TestConversationAndMarkRead() {
	first, err := suite.service.Send(suite.ctx, suite.admin, suite.dev.Ref(), "ping")
	suite.Require().NoError(err)
	_, err = suite.service.Send(suite.ctx, suite.dev, suite.admin.Ref(), "pong")
	suite.Require().NoError(err)

	conversation, err := suite.service.Conversation(suite.dev, suite.admin.Ref())
	suite.Require().NoError(err)
	suite.Require().Len(conversation, 2)
	suite.Equal("ping", conversation[0].Content)
	suite.Equal("pong", conversation[1].Content)

	unread, err := suite.service.UnreadCount(suite.dev)
	suite.Require().NoError(err)
	suite.Equal(int64(1), unread)

	// only the receiver can mark a message read
	_, err = suite.service.MarkRead(suite.admin, first.ID)
	suite.ErrorIs(err, ErrMessageNotFound)

	read, err := suite.service.MarkRead(suite.dev, first.ID)
	suite.Require().NoError(err)
	suite.True(read.Read)

	unread, err = suite.service.UnreadCount(suite.dev)
	suite.Require().NoError(err)
	suite.Zero(unread)
}

func TestMessageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceTestSuite))
}
