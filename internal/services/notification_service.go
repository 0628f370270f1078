package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/mailer"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Realtime event names.
const (
	EventNotification = "notification"
	EventNewMessage   = "new_message"
)

// Fanout collects the notifications and emails produced by one mutation. The
// notifications are persisted inside the mutation's transaction and delivered
// to live rooms and mail after it commits.
type Fanout struct {
	notifications []models.Notification
	emails        []outboundEmail
}

type outboundEmail struct {
	to      []string
	subject string
	body    string
}

// Direct adds one notification per distinct recipient.
func (f *Fanout) Direct(recipients []models.PrincipalRef, kind string, relatedID uint64, content string) {
	seen := make(map[models.PrincipalRef]struct{}, len(recipients))
	for _, ref := range recipients {
		if ref.IsSystem() {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		f.notifications = append(f.notifications, newNotification(models.ScopeDirect, ref, kind, relatedID, content))
	}
}

// Broadcast adds one notification visible to admins.
func (f *Fanout) Broadcast(kind string, relatedID uint64, content string) {
	f.notifications = append(f.notifications, newNotification(models.ScopeBroadcast, models.SystemRef, kind, relatedID, content))
}

// Email queues a message for delivery after commit. Empty recipient lists are dropped.
func (f *Fanout) Email(to []string, subject, body string) {
	if len(to) == 0 {
		return
	}
	f.emails = append(f.emails, outboundEmail{to: to, subject: subject, body: body})
}

// Notifications returns the collected notifications.
func (f *Fanout) Notifications() []models.Notification {
	return f.notifications
}

// Persist writes the collected notifications.
func (f *Fanout) Persist(repo repository.NotificationRepository) error {
	if err := repo.CreateBatch(f.notifications); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func newNotification(scope models.NotificationScope, ref models.PrincipalRef, kind string, relatedID uint64, content string) models.Notification {
	n := models.Notification{
		Scope:     scope,
		Recipient: ref,
		Content:   content,
		Type:      kind,
	}
	if relatedID != 0 {
		id := relatedID
		n.RelatedID = &id
	}
	return n
}

// NotificationService delivers committed fan-outs and serves notification inboxes.
type NotificationService struct {
	repos     *repository.Repositories
	publisher realtime.Publisher
	mailer    mailer.Mailer
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repository.Repositories, publisher realtime.Publisher, m mailer.Mailer) *NotificationService {
	if publisher == nil {
		publisher = realtime.Discard{}
	}
	if m == nil {
		m = mailer.Noop{}
	}
	return &NotificationService{repos: repos, publisher: publisher, mailer: m}
}

// Deliver publishes every notification to its room and sends queued emails.
// Mail failures are logged and dropped.
func (s *NotificationService) Deliver(ctx context.Context, f *Fanout) {
	for _, n := range f.notifications {
		room := constants.BroadcastRoom
		if n.Scope == models.ScopeDirect {
			room = n.Recipient.Room()
		}
		s.publisher.Publish(room, EventNotification, n)
	}

	for _, e := range f.emails {
		if err := s.mailer.Send(ctx, e.to, e.subject, e.body); err != nil {
			log.Printf("Failed to send email %q to %d recipients: %v", e.subject, len(e.to), err)
		}
	}
}

// Publish pushes a single event to a principal's room.
func (s *NotificationService) Publish(ref models.PrincipalRef, name string, payload interface{}) {
	s.publisher.Publish(ref.Room(), name, payload)
}

// SendEmail sends one message best-effort.
func (s *NotificationService) SendEmail(ctx context.Context, to []string, subject, body string) {
	s.Deliver(ctx, &Fanout{emails: []outboundEmail{{to: to, subject: subject, body: body}}})
}

// List returns the notifications a principal sees. Admins see broadcasts.
func (s *NotificationService) List(p *models.Principal, params utils.PaginationParams) ([]models.Notification, int64, error) {
	var (
		notifications []models.Notification
		total         int64
		err           error
	)
	if p.Kind == models.KindAdmin {
		notifications, total, err = s.repos.Notifications.ListBroadcast(params)
	} else {
		notifications, total, err = s.repos.Notifications.ListForRecipient(p.Ref(), params)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// UnreadCount counts the unread direct notifications of a principal.
func (s *NotificationService) UnreadCount(p *models.Principal) (int64, error) {
	count, err := s.repos.Notifications.CountUnread(p.Ref())
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification visible to the principal as read.
func (s *NotificationService) MarkRead(p *models.Principal, id uint64) error {
	affected, err := s.repos.Notifications.MarkRead(id, p.Ref(), p.Kind == models.KindAdmin)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every notification visible to the principal as read.
func (s *NotificationService) MarkAllRead(p *models.Principal) error {
	if err := s.repos.Notifications.MarkAllRead(p.Ref(), p.Kind == models.KindAdmin); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// projectAudience resolves the developers of a project and every manager
// owning one of them.
func projectAudience(principals repository.PrincipalRepository, developerIDs []uint64) ([]models.PrincipalRef, []models.Principal, error) {
	refs := developerRefs(developerIDs)

	managers, err := principals.ManagersOf(models.KindDeveloper, developerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve managers: %w", err)
	}
	for _, m := range managers {
		refs = append(refs, m.Ref())
	}
	return refs, managers, nil
}

func developerRefs(ids []uint64) []models.PrincipalRef {
	refs := make([]models.PrincipalRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, models.PrincipalRef{Kind: models.KindDeveloper, ID: id})
	}
	return refs
}

// emailsOf resolves the addresses of refs whose kind is in kinds.
func emailsOf(principals repository.PrincipalRepository, refs []models.PrincipalRef, kinds ...models.PrincipalKind) ([]string, error) {
	allowed := make(map[models.PrincipalKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}

	filtered := make([]models.PrincipalRef, 0, len(refs))
	for _, ref := range refs {
		if len(kinds) == 0 || allowed[ref.Kind] {
			filtered = append(filtered, ref)
		}
	}

	found, err := principals.FindByRefs(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient emails: %w", err)
	}

	seen := make(map[string]struct{}, len(found))
	emails := make([]string, 0, len(found))
	for _, p := range found {
		if p.Email == "" {
			continue
		}
		if _, ok := seen[p.Email]; ok {
			continue
		}
		seen[p.Email] = struct{}{}
		emails = append(emails, p.Email)
	}
	return emails, nil
}
