package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/repository"
)

var (
	ErrInvalidMemberKind = errors.New("team members must be developers, marketing or content creators")
)

// TeamService manages the members owned by managers.
type TeamService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewTeamService creates a new TeamService
func NewTeamService(repos *repository.Repositories) *TeamService {
	return &TeamService{repos: repos, now: time.Now}
}

func teamKind(kind models.PrincipalKind) bool {
	switch kind {
	case models.KindDeveloper, models.KindMarketing, models.KindContentCreator:
		return true
	}
	return false
}

// AddMembers adds principals of one kind to a manager's team. Unknown ids and
// principals already on the team are skipped. It returns the full team afterwards.
func (s *TeamService) AddMembers(managerID uint64, kind models.PrincipalKind, ids []uint64) ([]models.ManagerMember, error) {
	if !teamKind(kind) {
		return nil, ErrInvalidMemberKind
	}

	refs := make([]models.PrincipalRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, models.PrincipalRef{Kind: kind, ID: id})
	}

	found, err := s.repos.Principals.FindByRefs(refs)
	if err != nil {
		return nil, fmt.Errorf("failed to find members: %w", err)
	}

	members := make([]models.ManagerMember, 0, len(found))
	for _, p := range found {
		members = append(members, models.ManagerMember{
			ManagerID:  managerID,
			MemberKind: p.Kind,
			MemberID:   p.ID,
			MemberName: p.Username,
			AssignedAt: s.now(),
		})
	}

	if len(members) > 0 {
		if err := s.repos.Principals.AddMembers(managerID, members); err != nil {
			return nil, fmt.Errorf("failed to add members: %w", err)
		}
	}

	return s.ListMembers(managerID)
}

// ListMembers lists a manager's team, optionally restricted to some kinds.
func (s *TeamService) ListMembers(managerID uint64, kinds ...models.PrincipalKind) ([]models.ManagerMember, error) {
	members, err := s.repos.Principals.ListMembers(managerID, kinds...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// TeamSize counts every member of a manager's team.
func (s *TeamService) TeamSize(managerID uint64) (int, error) {
	members, err := s.ListMembers(managerID)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// Developers loads the developer principals on a manager's team.
func (s *TeamService) Developers(managerID uint64) ([]models.Principal, error) {
	members, err := s.ListMembers(managerID, models.KindDeveloper)
	if err != nil {
		return nil, err
	}

	refs := make([]models.PrincipalRef, 0, len(members))
	for _, m := range members {
		refs = append(refs, models.PrincipalRef{Kind: m.MemberKind, ID: m.MemberID})
	}
	developers, err := s.repos.Principals.FindByRefs(refs)
	if err != nil {
		return nil, fmt.Errorf("failed to load developers: %w", err)
	}
	return developers, nil
}
