package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PrincipalKind identifies which kind of actor a principal is.
type PrincipalKind string

const (
	KindAdmin          PrincipalKind = "admin"
	KindManager        PrincipalKind = "manager"
	KindDeveloper      PrincipalKind = "developer"
	KindClient         PrincipalKind = "client"
	KindMarketing      PrincipalKind = "marketing"
	KindContentCreator PrincipalKind = "content_creator"
	// KindSystem marks references that do not point at a stored principal.
	KindSystem PrincipalKind = "system"
)

// PrincipalKinds lists every kind that can authenticate.
var PrincipalKinds = []PrincipalKind{
	KindAdmin,
	KindManager,
	KindDeveloper,
	KindClient,
	KindMarketing,
	KindContentCreator,
}

// Valid reports whether k is one of the authenticating kinds.
func (k PrincipalKind) Valid() bool {
	for _, kind := range PrincipalKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// PrincipalRef is a typed reference to a principal. It replaces bare ids paired
// with a free-form model name.
type PrincipalRef struct {
	Kind PrincipalKind `gorm:"type:varchar(20)" json:"kind"`
	ID   uint64        `json:"id"`
}

// SystemRef is the reference used when no principal is addressed.
var SystemRef = PrincipalRef{Kind: KindSystem}

func (r PrincipalRef) IsSystem() bool {
	return r.Kind == KindSystem || r.Kind == ""
}

// Room is the realtime room name owned by the referenced principal.
func (r PrincipalRef) Room() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

type CompanyDetails struct {
	Name         string      `json:"name,omitempty"`
	Logo         string      `json:"logo,omitempty"`
	Address      string      `json:"address,omitempty"`
	Established  *time.Time  `json:"established,omitempty"`
	Achievements []string    `json:"achievements,omitempty"`
	SocialLinks  SocialLinks `json:"social_links"`
}

// Principal is any authenticated actor. All six kinds share one table; email is
// unique per kind.
type Principal struct {
	ID             uint64                              `gorm:"primarykey" json:"id"`
	Kind           PrincipalKind                       `gorm:"type:varchar(20);not null;uniqueIndex:idx_principal_kind_email;index" json:"kind"`
	Username       string                              `gorm:"type:varchar(255);not null" json:"username"`
	Email          string                              `gorm:"type:varchar(255);not null;uniqueIndex:idx_principal_kind_email" json:"email"`
	PasswordHash   string                              `gorm:"type:varchar(255);not null" json:"-"`
	Image          string                              `gorm:"type:varchar(1024)" json:"image,omitempty"`
	Mobile         string                              `gorm:"type:varchar(50)" json:"mobile,omitempty"`
	Address        string                              `gorm:"type:varchar(512)" json:"address,omitempty"`
	Skills         datatypes.JSONSlice[string]         `json:"skills,omitempty"`
	SocialLinks    datatypes.JSONType[SocialLinks]     `json:"social_links"`
	CompanyDetails datatypes.JSONType[CompanyDetails]  `json:"company_details"`
	ResetOTPCode   string                              `gorm:"type:varchar(10)" json:"-"`
	ResetOTPExpiry *time.Time                          `json:"-"`
	CreatedAt      time.Time                           `json:"created_at"`
	UpdatedAt      time.Time                           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt                      `gorm:"index" json:"-"`

	// Relations
	Members []ManagerMember `gorm:"foreignKey:ManagerID" json:"members,omitempty"`
}

func (p Principal) Ref() PrincipalRef {
	return PrincipalRef{Kind: p.Kind, ID: p.ID}
}

// ManagerMember is one entry of a manager's team: a developer, marketing role or
// content creator with its cached name.
type ManagerMember struct {
	ManagerID  uint64        `gorm:"primarykey" json:"manager_id"`
	MemberKind PrincipalKind `gorm:"primarykey;type:varchar(20)" json:"member_kind"`
	MemberID   uint64        `gorm:"primarykey;index" json:"member_id"`
	MemberName string        `gorm:"type:varchar(255)" json:"member_name"`
	AssignedAt time.Time     `json:"assigned_at"`
}
