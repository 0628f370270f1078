package constants

import "time"

// Context and session keys
const (
	ContextKeyPrincipal = "principal"
	SessionKeyToken     = "token"
	SessionKeyKind      = "kind"
	SessionCookieName   = "project_hub_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication
const (
	MinPasswordLength = 6
	TokenTTL          = 24 * time.Hour
	TokenIssuer       = "project-hub-api"
	ResetOTPLength    = 6
	ResetOTPTTL       = 10 * time.Minute
)

// Uploads
const (
	MaxUploadFiles = 5
	MaxUploadSize  = 5 << 20
)

// Storage folders
const (
	FolderProjectDocs   = "project_docs"
	FolderTaskDocs      = "task_docs"
	FolderTaskMedia     = "task_updates"
	FolderFinalResults  = "task_results"
	FolderMarketingDocs = "marketing_docs"
	FolderAttachments   = "task_update_attachments"
	FolderRevenue       = "revenue"
	FolderProfiles      = "profiles"
	FolderCompanyLogos  = "company_logos"
)

const (
	BroadcastRoom       = "broadcast"
	MaxAIGeneratedTasks = 10
)
