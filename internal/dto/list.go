package dto

import (
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []models.Project         `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// NotificationListResponse represents a paginated notification inbox
type NotificationListResponse struct {
	Notifications []models.Notification    `json:"notifications"`
	Unread        int64                    `json:"unread"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}
