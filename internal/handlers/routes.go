package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/middleware"
	"github.com/yukikurage/project-hub-api/internal/models"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth          *AuthHandler
	Team          *TeamHandler
	Project       *ProjectHandler
	Task          *TaskHandler
	Calendar      *CalendarHandler
	Holiday       *HolidayHandler
	Marketing     *MarketingHandler
	TaskUpdate    *TaskUpdateHandler
	Revenue       *RevenueHandler
	Message       *MessageHandler
	Notification  *NotificationHandler
	TokenResolver middleware.PrincipalResolver
}

// RegisterRoutes mounts the role namespaces under /api.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	h.registerAdminRoutes(api.Group("/admin"))
	h.registerManagerRoutes(api.Group("/manager"))
	h.registerDeveloperRoutes(api.Group("/developer"))
	h.registerClientRoutes(api.Group("/client"))
	h.registerMarketingRoleRoutes(api.Group("/digital-marketing"), models.KindMarketing)
	h.registerMarketingRoleRoutes(api.Group("/content-creator"), models.KindContentCreator)

	messages := api.Group("/message")
	messages.Use(h.require(models.KindAdmin, models.KindManager, models.KindDeveloper))
	{
		messages.POST("/send", h.Message.SendMessage)
		messages.GET("/conversation/:kind/:id", h.Message.GetConversation)
		messages.PATCH("/read/:id", h.Message.MarkAsRead)
		messages.GET("/unread", h.Message.GetUnreadCount)
	}
}

func (h *Handlers) require(kinds ...models.PrincipalKind) gin.HandlerFunc {
	return middleware.RequirePrincipal(h.TokenResolver, kinds...)
}

func (h *Handlers) registerAdminRoutes(g *gin.RouterGroup) {
	g.POST("/register", h.Auth.Register(models.KindAdmin))
	g.POST("/login", h.Auth.Login(models.KindAdmin))
	g.POST("/logout", h.Auth.Logout)
	g.POST("/password-reset/request", h.Auth.RequestPasswordReset)
	g.POST("/password-reset/confirm", h.Auth.ResetPassword)

	admin := g.Group("")
	admin.Use(h.require(models.KindAdmin))
	{
		h.registerProfileRoutes(admin)
		admin.GET("/admins", h.Auth.ListPrincipals(models.KindAdmin))
		for path, kind := range map[string]models.PrincipalKind{
			"/managers":   models.KindManager,
			"/developers": models.KindDeveloper,
			"/clients":    models.KindClient,
		} {
			admin.POST(path, h.Auth.Register(kind))
			admin.GET(path, h.Auth.ListPrincipals(kind))
			admin.GET(path+"/:id", h.Auth.GetPrincipal(kind))
			admin.PUT(path+"/:id", h.Auth.UpdatePrincipal(kind))
			admin.DELETE(path+"/:id", h.Auth.DeletePrincipal(kind))
		}
		admin.GET("/developers/:id/holidays", h.Holiday.ListDeveloperHolidays)

		h.registerProjectRoutes(admin)
		h.registerTaskRoutes(admin)
		h.registerEventRoutes(admin)
		h.registerHolidayReviewRoutes(admin)
		h.registerMarketingTaskRoutes(admin)
		h.registerTaskUpdateReviewRoutes(admin)
		h.registerRevenueRoutes(admin)
		h.registerNotificationRoutes(admin)
	}
}

func (h *Handlers) registerManagerRoutes(g *gin.RouterGroup) {
	g.POST("/register", h.require(models.KindAdmin), h.Auth.Register(models.KindManager))
	g.POST("/developers", h.require(models.KindAdmin, models.KindManager), h.Auth.Register(models.KindDeveloper))
	g.POST("/login", h.Auth.Login(models.KindManager))
	g.POST("/logout", h.Auth.Logout)

	manager := g.Group("")
	manager.Use(h.require(models.KindManager))
	{
		h.registerProfileRoutes(manager)
		manager.GET("/managers", h.Auth.ListPrincipals(models.KindManager))
		manager.GET("/admins", h.Auth.ListPrincipals(models.KindAdmin))
		manager.GET("/developers", h.Auth.ListPrincipals(models.KindDeveloper))
		manager.GET("/developers/:id", h.Auth.GetPrincipal(models.KindDeveloper))
		manager.DELETE("/developers/:id", h.Auth.DeletePrincipal(models.KindDeveloper))
		manager.GET("/developers/:id/holidays", h.Holiday.ListDeveloperHolidays)

		manager.GET("/team", h.Team.ListMembers())
		manager.GET("/team/developers", h.Team.ListDevelopers)
		manager.POST("/team/developers", h.Team.AddMembers(models.KindDeveloper))
		manager.GET("/team/digital-marketing", h.Team.ListMembers(models.KindMarketing))
		manager.POST("/team/digital-marketing", h.Team.AddMembers(models.KindMarketing))
		manager.GET("/team/content-creators", h.Team.ListMembers(models.KindContentCreator))
		manager.POST("/team/content-creators", h.Team.AddMembers(models.KindContentCreator))

		h.registerProjectRoutes(manager)
		h.registerTaskRoutes(manager)
		h.registerEventRoutes(manager)
		h.registerHolidayReviewRoutes(manager)
		h.registerMarketingTaskRoutes(manager)
		h.registerTaskUpdateReviewRoutes(manager)
		h.registerRevenueRoutes(manager)
		h.registerNotificationRoutes(manager)
	}
}

func (h *Handlers) registerDeveloperRoutes(g *gin.RouterGroup) {
	g.POST("/register", h.require(models.KindAdmin), h.Auth.Register(models.KindDeveloper))
	g.POST("/login", h.Auth.Login(models.KindDeveloper))
	g.POST("/logout", h.Auth.Logout)

	developer := g.Group("")
	developer.Use(h.require(models.KindDeveloper))
	{
		h.registerProfileRoutes(developer)
		developer.GET("/managers", h.Auth.ListPrincipals(models.KindManager))
		developer.GET("/developers", h.Auth.ListPrincipals(models.KindDeveloper))
		developer.GET("/admins", h.Auth.ListPrincipals(models.KindAdmin))

		developer.GET("/projects", h.Project.ListMyProjects)
		developer.PUT("/projects/:id/status", h.Project.UpdateProjectStatus)

		developer.GET("/tasks", h.Task.ListMyTasks)
		developer.GET("/tasks/:id", h.Task.GetTask)
		developer.POST("/tasks/:id/updates", h.Task.AddProgress)
		developer.DELETE("/tasks/:id/updates/:update_id", h.Task.DeleteProgress)
		developer.POST("/tasks/:id/final-result", h.Task.AddFinalResult)

		h.registerEventRoutes(developer)
		developer.GET("/events/involving", h.Calendar.ListInvolvingEvents)

		developer.POST("/holidays", h.Holiday.ApplyHoliday)
		developer.GET("/holidays", h.Holiday.ListMyHolidays)
		developer.PUT("/holidays/:id/withdraw", h.Holiday.WithdrawHoliday)

		h.registerNotificationRoutes(developer)
	}
}

func (h *Handlers) registerClientRoutes(g *gin.RouterGroup) {
	g.POST("/register", h.require(models.KindAdmin), h.Auth.Register(models.KindClient))
	g.POST("/login", h.Auth.Login(models.KindClient))
	g.POST("/logout", h.Auth.Logout)

	client := g.Group("")
	client.Use(h.require(models.KindClient))
	{
		h.registerProfileRoutes(client)
		client.GET("/projects", h.Project.ListMyProjects)
		client.GET("/meetings", h.Calendar.ListMeetings)
		h.registerNotificationRoutes(client)
	}
}

// registerMarketingRoleRoutes serves the digital marketing and content creator
// namespaces, which expose the same operations.
func (h *Handlers) registerMarketingRoleRoutes(g *gin.RouterGroup, kind models.PrincipalKind) {
	g.POST("/register", h.Auth.Register(kind))
	g.POST("/login", h.Auth.Login(kind))
	g.POST("/logout", h.Auth.Logout)

	member := g.Group("")
	member.Use(h.require(kind))
	{
		h.registerProfileRoutes(member)
		member.GET("/projects", h.Project.ListProjects)
		member.GET("/projects/:id/task-updates", h.TaskUpdate.ListProjectTaskUpdates)
		member.GET("/assigned-tasks", h.Marketing.ListAssignedMarketingTasks)
		member.PUT("/marketing-tasks/:id/leads", h.Marketing.UpdateLeads)

		member.POST("/task-updates", h.TaskUpdate.CreateTaskUpdate)
		member.GET("/marketing-tasks/:id/task-updates", h.TaskUpdate.ListTaskUpdates)
		member.PUT("/task-updates/:id", h.TaskUpdate.UpdateTaskUpdate)
		member.DELETE("/task-updates/:id", h.TaskUpdate.DeleteTaskUpdate)
		member.POST("/task-updates/:id/comments", h.TaskUpdate.AddComment)
		member.DELETE("/task-updates/:id/comments/:comment_id", h.TaskUpdate.DeleteComment)

		h.registerRevenueRoutes(member)
		member.GET("/meetings", h.Calendar.ListMeetings)
		h.registerNotificationRoutes(member)
	}
}

func (h *Handlers) registerProfileRoutes(g *gin.RouterGroup) {
	g.GET("/profile", h.Auth.GetProfile)
	g.PUT("/profile", h.Auth.UpdateProfile)
	g.PUT("/profile/media", h.Auth.UpdateMedia)
	g.DELETE("/profile", h.Auth.DeleteProfile)
}

func (h *Handlers) registerProjectRoutes(g *gin.RouterGroup) {
	g.POST("/projects", h.Project.CreateProject)
	g.GET("/projects", h.Project.ListProjects)
	g.GET("/projects/status", h.Project.ListProjectsByStatus)
	g.GET("/projects/:id", h.Project.GetProject)
	g.GET("/projects/:id/developers", h.Project.GetAssignedDevelopers)
	g.PUT("/projects/:id", h.Project.UpdateProject)
	g.DELETE("/projects/:id", h.Project.DeleteProject)
	g.GET("/projects/:id/tasks", h.Task.ListProjectTasks)
	g.POST("/projects/:id/suggest-tasks", h.Task.SuggestTasks)
	g.GET("/projects/:id/marketing-tasks", h.Marketing.ListProjectMarketingTasks)
	g.GET("/projects/:id/task-updates", h.TaskUpdate.ListProjectTaskUpdates)
}

func (h *Handlers) registerTaskRoutes(g *gin.RouterGroup) {
	g.POST("/tasks", h.Task.CreateTask)
	g.GET("/tasks", h.Task.ListTasks)
	g.GET("/tasks/:id", h.Task.GetTask)
	g.PUT("/tasks/:id", h.Task.UpdateTask)
	g.DELETE("/tasks/:id", h.Task.DeleteTask)
	g.POST("/tasks/:id/updates", h.Task.AddProgress)
	g.DELETE("/tasks/:id/updates/:update_id", h.Task.DeleteProgress)
	g.POST("/tasks/:id/final-result", h.Task.AddFinalResult)
}

func (h *Handlers) registerEventRoutes(g *gin.RouterGroup) {
	g.POST("/events", h.Calendar.CreateEvent)
	g.GET("/events", h.Calendar.ListEvents)
	g.GET("/events/mine", h.Calendar.ListMyEvents)
	g.GET("/events/:id", h.Calendar.GetEvent)
	g.PUT("/events/:id", h.Calendar.UpdateEvent)
	g.DELETE("/events/:id", h.Calendar.DeleteEvent)
}

func (h *Handlers) registerHolidayReviewRoutes(g *gin.RouterGroup) {
	g.GET("/holidays", h.Holiday.ListHolidays)
	g.GET("/holidays/:id", h.Holiday.GetHoliday)
	g.PUT("/holidays/:id/decision", h.Holiday.DecideHoliday)
	g.PUT("/holidays/:id", h.Holiday.UpdateHoliday)
	g.DELETE("/holidays/:id", h.Holiday.DeleteHoliday)
}

func (h *Handlers) registerMarketingTaskRoutes(g *gin.RouterGroup) {
	g.POST("/marketing-tasks", h.Marketing.CreateMarketingTask)
	g.GET("/marketing-tasks", h.Marketing.ListMarketingTasks)
	g.GET("/marketing-tasks/:id", h.Marketing.GetMarketingTask)
	g.PUT("/marketing-tasks/:id", h.Marketing.UpdateMarketingTask)
	g.DELETE("/marketing-tasks/:id", h.Marketing.DeleteMarketingTask)
	g.PUT("/marketing-tasks/:id/leads", h.Marketing.UpdateLeads)
}

func (h *Handlers) registerTaskUpdateReviewRoutes(g *gin.RouterGroup) {
	g.GET("/marketing-tasks/:id/task-updates", h.TaskUpdate.ListTaskUpdates)
	g.POST("/task-updates/:id/comments", h.TaskUpdate.AddComment)
	g.DELETE("/task-updates/:id/comments/:comment_id", h.TaskUpdate.DeleteComment)
}

func (h *Handlers) registerRevenueRoutes(g *gin.RouterGroup) {
	g.POST("/revenue", h.Revenue.CreateRevenue)
	g.GET("/revenue", h.Revenue.ListRevenue)
	g.GET("/revenue/project/:id", h.Revenue.ListProjectRevenue)
	g.PUT("/revenue/:id", h.Revenue.UpdateRevenue)
	g.DELETE("/revenue/:id", h.Revenue.DeleteRevenue)
}

func (h *Handlers) registerNotificationRoutes(g *gin.RouterGroup) {
	g.GET("/notifications", h.Notification.ListNotifications)
	g.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.Notification.MarkAsRead)
	g.GET("/events/stream", h.Notification.Stream)
}
