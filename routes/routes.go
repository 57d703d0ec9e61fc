package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/tundeajayi/estate-management-backend/config"
	_ "github.com/tundeajayi/estate-management-backend/docs"
	"github.com/tundeajayi/estate-management-backend/internal/announcement"
	"github.com/tundeajayi/estate-management-backend/internal/auditlog"
	"github.com/tundeajayi/estate-management-backend/internal/auth"
	"github.com/tundeajayi/estate-management-backend/internal/complaint"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/internal/gateaccess"
	"github.com/tundeajayi/estate-management-backend/internal/notification"
	"github.com/tundeajayi/estate-management-backend/internal/payment"
	"github.com/tundeajayi/estate-management-backend/internal/reports"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
	"github.com/tundeajayi/estate-management-backend/internal/superadmin"
	"github.com/tundeajayi/estate-management-backend/middleware"
)

// Services exposes what main needs for background workers after wiring.
type Services struct {
	Notification notification.Service
}

// Setup mounts every route group on the engine and returns the services main
// needs for background workers.
func Setup(r *gin.Engine, db *gorm.DB, cfg *config.Config) *Services {
	// repositories
	authRepo := auth.NewRepository(db)
	estateRepo := estate.NewRepository(db)
	residentRepo := resident.NewRepository(db)
	gateRepo := gateaccess.NewRepository(db)
	complaintRepo := complaint.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	announcementRepo := announcement.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	auditRepo := auditlog.NewRepository(db)

	// services
	authSvc := auth.NewService(authRepo, cfg)
	estateSvc := estate.NewService(estateRepo, authSvc)
	residentSvc := resident.NewService(residentRepo, estateSvc, cfg)
	gateSvc := gateaccess.NewService(gateRepo, residentSvc, estateSvc)
	complaintSvc := complaint.NewService(complaintRepo, residentSvc)
	paymentSvc := payment.NewService(paymentRepo, residentSvc, cfg)
	announcementSvc := announcement.NewService(announcementRepo, residentSvc)
	notificationSvc := notification.NewService(notificationRepo)
	auditSvc := auditlog.NewService(auditRepo)
	superadminSvc := superadmin.NewService(estateRepo, authRepo, residentRepo)
	reportsSvc := reports.NewService(estateSvc, residentRepo, gateRepo)

	// handlers
	authHandler := auth.NewHandler(authSvc)
	estateHandler := estate.NewHandler(estateSvc)
	residentHandler := resident.NewHandler(residentSvc)
	gateHandler := gateaccess.NewHandler(gateSvc)
	complaintHandler := complaint.NewHandler(complaintSvc)
	paymentHandler := payment.NewHandler(paymentSvc, estateSvc)
	announcementHandler := announcement.NewHandler(announcementSvc, estateSvc)
	notificationHandler := notification.NewHandler(notificationSvc)
	auditHandler := auditlog.NewHandler(auditSvc)
	superadminHandler := superadmin.NewHandler(superadminSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static("/uploads", config.UploadPath)

	api := r.Group("/api/v1")
	api.Use(middleware.AuditMiddleware(auditSvc))

	// ---- public surface ----
	public := api.Group("")
	public.Use(middleware.RateLimiter())
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.POST("/auth/forgot-password", authHandler.ForgotPassword)
		public.POST("/auth/reset-password", authHandler.ResetPassword)
		public.GET("/auth/roles", authHandler.GetPublicRoles)

		public.POST("/estates/register", estateHandler.Register)
		public.GET("/estates/lookup/:code", estateHandler.Lookup)
		public.GET("/estates/:code/streets", estateHandler.ListStreets)

		public.POST("/residents/register", residentHandler.Register)
		public.POST("/residents/login", residentHandler.Login)

		public.POST("/gate/visit-requests", gateHandler.CreateVisitRequest)
		public.GET("/gate/visit-requests/:code", gateHandler.TrackVisitRequest)
	}

	// gate verification gets its own, tighter limiter
	gate := api.Group("/gate")
	gate.Use(middleware.VerifyRateLimiter())
	{
		gate.POST("/verify", gateHandler.Verify)
	}

	// ---- resident surface ----
	residents := api.Group("/residents/me")
	residents.Use(middleware.ResidentAuthMiddleware(cfg))
	{
		residents.GET("", residentHandler.Me)
		residents.GET("/id-card", residentHandler.IDCard)
		residents.GET("/gate-pass-slip", residentHandler.GatePassSlip)
		residents.POST("/photo", residentHandler.UploadPhoto)

		residents.POST("/visitor-passes", gateHandler.CreateVisitorPass)
		residents.GET("/visitor-passes", gateHandler.ListVisitorPasses)
		residents.GET("/visit-requests", gateHandler.ListMyVisitRequests)
		residents.PATCH("/visit-requests/:id/approve", gateHandler.ApproveVisitRequest)
		residents.PATCH("/visit-requests/:id/reject", gateHandler.RejectVisitRequest)
		residents.POST("/tokens/activate", gateHandler.ActivateToken)

		residents.POST("/complaints", complaintHandler.Create)
		residents.GET("/complaints", complaintHandler.ListMine)

		residents.GET("/levies", paymentHandler.ListMyLevies)
		residents.POST("/payments", paymentHandler.Initiate)
		residents.POST("/payments/confirm", paymentHandler.Confirm)
		residents.GET("/payments", paymentHandler.ListMine)
		residents.GET("/payments/:reference/receipt", paymentHandler.Receipt)

		residents.GET("/announcements", announcementHandler.ListForResident)
		residents.GET("/messages", announcementHandler.ListMessages)
		residents.PATCH("/messages/:id/read", announcementHandler.MarkRead)

		residents.GET("/notifications", notificationHandler.List)
		residents.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		residents.POST("/devices", notificationHandler.RegisterDevice)
	}

	// ---- estate office surface ----
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg, authSvc))
	admin.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin, middleware.RoleEstateAdmin, middleware.RoleSecurity))
	admin.Use(middleware.RequireEstateAccess())
	{
		admin.GET("/residents", residentHandler.List)
		admin.GET("/residents/scan/:userId", residentHandler.Scan)
		admin.GET("/visit-requests", gateHandler.ListEstateVisitRequests)
		admin.GET("/pins", gateHandler.ListPins)
		admin.GET("/tokens", gateHandler.ListTokens)
		admin.GET("/complaints", complaintHandler.ListForEstate)
		admin.GET("/levies", paymentHandler.ListLevies)
		admin.GET("/payments", paymentHandler.ListForEstate)
		admin.GET("/announcements", announcementHandler.ListForEstate)

		admin.GET("/reports/residents", reportsHandler.Residents)
		admin.GET("/reports/pins", reportsHandler.Pins)
		admin.GET("/reports/visit-log", reportsHandler.VisitLog)
		admin.GET("/reports/pin-sheet", reportsHandler.PinSheet)

		// write operations stay with the office roles that can write
		adminWrite := admin.Group("")
		adminWrite.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin, middleware.RoleEstateAdmin))
		adminWrite.Use(middleware.RequireWriteAccess())
		{
			adminWrite.PATCH("/residents/:id/approve", residentHandler.Approve)
			adminWrite.PATCH("/residents/:id/reject", residentHandler.Reject)
			adminWrite.PATCH("/residents/:id/deactivate", residentHandler.Deactivate)
			adminWrite.PATCH("/residents/:id/regenerate-pass", residentHandler.RegenerateGatePass)

			adminWrite.POST("/official-passes", gateHandler.CreateOfficialPass)
			adminWrite.PATCH("/visit-requests/:id/approve", gateHandler.ApproveEstateVisitRequest)
			adminWrite.PATCH("/visit-requests/:id/reject", gateHandler.RejectEstateVisitRequest)
			adminWrite.POST("/pins/batch", gateHandler.GeneratePins)
			adminWrite.POST("/tokens/batch", gateHandler.GenerateTokens)

			adminWrite.PATCH("/complaints/:id", complaintHandler.UpdateStatus)
			adminWrite.POST("/levies", paymentHandler.CreateLevy)
			adminWrite.POST("/announcements", announcementHandler.Publish)
			adminWrite.DELETE("/announcements/:id", announcementHandler.Delete)
			adminWrite.POST("/messages", announcementHandler.SendMessage)
		}
	}

	// estate self-management for the estate admin
	estates := api.Group("/estates/me")
	estates.Use(middleware.AuthMiddleware(cfg, authSvc))
	estates.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin, middleware.RoleEstateAdmin))
	{
		estates.GET("", estateHandler.GetMine)
		estates.PUT("/bank-details", estateHandler.UpdateBankDetails)
		estates.POST("/streets", estateHandler.AddStreet)
		estates.DELETE("/streets/:id", estateHandler.RemoveStreet)
		estates.POST("/change-requests", estateHandler.SubmitChangeRequest)
		estates.GET("/change-requests", estateHandler.ListChangeRequests)
	}

	// ---- platform back office ----
	super := api.Group("/superadmin")
	super.Use(middleware.AuthMiddleware(cfg, authSvc))
	super.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin))
	{
		super.GET("/estates", superadminHandler.ListEstates)
		super.PATCH("/estates/:id/decision", superadminHandler.DecideEstate)
		super.DELETE("/estates/:id", superadminHandler.DeleteEstate)
		super.GET("/stats", superadminHandler.Stats)
		super.GET("/admins", superadminHandler.ListEstateAdmins)
		super.GET("/superadmins", superadminHandler.ListSuperAdmins)
		super.POST("/superadmins", superadminHandler.CreateSuperAdmin)
		super.DELETE("/superadmins/:id", superadminHandler.DeleteSuperAdmin)
		super.GET("/change-requests", superadminHandler.ListChangeRequests)
		super.PATCH("/change-requests/:id/resolve", superadminHandler.ResolveChangeRequest)

		super.GET("/audit-logs", auditHandler.GetAuditLogs)
		super.GET("/audit-logs/:id", auditHandler.GetAuditLogByID)
	}

	// authenticated logout for back-office users
	authd := api.Group("/auth")
	authd.Use(middleware.AuthMiddleware(cfg, authSvc))
	{
		authd.POST("/logout", authHandler.Logout)
	}

	return &Services{
		Notification: notificationSvc,
	}
}
