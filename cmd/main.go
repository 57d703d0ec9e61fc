package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tundeajayi/estate-management-backend/config"
	"github.com/tundeajayi/estate-management-backend/database"
	"github.com/tundeajayi/estate-management-backend/internal/announcement"
	"github.com/tundeajayi/estate-management-backend/internal/auditlog"
	"github.com/tundeajayi/estate-management-backend/internal/auth"
	"github.com/tundeajayi/estate-management-backend/internal/complaint"
	"github.com/tundeajayi/estate-management-backend/internal/estate"
	"github.com/tundeajayi/estate-management-backend/internal/gateaccess"
	"github.com/tundeajayi/estate-management-backend/internal/notification"
	"github.com/tundeajayi/estate-management-backend/internal/payment"
	"github.com/tundeajayi/estate-management-backend/internal/resident"
	"github.com/tundeajayi/estate-management-backend/routes"
	"github.com/tundeajayi/estate-management-backend/utils"
)

// @title Estate Management API
// @version 1.0
// @description Gate access, resident and estate management backend.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	database.Connect(cfg)
	db := database.DB

	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&estate.Estate{},
		&estate.EstateStreet{},
		&estate.ChangeRequest{},
		&resident.Resident{},
		&gateaccess.VisitorPass{},
		&gateaccess.VisitRequest{},
		&gateaccess.AccessPin{},
		&gateaccess.ResidentToken{},
		&complaint.Complaint{},
		&payment.Levy{},
		&payment.Payment{},
		&announcement.Announcement{},
		&announcement.PrivateMessage{},
		&notification.Notification{},
		&notification.DeviceToken{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ Auto-migration failed: %v", err)
	}

	if err := auth.SeedUserRoles(db); err != nil {
		log.Fatalf("❌ Failed to seed roles: %v", err)
	}
	if err := auth.SeedSuperAdminUser(db); err != nil {
		log.Printf("⚠️ Failed to seed super admin: %v", err)
	}

	if err := utils.InitRedis(); err != nil {
		log.Printf("⚠️ Redis unavailable, running without cache: %v", err)
	}
	utils.InitializeKafka()
	notification.InitFCM(cfg)

	if err := os.MkdirAll(config.UploadPath, 0o755); err != nil {
		log.Printf("⚠️ Could not create upload directory: %v", err)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Estate-ID"},
		AllowCredentials: false,
	}))

	services := routes.Setup(r, db, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go notification.StartKafkaConsumer(ctx, services.Notification)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Estate management backend listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
