package notification

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/tundeajayi/estate-management-backend/config"
)

var fcmClient *messaging.Client

// InitFCM sets up the Firebase messaging client. Missing credentials disable
// push delivery rather than failing startup.
func InitFCM(cfg *config.Config) {
	if cfg.FCMCredentialsPath == "" {
		log.Println("⚠️ FCM credentials not set, push notifications disabled")
		return
	}

	app, err := firebase.NewApp(context.Background(), &firebase.Config{
		ProjectID: cfg.FCMProjectID,
	}, option.WithCredentialsFile(cfg.FCMCredentialsPath))
	if err != nil {
		log.Printf("❌ Failed to initialize Firebase: %v", err)
		return
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("❌ Failed to initialize FCM client: %v", err)
		return
	}
	fcmClient = client
	log.Println("✅ FCM push notifications enabled")
}

// sendPush delivers a push to every device the resident registered. Dead
// tokens are dropped silently; delivery is best effort.
func sendPush(repo Repository, residentUserID, title, body string, data map[string]string) {
	if fcmClient == nil {
		return
	}

	tokens, err := repo.ListDeviceTokens(residentUserID)
	if err != nil || len(tokens) == 0 {
		return
	}

	ctx := context.Background()
	for _, t := range tokens {
		msg := &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
		if _, err := fcmClient.Send(ctx, msg); err != nil {
			log.Printf("⚠️ Push to %s failed, dropping token: %v", residentUserID, err)
			if delErr := repo.DeleteDeviceToken(t.Token); delErr != nil {
				log.Printf("⚠️ Failed to drop dead token: %v", delErr)
			}
		}
	}
}
