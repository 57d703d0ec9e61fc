package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tundeajayi/estate-management-backend/utils"
)

// StartKafkaConsumer turns gate events into resident notifications. It runs
// until ctx is cancelled and is a no-op when Kafka is not configured.
func StartKafkaConsumer(ctx context.Context, svc Service) {
	reader := utils.NewGateEventReader("notification-service")
	if reader == nil {
		log.Println("⚠️ Kafka not configured, notification consumer disabled")
		return
	}
	defer reader.Close()

	log.Println("📡 Notification consumer started")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️ Failed to read gate event: %v", err)
			continue
		}

		var ev utils.GateEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("⚠️ Skipping malformed gate event: %v", err)
			continue
		}
		handleGateEvent(svc, ev)
	}
}

func handleGateEvent(svc Service, ev utils.GateEvent) {
	if ev.ResidentID == "" {
		return
	}

	var title, body string
	switch ev.Type {
	case "VISIT_REQUESTED":
		visitor, _ := ev.Payload["visitor_name"].(string)
		title = "New visit request"
		body = fmt.Sprintf("%s is asking to visit you", visitor)
	case "VISIT_APPROVED":
		visitor, _ := ev.Payload["visitor_name"].(string)
		code, _ := ev.Payload["access_code"].(string)
		title = "Visit request approved"
		body = fmt.Sprintf("Access code %s issued for %s", code, visitor)
	case "VISIT_REJECTED":
		title = "Visit request rejected"
		body = "You rejected a visit request"
	case "RESIDENT_APPROVED":
		title = "Welcome to the estate"
		body = "Your residency has been verified and your gate pass is ready"
	case "TOKEN_ACTIVATED":
		title = "Annual token activated"
		body = "Your resident token is now active at the gate"
	case "MESSAGE_SENT":
		subject, _ := ev.Payload["subject"].(string)
		title = "Message from the estate office"
		body = subject
	default:
		return
	}

	if err := svc.Notify(ev.ResidentID, ev.EstateID, ev.Type, title, body, ev.Payload); err != nil {
		log.Printf("⚠️ Failed to store notification for %s: %v", ev.ResidentID, err)
	}
}
