package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/pm"
)

// MQTTNotifier publishes reminder events to an MQTT broker. Delivery is
// fire-and-forget: publish failures are logged and dropped, the schedule
// flags already guarantee each reminder is attempted at most once.
type MQTTNotifier struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTNotifier connects to the broker and returns a notifier publishing
// under topicPrefix (e.g. "maintenance/notifications").
func NewMQTTNotifier(brokerURL, clientID, topicPrefix string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout for %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}
	return &MQTTNotifier{client: client, topicPrefix: topicPrefix}, nil
}

// Deliver publishes one reminder event.
func (n *MQTTNotifier) Deliver(event pm.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("Failed to marshal notification event")
		return
	}
	topic := fmt.Sprintf("%s/%s", n.topicPrefix, event.Threshold)
	token := n.client.Publish(topic, 1, false, payload)
	go func() {
		if !token.WaitTimeout(10 * time.Second) {
			log.WithField("topic", topic).Warn("MQTT publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("topic", topic).Warn("MQTT publish failed")
		}
	}()
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}

// LogNotifier writes reminder events to the log. Used when no broker is
// configured.
type LogNotifier struct{}

// Deliver logs one reminder event.
func (LogNotifier) Deliver(event pm.Event) {
	log.WithFields(log.Fields{
		"schedule_id":    event.Schedule.ID.Hex(),
		"equipment_id":   event.Schedule.EquipmentID.Hex(),
		"scheduled_date": event.Schedule.ScheduledDate.Format("2006-01-02"),
		"threshold":      event.Threshold,
		"days_ahead":     event.DaysAhead,
	}).Info("PM reminder")
}
