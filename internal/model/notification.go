package model

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// Notification is one outgoing message for a patient.
type Notification struct {
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Name      string              `json:"name,omitempty"`
	Subject   string              `json:"subject,omitempty"`
	Body      string              `json:"body"`
	Link      string              `json:"link,omitempty"`
}
