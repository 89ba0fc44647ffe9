package domain

// PushPayload is the message delivered by the push-messaging backend.
// Every field is optional; at least one of Notification/Data should be
// present for a meaningful display.
type PushPayload struct {
	Notification *PushNotification `json:"notification,omitempty"`
	Data         *PayloadData      `json:"data,omitempty"`
}

// PushNotification carries the explicit display fields of a push payload.
type PushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PayloadData carries the data section of a push payload: display
// fallbacks plus the routing hints the click path depends on. The click
// handler may run long after display, so everything it needs must be
// embedded here.
type PayloadData struct {
	Title          string       `json:"title,omitempty"`
	Message        string       `json:"message,omitempty"`
	Body           string       `json:"body,omitempty"`
	URL            string       `json:"url,omitempty"`
	CampaignID     string       `json:"campaign_id,omitempty"`
	Campaign       *CampaignRef `json:"campaign,omitempty"`
	PurchaseID     string       `json:"purchase_id,omitempty"`
	ID             string       `json:"id,omitempty"`
	NotificationID string       `json:"notificationId,omitempty"`
	Type           string       `json:"type,omitempty"`
}

// CampaignRef is the nested campaign object some producers send instead
// of a flat campaign_id.
type CampaignRef struct {
	ID string `json:"id"`
}

// DisplayRecord is the ephemeral record the background receiver hands
// to the OS notifier. Tag is the de-duplication key the platform uses
// to coalesce repeated notifications. The record's lifetime ends once
// the OS notification is displayed or replaced.
type DisplayRecord struct {
	Title string
	Body  string
	Tag   string
	Data  PayloadData
}

// PushConfig is the runtime configuration for the push-messaging
// backend connection. It is either baked in at boot or pushed down by
// a window over the channel; whichever initializes first wins.
type PushConfig struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
	GroupID string   `json:"groupId"`
}

// Valid reports whether the config carries enough to attempt an init.
func (c PushConfig) Valid() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}
