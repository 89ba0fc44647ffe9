package domain

import "time"

// NotificationType tags a notification with its originating event.
// It drives icon and color selection in the presentation layer only;
// no other component branches on it.
type NotificationType string

const (
	TypePurchaseApproved       NotificationType = "purchase_approved"
	TypePurchaseRejected       NotificationType = "purchase_rejected"
	TypeFriendRequest          NotificationType = "friend_request"
	TypeFriendRequestAccepted  NotificationType = "friend_request_accepted"
	TypePointsTransferReceived NotificationType = "points_transfer_received"
	TypeCampaignCreated        NotificationType = "campaign_created"
	TypeDefault                NotificationType = "default"
)

// Normalize maps unknown type tags to TypeDefault so the presentation
// layer never sees an open-ended value.
func (t NotificationType) Normalize() NotificationType {
	switch t {
	case TypePurchaseApproved, TypePurchaseRejected, TypeFriendRequest,
		TypeFriendRequestAccepted, TypePointsTransferReceived, TypeCampaignCreated:
		return t
	default:
		return TypeDefault
	}
}

// Notification is an in-app notification entry. Entries are owned
// exclusively by the window's Store for the lifetime of the session;
// ID never changes after insertion.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	Read      bool             `json:"read"`
}
