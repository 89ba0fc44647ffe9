package feed

import (
	"time"

	"github.com/google/uuid"

	"github.com/loyaltyhq/notify-agent/internal/domain"
	"github.com/loyaltyhq/notify-agent/internal/routing"
)

func init() {
	Register(string(domain.TypePurchaseApproved), typed(domain.TypePurchaseApproved, purchaseApproved))
	Register(string(domain.TypePurchaseRejected), typed(domain.TypePurchaseRejected, purchaseRejected))
	Register(string(domain.TypeFriendRequest), typed(domain.TypeFriendRequest, friendRequest))
	Register(string(domain.TypeFriendRequestAccepted), typed(domain.TypeFriendRequestAccepted, friendRequestAccepted))
	Register(string(domain.TypePointsTransferReceived), typed(domain.TypePointsTransferReceived, pointsTransferReceived))
	Register(string(domain.TypeCampaignCreated), typed(domain.TypeCampaignCreated, campaignCreated))
}

// typed builds a notification of a known type, preferring the
// payload's own display fields over the catalog defaults.
func typed(t domain.NotificationType, catalog func() (string, string)) Builder {
	return func(p domain.PushPayload) *domain.Notification {
		title, message := catalog()
		if got := routing.DeriveTitle(p); !isDefaultTitle(got) {
			title = got
		}
		if got := routing.DeriveBody(p); !isDefaultBody(got) {
			message = got
		}
		return &domain.Notification{
			ID:        entryID(p),
			Type:      t,
			Title:     title,
			Message:   message,
			CreatedAt: time.Now(),
		}
	}
}

func buildDefault(p domain.PushPayload) *domain.Notification {
	return &domain.Notification{
		ID:        entryID(p),
		Type:      domain.TypeDefault,
		Title:     routing.DeriveTitle(p),
		Message:   routing.DeriveBody(p),
		CreatedAt: time.Now(),
	}
}

// entryID keeps replayed payloads idempotent against the store: the
// same payload id always maps to the same entry id, so a re-add
// replaces instead of duplicating.
func entryID(p domain.PushPayload) string {
	if p.Data != nil {
		if p.Data.NotificationID != "" {
			return p.Data.NotificationID
		}
		if p.Data.ID != "" {
			return p.Data.ID
		}
	}
	return uuid.NewString()
}

func isDefaultTitle(s string) bool {
	return s == routing.DeriveTitle(domain.PushPayload{})
}

func isDefaultBody(s string) bool {
	return s == routing.DeriveBody(domain.PushPayload{})
}
