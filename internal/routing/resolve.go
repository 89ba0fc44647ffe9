// Package routing derives display fields and click targets from push
// payload data. Both the display path and the click path resolve
// targets through the same function so they can never diverge.
package routing

import (
	"github.com/google/uuid"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

const (
	// CampaignPathPrefix is the in-app route for a single campaign.
	CampaignPathPrefix = "/admin/campaigns/"
	// PurchasesPath is the hard default route, also used when only a
	// purchase id is present.
	PurchasesPath = "/admin/purchases"

	defaultTitle = "Loyalty"
	defaultBody  = "You have a new notification"
)

// ResolveTarget maps payload data to an in-app path. Precedence:
// campaign id (flat or nested) over explicit url over purchase id over
// the hard default. Purchase-id-only payloads route to the purchases
// page, same as the default.
func ResolveTarget(data domain.PayloadData) string {
	if id := campaignID(data); id != "" {
		return CampaignPathPrefix + id
	}
	if data.URL != "" {
		return data.URL
	}
	return PurchasesPath
}

func campaignID(data domain.PayloadData) string {
	if data.CampaignID != "" {
		return data.CampaignID
	}
	if data.Campaign != nil {
		return data.Campaign.ID
	}
	return ""
}

// DeriveTitle picks the display title: explicit notification field,
// else the data fallback, else the default.
func DeriveTitle(p domain.PushPayload) string {
	if p.Notification != nil && p.Notification.Title != "" {
		return p.Notification.Title
	}
	if p.Data != nil && p.Data.Title != "" {
		return p.Data.Title
	}
	return defaultTitle
}

// DeriveBody picks the display body: explicit notification field, else
// the data message, else the data body, else the default.
func DeriveBody(p domain.PushPayload) string {
	if p.Notification != nil && p.Notification.Body != "" {
		return p.Notification.Body
	}
	if p.Data != nil {
		if p.Data.Message != "" {
			return p.Data.Message
		}
		if p.Data.Body != "" {
			return p.Data.Body
		}
	}
	return defaultBody
}

// ComputeTag picks the platform de-duplication tag: the payload
// notification id when present, else a fresh value so unrelated
// notifications never collapse into one.
func ComputeTag(data domain.PayloadData) string {
	if data.NotificationID != "" {
		return data.NotificationID
	}
	if data.ID != "" {
		return data.ID
	}
	return uuid.NewString()
}
