package feed

// Copy catalog: default title/message per notification type, used when
// the payload carries no display fields of its own.

func purchaseApproved() (string, string) {
	return "Purchase approved", "Your purchase has been approved"
}

func purchaseRejected() (string, string) {
	return "Purchase rejected", "Your purchase could not be approved"
}

func friendRequest() (string, string) {
	return "New friend request", "Someone wants to add you as a friend"
}

func friendRequestAccepted() (string, string) {
	return "Friend request accepted", "Your friend request was accepted"
}

func pointsTransferReceived() (string, string) {
	return "Points received", "You received a points transfer"
}

func campaignCreated() (string, string) {
	return "New campaign", "A new campaign is available"
}
