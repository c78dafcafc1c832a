package model

import "time"

// Document collections and sequence names in the embedded store.
const (
	CollectionTags           = "tags"
	CollectionCompanions     = "companions"
	CollectionDemands        = "demands"
	CollectionOrders         = "orders"
	CollectionExtensions     = "extensions"
	CollectionNotifications  = "notifications"
	CollectionReviews        = "reviews"
	CollectionCoursePackages = "course_packages"
	CollectionPaymentRecords = "payment_records"
	CollectionChildren       = "children"
	CollectionAddresses      = "addresses"
)

// Singleton keys.
const (
	KeyAuthUser      = "auth_user"
	KeyParentProfile = "parent_profile"
	KeyParentWallet  = "parent_wallet"
	KeyPaymentWallet = "payment_wallet"
	KeyCalendar      = "calendar"
)

const isoLayout = "2006-01-02T15:04:05.000Z"

// ISOTime formats t the way the mobile client expects timestamps (UTC, millisecond precision).
func ISOTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseTime accepts the fixture timestamp formats. Unparseable values yield the zero time.
func ParseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
