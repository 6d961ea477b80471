package model

// EventKind identifies the type of a tracked event. The set is closed:
// every event the service records is one of these four kinds.
type EventKind string

const (
	KindProfileView    EventKind = "profile_view"    // A profile page was viewed
	KindLinkClick      EventKind = "link_click"      // A profile link was clicked
	KindUserRegistered EventKind = "user_registered" // A wallet registered a username
	KindLinkAdded      EventKind = "link_added"      // A link was added to a profile
)

// Event is a single entry in the analytics event log. Events are
// immutable once appended; ID and Timestamp are stamped by the log.
// Only the fields relevant to the event's kind are populated.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Username  string    `json:"username,omitempty"`
	LinkKey   string    `json:"linkKey,omitempty"`
	LinkURL   string    `json:"linkUrl,omitempty"`
	Address   string    `json:"address,omitempty"`
	Timestamp int64     `json:"timestamp"` // Milliseconds since epoch
}

// NewProfileView records that username's profile was viewed.
func NewProfileView(username string) Event {
	return Event{Kind: KindProfileView, Username: username}
}

// NewLinkClick records a click on one of username's links.
func NewLinkClick(username, linkKey, linkURL string) Event {
	return Event{Kind: KindLinkClick, Username: username, LinkKey: linkKey, LinkURL: linkURL}
}

// NewUserRegistered records a new username registration.
func NewUserRegistered(username, address string) Event {
	return Event{Kind: KindUserRegistered, Username: username, Address: address}
}

// NewLinkAdded records that username added a link under linkKey.
func NewLinkAdded(username, linkKey string) Event {
	return Event{Kind: KindLinkAdded, Username: username, LinkKey: linkKey}
}
