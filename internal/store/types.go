package store

import "time"

// ACLBlock is one allow-listed network block belonging to an access
// control set.
type ACLBlock struct {
	NodeUUID string
	CIDR     string
}

// Destination is a routable inbound number from the directory.
type Destination struct {
	DestinationUUID string
	UserUUID        string
	GroupUUID       string
	DomainUUID      string
}

// DefaultSetting is one configurable option an adapter declares for the
// host configuration UI.
type DefaultSetting struct {
	SettingUUID string
	Category    string
	Subcategory string
	Name        string
	Value       string
	Enabled     bool
}

// InboundMessage is the persisted form of a fully modified message. The
// storage listener writes it as one queue record plus one primary record.
type InboundMessage struct {
	MessageUUID  string
	DomainUUID   string
	ProviderUUID string
	UserUUID     string
	GroupUUID    string
	ContactUUID  string
	Hostname     string
	Type         string
	From         string
	To           string
	Text         string
	RawJSON      []byte
	Now          time.Time
}
