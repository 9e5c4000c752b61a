// Package model defines shared data structures.
package model

// AllLeadTypes selects data aggregated across every configured lead type.
const AllLeadTypes = "all"

// Entity names a record collection managed by the backend.
type Entity string

// Record collections.
const (
	EntityCampaigns Entity = "campaigns"
	EntityContacts  Entity = "contacts"
)

// Singular returns the entity name for a single record.
func (e Entity) Singular() string {
	switch e {
	case EntityCampaigns:
		return "campaign"
	case EntityContacts:
		return "contact"
	default:
		return string(e)
	}
}

// Resource names a fetchable piece of dashboard state.
type Resource int

// Fetchable resources.
const (
	ResourceConfigs Resource = iota
	ResourceStats
	ResourceCampaigns
	ResourceContacts
)

func (r Resource) String() string {
	switch r {
	case ResourceConfigs:
		return "configs"
	case ResourceStats:
		return "stats"
	case ResourceCampaigns:
		return "campaigns"
	case ResourceContacts:
		return "contacts"
	default:
		return "unknown"
	}
}

// ResourceFor maps an entity to the resource listing it.
func ResourceFor(e Entity) Resource {
	if e == EntityContacts {
		return ResourceContacts
	}
	return ResourceCampaigns
}

// Campaign statuses.
const (
	CampaignSent     = "sent"
	CampaignSending  = "sending"
	CampaignSchedule = "schedule"
	CampaignPaused   = "paused"
	CampaignSave     = "save"
)

// CampaignStatuses lists the known campaign statuses in display order.
var CampaignStatuses = []string{CampaignSent, CampaignSending, CampaignSchedule, CampaignPaused, CampaignSave}

// Contact statuses.
const (
	ContactSubscribed    = "subscribed"
	ContactUnsubscribed  = "unsubscribed"
	ContactCleaned       = "cleaned"
	ContactPending       = "pending"
	ContactTransactional = "transactional"
)

// ContactStatuses lists the known contact statuses in display order.
var ContactStatuses = []string{ContactSubscribed, ContactUnsubscribed, ContactCleaned, ContactPending, ContactTransactional}

// Campaign is a synced email campaign snapshot.
type Campaign struct {
	ID          ID     `json:"id"`
	CampaignID  string `json:"campaign_id"`
	WebID       ID     `json:"web_id"`
	LeadTypeID  ID     `json:"lead_type_id"`
	SubjectLine string `json:"subject_line"`
	Title       string `json:"title"`
	PreviewText string `json:"preview_text"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
	ListID      string `json:"list_id"`
	ArchiveURL  string `json:"archive_url"`
	Status      string `json:"status"`

	EmailsSent             Count `json:"emails_sent"`
	UniqueOpens            Count `json:"unique_opens"`
	OpensTotal             Count `json:"opens_total"`
	UniqueClicks           Count `json:"unique_clicks"`
	ClicksTotal            Count `json:"clicks_total"`
	UniqueSubscriberClicks Count `json:"unique_subscriber_clicks"`
	Unsubscribed           Count `json:"unsubscribed"`
	HardBounces            Count `json:"hard_bounces"`
	SoftBounces            Count `json:"soft_bounces"`
	SyntaxErrors           Count `json:"syntax_errors"`
	AbuseReports           Count `json:"abuse_reports"`

	OpenRate        Rate `json:"open_rate"`
	ClickRate       Rate `json:"click_rate"`
	UnsubscribeRate Rate `json:"unsubscribe_rate"`
	DeliveryRate    Rate `json:"delivery_rate"`

	SendTime     Timestamp `json:"send_time"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
	LastSyncedAt Timestamp `json:"last_synced_at"`

	TrackOpens      bool `json:"track_opens"`
	TrackHTMLClicks bool `json:"track_html_clicks"`
	TrackTextClicks bool `json:"track_text_clicks"`

	LeadTypeName  string `json:"lead_type_name"`
	LeadTypeColor string `json:"lead_type_color"`
}

// DisplayTitle returns the subject line, falling back to the title.
func (c Campaign) DisplayTitle() string {
	if c.SubjectLine != "" {
		return c.SubjectLine
	}
	return c.Title
}

// Contact is a synced audience member snapshot.
type Contact struct {
	ID             ID          `json:"id"`
	SubscriberHash string      `json:"subscriber_hash"`
	WebID          ID          `json:"web_id"`
	UniqueEmailID  string      `json:"unique_email_id"`
	LeadTypeID     ID          `json:"lead_type_id"`
	EmailAddress   string      `json:"email_address"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	FullName       string      `json:"full_name"`
	Status         string      `json:"status"`
	MemberRating   Count       `json:"member_rating"`
	MergeFields    MergeFields `json:"merge_fields"`
	EmailClient    string      `json:"email_client"`
	Language       string      `json:"language"`
	VIP            bool        `json:"vip"`
	Source         string      `json:"source"`
	SyncStatus     string      `json:"sync_status"`
	SyncError      string      `json:"sync_error"`

	TimestampOpt Timestamp `json:"timestamp_opt"`
	LastChanged  Timestamp `json:"last_changed"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
	LastSyncedAt Timestamp `json:"last_synced_at"`

	LeadTypeName  string `json:"lead_type_name"`
	LeadTypeColor string `json:"lead_type_color"`
}

// First returns the first name, falling back to the FNAME merge field.
func (c Contact) First() string {
	if c.FirstName != "" {
		return c.FirstName
	}
	return c.MergeFields.FirstName
}

// Last returns the last name, falling back to the LNAME merge field.
func (c Contact) Last() string {
	if c.LastName != "" {
		return c.LastName
	}
	return c.MergeFields.LastName
}

// Name returns the best available display name.
func (c Contact) Name() string {
	if c.FullName != "" {
		return c.FullName
	}
	first, last := c.First(), c.Last()
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// LeadTypeConfig describes one lead type's integration with the email platform.
type LeadTypeConfig struct {
	LeadTypeID       ID        `json:"lead_type_id"`
	LeadTypeName     string    `json:"lead_type_name"`
	LeadTypeColor    string    `json:"lead_type_color"`
	ConnectionStatus string    `json:"connection_status"`
	LastSyncedAt     Timestamp `json:"last_synced_at"`
}

// Connected reports whether the integration is live.
func (c LeadTypeConfig) Connected() bool {
	return c.ConnectionStatus == "connected"
}

// StatsSummary aggregates counters for a lead type or for all lead types.
type StatsSummary struct {
	TotalCampaigns       Count     `json:"total_campaigns"`
	SentCampaigns        Count     `json:"sent_campaigns"`
	TotalContacts        Count     `json:"total_contacts"`
	SubscribedContacts   Count     `json:"subscribed_contacts"`
	UnsubscribedContacts Count     `json:"unsubscribed_contacts"`
	CleanedContacts      Count     `json:"cleaned_contacts"`
	PendingContacts      Count     `json:"pending_contacts"`
	TotalEmailsSent      Count     `json:"total_emails_sent"`
	TotalOpens           Count     `json:"total_opens"`
	TotalClicks          Count     `json:"total_clicks"`
	AvgOpenRate          Rate      `json:"avg_open_rate"`
	AvgClickRate         Rate      `json:"avg_click_rate"`
	LastSyncedAt         Timestamp `json:"last_synced_at"`
}

// Permission names as exposed on the user object.
const (
	PermSyncContacts    = "email_sync_contacts"
	PermSyncCampaigns   = "email_sync_campaigns"
	PermViewCampaign    = "email_view_campaign"
	PermArchiveCampaign = "email_archive_campaign"
	PermExportCSV       = "email_export_csv"
)

// Permissions holds advisory capability flags. They only hide or refuse actions
// in this client; the backend authorizes every mutating call on its own.
type Permissions struct {
	SyncContacts    bool
	SyncCampaigns   bool
	ViewCampaign    bool
	ArchiveCampaign bool
	ExportCSV       bool
}

// AllPermissions grants every capability.
func AllPermissions() Permissions {
	return Permissions{
		SyncContacts:    true,
		SyncCampaigns:   true,
		ViewCampaign:    true,
		ArchiveCampaign: true,
		ExportCSV:       true,
	}
}

// Allows reports whether the named permission is granted.
func (p Permissions) Allows(name string) bool {
	switch name {
	case PermSyncContacts:
		return p.SyncContacts
	case PermSyncCampaigns:
		return p.SyncCampaigns
	case PermViewCampaign:
		return p.ViewCampaign
	case PermArchiveCampaign:
		return p.ArchiveCampaign
	case PermExportCSV:
		return p.ExportCSV
	default:
		return false
	}
}

// SyncPermission returns the permission guarding sync and resync of an entity.
func SyncPermission(e Entity) string {
	if e == EntityContacts {
		return PermSyncContacts
	}
	return PermSyncCampaigns
}

// ArchivePermission returns the permission guarding archive of an entity.
func ArchivePermission(e Entity) string {
	if e == EntityContacts {
		return PermSyncContacts
	}
	return PermArchiveCampaign
}

// ActionRecord is a journal entry for a dispatched mutation.
type ActionRecord struct {
	ID       int64
	At       Timestamp
	Action   string
	Entity   Entity
	LeadType string
	IDs      []string
	OK       bool
	Message  string
}

// NoticeKind classifies a user-facing notification.
type NoticeKind int

// Notification kinds.
const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a short message shown to the user after an operation.
type Notice struct {
	Kind NoticeKind
	Text string
}

// IsError reports whether the notice reports a failure.
func (n Notice) IsError() bool {
	return n.Kind == NoticeError
}
