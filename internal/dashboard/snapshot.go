package dashboard

import "github.com/verte-zerg/mcdash/internal/model"

// Snapshot is the fetched data for one lead type selection. Each resource is
// replaced wholesale when a fresh response applies.
type Snapshot struct {
	LeadType  string
	Configs   []model.LeadTypeConfig
	Stats     model.StatsSummary
	Campaigns []model.Campaign
	Contacts  []model.Contact
	Loaded    map[model.Resource]bool
}

// NewSnapshot returns an empty snapshot for leadType.
func NewSnapshot(leadType string) *Snapshot {
	if leadType == "" {
		leadType = model.AllLeadTypes
	}
	return &Snapshot{LeadType: leadType, Loaded: map[model.Resource]bool{}}
}

// Apply installs res if it is the latest fetch of its resource and targets the
// snapshot's lead type. A failed fetch keeps prior state and yields an error
// notice. It reports whether state changed.
func (s *Snapshot) Apply(res Result, seq *Sequencer) (model.Notice, bool) {
	if seq != nil && !seq.Current(res.Resource, res.Seq) {
		return model.Notice{}, false
	}
	if res.Resource != model.ResourceConfigs && normalizeLeadType(res.LeadType) != s.LeadType {
		return model.Notice{}, false
	}
	if res.Err != nil {
		return model.Notice{Kind: model.NoticeError, Text: LoadFailed}, false
	}
	switch res.Resource {
	case model.ResourceConfigs:
		s.Configs = res.Configs
	case model.ResourceStats:
		s.Stats = res.Stats
	case model.ResourceCampaigns:
		s.Campaigns = res.Campaigns
	case model.ResourceContacts:
		s.Contacts = res.Contacts
	default:
		return model.Notice{}, false
	}
	s.Loaded[res.Resource] = true
	return model.Notice{}, true
}

// Campaign finds a campaign by id.
func (s *Snapshot) Campaign(id string) (model.Campaign, bool) {
	for _, c := range s.Campaigns {
		if c.ID.String() == id {
			return c, true
		}
	}
	return model.Campaign{}, false
}

// Contact finds a contact by id.
func (s *Snapshot) Contact(id string) (model.Contact, bool) {
	for _, c := range s.Contacts {
		if c.ID.String() == id {
			return c, true
		}
	}
	return model.Contact{}, false
}

// CampaignsByID returns the campaigns for ids in the order given, skipping
// unknown ids.
func (s *Snapshot) CampaignsByID(ids []string) []model.Campaign {
	out := make([]model.Campaign, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.Campaign(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// LeadTypeName returns the display name of the selected lead type.
func (s *Snapshot) LeadTypeName() string {
	if s.LeadType == model.AllLeadTypes {
		return "All lead types"
	}
	for _, cfg := range s.Configs {
		if cfg.LeadTypeID.String() == s.LeadType {
			return cfg.LeadTypeName
		}
	}
	return s.LeadType
}

func normalizeLeadType(leadType string) string {
	if leadType == "" {
		return model.AllLeadTypes
	}
	return leadType
}
