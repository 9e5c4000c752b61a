package pipeline

import "github.com/verte-zerg/mcdash/internal/model"

// CampaignView filters, sorts and pages campaigns in one pass.
func CampaignView(list []model.Campaign, f CampaignFilter, s SortState, page, size int) Page[model.Campaign] {
	return Paginate(SortCampaigns(FilterCampaigns(list, f), s), page, size)
}

// ContactView filters, sorts and pages contacts in one pass.
func ContactView(list []model.Contact, f ContactFilter, s SortState, page, size int) Page[model.Contact] {
	return Paginate(SortContacts(FilterContacts(list, f), s), page, size)
}
