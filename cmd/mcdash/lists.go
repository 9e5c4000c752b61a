package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/export"
	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/pipeline"
)

// listFlags holds the filter, sort and paging flags shared by list and export.
type listFlags struct {
	search    string
	status    string
	from      string
	to        string
	minOpen   float64
	minClick  float64
	minRating int64
	sort      string
	asc       bool
	page      int
	format    string
}

func (f *listFlags) register(cmd *cobra.Command, entity model.Entity, paged bool) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive search")
	cmd.Flags().StringVar(&f.status, "status", pipeline.StatusAll, "status filter or 'all'")
	cmd.Flags().StringVar(&f.from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date (YYYY-MM-DD)")
	if entity == model.EntityContacts {
		cmd.Flags().Int64Var(&f.minRating, "min-rating", 0, "minimum member rating (0-5)")
		cmd.Flags().StringVar(&f.sort, "sort", dashboard.DefaultContactSort.Field, "sort field")
	} else {
		cmd.Flags().Float64Var(&f.minOpen, "min-open", 0, "minimum open rate percent")
		cmd.Flags().Float64Var(&f.minClick, "min-click", 0, "minimum click rate percent")
		cmd.Flags().StringVar(&f.sort, "sort", dashboard.DefaultCampaignSort.Field, "sort field")
	}
	cmd.Flags().BoolVar(&f.asc, "asc", false, "sort ascending")
	if paged {
		cmd.Flags().IntVar(&f.page, "page", 1, "page number")
		cmd.Flags().IntVar(&pageSize, "page-size", pipeline.DefaultPageSize, "rows per page")
		cmd.Flags().StringVar(&f.format, "format", formatTable, "output format (table, json, csv)")
	}
}

func (f *listFlags) sortState(cmd *cobra.Command, fallback pipeline.SortState, valid func(string) bool) (pipeline.SortState, error) {
	if !cmd.Flags().Changed("sort") && !cmd.Flags().Changed("asc") {
		return fallback, nil
	}
	field := f.sort
	if !cmd.Flags().Changed("sort") {
		field = fallback.Field
	}
	if !valid(field) {
		return pipeline.SortState{}, fmt.Errorf("unknown sort field %q", field)
	}
	return pipeline.SortState{Field: field, Desc: !f.asc}, nil
}

func (f *listFlags) dateRange() (pipeline.DateRange, error) {
	return pipeline.ParseDateRange(f.from, f.to, time.Local)
}

func (f *listFlags) campaignFilter() (pipeline.CampaignFilter, error) {
	rng, err := f.dateRange()
	if err != nil {
		return pipeline.CampaignFilter{}, err
	}
	if f.minOpen < 0 || f.minOpen > 100 || f.minClick < 0 || f.minClick > 100 {
		return pipeline.CampaignFilter{}, fmt.Errorf("--min-open and --min-click must be between 0 and 100")
	}
	return pipeline.CampaignFilter{
		Search:       f.search,
		Status:       f.status,
		SendTime:     rng,
		MinOpenRate:  f.minOpen,
		MinClickRate: f.minClick,
	}, nil
}

func (f *listFlags) contactFilter() (pipeline.ContactFilter, error) {
	rng, err := f.dateRange()
	if err != nil {
		return pipeline.ContactFilter{}, err
	}
	if f.minRating < 0 || f.minRating > 5 {
		return pipeline.ContactFilter{}, fmt.Errorf("--min-rating must be between 0 and 5")
	}
	return pipeline.ContactFilter{
		Search:     f.search,
		Status:     f.status,
		LastSynced: rng,
		MinRating:  f.minRating,
	}, nil
}

// pageMeta wraps a page of records for JSON output.
type pageMeta[T any] struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Items []T `json:"items"`
}

func newCampaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List, inspect and manage campaigns",
	}
	cmd.AddCommand(newCampaignListCmd())
	cmd.AddCommand(newCampaignShowCmd())
	cmd.AddCommand(newCampaignCompareCmd())
	cmd.AddCommand(newExportCmd(model.EntityCampaigns))
	cmd.AddCommand(newSyncCmd(model.EntityCampaigns))
	cmd.AddCommand(newResyncCmd(model.EntityCampaigns))
	cmd.AddCommand(newArchiveCmd(model.EntityCampaigns))
	return cmd
}

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List, inspect and manage contacts",
	}
	cmd.AddCommand(newContactListCmd())
	cmd.AddCommand(newContactShowCmd())
	cmd.AddCommand(newExportCmd(model.EntityContacts))
	cmd.AddCommand(newSyncCmd(model.EntityContacts))
	cmd.AddCommand(newResyncCmd(model.EntityContacts))
	cmd.AddCommand(newArchiveCmd(model.EntityContacts))
	return cmd
}

func newCampaignListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
	}
	flags.register(cmd, model.EntityCampaigns, true)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		out, err := validateFormat(flags.format)
		if err != nil {
			return err
		}
		sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
		if err != nil {
			return err
		}
		filter, err := flags.campaignFilter()
		if err != nil {
			return err
		}
		sortState, err := flags.sortState(cmd, sess.campaignSort, pipeline.IsCampaignSortField)
		if err != nil {
			return err
		}
		list, err := sess.client.Campaigns(cmd.Context(), sess.leadType)
		if err != nil {
			return fmt.Errorf("failed to load campaigns: %w", err)
		}
		page := pipeline.CampaignView(list, filter, sortState, flags.page, sess.pageSize)
		w := cmd.OutOrStdout()
		switch out {
		case formatJSON:
			return writeJSON(w, pageMeta[model.Campaign]{Page: page.Number, Pages: page.Pages, Total: page.Total, Items: page.Items})
		case formatCSV:
			return writeLine(w, "%s", export.Campaigns(page.Items))
		}
		if page.Total == 0 {
			return writeLine(w, "No campaigns match the current filters.")
		}
		rows := make([]table.Row, 0, len(page.Items))
		for _, c := range page.Items {
			rows = append(rows, table.Row{
				c.ID.String(),
				c.DisplayTitle(),
				c.Status,
				format.OrDash(c.LeadTypeName),
				format.DateTime(c.SendTime),
				format.Count(c.EmailsSent),
				format.Rate(c.OpenRate),
				format.Rate(c.ClickRate),
			})
		}
		writeTable(w, table.Row{"ID", "Subject", "Status", "Lead type", "Sent", "Emails", "Open", "Click"}, rows, 6, 7, 8)
		return writeLine(w, "Page %d of %d (%d campaigns, sort %s)", page.Number, page.Pages, page.Total, sortState)
	}
	return cmd
}

func newContactListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
	}
	flags.register(cmd, model.EntityContacts, true)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		out, err := validateFormat(flags.format)
		if err != nil {
			return err
		}
		sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
		if err != nil {
			return err
		}
		filter, err := flags.contactFilter()
		if err != nil {
			return err
		}
		sortState, err := flags.sortState(cmd, sess.contactSort, pipeline.IsContactSortField)
		if err != nil {
			return err
		}
		list, err := sess.client.Contacts(cmd.Context(), sess.leadType)
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}
		page := pipeline.ContactView(list, filter, sortState, flags.page, sess.pageSize)
		w := cmd.OutOrStdout()
		switch out {
		case formatJSON:
			return writeJSON(w, pageMeta[model.Contact]{Page: page.Number, Pages: page.Pages, Total: page.Total, Items: page.Items})
		case formatCSV:
			return writeLine(w, "%s", export.Contacts(page.Items))
		}
		if page.Total == 0 {
			return writeLine(w, "No contacts match the current filters.")
		}
		rows := make([]table.Row, 0, len(page.Items))
		for _, c := range page.Items {
			rows = append(rows, table.Row{
				c.ID.String(),
				c.EmailAddress,
				format.OrDash(c.Name()),
				c.Status,
				strconv.FormatInt(c.MemberRating.Int(), 10),
				format.OrDash(c.MergeFields.Address.City),
				format.OrDash(c.LeadTypeName),
				format.Synced(c.LastSyncedAt),
			})
		}
		writeTable(w, table.Row{"ID", "Email", "Name", "Status", "Rating", "City", "Lead type", "Synced"}, rows, 5)
		return writeLine(w, "Page %d of %d (%d contacts, sort %s)", page.Number, page.Pages, page.Total, sortState)
	}
	return cmd
}

func newCampaignShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show campaign details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			if !sess.perms.ViewCampaign {
				return fmt.Errorf("you do not have permission to view campaigns")
			}
			list, err := sess.client.Campaigns(cmd.Context(), sess.leadType)
			if err != nil {
				return fmt.Errorf("failed to load campaigns: %w", err)
			}
			snap := dashboard.NewSnapshot(sess.leadType)
			snap.Campaigns = list
			c, ok := snap.Campaign(args[0])
			if !ok {
				return fmt.Errorf("campaign %q not found", args[0])
			}
			writeFields(cmd.OutOrStdout(), c.DisplayTitle(), campaignFields(c))
			return nil
		},
	}
}

func campaignFields(c model.Campaign) [][2]string {
	return [][2]string{
		{"Title", format.OrDash(c.Title)},
		{"Preview", format.OrDash(c.PreviewText)},
		{"From", format.OrDash(c.FromName)},
		{"Reply to", format.OrDash(c.ReplyTo)},
		{"Status", c.Status},
		{"Lead type", format.OrDash(c.LeadTypeName)},
		{"Send time", format.DateTime(c.SendTime)},
		{"Emails sent", format.Count(c.EmailsSent)},
		{"Unique opens", format.Count(c.UniqueOpens)},
		{"Open rate", format.Rate(c.OpenRate)},
		{"Unique clicks", format.Count(c.UniqueClicks)},
		{"Click rate", format.Rate(c.ClickRate)},
		{"Unsubscribed", format.Count(c.Unsubscribed)},
		{"Bounces", fmt.Sprintf("%s hard, %s soft", format.Count(c.HardBounces), format.Count(c.SoftBounces))},
		{"Archive URL", format.OrDash(c.ArchiveURL)},
		{"Created", format.Date(c.CreatedAt)},
		{"Last synced", format.Synced(c.LastSyncedAt)},
	}
}

func newContactShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show contact details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			list, err := sess.client.Contacts(cmd.Context(), sess.leadType)
			if err != nil {
				return fmt.Errorf("failed to load contacts: %w", err)
			}
			snap := dashboard.NewSnapshot(sess.leadType)
			snap.Contacts = list
			c, ok := snap.Contact(args[0])
			if !ok {
				return fmt.Errorf("contact %q not found", args[0])
			}
			writeFields(cmd.OutOrStdout(), c.EmailAddress, contactFields(c))
			return nil
		},
	}
}

func contactFields(c model.Contact) [][2]string {
	return [][2]string{
		{"Name", format.OrDash(c.Name())},
		{"Status", c.Status},
		{"Rating", format.Rating(c.MemberRating)},
		{"Address", format.OrDash(c.MergeFields.Address.String())},
		{"Lead type", format.OrDash(c.LeadTypeName)},
		{"VIP", format.Bool(c.VIP)},
		{"Language", format.OrDash(c.Language)},
		{"Email client", format.OrDash(c.EmailClient)},
		{"Source", format.OrDash(c.Source)},
		{"Sync status", format.OrDash(c.SyncStatus)},
		{"Sync error", format.OrDash(c.SyncError)},
		{"Opt-in date", format.Date(c.TimestampOpt)},
		{"Last changed", format.Date(c.LastChanged)},
		{"Last synced", format.Synced(c.LastSyncedAt)},
	}
}

func newCampaignCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id> <id> [id...]",
		Short: "Compare 2 to 4 campaigns side by side",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateCompareSelection(len(args)); err != nil {
				return err
			}
			sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			if !sess.perms.ViewCampaign {
				return fmt.Errorf("you do not have permission to view campaigns")
			}
			list, err := sess.client.Campaigns(cmd.Context(), sess.leadType)
			if err != nil {
				return fmt.Errorf("failed to load campaigns: %w", err)
			}
			snap := dashboard.NewSnapshot(sess.leadType)
			snap.Campaigns = list
			campaigns := snap.CampaignsByID(args)
			if len(campaigns) != len(args) {
				return fmt.Errorf("some campaigns were not found: %s", strings.Join(missingIDs(campaigns, args), ", "))
			}
			writeComparison(cmd, campaigns)
			return nil
		},
	}
}

func missingIDs(found []model.Campaign, ids []string) []string {
	have := make(map[string]struct{}, len(found))
	for _, c := range found {
		have[c.ID.String()] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func writeComparison(cmd *cobra.Command, campaigns []model.Campaign) {
	header := table.Row{"Metric"}
	right := make([]int, 0, len(campaigns))
	for i, c := range campaigns {
		header = append(header, c.DisplayTitle())
		right = append(right, i+2)
	}
	metrics := pipeline.Compare(campaigns)
	rows := make([]table.Row, 0, len(metrics))
	for _, row := range metrics {
		r := table.Row{row.Metric.Label}
		for i, v := range row.Values {
			cell := format.Number(v, 0)
			if row.Metric.Rate {
				cell = format.Percent(v)
			}
			if row.Best[i] {
				cell += " ▲"
			}
			r = append(r, cell)
		}
		rows = append(rows, r)
	}
	writeTable(cmd.OutOrStdout(), header, rows, right...)
}

func newExportCmd(entity model.Entity) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: fmt.Sprintf("Export filtered %s to CSV", entity),
		Args:  cobra.NoArgs,
	}
	flags.register(cmd, entity, false)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
		if err != nil {
			return err
		}
		if !sess.perms.ExportCSV {
			return fmt.Errorf("you do not have permission to export %s", entity)
		}
		var content string
		var count int
		if entity == model.EntityContacts {
			filter, err := flags.contactFilter()
			if err != nil {
				return err
			}
			sortState, err := flags.sortState(cmd, sess.contactSort, pipeline.IsContactSortField)
			if err != nil {
				return err
			}
			list, err := sess.client.Contacts(cmd.Context(), sess.leadType)
			if err != nil {
				return fmt.Errorf("failed to load contacts: %w", err)
			}
			list = pipeline.SortContacts(pipeline.FilterContacts(list, filter), sortState)
			content, count = export.Contacts(list), len(list)
		} else {
			filter, err := flags.campaignFilter()
			if err != nil {
				return err
			}
			sortState, err := flags.sortState(cmd, sess.campaignSort, pipeline.IsCampaignSortField)
			if err != nil {
				return err
			}
			list, err := sess.client.Campaigns(cmd.Context(), sess.leadType)
			if err != nil {
				return fmt.Errorf("failed to load campaigns: %w", err)
			}
			list = pipeline.SortCampaigns(pipeline.FilterCampaigns(list, filter), sortState)
			content, count = export.Campaigns(list), len(list)
		}
		if count == 0 {
			return writeLine(cmd.OutOrStdout(), "No %s to export", entity)
		}
		path, err := export.WriteFile(sess.exportDir, entity, time.Now(), content)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", entity, err)
		}
		return writeLine(cmd.OutOrStdout(), "Exported %d %s to %s", count, entity, path)
	}
	return cmd
}
