package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mcdash/internal/chart"
	"github.com/verte-zerg/mcdash/internal/dashboard"
	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
)

const (
	defaultTopCampaigns = 10
	defaultTrendWidth   = 60
)

func newStatsCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show summary statistics and charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			loader := dashboard.NewLoader(sess.client, sess.log)
			snap, err := loader.Load(cmd.Context(), sess.leadType,
				model.ResourceConfigs, model.ResourceStats, model.ResourceCampaigns, model.ResourceContacts)
			if err != nil {
				return err
			}
			return writeStats(cmd, snap, top)
		},
	}
	cmd.Flags().IntVar(&top, "top", defaultTopCampaigns, "number of campaigns in the open rate chart")
	cmd.Flags().BoolVar(&forceColors, "color", false, "force colored charts")
	return cmd
}

func writeStats(cmd *cobra.Command, snap *dashboard.Snapshot, top int) error {
	w := cmd.OutOrStdout()
	st := snap.Stats
	if err := writeLine(w, "Lead type: %s", snap.LeadTypeName()); err != nil {
		return err
	}
	writeTable(w, table.Row{"Metric", "Value"}, []table.Row{
		{"Campaigns", format.Count(st.TotalCampaigns)},
		{"Sent campaigns", format.Count(st.SentCampaigns)},
		{"Contacts", format.Count(st.TotalContacts)},
		{"Subscribed", format.Count(st.SubscribedContacts)},
		{"Unsubscribed", format.Count(st.UnsubscribedContacts)},
		{"Cleaned", format.Count(st.CleanedContacts)},
		{"Pending", format.Count(st.PendingContacts)},
		{"Emails sent", format.Count(st.TotalEmailsSent)},
		{"Opens", format.Count(st.TotalOpens)},
		{"Clicks", format.Count(st.TotalClicks)},
		{"Avg open rate", format.Rate(st.AvgOpenRate)},
		{"Avg click rate", format.Rate(st.AvgClickRate)},
		{"Last synced", format.Synced(st.LastSyncedAt)},
	}, 2)
	if err := writeLine(w, ""); err != nil {
		return err
	}

	width := chart.TerminalWidth()
	title := fmt.Sprintf("Top %d campaigns by open rate", top)
	if err := chart.WriteBars(w, title, chart.TopCampaignsByOpenRate(snap.Campaigns, top), width, forceColors); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := chart.WriteBars(w, "Contacts by status", chart.ContactsByStatus(snap.Contacts), width, forceColors); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	trend := chart.OpenRateTrend(snap.Campaigns)
	if len(trend) == 0 {
		return nil
	}
	spark := chart.Sparkline(chart.Resample(trend, min(width, defaultTrendWidth)))
	return writeLine(w, "Open rate trend (%d sent campaigns)\n%s", len(trend), spark)
}

func newLeadTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lead-types",
		Short: "List lead type integrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			configs, err := sess.client.Configs(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load lead types: %w", err)
			}
			if len(configs) == 0 {
				return writeLine(cmd.OutOrStdout(), "No lead types configured")
			}
			rows := make([]table.Row, 0, len(configs))
			for _, cfg := range configs {
				rows = append(rows, table.Row{
					cfg.LeadTypeID.String(),
					cfg.LeadTypeName,
					cfg.ConnectionStatus,
					format.Synced(cfg.LastSyncedAt),
				})
			}
			writeTable(cmd.OutOrStdout(), table.Row{"ID", "Name", "Status", "Last synced"}, rows)
			return nil
		},
	}
}
