package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mcdash/internal/action"
	"github.com/verte-zerg/mcdash/internal/format"
	"github.com/verte-zerg/mcdash/internal/model"
	"github.com/verte-zerg/mcdash/internal/store"
)

func newSyncCmd(entity model.Entity) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: fmt.Sprintf("Sync %s from the email platform", entity),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer sess.Close()
			out, err := sess.dispatcher.Sync(cmd.Context(), entity, sess.leadType)
			return reportOutcome(cmd.OutOrStdout(), out, err)
		},
	}
}

func newResyncCmd(entity model.Entity) *cobra.Command {
	return &cobra.Command{
		Use:   "resync <id> [id...]",
		Short: fmt.Sprintf("Resync %s by id", entity),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer sess.Close()
			out, err := sess.dispatcher.Resync(cmd.Context(), entity, args...)
			return reportOutcome(cmd.OutOrStdout(), out, err)
		},
	}
}

func newArchiveCmd(entity model.Entity) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "archive <id> [id...]",
		Short: fmt.Sprintf("Archive %s by id", entity),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Archive %d %s? [y/N] ", len(args), entity))
				if err != nil {
					return err
				}
				if !ok {
					return writeLine(cmd.OutOrStdout(), "Cancelled")
				}
			}
			sess, err := openSession(cmd, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer sess.Close()
			out, err := sess.dispatcher.Archive(cmd.Context(), entity, args...)
			return reportOutcome(cmd.OutOrStdout(), out, err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// reportOutcome prints a successful notice. A failed action returns its notice
// as the error so the user sees the server message.
func reportOutcome(w io.Writer, out action.Outcome, err error) error {
	if err != nil {
		if out.Notice.Text != "" {
			return errors.New(out.Notice.Text)
		}
		if errors.Is(err, action.ErrPermissionDenied) {
			return fmt.Errorf("you do not have permission for this action: %w", err)
		}
		return err
	}
	return writeLine(w, "%s", out.Notice.Text)
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var entity string
	var since string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show dispatched actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := store.HistoryQuery{Limit: limit}
			switch model.Entity(entity) {
			case "":
			case model.EntityCampaigns, model.EntityContacts:
				q.Entity = model.Entity(entity)
			default:
				return fmt.Errorf("--entity must be campaigns or contacts")
			}
			if since != "" {
				parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --since value: %w", err)
				}
				q.Since = &parsed
			}
			sess, err := openSession(cmd, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer sess.Close()
			records, err := sess.store.ListActions(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			if len(records) == 0 {
				return writeLine(cmd.OutOrStdout(), "No actions recorded yet")
			}
			rows := make([]table.Row, 0, len(records))
			for _, rec := range records {
				result := "ok"
				if !rec.OK {
					result = "failed"
				}
				rows = append(rows, table.Row{
					format.DateTime(rec.At),
					rec.Action,
					string(rec.Entity),
					format.OrDash(rec.LeadType),
					strings.Join(rec.IDs, ","),
					result,
					rec.Message,
				})
			}
			writeTable(cmd.OutOrStdout(), table.Row{"When", "Action", "Entity", "Lead type", "IDs", "Result", "Message"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", store.DefaultHistoryLimit, "maximum number of actions")
	cmd.Flags().StringVar(&entity, "entity", "", "only campaigns or contacts")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD)")
	return cmd
}
