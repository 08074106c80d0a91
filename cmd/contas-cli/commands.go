package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"contas/internal/core"
	"contas/internal/recurrence"
)

func newNextCmd(a *app) *cobra.Command {
	var (
		count int
		from  string
	)
	cmd := &cobra.Command{
		Use:   "next <obligation-id>",
		Short: "List the next due dates of a stored obligation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseOptionalDate(from)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			o, err := a.svc.GetObligation(ctx, args[0])
			if err != nil {
				return err
			}
			dates, err := a.svc.Occurrences(ctx, o.ID, ref, count)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s, day %d, %s)\n", o.Title, o.Recurrence, o.DueDay, core.FormatMoney(o.Amount, a.cfg.Locale))
			printDates(a, dates)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", recurrence.DefaultProjectionCount, "Number of occurrences")
	cmd.Flags().StringVar(&from, "from", "", "Reference date (YYYY-MM-DD), default today")
	return cmd
}

// newProjectCmd projects an obligation described entirely by flags, without
// touching the store.
func newProjectCmd(a *app) *cobra.Command {
	var (
		dueDay     int
		count      int
		recurrType string
		start      string
		end        string
		from       string
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project due dates for an ad-hoc schedule",
		Example: "  contas-cli project --due-day 31 --start 2024-01-31\n" +
			"  contas-cli project --due-day 29 --recurrence yearly --start 2024-02-29 -n 5",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startDate, err := core.ParseDate(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endDate, err := parseOptionalDate(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			ref, err := parseOptionalDate(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			if ref.IsZero() {
				ref = a.svc.Today()
			}
			o := core.RecurringObligation{
				ID:         "cli",
				DueDay:     dueDay,
				Recurrence: core.RecurrenceType(strings.ToLower(recurrType)),
				StartDate:  startDate,
				EndDate:    endDate,
			}
			dates, err := recurrence.ProjectObligation(o, ref, count)
			if err != nil {
				return err
			}
			printDates(a, dates)
			return nil
		},
	}
	cmd.Flags().IntVar(&dueDay, "due-day", 0, "Nominal due day, 1-31")
	cmd.Flags().IntVarP(&count, "count", "n", recurrence.DefaultProjectionCount, "Number of occurrences")
	cmd.Flags().StringVar(&recurrType, "recurrence", string(core.Monthly), "monthly or yearly")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Optional end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "Reference date (YYYY-MM-DD), default today")
	_ = cmd.MarkFlagRequired("due-day")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newTimelineCmd(a *app) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the bills of one month grouped by due day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := a.svc.Today()
			if year == 0 {
				year = today.Year()
			}
			if month == 0 {
				month = int(today.Month())
			}
			tl, err := a.svc.Timeline(cmd.Context(), year, time.Month(month))
			if err != nil {
				return err
			}

			locale := a.cfg.Locale
			fmt.Fprintf(a.out, "%d-%02d (today %s)\n\n", year, month, today)
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, day := range tl.Days {
				for _, inst := range day.Instances {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inst.DueDate, inst.Title,
						core.FormatMoney(inst.Amount, locale), inst.Status)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, s := range tl.View.Skipped {
				fmt.Fprintf(a.out, "skipped %s: %s\n", s.ObligationID, s.Reason)
			}

			sum := tl.Summary
			fmt.Fprintf(a.out, "\nTotal %s | paid %s (%d) | pending %s (%d) | overdue %s (%d)\n",
				core.FormatMoney(sum.Total, locale),
				core.FormatMoney(sum.Paid, locale), sum.PaidCount,
				core.FormatMoney(sum.Pending, locale), sum.PendingCount,
				core.FormatMoney(sum.Overdue, locale), sum.OverdueCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year, default current")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12, default current")
	return cmd
}

func newUpcomingCmd(a *app) *cobra.Command {
	var days, limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List pending bills due in the next days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			instances, err := a.svc.Upcoming(cmd.Context(), days, limit)
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				fmt.Fprintln(a.out, "nothing due")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, inst := range instances {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inst.DueDate, inst.Title,
					core.FormatMoney(inst.Amount, a.cfg.Locale), inst.InstanceKey)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Look-ahead window in days")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of bills, 0 for all")
	return cmd
}

func printDates(a *app, dates []core.Date) {
	if len(dates) == 0 {
		fmt.Fprintln(a.out, "no occurrences")
		return
	}
	for i, d := range dates {
		fmt.Fprintf(a.out, "%2d. %s %s\n", i+1, d, d.Weekday())
	}
}

func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(strings.TrimSpace(s))
}
