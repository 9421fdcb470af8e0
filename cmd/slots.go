package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

type slotsOptions struct {
	working       string
	checkup       string
	breakTime     string
	weekStart     string
	granularity   int
	breakDuration int
	booked        []string
}

func slotsCmd() *cobra.Command {
	opts := slotsOptions{}

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the weekly slot table for given working hours",
		Example: `  hms-appointments slots --working "09:00 AM - 05:00 PM" --checkup "09:00 AM - 03:00 PM" \
    --break "01:00 PM" --week-start 2026-10-19 --booked "2026-10-19 10:00 AM"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlots(cmd.OutOrStdout(), opts, time.Now())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.working, "working", "", `working window, e.g. "09:00 AM - 05:00 PM"`)
	flags.StringVar(&opts.checkup, "checkup", "", `checkup window, e.g. "09:00 AM - 03:00 PM"`)
	flags.StringVar(&opts.breakTime, "break", "", `break start, e.g. "01:00 PM"`)
	flags.StringVar(&opts.weekStart, "week-start", "", "first day of the week (YYYY-MM-DD), default today")
	flags.IntVar(&opts.granularity, "granularity", domain.DefaultSlotGranularityMinutes, "slot length in minutes")
	flags.IntVar(&opts.breakDuration, "break-duration", domain.DefaultBreakDurationMinutes, "break length in minutes")
	flags.StringArrayVar(&opts.booked, "booked", nil, `booked slot "YYYY-MM-DD HH:MM AM", repeatable`)
	_ = cmd.MarkFlagRequired("working")
	_ = cmd.MarkFlagRequired("checkup")
	_ = cmd.MarkFlagRequired("break")

	return cmd
}

func runSlots(out io.Writer, opts slotsOptions, now time.Time) error {
	weekStart := types.DateOnly(now)
	if opts.weekStart != "" {
		parsed, err := types.ParseDate(opts.weekStart)
		if err != nil {
			return fmt.Errorf("invalid --week-start: %w", err)
		}
		weekStart = parsed
	}

	booked, err := parseBooked(opts.booked)
	if err != nil {
		return err
	}

	generator := scheduling.NewGenerator(scheduling.Options{
		SlotGranularityMinutes: opts.granularity,
		BreakDurationMinutes:   opts.breakDuration,
	})

	table, err := generator.GenerateWeek(domain.WorkingHours{
		WorkingTime: opts.working,
		CheckupTime: opts.checkup,
		BreakTime:   opts.breakTime,
	}, weekStart)
	if err != nil && !errors.Is(err, scheduling.ErrMalformedSchedule) {
		return err
	}
	if err != nil || table.IsEmpty() {
		fmt.Fprintf(out, "No Slots Available (%s - %s)\n",
			types.FormatDate(table.WeekStart), types.FormatDate(scheduling.WeekEnd(table.WeekStart)))
		if err != nil {
			fmt.Fprintf(out, "reason: %v\n", err)
		}
		return nil
	}

	return printTable(out, table, booked)
}

// printTable выводит время слотов по строкам и дни по столбцам
func printTable(out io.Writer, table domain.WeekTable, booked domain.BookedSlots) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := []string{"TIME"}
	for _, day := range table.Days {
		header = append(header, day.Date.Format("Mon 02.01"))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	// У всех дней одинаковая сетка времени
	for i, slot := range table.Days[0].Slots {
		row := []string{slot.Time.String()}
		for _, day := range table.Days {
			row = append(row, cell(day.Slots[i], booked))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

func cell(slot domain.Slot, booked domain.BookedSlots) string {
	if slot.Status == domain.SlotAvailable && booked.Contains(slot.Date, slot.Time) {
		return "Booked"
	}
	return string(slot.Status)
}

func parseBooked(values []string) (domain.BookedSlots, error) {
	booked := domain.BookedSlots{}
	for _, v := range values {
		date, clock, ok := strings.Cut(strings.TrimSpace(v), " ")
		if !ok {
			return nil, fmt.Errorf("invalid --booked %q: expected \"YYYY-MM-DD HH:MM AM\"", v)
		}
		d, err := types.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("invalid --booked %q: %w", v, err)
		}
		t, err := types.ParseTimeOfDay(clock)
		if err != nil {
			return nil, fmt.Errorf("invalid --booked %q: %w", v, err)
		}
		booked.Add(d, t)
	}
	return booked, nil
}
