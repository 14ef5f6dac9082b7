package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/class-scheduler/internal/application"
)

func newSessionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Move, skip, delete and list class sessions",
	}
	cmd.AddCommand(
		newSessionRescheduleCommand(opts),
		newSessionMutationCommand(opts, "skip", "Skip a session and append a replacement after the last one"),
		newSessionMutationCommand(opts, "delete", "Delete a session and shorten the class"),
		newSessionListCommand(opts),
	)
	return cmd
}

func newSessionRescheduleCommand(opts *rootOptions) *cobra.Command {
	var (
		date, startTime, timezone, helpMessage, instructor string
		disableEmails                                      bool
	)
	cmd := &cobra.Command{
		Use:   "reschedule <session-acronym>",
		Short: "Change the date, time or details of one session",
		Long: `Change one session. Only the flags given are applied. --time is read in the
session's timezone, or in --timezone when both are given.
Examples:
  scheduler session reschedule MTSTANDG1-211208 --date 2021-12-09
  scheduler session reschedule MTSTANDG1-211213 --time 14:30 --instructor instructor-002`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := application.RescheduleInput{SessionAcronym: args[0]}
			flags := cmd.Flags()
			if flags.Changed("date") {
				input.Date = &date
			}
			if flags.Changed("time") {
				input.StartTime = &startTime
			}
			if flags.Changed("timezone") {
				input.Timezone = &timezone
			}
			if flags.Changed("help-message") {
				input.HelpMessage = &helpMessage
			}
			if flags.Changed("instructor") {
				input.InstructorID = &instructor
			}
			if flags.Changed("disable-emails") {
				input.DisableEmails = &disableEmails
			}
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.service.RescheduleSession(ctx, input)
				if err != nil {
					return err
				}
				return writeJSON(cmd, result)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&date, "date", "", "new local date (YYYY-MM-DD)")
	flags.StringVar(&startTime, "time", "", "new local start time (HH:MM)")
	flags.StringVar(&timezone, "timezone", "", "new IANA timezone")
	flags.StringVar(&helpMessage, "help-message", "", "help text shown to participants")
	flags.StringVar(&instructor, "instructor", "", "substitute instructor")
	flags.BoolVar(&disableEmails, "disable-emails", false, "suppress reminder emails")
	return cmd
}

func newSessionMutationCommand(opts *rootOptions, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <session-acronym>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				mutate := rt.service.SkipSession
				if verb == "delete" {
					mutate = rt.service.DeleteSession
				}
				class, err := mutate(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, class)
			})
		},
	}
}

func newSessionListCommand(opts *rootOptions) *cobra.Command {
	var query application.SessionQuery
	var within time.Duration
	cmd := &cobra.Command{
		Use:   "list <class-id-or-acronym>",
		Short: "List the sessions of a class, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query.StartingWithin = within
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				sessions, err := rt.service.ListSessions(ctx, args[0], query)
				if err != nil {
					return err
				}
				return writeJSON(cmd, sessions)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&query.LocalDate, "date", "", "only sessions on this local date (YYYY-MM-DD)")
	flags.StringVar(&query.InstructorID, "instructor", "", "only sessions taught by this user")
	flags.BoolVar(&query.OpenNow, "open-now", false, "only sessions whose lobby is open now")
	flags.BoolVar(&query.InSession, "in-session", false, "only sessions running now")
	flags.BoolVar(&query.FirstUpcoming, "first-upcoming", false, "only the first session whose lobby is open or still to open")
	flags.DurationVar(&within, "within", 0, "only sessions starting within this duration")
	return cmd
}
