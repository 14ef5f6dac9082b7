package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/class-scheduler/internal/application"
	"github.com/example/class-scheduler/internal/persistence"
)

func newAdHocCommand(opts *rootOptions) *cobra.Command {
	var (
		input application.AdHocInput
		start string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Book a one-off session",
		Long: `Book a one-off session. --start is an RFC3339 instant; it is snapped to the
15-minute slot it falls in.
Example:
  scheduler adhoc create --name "Tech check" --type "tech check" \
    --start 2021-12-06T19:00:00Z --timezone America/Los_Angeles \
    --instructor instructor-002 --participant participant-001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start (use RFC3339): %w", err)
			}
			input.Start = at
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				session, err := rt.service.CreateAdHocSession(ctx, input)
				if err != nil {
					return err
				}
				return writeJSON(cmd, session)
			})
		},
	}
	flags := create.Flags()
	flags.StringVar(&input.Name, "name", "", "session name")
	flags.StringVar(&input.Type, "type", "", "session type, e.g. \"tech check\" or \"orientation\"")
	flags.StringVar(&start, "start", "", "start instant (RFC3339)")
	flags.StringVar(&input.Timezone, "timezone", "", "IANA timezone of the session")
	flags.IntVar(&input.DurationMinutes, "duration", 30, "duration in minutes")
	flags.StringVar(&input.InstructorID, "instructor", "", "instructor user ID")
	flags.StringSliceVar(&input.Participants, "participant", nil, "participant user ID (repeatable)")
	flags.StringVar(&input.Notes, "notes", "", "free-form notes")
	_ = create.MarkFlagRequired("start")

	show := &cobra.Command{
		Use:   "show <acronym>",
		Short: "Print a one-off session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				session, err := rt.service.GetAdHocSession(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, session)
			})
		},
	}

	cmd := &cobra.Command{
		Use:   "adhoc",
		Short: "Book and inspect one-off sessions",
	}
	cmd.AddCommand(create, show)
	return cmd
}

func newDirectoryCommand(opts *rootOptions) *cobra.Command {
	var record persistence.DisplayRecord
	add := &cobra.Command{
		Use:   "add <user-id> --name <name>",
		Short: "Add or replace the display name of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record.ID = args[0]
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.service.PutDisplayRecord(ctx, record); err != nil {
					return err
				}
				return writeJSON(cmd, map[string]string{
					"id":    record.ID,
					"name":  record.Name,
					"email": record.Email,
				})
			})
		},
	}
	add.Flags().StringVar(&record.Name, "name", "", "display name")
	add.Flags().StringVar(&record.Email, "email", "", "contact email")
	_ = add.MarkFlagRequired("name")

	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Maintain the user display names shown next to sessions",
	}
	cmd.AddCommand(add)
	return cmd
}

func newUpcomingCommand(opts *rootOptions) *cobra.Command {
	var user, at string
	cmd := &cobra.Command{
		Use:   "upcoming --user <id> [--at <RFC3339>]",
		Short: "Resolve the session a user should join next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var when time.Time
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at (use RFC3339): %w", err)
				}
				when = parsed
			}
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				banner, err := rt.service.UpcomingBanner(ctx, user, when)
				if err != nil {
					return err
				}
				return writeJSON(cmd, banner)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user ID")
	cmd.Flags().StringVar(&at, "at", "", "evaluate at this instant instead of now (RFC3339)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
