package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/class-scheduler/internal/application"
	"github.com/example/class-scheduler/internal/config"
)

func newClassCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Create and manage recurring classes",
	}
	cmd.AddCommand(
		newClassCreateCommand(opts),
		newClassShowCommand(opts),
		newClassReassignCommand(opts),
		newClassEnrolmentCommand(opts, "enroll", "Add a participant to a class"),
		newClassEnrolmentCommand(opts, "withdraw", "Remove a participant from a class"),
	)
	return cmd
}

func newClassCreateCommand(opts *rootOptions) *cobra.Command {
	var file, start string
	cmd := &cobra.Command{
		Use:   "create -f classes.toml",
		Short: "Schedule every class declared in a TOML file",
		Long: `Schedule every [[class]] table in the file. Classes are created in file
order and the command stops at the first failure; classes created before it
are kept.

--start replaces start_date, weekdays and start_time of every class in the
file: each class then meets weekly on the weekday and at the local time the
instant falls on in its timezone, starting that day.
Example:
  scheduler class create -f classes.toml --start 2021-12-06T21:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classFile, err := config.LoadClassFile(file)
			if err != nil {
				return err
			}
			var startAt *time.Time
			if start != "" {
				at, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start (use RFC3339): %w", err)
				}
				startAt = &at
			}
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				created := make([]application.ClassDetails, 0, len(classFile.Classes))
				for i, spec := range classFile.Classes {
					input := classInputFromSpec(spec)
					if startAt != nil {
						input.StartAt = startAt
						input.StartDate, input.Weekdays, input.StartTime = "", nil, ""
					}
					class, err := rt.service.ScheduleClass(ctx, input)
					if err != nil {
						return fmt.Errorf("class %d (%s): %w", i+1, spec.Acronym, err)
					}
					created = append(created, class)
				}
				return writeJSON(cmd, created)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file with [[class]] tables")
	cmd.Flags().StringVar(&start, "start", "", "first session instant (RFC3339); derives the weekly schedule")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newClassShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-acronym>",
		Short: "Print a class with its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				class, err := rt.service.GetClass(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, class)
			})
		},
	}
}

func newClassReassignCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "reassign <id-or-acronym> --from <user> --to <user>",
		Short: "Hand every session taught by one instructor to another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				current, err := rt.service.GetClass(ctx, args[0])
				if err != nil {
					return err
				}
				class, err := rt.service.ReassignInstructor(ctx, current.ID, from, to)
				if err != nil {
					return err
				}
				return writeJSON(cmd, class)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "instructor currently teaching")
	cmd.Flags().StringVar(&to, "to", "", "instructor taking over")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newClassEnrolmentCommand(opts *rootOptions, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id-or-acronym> <user>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *runtime) error {
				current, err := rt.service.GetClass(ctx, args[0])
				if err != nil {
					return err
				}
				change := rt.service.EnrollParticipant
				if verb == "withdraw" {
					change = rt.service.WithdrawParticipant
				}
				class, err := change(ctx, current.ID, args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd, class)
			})
		},
	}
}

func classInputFromSpec(spec config.ClassSpec) application.ClassInput {
	return application.ClassInput{
		Name:               spec.Name,
		Acronym:            spec.Acronym,
		InstructorID:       spec.InstructorID,
		HelpMessage:        spec.HelpMessage,
		StartDate:          spec.StartDate.String(),
		Weekdays:           append([]string(nil), spec.Weekdays...),
		StartTime:          spec.StartTime,
		Timezone:           spec.Timezone,
		SessionCount:       spec.SessionCount,
		DurationMinutes:    spec.DurationMinutes,
		LobbyBufferMinutes: spec.LobbyBufferMinutes,
		Participants:       append([]string(nil), spec.Participants...),
	}
}
