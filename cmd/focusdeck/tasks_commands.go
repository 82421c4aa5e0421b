package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusdeck/internal/commands"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Inspect and edit the stored task list",
	}
	tasksCmd.AddCommand(newTasksListCommand(ctx))
	tasksCmd.AddCommand(newTasksAddCommand(ctx))
	tasksCmd.AddCommand(newTasksDoneCommand(ctx))
	tasksCmd.AddCommand(newTasksRemoveCommand(ctx))
	tasksCmd.AddCommand(newTasksAlarmCommand(ctx))
	return tasksCmd
}

func newTasksListCommand(ctx *commandContext) *cobra.Command {
	var openOnly bool
	var status, priority, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks in creation order.

Row numbers always refer to the full list, so they stay valid for
"tasks done" and "tasks rm" while a filter is applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if openOnly {
				if status != "" && !strings.EqualFold(status, string(tasks.StatusActive)) {
					return fmt.Errorf("--open conflicts with --status %s", status)
				}
				status = string(tasks.StatusActive)
			}
			filter, err := tasks.ParseListFilter(status, priority, category)
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), logger, func(store *tasks.Store) error {
				list := store.List(tasks.ListFilter{})
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No tasks yet")
					return nil
				}
				shown := printTaskTable(out, list, filter, time.Now())
				if shown == 0 {
					fmt.Fprintf(out, "No tasks match %s\n", filter)
				}
				sum := store.Summary()
				fmt.Fprintf(out, "%d task(s), %d completed, %d with alarms\n", sum.Total, sum.Completed, sum.Alarms)
				if !filter.IsZero() {
					fmt.Fprintf(out, "%d shown (%s)\n", shown, filter)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", false, "Hide completed tasks (same as --status active)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: all, active, completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Filter by priority: all, low, medium, high")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	return cmd
}

// printTaskTable renders the rows of list that match filter and returns how
// many it printed. Row numbers index the unfiltered list.
func printTaskTable(out io.Writer, list []model.Task, filter tasks.ListFilter, now time.Time) int {
	rows := make([][]string, 0, len(list))
	for i, t := range list {
		if !filter.Match(t) {
			continue
		}
		timer := "-"
		if t.Timer > 0 {
			timer = (time.Duration(t.Timer) * time.Second).String()
		}
		alarm := "-"
		if t.AlarmArmed() {
			alarm = t.AlarmTime
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.ID,
			t.Text,
			string(t.Priority),
			t.Category,
			strings.Join(t.Tags, ","),
			timer,
			alarm,
			yesNo(t.Completed),
			humanize.RelTime(t.CreatedAt, now, "ago", "from now"),
		})
	}
	if len(rows) == 0 {
		return 0
	}
	fmt.Fprint(out, renderTable(
		[]string{"#", "ID", "Task", "Priority", "Category", "Tags", "Timer", "Alarm", "Done", "Added"},
		rows,
		[]columnAlignment{alignRight},
	))
	fmt.Fprintln(out)
	return len(rows)
}

func newTasksAddCommand(ctx *commandContext) *cobra.Command {
	var opts tasks.CreateOptions
	var due string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(due) != "" {
				parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(due), time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q, want YYYY-MM-DD", due)
				}
				opts.DueDate = &parsed
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), logger, func(store *tasks.Store) error {
				task, err := store.Create(cmd.Context(), strings.Join(args, " "), opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added task %s: %s\n", task.ID, task.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Category label")
	cmd.Flags().StringSliceVarP(&opts.Tags, "tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&opts.AlarmTime, "alarm", "", "Daily alarm time (HH:MM)")
	cmd.Flags().IntVar(&opts.EstimatedTime, "estimate", 0, "Estimated minutes")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTasksDoneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id|#>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), logger, func(store *tasks.Store) error {
				id, err := resolveTaskID(store, args[0])
				if err != nil {
					return err
				}
				task, err := store.ToggleComplete(cmd.Context(), id)
				if err != nil {
					return err
				}
				state := "reopened"
				if task.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s\n", task.ID, state)
				return nil
			})
		},
	}
}

func newTasksRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|#>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), logger, func(store *tasks.Store) error {
				id, err := resolveTaskID(store, args[0])
				if err != nil {
					return err
				}
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
				return nil
			})
		},
	}
}

func newTasksAlarmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "alarm <id|#> <HH:MM|off>",
		Short: "Set or clear a task's daily alarm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clock := strings.TrimSpace(args[1])
			if strings.EqualFold(clock, "off") {
				clock = ""
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), logger, func(store *tasks.Store) error {
				id, err := resolveTaskID(store, args[0])
				if err != nil {
					return err
				}
				task, err := store.SetAlarm(cmd.Context(), id, clock)
				if err != nil {
					return err
				}
				if clock == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Alarm cleared on task %s\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Alarm set on task %s for %s\n", id, task.AlarmTime)
				return nil
			})
		},
	}
}

// resolveTaskID accepts a task id, a 1-based row number as printed by
// `tasks list`, or "latest".
func resolveTaskID(store *tasks.Store, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "latest") {
		t, ok := store.Latest()
		if !ok {
			return "", errors.New("no tasks yet")
		}
		return t.ID, nil
	}
	if n, ok := commands.Target(raw).Index(); ok {
		list := store.List(tasks.ListFilter{})
		if n <= len(list) {
			return list[n-1].ID, nil
		}
	}
	if _, err := store.Get(raw); err != nil {
		return "", fmt.Errorf("task %s: %w", raw, err)
	}
	return raw, nil
}
