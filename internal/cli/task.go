package cli

import (
	"database/sql"
	"fmt"
	"strings"

	"focusguard/internal/core/model"
	"focusguard/internal/tasks"

	"github.com/spf13/cobra"
)

func openTaskStore(options *rootOptions) (*tasks.Store, *sql.DB, error) {
	paths, err := options.paths()
	if err != nil {
		return nil, nil, err
	}
	db, err := tasks.Open(paths.Tasks)
	if err != nil {
		return nil, nil, err
	}
	return tasks.NewStore(db), db, nil
}

func newTaskCommand(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var subtasks []string
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := openTaskStore(options)
			if err != nil {
				return err
			}
			defer db.Close()

			task, err := store.CreateTask(cmd.Context(), strings.Join(args, " "), subtasks)
			if err != nil {
				return err
			}
			options.logger.Debug("task created", "task", task.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s  %s\n", task.ID, task.Title)
			for _, subtask := range task.Subtasks {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s  %s\n", subtask.ID, subtask.Title)
			}
			return nil
		},
	}
	addCmd.Flags().StringArrayVarP(&subtasks, "subtask", "s", nil, "Subtask title (repeatable)")

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.TaskStatus(status)
			if filter != "" && !filter.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			store, db, err := openTaskStore(options)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := store.ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			for _, task := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-11s  %s\n", task.ID, task.Status, task.Title)
				for _, subtask := range task.Subtasks {
					mark := " "
					if subtask.Completed {
						mark = "x"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "    [%s] %s  %s\n", mark, subtask.ID, subtask.Title)
				}
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status: todo, in_progress, done")

	statusCmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next := model.TaskStatus(args[1])
			if !next.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			return withTaskStore(options, func(store *tasks.Store) error {
				return store.UpdateTaskStatus(cmd.Context(), args[0], next)
			})
		},
	}

	var undo bool
	subtaskCmd := &cobra.Command{
		Use:   "done-subtask <task-id> <subtask-id>",
		Short: "Mark a subtask completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskStore(options, func(store *tasks.Store) error {
				return store.SetSubtaskCompleted(cmd.Context(), args[0], args[1], !undo)
			})
		},
	}
	subtaskCmd.Flags().BoolVar(&undo, "undo", false, "Mark the subtask incomplete instead")

	cmd.AddCommand(addCmd, listCmd, statusCmd, subtaskCmd)
	return cmd
}

func withTaskStore(options *rootOptions, run func(*tasks.Store) error) error {
	store, db, err := openTaskStore(options)
	if err != nil {
		return err
	}
	defer db.Close()
	return run(store)
}
