package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage recurring evaluation schedules",
	Long: `Schedules re-submit the frozen request snapshot of a baseline run on a
cron expression, producing a fresh run per tick. Use 'ragbench schedule
start' to run the scheduler in the foreground; the API server runs it
automatically.`,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schedules",
	RunE:  runScheduleList,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a schedule",
	RunE:  runScheduleAdd,
}

var scheduleDeleteCmd = &cobra.Command{
	Use:   "delete <schedule-id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleDelete,
}

var scheduleExecuteCmd = &cobra.Command{
	Use:   "execute <schedule-id>",
	Short: "Execute a schedule immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleExecute,
}

var scheduleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler in the foreground",
	RunE:  runScheduleStart,
}

var (
	scheduleName     string
	scheduleRunID    string
	scheduleCronExpr string
	scheduleDisabled bool
)

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleName, "name", "n", "", "Schedule name (required)")
	scheduleAddCmd.Flags().StringVar(&scheduleRunID, "run", "", "Baseline run id to re-submit (required)")
	scheduleAddCmd.Flags().StringVar(&scheduleCronExpr, "cron", "", "Cron expression, e.g. '0 6 * * *' (required)")
	scheduleAddCmd.Flags().BoolVar(&scheduleDisabled, "disabled", false, "Create the schedule disabled")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleDeleteCmd)
	scheduleCmd.AddCommand(scheduleExecuteCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	schedules, err := database.ListSchedules(cmd.Context(), nil)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	if len(schedules) == 0 {
		fmt.Println("No schedules configured yet.")
		return nil
	}

	fmt.Printf("%s⏰ Schedules%s %s\n", HeaderStyle, Reset, FormatMeta(fmt.Sprintf("(%d)", len(schedules))))
	fmt.Println()

	for _, schedule := range schedules {
		status := FormatSuccess("enabled")
		if !schedule.Enabled {
			status = FormatDim("disabled")
		}

		lastRun := "never"
		if schedule.LastRun != nil {
			lastRun = schedule.LastRun.Format("2006-01-02 15:04")
		}

		fmt.Printf("%s  %s\n", FormatValue(schedule.Name), FormatMeta(schedule.ID))
		fmt.Printf("  cron: %s  run: %s  %s  last run: %s\n",
			FormatValue(schedule.CronExpr), FormatMeta(schedule.RunID), status, FormatDim(lastRun))
		fmt.Println()
	}

	return nil
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	if scheduleName == "" || scheduleRunID == "" || scheduleCronExpr == "" {
		return fmt.Errorf("--name, --run and --cron are required")
	}

	if err := scheduler.ValidateCronExpr(scheduleCronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", scheduleCronExpr, err)
	}

	if _, err := evalSvc.GetRun(cmd.Context(), scheduleRunID); err != nil {
		return fmt.Errorf("baseline run not found: %w", err)
	}

	now := time.Now().UTC()
	schedule := &models.Schedule{
		ID:        uuid.New().String(),
		Name:      scheduleName,
		RunID:     scheduleRunID,
		CronExpr:  scheduleCronExpr,
		Enabled:   !scheduleDisabled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := database.CreateSchedule(cmd.Context(), schedule); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	fmt.Printf("%s✅ Schedule created: %s%s\n", SuccessStyle, schedule.ID, Reset)
	return nil
}

func runScheduleDelete(cmd *cobra.Command, args []string) error {
	if err := database.DeleteSchedule(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	fmt.Printf("%s✅ Schedule %s deleted%s\n", SuccessStyle, args[0], Reset)
	return nil
}

func runScheduleExecute(cmd *cobra.Command, args []string) error {
	fmt.Println(FormatDim("Executing schedule..."))

	if err := sched.ExecuteNow(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("schedule execution failed: %w", err)
	}

	fmt.Printf("%s✅ Schedule executed%s\n", SuccessStyle, Reset)
	return nil
}

func runScheduleStart(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s🚀 Starting scheduler%s\n", HeaderStyle, Reset)

	if err := sched.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	fmt.Println("✅ Scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("⏸️  Stopping scheduler...")
	sched.Stop()

	fmt.Println("✅ Scheduler stopped. Goodbye!")
	return nil
}
