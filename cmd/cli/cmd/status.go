package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spoils/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Get status of a job",
	Long:  `Retrieve detailed status information for a queued job, including its current state (pending, leased, retrying, completed, failed), attempt count, and timestamps.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewSpoilsClient(viper.GetString("url"), viper.GetString("token"))

		job, err := client.GetJob(args[0])
		if err != nil {
			printAPIError(cmd, "Status failed", err)
			return
		}

		printStatus(cmd, job)
	},
}

func printStatus(cmd *cobra.Command, job *api.JobResponse) {
	icon := statusIcon(job.Status)
	cmd.Printf("%s %sJob Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %d\n", colorDim, colorReset, job.ID)
	cmd.Printf("%sTask:%s        %s\n", colorDim, colorReset, job.TaskType)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(job.Status))
	cmd.Printf("%sAttempts:%s    %d / %d\n", colorDim, colorReset, job.Attempts, job.MaxRetries+1)

	if job.LastError != nil {
		cmd.Printf("%sLast Error:%s  %s%s%s\n", colorDim, colorReset, colorRed, *job.LastError, colorReset)
	}

	cmd.Printf("%sCreated:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(job.CreatedAt))
	if job.Status == "retrying" || job.Status == "pending" {
		cmd.Printf("%sRunnable:%s    %s\n", colorDim, colorReset, formatNotBefore(job.NotBefore))
	}
	cmd.Printf("%sUpdated:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(job.UpdatedAt))
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "leased":
		return colorYellow + "⏳" + colorReset
	case "retrying":
		return colorYellow + "↻" + colorReset
	case "pending":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "leased", "retrying":
		return icon + " " + colorYellow + status + colorReset
	case "pending":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relativeTime(t), colorReset)
}

func formatNotBefore(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if until := time.Until(t); until > 0 {
		return fmt.Sprintf("%s %s(in %s)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorCyan, formatDuration(until), colorReset)
	}
	return "now"
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatGrams renders a per-gram macro value.
func formatGrams(v float64) string {
	return fmt.Sprintf("%.3f g/g", v)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
