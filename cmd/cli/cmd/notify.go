package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spoils/pkg/api"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Enqueue a notification",
	Long: `Enqueue a send_notification job.

Notifications are not unique: every submission creates a fresh job.

Example:
  spoilsctl notify --user 7 --type expiry --message "milk expires tomorrow"`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		userID, _ := flags.GetInt64("user")
		notifType, _ := flags.GetString("type")
		message, _ := flags.GetString("message")

		if message == "" {
			cmd.Println("Error: --message is required")
			return
		}

		client := NewSpoilsClient(viper.GetString("url"), viper.GetString("token"))

		result, err := client.Notify(api.NotifyRequest{
			UserID:           userID,
			NotificationType: notifType,
			Message:          message,
		})
		if err != nil {
			printAPIError(cmd, "Notify failed", err)
			return
		}

		cmd.Printf("✓ Notification enqueued!\nJob ID: %d\n", result.JobID)
	},
}

func init() {
	flags := notifyCmd.Flags()
	flags.Int64("user", 0, "Target user id")
	flags.String("type", "", "Notification type")
	flags.StringP("message", "m", "", "Message body (required)")

	rootCmd.AddCommand(notifyCmd)
}
