package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [barcode]",
	Short: "Enqueue a product fetch by barcode",
	Long: `Enqueue a fetch_product job for the given barcode.

The job pulls the product record from the upstream provider, caches it,
and fans out into ingredient analysis. Submitting the same barcode again
while the first fetch is still in flight collapses onto the same job.

Example:
  spoilsctl fetch 3017620422003`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewSpoilsClient(viper.GetString("url"), viper.GetString("token"))

		result, err := client.FetchProduct(args[0])
		if err != nil {
			printAPIError(cmd, "Fetch failed", err)
			return
		}

		if result.Duplicate {
			cmd.Printf("Already queued as job %d\n", result.JobID)
			return
		}
		cmd.Printf("✓ Fetch enqueued!\nJob ID: %d\n", result.JobID)
	},
}

func printAPIError(cmd *cobra.Command, prefix string, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("%s (%d): %s\n", prefix, apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("%s: %v\n", prefix, err)
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
