package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [name]",
	Short: "Resolve an ingredient by name",
	Long: `Resolve an ingredient name to its record.

An ingredient that already exists answers immediately with its id. A
missing one gets a create_ingredient job; check back with
'spoilsctl ingredient' once the job has run.

Example:
  spoilsctl resolve "Wheat Flour"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewSpoilsClient(viper.GetString("url"), viper.GetString("token"))

		result, err := client.ResolveIngredient(args[0])
		if err != nil {
			printAPIError(cmd, "Resolve failed", err)
			return
		}

		if result.Enqueued {
			cmd.Printf("Creation enqueued as job %d; poll with 'spoilsctl ingredient %q'\n", result.JobID, args[0])
			return
		}
		cmd.Printf("✓ Ingredient exists!\nIngredient ID: %d\n", result.IngredientID)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
