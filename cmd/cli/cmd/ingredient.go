package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spoils/pkg/api"
)

var ingredientCmd = &cobra.Command{
	Use:   "ingredient [name]",
	Short: "Show a resolved ingredient",
	Long: `Look up an ingredient by case-insensitive name and print its
per-gram macros and sub-ingredient links.

Example:
  spoilsctl ingredient "Wheat Flour"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewSpoilsClient(viper.GetString("url"), viper.GetString("token"))

		ing, err := client.GetIngredient(args[0])
		if err != nil {
			printAPIError(cmd, "Lookup failed", err)
			return
		}

		printIngredient(cmd, ing)
	},
}

func printIngredient(cmd *cobra.Command, ing *api.IngredientResponse) {
	cmd.Printf("%sIngredient%s\n", colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s       %d\n", colorDim, colorReset, ing.ID)
	cmd.Printf("%sName:%s     %s\n", colorDim, colorReset, ing.Name)
	cmd.Printf("%sBranded:%s  %v\n", colorDim, colorReset, ing.Branded)

	cmd.Printf("%sProtein:%s  %s\n", colorDim, colorReset, formatMacro(ing.ProteinPerGram))
	cmd.Printf("%sCarbs:%s    %s\n", colorDim, colorReset, formatMacro(ing.CarbsPerGram))
	cmd.Printf("%sFat:%s      %s\n", colorDim, colorReset, formatMacro(ing.FatPerGram))
	cmd.Printf("%sFiber:%s    %s\n", colorDim, colorReset, formatMacro(ing.FiberPerGram))

	if len(ing.SubIngredients) > 0 {
		cmd.Printf("%sSub-ingredients:%s %v\n", colorDim, colorReset, ing.SubIngredients)
	}
	if len(ing.ParentIngredients) > 0 {
		cmd.Printf("%sUsed in:%s         %v\n", colorDim, colorReset, ing.ParentIngredients)
	}
}

func formatMacro(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatGrams(*v)
}

func init() {
	rootCmd.AddCommand(ingredientCmd)
}
