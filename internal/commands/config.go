package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/sanai/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change sanai settings stored in the config file.

Environment variables prefixed with SANAI_ override the file, e.g.
SANAI_MODEL or SANAI_TTS_ENABLED. The API key may also come from
GEMINI_API_KEY.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tVALUE")
		_, _ = fmt.Fprintln(w, "---\t-----")
		for _, key := range config.Keys() {
			value, _ := config.Get(cfg, key)
			_, _ = fmt.Fprintf(w, "%s\t%s\n", key, displayValue(key, value))
		}
		return w.Flush()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		value, ok := config.Get(cfg, args[0])
		if !ok {
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), displayValue(args[0], value))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.SetValue(args[0], args[1])
		if err != nil {
			return err
		}

		value, _ := config.Get(cfg, args[0])
		fmt.Fprintln(cmd.OutOrStdout(), successMessage(fmt.Sprintf("%s = %s", args[0], displayValue(args[0], value))))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

// displayValue hides all but the last four characters of the API key
func displayValue(key, value string) string {
	if key != "api_key" || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
