package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitekit/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the persisted theme preference",
	Long: `Operates on the local theme preference stored in the state database. The
preview server and the next build start from this mode.`,
}

// withThemeManager runs fn against a manager bound to the state database.
func withThemeManager(cmd *cobra.Command, fn func(m *theme.Manager) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openState(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(newThemeManager(cmd.Context(), database, newLogger()))
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeManager(cmd, func(m *theme.Manager) error {
			fmt.Println(m.Current())
			return nil
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeManager(cmd, func(m *theme.Manager) error {
			fmt.Println(m.Toggle(cmd.Context()))
			return nil
		})
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Set the theme explicitly",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := theme.Parse(args[0])
		if err != nil {
			return err
		}
		return withThemeManager(cmd, func(m *theme.Manager) error {
			m.Set(cmd.Context(), mode)
			fmt.Println(m.Current())
			return nil
		})
	},
}

func init() {
	themeCmd.AddCommand(themeGetCmd, themeToggleCmd, themeSetCmd)
	rootCmd.AddCommand(themeCmd)
}
