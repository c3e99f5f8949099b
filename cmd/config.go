// ABOUTME: Config command for news-portal CLI
// ABOUTME: Writes a starter config file with the resolved settings

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sawant8123/news-api-portal/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file",
	Long: `Write the current settings to the config file.

The file is written to --config if given, otherwise to ` + config.DefaultFile() + `.
An existing file is kept unless --force is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = config.DefaultFile()
		}
		exitCode := runConfigInit(os.Stdout, path, configForce)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigInit writes the settings to path and returns exit code
func runConfigInit(w io.Writer, path string, force bool) int {
	if err := config.WriteFile(path, *settings, force); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintln(w, "Use --force to overwrite it.")
		}
		return exitFailure
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return exitOK
}
