// Command tslint reports misplaced timestamp markers in Go source.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/changhyeonkim/gorm-timestamp/cmd/tslint/check"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tslint",
		Short:         "Check timestamp markers on gorm models",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(check.NewCheckCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
