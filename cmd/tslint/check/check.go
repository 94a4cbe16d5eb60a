package check

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp/lint"
)

var ErrFindings = errors.New("timestamp marker findings")

const (
	rootDirFlag = "root-dir"
	formatFlag  = "format"
)

var checkFlags = map[string]cobraflags.Flag{
	rootDirFlag: &cobraflags.StringFlag{
		Name:  rootDirFlag,
		Value: "./",
		Usage: "Root directory to scan for Go models",
	},
	formatFlag: &cobraflags.StringFlag{
		Name:  formatFlag,
		Value: "text",
		Usage: "Output format (text, json)",
	},
}

func NewCheckCommand() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Report misplaced, malformed and missing timestamp markers",
		Long: `Scan a directory recursively for struct fields tagged with timestamp markers.

A field marked timestamp:"create" must be a plain column. Fields with gorm
association settings (foreignKey, references, many2many, polymorphic) or with
struct, slice or map types are reported, as are markers that do not parse.
Entities declaring their own CreateTime and UpdateTime fields, both marked
or both unmarked, are reported so they embed a shared Timestamps struct.

Examples:
  tslint check --root-dir ./internal
  tslint check --root-dir ./internal --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(),
				checkFlags[rootDirFlag].GetString(),
				checkFlags[formatFlag].GetString(),
			)
		},
	}

	cobraflags.RegisterMap(checkCmd, checkFlags)
	return checkCmd
}

func run(out io.Writer, rootDir, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (use text or json)", format)
	}

	absPath, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("error resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", absPath)
	}

	report, err := lint.CheckDir(absPath)
	if err != nil {
		return fmt.Errorf("error checking %s: %w", absPath, err)
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("error encoding report: %w", err)
		}
	} else {
		for _, f := range report.Findings {
			fmt.Fprintln(out, f.String())
		}
		fmt.Fprintf(out, "Checked %d files, %d findings\n", report.Files, len(report.Findings))
	}

	if len(report.Findings) > 0 {
		return fmt.Errorf("%w: %d", ErrFindings, len(report.Findings))
	}
	return nil
}
