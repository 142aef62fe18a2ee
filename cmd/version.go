// =============================================================================
// Quote Converter - Version Command
// =============================================================================
//
// 'quoteconv version' prints what binary is running and which configuration
// it resolved, which is the first thing asked for when an order file looks
// wrong.
//
// COMMAND USAGE:
//   quoteconv version            Full report
//   quoteconv version --short    Version number only
//
// OUTPUT:
//   quoteconv 1.0.0
//   Module:     github.com/ginjaninja78/quote-converter
//   Commit:     3f2a9c1 (modified)
//   Built:      2024-03-15
//   Go:         go1.24.0 linux/amd64
//   Config:     config.yaml (not found, defaults in use)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version and BuildDate are stamped by the release build:
//
//	-ldflags "-X github.com/ginjaninja78/quote-converter/cmd.Version=1.2.0
//	          -X github.com/ginjaninja78/quote-converter/cmd.BuildDate=2024-03-15"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the quoteconv build and the configuration file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionShort {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		}
		info, _ := debug.ReadBuildInfo()
		return printVersion(cmd.OutOrStdout(), buildDetails(info), cfgFile)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}

// build describes the running binary.
type build struct {
	Module   string
	Commit   string
	Modified bool
}

// buildDetails reads the module path and VCS stamp embedded by the Go
// toolchain. Test binaries and `go run` carry no VCS settings.
func buildDetails(info *debug.BuildInfo) build {
	b := build{Module: "github.com/ginjaninja78/quote-converter"}
	if info == nil {
		return b
	}
	if info.Main.Path != "" {
		b.Module = info.Main.Path
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
			if len(b.Commit) > 7 {
				b.Commit = b.Commit[:7]
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

func printVersion(w io.Writer, b build, configPath string) error {
	commit := b.Commit
	if commit == "" {
		commit = "unknown"
	} else if b.Modified {
		commit += " (modified)"
	}

	cfgLine := configPath
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		cfgLine += " (not found, defaults in use)"
	}

	_, err := fmt.Fprintf(w, "quoteconv %s\nModule:     %s\nCommit:     %s\nBuilt:      %s\nGo:         %s %s/%s\nConfig:     %s\n",
		Version, b.Module, commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH, cfgLine)
	return err
}
