package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/config"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/notice"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/rules"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/schema"
	"github.com/MobilityData/gtfs-validator-sub014/pkg/validator"
)

var version = "0.1.0"

// exitFeedErrors is the exit code of a run whose report holds errors when
// --fail-on-error is set.
const exitFeedErrors = 2

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "gtfs-validator",
		Short: "Validate GTFS schedule feeds",
		Long: `gtfs-validator checks a GTFS schedule feed, given as a directory or a zip archive,
against the GTFS table schemas and a set of cross-table rules, and writes a JSON report
of the notices it found.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gtfs-validator v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rules",
		Short: "List validation rules and notice codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := validator.NewRegistry()
			if err := rules.RegisterDefaults(r, schema.Default()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Rules:")
			for _, name := range r.Names() {
				fmt.Fprintf(out, "  - %s\n", name)
			}
			fmt.Fprintln(out, "\nNotices:")
			for _, d := range notice.Definitions() {
				fmt.Fprintf(out, "  %-60s %s\n", d.Code, d.Severity)
			}
			return nil
		},
	})

	var configFile, writeFile string
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if writeFile != "" {
				return config.Save(writeFile, cfg)
			}
			data, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	configCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML configuration file")
	configCmd.Flags().StringVarP(&writeFile, "write", "w", "", "Write the configuration to this file instead of stdout")
	root.AddCommand(configCmd)

	root.AddCommand(newValidateCommand())

	if err := root.Execute(); err != nil {
		if code, ok := err.(exitCode); ok {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitCode ends the process with a status but no message.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }
