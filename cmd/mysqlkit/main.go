// Package main contains the cli implementation of the tool. It uses
// cobra for cli tool implementation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mysqlkit/internal/config"
	"mysqlkit/internal/dump"
	"mysqlkit/internal/frm"
	"mysqlkit/internal/logsink"
	"mysqlkit/internal/output"
)

type decodeFlags struct {
	format  string
	outFile string
}

type splitFlags struct {
	target        string
	directory     string
	filterCommand string
	regex         string
	configFile    string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "mysqlkit",
		Short: "Legacy MySQL table and dump tooling",
	}

	rootCmd.AddCommand(frmCmd())
	rootCmd.AddCommand(dumpCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func frmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frm",
		Short: "Inspect legacy .frm table definition files",
	}
	cmd.AddCommand(frmDecodeCmd())
	return cmd
}

func frmDecodeCmd() *cobra.Command {
	flags := &decodeFlags{}
	cmd := &cobra.Command{
		Use:   "decode <table.frm>",
		Short: "Reconstruct CREATE TABLE DDL from a .frm file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runFrmDecode(args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "sql", "Output format: sql or json")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func runFrmDecode(path string, flags *decodeFlags) error {
	table, err := frm.Parse(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	rendered, err := formatter.FormatTable(table)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return writeOutput(rendered, flags.outFile)
}

func dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Work with mysqldump textual output",
	}
	cmd.AddCommand(dumpSplitCmd())
	return cmd
}

func dumpSplitCmd() *cobra.Command {
	flags := &splitFlags{}
	cmd := &cobra.Command{
		Use:   "split [dump.sql]",
		Short: "Split a mysqldump stream into per-database, per-table files",
		Long: `Split reads a mysqldump text stream (from stdin, or a file argument) and
writes one file per database and table under --directory, optionally
deferring secondary index and foreign key creation to a trailing ALTER
TABLE so the initial data load avoids maintaining them row by row.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var inputPath string
			if len(args) == 1 {
				inputPath = args[0]
			}
			return runDumpSplit(inputPath, flags)
		},
	}
	cmd.Flags().StringVar(&flags.target, "target", "", "Target MySQL version (5.5, 5.6, 5.7)")
	cmd.Flags().StringVarP(&flags.directory, "directory", "d", "", "Output directory")
	cmd.Flags().StringVar(&flags.filterCommand, "filter-command", "", "Shell command each output file is piped through (e.g. \"gzip -1\")")
	cmd.Flags().StringVarP(&flags.regex, "regex", "r", "", "Only write output files whose path matches this regex")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "TOML config file providing defaults for the flags above")
	return cmd
}

func runDumpSplit(inputPath string, flags *splitFlags) error {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applySplitOverrides(&cfg, flags)

	re, err := regexp.Compile(cfg.Regex)
	if err != nil {
		return fmt.Errorf("invalid --regex %q: %w", cfg.Regex, err)
	}

	in := os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", inputPath, err)
		}
		defer f.Close()
		in = f
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sink := logsink.NewLogrusSink(logrus.StandardLogger())
	driver := dump.NewSplitterDriver(dump.Options{
		Target:        dump.Target(cfg.Target),
		Directory:     cfg.Directory,
		FilterCommand: cfg.FilterCommand,
		Regex:         re,
	}, sink)

	tok := dump.NewDumpTokenizer(in)
	state, err := driver.Run(ctx, tok)
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	fmt.Printf("split into %d database(s), %d table(s), %d view(s)\n",
		state.DatabaseCount, state.TableCount, state.ViewCount)
	return nil
}

func applySplitOverrides(cfg *config.SplitterConfig, flags *splitFlags) {
	if flags.target != "" {
		cfg.Target = flags.target
	}
	if flags.directory != "" {
		cfg.Directory = flags.directory
	}
	if flags.filterCommand != "" {
		cfg.FilterCommand = flags.filterCommand
	}
	if flags.regex != "" {
		cfg.Regex = flags.regex
	}
}

func writeOutput(content, outFile string) error {
	if outFile == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("output saved to %s\n", outFile)
	return nil
}
