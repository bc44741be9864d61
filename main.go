package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nickdnickd/taxmycrypto/app"
	"github.com/nickdnickd/taxmycrypto/ledger"
	"github.com/nickdnickd/taxmycrypto/log"
)

var (
	yearFlag       int
	strategyFlag   string
	configFlag     string
	outputDirFlag  string
	fullValuesFlag bool
	showPoolsFlag  bool
	printOnlyFlag  bool
	verboseFlag    bool
)

func runRootCmd(cmd *cobra.Command, args []string) error {
	if err := log.Init(verboseFlag); err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(configFlag)
	if err != nil {
		return err
	}

	options := app.NewOptions()
	options.TrackedAssets = cfg.Assets
	options.OutputDir = outputDirFlag
	options.RenderFullDollarValues = fullValuesFlag
	options.ShowLotPools = showPoolsFlag
	options.PrintOnly = printOnlyFlag

	switch {
	case yearFlag != 0:
		options.Year = yearFlag
	case cfg.Year != 0:
		options.Year = cfg.Year
	}

	strategyName := strategyFlag
	if strategyName == "" && cfg.Strategy != "" {
		strategyName = cfg.Strategy
	}
	if strategyName != "" {
		strategy, err := ledger.ParseStrategy(strategyName)
		if err != nil {
			return err
		}
		options.Strategy = strategy
	}

	errPrinter := log.NewStderrErrorPrinter()
	if !app.RunProceedsAppToFiles(os.Stdout, args[0], options, errPrinter) {
		// Error text has already been printed.
		os.Exit(1)
	}
	return nil
}

func main() {
	// A .env file may carry display settings like HUMANIZE.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "taxmycrypto TRANSACTIONS_CSV",
		Short: "Calculate capital-gains proceeds from a crypto transaction ledger",
		Long: "taxmycrypto matches each sale of a tax year against prior buy lots\n" +
			"(FIFO, LIFO or HIFO), computes cost basis and proceeds per matched\n" +
			"fragment, and writes a proceeds report plus an updated ledger whose\n" +
			"attribution column makes later-year runs skip consumed lots.",
		Version:       app.AppVersion,
		Args:          cobra.ExactArgs(1),
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().IntVarP(&yearFlag, "year", "y", 0,
		"Tax year to compute (default: last year)")
	rootCmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "",
		"Lot-matching strategy: fifo, lifo or hifo (default: hifo)")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "taxmycrypto.yaml",
		"Path to the YAML config file")
	rootCmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "",
		"Directory for the output artifacts (default: alongside the input)")
	rootCmd.Flags().BoolVar(&fullValuesFlag, "print-full-values", false,
		"Print full dollar values without rounding to cents")
	rootCmd.Flags().BoolVar(&showPoolsFlag, "show-lots", false,
		"Also print per-lot attribution state after the run")
	rootCmd.Flags().BoolVar(&printOnlyFlag, "print-only", false,
		"Render the report without writing output files")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging of the match loop")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
