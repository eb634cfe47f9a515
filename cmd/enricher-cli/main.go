// Enricher CLI — инструмент командной строки для обогащения
// вакансий и кандидатов через HTTP API.
//
// Использование:
//
//	enricher [--api-url URL] [--output table|json|yaml] <command> <subcommand> [flags]
//
// Команды:
//
//	job        Вакансии: enrich, get, put
//	candidate  Кандидаты: enrich, get, put
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Enricher/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var format string

	rootCmd := &cobra.Command{
		Use:           "enricher",
		Short:         "Enricher CLI — job and resume enrichment",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			format = parsed
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("ENRICHER_API_URL", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().StringVarP(&format, "output", "o", cli.FormatTable, "Output format: table, json, yaml")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(format) }

	rootCmd.AddCommand(
		cli.NewJobCmd(clientFn, outputFn),
		cli.NewCandidateCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
