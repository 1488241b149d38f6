package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/app"
	"github.com/dvloznov/pocket-ledger/internal/calc"
	"github.com/dvloznov/pocket-ledger/internal/config"
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	infraBQ "github.com/dvloznov/pocket-ledger/internal/infra/bigquery"
	"github.com/dvloznov/pocket-ledger/internal/interest"
	"github.com/dvloznov/pocket-ledger/internal/logger"
	"github.com/dvloznov/pocket-ledger/internal/recurrence"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		runExport(log)
	case "import":
		runImport(log)
	case "run-recurring":
		runRecurring(log)
	case "convert":
		runConvert(log)
	case "accrue":
		runAccrue(log)
	case "next":
		runNext(log)
	case "describe":
		runDescribe(log)
	case "calc":
		runCalc(log)
	case "archive":
		runArchive(log)
	case "spending":
		runSpending(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Pocket Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  export          Write the ledger backup document")
	fmt.Println("  import          Replace the ledger with a backup document")
	fmt.Println("  run-recurring   Generate transactions for due recurring rules")
	fmt.Println("  convert         Convert an amount between currencies")
	fmt.Println("  accrue          Compound interest on a principal")
	fmt.Println("  next            Show the next occurrence of a recurring date")
	fmt.Println("  describe        Describe a recurring rule in words")
	fmt.Println("  calc            Evaluate an amount expression")
	fmt.Println("  archive         Copy ledger transactions to BigQuery")
	fmt.Println("  spending        Monthly spending report from the BigQuery archive")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(log zerolog.Logger, path string) *config.Config {
	var paths []string
	if path != "" {
		paths = append(paths, path)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	return cfg
}

func openApp(ctx context.Context, log zerolog.Logger, configPath string) *app.App {
	a, err := app.Open(ctx, loadConfig(log, configPath), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	return a
}

// parseDateFlag parses value with snapshot.ParseDate, or returns fallback when
// value is empty.
func parseDateFlag(log zerolog.Logger, name, value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	t, err := snapshot.ParseDate(value)
	if err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("Invalid date")
	}
	return t
}

func parseDecimalFlag(log zerolog.Logger, name, value string) decimal.Decimal {
	d, err := calc.Evaluate(value)
	if err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("Invalid amount")
	}
	return d
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	out := fs.String("out", "", "Output file (defaults to stdout)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	a := openApp(ctx, log, *configPath)
	defer a.Close()

	data, err := a.Ledger.Export()
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	if *out == "" {
		os.Stdout.Write(data)
		fmt.Println()
		return
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		log.Fatal().Err(err).Str("file", *out).Msg("Failed to write backup")
	}
	log.Info().Str("file", *out).Int("bytes", len(data)).Msg("Backup written")
}

func runImport(log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	file := fs.String("file", "", "Backup document to import")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Usage: cli import -file PATH")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read backup")
	}

	ctx := logger.WithContext(context.Background(), log)
	a := openApp(ctx, log, *configPath)
	defer a.Close()

	if err := a.Ledger.Import(ctx, data); err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	state := a.Ledger.Snapshot()
	fmt.Printf("Imported %d accounts, %d transactions, %d recurring rules.\n",
		len(state.Accounts), len(state.Transactions), len(state.RecurringRules))
}

func runRecurring(log zerolog.Logger) {
	fs := flag.NewFlagSet("run-recurring", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	asOf := fs.String("as-of", "", "Run as of this date (defaults to now)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	a := openApp(ctx, log, *configPath)
	defer a.Close()

	report, err := a.Ledger.RunRecurring(ctx, parseDateFlag(log, "as-of", *asOf, time.Now()))
	if err != nil {
		log.Fatal().Err(err).Msg("Recurring run failed")
	}

	for _, tx := range report.Generated {
		fmt.Printf("%s  %-30s %s %s\n", tx.Date.Format("2006-01-02"), tx.Title, tx.Amount.StringFixed(2), tx.Currency)
	}
	fmt.Printf("Generated %d transactions from %d rules.\n", len(report.Generated), len(report.Advanced))
	if len(report.Stalled) > 0 {
		fmt.Printf("Rules with more catch-up pending: %s\n", strings.Join(report.Stalled, ", "))
	}
}

func runConvert(log zerolog.Logger) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	amount := fs.String("amount", "", "Amount to convert")
	from := fs.String("from", "USD", "Source currency")
	to := fs.String("to", "", "Target currency")
	fs.Parse(os.Args[2:])

	if *amount == "" || *to == "" {
		log.Fatal().Msg("Usage: cli convert -amount N -from CUR -to CUR")
	}

	rates, err := loadConfig(log, *configPath).LoadRates()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load rates")
	}

	src := domain.Currency(strings.ToUpper(*from))
	dst := domain.Currency(strings.ToUpper(*to))
	converted := currency.Convert(parseDecimalFlag(log, "amount", *amount), src, dst, rates)
	fmt.Printf("%s%s %s\n", currency.Symbol(dst), converted.StringFixed(2), dst)
}

func runAccrue(log zerolog.Logger) {
	fs := flag.NewFlagSet("accrue", flag.ExitOnError)
	principal := fs.String("principal", "", "Starting amount")
	rate := fs.Float64("rate", 0, "Interest rate in percent per period")
	frequency := fs.String("frequency", string(domain.Monthly), "Compounding period: daily, weekly, monthly, yearly")
	start := fs.String("start", "", "Date interest starts accruing")
	asOf := fs.String("as-of", "", "Accrue up to this date (defaults to now)")
	fs.Parse(os.Args[2:])

	if *principal == "" || *start == "" {
		log.Fatal().Msg("Usage: cli accrue -principal N -rate PCT -start DATE")
	}
	freq := domain.Frequency(*frequency)
	if !freq.Valid() {
		log.Fatal().Str("frequency", *frequency).Msg("Unknown frequency")
	}

	startDate := parseDateFlag(log, "start", *start, time.Time{})
	acc := domain.Account{
		Type:    domain.AccountSavings,
		Balance: parseDecimalFlag(log, "principal", *principal),
		InterestConfig: domain.InterestConfig{
			Enabled:   true,
			Rate:      *rate,
			Frequency: freq,
			StartDate: &startDate,
		},
	}
	d := interest.ForAccount(acc, parseDateFlag(log, "as-of", *asOf, time.Now()))
	fmt.Printf("Principal: %s\n", d.Principal.StringFixed(2))
	fmt.Printf("Interest:  %s\n", d.Interest.StringFixed(2))
	fmt.Printf("Total:     %s\n", d.Total.StringFixed(2))
}

func runNext(log zerolog.Logger) {
	fs := flag.NewFlagSet("next", flag.ExitOnError)
	date := fs.String("date", "", "Current occurrence")
	frequency := fs.String("frequency", string(domain.Monthly), "daily, weekly, monthly or yearly")
	count := fs.Int("count", 1, "Number of occurrences to list")
	fs.Parse(os.Args[2:])

	if *date == "" {
		log.Fatal().Msg("Usage: cli next -date DATE [-frequency F] [-count N]")
	}
	freq := domain.Frequency(*frequency)
	if !freq.Valid() {
		log.Fatal().Str("frequency", *frequency).Msg("Unknown frequency")
	}

	d := parseDateFlag(log, "date", *date, time.Time{})
	for i := 0; i < *count; i++ {
		d = recurrence.Next(d, freq)
		fmt.Println(d.Format("2006-01-02"))
	}
}

func runDescribe(log zerolog.Logger) {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	date := fs.String("date", "", "Date of the first occurrence")
	frequency := fs.String("frequency", string(domain.Monthly), "daily, weekly, monthly or yearly")
	language := fs.String("language", "en", "Language: en, es, fr or pt")
	fs.Parse(os.Args[2:])

	if *date == "" {
		log.Fatal().Msg("Usage: cli describe -date DATE [-frequency F] [-language L]")
	}
	fmt.Println(recurrence.Describe(domain.Frequency(*frequency), parseDateFlag(log, "date", *date, time.Time{}), *language))
}

func runCalc(log zerolog.Logger) {
	if len(os.Args) < 3 {
		log.Fatal().Msg("Usage: cli calc EXPRESSION")
	}
	v, err := calc.Evaluate(strings.Join(os.Args[2:], " "))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid expression")
	}
	fmt.Println(v.String())
}

func runArchive(log zerolog.Logger) {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	since := fs.String("since", "", "Only archive transactions dated on or after this date")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a := openApp(ctx, log, *configPath)
	defer a.Close()
	archive := openArchive(ctx, log, a.Config.BigQuery)
	defer archive.Close()

	from := parseDateFlag(log, "since", *since, time.Time{})
	var txs []domain.Transaction
	for _, tx := range a.Ledger.Transactions() {
		if !tx.Date.Before(from) {
			txs = append(txs, tx)
		}
	}

	n, err := infraBQ.ArchiveTransactions(ctx, archive, txs, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Archive failed")
	}
	fmt.Printf("Archived %d transactions to %s.%s.\n", n, a.Config.BigQuery.Dataset, a.Config.BigQuery.Table)
}

func runSpending(log zerolog.Logger) {
	fs := flag.NewFlagSet("spending", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	from := fs.String("from", "", "First date (defaults to a year ago)")
	to := fs.String("to", "", "Last date (defaults to today)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	cfg := loadConfig(log, *configPath)
	archive := openArchive(ctx, log, cfg.BigQuery)
	defer archive.Close()

	now := time.Now()
	rows, err := archive.QueryMonthlySpending(ctx,
		parseDateFlag(log, "from", *from, now.AddDate(-1, 0, 0)),
		parseDateFlag(log, "to", *to, now),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Spending query failed")
	}

	fmt.Printf("%-8s %-20s %-4s %12s %6s\n", "MONTH", "CATEGORY", "CUR", "TOTAL", "COUNT")
	for _, r := range rows {
		fmt.Printf("%-8s %-20s %-4s %12s %6d\n",
			fmt.Sprintf("%04d-%02d", r.Month.Year, int(r.Month.Month)),
			r.Category, r.Currency, r.Total.FloatString(2), r.Count)
	}
}

func openArchive(ctx context.Context, log zerolog.Logger, cfg config.BigQueryConfig) *infraBQ.Archive {
	if cfg.Project == "" {
		log.Fatal().Msg("bigquery.project is not configured")
	}
	archive, err := infraBQ.NewArchive(ctx, cfg.Project, cfg.Dataset, cfg.Table)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open BigQuery archive")
	}
	return archive
}
