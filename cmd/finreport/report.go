package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/export"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("finreport")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "finreport",
		Short: "Build spending analytics from a JSON list of transactions",
		Long: `finreport runs the dashboard analytics offline: category breakdown,
monthly rollups, category trends and insights for a chosen period.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "optional config file (toml, yaml or json)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	// флаги > FINREPORT_* > файл конфига
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path := v.GetString("config")
		if path == "" {
			return nil
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	root.AddCommand(newReportCmd(v))
	return root
}

func newReportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the analytics report as JSON",
		Example: `  finreport report --input tx.json --period 6m
  finreport report --input tx.json --from 2025-01-01 --to 2025-03-31 --chart trends.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(v, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "-", "transactions JSON file, - for stdin")
	flags.StringP("period", "p", string(models.PeriodLast6Months), "preset: last-3-months, last-6-months, last-year, all-time (or 3m, 6m, 1y, all)")
	flags.String("from", "", "range start YYYY-MM-DD, requires --to")
	flags.String("to", "", "range end YYYY-MM-DD, requires --from")
	flags.Int("top", analytics.DefaultTrendTopN, "number of category trend series")
	flags.String("locale", analytics.DefaultLocale, "month label locale")
	flags.String("chart", "", "also write trend chart PNG to this path")
	flags.String("now", "", "reference date YYYY-MM-DD, defaults to today")
	_ = v.BindPFlags(flags)

	return cmd
}

func runReport(v *viper.Viper, out io.Writer) error {
	txs, err := readTransactions(v.GetString("input"))
	if err != nil {
		return err
	}

	desc, err := periodFromConfig(v)
	if err != nil {
		return err
	}

	labeler, err := analytics.NewMonthLabeler(v.GetString("locale"))
	if err != nil {
		return err
	}

	opts := []analytics.Option{
		analytics.WithLabeler(labeler),
		analytics.WithTopN(v.GetInt("top")),
	}
	if ref := v.GetString("now"); ref != "" {
		now, err := time.Parse(dateLayout, ref)
		if err != nil {
			return fmt.Errorf("bad --now date %q: %w", ref, err)
		}
		opts = append(opts, analytics.WithClock(func() time.Time { return now }))
	}

	report, err := analytics.NewEngine(opts...).Compute(txs, desc)
	if err != nil {
		return err
	}

	if path := v.GetString("chart"); path != "" {
		png, err := export.RenderTrendChart(report.Trends)
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// periodFromConfig пара дат важнее пресета
func periodFromConfig(v *viper.Viper) (models.PeriodDescriptor, error) {
	var desc models.PeriodDescriptor

	from, to := v.GetString("from"), v.GetString("to")
	if from != "" || to != "" {
		if from == "" || to == "" {
			return desc, fmt.Errorf("%w: --from and --to must be given together", analytics.ErrInvalidPeriod)
		}
		fromDate, err := time.Parse(dateLayout, from)
		if err != nil {
			return desc, fmt.Errorf("%w: bad --from %q", analytics.ErrInvalidPeriod, from)
		}
		toDate, err := time.Parse(dateLayout, to)
		if err != nil {
			return desc, fmt.Errorf("%w: bad --to %q", analytics.ErrInvalidPeriod, to)
		}
		desc.From, desc.To = &fromDate, &toDate
		return desc, nil
	}

	preset, err := analytics.ParsePreset(v.GetString("period"))
	if err != nil {
		return desc, err
	}
	desc.Preset = preset
	return desc, nil
}

func readTransactions(path string) ([]models.Transaction, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var txs []models.Transaction
	if err := json.NewDecoder(r).Decode(&txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}
