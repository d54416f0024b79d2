package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/dashboard"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over a sample of vacancy pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return statistics(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("province", "", "province code, see the provinces command")
	statsCmd.Flags().Int("pages", dashboard.DefaultStatisticsPages, "number of pages to sample: 5, 10, 20 or 50 in the portal")
	statsCmd.Flags().Int("page-size", dashboard.DefaultStatisticsPageSize, "vacancies per sampled page")
	statsCmd.Flags().Bool("raw", false, "print the statistics as JSON")

	for _, name := range []string{"province", "pages", "page-size"} {
		viper.BindPFlag("dashboard."+name, statsCmd.Flags().Lookup(name))
	}
}

func statistics(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, config, err := setup()
	if err != nil {
		return err
	}

	client, closeCache, err := newClient(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	req := dashboard.StatisticsRequest{}
	if config.Dashboard != nil {
		req = *config.Dashboard
	}

	logger.Info("loading statistics",
		zap.String("province", req.Province),
		zap.Int("pages", req.Pages),
	)

	report, err := newService(client, config, logger).Statistics(ctx, req)
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding statistics: %w", err)
		}
		return nil
	}

	if err := renderStatistics(os.Stdout, report); err != nil {
		return fmt.Errorf("rendering statistics: %w", err)
	}
	return nil
}
