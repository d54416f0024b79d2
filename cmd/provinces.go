package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var provincesCmd = &cobra.Command{
	Use:   "provinces",
	Short: "List province codes usable as a filter",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		provinces := newService(client, config, logger).Provinces(ctx)
		if len(provinces) == 0 {
			logger.Warn("no provinces available")
			return nil
		}

		if err := renderProvinces(os.Stdout, provinces); err != nil {
			return fmt.Errorf("rendering provinces: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(provincesCmd)
}
