package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/dashboard"
	"github.com/spigell/maganghub/internal/maganghub"
)

const (
	PromptNext              = "Next page"
	PromptPrevious          = "Previous page"
	PromptReportByCompanies = "Report by companies"
	PromptVacanciesToFile   = "Dump vacancies to file"
	PromptExit              = "Exit"
)

var errExit = errors.New("exit requested")

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse active internship vacancies page by page",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return list(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntP("page", "p", 1, "page to start from")
	listCmd.Flags().String("province", "", "province code, see the provinces command")
	listCmd.Flags().StringP("keyword", "k", "", "search keyword")
	listCmd.Flags().String("order-by", "", "sort field: jumlah_kuota, jumlah_terdaftar or created_at")
	listCmd.Flags().String("order-direction", "", "sort direction: ASC or DESC (default DESC)")
	listCmd.Flags().IntP("limit", "l", maganghub.DefaultPageSize, "vacancies per page")
	listCmd.Flags().StringP("opportunity", "o", "", "minimum opportunity: 90, 75, 50, 25, 0 (any seat left) or full")
	listCmd.Flags().BoolP("auto", "y", false, "print a single page without prompting")

	for _, name := range []string{"province", "keyword", "order-by", "order-direction", "limit", "opportunity"} {
		viper.BindPFlag("list."+name, listCmd.Flags().Lookup(name))
	}
}

func list(cmd *cobra.Command) error {
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

	service := newService(client, config, logger)

	var filter maganghub.PageFilter
	if config.List != nil {
		filter = config.List.PageFilter
	}

	page, _ := cmd.Flags().GetInt("page")
	auto, _ := cmd.Flags().GetBool("auto")

	for {
		listing, err := service.Listing(ctx, dashboard.ListingRequest{Page: page, Filter: filter})
		if err != nil {
			return fmt.Errorf("loading vacancies: %w", err)
		}

		if err := renderListing(os.Stdout, listing); err != nil {
			return fmt.Errorf("rendering vacancies: %w", err)
		}

		if auto {
			return nil
		}

		next, err := navigate(listing, page, logger)
		if err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
		page = next
	}
}

// navigate prompts until the user picks another page or exits.
func navigate(listing *dashboard.Listing, page int, logger *zap.Logger) (int, error) {
	for {
		items := make([]string, 0, 5)
		if page < listing.Pagination.LastPage {
			items = append(items, PromptNext)
		}
		if page > 1 {
			items = append(items, PromptPrevious)
		}
		items = append(items, PromptReportByCompanies, PromptVacanciesToFile, PromptExit)

		prompt := promptui.Select{
			Label: fmt.Sprintf("Halaman %d dari %d", page, listing.Pagination.LastPage),
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			return page, err
		}

		next, err := handleAction(action, page, listing, logger)
		if err != nil || next != page {
			return next, err
		}
	}
}

func handleAction(action string, page int, listing *dashboard.Listing, logger *zap.Logger) (int, error) {
	vacancies := &maganghub.Vacancies{Items: listing.Vacancies}

	switch action {
	case PromptNext:
		return page + 1, nil
	case PromptPrevious:
		return max(page-1, 1), nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return page, errExit
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(vacancies.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("vacancies count", vacancies.Len()))
		return page, nil
	case PromptVacanciesToFile:
		filename, err := vacancies.DumpToTmpFile()
		if err != nil {
			return page, fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return page, nil
	default:
		return page, fmt.Errorf("invalid action: %s", action)
	}
}
