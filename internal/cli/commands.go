package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mejd2001/ai-analyzer/internal/loader"
	"github.com/mejd2001/ai-analyzer/internal/models"
	"github.com/mejd2001/ai-analyzer/internal/packs"
	"github.com/mejd2001/ai-analyzer/internal/services"
)

func newLoadCommand(a *app) *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Show how a file maps onto the canonical columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, res)
			}

			fmt.Fprintf(out, "Format:     %s\n", res.Format)
			fmt.Fprintf(out, "Header row: %d\n", res.HeaderRow+1)
			fmt.Fprintf(out, "Rows:       %d in, %d kept, %d dropped by status, %d without a date\n\n",
				res.Stats.RowsIn, res.Stats.RowsOut, res.Stats.DroppedStatus, res.Stats.DroppedDate)

			var mapping [][]string
			for _, set := range loader.DefaultKeywords {
				col, ok := res.ColumnMap[set.Field]
				if !ok {
					col = "-"
				}
				mapping = append(mapping, []string{string(set.Field), col})
			}
			if err := printTable(out, []string{"FIELD", "COLUMN"}, mapping); err != nil {
				return err
			}

			if preview <= 0 || res.Table.Empty() {
				return nil
			}
			fmt.Fprintln(out)
			rows := res.Table.Transactions[:min(preview, res.Table.Len())]
			records := make([][]string, len(rows))
			for i, tx := range rows {
				records[i] = tx.Record()
			}
			return printTable(out, models.CanonicalColumns, records)
		},
	}
	cmd.Flags().IntVar(&preview, "preview", 5, "canonical rows to print after the mapping")
	return cmd
}

func newPacksCommand(a *app) *cobra.Command {
	var (
		minTransactions int
		asCSV           bool
	)

	cmd := &cobra.Command{
		Use:   "packs <file>",
		Short: "Suggest product bundles from items bought together",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minTx := a.cfg.Packs.MinTransactions
			if cmd.Flags().Changed("min-transactions") {
				if minTransactions < 1 {
					return fmt.Errorf("--min-transactions must be at least 1")
				}
				minTx = minTransactions
			}

			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			suggestions := packs.Suggest(res.Table, minTx)

			out := cmd.OutOrStdout()
			switch {
			case a.asJSON:
				return printJSON(out, suggestions)
			case len(suggestions) == 0:
				fmt.Fprintf(out, "No product pair was bought together at least %d times.\n", minTx)
				return nil
			}

			records := make([][]string, len(suggestions))
			for i, p := range suggestions {
				records[i] = p.Record()
			}
			if asCSV {
				return printCSV(out, models.PackColumns, records)
			}
			return printTable(out, models.PackColumns, records)
		},
	}
	cmd.Flags().IntVar(&minTransactions, "min-transactions", packs.DefaultMinTransactions, "minimum co-occurrences for a pair to be suggested")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print the pack table as CSV")
	return cmd
}

func newForecastCommand(a *app) *cobra.Command {
	var horizon, keep int

	cmd := &cobra.Command{
		Use:   "forecast <file>",
		Short: "Forecast demand and suggest prices for top products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := a.cfg.Forecast
			opts := services.PredictOptions{
				TopProducts: fc.TopProducts,
				MinHistory:  fc.MinHistory,
				Horizon:     fc.HorizonDays,
				Keep:        fc.Keep,
				Workers:     fc.Workers,
			}
			if cmd.Flags().Changed("horizon") {
				opts.Horizon = horizon
			}
			if cmd.Flags().Changed("keep") {
				opts.Keep = keep
			}
			if opts.Horizon <= 0 || opts.Keep <= 0 {
				return fmt.Errorf("--horizon and --keep must be positive")
			}

			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			forecasts, err := services.NewPredictor(services.DefaultHolt(), opts, a.logger).PredictTopProducts(cmd.Context(), res.Table)
			if err != nil {
				return err
			}
			prices := services.RecommendPrices(res.Table, forecasts)

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, map[string]any{"forecast": forecasts, "prices": prices})
			}
			if len(forecasts) == 0 {
				fmt.Fprintf(out, "Not enough history: no product has %d days of sales.\n", opts.MinHistory)
				return nil
			}

			priceOf := make(map[string]models.PriceRecommendation, len(prices))
			for _, p := range prices {
				priceOf[p.Product] = p
			}
			records := make([][]string, len(forecasts))
			for i, f := range forecasts {
				p := priceOf[f.Product]
				records[i] = []string{
					f.Product,
					strconv.Itoa(f.PredictedUnits),
					fmt.Sprintf("%.1f/%.1f", f.MalePct, f.FemalePct),
					fmt.Sprintf("%s (%.1f%%)", f.TopAgeGroup, f.TopAgePct),
					fmt.Sprintf("%.2f", p.CurrentAvgPrice),
					fmt.Sprintf("%.2f", p.RecommendedPrice),
				}
			}
			header := []string{"PRODUCT", fmt.Sprintf("UNITS NEXT %d DAYS", opts.Horizon), "MALE/FEMALE %", "TOP AGE", "AVG PRICE", "SUGGESTED PRICE"}
			return printTable(out, header, records)
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", 30, "days to forecast")
	cmd.Flags().IntVar(&keep, "keep", 5, "products to report")
	return cmd
}

func newKPIsCommand(a *app) *cobra.Command {
	var withInsights bool

	cmd := &cobra.Command{
		Use:   "kpis <file>",
		Short: "Print headline figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			k := services.ComputeKPIs(res.Table)

			var insights []string
			if withInsights {
				insights, err = services.NewTemplateInsights(a.cfg.Insights.Currency).
					Generate(cmd.Context(), services.SummaryStats{KPIs: k})
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, map[string]any{"kpis": k, "insights": insights})
			}
			rows := [][]string{
				{"Total revenue", fmt.Sprintf("%.2f", k.TotalRevenue)},
				{"Orders", strconv.Itoa(k.TotalOrders)},
				{"Average order value", fmt.Sprintf("%.2f", k.AverageOrderValue)},
				{"Most profitable product", k.MostProfitableProduct},
				{"Top category", k.TopCategory},
				{"Best day", k.BestDay},
			}
			if err := printTable(out, []string{"KPI", "VALUE"}, rows); err != nil {
				return err
			}
			for _, line := range insights {
				fmt.Fprintln(out, "-", line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withInsights, "insights", false, "append plain-text recommendations")
	return cmd
}
