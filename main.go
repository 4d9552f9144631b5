package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tournevent/colissimo/internal/server"
	"github.com/tournevent/colissimo/pkg/shipper"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "colissimo",
	Short:   "Colissimo label and relay point service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Generate a label from a JSON request file",
	RunE:  runLabel,
}

var relayPointsCmd = &cobra.Command{
	Use:   "relay-points",
	Short: "Find the relay points closest to an address",
	RunE:  runRelayPoints,
}

var (
	labelFile string

	relayAddress      string
	relayZipCode      string
	relayCity         string
	relayCountryCode  string
	relayShippingDate string
	relayWeight       int
)

func init() {
	labelCmd.Flags().StringVarP(&labelFile, "file", "f", "", "label request JSON file (- for stdin)")
	_ = labelCmd.MarkFlagRequired("file")

	relayPointsCmd.Flags().StringVar(&relayAddress, "address", "", "street address")
	relayPointsCmd.Flags().StringVar(&relayZipCode, "zip", "", "postal code")
	relayPointsCmd.Flags().StringVar(&relayCity, "city", "", "city")
	relayPointsCmd.Flags().StringVar(&relayCountryCode, "country", "FR", "ISO country code")
	relayPointsCmd.Flags().StringVar(&relayShippingDate, "date", "", "shipping date (YYYY-MM-DD)")
	relayPointsCmd.Flags().IntVar(&relayWeight, "weight", 0, "parcel weight in grams")
	_ = relayPointsCmd.MarkFlagRequired("zip")

	rootCmd.AddCommand(serveCmd, labelCmd, relayPointsCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.close(ctx)

	app.logger.Info("Starting Colissimo service",
		zap.Int("port", app.cfg.Port),
		zap.String("version", app.cfg.Version),
		zap.String("storage", app.store.Backend()),
		zap.Bool("mock", app.cfg.ColissimoUseMock),
	)

	srv := server.New(server.Config{
		Port:     app.cfg.Port,
		Registry: app.registry,
		Metrics:  app.metrics,
	}, app.shipper, app.logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runLabel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in := os.Stdin
	if labelFile != "-" {
		f, err := os.Open(labelFile)
		if err != nil {
			return fmt.Errorf("opening request: %w", err)
		}
		defer f.Close()
		in = f
	}

	req, err := server.DecodeLabelRequest(in)
	if err != nil {
		return err
	}

	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.close(ctx)

	result, err := app.shipper.GenerateLabel(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func runRelayPoints(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := &shipper.RelayPointRequest{
		Address:     relayAddress,
		PostalCode:  relayZipCode,
		City:        relayCity,
		CountryCode: relayCountryCode,
		Weight:      relayWeight,
	}
	if relayShippingDate != "" {
		date, err := time.Parse(time.DateOnly, relayShippingDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		req.ShippingDate = date
	}

	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.close(ctx)

	points, err := app.shipper.FindRelayPoints(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, points)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
