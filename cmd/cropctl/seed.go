package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/bootstrap"
	"github.com/Goopi7/crop-connect/internal/config"
	"github.com/Goopi7/crop-connect/internal/crops"
)

func newSeedCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a crop catalogue into the configured store",
		Long: `Seed validates every record and upserts it by name into the store selected
by the service configuration (config.json, CONFIG_PATH and STORE_DRIVER).
Without --file the embedded starter catalogue is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig("config.json")
			if err != nil {
				return err
			}
			log, err := newLogger(v)
			if err != nil {
				return err
			}
			defer log.Sync()

			return runSeed(cmd.Context(), cmd, cfg, log, v.GetString("seed.file"), v.GetBool("seed.clear"))
		},
	}

	cmd.Flags().String("file", "", "JSON catalogue file (default: embedded catalogue)")
	cmd.Flags().Bool("clear", false, "Delete every crop before seeding")
	_ = v.BindPFlag("seed.file", cmd.Flags().Lookup("file"))
	_ = v.BindPFlag("seed.clear", cmd.Flags().Lookup("clear"))
	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log *zap.Logger, file string, clear bool) error {
	records, err := crops.LoadCatalog(file)
	if err != nil {
		return err
	}

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	if stores.Driver == config.DriverMemory {
		log.Warn("Seeding the memory store; records are discarded on exit")
	}

	if clear {
		removed, err := stores.Clear(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear catalogue: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d crops\n", removed)
	}

	n, err := crops.NewService(stores.Crops, log).Seed(ctx, records)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d crops into %s store\n", n, stores.Driver)
	return nil
}
