package cmd

import (
	"context"
	"log/slog"

	"github.com/mintmark-network/ip-gateway/internal/config"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:  "ipgw",
	Long: `Publish-and-register gateway: content-addressable publishing with dedup, on-ledger provenance and licensing`,
}

func init() {
	var configFile string

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.Bool("debug", false, "enable debug logging")

	config.BindPFlag("logger.debug", flags.Lookup("debug"))

	cobra.OnInitialize(func() {
		conf := config.Parse(configFile)

		if err := logger.Init(conf.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", conf.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	cmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
	)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Panic("Failed to execute root command", slogx.Error(err))
	}
}
