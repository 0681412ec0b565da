package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/app"
	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "powerplan",
	Short: "Merit-order production plan service",
	Long: "Serves POST /productionplan, computing for each payload the output of every\n" +
		"powerplant needed to match the load at the lowest cost.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfgPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults and PP_* environment when empty")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.ExecuteContext(context.Background()) }

// serve runs the production plan service until ctx is done. The service is
// always closed, and a close failure is reported with the run error.
func serve(ctx context.Context, path string) (err error) {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	log := logger.New("main")
	log.Infow("powerplan starting", map[string]any{
		"address":     cfg.Server.Address,
		"journal":     cfg.Journal.Backend,
		"mqtt":        cfg.MQTT.Enabled,
		"sinks":       len(cfg.Metrics.Sinks),
		"cache_size":  cfg.Server.CacheSize,
		"permissive":  cfg.Server.PermissiveValidation,
		"config_file": path,
	})
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Errorf("service close: %v", cerr)
			err = errors.Join(err, fmt.Errorf("close service: %w", cerr))
		}
	}()

	if err := svc.Run(ctx); err != nil {
		return err
	}
	log.Infof("powerplan stopped: %v", context.Cause(ctx))
	return nil
}
