package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmerrifield20/beams/internal/config"
	"github.com/jmerrifield20/beams/pkg/beams"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile      string
	outputFormat string
	verbose      bool
	timeout      time.Duration

	v      *viper.Viper
	logger = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beams",
	Short: "Pusher Beams command-line client",
	Long: `beams publishes push notifications through Pusher Beams and manages
Beams users from the command line.

Credentials are read from --instance-id/--secret-key, the BEAMS_INSTANCE_ID and
BEAMS_SECRET_KEY environment variables, or a config file (./beams.yaml or
~/.beams/config.yaml):

  instance_id: 8f9a6e22-2483-49aa-8552-125f1a4c5781
  secret_key: ...`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		v = config.New(cfgFile)
		for key, flag := range map[string]string{
			config.KeyInstanceID: "instance-id",
			config.KeySecretKey:  "secret-key",
			config.KeyEndpoint:   "endpoint",
		} {
			if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}
		found, err := config.Read(v)
		if err != nil {
			return err
		}
		if found {
			logger.Debug("config loaded", zap.String("file", v.ConfigFileUsed()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./beams.yaml or ~/.beams/config.yaml)")
	pf.String("instance-id", "", "Beams instance ID")
	pf.String("secret-key", "", "Beams secret key")
	pf.String("endpoint", "", "override the service endpoint (default https://<instance-id>.pushnotifications.pusher.com)")
	pf.StringVar(&outputFormat, "format", "text", "output format: text, json or yaml")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose (development) logging")
	pf.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout for calls to the service; 0 disables it")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(deleteUserCmd)
	rootCmd.AddCommand(serveAuthCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient builds a beams.Client from the loaded configuration.
func newClient() (*beams.Client, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	return beams.New(cfg,
		beams.WithLogger(logger.Named("beams")),
		beams.WithHTTPClient(newHTTPClient(timeout)),
	)
}

// ── token ────────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Generate a Beams token for a user",
	Long: `Generate signs a 24 hour Beams token for the given user ID. No network call
is made; the token is normally handed to the user's device SDK.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		tok, err := c.GenerateToken(args[0])
		if err != nil {
			return err
		}
		if outputFormat == "text" {
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return nil
		}
		return render(cmd.OutOrStdout(), outputFormat, tok)
	},
}

// ── delete-user ──────────────────────────────────────────────────────────────

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Delete a user and all of their devices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		resp, err := c.DeleteUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		logger.Info("user deleted", zap.String("user_id", args[0]))
		return render(cmd.OutOrStdout(), outputFormat, resp)
	},
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the beams CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "beams %s (SDK %s)\n", version, beams.SDKVersion)
	},
}
