package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/beams/internal/authserver"
	"github.com/jmerrifield20/beams/internal/config"
	"github.com/jmerrifield20/beams/internal/identity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAuthCmd = &cobra.Command{
	Use:   "serve-auth",
	Short: "Run the Beams auth endpoint for device SDKs",
	Long: `serve-auth runs an HTTP server that hands Beams tokens to signed-in users.

Device SDKs call GET <auth.path>?user_id=<id> with the user's session JWT
(HS256, signed with auth.session_secret) as a Bearer token. The session's
subject must equal user_id.

  auth:
    port: 8080
    path: /pusher/beams-auth
    session_secret: ...
    cors_origins: ["https://app.example.com"]`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srvCfg, err := config.LoadServer(v)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		handler := authserver.NewAuthHandler(c, authserver.NewMetrics(), logger)
		router := authserver.NewRouter(srvCfg, handler, identity.NewSessionVerifier(srvCfg.SessionSecret), logger)

		logger.Info("beams auth endpoint configured",
			zap.String("instance_id", c.InstanceID()),
			zap.String("path", srvCfg.Path),
			zap.Strings("cors_origins", srvCfg.CORSOrigins),
		)
		return authserver.Serve(cmd.Context(), fmt.Sprintf(":%d", srvCfg.Port), router, logger)
	},
}

func init() {
	serveAuthCmd.Flags().Int("port", 0, "listen port (overrides auth.port)")
	serveAuthCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if f := cmd.Flags().Lookup("port"); f.Changed {
			return v.BindPFlag(config.KeyAuthPort, f)
		}
		return nil
	}
}
