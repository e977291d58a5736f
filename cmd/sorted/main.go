package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codeWithHak/sorted/plugin/agent"
	"github.com/codeWithHak/sorted/server"
	"github.com/codeWithHak/sorted/server/auth"
	"github.com/codeWithHak/sorted/server/profile"
	"github.com/codeWithHak/sorted/store"
	"github.com/codeWithHak/sorted/store/db"
)

const greetingBanner = `
              _           _
 ___ ___ _ __| |_ ___  __| |
(_-</ _ \ '__| __/ _ \/ _' |
/__/\___/_|  \__\___/\__,_|
`

var rootCmd = &cobra.Command{
	Use:   "sorted",
	Short: "A task list you talk to",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		prof, err := profile.GetProfile()
		if err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}

		driver, err := db.NewDriver(prof)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		st := store.New(driver)
		defer func() {
			if err := st.Close(); err != nil {
				slog.Error("failed to close store", "err", err)
			}
		}()
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		authenticator := auth.New(prof.JWKSURL)
		model := agent.NewOpenRouterModel(prof.OpenRouterAPIKey, prof.AIModel)
		if prof.OpenRouterAPIKey == "" {
			slog.Warn("OPENROUTER_API_KEY not set, chat endpoint disabled")
		}

		srv := server.New(prof, st, authenticator, model)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs
			slog.Info("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("graceful shutdown failed", "err", err)
			}
			cancel()
		}()

		fmt.Print(greetingBanner)
		slog.Info("server started", "addr", prof.ListenAddr(), "driver", prof.Driver, "mode", prof.Mode)
		return srv.Start()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `server mode, "dev" or "prod"`)
	flags.String("addr", "", "bind address")
	flags.Int("port", 8081, "listen port")
	flags.String("driver", "sqlite", `storage driver, one of "sqlite", "postgres", "mysql"`)
	flags.String("dsn", "", "database connection string")
	flags.String("origins", "", "comma-separated allowed CORS origins")
	flags.String("jwks-url", "", "JWKS endpoint for token verification")
	flags.String("ai-model", "x-ai/grok-4-fast", "OpenRouter model identifier")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("sorted")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	// Missing .env is fine, environment variables still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
