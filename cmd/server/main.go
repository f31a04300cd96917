package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pkeller/movie-trivia/internal/config"
	"github.com/pkeller/movie-trivia/internal/httpapi"
	"github.com/pkeller/movie-trivia/internal/hub"
	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/internal/solo"
)

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRIVIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "trivia-server",
		Short:         "Movie trivia game server: single-player HTTP quiz plus realtime multiplayer games.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: TRIVIA_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: TRIVIA_PORT)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "externally visible URL for join links (env: TRIVIA_BASE_URL)")
	fs.StringVar(&cfg.OpenAIKey, "openai-key", "", "OpenAI API key; built-in question bank is used when empty (env: TRIVIA_OPENAI_KEY)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", "gpt-3.5-turbo", "OpenAI model for question generation (env: TRIVIA_OPENAI_MODEL)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: TRIVIA_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	gen := newGenerator(cfg, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, gen, log)
	store := solo.NewStore(gen, log)
	handler := httpapi.SetupRoutes(h, store, cfg.ResolvedBaseURL(), log)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Inbox() <- hub.ShutdownHub{}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newGenerator(cfg *config.Config, log *zap.Logger) question.Generator {
	if cfg.OpenAIKey != "" {
		log.Info("using openai question generator", zap.String("model", cfg.OpenAIModel))
		return question.NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIModel)
	}
	log.Info("no openai key configured, using built-in question bank")
	return question.NewBank()
}

func main() {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := newCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
