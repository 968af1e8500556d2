package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/microcrop/console/internal/api"
	"github.com/microcrop/console/internal/config"
	"github.com/microcrop/console/internal/mockapi"
	"github.com/microcrop/console/internal/session"
)

// app carries the wired services shared by all commands. Client and store are
// one instance per process, injected into commands instead of living as
// package globals.
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *session.Store
	logger zerolog.Logger

	apiURL  string
	query   string
	rps     float64
	asJSON  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "microcrop-admin",
		Short:         "Operator console for the MicroCrop insurance platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides MICROCROP_API_URL)")
	root.PersistentFlags().StringVar(&a.query, "query", "", "gjson path applied to the JSON output")
	root.PersistentFlags().Float64Var(&a.rps, "rps", 0, "throttle outbound requests per second (0 = unlimited); use for bulk imports and exports against shared environments")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print raw JSON instead of summaries")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newOrgsCmd(a),
		newFarmersCmd(a),
		newPoliciesCmd(a),
		newPayoutsCmd(a),
		newPoolsCmd(a),
		newStaffCmd(a),
		newDashboardCmd(a),
		newExportCmd(a),
		newMockAPICmd(a),
	)
	return root
}

// setup wires config, client and session store, then rehydrates the session.
func (a *app) setup(ctx context.Context) error {
	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	cfg.Validate(a.logger)

	baseURL := cfg.APIURL
	if a.apiURL != "" {
		baseURL = a.apiURL
	}

	if cfg.UseMockAPI && a.apiURL == "" {
		url, err := a.startMockAPI()
		if err != nil {
			return err
		}
		baseURL = url
	}

	clientOpts := []api.Option{
		api.WithLogger(a.logger.With().Str("component", "api").Logger()),
	}
	if a.rps > 0 {
		clientOpts = append(clientOpts, api.WithRateLimit(a.rps, 1))
	}
	a.client = api.New(baseURL, clientOpts...)
	a.store = session.New(a.client,
		session.WithLogger(a.logger.With().Str("component", "session").Logger()),
		session.WithSessionExpiredHook(func() {
			a.logger.Warn().Msg("session expired; run `microcrop-admin login` to continue")
		}),
	)
	return a.store.Open(ctx)
}

// startMockAPI serves the fixture backend on a loopback port for this process.
func (a *app) startMockAPI() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	srv := mockapi.NewServer(a.logger.With().Str("component", "mockapi").Logger())
	go http.Serve(ln, srv.Handler())
	return "http://" + ln.Addr().String(), nil
}

// commandContext bounds a single console operation.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*time.Minute)
}
