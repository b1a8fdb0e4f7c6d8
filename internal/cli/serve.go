package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stringbean/pkg/cache"
	"github.com/matzehuels/stringbean/pkg/pipeline"
	"github.com/matzehuels/stringbean/pkg/server"
	"github.com/matzehuels/stringbean/pkg/store"
)

// redisKeyPrefix scopes cache keys in a shared Redis instance.
const redisKeyPrefix = appName + ":"

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr        string
	config      string
	redisURL    string
	mongoURI    string
	mongoDB     string
	storeDir    string
	noCache     bool
	maxUpload   int64
	planTimeout time.Duration
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:        server.DefaultAddr,
		maxUpload:   server.DefaultMaxUploadBytes,
		planTimeout: server.DefaultPlanTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Plans are cached in Redis when --redis is set and in the local cache
directory otherwise. Plan records are kept in MongoDB when --mongo is set,
in --store-dir when given, and in memory otherwise.

Options from --config become the defaults for every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.config, "config", "", "default plan options from a .json, .toml or .yaml file")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "redis URL for the plan cache, e.g. redis://localhost:6379/0")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for plan records, e.g. mongodb://localhost:27017")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", store.DefaultMongoDatabase, "MongoDB database name")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "directory for plan records (ignored with --mongo)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&opts.maxUpload, "max-upload", opts.maxUpload, "maximum upload size in bytes")
	cmd.Flags().DurationVar(&opts.planTimeout, "plan-timeout", opts.planTimeout, "maximum planning time per request")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	var defaults pipeline.Options
	if opts.config != "" {
		loaded, err := pipeline.LoadOptions(opts.config)
		if err != nil {
			return err
		}
		defaults = loaded
	}

	planCache, keyer, cacheDesc, err := openServeCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(planCache, keyer, logger)
	defer runner.Close()

	records, storeDesc, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer records.Close()

	printSuccess("Serving on http://%s", opts.addr)
	printKeyValue("Cache", cacheDesc)
	printKeyValue("Store", storeDesc)

	srv := server.New(server.Config{
		Runner:         runner,
		Store:          records,
		Logger:         logger,
		Defaults:       defaults,
		MaxUploadBytes: opts.maxUpload,
		PlanTimeout:    opts.planTimeout,
	})
	return srv.ListenAndServe(ctx, opts.addr)
}

func openServeCache(ctx context.Context, opts serveOpts) (cache.Cache, cache.Keyer, string, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), nil, "disabled", nil
	case opts.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, nil, "", fmt.Errorf("connect cache: %w", err)
		}
		return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), "redis", nil
	default:
		c, err := newCache(false)
		if err != nil {
			return nil, nil, "", err
		}
		desc := "none"
		if fc, ok := c.(*cache.FileCache); ok {
			desc = fc.Dir()
		}
		return c, nil, desc, nil
	}
}

func openStore(ctx context.Context, opts serveOpts) (store.Store, string, error) {
	switch {
	case opts.mongoURI != "":
		ms, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return nil, "", fmt.Errorf("connect store: %w", err)
		}
		return ms, "mongodb/" + opts.mongoDB, nil
	case opts.storeDir != "":
		fs, err := store.NewFileStore(opts.storeDir)
		if err != nil {
			return nil, "", err
		}
		return fs, fs.Path(), nil
	default:
		return store.NewMemoryStore(), "memory", nil
	}
}
