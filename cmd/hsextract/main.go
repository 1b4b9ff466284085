// hsextract extracts science metadata from raster, shapefile and
// NetCDF uploads and prints the result as JSON. With --sync the
// extracted bundle is also reconciled against an element store and the
// applied plan is printed instead.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hydroshare/hsextract/cache"
	"github.com/hydroshare/hsextract/config"
	"github.com/hydroshare/hsextract/pipeline"
	"github.com/hydroshare/hsextract/reconcile"
	"github.com/hydroshare/hsextract/store"
	"github.com/hydroshare/hsextract/store/memstore"
	"github.com/hydroshare/hsextract/store/pgstore"
)

var (
	flagConfig      string
	flagVerbose     bool
	flagSync        bool
	flagDSN         string
	flagAggregation string
)

func main() {
	root := &cobra.Command{
		Use:           "hsextract",
		Short:         "Extract science metadata from geospatial and NetCDF files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if flagVerbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flagSync, "sync", false, "reconcile the extraction against an element store and print the applied plan")
	root.PersistentFlags().StringVar(&flagDSN, "dsn", "", "postgres DSN for the element store (defaults to an in-memory store)")
	root.PersistentFlags().StringVar(&flagAggregation, "aggregation", "", "aggregation identifier for the postgres store")

	root.AddCommand(
		formatCommand(pipeline.FormatRaster, "raster <path>", "Extract raster metadata from a GeoTIFF, VRT or zip upload"),
		formatCommand(pipeline.FormatVector, "vector <path>", "Extract feature metadata from a shapefile or zip upload"),
		formatCommand(pipeline.FormatNetCDF, "netcdf <path>", "Extract metadata from a NetCDF file"),
	)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("hsextract failed")
	}
}

func formatCommand(format pipeline.Format, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(format, args[0])
		},
	}
}

func run(format pipeline.Format, path string) error {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}
	pipe := pipeline.New(cfg, nil, c)

	if !flagSync {
		bundle, err := pipe.Extract(format, path)
		if err != nil {
			return err
		}
		return printJSON(bundle)
	}

	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	plan, err := pipe.Sync(format, path, st)
	if err != nil {
		return err
	}
	return printJSON(struct {
		Plan  *reconcile.Plan     `json:"plan"`
		State reconcile.SyncState `json:"state"`
	}{plan, plan.State()})
}

func openStore() (store.Store, func(), error) {
	if flagDSN == "" {
		return memstore.New(), func() {}, nil
	}
	if flagAggregation == "" {
		return nil, nil, fmt.Errorf("--aggregation is required with --dsn")
	}
	db, err := pgstore.Open(flagDSN)
	if err != nil {
		return nil, nil, err
	}
	return db.ForAggregation(flagAggregation), func() { db.Close() }, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
