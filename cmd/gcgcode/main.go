package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	gcgcode "github.com/dvaJi/genshin-builds-sub003"
	"github.com/dvaJi/genshin-builds-sub003/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg         config.Config
	catalogPath string
	logger      *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "gcgcode",
		Short:        "Encode and decode card game deck share codes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.catalogPath == "" {
				a.catalogPath = cfg.CatalogPath
			}
			a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "card catalog file (.json or .yaml); defaults to $CATALOG_PATH")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)
	return root
}

func (a *app) load() (*gcgcode.Codec, *gcgcode.Catalog, error) {
	codec, err := a.cfg.Codec()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := gcgcode.LoadCatalogFile(a.catalogPath)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("catalog loaded", "path", a.catalogPath, "cards", catalog.Len())
	return codec, catalog, nil
}

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [deck.json]",
		Short: "Print the share code for a deck read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, catalog, err := a.load()
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var deck gcgcode.Deck
			if err := decodeJSON(in, &deck); err != nil {
				return fmt.Errorf("read deck: %w", err)
			}
			code, err := codec.Encode(deck, catalog)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode CODE",
		Short: "Print the deck for a share code as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, catalog, err := a.load()
			if err != nil {
				return err
			}
			deck, err := codec.Decode(args[0], catalog)
			if deck.IsUnknown() {
				a.logger.Warn("share code could not be decoded", "code", args[0])
			}
			if werr := encodeJSON(cmd.OutOrStdout(), deck); werr != nil {
				return werr
			}
			return err
		},
	}
}
