package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CreativeUnicorns/shopstate"
	"github.com/CreativeUnicorns/shopstate/catalog"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	configDir string
	profile   string
	jsonMode  bool

	out    io.Writer
	logger shopstate.Logger

	config   *viper.Viper
	settings settings
	session  *shopstate.Session
	source   catalog.Source
}

// run executes the CLI with args and releases the session even when a
// command fails.
func run(args []string) error {
	a := &app{out: os.Stdout}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return errors.Join(err, a.close())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopstate",
		Short:         "Manage a storefront cart, favorites and theme",
		Long:          "shopstate keeps a profile's cart, favorites list and theme preference\nand persists them through the configured storage backend.",
		Version:       shopstate.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsSession(cmd) {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $SHOPSTATE_CONFIG_DIR or .shopstate)")
	root.PersistentFlags().StringVar(&a.profile, "profile", "", "profile id (overrides profile_id from config.yaml)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newCartCmd(a))
	root.AddCommand(newFavoritesCmd(a))
	root.AddCommand(newThemeCmd(a))
	root.AddCommand(newCatalogCmd(a))
	return root
}

// skipsSession reports whether cmd runs without an opened session.
func skipsSession(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "init":
		return true
	}
	return false
}

// configure loads config.yaml and the logger. It is idempotent.
func (a *app) configure() error {
	if a.config != nil {
		return nil
	}
	dir := resolveConfigDir(a.configDir)
	v, err := loadConfig(dir)
	if err != nil {
		return err
	}
	a.configDir = dir
	a.config = v
	a.settings = resolveSettings(v, dir)
	if a.profile != "" {
		a.settings.ProfileID = a.profile
	}

	if a.logger == nil {
		a.logger = shopstate.NewDefaultLogger()
	}
	a.logger.SetLevel(shopstate.ParseLogLevel(a.settings.LogLevel))
	return nil
}

// open configures the backends, creates the session and rehydrates it.
func (a *app) open(ctx context.Context) error {
	if err := a.configure(); err != nil {
		return err
	}

	source, err := openCatalog(a.settings, a.logger)
	if err != nil {
		return err
	}
	a.source = source

	session, err := openSession(a.settings, a.logger)
	if err != nil {
		return err
	}
	a.session = session

	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	return nil
}

// close flushes and closes the session. Safe to call more than once.
func (a *app) close() error {
	if a.session == nil {
		return nil
	}
	s := a.session
	a.session = nil
	return s.Close()
}
