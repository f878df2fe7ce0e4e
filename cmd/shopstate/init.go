package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and a profile id",
		Long: `Init writes a default config.yaml to the configuration directory and
assigns a fresh profile id unless one is already configured.

Example:
  shopstate init
  shopstate init --config-dir ~/.config/shopstate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.configure(); err != nil {
				return err
			}

			profileID := a.config.GetString(cfgKeyProfileID)
			if profileID == "" {
				profileID = uuid.NewString()
				a.config.Set(cfgKeyProfileID, profileID)
				path := filepath.Join(a.configDir, configFileExt)
				if err := a.config.WriteConfigAs(path); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, map[string]string{"configDir": a.configDir, "profileId": profileID})
			}
			fmt.Fprintln(out, "shopstate initialized")
			fmt.Fprintln(out, "  config: ", a.configDir)
			fmt.Fprintln(out, "  profile:", profileID)
			return nil
		},
	}
}
