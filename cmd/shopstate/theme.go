package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/shopstate"
)

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the colour theme",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the theme and what it resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printTheme(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <light|dark|system>",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(shopstate.ThemeLight), string(shopstate.ThemeDark), string(shopstate.ThemeSystem)},
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := shopstate.ParseTheme(args[0])
			if err != nil {
				return err
			}
			a.session.UI().SetTheme(theme)
			return a.printTheme(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.UI().ToggleTheme()
			return a.printTheme(cmd)
		},
	})
	return cmd
}

func (a *app) printTheme(cmd *cobra.Command) error {
	ui := a.session.UI()
	theme, resolved := ui.Theme(), ui.ResolvedTheme()

	out := cmd.OutOrStdout()
	if a.jsonMode {
		return printJSON(out, map[string]shopstate.Theme{"theme": theme, "resolved": resolved})
	}
	if theme == resolved {
		_, err := fmt.Fprintln(out, theme)
		return err
	}
	_, err := fmt.Fprintf(out, "%s (%s)\n", theme, resolved)
	return err
}
