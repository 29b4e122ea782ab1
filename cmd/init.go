package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/DachengChen/erdchat/config"
	"github.com/DachengChen/erdchat/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file from the current settings",
	Long: `Write the effective configuration (defaults, .env, environment and
flags) to the --config path, ~/.erdchat/config.yaml by default.

An existing file is left alone unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(configPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Info("config written", zap.String("path", configPath))
		fmt.Fprintln(cmd.OutOrStdout(), tui.StyleSuccess.Render("Wrote "+configPath))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
