// Package cmd contains all Cobra commands for erdchat.
//
// The root command connects to the database, makes sure the ERD is
// available (generating it on first run), and starts the chat loop.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/DachengChen/erdchat/agent"
	"github.com/DachengChen/erdchat/ai"
	"github.com/DachengChen/erdchat/applog"
	"github.com/DachengChen/erdchat/config"
	"github.com/DachengChen/erdchat/db"
	"github.com/DachengChen/erdchat/erd"
	"github.com/DachengChen/erdchat/tool"
	"github.com/DachengChen/erdchat/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger   *zap.Logger
	closeLog = func() error { return nil }

	configPath string
	verbose    bool
	useTUI     bool
	overrides  flagOverrides
)

// flagOverrides holds flags that win over the config file when set.
type flagOverrides struct {
	host, user, password, dbname, sslmode string
	port                                  int
	erdFile, provider, model              string
}

var rootCmd = &cobra.Command{
	Use:   "erdchat",
	Short: "Chat with an AI about your PostgreSQL schema",
	Long: `erdchat answers natural-language questions about a PostgreSQL database.

On first run it introspects information_schema, asks the model for a
Mermaid entity-relationship diagram and caches it (erd.md by default).
Every question is then sent with the diagram and the conversation so far.

Type 'exit' to quit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		l, closeFn, err := applog.New(cfg.LogDir, verbose)
		if err != nil {
			// Logging must never stop the chat.
			l, closeFn = applog.Nop(), func() error { return nil }
		}
		logger, closeLog = l, closeFn
		logger.Info("erdchat start", zap.String("command", cmd.Name()))
		return nil
	},
	RunE: runChat,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultPath(), "config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&overrides.host, "host", "", "database host")
	pf.IntVar(&overrides.port, "port", 0, "database port")
	pf.StringVar(&overrides.user, "user", "", "database user")
	pf.StringVar(&overrides.password, "password", "", "database password")
	pf.StringVar(&overrides.dbname, "dbname", "", "database name")
	pf.StringVar(&overrides.sslmode, "sslmode", "", "sslmode (disable, require, ...)")
	pf.StringVar(&overrides.erdFile, "erd-file", "", "diagram cache file")
	pf.StringVar(&overrides.provider, "provider", "", "AI provider: openai, anthropic, gemini, groq, ollama, placeholder")
	pf.StringVar(&overrides.model, "model", "", "model used for chat turns")

	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "full-screen chat instead of the line prompt")
}

// Execute runs the root command and closes the log file afterwards,
// also when the command fails.
func Execute() error {
	defer func() { _ = closeLog() }()
	return rootCmd.Execute()
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.DB.Host = overrides.host
	}
	if flags.Changed("port") {
		cfg.DB.Port = overrides.port
	}
	if flags.Changed("user") {
		cfg.DB.User = overrides.user
	}
	if flags.Changed("password") {
		cfg.DB.Password = overrides.password
	}
	if flags.Changed("dbname") {
		cfg.DB.Database = overrides.dbname
	}
	if flags.Changed("sslmode") {
		cfg.DB.SSLMode = overrides.sslmode
	}
	if flags.Changed("erd-file") {
		cfg.ERDFile = overrides.erdFile
	}
	if flags.Changed("provider") {
		cfg.AI.Provider = overrides.provider
	}
	if flags.Changed("model") {
		cfg.Agent.Model = overrides.model
	}
	return cfg, nil
}

// session bundles what a command needs once the database is up.
type session struct {
	cfg      *config.AppConfig
	db       *db.DB
	provider ai.Provider
	tool     *tool.DatabaseTool
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}
	provider = ai.WithLogging(provider, logger.Named("ai"))

	conn, err := db.Connect(ctx, cfg.DB, logger.Named("db"))
	if err != nil {
		return nil, err
	}

	gen := erd.NewGenerator(provider, "", cfg.ERDFile, logger.Named("erd"))
	return &session{
		cfg:      cfg,
		db:       conn,
		provider: provider,
		tool:     tool.NewDatabaseTool(conn, gen, logger.Named("tool")),
	}, nil
}

// reportInit prints a typed initialization failure; the session carries
// on with table-name context.
func reportInit(cmd *cobra.Command, err error) {
	var ie *tool.InitError
	if errors.As(err, &ie) {
		fmt.Fprintln(cmd.ErrOrStderr(), tui.StyleWarning.Render(
			fmt.Sprintf("ERD unavailable (failed while %s): %v", ie.Stage, ie.Err)))
		fmt.Fprintln(cmd.ErrOrStderr(), tui.StyleDimmed.Render("Continuing with the table list as context."))
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), tui.StyleError.Render(err.Error()))
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.tool.Initialize(ctx); err != nil {
		reportInit(cmd, err)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), tui.StyleDimmed.Render("ERD loaded from "+s.cfg.ERDFile))
	}

	a := agent.New(agent.Config{
		Name:         s.cfg.Agent.Name,
		Description:  s.cfg.Agent.Description,
		Prompt:       s.cfg.Agent.Prompt,
		SystemPrompt: s.cfg.Agent.SystemPrompt,
		Model:        s.cfg.Agent.Model,
	}, s.provider, agent.WithTool(s.tool), agent.WithLogger(logger.Named("agent")))

	if useTUI {
		return tui.Start(a, s.provider.Name())
	}
	return runLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a)
}
