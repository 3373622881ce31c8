package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/clients/sheetsclient"
	"github.com/Oliverngu/roster-advisor/pkg/core/engine"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/services"
	"github.com/Oliverngu/roster-advisor/pkg/postgres"
	"github.com/Oliverngu/roster-advisor/pkg/rosterfile"
	"github.com/Oliverngu/roster-advisor/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database *postgres.DB
	logger   *zap.Logger
	ctx      context.Context

	// Built lazily: only importRoster needs the OAuth flow
	sheetsClient *sheetsclient.Client
}

var (
	env    string
	unitID string
	app    *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Roster Advisor CLI - Analyze staff rosters and manage suggestions",
		Long:  `A CLI tool for analyzing weekly staff rosters, reviewing rule violations, and accepting corrective suggestions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment (dev, prod)")
	rootCmd.PersistentFlags().StringVarP(&unitID, "unit", "u", "", "Unit to operate on (defaults to the configured unit)")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(analyzeFileCmd())
	rootCmd.AddCommand(assistantCmd())
	rootCmd.AddCommand(acceptCmd())
	rootCmd.AddCommand(decideCmd())
	rootCmd.AddCommand(importRosterCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Debug("Starting application", zap.String("environment", env))

	// .env is optional; real environments set DATABASE_URL directly
	godotenv.Load()

	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if unitID == "" {
		unitID = app.cfg.DefaultUnitID
	}

	app.logger.Debug("Application initialized", zap.String("unit_id", unitID))
	return nil
}

// ensureDatabase connects on first use, so file-based commands work without
// a database
func ensureDatabase() error {
	if app.database != nil {
		return nil
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	database, err := postgres.NewDB(app.ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app.database = database
	return nil
}

// ensureSheetsClient runs the OAuth flow on first use
func ensureSheetsClient() error {
	if app.sheetsClient != nil {
		return nil
	}

	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.sheetsClient, err = sheetsclient.NewClient(app.ctx, oauthCfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	return nil
}

// Command definitions

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <week_start>",
		Short: "Analyze one week's roster for rule violations",
		Long:  "Runs the analysis pipeline for the week starting on the given date (YYYY-MM-DD) and prints capacity, violations and suggestions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart := args[0]
			app.logger.Info("analyze command", zap.String("week_start", weekStart))

			if err := ensureDatabase(); err != nil {
				return err
			}

			analysis, err := services.AnalyzeWeek(app.ctx, app.database, app.cfg, app.logger, unitID, weekStart)
			if err != nil {
				return fmt.Errorf("failed to analyze week: %w", err)
			}

			printAnalysis(analysis)
			return nil
		},
	}
}

func analyzeFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyzeFile <roster.yaml>",
		Short: "Analyze a roster snapshot from a YAML file, no database needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			app.logger.Info("analyzeFile command", zap.String("path", path))

			input, err := rosterfile.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load roster file: %w", err)
			}

			printAnalysis(&services.AnalyzeWeekResult{Input: input, Result: engine.Run(input)})
			return nil
		},
	}
}

func assistantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assistant <week_start>",
		Short: "Show the assistant view with suggestions and recorded decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart := args[0]
			app.logger.Info("assistant command", zap.String("week_start", weekStart))

			if err := ensureDatabase(); err != nil {
				return err
			}

			response, err := services.BuildAssistantView(app.ctx, app.database, app.cfg, app.logger, unitID, weekStart)
			if err != nil {
				return fmt.Errorf("failed to build assistant view: %w", err)
			}

			printAssistantResponse(response)
			return nil
		},
	}
}

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <week_start> <suggestion_id>",
		Short: "Apply a suggestion to the stored roster",
		Long:  "Accepts a suggestion by its signature or legacy id, writes the modified week to the database and records the decision. Accepting the same suggestion twice is a no-op.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, suggestionID := args[0], args[1]
			app.logger.Info("accept command",
				zap.String("week_start", weekStart),
				zap.String("suggestion_id", suggestionID))

			if err := ensureDatabase(); err != nil {
				return err
			}

			result, err := services.AcceptSuggestion(app.ctx, app.database, app.cfg, app.logger, unitID, weekStart, suggestionID)
			if err != nil {
				return fmt.Errorf("failed to accept suggestion: %w", err)
			}

			if result.AlreadyApplied {
				fmt.Printf("Suggestion %s was already applied, nothing changed\n", result.Signature)
				return nil
			}
			if !result.Persisted {
				fmt.Printf("No actions could be applied for %s:\n", result.Signature)
				for _, issue := range result.Accept.Apply.Issues {
					fmt.Printf("  - %s: %s\n", issue.ActionKey, issue.Message)
				}
				return nil
			}

			fmt.Printf("Suggestion %s applied (%s)\n", result.Signature, result.Accept.Outcome)
			fmt.Printf("  applied actions:     %d\n", len(result.Accept.Apply.Applied))
			fmt.Printf("  resolved violations: %d\n", len(result.Accept.ResolvedViolations))
			fmt.Printf("  new violations:      %d\n", len(result.Accept.NewViolations))
			fmt.Printf("  remaining:           %d\n", len(result.Accept.RemainingViolations))
			return nil
		},
	}
}

func decideCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "decide <week_start> <suggestion_id> <accepted|rejected>",
		Short: "Record a verdict for a suggestion without touching the roster",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, suggestionID, verdict := args[0], args[1], args[2]
			app.logger.Info("decide command",
				zap.String("week_start", weekStart),
				zap.String("suggestion_id", suggestionID),
				zap.String("decision", verdict))

			if err := ensureDatabase(); err != nil {
				return err
			}

			record, err := services.RecordDecision(app.ctx, app.database, app.cfg, app.logger, services.RecordDecisionArgs{
				UnitID:       unitID,
				WeekStart:    weekStart,
				SuggestionID: suggestionID,
				Decision:     model.DecisionState(verdict),
				Source:       "cli",
				Reason:       reason,
			})
			if err != nil {
				return fmt.Errorf("failed to record decision: %w", err)
			}

			fmt.Printf("Recorded %s for suggestion %s\n", record.Decision, record.SuggestionID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Optional reason for the decision")
	return cmd
}

func importRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "importRoster <week_start>",
		Short: "Import one week's roster from the configured Google Sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart := args[0]
			app.logger.Info("importRoster command", zap.String("week_start", weekStart))

			if err := ensureDatabase(); err != nil {
				return err
			}
			if err := ensureSheetsClient(); err != nil {
				return err
			}

			result, err := services.ImportRoster(app.ctx, app.database, app.sheetsClient, app.cfg, app.logger, unitID, weekStart)
			if err != nil {
				return fmt.Errorf("failed to import roster: %w", err)
			}

			fmt.Printf("Imported %d shifts (%d users, %d positions, %d rows skipped)\n",
				result.Shifts, result.Users, result.Positions, result.Skipped)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("migrate command")

			if err := ensureDatabase(); err != nil {
				return err
			}

			if err := app.database.RunMigrations(app.ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
}

// Output helpers

func printAnalysis(analysis *services.AnalyzeWeekResult) {
	result := analysis.Result

	fmt.Printf("\nWeek %s, unit %s\n", analysis.Input.WeekStart, analysis.Input.UnitID)
	fmt.Printf("Shifts: %d, violations: %d, suggestions: %d\n\n",
		len(analysis.Input.Shifts), len(result.Violations), len(result.Suggestions))

	if len(result.Violations) > 0 {
		fmt.Println("Violations:")
		for _, v := range result.Violations {
			fmt.Printf("  [%s] %s: %s\n", v.Severity, v.ConstraintID, v.Message)
		}
		fmt.Println()
	}

	if len(result.Suggestions) > 0 {
		fmt.Println("Suggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("  (%s) %s\n", s.Type, s.Explanation)
		}
		fmt.Println()
	}
}

func printAssistantResponse(response *model.AssistantResponse) {
	fmt.Printf("\n%d suggestion(s):\n\n", len(response.Suggestions))
	for _, s := range response.Suggestions {
		fmt.Printf("- %s [%s]\n", s.Explanation, s.DecisionState)
		fmt.Printf("  id:        %s\n", s.ID)
		fmt.Printf("  signature: %s\n", s.Signature)
	}

	fmt.Printf("\nExplanations:\n")
	for _, e := range response.Explanations {
		fmt.Printf("  [%s/%s] %s: %s\n", e.Kind, e.Severity, e.Title, e.Details)
	}
	fmt.Println()
}
