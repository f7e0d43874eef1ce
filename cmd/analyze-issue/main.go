package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roivaz/issue-analyzer/internal/config"
	"github.com/roivaz/issue-analyzer/internal/llm"
	"github.com/roivaz/issue-analyzer/internal/logging"
	"github.com/roivaz/issue-analyzer/internal/mcp"
	"github.com/roivaz/issue-analyzer/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:           "analyze-issue",
	Short:         "Analyze GitHub issues with an LLM and post the review back",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify and review an issue, then label it and comment on it",
	RunE: func(cmd *cobra.Command, args []string) error {
		number, _ := cmd.Flags().GetInt("issue")
		testMode, _ := cmd.Flags().GetBool("test")

		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		defer a.close(context.Background())

		model, err := a.modelClient()
		if err != nil {
			return err
		}
		d, err := a.dispatcher(!testMode)
		if err != nil {
			return err
		}
		// templates and options are checked before the issue is fetched
		p, err := a.pipeline(model, d, testMode)
		if err != nil {
			return err
		}
		is, err := a.resolveIssue(ctx, number, testMode, d)
		if err != nil {
			return err
		}

		res, err := p.Run(ctx, is)
		if err != nil {
			return err
		}
		if testMode {
			fmt.Fprintf(cmd.OutOrStdout(), "Labels: %s\n\n%s\n", strings.Join(res.Labels, ", "), res.Comment)
		}
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the prompts that would be sent to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		number, _ := cmd.Flags().GetInt("issue")

		a, err := newApp()
		if err != nil {
			return err
		}
		d, err := a.dispatcher(false)
		if err != nil {
			return err
		}
		p, err := a.pipeline(nil, nil, true)
		if err != nil {
			return err
		}
		is, err := a.resolveIssue(cmd.Context(), number, true, d)
		if err != nil {
			return err
		}
		system, user, err := p.BuildPrompts(is)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "=== system ===\n%s\n=== user ===\n%s\n", system, user)
		return nil
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find likely duplicates of an issue and comment with the matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		number, _ := cmd.Flags().GetInt("issue")
		testMode, _ := cmd.Flags().GetBool("test")

		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		defer a.close(context.Background())

		// candidates always come from GitHub, even in test mode
		d, err := a.dispatcher(true)
		if err != nil {
			return err
		}
		model, err := a.modelClient()
		if err != nil {
			return err
		}
		finder, err := a.finder(model)
		if err != nil {
			return err
		}
		p, err := a.pipeline(model, d, testMode)
		if err != nil {
			return err
		}
		is, err := a.resolveIssue(ctx, number, false, d)
		if err != nil {
			return err
		}

		report, err := p.CheckDuplicates(ctx, is, finder)
		if err != nil {
			return err
		}
		if testMode {
			return printJSON(cmd, report)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the model and GitHub credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := a.settings.RequireModelCredential(); err != nil {
			return err
		}
		models, err := llm.VerifyCredential(ctx, a.llmConfig())
		if err != nil {
			return fmt.Errorf("model credential: %w", err)
		}
		a.log.Info("model credential ok",
			"provider", a.settings.LLM.Provider,
			"models", len(models),
			"configuredModelListed", slices.Contains(models, a.settings.LLM.Model))

		d, err := a.dispatcher(true)
		if err != nil {
			return err
		}
		login, err := d.AuthenticatedUser(ctx)
		if err != nil {
			return fmt.Errorf("github token: %w", err)
		}
		a.log.Info("github token ok", "login", login, "repository", a.settings.GitHub.Repository)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the analyzer as MCP tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		model, err := a.modelClient()
		if err != nil {
			return err
		}
		d, err := a.dispatcher(false)
		if err != nil {
			return err
		}
		p, err := a.pipeline(model, d, true)
		if err != nil {
			return err
		}
		deps := mcp.Deps{Pipeline: p, DefaultRepo: a.settings.GitHub.Repository}
		if d != nil {
			deps.Source = d
			if deps.Finder, err = a.finder(model); err != nil {
				a.log.Info("find_similar_issues disabled", "reason", err.Error())
			}
		}
		srv := mcp.New(mcp.DefaultConfig(deps))

		if transport == "stdio" {
			return srv.ServeStdio()
		}
		return serveHTTP(a.log, srv, host+":"+strconv.Itoa(port))
	},
}

func serveHTTP(log logging.Logger, srv *mcp.Server, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("MCP server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupCommands() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("trace", false, "Print OpenTelemetry spans to stderr")
	rootCmd.PersistentFlags().String("template-dir", "", "Directory with prompt and comment templates (default: built-in)")

	for _, c := range []*cobra.Command{runCmd, renderCmd, duplicatesCmd} {
		c.Flags().Int("issue", 0, "Issue number to fetch instead of reading GITHUB_EVENT_PATH")
	}
	runCmd.Flags().Bool("test", false, "Print the analysis instead of labeling and commenting")
	duplicatesCmd.Flags().Bool("test", false, "Print the matches instead of commenting")
	serveCmd.Flags().String("transport", "http", "MCP transport: http or stdio")
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP host")
	serveCmd.Flags().Int("port", 8000, "HTTP port")

	config.Init(rootCmd)
	rootCmd.AddCommand(runCmd, renderCmd, duplicatesCmd, checkCmd, serveCmd)
}

func main() {
	setupCommands()
	if err := rootCmd.Execute(); err != nil {
		reason, category := pipeline.GetFailureDetails(err)
		log := logging.New(logging.NewZap(config.LogLevel()))
		log.Error(err, "analyze-issue failed", "category", category, "reason", reason)
		os.Exit(1)
	}
}
