// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Command mentis runs the Mentis conversational agent: one-shot
// questions, an interactive session, evaluation suites, a multi-agent
// team run, and an MCP stdio server for the built-in tools.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mentis-ai/mentis/pkg/agent"
	"github.com/mentis-ai/mentis/pkg/config"
	"github.com/mentis-ai/mentis/pkg/evaluation"
	"github.com/mentis-ai/mentis/pkg/llm"
	"github.com/mentis-ai/mentis/pkg/mcp"
	"github.com/mentis-ai/mentis/pkg/memory"
	"github.com/mentis-ai/mentis/pkg/team"
	"github.com/mentis-ai/mentis/pkg/telemetry"
	"github.com/mentis-ai/mentis/pkg/tools"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for MENTIS_* and GOOGLE_API_KEY.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	switch args[0] {
	case "ask":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: mentis ask <message>"))
		}
		runAsk(ctx, cfg, strings.Join(args[1:], " "))
	case "chat":
		runChat(ctx, cfg, *configPath)
	case "eval":
		runEval(ctx, cfg)
	case "team":
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: mentis team <task>"))
		}
		runTeam(ctx, cfg, strings.Join(args[1:], " "))
	case "mcp":
		runMCPServer()
	case "version":
		fmt.Println("mentis " + version)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func printUsage() {
	fmt.Println(`mentis - conversational agent

Usage:
  mentis [--config file.yaml] <command>

Commands:
  ask <message>   answer a single message and exit
  chat            interactive session (/report memory|traces, /quit)
  eval            run the evaluation suites and print the report
  team <task>     fan a task out to the researcher/analyzer/writer team
  mcp             serve the built-in tools over MCP on stdio
  version         print the version
  help            show this help`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "mock":
		return &llm.MockProvider{Response: "(mock response)"}, nil
	case "gemini":
		apiKey := cfg.LLM.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires llm.api_key or GOOGLE_API_KEY")
		}
		opts := []llm.GeminiOption{llm.WithGeminiModel(cfg.LLM.Model)}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, llm.WithGeminiBaseURL(cfg.LLM.BaseURL))
		}
		var provider llm.Provider = llm.NewGemini(apiKey, opts...)
		if cfg.LLM.Retries > 1 {
			retry := llm.DefaultRetryConfig()
			retry.MaxAttempts = cfg.LLM.Retries
			provider = llm.NewRetryProvider(provider, retry)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func buildAgent(cfg *config.Config) (*agent.Agent, func(), error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	shutdown, err := telemetry.InitWithConfig("mentis", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return nil, nil, err
	}

	collector, err := telemetry.NewCollectorWithMeter("mentis/agent")
	if err != nil {
		shutdown(context.Background())
		return nil, nil, err
	}

	opts := []agent.Option{
		agent.WithProvider(provider),
		agent.WithStore(memory.NewStore(cfg.Memory.Path)),
		agent.WithUserID(cfg.Agent.UserID),
		agent.WithModel(cfg.LLM.Model),
		agent.WithContextTurns(cfg.Agent.ContextTurns),
		agent.WithConversationLog(memory.NewConversationLog(cfg.Agent.MaxTurns)),
		agent.WithMetrics(collector),
	}
	if cfg.Agent.SystemPrompt != "" {
		opts = append(opts, agent.WithSystemPrompt(cfg.Agent.SystemPrompt))
	}

	var archive *memory.SQLiteArchive
	if cfg.Memory.ArchiveEnabled {
		archive, err = memory.OpenSQLiteArchive(cfg.Memory.ArchivePath)
		if err != nil {
			shutdown(context.Background())
			return nil, nil, err
		}
		opts = append(opts, agent.WithArchive(archive))
	}

	a, err := agent.New(cfg.Agent.ID, opts...)
	if err != nil {
		if archive != nil {
			archive.Close()
		}
		shutdown(context.Background())
		return nil, nil, err
	}

	cleanup := func() {
		if archive != nil {
			archive.Close()
		}
		shutdown(context.Background())
	}
	return a, cleanup, nil
}

func runAsk(ctx context.Context, cfg *config.Config, message string) {
	a, cleanup, err := buildAgent(cfg)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	result, err := a.Chat(ctx, message)
	if err != nil {
		fatal(err)
	}
	fmt.Println(result.Response)
	if result.ToolUsed != "" {
		fmt.Printf("[used tool: %s]\n", result.ToolUsed)
	}
}

func runChat(ctx context.Context, cfg *config.Config, configPath string) {
	a, cleanup, err := buildAgent(cfg)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	// Pick up log-level changes without restarting the session.
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath)
		if err == nil {
			watcher.OnChange(func(fresh *config.Config) {
				telemetry.ConfigureSlog(os.Stderr, fresh.Log.Level, fresh.Log.Format)
			})
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	fmt.Printf("mentis %s - interactive session (/report memory|traces, /quit)\n", version)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return
		case strings.HasPrefix(line, "/report"):
			section := strings.TrimSpace(strings.TrimPrefix(line, "/report"))
			if section == "" {
				section = "memory"
			}
			printReport(a, section)
		default:
			result, err := a.Chat(ctx, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				continue
			}
			fmt.Println(result.Response)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func printReport(a *agent.Agent, section string) {
	report, err := a.Report(section)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	printJSON(report)
}

func runEval(ctx context.Context, cfg *config.Config) {
	a, cleanup, err := buildAgent(cfg)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	report := evaluation.New(a).RunAll(ctx)
	printJSON(report)

	fmt.Fprintf(os.Stderr, "suites passed: %d/%d (%s)\n",
		report.Overall.PassedSuites, report.Overall.TotalSuites, report.Overall.SuccessRate)
}

func runTeam(ctx context.Context, cfg *config.Config, task string) {
	provider, err := buildProvider(cfg)
	if err != nil {
		fatal(err)
	}

	out, err := team.NewStandardTeam(provider).Coordinate(ctx, task)
	if err != nil {
		fatal(err)
	}
	fmt.Println(out)
}

func runMCPServer() {
	s := mcp.NewServer("mentis", version)
	s.RegisterRegistry(tools.DefaultRegistry())
	if err := s.ServeStdio(); err != nil {
		fatal(err)
	}
}

func printJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(encoded))
}
