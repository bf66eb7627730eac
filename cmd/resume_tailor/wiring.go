package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/merge"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/types"
)

// loadConfig reads the config file (if any) and the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// agents holds one client per workload. LLM backends use a stronger model
// tier for tailoring than for parsing and merging.
type agents struct {
	tailor agent.Client
	merge  agent.Client
	parse  agent.Client
	tools  []agent.ToolRef
	close  func() error
}

func (a *agents) Close() {
	if a.close != nil {
		_ = a.close()
	}
}

// buildAgents constructs the configured agent backend once for the process.
func buildAgents(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*agents, error) {
	if cfg.Agent.Provider == config.ProviderHTTP {
		client := agent.NewHTTPClient(cfg.Agent.BaseURL, cfg.Agent.APIKey, agent.WithLogger(logger))
		return &agents{
			tailor: client,
			merge:  client,
			parse:  client,
			tools:  []agent.ToolRef{{Type: "web_search"}},
		}, nil
	}

	if cfg.Agent.APIKey == "" {
		return nil, fmt.Errorf("an API key is required for agent provider %q (set AGENT_API_KEY)", cfg.Agent.Provider)
	}

	llmCfg := llm.ConfigFor(llm.Provider(cfg.Agent.Provider))
	if cfg.Agent.Model != "" {
		llmCfg = llmCfg.WithAllModels(cfg.Agent.Model)
	}
	llmCfg.BaseURL = cfg.Agent.BaseURL

	client, err := llm.NewClient(ctx, llmCfg, cfg.Agent.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Agent.Provider, err)
	}

	logger.WithFields(logrus.Fields{
		"provider": cfg.Agent.Provider,
		"model":    client.GetModel(llm.TierAdvanced),
	}).Info("Agent backend ready")

	return &agents{
		tailor: agent.NewLLMClient(client, llm.TierAdvanced),
		merge:  agent.NewLLMClient(client, llm.TierStandard),
		parse:  agent.NewLLMClient(client, llm.TierStandard),
		close:  client.Close,
	}, nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

func newMergeEngine(client agent.Client, store merge.ProjectStore, cfg *config.Config, logger logrus.FieldLogger) *merge.Engine {
	return merge.NewEngine(client, store, logger, merge.Options{
		PollInterval: cfg.Agent.PollInterval.Std(),
		Ceiling:      cfg.Agent.MergeTimeout.Std(),
		EngineID:     cfg.Agent.EngineID,
	})
}

func newParser(client agent.Client, cfg *config.Config, logger logrus.FieldLogger) *parsing.Parser {
	return parsing.NewParser(client, logger, parsing.Options{
		PollInterval: cfg.Agent.PollInterval.Std(),
		Ceiling:      cfg.Agent.ParseTimeout.Std(),
		EngineID:     cfg.Agent.EngineID,
	})
}

// readJSONFile decodes the JSON document at path into a T.
func readJSONFile[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}

// readProjects accepts either a bare array of projects or {"projects": [...]}.
func readProjects(path string) ([]types.ParsedProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var projects []types.ParsedProject
	if err := json.Unmarshal(data, &projects); err == nil {
		return projects, nil
	}

	var wrapped struct {
		Projects []types.ParsedProject `json:"projects"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse %s: expected a project array or {\"projects\": [...]}", path)
	}
	return wrapped.Projects, nil
}

// writeJSON pretty-prints v to path, or to out when path is empty.
func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
