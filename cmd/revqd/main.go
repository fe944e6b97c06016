// revqd exposes the action buffer as an MCP server over stdio. A review
// agent connects as an MCP client, stages comments and approval intents
// with the staging tools, and flushes them to the hosting platform with
// execute_actions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/build"
	"github.com/roasbeef/revq/internal/config"
	"github.com/roasbeef/revq/internal/githubapi"
	"github.com/roasbeef/revq/internal/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "",
			"Path to config file (default: revq.yaml)")
		prNumber = flag.Int("pr", 0,
			"Pull request number to operate on")
		owner = flag.String("owner", "",
			"Repository owner (overrides config)")
		repo = flag.String("repo", "",
			"Repository name (overrides config)")
		logDir = flag.String("logdir", "",
			"Log file directory (overrides config)")
	)
	flag.Parse()

	if *prNumber < 1 {
		return fmt.Errorf("a pull request number is required " +
			"(--pr)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *owner != "" {
		cfg.GitHub.Owner = *owner
	}
	if *repo != "" {
		cfg.GitHub.Repo = *repo
	}
	if *logDir != "" {
		cfg.Log.Dir = *logDir
	}

	// Stdout carries the MCP wire protocol, so console logging is
	// disabled and everything goes to the rotating log file.
	logCfg := &build.LogConfig{
		Level:     cfg.Log.Level,
		NoConsole: true,
	}
	if cfg.Log.Dir != "" {
		rotator := build.DefaultLogRotatorConfig()
		rotator.LogDir = cfg.Log.Dir
		logCfg.Rotator = rotator
	}

	logMgr, err := build.NewLogManager(logCfg)
	if err != nil {
		return err
	}
	defer logMgr.Close()

	githubapi.UseLogger(logMgr.Subsystem(githubapi.Subsystem))
	actions.UseLogger(logMgr.Subsystem(actions.Subsystem))
	mcp.UseLogger(logMgr.Subsystem(mcp.Subsystem))

	api, err := githubapi.NewClient(githubapi.Config{
		Owner: cfg.GitHub.Owner,
		Repo:  cfg.GitHub.Repo,
		Token: cfg.GitHub.ResolveToken(),
	})
	if err != nil {
		return err
	}

	server := mcp.NewServer(mcp.Config{
		API:      api,
		PRNumber: *prNumber,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx, &sdkmcp.StdioTransport{})
}
