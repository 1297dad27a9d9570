package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenops/taskd/internal/config"
	"github.com/lumenops/taskd/internal/gateway"
	"github.com/lumenops/taskd/internal/llm"
	"github.com/lumenops/taskd/internal/sandbox"
	"github.com/lumenops/taskd/internal/task"
)

var rootCmd = &cobra.Command{
	Use:   "taskd",
	Short: "taskd - natural-language task automation daemon",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE:  runServe,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show taskd status",
	RunE:  runStatus,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and sandbox skeleton",
	RunE:  runOnboard,
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd, onboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := sandbox.New(cfg.Sandbox.Root)
	if err != nil {
		return fmt.Errorf("create sandbox: %w", err)
	}

	dispatcher := task.NewDispatcher(task.Env{
		Sandbox:     root,
		Completer:   llm.NewClient(cfg.Completion),
		ExecTimeout: time.Duration(cfg.Tools.ExecTimeout) * time.Second,
	})

	srv := gateway.New(cfg.Gateway, dispatcher, root)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Sandbox root: %s\n", cfg.Sandbox.Root)
	fmt.Printf("Gateway: %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Printf("Model: %s\n", cfg.Completion.Model)
	if token := cfg.Completion.Token; token != "" && len(token) > 8 {
		fmt.Printf("Token: %s...%s\n", token[:4], token[len(token)-4:])
	} else if cfg.Completion.Token != "" {
		fmt.Println("Token: set")
	} else {
		fmt.Println("Token: not set")
	}

	if _, err := os.Stat(cfg.Sandbox.Root); err != nil {
		fmt.Println("Sandbox: not found (run 'taskd onboard')")
	} else {
		fmt.Println("Sandbox: ready")
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgPath := config.ConfigPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	for _, dir := range []string{"", "logs", "docs", "git_repos"} {
		if err := os.MkdirAll(filepath.Join(cfg.Sandbox.Root, dir), 0755); err != nil {
			return fmt.Errorf("create sandbox dir: %w", err)
		}
	}
	fmt.Printf("Sandbox ready: %s\n", cfg.Sandbox.Root)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set the completion token\n", cfgPath)
	fmt.Println("  2. Or set AIPROXY_TOKEN environment variable")
	fmt.Println("  3. Run 'taskd serve' to start the gateway")
	return nil
}
