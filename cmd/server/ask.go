package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dudas-espanol/internal/app"
	"dudas-espanol/internal/bootstrap"
	"dudas-espanol/internal/config"
)

// errReported marks failures already printed for the user; main only sets the exit code.
var errReported = errors.New("failure already reported")

func newAskCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask [consulta]",
		Short: "Envía una sola consulta y muestra la respuesta",
		Example: `  dudas-espanol ask "¿Se escribe «sino» o «si no»?"
  SESSION_STORE=redis dudas-espanol ask --session 6f1c... "¿Y en esta frase?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(sessionID, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "continue an existing session (requires session.store = redis)")

	return cmd
}

func runAsk(sessionID, content string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	// The memory store lives and dies with this process, so there is nothing to continue.
	if sessionID != "" && cfg.Session.Store != config.StoreRedis {
		return fmt.Errorf("--session needs session.store = %q, got %q", config.StoreRedis, cfg.Session.Store)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	a, err := bootstrap.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer a.Close()

	result, err := a.Chat.Ask(ctx, app.AskInput{SessionID: sessionID, Content: content})
	if err != nil {
		failure := app.DescribeFailure(err)
		fmt.Fprintln(os.Stderr, failure.Message)
		if failure.Details != "" {
			fmt.Fprintln(os.Stderr, failure.Details)
		}
		return errReported
	}

	fmt.Println(result.Assistant.Content)
	return nil
}
