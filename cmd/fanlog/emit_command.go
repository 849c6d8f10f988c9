package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fanlog/internal/logging"
	"fanlog/internal/setup"
	"fanlog/pkg/fanlog"
)

const defaultEmitWait = 5 * time.Second

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var (
		dataPairs    []string
		contextPairs []string
		app          string
		wait         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "emit <level> <message>",
		Short: "Dispatch one record to every configured transport",
		Long: "Emit builds a record at the given level (trace, debug, info, warn, error, fatal)\n" +
			"and hands it to each configured transport in order. Transport failures are\n" +
			"reported on stderr and never change the exit status.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := fanlog.ParseSeverity(args[0])
			if err != nil {
				return err
			}
			data, err := setup.ParseFields(dataPairs)
			if err != nil {
				return fmt.Errorf("--data: %w", err)
			}
			recordCtx, err := setup.ParseFields(contextPairs)
			if err != nil {
				return fmt.Errorf("--context: %w", err)
			}
			sessionID := uuid.NewString()
			if _, ok := recordCtx[logging.FieldSessionID]; !ok {
				recordCtx[logging.FieldSessionID] = sessionID
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opsLog, opsCloser, err := ctx.operationalLogger(cmd.ErrOrStderr(), sessionID)
			if err != nil {
				return err
			}
			defer func() { _ = opsCloser.Close() }()
			opsLog = logging.NewComponentLogger(opsLog, "emit")

			pipeline, err := setup.Build(cfg, setup.Options{
				App:    app,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
				Logger: opsLog,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := pipeline.Close(); err != nil {
					opsLog.Warn("closing transports failed", logging.Error(err))
				}
			}()

			logger := pipeline.Logger()
			emit(logger, level, args[1], data, recordCtx)

			waitCtx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			if err := logger.Wait(waitCtx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					opsLog.Warn("gave up waiting for asynchronous transports", logging.String("wait", wait.String()))
					return nil
				}
				return err
			}
			opsLog.Debug("record dispatched",
				logging.String("level", level.String()),
				logging.Int("transports", len(logger.Transports())),
			)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&dataPairs, "data", "d", nil, "Data field as key=value (repeatable; JSON values keep their type)")
	cmd.Flags().StringArrayVar(&contextPairs, "context", nil, "Context field as key=value (repeatable)")
	cmd.Flags().StringVar(&app, "app", "", "Application label (overrides the configured app)")
	cmd.Flags().DurationVar(&wait, "wait", defaultEmitWait, "How long to wait for asynchronous transports")
	return cmd
}

// emit calls the Logger method named by level.
func emit(logger *fanlog.Logger, level fanlog.Severity, message string, data, ctx fanlog.Fields) {
	switch level {
	case fanlog.Trace:
		logger.Trace(message, data, ctx)
	case fanlog.Debug:
		logger.Debug(message, data, ctx)
	case fanlog.Info:
		logger.Info(message, data, ctx)
	case fanlog.Warn:
		logger.Warn(message, data, ctx)
	case fanlog.Error:
		logger.Error(message, data, ctx)
	case fanlog.Fatal:
		logger.Fatal(message, data, ctx)
	}
}
