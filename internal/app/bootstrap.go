package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/tolujimoh/flowdrift/internal/adapters/compliance"
	"github.com/tolujimoh/flowdrift/internal/adapters/store"
	"github.com/tolujimoh/flowdrift/internal/config"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
	"github.com/tolujimoh/flowdrift/internal/core/service"
	"github.com/tolujimoh/flowdrift/internal/errors"
	"github.com/tolujimoh/flowdrift/internal/log"
	jsonreport "github.com/tolujimoh/flowdrift/internal/reporting/json"
	"github.com/tolujimoh/flowdrift/internal/reporting/text"
	"github.com/tolujimoh/flowdrift/pkg/latency"
)

// Application bundles the wired components the CLI commands operate on.
type Application struct {
	Config             *config.Config
	Logger             ports.Logger
	Store              ports.StoreClient
	Compliance         ports.ComplianceService
	Orchestrator       *service.Orchestrator
	Monitor            *latency.Monitor
	DiffReporter       ports.DiffReporter
	ValidationReporter ports.ValidationReporter
}

// BuildApplicationFromViper wires logger, clients, orchestrator and reporters
// from the merged configuration.
func BuildApplicationFromViper(ctx context.Context, v *viper.Viper) (*Application, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigParseError, "failed to unmarshal configuration")
	}

	logCfg := log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat}
	logger, err := log.NewLogger(logCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(ctx, cfg); err != nil {
		var details strings.Builder
		details.WriteString("Configuration validation failed:")
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range validationErrors {
				details.WriteString(fmt.Sprintf("\n - Field '%s': failed '%s' validation (value: '%v')",
					fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			details.WriteString(" " + err.Error())
		}
		wrappedErr := errors.NewUserFacing(errors.CodeConfigValidation, details.String(),
			"Please check your configuration file or flags.")
		logger.Errorf(ctx, wrappedErr, "Configuration validation failed")
		return nil, wrappedErr
	}

	storeClient, err := store.NewClient(cfg.Store, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize store client")
	}
	logger.Infof(ctx, "Using configuration store at %s", cfg.Store.BaseURL)

	complianceClient, err := compliance.NewClient(cfg.Compliance, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize compliance client")
	}
	logger.Infof(ctx, "Using compliance service at %s", cfg.Compliance.BaseURL)

	monitor := latency.NewMonitor()
	orchestrator, err := service.NewOrchestrator(
		complianceClient,
		service.SystemClock(),
		logger.WithFields(map[string]any{"component": "orchestrator"}),
		monitor,
		service.Config{
			ComplianceThreshold: cfg.Settings.ComplianceThreshold,
			InitialWait:         cfg.Settings.InitialWait,
			PollInterval:        cfg.Settings.PollInterval,
			PollRetries:         cfg.Settings.PollRetries,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize validation orchestrator")
	}

	var diffReporter ports.DiffReporter
	var validationReporter ports.ValidationReporter
	switch cfg.Settings.ReporterType {
	case jsonreport.ReporterTypeJSON:
		reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": jsonreport.ReporterTypeJSON})
		reporter, err := jsonreport.NewReporter(jsonreport.Config{}, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize JSON reporter")
		}
		diffReporter, validationReporter = reporter, reporter
	case text.ReporterTypeText, "":
		reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": text.ReporterTypeText})
		textCfg := cfg.Settings.Reporter.Text
		if textCfg == nil {
			textCfg = config.DefaultConfig().Settings.Reporter.Text
		}
		reporter, err := text.NewReporter(*textCfg, reportLog)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize text reporter")
		}
		diffReporter, validationReporter = reporter, reporter
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
	}

	logger.Debugf(ctx, "Application bootstrap complete")
	return &Application{
		Config:             cfg,
		Logger:             logger,
		Store:              storeClient,
		Compliance:         complianceClient,
		Orchestrator:       orchestrator,
		Monitor:            monitor,
		DiffReporter:       diffReporter,
		ValidationReporter: validationReporter,
	}, nil
}
