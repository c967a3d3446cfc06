package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/scanconsole/internal/config"
	"github.com/aleister1102/scanconsole/internal/console"
	"github.com/aleister1102/scanconsole/internal/lifecycle"
	"github.com/aleister1102/scanconsole/internal/logger"
	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/aleister1102/scanconsole/internal/progress"
	"github.com/aleister1102/scanconsole/internal/reporter"
	"github.com/aleister1102/scanconsole/internal/scanapi"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	exitOK          = 0
	exitScanFailed  = 1
	exitBadInput    = 2
	exitUnavailable = 3
)

func main() {
	os.Exit(run(ParseFlags()))
}

func run(flags AppFlags) int {
	var envFiles []string
	if flags.EnvFile != "" {
		envFiles = append(envFiles, flags.EnvFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		log.Printf("[WARN] Main: %v", err)
	}

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Printf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
		return exitBadInput
	}
	if err := config.ValidateConfig(gCfg); err != nil {
		log.Printf("[FATAL] Main: %v", err)
		return exitBadInput
	}

	sessionID := uuid.NewString()
	zLogger, err := logger.NewWithSessionID(gCfg.LogConfig, sessionID)
	if err != nil {
		log.Printf("[FATAL] Main: Could not initialize logger: %v", err)
		return exitBadInput
	}
	zLogger.Debug().Str("base_url", gCfg.ScanAPIConfig.GetBaseURL()).Msg("Configuration loaded")

	client, err := scanapi.NewClient(gCfg.ScanAPIConfig, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to create scanning service client")
		return exitBadInput
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	notifyOnSignal(ctx, sigChan, func(sig os.Signal) {
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, aborting any running scan...")
		cancel()
	})

	if flags.Health {
		return runHealth(ctx, client)
	}

	indicator := progress.NewIndicator(zLogger, &progress.IndicatorConfig{
		StepInterval: gCfg.ProgressConfig.GetStepIntervalDuration(),
		Steps:        progress.DefaultSteps,
	})
	controller := lifecycle.NewController(client, indicator, lifecycle.ControllerConfig{
		Timeout:       gCfg.ScanAPIConfig.GetTimeoutDuration(),
		DefaultPrompt: gCfg.ScanAPIConfig.DefaultPrompt,
	}, zLogger)
	defer controller.Close()

	go func() {
		<-ctx.Done()
		controller.Close()
	}()

	if flags.Serve {
		return runServe(ctx, gCfg, controller, client, zLogger)
	}
	return runTerminal(ctx, gCfg, flags, controller, zLogger)
}

func runHealth(ctx context.Context, client *scanapi.Client) int {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	status, err := client.CheckHealth(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Scanning service at %s: %v\n", client.BaseURL(), err)
		return exitUnavailable
	}
	fmt.Printf("✓ Scanning service %q is %s\n", status.Service, status.Status)
	return exitOK
}

func runTerminal(ctx context.Context, gCfg *config.GlobalConfig, flags AppFlags, controller *lifecycle.Controller, zLogger zerolog.Logger) int {
	style := reporter.StyleAuto
	if flags.NoColor {
		style = reporter.StyleNoTTY
	}
	renderer, err := reporter.NewTextRenderer(reporter.TextRendererOptions{Style: style})
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to create terminal renderer")
		return exitBadInput
	}

	input := lifecycle.NewInputStage(gCfg.ScanAPIConfig.DefaultPrompt)
	input.SetURL(flags.TargetURL)
	if flags.Prompt != "" {
		input.SetPrompt(flags.Prompt)
	}

	display := progress.NewDisplay(os.Stdout, zLogger, gCfg.ProgressConfig.EnableProgress)
	unsubscribe := controller.Subscribe(func(snap lifecycle.Snapshot) {
		if snap.State.IsPending() {
			display.Show(snap.Progress)
		}
	})
	defer unsubscribe()

	if err := controller.Submit(ctx, input.Input()); err != nil {
		if msg := controller.Message(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitBadInput
	}

	controller.Wait()
	display.Reset()

	state := controller.State()
	if err := renderer.RenderState(os.Stdout, state); err != nil {
		zLogger.Error().Err(err).Msg("Failed to render scan outcome")
	}
	if state.Status == models.LifecycleFailed {
		return exitScanFailed
	}
	return exitOK
}

func runServe(ctx context.Context, gCfg *config.GlobalConfig, controller *lifecycle.Controller, client *scanapi.Client, zLogger zerolog.Logger) int {
	htmlRenderer, err := reporter.NewHTMLRenderer(zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to create HTML renderer")
		return exitBadInput
	}

	server, err := console.NewServer(gCfg.ConsoleConfig, console.Dependencies{
		Controller: controller,
		Input:      lifecycle.NewInputStage(gCfg.ScanAPIConfig.DefaultPrompt),
		Renderer:   htmlRenderer,
		Health:     client,
	}, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to create console server")
		return exitBadInput
	}
	defer server.Close()

	httpServer := server.HTTPServer()
	serveErr := make(chan error, 1)
	go func() {
		zLogger.Info().Str("addr", httpServer.Addr).Msg("Console listening")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zLogger.Error().Err(err).Msg("Console server stopped unexpectedly")
			return exitUnavailable
		}
		return exitOK
	case <-ctx.Done():
	}

	server.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zLogger.Warn().Err(err).Msg("Console shutdown did not complete cleanly")
	}
	zLogger.Info().Msg("Console stopped")
	return exitOK
}
