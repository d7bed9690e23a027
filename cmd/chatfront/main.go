package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"chatfront/internal/config"
	"chatfront/internal/conversation"
	"chatfront/internal/floorplan"
	"chatfront/internal/identity"
	"chatfront/internal/logger"
	"chatfront/internal/services"
	"chatfront/internal/tui"
)

const tokenTTL = 15 * time.Minute

func main() {
	app := flag.String("app", "mood", "chat to open: mood or floorplan")
	flag.Parse()

	// ──── Configuration & logging ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration error: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, "chatfront")
	if err != nil {
		log.Fatalf("✗ Logger setup failed: %v", err)
	}
	defer appLogger.Sync()

	provider, err := newIdentity(cfg)
	if err != nil {
		log.Fatalf("✗ AUTH_TOKEN rejected: %v", err)
	}

	// ──── Notifications ────
	toasts := services.NewNotificationCenter(cfg.ToastTTL, appLogger.Named("toasts"))
	toasts.Start()
	defer toasts.Stop()

	opts := tui.Options{MarkdownStyle: os.Getenv("GLAMOUR_STYLE")}

	var model tea.Model
	switch *app {
	case "mood":
		client := services.NewRestClient(services.ClientOptions{
			BaseURL:  cfg.ConversationAPIURL,
			Timeout:  cfg.HTTPTimeout,
			Identity: provider,
			Logger:   appLogger.Named("conversation_api"),
		})
		api := services.NewConversationAPI(client, appLogger)
		panel := conversation.New(api, provider, toasts, appLogger.Named("conversation"), cfg.DefaultModel)
		defer panel.Close()
		model = tui.NewMoodModel(panel, toasts, opts)

	case "floorplan":
		client := services.NewRestClient(services.ClientOptions{
			BaseURL:  cfg.FloorPlanAPIURL,
			Timeout:  cfg.HTTPTimeout,
			Identity: provider,
			Logger:   appLogger.Named("floorplan_api"),
		})
		api := services.NewFloorPlanAPI(client, appLogger)
		chat := floorplan.New(api, floorplan.DirSaver{Dir: cfg.DownloadDir}, appLogger.Named("floorplan"))
		defer chat.Close()
		model = tui.NewFloorPlanModel(chat, toasts, opts)

	default:
		fmt.Fprintf(os.Stderr, "unknown -app %q (want mood or floorplan)\n", *app)
		os.Exit(2)
	}

	appLogger.Info("chatfront starting",
		zap.String("app", *app),
		zap.String("conversation_api", cfg.ConversationAPIURL),
		zap.String("floorplan_api", cfg.FloorPlanAPIURL),
	)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		appLogger.Error("terminal UI failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("chatfront stopped")
}

// newIdentity prefers a pre-issued token, then self-signed tokens, then the
// bare configured user.
func newIdentity(cfg *config.Config) (identity.Provider, error) {
	switch {
	case cfg.AuthToken != "":
		bearer, err := identity.NewBearer(cfg.AuthToken)
		if err != nil {
			return nil, err
		}
		return bearer, nil
	case cfg.JWTSecret != "":
		return identity.NewSigner(cfg.JWTSecret, cfg.UserID, tokenTTL), nil
	default:
		return identity.Static{UserID: cfg.UserID}, nil
	}
}
