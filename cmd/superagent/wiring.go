package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Ariyan3323/my-ai-bot/access"
	"github.com/Ariyan3323/my-ai-bot/capability"
	"github.com/Ariyan3323/my-ai-bot/dispatch"
	"github.com/Ariyan3323/my-ai-bot/ethics"
	"github.com/Ariyan3323/my-ai-bot/pricefeed"
	"github.com/Ariyan3323/my-ai-bot/providers/openai"
	"github.com/Ariyan3323/my-ai-bot/store"
	"github.com/Ariyan3323/my-ai-bot/tools"
)

func storeFromViper() (store.Store, error) {
	backend := strings.TrimSpace(viper.GetString("store.backend"))
	switch backend {
	case "", "memory":
		return store.NewMemory(), nil
	case "file":
		return store.NewFile(viper.GetString("store.file_path")), nil
	case "sqlite":
		return store.OpenSQLite(viper.GetString("store.sqlite_dsn"))
	default:
		return nil, fmt.Errorf("unknown store.backend %q (use memory, file or sqlite)", backend)
	}
}

func filterFromViper() (*ethics.Filter, error) {
	path := strings.TrimSpace(viper.GetString("ethics.patterns_file"))
	if path == "" {
		return ethics.New()
	}
	extra, err := ethics.LoadPatternsFile(path)
	if err != nil {
		return nil, fmt.Errorf("load ethics patterns: %w", err)
	}
	return ethics.New(extra...)
}

func llmClientFromViper() (*openai.Client, error) {
	apiKey := strings.TrimSpace(viper.GetString("api_key"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing api_key (set via %s_API_KEY)", envPrefix)
	}
	timeout := viper.GetDuration("llm.request_timeout")
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return openai.New(viper.GetString("endpoint"), apiKey, timeout), nil
}

// registryFactory binds per-user tools. Admin tools only exist in the
// owner's registry, so the model cannot even see them for other users.
func registryFactory(gate *access.Gate, users store.Store, feed capability.PriceSource) dispatch.RegistryFactory {
	return func(userID int64) *tools.Registry {
		reg := tools.NewRegistry()
		reg.Register(capability.TutorTool{})
		reg.Register(capability.WriterTool{})
		reg.Register(capability.LegalTool{})
		reg.Register(capability.ImageTool{})
		reg.Register(capability.VoiceTool{})
		reg.Register(capability.PriceTool{Feed: feed})
		reg.Register(capability.PremiumTool{Levels: gate, UserID: userID})
		reg.Register(capability.PersonalityTool{Users: users, UserID: userID})
		if gate.IsOwner(userID) {
			reg.Register(capability.SystemStatusTool{})
			reg.Register(capability.SelfReportTool{})
			reg.Register(capability.ListUsersTool{Manager: gate, ActorID: userID})
			reg.Register(capability.SetLevelTool{Manager: gate, ActorID: userID})
		}
		return reg
	}
}

func dispatcherFromViper(log *slog.Logger) (*dispatch.Dispatcher, store.Store, error) {
	users, err := storeFromViper()
	if err != nil {
		return nil, nil, err
	}
	filter, err := filterFromViper()
	if err != nil {
		return nil, nil, err
	}
	client, err := llmClientFromViper()
	if err != nil {
		return nil, nil, err
	}

	gate := access.NewGate(users, viper.GetInt64("admin_id"))
	feed := pricefeed.New(viper.GetString("pricefeed.base_url"), viper.GetDuration("pricefeed.timeout"))

	d := dispatch.New(dispatch.Options{
		Logger:        log,
		Filter:        filter,
		Gate:          gate,
		Users:         users,
		Client:        client,
		Model:         strings.TrimSpace(viper.GetString("model")),
		Tools:         registryFactory(gate, users, feed),
		Trader:        capability.Trader{Feed: feed},
		MaxToolRounds: viper.GetInt("llm.max_tool_rounds"),
	})
	return d, users, nil
}
