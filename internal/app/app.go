package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ccastromar/chat-relay/internal/api"
	"github.com/ccastromar/chat-relay/internal/config"
	"github.com/ccastromar/chat-relay/internal/llm"
	"github.com/ccastromar/chat-relay/internal/logx"
	"github.com/ccastromar/chat-relay/internal/responder"
	"github.com/ccastromar/chat-relay/internal/runtime"
	"github.com/ccastromar/chat-relay/internal/ui"
	"golang.org/x/sync/errgroup"
)

type App struct {
	env      *config.EnvVars
	rt       *runtime.Runtime
	ui       *ui.UIStore
	resolver *responder.Resolver
	http     *HTTPServer
}

// New wires configuration, provider clients, the reply chain and the HTTP
// server. It makes no network calls.
func New(env *config.EnvVars) (*App, error) {
	if env == nil {
		return nil, fmt.Errorf("app: nil configuration")
	}

	rules, err := config.LoadRules(env.RulesFile)
	if err != nil {
		return nil, err
	}

	rt := &runtime.Runtime{RulesLoaded: true}
	var chain []responder.Responder

	openrouter := llm.NewOpenAIClient(env.OpenRouterBaseURL, env.OpenRouterAPIKey, env.OpenRouterModel)
	openrouter.KeyPrefix = env.OpenRouterKeyPrefix
	openrouter.Timeout = env.LLMTimeout
	primary := responder.NewPrimaryResponder(llm.ProviderOpenRouter, openrouter)
	chain = append(chain, primary)
	rt.Providers = append(rt.Providers, runtime.Provider{Name: llm.ProviderOpenRouter, Client: openrouter})

	var secondary responder.Responder
	if name, client := secondaryClient(env); client != nil {
		secondary = responder.NewGenerativeResponder(name, client, env.HFWrapPrompt, env.MinReplyLength)
		chain = append(chain, secondary)
		rt.Providers = append(rt.Providers, runtime.Provider{Name: name, Client: client})
	}

	resolver := responder.NewResolver(
		responder.NewRuleResponder(rules),
		responder.WithResponders(chain...),
		responder.WithFallback(env.FallbackEnabled),
	)

	// the timeline holds raw user messages, so it only exists where the
	// debug routes do
	var uiStore *ui.UIStore
	if env.DebugEnabled() {
		uiStore = ui.NewUIStore(ui.DefaultCapacity)
	}
	chatAPI := api.NewChatAPI(api.Deps{
		Resolver:  resolver,
		UI:        uiStore,
		Env:       env,
		Primary:   primary,
		Secondary: secondary,
	})

	return &App{
		env:      env,
		rt:       rt,
		ui:       uiStore,
		resolver: resolver,
		http:     NewHTTPServer(env, NewRouter(chatAPI, uiStore, rt)),
	}, nil
}

func secondaryClient(env *config.EnvVars) (string, llm.LLMClient) {
	switch env.SecondaryProvider {
	case config.SecondaryHuggingFace:
		c := llm.NewHuggingFaceClient(env.HFBaseURL, env.HFToken, env.HFModel)
		c.Params = llm.GenerationParams{
			MaxLength:   env.HFMaxLength,
			Temperature: env.HFTemperature,
			TopP:        env.HFTopP,
			DoSample:    true,
		}
		c.Timeout = env.LLMTimeout
		return llm.ProviderHuggingFace, c
	case config.SecondaryOllama:
		c := llm.NewOllamaClient(env.OllamaBaseURL, env.OllamaModel)
		c.Timeout = env.LLMTimeout
		return llm.ProviderOllama, c
	default:
		return "", nil
	}
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.http.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.http.Start(gctx)
	})

	// one readiness report at startup, the service answers either way
	g.Go(func() error {
		a.reportProviders(gctx)
		return nil
	})

	logx.Info("App", "chat relay started (fallback=%t, secondary=%s)", a.env.FallbackEnabled, a.env.SecondaryProvider)

	return g.Wait()
}

func (a *App) reportProviders(ctx context.Context) {
	if a.rt == nil {
		return
	}
	logx.Info("App", "openrouter key present=%t length=%d preview=%s",
		a.env.OpenRouterAPIKey != "", len(a.env.OpenRouterAPIKey), config.MaskSecret(a.env.OpenRouterAPIKey))
	for name, err := range a.rt.Probe(ctx) {
		if err != nil {
			logx.Warn("App", "provider %s unavailable: %v", name, err)
			continue
		}
		logx.Info("App", "provider %s reachable", name)
	}
}
