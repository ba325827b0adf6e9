package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ccastromar/chat-relay/internal/app"
	"github.com/ccastromar/chat-relay/internal/config"
	"github.com/ccastromar/chat-relay/internal/logx"
)

// runner is the minimal interface our app must satisfy for running.
type runner interface{ Run(context.Context) error }

// appCtor is a constructor indirection to enable testing without launching the real app.
var appCtor = func(env *config.EnvVars) (runner, error) { return app.New(env) }

var loadEnv = config.LoadEnv

// fatalf indirection allows testing fatal paths without exiting the test process.
var fatalf = func(format string, args ...any) {
	logx.Error("Main", format, args...)
	logx.Sync()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type options struct {
	port    string // overrides PORT when set
	envFile string
}

func run(ctx context.Context, opts options) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	env, err := loadEnv(files...)
	if err != nil {
		fatalf("error loading configuration: %v", err)
		return
	}
	if opts.port != "" {
		env.Port = opts.port
	}

	if err := logx.Init(env.LogLevel, env.AppEnv); err != nil {
		fatalf("error initializing logger: %v", err)
		return
	}
	defer logx.Sync()

	a, err := appCtor(env)
	if err != nil {
		fatalf("error initializing app: %v", err)
		return
	}
	if err := a.Run(ctx); err != nil {
		fatalf("error running app: %v", err)
		return
	}
}

func main() {
	port := flag.String("port", "", "HTTP port to listen on (default: $PORT or 8080)")
	envFile := flag.String("env-file", "", "dotenv file to load outside Render (default: .env)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	run(ctx, options{port: *port, envFile: *envFile})
}
