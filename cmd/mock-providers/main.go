package main

import (
	"flag"
	"net/http"

	"github.com/ccastromar/chat-relay/internal/logx"
	mockHF "github.com/ccastromar/chat-relay/internal/mocks/huggingface"
	mockOpenRouter "github.com/ccastromar/chat-relay/internal/mocks/openrouter"
)

var listenAndServe = http.ListenAndServe

func buildMux() *http.ServeMux {
	mux := http.NewServeMux()
	mockOpenRouter.RegisterHandlers(mux)
	mockHF.RegisterHandlers(mux)
	return mux
}

func main() {
	port := flag.String("port", "9000", "HTTP port to listen on")
	flag.Parse()

	logx.Info("Mock", "fake providers listening on :%s (OPENROUTER_BASE_URL=http://localhost:%s/api/v1, HF_BASE_URL=http://localhost:%s)", *port, *port, *port)
	if err := listenAndServe(":"+*port, buildMux()); err != nil {
		logx.Error("Mock", "server stopped: %v", err)
	}
	logx.Sync()
}
