package environment

import (
	"net/http"

	"datrix-bot/internal/config"
)

type Servers struct {
	HTTP struct {
		Observability *http.Server
		API           *http.Server
	}
}

func newServers(cfg config.Config, clients *Clients, services *Services) *Servers {
	var servers Servers

	apiMux := http.NewServeMux()
	services.WebhookHandler.Register(apiMux)

	servers.HTTP.API = &http.Server{
		Addr:              cfg.API.ADDR(),
		Handler:           apiMux,
		ReadTimeout:       cfg.API.ReadTimeout,
		WriteTimeout:      cfg.API.WriteTimeout,
		IdleTimeout:       cfg.API.IdleTimeout,
		ReadHeaderTimeout: cfg.API.ReadTimeout,
	}
	servers.HTTP.Observability = initObservability(cfg, clients)

	return &servers
}
