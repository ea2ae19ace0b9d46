package main

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/kot-brodskogo/task-manager-system/config"
	"github.com/kot-brodskogo/task-manager-system/handlers"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

// NewRouter embrulha as rotas da aplicação com CORS, recuperação de panics
// e, com TRUST_PROXY, leitura dos cabeçalhos de proxy.
func NewRouter(app *handlers.App, cfg config.Config) http.Handler {
	// Configuração do CORS
	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "X-Request-ID"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
		utilities.LogInfo("CORS_ALLOWED_ORIGINS não definida, permitindo todas as origens ('*'). Defina para maior segurança em produção.")
	}
	utilities.LogInfo("Configurando CORS com origens permitidas: %v", allowedOrigins)

	var h http.Handler = app.Routes()
	h = gorillahandlers.CORS(headers, methods, gorillahandlers.AllowedOrigins(allowedOrigins))(h)
	h = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(utilities.Logger),
		gorillahandlers.PrintRecoveryStack(true),
	)(h)
	return withProxyHeaders(h, cfg.TrustProxy)
}

// withProxyHeaders só aceita X-Forwarded-For/X-Real-IP quando há um proxy
// confiável na frente; caso contrário qualquer cliente forjaria o RemoteAddr.
func withProxyHeaders(h http.Handler, trust bool) http.Handler {
	if !trust {
		return h
	}
	utilities.LogInfo("TRUST_PROXY ativo: usando cabeçalhos X-Forwarded-* do proxy")
	return gorillahandlers.ProxyHeaders(h)
}
