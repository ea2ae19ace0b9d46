package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/config"
	"github.com/kot-brodskogo/task-manager-system/database"
	"github.com/kot-brodskogo/task-manager-system/handlers"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

func main() {
	envLoaded, err := loadDotEnv()
	if err != nil {
		log.Fatalf("Erro ao carregar o arquivo .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}
	utilities.InitLogger(cfg.LogLevel, cfg.LogFile)
	if !envLoaded {
		utilities.LogInfo("Arquivo .env não encontrado, usando apenas variáveis de ambiente")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(ctx, cfg.DB)
	if err != nil {
		utilities.Logger.Fatalf("Erro ao conectar ao banco de dados: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		utilities.Logger.Fatalf("Erro ao criar o schema: %v", err)
	}

	app, err := handlers.NewApp(
		models.NewStore(db),
		auth.NewPasswordHasher(cfg.BcryptCost),
		auth.NewSessionManager(auth.SessionOptions{
			Secret:      cfg.SessionSecret,
			TTL:         cfg.SessionTTL,
			RememberTTL: cfg.RememberTTL,
			Secure:      cfg.CookieSecure,
		}),
		handlers.CSRFOptions{
			Key:    csrfKey(cfg.SessionSecret),
			Secure: cfg.CookieSecure,
		},
	)
	if err != nil {
		utilities.Logger.Fatalf("Erro ao inicializar a aplicação: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(app, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		utilities.LogInfo("Servidor iniciado na porta %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utilities.Logger.Fatalf("Erro no servidor HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	utilities.LogInfo("Sinal recebido, encerrando o servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utilities.LogError(err, "Erro ao encerrar o servidor")
	}
}

// csrfKey deriva a chave de 32 bytes do gorilla/csrf a partir do segredo
// de sessão, separada da chave que assina o cookie de sessão.
func csrfKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

// loadDotEnv carrega o .env (ou os arquivos dados). Arquivo ausente não é
// erro: loaded volta false e o processo segue só com o ambiente.
func loadDotEnv(files ...string) (loaded bool, err error) {
	err = godotenv.Load(files...)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
