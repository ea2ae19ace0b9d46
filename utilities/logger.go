package utilities

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger é a instância compartilhada usada pelos handlers e pelo main.
var Logger = logrus.New()

var once sync.Once

// InitLogger configura nível e saída do logger. Com logFile vazio escreve
// apenas no stdout; caso contrário também grava no arquivo com rotação.
func InitLogger(level, logFile string) {
	once.Do(func() {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000000",
		})

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Logger.SetLevel(lvl)

		var out io.Writer = os.Stdout
		if logFile != "" {
			out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // dias
				Compress:   true,
			})
		}
		Logger.SetOutput(out)

		if err != nil {
			Logger.Warnf("LOG_LEVEL inválido %q, usando info", level)
		}
	})
}

// LogRequest registra informações sobre a requisição HTTP
func LogRequest(requestID, method, path, remoteAddr string, status int, duration time.Duration) {
	Logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"remote":     remoteAddr,
		"status":     status,
		"duration":   duration,
	}).Info("request")
}

// LogError registra erros com o contexto em que ocorreram
func LogError(err error, context string) {
	Logger.WithError(err).Error(context)
}

// LogDebug registra informações de debug
func LogDebug(format string, v ...interface{}) {
	Logger.Debugf(format, v...)
}

// LogInfo registra informações gerais
func LogInfo(format string, v ...interface{}) {
	Logger.Infof(format, v...)
}
