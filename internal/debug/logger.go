package debug

import (
	"log"
	"os"
	"sync/atomic"
)

var enabled atomic.Bool

func init() {
	// PGPC_DEBUG_DASHBOARD=true habilita el envío de logs al dashboard
	if os.Getenv("PGPC_DEBUG_DASHBOARD") == "true" {
		SetEnabled(true)
	}
}

// SetEnabled activa o desactiva el dashboard en tiempo de ejecución
func SetEnabled(v bool) {
	if v && !enabled.Load() {
		log.Println("🐛 Debug Dashboard habilitado")
	}
	enabled.Store(v)
}

// IsEnabled retorna si el dashboard de debugging está habilitado
func IsEnabled() bool {
	return enabled.Load()
}

// LogDebug envía un log de nivel debug al dashboard
func LogDebug(message string, metadata map[string]interface{}) {
	logLevel("debug", message, metadata)
}

// LogInfo envía un log de nivel info al dashboard
func LogInfo(message string, metadata map[string]interface{}) {
	logLevel("info", message, metadata)
}

// LogWarn envía un log de nivel warn al dashboard
func LogWarn(message string, metadata map[string]interface{}) {
	logLevel("warn", message, metadata)
}

// LogError envía un log de nivel error al dashboard
func LogError(message string, metadata map[string]interface{}) {
	logLevel("error", message, metadata)
}

func logLevel(level, message string, metadata map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	SendLog("backend", level, message, metadata)
}
