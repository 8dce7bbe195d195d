package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Backend BackendConfig
	Storage StorageConfig
	Sync    SyncConfig
	JWT     JWTConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP local (consumido por el dashboard).
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig configuración del servicio de datos autoritativo remoto.
type BackendConfig struct {
	BaseURL        string // ej. https://api.inventario.example.com
	APIKey         string // credencial de servicio para el backend
	TimeoutSeconds int    // timeout por petición
}

// Timeout devuelve el timeout de red como time.Duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig configuración del almacenamiento local durable (SQLite).
// Path vacío = ./inventario-offline.db en el directorio de trabajo.
type StorageConfig struct {
	Path string
}

// SyncConfig parámetros del ciclo de sincronización.
type SyncConfig struct {
	IntervalSeconds       int // periodo del ciclo automático
	ProbeIntervalSeconds  int // periodo del sondeo de conectividad
	MaxActionAttempts     int // reintentos de una acción encolada antes de declararla perdida
	PredictionHorizonDays int
}

// Interval devuelve el periodo del ciclo como time.Duration.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ProbeInterval devuelve el periodo del sondeo como time.Duration.
func (c SyncConfig) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSeconds) * time.Second
}

// JWTConfig configuración de la sesión del dashboard.
type JWTConfig struct {
	Secret     string
	AccessKey  string // clave compartida que el dashboard intercambia por un token
	Expiration int    // minutos
	Issuer     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BACKEND_BASE_URL, STORAGE_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// Bind de variables de entorno (Viper las lee automáticamente si AutomaticEnv está activo)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "inventario-offline"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "127.0.0.1"),
			Port: getInt(v, "HTTP_PORT", 8090),
		},
		Backend: BackendConfig{
			BaseURL:        getString(v, "BACKEND_BASE_URL", "http://localhost:8080"),
			APIKey:         getString(v, "BACKEND_API_KEY", ""),
			TimeoutSeconds: getInt(v, "BACKEND_TIMEOUT_SECONDS", 10),
		},
		Storage: StorageConfig{
			Path: getString(v, "STORAGE_PATH", "./inventario-offline.db"),
		},
		Sync: SyncConfig{
			IntervalSeconds:       getInt(v, "SYNC_INTERVAL_SECONDS", 30),
			ProbeIntervalSeconds:  getInt(v, "SYNC_PROBE_INTERVAL_SECONDS", 10),
			MaxActionAttempts:     getInt(v, "SYNC_MAX_ACTION_ATTEMPTS", 5),
			PredictionHorizonDays: getInt(v, "PREDICTION_HORIZON_DAYS", 7),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			AccessKey:  getString(v, "DASHBOARD_ACCESS_KEY", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-offline"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
