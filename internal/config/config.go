package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nextloc/nextloc-go/internal/llm"
)

// Config holds the application configuration
type Config struct {
	Port        string
	DataDir     string
	StorageRoot string
	DBPath      string
	JWTSecret   string

	DefaultCity     string
	DefaultModel    string
	DefaultPlatform llm.Platform
	PromptType      string

	MemoryLens   int
	ExploreNum   int
	Khop         int
	MaxNeighbors int

	CacheSize int
}

// Load reads configuration from the environment, with a .env file as an
// optional source. Missing values fall back to defaults.
func Load() *Config {
	// Absence of a .env file is fine; the environment still applies.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", ":8080"),
		DataDir:     getEnv("DATA_DIR", "./data/processed"),
		StorageRoot: getEnv("STORAGE_ROOT", "./data/storage"),
		DBPath:      getEnv("DB_PATH", "./data/storage/predictions.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		DefaultCity:     getEnv("DEFAULT_CITY", "Shanghai"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "qwen2.5-7b"),
		DefaultPlatform: llm.Platform(getEnv("DEFAULT_PLATFORM", string(llm.PlatformSiliconFlow))),
		PromptType:      getEnv("PROMPT_TYPE", "agent_move_v6"),

		MemoryLens:   getEnvInt("MEMORY_LENS", 15),
		ExploreNum:   getEnvInt("EXPLORE_NUM", 5),
		Khop:         getEnvInt("KHOP", 1),
		MaxNeighbors: getEnvInt("MAX_NEIGHBORS", 10),

		CacheSize: getEnvInt("PREDICTION_CACHE_SIZE", 256),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
