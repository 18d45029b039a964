package app

import (
	"time"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/utils"
)

type Config struct {
	JWTSecretKey string
	Environment  string
	Version      string

	// StreakLocation is the timezone used to bucket learning activity into days.
	StreakLocation *time.Location

	PathViewCacheTTL   time.Duration
	LessonGenerateWait time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	environment := utils.GetEnv("APP_ENV", "development", log)
	version := utils.GetEnv("APP_VERSION", "dev", log)

	streakTZ := utils.GetEnv("STREAK_TIMEZONE", "UTC", log)
	loc, err := time.LoadLocation(streakTZ)
	if err != nil {
		log.Warn("invalid STREAK_TIMEZONE, falling back to UTC", "value", streakTZ, "error", err)
		loc = time.UTC
	}

	cacheTTLSeconds := utils.GetEnvAsInt("PATH_VIEW_CACHE_TTL_SECONDS", 300, log)
	generateWaitSeconds := utils.GetEnvAsInt("LESSON_GENERATE_WAIT_SECONDS", 30, log)

	return Config{
		JWTSecretKey:       jwtSecretKey,
		Environment:        environment,
		Version:            version,
		StreakLocation:     loc,
		PathViewCacheTTL:   time.Duration(cacheTTLSeconds) * time.Second,
		LessonGenerateWait: time.Duration(generateWaitSeconds) * time.Second,
	}
}
