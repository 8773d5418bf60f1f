package logger

import (
	"time"
)

// LogRequest logs a finished HTTP exchange at a level matching its status
func LogRequest(log Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		log.WarnWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("HTTP request client error", fields)
	default:
		log.DebugWithFields("HTTP request completed", fields)
	}
}

// LogReplay logs the outcome of a single replay record
func LogReplay(log Logger, battleID, outcome string, err error) {
	l := log.WithFields(map[string]interface{}{
		"battle_id": battleID,
		"outcome":   outcome,
	})

	if err != nil {
		l.WithError(err).Error("Replay download failed")
		return
	}
	l.Debug("Replay processed")
}

// LogPageProgress logs how far the listing walk has come
func LogPageProgress(log Logger, format string, page, listed int) {
	log.InfoWithFields("Listing page processed", map[string]interface{}{
		"format": format,
		"page":   page,
		"listed": listed,
	})
}
