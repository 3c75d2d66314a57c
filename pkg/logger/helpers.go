package logger

// LogRequest logs HTTP request information
func LogRequest(method, url string, statusCode int, durationMS float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMS,
	}

	if statusCode >= 200 && statusCode < 300 {
		GetLogger().InfoWithFields("HTTP request completed", fields)
	} else if statusCode >= 400 && statusCode < 500 {
		GetLogger().WarnWithFields("HTTP request client error", fields)
	} else if statusCode >= 500 {
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	}
}

// LogSearch logs one search round trip against an upstream scraping API
func LogSearch(mode, subject, cursor string, results int, err error) {
	fields := map[string]interface{}{
		"mode":    mode,
		"subject": subject,
		"cursor":  cursor,
		"results": results,
	}

	log := GetLogger().WithFields(fields)
	if err != nil {
		log.WithError(err).Error("Search failed")
	} else {
		log.Info("Search completed")
	}
}

// LogMediaResolve logs image-proxy resolution outcomes through the caller's
// logger
func LogMediaResolve(l Logger, sourceURL string, cacheHit bool, err error) {
	fields := map[string]interface{}{
		"source_url": sourceURL,
		"cache_hit":  cacheHit,
	}

	log := l.WithFields(fields)
	if err != nil {
		log.WithError(err).Warn("Media resolution failed")
	} else {
		log.Debug("Media resolved")
	}
}

// LogRateLimit logs rate limiting events
func LogRateLimit(endpoint string, retryAfter int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":    endpoint,
		"retry_after": retryAfter,
		"action":      "rate_limited",
	}).Warn("Rate limit reached, backing off")
}
