package config

import "time"

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryForTest(backend, projectID string, historyCapacity int) *Repository {
	return &Repository{
		backend:         backend,
		projectID:       projectID,
		historyCapacity: historyCapacity,
	}
}

func NewContentRepositoryForTest(contentBackend, mongoURI string) *Repository {
	return &Repository{
		contentBackend: contentBackend,
		mongoURI:       mongoURI,
		mongoDatabase:  "tributary",
	}
}

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

func NewSlackForTest(botToken, channel string) *Slack {
	return &Slack{botToken: botToken, channel: channel}
}

func NewNotionForTest(token string) *Notion {
	return &Notion{token: token}
}

func NewFetcherForTest(timeout time.Duration, maxBodySize int64) *Fetcher {
	return &Fetcher{timeout: timeout, maxBodySize: maxBodySize}
}

func NewArchiveForTest(bucket string) *Archive {
	return &Archive{bucket: bucket}
}

func NewSentryForTest(dsn string) *Sentry {
	return &Sentry{dsn: dsn}
}
