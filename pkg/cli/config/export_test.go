package config

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(configPath, baseURL, apiToken string) *App {
	return &App{configPath: configPath, baseURL: baseURL, apiToken: apiToken}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, redisURL, projectID string) *Repository {
	return &Repository{backend: backend, redisURL: redisURL, projectID: projectID}
}

// NewZendeskForTest creates a Zendesk config for testing purposes
func NewZendeskForTest(url, email, token string) *Zendesk {
	return &Zendesk{url: url, email: email, token: token}
}

// NewAlertForTest creates an Alert config for testing purposes
func NewAlertForTest(botToken, channel string) *Alert {
	return &Alert{botToken: botToken, channel: channel}
}

// NewGoogleForTest creates a Google config for testing purposes
func NewGoogleForTest(clientID, clientSecret string) *Google {
	return &Google{clientID: clientID, clientSecret: clientSecret}
}
