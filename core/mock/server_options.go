package mock

type (
	page struct {
		responseKey string
		records     []map[string]any
	}

	exportFile struct {
		name string
		body []byte
	}

	serverConfig struct {
		accessToken    string
		jobID          string
		jobStates      []string
		failureMessage string
		pages          map[string][]page
		files          []exportFile
		failFirst      int
		retryAfter     int
	}
)

type ServerOption func(*serverConfig)

// WithAccessToken sets the token returned by the auth endpoint.
func WithAccessToken(token string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.accessToken = token
	}
}

// WithEvents scripts a sync endpoint path with one page per call, chained
// through X-Next. responseKey wraps each page in an object key; empty means
// bare arrays.
func WithEvents(path, responseKey string, pages ...[]map[string]any) ServerOption {
	return func(cfg *serverConfig) {
		scripted := make([]page, len(pages))
		for i, records := range pages {
			scripted[i] = page{responseKey: responseKey, records: records}
		}
		cfg.pages[path] = scripted
	}
}

// WithJobID sets the identifier returned on async submission.
func WithJobID(id string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.jobID = id
	}
}

// WithJobStates scripts the status sequence returned by successive polls.
// The last state repeats. "successful" serves the configured export files.
func WithJobStates(states ...string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.jobStates = states
	}
}

// WithFailureMessage sets the diagnostic served with a "failed" status.
func WithFailureMessage(message string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.failureMessage = message
	}
}

// WithExportFile adds a downloadable export file served under /files/<name>
// and referenced from the ready poll response.
func WithExportFile(name string, body []byte) ServerOption {
	return func(cfg *serverConfig) {
		cfg.files = append(cfg.files, exportFile{name: name, body: body})
	}
}

// WithFailFirst makes the first n requests fail transiently.
func WithFailFirst(n int) ServerOption {
	return func(cfg *serverConfig) {
		cfg.failFirst = n
	}
}

// WithRetryAfter turns transient failures into 429 responses carrying the
// given Retry-After seconds hint.
func WithRetryAfter(seconds int) ServerOption {
	return func(cfg *serverConfig) {
		cfg.retryAfter = seconds
	}
}
