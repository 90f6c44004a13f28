package config

// this holds the resolved configuration values from CLI
var (
	UpstreamURL     string // base URL of the python data service
	UpstreamTimeout string // http client timeout for data service requests
	WaitForServices string // duration to wait for the data service to be ready
	LogLevel        string // sets the log level (zap log level values)
	LogFormat       string // text vs json
	ServerAddr      string // listen addr for the HTTP server
	AllowedOrigin   string // origin allowed by CORS
	ChunkCount      int    // number of telemetry chunks per race
)
