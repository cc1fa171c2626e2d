package config

// ServerConfig contains the optional metrics listener
type ServerConfig struct {
	MetricsAddr string `yaml:"metricsAddr" validate:"omitempty,hostname_port"`
}

// LoggingConfig selects the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// GTFSConfig contains GTFS static feed configuration
type GTFSConfig struct {
	StaticPath string `yaml:"staticPath" validate:"omitempty"`
	AgencyID   string `yaml:"agencyID" validate:"omitempty"`
	Timezone   string `yaml:"timezone" validate:"omitempty,timezone"`
	CachePath  string `yaml:"cachePath" validate:"omitempty"`
}

// GTFSRTConfig contains GTFS-Realtime trip updates configuration
type GTFSRTConfig struct {
	TripUpdatesURL string `yaml:"tripUpdatesURL" validate:"omitempty"`
	ReadIntervalMS int    `yaml:"readIntervalMS" validate:"gte=0"`
	TimeoutMS      int    `yaml:"timeoutMS" validate:"gte=0"`
}

// Feed represents a single GTFS feed configuration
type Feed struct {
	Name   string       `yaml:"name" validate:"required"`
	GTFS   GTFSConfig   `yaml:"gtfs" validate:"required"`
	GTFSRT GTFSRTConfig `yaml:"gtfsrt"`
}

// SearchConfig contains the defaults for every path search
type SearchConfig struct {
	Heuristic              string   `yaml:"heuristic" validate:"omitempty,oneof=euclidean trivial"`
	MaxTransfers           int      `yaml:"maxTransfers" validate:"gte=0"`
	MaxWalkDistance        float64  `yaml:"maxWalkDistance" validate:"gte=0"`
	MaxWeight              float64  `yaml:"maxWeight" validate:"gte=0"`
	SearchWindowMinutes    int      `yaml:"searchWindowMinutes" validate:"gte=0"`
	MaxComputationTimeMS   int      `yaml:"maxComputationTimeMS" validate:"gte=0"`
	WalkSpeed              float64  `yaml:"walkSpeed" validate:"gte=0"`
	WalkReluctance         float64  `yaml:"walkReluctance" validate:"gte=0"`
	WaitReluctance         float64  `yaml:"waitReluctance" validate:"gte=0"`
	BoardCost              float64  `yaml:"boardCost" validate:"gte=0"`
	TransferCost           float64  `yaml:"transferCost" validate:"gte=0"`
	MinTransferTimeSeconds int      `yaml:"minTransferTimeSeconds" validate:"gte=0"`
	TransferRadius         float64  `yaml:"transferRadius" validate:"gte=0"`
	MaxTransitSpeed        float64  `yaml:"maxTransitSpeed" validate:"gte=0"`
	Modes                  []string `yaml:"modes" validate:"dive,oneof=WALK TRANSIT RAIL BUS TRAM SUBWAY FERRY"`
	Concurrency            int      `yaml:"concurrency" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Feeds   []Feed        `yaml:"feeds" validate:"dive"`
	Search  SearchConfig  `yaml:"search"`
}
