package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8081
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "/usr/local/var/jobdex/data"
	}
	if cfg.Storage.SnapshotDir == "" {
		cfg.Storage.SnapshotDir = "/usr/local/var/jobdex/snapshots"
	}
	if cfg.Storage.SnapshotName == "" {
		cfg.Storage.SnapshotName = "job_vector_store"
	}
	if cfg.Embedding.ServiceURL == "" {
		cfg.Embedding.ServiceURL = "http://localhost:8090"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.RegionName == "" {
		cfg.Search.RegionName = "Morocco"
	}
	if cfg.Search.RegionMarkers == nil {
		cfg.Search.RegionMarkers = []string{"morocco", "maroc", "rabat", "casablanca", "tanger", "fes"}
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}
