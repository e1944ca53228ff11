package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/foodsearch/data/foods.db"
	}
	if cfg.Providers.TimeoutMS == 0 {
		cfg.Providers.TimeoutMS = 2500
	}
	if cfg.Providers.Generic.BaseURL == "" {
		cfg.Providers.Generic.BaseURL = "https://api.opennutrition.dev"
	}
	if cfg.Providers.Branded.BaseURL == "" {
		cfg.Providers.Branded.BaseURL = "https://world.brandfoods.dev"
	}
	if cfg.Providers.Branded.Endpoints == nil {
		cfg.Providers.Branded.Endpoints = map[string]string{
			"GB": "https://gb.brandfoods.dev",
			"US": "https://us.brandfoods.dev",
		}
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.DefaultCountry == "" {
		cfg.Search.DefaultCountry = "GB"
	}
	if cfg.Search.BrandedFallbackThreshold == 0 {
		cfg.Search.BrandedFallbackThreshold = 5
	}
}
