package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	Environment   string
	Port          string
	BaseUrl       string
	AllowedOrigin string
	CatalogFile   string

	// Authentication
	JWTSecret string
	TokenTTL  int

	// Background maintenance
	WorkerCount         int
	MaintenanceInterval int

	// Feed fetching
	FetchTimeout int
	UserAgent    string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) IsProduction() bool {
	return c.Environment == "production"
}
