package cfg

type Cfg struct {
	// Content repository
	DBPath   string
	Database string
	SeedFile string

	// Sitemap configuration
	SitesFile      string
	OutputDir      string
	BaseURL        string
	ConfigItemPath string
	XmlnsTpl       string
	XmlnsImg       string
	Production     bool
	GenerateRobots bool

	// Application configuration
	Port            string
	RefreshInterval int
	RunOnce         bool
	APIAccessKey    string
	UserAgent       string
	PingTimeout     int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
