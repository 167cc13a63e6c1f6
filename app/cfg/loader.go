package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Content repository
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./data/content.db" description:"Path to the SQLite content database"`
	Database string `long:"database" env:"SITEMAP_DATABASE" default:"web" description:"Name of the content database sitemaps are built from"`
	SeedFile string `long:"seed-file" env:"SEED_FILE" description:"YAML content tree imported into the database at startup (optional)"`

	// Sitemap configuration
	SitesFile      string `long:"sites-file" env:"SITES_FILE" default:"./sitemap.yml" description:"YAML file with per-site sitemap settings"`
	OutputDir      string `long:"output-dir" env:"OUTPUT_DIR" default:"./public" description:"Directory sitemap and robots files are written to"`
	BaseURL        string `long:"base-url" env:"BASE_URL" default:"http://localhost" description:"Base URL used for sites without server URL or hostname"`
	ConfigItemPath string `long:"config-item-path" env:"SITEMAP_CONFIG_ITEM" default:"/sitecore/system/Modules/Sitemap XML/Sitemap configuration" description:"Path of the sitemap configuration item"`
	XmlnsTpl       string `long:"xmlns-tpl" env:"XMLNS_TPL" default:"http://www.sitemaps.org/schemas/sitemap/0.9" description:"Sitemap XML namespace"`
	XmlnsImg       string `long:"xmlns-img" env:"XMLNS_IMG" default:"http://www.google.com/schemas/sitemap-image/1.1" description:"Image sitemap XML namespace"`
	Production     string `long:"production" env:"PRODUCTION_ENVIRONMENT" default:"false" optional:"yes" optional-value:"true" description:"Submit sitemaps to search engines (true or 1)"`
	GenerateRobots string `long:"generate-robots" env:"GENERATE_ROBOTS_TXT" default:"false" optional:"yes" optional-value:"true" description:"Register sitemaps in robots.txt (true or 1)"`

	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"3600" description:"Sitemap refresh interval in seconds (0 disables)"`
	RunOnce         bool   `long:"once" env:"RUN_ONCE" description:"Refresh sitemaps once and exit"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	UserAgent       string `long:"user-agent" env:"USER_AGENT" default:"Sitemap XML/1.0" description:"User agent string for search engine pings"`
	PingTimeout     int    `long:"ping-timeout" env:"PING_TIMEOUT" default:"30" description:"Search engine ping timeout in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	// .env is optional
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		Database:        raw.Database,
		SeedFile:        raw.SeedFile,
		SitesFile:       raw.SitesFile,
		OutputDir:       raw.OutputDir,
		BaseURL:         raw.BaseURL,
		ConfigItemPath:  raw.ConfigItemPath,
		XmlnsTpl:        raw.XmlnsTpl,
		XmlnsImg:        raw.XmlnsImg,
		Production:      ParseBool(raw.Production),
		GenerateRobots:  ParseBool(raw.GenerateRobots),
		Port:            raw.Port,
		RefreshInterval: raw.RefreshInterval,
		RunOnce:         raw.RunOnce,
		APIAccessKey:    raw.APIAccessKey,
		UserAgent:       raw.UserAgent,
		PingTimeout:     raw.PingTimeout,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// ParseBool accepts "true" and "1" in any case, everything else is false.
func ParseBool(value string) bool {
	value = strings.TrimSpace(value)
	return strings.EqualFold(value, "true") || value == "1"
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
