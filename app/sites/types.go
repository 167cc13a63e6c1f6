package sites

type SiteConfig struct {
	Name              string `yaml:"name"`
	Filename          string `yaml:"filename"`
	ImageFilename     string `yaml:"image_filename"`
	StartPath         string `yaml:"start_path"`
	ExtraPath         string `yaml:"extra_path"`
	MediaPath         string `yaml:"media_path"`
	ComponentsPath    string `yaml:"components_path"`
	ServerURL         string `yaml:"server_url"`
	Hostname          string `yaml:"hostname"`
	Language          string `yaml:"language"`
	LanguageEmbedding bool   `yaml:"language_embedding"`
	AddExtension      bool   `yaml:"add_extension"`
	Gzip              bool   `yaml:"gzip"`
}

type fileConfig struct {
	Sites []SiteConfig `yaml:"sites"`
}

// Settings are the run-wide values shared by every site.
type Settings struct {
	EnabledTemplates []string
	ExcludeItems     []string
	ExcludeQuery     string
	SearchEngines    []string // ids of search engine items
	XmlnsTpl         string
	XmlnsImg         string
	Production       bool
	GenerateRobots   bool
	ConfigItemPath   string
	ConfigItemFound  bool
}

// Snapshot is the configuration of one orchestration run. It is built once by
// Load and only read afterwards.
type Snapshot struct {
	Sites    []SiteConfig
	Settings Settings
}

type Options struct {
	SitesFile      string
	ConfigItemPath string
	XmlnsTpl       string
	XmlnsImg       string
	Production     bool
	GenerateRobots bool
}

// Names of the fields on the sitemap configuration item.
const (
	FieldEnabledTemplates = "Enabled templates"
	FieldExcludeItems     = "Exclude items"
	FieldExcludeByQuery   = "Exclude by query"
	FieldSearchEngines    = "Search engines"
	FieldHTTPRequest      = "HttpRequestString"
)
