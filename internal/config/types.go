package config

// PageKind identifies which flavour of conversion page a PageConfig describes.
type PageKind string

const (
	PageKindPrefix PageKind = "prefix"
	PageKindUnit   PageKind = "unit"
)

// DetailField names the backend info field shown next to the symbol.
type DetailField string

const (
	DetailMagnification DetailField = "magnification"
	DetailDimension     DetailField = "dimension"
)

// Config is the top-level circles configuration, corresponding to .circles.yml.
type Config struct {
	Server      ServerConfig  `yaml:"server" koanf:"server"`
	Backend     BackendConfig `yaml:"backend" koanf:"backend"`
	Log         LogConfig     `yaml:"log" koanf:"log"`
	DBPath      string        `yaml:"db_path" koanf:"db_path"`
	DefaultPage string        `yaml:"default_page" koanf:"default_page"`
	Pages       []PageConfig  `yaml:"pages" koanf:"pages"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowAll       bool     `yaml:"allow_all" koanf:"allow_all"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// BackendConfig holds settings shared by every backend client.
type BackendConfig struct {
	TimeoutSeconds    int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	JSON  bool   `yaml:"json" koanf:"json"`
	Level string `yaml:"level" koanf:"level"`
}

// PageConfig describes one conversion page: its circles, the identifier
// table and the backend it talks to.
type PageConfig struct {
	ID                 string         `yaml:"id" koanf:"id"`
	Kind               PageKind       `yaml:"kind" koanf:"kind"`
	Title              string         `yaml:"title" koanf:"title"`
	BaseURL            string         `yaml:"base_url" koanf:"base_url"`
	PathPrefix         string         `yaml:"path_prefix" koanf:"path_prefix"`
	Detail             DetailField    `yaml:"detail" koanf:"detail"`
	ValidateNumeric    bool           `yaml:"validate_numeric" koanf:"validate_numeric"`
	IncludeErrorDetail bool           `yaml:"include_error_detail" koanf:"include_error_detail"`
	NavigateTo         string         `yaml:"navigate_to" koanf:"navigate_to"`
	NavigateLabel      string         `yaml:"navigate_label" koanf:"navigate_label"`
	Messages           MessagesConfig `yaml:"messages" koanf:"messages"`
	Units              []UnitConfig   `yaml:"units" koanf:"units"`
}

// UnitConfig is one circle. An empty ID marks a unit the backend does not know.
type UnitConfig struct {
	Label string `yaml:"label" koanf:"label"`
	Name  string `yaml:"name" koanf:"name"`
	ID    string `yaml:"id,omitempty" koanf:"id"`
}

// MessagesConfig holds the fixed user-facing strings of a page.
// Empty fields fall back to the defaults for the page kind.
type MessagesConfig struct {
	NoDescription          string `yaml:"no_description,omitempty" koanf:"no_description"`
	DescriptionUnavailable string `yaml:"description_unavailable,omitempty" koanf:"description_unavailable"`
	NoConversion           string `yaml:"no_conversion,omitempty" koanf:"no_conversion"`
	ConversionFailed       string `yaml:"conversion_failed,omitempty" koanf:"conversion_failed"`
	InvalidNumber          string `yaml:"invalid_number,omitempty" koanf:"invalid_number"`
}
