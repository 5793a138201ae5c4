package config

// Default backends of the two built-in pages.
const (
	DefaultPrefixBaseURL = "http://localhost:3000/p"
	DefaultUnitBaseURL   = "http://seena.kro.kr:3000"
)

// prefixUnits are the circles of the prefix page. 펨토 and 페타 are drawn on
// the page but the backend has no entry for them.
var prefixUnits = []UnitConfig{
	{Label: "f", Name: "펨토"},
	{Label: "p", Name: "피코", ID: "pico"},
	{Label: "n", Name: "나노", ID: "nano"},
	{Label: "μ", Name: "마이크로", ID: "micro"},
	{Label: "m", Name: "밀리", ID: "milli"},
	{Label: "c", Name: "센티", ID: "centi"},
	{Label: "d", Name: "데시", ID: "deci"},
	{Label: "da", Name: "데카", ID: "deca"},
	{Label: "h", Name: "헥토", ID: "hecto"},
	{Label: "k", Name: "킬로", ID: "kilo"},
	{Label: "M", Name: "메가", ID: "mega"},
	{Label: "G", Name: "기가", ID: "giga"},
	{Label: "T", Name: "테라", ID: "tera"},
	{Label: "P", Name: "페타"},
}

var unitUnits = []UnitConfig{
	{Label: "°C", Name: "섭씨", ID: "celsiusDegree"},
	{Label: "°F", Name: "화씨", ID: "fahrenheitDegree"},
	{Label: "in", Name: "인치", ID: "inch"},
	{Label: "ft", Name: "피트", ID: "ft"},
	{Label: "yd", Name: "야드"},
	{Label: "m", Name: "미터", ID: "meter"},
	{Label: "lb", Name: "파운드", ID: "lb"},
	{Label: "kg", Name: "킬로그램", ID: "kg"},
	{Label: "mi", Name: "마일", ID: "mile"},
	{Label: "km", Name: "거리", ID: "km"},
}

// PrefixPage returns the built-in metric prefix page.
func PrefixPage() PageConfig {
	return PageConfig{
		ID:            "prefix",
		Kind:          PageKindPrefix,
		Title:         "접두어 변환",
		BaseURL:       DefaultPrefixBaseURL,
		PathPrefix:    "/p",
		Detail:        DetailMagnification,
		NavigateTo:    "/pages/unit",
		NavigateLabel: "단위",
		Messages:      DefaultMessages(PageKindPrefix),
		Units:         append([]UnitConfig(nil), prefixUnits...),
	}
}

// UnitPage returns the built-in measurement unit page.
func UnitPage() PageConfig {
	return PageConfig{
		ID:                 "unit",
		Kind:               PageKindUnit,
		Title:              "단위 변환",
		BaseURL:            DefaultUnitBaseURL,
		Detail:             DetailDimension,
		ValidateNumeric:    true,
		IncludeErrorDetail: true,
		NavigateTo:         "/pages/prefix",
		NavigateLabel:      "접두어",
		Messages:           DefaultMessages(PageKindUnit),
		Units:              append([]UnitConfig(nil), unitUnits...),
	}
}

// DefaultMessages returns the stock wording for a page kind.
func DefaultMessages(kind PageKind) MessagesConfig {
	if kind == PageKindPrefix {
		return MessagesConfig{
			NoDescription:          "해당 접두어 설명 데이터가 없습니다.",
			DescriptionUnavailable: "설명 데이터를 불러올 수 없습니다.",
			NoConversion:           "해당 접두어 변환 API가 없습니다.",
			ConversionFailed:       "변환 실패: 서버 오류",
			InvalidNumber:          "유효한 숫자를 입력해주세요.",
		}
	}
	return MessagesConfig{
		NoDescription:          "해당 단위 설명 데이터가 없습니다.",
		DescriptionUnavailable: "설명 데이터를 불러올 수 없습니다.",
		NoConversion:           "해당 단위 변환 API가 없습니다.",
		ConversionFailed:       "변환 중 오류 발생",
		InvalidNumber:          "유효한 숫자를 입력해주세요.",
	}
}

// DefaultConfig returns a Config with both built-in pages.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Backend: BackendConfig{
			TimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
		DBPath:      "circles.db",
		DefaultPage: "prefix",
		Pages:       []PageConfig{PrefixPage(), UnitPage()},
	}
}

// withMessageDefaults fills empty message fields from the kind defaults.
func withMessageDefaults(kind PageKind, m MessagesConfig) MessagesConfig {
	d := DefaultMessages(kind)
	if m.NoDescription == "" {
		m.NoDescription = d.NoDescription
	}
	if m.DescriptionUnavailable == "" {
		m.DescriptionUnavailable = d.DescriptionUnavailable
	}
	if m.NoConversion == "" {
		m.NoConversion = d.NoConversion
	}
	if m.ConversionFailed == "" {
		m.ConversionFailed = d.ConversionFailed
	}
	if m.InvalidNumber == "" {
		m.InvalidNumber = d.InvalidNumber
	}
	return m
}
