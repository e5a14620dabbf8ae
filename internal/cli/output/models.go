package output

// KeyValue is the result of config get and config set.
type KeyValue struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Profile string `json:"profile,omitempty"`
	Plugin  string `json:"plugin,omitempty"`
}

type KeySummary struct {
	Name    string `json:"name"`
	Scope   string `json:"scope"`
	Kind    string `json:"kind"`
	Default any    `json:"default"`
}

type KeyList struct {
	Keys  []KeySummary `json:"keys"`
	Total int          `json:"total"`
}

type ProfileSummary struct {
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Effective bool   `json:"effective"`
}

type ProfileList struct {
	Profiles []ProfileSummary `json:"profiles"`
	Override string           `json:"override,omitempty"`
	Total    int              `json:"total"`
}

type LayoutSummary struct {
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Windows   int    `json:"windows"`
	Terminals int    `json:"terminals"`
	Records   int    `json:"records"`
}

type LayoutList struct {
	Layouts []LayoutSummary `json:"layouts"`
	Total   int             `json:"total"`
}

// LayoutCheck reports whether a stored layout rebuilds and flattens back to
// the same shape.
type LayoutCheck struct {
	Name       string   `json:"name"`
	OK         bool     `json:"ok"`
	Windows    int      `json:"windows"`
	Terminals  int      `json:"terminals"`
	Unresolved []string `json:"unresolved,omitempty"`
	Passes     int      `json:"passes,omitempty"`
	Problems   []string `json:"problems,omitempty"`
}

type LayoutExport struct {
	Name    string `json:"name"`
	Format  string `json:"format"`
	Content string `json:"content"`
	Path    string `json:"path,omitempty"`
}

type PluginSettings struct {
	Name     string         `json:"name"`
	Enabled  bool           `json:"enabled"`
	Settings map[string]any `json:"settings"`
}

type PluginList struct {
	Plugins []PluginSettings `json:"plugins"`
	Total   int              `json:"total"`
}

type VersionInfo struct {
	App            string `json:"app"`
	Version        string `json:"version"`
	ConfigSchema   string `json:"config_schema"`
	EnvelopeSchema string `json:"envelope_schema"`
}
