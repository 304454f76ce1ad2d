package config

// TypedConfig provides type-safe access to common configuration values
// It wraps a Manager and provides convenient getter methods
type TypedConfig struct {
	manager *Manager
}

// NewTypedConfig creates a new TypedConfig wrapper around a Manager
func NewTypedConfig(manager *Manager) *TypedConfig {
	return &TypedConfig{
		manager: manager,
	}
}

// AutoMergeTreeConflicts returns the resolve.auto-merge setting: whether
// a switch/update should hand moved-away tree conflicts it raises
// straight to pkg/resolve instead of leaving them for the user.
func (tc *TypedConfig) AutoMergeTreeConflicts() bool {
	entry := tc.manager.Get("resolve.auto-merge")
	if entry == nil {
		return false
	}
	val, err := entry.AsBoolean()
	if err != nil {
		return false
	}
	return val
}

// ShadowedNodePolicy returns the resolve.shadowed-node-policy setting:
// how the tree-conflict receiver should react when AlterFile finds its
// target shadowed by a higher op-depth layer. Defaults to "skip", the
// conservative choice documented in DESIGN.md.
func (tc *TypedConfig) ShadowedNodePolicy() string {
	entry := tc.manager.Get("resolve.shadowed-node-policy")
	if entry == nil {
		return "skip"
	}
	s := entry.AsString()
	if s == "" {
		return "skip"
	}
	return s
}

// IgnoreCase returns whether to ignore case in file names
func (tc *TypedConfig) IgnoreCase() bool {
	entry := tc.manager.Get("core.ignorecase")
	if entry == nil {
		return false
	}
	val, err := entry.AsBoolean()
	if err != nil {
		return false
	}
	return val
}

// ColorUI returns the color UI setting
func (tc *TypedConfig) ColorUI() string {
	entry := tc.manager.Get("color.ui")
	if entry == nil {
		return "auto"
	}
	return entry.AsString()
}

// UseCommitTimes returns the miscellany.use-commit-times setting: stamp
// working files with their last-committed time rather than the time
// they were installed.
func (tc *TypedConfig) UseCommitTimes() bool {
	entry := tc.manager.Get("miscellany.use-commit-times")
	if entry == nil {
		return false
	}
	val, err := entry.AsBoolean()
	if err != nil {
		return false
	}
	return val
}

// GetString returns a configuration value as a string
func (tc *TypedConfig) GetString(key string) string {
	entry := tc.manager.Get(key)
	if entry == nil {
		return ""
	}
	return entry.AsString()
}

// GetInt returns a configuration value as an integer
func (tc *TypedConfig) GetInt(key string) (int, error) {
	entry := tc.manager.Get(key)
	if entry == nil {
		return 0, NewNotFoundError(key, "")
	}
	return entry.AsInt()
}

// GetBool returns a configuration value as a boolean
func (tc *TypedConfig) GetBool(key string) (bool, error) {
	entry := tc.manager.Get(key)
	if entry == nil {
		return false, NewNotFoundError(key, "")
	}
	return entry.AsBoolean()
}

// GetList returns a configuration value as a list of strings
func (tc *TypedConfig) GetList(key string) []string {
	entry := tc.manager.Get(key)
	if entry == nil {
		return []string{}
	}
	return entry.AsList()
}

// GetAll returns all values for a multi-value configuration key
func (tc *TypedConfig) GetAll(key string) []string {
	entries := tc.manager.GetAll(key)
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.AsString())
	}
	return result
}
