package core

// CompilerOptions is the normalized build configuration consumed by the
// plugin assembler and owned by the Compiler afterwards.
type CompilerOptions struct {
	// Context is the project root. Entries and the dev server output
	// directory are resolved against it.
	Context string
	// Entry maps a chunk name to a request relative to Context.
	Entry     map[string]string
	Module    ModuleOptions
	Target    Target
	Devtool   Devtool
	Output    OutputOptions
	Externals map[string]string

	// Plugins are caller-supplied plugins declared in configuration. They
	// are moved into the assembled list and cleared here.
	Plugins []Plugin
}

// ModuleOptions groups module level settings.
type ModuleOptions struct {
	Parser *ParserOptions
}

// ParserOptions holds per module type parser settings.
type ParserOptions struct {
	Asset *AssetParserOptions
}

// AssetParserOptions configures how asset modules are turned into code.
type AssetParserOptions struct {
	DataURLCondition *DataURLCondition
}

// DataURLCondition inlines assets whose size is at most MaxSize bytes.
type DataURLCondition struct {
	MaxSize int
}

// OutputOptions describes where and how assets are emitted.
type OutputOptions struct {
	Path       string
	UniqueName string
	PublicPath string
}

// AssetParseOptions returns options.Module.Parser.Asset, or nil when any
// level is unset.
func (o *CompilerOptions) AssetParseOptions() *AssetParserOptions {
	if o.Module.Parser == nil {
		return nil
	}
	return o.Module.Parser.Asset
}
