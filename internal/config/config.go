// Package config provides configuration loading and management.
package config

// EsbuildConfig holds script transpiler settings.
type EsbuildConfig struct {
	Target          string            `mapstructure:"target" yaml:"target,omitempty" json:"target,omitempty"`
	JSX             string            `mapstructure:"jsx" yaml:"jsx,omitempty" json:"jsx,omitempty"`
	JSXFactory      string            `mapstructure:"jsxFactory" yaml:"jsxFactory,omitempty" json:"jsxFactory,omitempty"`
	JSXFragment     string            `mapstructure:"jsxFragment" yaml:"jsxFragment,omitempty" json:"jsxFragment,omitempty"`
	JSXImportSource string            `mapstructure:"jsxImportSource" yaml:"jsxImportSource,omitempty" json:"jsxImportSource,omitempty"`
	Minify          *bool             `mapstructure:"minify" yaml:"minify,omitempty" json:"minify,omitempty"`
	KeepNames       *bool             `mapstructure:"keepNames" yaml:"keepNames,omitempty" json:"keepNames,omitempty"`
	Define          map[string]string `mapstructure:"define" yaml:"define,omitempty" json:"define,omitempty"`

	// Sourcemap is "", "inline" or "linked". "true" means linked.
	Sourcemap string `mapstructure:"sourcemap" yaml:"sourcemap,omitempty" json:"sourcemap,omitempty"`
}

// PostcssConfig toggles the CSS post-processing stages.
type PostcssConfig struct {
	Enabled      *bool  `mapstructure:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Nested       *bool  `mapstructure:"nested" yaml:"nested,omitempty" json:"nested,omitempty"`
	Autoprefixer *bool  `mapstructure:"autoprefixer" yaml:"autoprefixer,omitempty" json:"autoprefixer,omitempty"`
	Minify       *bool  `mapstructure:"minify" yaml:"minify,omitempty" json:"minify,omitempty"`
	Targets      string `mapstructure:"targets" yaml:"targets,omitempty" json:"targets,omitempty"`
}

// SassConfig configures the sass compiler.
type SassConfig struct {
	Enabled      *bool    `mapstructure:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Binary       string   `mapstructure:"binary" yaml:"binary,omitempty" json:"binary,omitempty"`
	IncludePaths []string `mapstructure:"includePaths" yaml:"includePaths,omitempty" json:"includePaths,omitempty"`
}

// VueConfig configures component handling.
type VueConfig struct {
	// Transform enables typed-component transformation. Default: true.
	Transform *bool `mapstructure:"transform" yaml:"transform,omitempty" json:"transform,omitempty"`
}

// TypeScriptConfig configures declaration generation.
type TypeScriptConfig struct {
	CompilerOptions map[string]any `mapstructure:"compilerOptions" yaml:"compilerOptions,omitempty" json:"compilerOptions,omitempty"`

	// Tsc and VueTsc are explicit compiler paths.
	Tsc    string `mapstructure:"tsc" yaml:"tsc,omitempty" json:"tsc,omitempty"`
	VueTsc string `mapstructure:"vueTsc" yaml:"vueTsc,omitempty" json:"vueTsc,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty" json:"timestamps,omitempty"`
}

// Config is one layer of mkdist configuration: a config file, the
// environment or the command line. Unset fields are zero or nil.
type Config struct {
	SrcDir  string   `mapstructure:"srcDir" yaml:"srcDir,omitempty" json:"srcDir,omitempty"`
	DistDir string   `mapstructure:"distDir" yaml:"distDir,omitempty" json:"distDir,omitempty"`
	Pattern []string `mapstructure:"pattern" yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Format is "esm" or "cjs".
	Format string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"`
	Ext    string `mapstructure:"ext" yaml:"ext,omitempty" json:"ext,omitempty"`

	Declaration                      *bool  `mapstructure:"declaration" yaml:"declaration,omitempty" json:"declaration,omitempty"`
	DeclarationExt                   string `mapstructure:"declarationExt" yaml:"declarationExt,omitempty" json:"declarationExt,omitempty"`
	DeclarationMap                   *bool  `mapstructure:"declarationMap" yaml:"declarationMap,omitempty" json:"declarationMap,omitempty"`
	AddRelativeDeclarationExtensions *bool  `mapstructure:"addRelativeDeclarationExtensions" yaml:"addRelativeDeclarationExtensions,omitempty" json:"addRelativeDeclarationExtensions,omitempty"`

	CleanDist *bool `mapstructure:"cleanDist" yaml:"cleanDist,omitempty" json:"cleanDist,omitempty"`

	// Loaders selects and orders the transform units.
	Loaders []string `mapstructure:"loaders" yaml:"loaders,omitempty" json:"loaders,omitempty"`

	// Alias maps specifier prefixes to directories relative to srcDir.
	Alias map[string]string `mapstructure:"alias" yaml:"alias,omitempty" json:"alias,omitempty"`

	Concurrency int `mapstructure:"concurrency" yaml:"concurrency,omitempty" json:"concurrency,omitempty"`

	Esbuild    EsbuildConfig    `mapstructure:"esbuild" yaml:"esbuild,omitempty" json:"esbuild,omitempty"`
	Postcss    PostcssConfig    `mapstructure:"postcss" yaml:"postcss,omitempty" json:"postcss,omitempty"`
	Sass       SassConfig       `mapstructure:"sass" yaml:"sass,omitempty" json:"sass,omitempty"`
	Vue        VueConfig        `mapstructure:"vue" yaml:"vue,omitempty" json:"vue,omitempty"`
	TypeScript TypeScriptConfig `mapstructure:"typescript" yaml:"typescript,omitempty" json:"typescript,omitempty"`

	Log LogConfig `mapstructure:"log" yaml:"log,omitempty" json:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		SrcDir:         "src",
		DistDir:        "dist",
		Pattern:        []string{"**"},
		Format:         "esm",
		DeclarationExt: "infer",
		Declaration:    BoolPtr(false),
		DeclarationMap: BoolPtr(false),
		CleanDist:      BoolPtr(true),
		Concurrency:    16,

		AddRelativeDeclarationExtensions: BoolPtr(false),

		Esbuild: EsbuildConfig{
			Minify:    BoolPtr(false),
			KeepNames: BoolPtr(false),
		},
		Postcss: PostcssConfig{
			Enabled:      BoolPtr(true),
			Nested:       BoolPtr(true),
			Autoprefixer: BoolPtr(true),
			Minify:       BoolPtr(true),
		},
		Sass: SassConfig{Enabled: BoolPtr(true)},
		Vue:  VueConfig{Transform: BoolPtr(true)},
	}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Bool dereferences p, treating nil as false.
func Bool(p *bool) bool {
	return p != nil && *p
}
