package config

import (
	"fmt"

	"github.com/opmodel/mkdist/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue records the winning value of one key and the values it shadowed.
type ResolvedValue struct {
	Key      string
	Value    any
	Source   ConfigSource
	Shadowed map[ConfigSource]any
}

// Layers are the configuration sources. Nil layers are empty.
type Layers struct {
	Flags *Config
	Env   *Config
	File  *Config
}

// layer pairs a source with one candidate value.
type layer[T any] struct {
	source ConfigSource
	value  T
	set    bool
}

// resolve picks the first set value in precedence order, falling back to def.
func resolve[T any](key string, def T, layers ...layer[T]) (T, ResolvedValue) {
	rv := ResolvedValue{Key: key, Shadowed: map[ConfigSource]any{}}
	found := false
	var value T
	for _, l := range layers {
		if !l.set {
			continue
		}
		if !found {
			value, found = l.value, true
			rv.Value, rv.Source = display(l.value), l.source
			continue
		}
		rv.Shadowed[l.source] = display(l.value)
	}
	if !found {
		value = def
		rv.Value, rv.Source = display(def), SourceDefault
	}
	return value, rv
}

func display(v any) any {
	if p, ok := v.(*bool); ok {
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

// resolver accumulates resolved values while a Config is assembled.
type resolver struct {
	flags, env, file *Config
	values           []ResolvedValue
}

func str(r *resolver, key string, def string, get func(*Config) string) string {
	v, rv := resolve(key, def,
		layer[string]{SourceFlag, get(r.flags), get(r.flags) != ""},
		layer[string]{SourceEnv, get(r.env), get(r.env) != ""},
		layer[string]{SourceConfig, get(r.file), get(r.file) != ""},
	)
	r.values = append(r.values, rv)
	return v
}

func flag(r *resolver, key string, def *bool, get func(*Config) *bool) *bool {
	v, rv := resolve(key, def,
		layer[*bool]{SourceFlag, get(r.flags), get(r.flags) != nil},
		layer[*bool]{SourceEnv, get(r.env), get(r.env) != nil},
		layer[*bool]{SourceConfig, get(r.file), get(r.file) != nil},
	)
	r.values = append(r.values, rv)
	return v
}

func list(r *resolver, key string, def []string, get func(*Config) []string) []string {
	v, rv := resolve(key, def,
		layer[[]string]{SourceFlag, get(r.flags), len(get(r.flags)) > 0},
		layer[[]string]{SourceEnv, get(r.env), len(get(r.env)) > 0},
		layer[[]string]{SourceConfig, get(r.file), len(get(r.file)) > 0},
	)
	r.values = append(r.values, rv)
	return v
}

func number(r *resolver, key string, def int, get func(*Config) int) int {
	v, rv := resolve(key, def,
		layer[int]{SourceFlag, get(r.flags), get(r.flags) != 0},
		layer[int]{SourceEnv, get(r.env), get(r.env) != 0},
		layer[int]{SourceConfig, get(r.file), get(r.file) != 0},
	)
	r.values = append(r.values, rv)
	return v
}

// ResolveAll merges layers with precedence flag > env > config > default
// and returns the effective config with the resolution of every key.
func ResolveAll(layers Layers) (*Config, []ResolvedValue) {
	r := &resolver{flags: orEmpty(layers.Flags), env: orEmpty(layers.Env), file: orEmpty(layers.File)}
	def := DefaultConfig()

	cfg := &Config{
		SrcDir:         str(r, "srcDir", def.SrcDir, func(c *Config) string { return c.SrcDir }),
		DistDir:        str(r, "distDir", def.DistDir, func(c *Config) string { return c.DistDir }),
		Pattern:        list(r, "pattern", def.Pattern, func(c *Config) []string { return c.Pattern }),
		Format:         str(r, "format", def.Format, func(c *Config) string { return c.Format }),
		Ext:            str(r, "ext", def.Ext, func(c *Config) string { return c.Ext }),
		Declaration:    flag(r, "declaration", def.Declaration, func(c *Config) *bool { return c.Declaration }),
		DeclarationExt: str(r, "declarationExt", def.DeclarationExt, func(c *Config) string { return c.DeclarationExt }),
		DeclarationMap: flag(r, "declarationMap", def.DeclarationMap, func(c *Config) *bool { return c.DeclarationMap }),
		CleanDist:      flag(r, "cleanDist", def.CleanDist, func(c *Config) *bool { return c.CleanDist }),
		Loaders:        list(r, "loaders", def.Loaders, func(c *Config) []string { return c.Loaders }),
		Concurrency:    number(r, "concurrency", def.Concurrency, func(c *Config) int { return c.Concurrency }),
	}
	cfg.AddRelativeDeclarationExtensions = flag(r, "addRelativeDeclarationExtensions", def.AddRelativeDeclarationExtensions,
		func(c *Config) *bool { return c.AddRelativeDeclarationExtensions })

	cfg.Esbuild = EsbuildConfig{
		Target:          str(r, "esbuild.target", def.Esbuild.Target, func(c *Config) string { return c.Esbuild.Target }),
		JSX:             str(r, "esbuild.jsx", def.Esbuild.JSX, func(c *Config) string { return c.Esbuild.JSX }),
		JSXFactory:      str(r, "esbuild.jsxFactory", def.Esbuild.JSXFactory, func(c *Config) string { return c.Esbuild.JSXFactory }),
		JSXFragment:     str(r, "esbuild.jsxFragment", def.Esbuild.JSXFragment, func(c *Config) string { return c.Esbuild.JSXFragment }),
		JSXImportSource: str(r, "esbuild.jsxImportSource", def.Esbuild.JSXImportSource, func(c *Config) string { return c.Esbuild.JSXImportSource }),
		Minify:          flag(r, "esbuild.minify", def.Esbuild.Minify, func(c *Config) *bool { return c.Esbuild.Minify }),
		KeepNames:       flag(r, "esbuild.keepNames", def.Esbuild.KeepNames, func(c *Config) *bool { return c.Esbuild.KeepNames }),
		Sourcemap:       str(r, "esbuild.sourcemap", def.Esbuild.Sourcemap, func(c *Config) string { return c.Esbuild.Sourcemap }),
		Define:          r.file.Esbuild.Define,
	}
	cfg.Postcss = PostcssConfig{
		Enabled:      flag(r, "postcss.enabled", def.Postcss.Enabled, func(c *Config) *bool { return c.Postcss.Enabled }),
		Nested:       flag(r, "postcss.nested", def.Postcss.Nested, func(c *Config) *bool { return c.Postcss.Nested }),
		Autoprefixer: flag(r, "postcss.autoprefixer", def.Postcss.Autoprefixer, func(c *Config) *bool { return c.Postcss.Autoprefixer }),
		Minify:       flag(r, "postcss.minify", def.Postcss.Minify, func(c *Config) *bool { return c.Postcss.Minify }),
		Targets:      str(r, "postcss.targets", def.Postcss.Targets, func(c *Config) string { return c.Postcss.Targets }),
	}
	cfg.Sass = SassConfig{
		Enabled:      flag(r, "sass.enabled", def.Sass.Enabled, func(c *Config) *bool { return c.Sass.Enabled }),
		Binary:       str(r, "sass.binary", def.Sass.Binary, func(c *Config) string { return c.Sass.Binary }),
		IncludePaths: list(r, "sass.includePaths", def.Sass.IncludePaths, func(c *Config) []string { return c.Sass.IncludePaths }),
	}
	cfg.Vue = VueConfig{
		Transform: flag(r, "vue.transform", def.Vue.Transform, func(c *Config) *bool { return c.Vue.Transform }),
	}
	cfg.TypeScript = TypeScriptConfig{
		CompilerOptions: r.file.TypeScript.CompilerOptions,
		Tsc:             str(r, "typescript.tsc", def.TypeScript.Tsc, func(c *Config) string { return c.TypeScript.Tsc }),
		VueTsc:          str(r, "typescript.vueTsc", def.TypeScript.VueTsc, func(c *Config) string { return c.TypeScript.VueTsc }),
	}
	cfg.Log = LogConfig{
		Timestamps: flag(r, "log.timestamps", def.Log.Timestamps, func(c *Config) *bool { return c.Log.Timestamps }),
	}

	// maps only come from the config file or flags
	cfg.Alias = r.file.Alias
	if len(r.flags.Alias) > 0 {
		cfg.Alias = r.flags.Alias
	}

	return cfg, r.values
}

func orEmpty(c *Config) *Config {
	if c == nil {
		return &Config{}
	}
	return c
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		if v.Source == SourceDefault {
			continue
		}
		output.Debug("config value resolved",
			"key", v.Key,
			"value", fmt.Sprint(v.Value),
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", fmt.Sprint(shadowed),
			)
		}
	}
}
