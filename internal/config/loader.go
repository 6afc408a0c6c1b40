package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/mkdist/internal/errors"
	"github.com/opmodel/mkdist/internal/output"
)

// Environment variable prefix for mkdist configuration.
const envPrefix = "MKDIST"

// envKeys are the keys that can be set from the environment, e.g.
// esbuild.minify as MKDIST_ESBUILD_MINIFY.
var envKeys = []string{
	"srcDir", "distDir", "pattern", "format", "ext",
	"declaration", "declarationExt", "declarationMap", "addRelativeDeclarationExtensions",
	"cleanDist", "loaders", "concurrency",
	"esbuild.target", "esbuild.jsx", "esbuild.jsxFactory", "esbuild.jsxFragment",
	"esbuild.jsxImportSource", "esbuild.minify", "esbuild.keepNames", "esbuild.sourcemap",
	"postcss.enabled", "postcss.nested", "postcss.autoprefixer", "postcss.minify", "postcss.targets",
	"sass.enabled", "sass.binary", "sass.includePaths",
	"vue.transform",
	"typescript.tsc", "typescript.vueTsc",
	"log.timestamps",
}

// Loader reads configuration layers.
type Loader struct {
	file *viper.Viper
	env  *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = env.BindEnv(key)
	}

	return &Loader{file: viper.New(), env: env}
}

// LoadDotenv loads rootDir/.env into the process environment. Variables
// that are already set keep their value. A missing file is not an error.
func (l *Loader) LoadDotenv(rootDir string) error {
	p := filepath.Join(rootDir, DotenvFile)
	if _, err := os.Stat(p); err != nil {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("loading %s: %w", p, err)
	}
	output.Debug("loaded environment file", "path", p)
	return nil
}

// LoadFile reads a YAML config file. An empty path returns an empty layer.
func (l *Loader) LoadFile(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oerrors.NewNotFoundError("config file not found", expanded, "check the --config path")
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	l.file.SetConfigFile(expanded)
	l.file.SetConfigType("yaml")
	if err := l.file.ReadInConfig(); err != nil {
		return nil, oerrors.NewConfigError("cannot parse config file", expanded, err.Error())
	}

	var cfg Config
	if err := l.file.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewConfigError("invalid config file", expanded, err.Error())
	}

	// viper folds map keys to lower case; aliases and compiler options are
	// case sensitive, so they are read from the document directly.
	if err := readCaseSensitive(expanded, &cfg); err != nil {
		return nil, oerrors.NewConfigError("invalid config file", expanded, err.Error())
	}

	output.Debug("loaded config file", "path", expanded)
	return &cfg, nil
}

func readCaseSensitive(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc struct {
		Alias      map[string]string `yaml:"alias"`
		TypeScript struct {
			CompilerOptions map[string]any `yaml:"compilerOptions"`
		} `yaml:"typescript"`
		Esbuild struct {
			Define map[string]string `yaml:"define"`
		} `yaml:"esbuild"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	cfg.Alias = doc.Alias
	cfg.TypeScript.CompilerOptions = doc.TypeScript.CompilerOptions
	cfg.Esbuild.Define = doc.Esbuild.Define
	return nil
}

// LoadEnv reads the MKDIST_ environment layer.
func (l *Loader) LoadEnv() (*Config, error) {
	var cfg Config
	if err := l.env.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewConfigError("invalid environment configuration", envPrefix+"_*", err.Error())
	}
	return &cfg, nil
}
