package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ModelRepo names one pretrained-model repository to clone into ModelsDir.
type ModelRepo struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	URL  string `json:"url" yaml:"url" toml:"url"`
}

// Wheels describes the bundled resource archive and the local wheel files
// it contains. These wheels are not published on any remote index; they
// ship inside a pretrained-model download.
type Wheels struct {
	// Archive and Files are relative to ModelsDir; Files exist only after
	// the archive has been unpacked in place.
	Archive string   `json:"archive" yaml:"archive" toml:"archive"`
	Files   []string `json:"files" yaml:"files" toml:"files"`
}

// Layers holds the package sets for the optional acceleration layers. The
// core layer is lock-file driven (uv sync) and has no package list here.
type Layers struct {
	Gpu  []string `json:"gpu" yaml:"gpu" toml:"gpu"`
	Vllm []string `json:"vllm" yaml:"vllm" toml:"vllm"`
}

// Config holds runtime parameters for the provisioner.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	EnvDir         string      `json:"env_dir" yaml:"env_dir" toml:"env_dir"`
	PythonVersion  string      `json:"python_version" yaml:"python_version" toml:"python_version"`
	LockFile       string      `json:"lock_file" yaml:"lock_file" toml:"lock_file"`
	ModelsDir      string      `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	MetricsFile    string      `json:"metrics_file" yaml:"metrics_file" toml:"metrics_file"`
	DarwinCXXFlags string      `json:"darwin_cxx_flags" yaml:"darwin_cxx_flags" toml:"darwin_cxx_flags"`
	Layers         Layers      `json:"layers" yaml:"layers" toml:"layers"`
	Wheels         Wheels      `json:"wheels" yaml:"wheels" toml:"wheels"`
	Models         []ModelRepo `json:"models" yaml:"models" toml:"models"`
}

// Default returns the configuration matching the upstream install docs.
func Default() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields in place. MetricsFile and Models stay
// empty unless configured; both features are opt-in.
func (c *Config) ApplyDefaults() {
	if c.EnvDir == "" {
		c.EnvDir = ".venv"
	}
	if c.PythonVersion == "" {
		c.PythonVersion = "3.10"
	}
	if c.LockFile == "" {
		c.LockFile = "uv.lock"
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "pretrained_models"
	}
	if c.DarwinCXXFlags == "" {
		c.DarwinCXXFlags = "-stdlib=libc++"
	}
	if c.Layers.Gpu == nil {
		c.Layers.Gpu = []string{
			"onnxruntime-gpu==1.18.0",
			"tensorrt-cu12==10.0.1",
			"tensorrt-cu12-bindings==10.0.1",
			"tensorrt-cu12-libs==10.0.1",
			"deepspeed==0.14.2",
		}
	}
	if c.Layers.Vllm == nil {
		c.Layers.Vllm = []string{"vllm==0.9.0"}
	}
	if c.Wheels.Archive == "" {
		c.Wheels.Archive = filepath.Join("ttsfrd", "resource.zip")
	}
	if c.Wheels.Files == nil {
		c.Wheels.Files = []string{
			filepath.Join("ttsfrd", "ttsfrd_dependency-0.1-py3-none-any.whl"),
			filepath.Join("ttsfrd", "ttsfrd-0.4.2-cp310-cp310-linux_x86_64.whl"),
		}
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadOrDefault loads path when given, otherwise returns Default().
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
