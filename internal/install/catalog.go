package install

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wavescribe/wavescribe/internal/recommend"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

// ModelPreset describes one downloadable whisper.cpp model.
type ModelPreset struct {
	Name      string `yaml:"name"`
	FileName  string `yaml:"file"`
	URL       string `yaml:"url"`
	SizeBytes int64  `yaml:"size_bytes"`
}

// Catalog is the set of known model presets. A YAML file can override the
// built-in catalog for mirrored or self-hosted model storage.
type Catalog struct {
	Models []ModelPreset `yaml:"models"`
}

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// DefaultCatalog returns the built-in ggml model presets. Sizes are
// approximate and used only for display.
func DefaultCatalog() Catalog {
	preset := func(name string, sizeBytes int64) ModelPreset {
		file := "ggml-" + name + ".bin"
		return ModelPreset{
			Name:      name,
			FileName:  file,
			URL:       modelBaseURL + file,
			SizeBytes: sizeBytes,
		}
	}
	return Catalog{Models: []ModelPreset{
		preset("tiny", 77_700_000),
		preset("base", 147_900_000),
		preset("small", 487_600_000),
		preset("medium", 1_530_000_000),
		preset("large-v3", 3_100_000_000),
	}}
}

// LoadCatalog reads a YAML catalog override. An empty path returns the
// built-in catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading model catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing model catalog %s: %w", path, err)
	}
	if len(c.Models) == 0 {
		return Catalog{}, fmt.Errorf("model catalog %s lists no models", path)
	}

	debug.Info("Loaded model catalog from %s (%d models)", path, len(c.Models))
	return c, nil
}

// PresetFor maps a recommended model size to its catalog entry. The large
// tier resolves to the newest large revision in the catalog. Falls back to
// the first preset when the catalog has no match, so an override file with
// a single model always wins.
func (c Catalog) PresetFor(size recommend.ModelSize) (ModelPreset, bool) {
	want := string(size)
	for _, m := range c.Models {
		if m.Name == want {
			return m, true
		}
	}
	if size == recommend.ModelLarge {
		for _, m := range c.Models {
			if len(m.Name) > 5 && m.Name[:5] == "large" {
				return m, true
			}
		}
	}
	if len(c.Models) > 0 {
		return c.Models[0], true
	}
	return ModelPreset{}, false
}
