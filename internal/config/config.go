package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/wavescribe/wavescribe/pkg/debug"
)

const (
	// DefaultToolsDir is the default directory name for installed tools.
	// It is created in the same directory as the executable unless
	// WAVESCRIBE_HOME overrides it.
	DefaultToolsDir = "tools"

	// AudioDownloaderDir is the subdirectory holding the yt-dlp binary.
	AudioDownloaderDir = "yt-dlp"

	// SpeechEngineDir is the subdirectory holding the whisper.cpp source
	// tree, its build output, and downloaded models.
	SpeechEngineDir = "whisper.cpp"

	// ModelsDir is the subdirectory of SpeechEngineDir holding ggml models.
	ModelsDir = "models"
)

// InstallDirs represents the tool installation directories
type InstallDirs struct {
	Root            string
	AudioDownloader string
	SpeechEngine    string
	Models          string
}

// GetInstallDirs returns the paths to the tool installation directories and
// creates the root if needed. WAVESCRIBE_HOME takes precedence; otherwise
// the tools directory lives next to the executable.
func GetInstallDirs() (*InstallDirs, error) {
	root := os.Getenv("WAVESCRIBE_HOME")
	if root != "" {
		if !filepath.IsAbs(root) {
			if abs, err := filepath.Abs(root); err == nil {
				root = abs
			}
		}
		debug.Info("Using install root from environment: %s", root)
	} else {
		execPath, err := os.Executable()
		if err != nil {
			debug.Error("Could not get executable path: %v", err)
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		root = filepath.Join(filepath.Dir(execPath), DefaultToolsDir)
		debug.Info("Using install root relative to executable: %s", root)
	}

	dirs := &InstallDirs{
		Root:            root,
		AudioDownloader: filepath.Join(root, AudioDownloaderDir),
		SpeechEngine:    filepath.Join(root, SpeechEngineDir),
	}
	dirs.Models = filepath.Join(dirs.SpeechEngine, ModelsDir)

	if err := os.MkdirAll(dirs.Root, 0750); err != nil {
		debug.Error("Failed to create install root %s: %v", dirs.Root, err)
		return nil, fmt.Errorf("failed to create install root: %w", err)
	}

	return dirs, nil
}

// NewHTTPClient builds the HTTP client shared by downloads and connectivity
// checks. Proxy configuration is read from the standard environment
// variables once here; the client is then passed by reference everywhere
// instead of mutating a process-wide transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = time.Hour
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
		},
	}
}

// LoadEnvFile loads a .env file: an explicit WAVESCRIBE_ENV_FILE path, then
// the current directory, then the executable's directory. A missing file is
// not an error.
func LoadEnvFile() {
	if path := os.Getenv("WAVESCRIBE_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			debug.Warning("Failed to load .env from %s: %v", path, err)
		} else {
			debug.Info("Loaded .env from %s", path)
		}
		return
	}

	if err := godotenv.Load(".env"); err == nil {
		debug.Info("Loaded .env from current directory")
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		return
	}
	execEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if err := godotenv.Load(execEnv); err == nil {
		debug.Info("Loaded .env from %s", execEnv)
	}
}
