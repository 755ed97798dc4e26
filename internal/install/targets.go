package install

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/wavescribe/wavescribe/internal/config"
)

// TargetID identifies one installable tool.
type TargetID string

const (
	// AudioDownloader is the yt-dlp binary used to fetch source audio.
	AudioDownloader TargetID = "audio-downloader"

	// SpeechEngine is the whisper.cpp transcription engine built from
	// source.
	SpeechEngine TargetID = "speech-engine"
)

// speechEngineRepo is the pinned source revision the engine is built from.
const (
	speechEngineRepo = "https://github.com/ggerganov/whisper.cpp.git"
	speechEngineTag  = "v1.7.4"
)

// Target is the static definition of one installable tool plus its
// installed-state predicate.
type Target struct {
	ID         TargetID
	Name       string
	BinaryPath string
}

// Installed reports whether the target's binary is present on disk. A
// zero-byte file counts as absent so an interrupted install re-runs.
func (t Target) Installed() bool {
	info, err := os.Stat(t.BinaryPath)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// audioDownloaderAsset is the platform-specific yt-dlp release asset name.
func audioDownloaderAsset() string {
	switch runtime.GOOS {
	case "windows":
		return "yt-dlp.exe"
	case "darwin":
		return "yt-dlp_macos"
	default:
		return "yt-dlp"
	}
}

func audioDownloaderURL() string {
	return "https://github.com/yt-dlp/yt-dlp/releases/latest/download/" + audioDownloaderAsset()
}

// speechEngineBinary is the binary whisper.cpp's build tree produces.
func speechEngineBinary() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

// Targets returns the static definitions for both tools rooted at dirs.
func Targets(dirs *config.InstallDirs) []Target {
	return []Target{
		{
			ID:         AudioDownloader,
			Name:       "yt-dlp",
			BinaryPath: filepath.Join(dirs.AudioDownloader, audioDownloaderAsset()),
		},
		{
			ID:         SpeechEngine,
			Name:       "whisper.cpp",
			BinaryPath: filepath.Join(dirs.SpeechEngine, "build", "bin", speechEngineBinary()),
		},
	}
}

// TargetByID looks up one target definition.
func TargetByID(dirs *config.InstallDirs, id TargetID) (Target, bool) {
	for _, t := range Targets(dirs) {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}
