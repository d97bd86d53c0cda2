package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// PathEnv overrides ffmpeg discovery on PATH.
const PathEnv = "SUBCONV_FFMPEG_PATH"

// ErrNotFound is returned when no ffmpeg binary can be located.
var ErrNotFound = errors.New("ffmpeg not found")

var (
	lookupOnce sync.Once
	lookupPath string
	lookupErr  error
)

// Locate returns the ffmpeg binary to run. A configured path wins, then the
// SUBCONV_FFMPEG_PATH environment variable, then the first ffmpeg on PATH.
func Locate(configured string) (string, error) {
	if configured != "" {
		return checkBinary(configured)
	}
	if env := os.Getenv(PathEnv); env != "" {
		return checkBinary(env)
	}
	lookupOnce.Do(func() {
		lookupPath, lookupErr = exec.LookPath("ffmpeg")
	})
	if lookupErr != nil {
		return "", fmt.Errorf(
			"%w: install ffmpeg or set %s or media.ffmpeg_path",
			ErrNotFound,
			PathEnv,
		)
	}
	return lookupPath, nil
}

func checkBinary(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// bare names are resolved on PATH
			if found, lookErr := exec.LookPath(path); lookErr == nil {
				return found, nil
			}
			return "", fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat ffmpeg: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("ffmpeg path %s is a directory", path)
	}
	return path, nil
}
