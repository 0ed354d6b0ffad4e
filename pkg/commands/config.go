package commands

import (
	"os"
	"path/filepath"

	"github.com/beam-cloud/avares/pkg/common"
	"github.com/rs/zerolog/log"
)

const (
	envArchivePath = "AVARES_ARCHIVE_PATH"
	envOutputDir   = "AVARES_OUTPUT_DIR"
	envLogLevel    = "AVARES_LOG_LEVEL"
)

// programDir returns the directory holding the running binary, which is where
// the build pipeline places the resource archive.
func programDir() string {
	exe, err := os.Executable()
	if err != nil {
		log.Warn().Err(err).Msg("unable to locate executable, using working directory")
		return "."
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Dir(exe)
}

func getEnvString(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultArchivePath() string {
	return getEnvString(envArchivePath, filepath.Join(programDir(), common.DefaultArchiveName))
}

func defaultOutputDir() string {
	return getEnvString(envOutputDir, programDir())
}
