package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// BinPathVar names the directory holding clang, ld.lld and llvm-ar.
	BinPathVar = "OPENALPS4_LLVM_BIN_PATH"
	// SDKVar names the OpenOrbis PS4 toolchain root.
	SDKVar = "OO_PS4_TOOLCHAIN"

	// DefaultBinPath is used when BinPathVar is unset.
	DefaultBinPath = `D:\SDK\LLVM10\bin`
)

// Config is the toolchain location read from the environment.
type Config struct {
	BinDir string
	SDK    string
}

// ConfigError reports a required setting that is missing or unusable.
type ConfigError struct {
	Var string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Var, e.Msg)
}

// Load reads the toolchain location once. A missing SDK root is fatal and is
// reported before anything touches the filesystem.
func Load() (*Config, error) {
	sdk := os.Getenv(SDKVar)
	if sdk == "" {
		return nil, &ConfigError{Var: SDKVar, Msg: "the OpenOrbis PS4 toolchain must be installed and this variable set"}
	}
	binDir := os.Getenv(BinPathVar)
	if binDir == "" {
		binDir = DefaultBinPath
	}
	return &Config{BinDir: binDir, SDK: sdk}, nil
}

// LoadFiles loads dotenv files into the process environment. Variables that
// are already set win over the files.
func LoadFiles(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// ProjectRoot returns dir as an absolute path and checks that it is a
// directory.
func ProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &ConfigError{Var: "root", Msg: abs + " is not a directory"}
	}
	return abs, nil
}
