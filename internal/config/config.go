package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default paths, relative to the working directory
const (
	DefaultInput       = "scripts/tw.txt"
	DefaultOutput      = "snippets/snippets.code-snippets"
	DefaultDebugOutput = "scripts/tw-test.txt"
	DefaultScope       = "css,less,scss"
)

// Init initializes configuration with viper
func Init() {
	setDefaults()

	viper.SetConfigName("snipgen")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "snipgen"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	// A .env next to the input is convenient for per-project overrides.
	// Existing environment variables win over it.
	_ = godotenv.Load()

	viper.SetEnvPrefix("SNIPGEN")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault("input", DefaultInput)
	viper.SetDefault("output", DefaultOutput)
	viper.SetDefault("debug_output", DefaultDebugOutput)
	viper.SetDefault("scope", DefaultScope)
	viper.SetDefault("output_mode", "file")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("color_key", "36")      // Cyan
	viper.SetDefault("color_prefix", "32")   // Green
	viper.SetDefault("color_desc", "90")     // Gray
	viper.SetDefault("color_body", "37")     // White
	viper.SetDefault("color_border", "240")  // Dark gray
	viper.SetDefault("color_cursor", "212")  // Pink
	viper.SetDefault("color_selected", "236")
	viper.SetDefault("color_dim", "241")
	viper.SetDefault("column_gap", 3)
	viper.SetDefault("column_key", 36)
	viper.SetDefault("column_prefix", 24)
	viper.SetDefault("preview_max_body", 8)
}

// GetInput returns the source file path with tilde expansion
func GetInput() string {
	return expandTilde(viper.GetString("input"))
}

// GetOutput returns the primary output path with tilde expansion
func GetOutput() string {
	return expandTilde(viper.GetString("output"))
}

// GetDebugOutput returns the path of the raw fallback dump
func GetDebugOutput() string {
	return expandTilde(viper.GetString("debug_output"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetScope returns the scope written into every snippet
func GetScope() string {
	return viper.GetString("scope")
}

// GetOutputMode returns the output mode
func GetOutputMode() string {
	return viper.GetString("output_mode")
}

// GetLogLevel returns the log level name
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GetColorKey returns ANSI color code for snippet keys
func GetColorKey() string {
	return viper.GetString("color_key")
}

// GetColorPrefix returns ANSI color code for prefixes
func GetColorPrefix() string {
	return viper.GetString("color_prefix")
}

// GetColorDesc returns ANSI color code for descriptions
func GetColorDesc() string {
	return viper.GetString("color_desc")
}

// GetColorBody returns ANSI color code for body lines
func GetColorBody() string {
	return viper.GetString("color_body")
}

// GetColorBorder returns the border and divider color
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// GetColorCursor returns the cursor color
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorSelected returns the selected row background
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColorDim returns the color for hints
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColumnGap returns spacing between columns
func GetColumnGap() int {
	return viper.GetInt("column_gap")
}

// GetColumnKey returns max key column width
func GetColumnKey() int {
	return viper.GetInt("column_key")
}

// GetColumnPrefix returns max prefix column width
func GetColumnPrefix() int {
	return viper.GetInt("column_prefix")
}

// GetPreviewMaxBody returns how many body lines the preview shows
func GetPreviewMaxBody() int {
	return viper.GetInt("preview_max_body")
}

// SetInput sets the source path at runtime
func SetInput(path string) {
	viper.Set("input", path)
}

// SetOutput sets the primary output path at runtime
func SetOutput(path string) {
	viper.Set("output", path)
}

// SetDebugOutput sets the fallback dump path at runtime
func SetDebugOutput(path string) {
	viper.Set("debug_output", path)
}

// SetScope sets the snippet scope at runtime
func SetScope(scope string) {
	viper.Set("scope", scope)
}

// SetOutputMode sets output mode at runtime
func SetOutputMode(mode string) {
	viper.Set("output_mode", mode)
}

// SetLogLevel sets the log level name at runtime
func SetLogLevel(level string) {
	viper.Set("log_level", level)
}
