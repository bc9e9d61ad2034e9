package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	m "glide.dev/pkg/glide/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "glide"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."
	envFileName      = ".env"

	envPrefix = "GLIDE"

	workDirKey        = "workdir"
	thresholdKey      = "signal.threshold"
	ignoreSuffixesKey = "paths.ignore_suffixes"
	classifyPrefixKey = "classify.prefix_bytes"
	textPrefixKey     = "classify.text_prefix_bytes"
	sniffUnitKey      = "sniff.unit_bytes"
	sniffStepsKey     = "sniff.steps"
	parseSQLKey       = "sql.enabled"
	ignoreFailuresKey = "route.ignore_failures"
	tolerateSparseKey = "route.tolerate_sparse_tabular"
	archiveModeKey    = "archive.mode"
	archiveCommandKey = "archive.command"
	archiveTimeoutKey = "archive.timeout"
	parsableDirKey    = "move.parsable_dir"
	rejectedDirKey    = "move.rejected_dir"
	journalDirKey     = "journal.dir"
	tuiKey            = "ui.tui"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".glide.log"
	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	setupConfig()
}

// setupConfig prepares the global viper instance. Precedence is flags, then
// GLIDE_* environment (including .env), then glide.yaml, then defaults.
func setupConfig() {
	// Missing .env files are normal; existing variables are never overridden.
	if err := godotenv.Load(filepath.Join(configFolderPath, envFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load env file", "file", envFileName, "error", err)
	}

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setConfigDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to read config file", "file", configFileName, "error", err)
		}
	}
}

func setConfigDefaults() {
	def := m.DefaultConfig()

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(workDirKey, def.WorkDir)
	viper.SetDefault(thresholdKey, def.Threshold)
	viper.SetDefault(ignoreSuffixesKey, def.IgnoreSuffixes)
	viper.SetDefault(classifyPrefixKey, def.ClassifyPrefix)
	viper.SetDefault(textPrefixKey, def.TextPrefix)
	viper.SetDefault(sniffUnitKey, def.SniffUnit)
	viper.SetDefault(sniffStepsKey, def.SniffSteps)
	viper.SetDefault(parseSQLKey, false)
	viper.SetDefault(ignoreFailuresKey, false)
	viper.SetDefault(tolerateSparseKey, false)
	viper.SetDefault(archiveModeKey, string(def.ArchiveMode))
	viper.SetDefault(archiveCommandKey, def.ArchiveCommand)
	viper.SetDefault(archiveTimeoutKey, def.ArchiveTimeout.String())
	viper.SetDefault(parsableDirKey, "")
	viper.SetDefault(rejectedDirKey, "")
	viper.SetDefault(journalDirKey, "")
	viper.SetDefault(tuiKey, true)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// loadConfig snapshots the viper state into the immutable pipeline config.
// A non-positive threshold is rejected rather than defaulted.
func loadConfig() (m.Config, error) {
	cfg := m.DefaultConfig()

	cfg.Threshold = viper.GetInt(thresholdKey)
	if cfg.Threshold <= 0 {
		return m.Config{}, fmt.Errorf("%s must be positive, got %d", thresholdKey, cfg.Threshold)
	}

	cfg.WorkDir = viper.GetString(workDirKey)
	cfg.IgnoreSuffixes = viper.GetStringSlice(ignoreSuffixesKey)
	cfg.ClassifyPrefix = viper.GetInt(classifyPrefixKey)
	cfg.TextPrefix = viper.GetInt(textPrefixKey)
	cfg.SniffUnit = viper.GetInt(sniffUnitKey)
	cfg.SniffSteps = viper.GetInt(sniffStepsKey)
	cfg.ParseSQL = viper.GetBool(parseSQLKey)
	cfg.IgnoreFailures = viper.GetBool(ignoreFailuresKey)
	cfg.TolerateSparseTabular = viper.GetBool(tolerateSparseKey)
	cfg.ArchiveMode = m.ArchiveMode(viper.GetString(archiveModeKey))
	cfg.ArchiveCommand = viper.GetString(archiveCommandKey)
	cfg.ArchiveTimeout = viper.GetDuration(archiveTimeoutKey)

	return cfg.Normalized(), nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the global slog logger writing to a rotating file.
// Verbose forces debug level.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
