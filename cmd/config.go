package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"bopkit.dev/pkg/bopkit/internal/adapter/lattice"
	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "bopkit"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName      = "output"
	formatFlagName      = "format"
	saveFlagName        = "save"
	metricsFlagName     = "metrics-file"
	runParallelFlagName = "parallel"
	debounceFlagName    = "debounce"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"

	reportFormatKey      = "report.format"
	reportSaveKey        = "report.save"
	runParallelConfigKey = "run.parallel"
	engineToleranceKey   = "engine.tolerance"
	engineMaxCellsKey    = "engine.max_cells"
	watchDebounceKey     = "watch.debounce"
	metricsFileKey       = "metrics.file"

	defaultReportsDir    = ".bopkit-reports"
	defaultReportFormat  = m.FormatYAML
	defaultReportSave    = false
	defaultRunParallel   = 1
	defaultWatchDebounce = 200 * time.Millisecond

	envPrefix = "BOPKIT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".bopkit.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(reportFormatKey, string(defaultReportFormat))
	viper.SetDefault(reportSaveKey, defaultReportSave)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(engineToleranceKey, domain.DefaultTolerance)
	viper.SetDefault(engineMaxCellsKey, lattice.DefaultMaxCells)
	viper.SetDefault(watchDebounceKey, defaultWatchDebounce)
	viper.SetDefault(metricsFileKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		// A missing file given through SetConfigFile is not a ConfigFileNotFoundError.
		return
	}
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

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
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

// outputArgs collects the report and metrics settings shared by every
// command that runs scenes.
func outputArgs() (domain.OutputArgs, error) {
	format, err := m.ParseReportFormat(viper.GetString(reportFormatKey))
	if err != nil {
		return domain.OutputArgs{}, err
	}

	return domain.OutputArgs{
		Save:        viper.GetBool(reportSaveKey),
		Reports:     m.Path(viper.GetString(outputFlagName)),
		Format:      format,
		MetricsFile: viper.GetString(metricsFileKey),
	}, nil
}
