package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Log       *zap.SugaredLogger
	ZapLogger *zap.Logger // Expose the raw zap Logger
)

// InitLogger configures the process-wide logger. Output goes to a rotating
// log file so stdout stays free for command output and the interactive UI.
func InitLogger() {
	// Configure the encoder
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "T", // Keep time key brief
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "",              // Disable caller key
		FunctionKey:    zapcore.OmitKey, // Disable function key
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,                        // INFO, WARN, etc.
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"), // Simpler time format
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder, // Won't be used due to empty CallerKey
		// Customize how structured fields are encoded (key=value format)
		ConsoleSeparator: "  ", // Separator between elements in console output
	}

	logPath := os.Getenv("LOG_FILE")
	if logPath == "" {
		logPath = "launcher-sync.log"
	}

	// Rotate the file instead of letting it grow without bound
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})

	// Create a core that writes INFO level and above logs to the file
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg), // Use ConsoleEncoder with custom config
		fileWriter,
		zap.InfoLevel, // Log InfoLevel and above to file
	)

	// Build the logger
	ZapLogger = zap.New(core)

	Log = ZapLogger.Sugar()
	Log.Infow("Logger initialized", "path", logPath)
}

func Sync() {
	if ZapLogger != nil {
		_ = ZapLogger.Sync() // flushes buffer, if any
	}
}
