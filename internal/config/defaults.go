package config

const (
	defaultConfigPath        = "~/.config/clipflow/config.toml"
	defaultDataDir           = "~/.local/share/clipflow"
	defaultLogDir            = "~/.local/share/clipflow/logs"
	defaultMode              = "backtrack"
	defaultPreBuffer         = 0.5
	defaultPostBuffer        = 0.3
	defaultMaxWindowWords    = 5
	defaultFPS               = 30.0
	defaultTitleSuffix       = "_clipflow"
	defaultSourceName        = "source.mp4"
	defaultWhisperXModel     = "base"
	defaultWhisperXLanguage  = "zh"
	defaultWhisperXVAD       = "silero"
	defaultComputeTypeCPU    = "int8"
	defaultComputeTypeCUDA   = "float16"
	defaultVideoCodec        = "libx264"
	defaultVideoPreset       = "fast"
	defaultAudioCodec        = "aac"
	defaultWatchConcurrency  = 1
	defaultWatchSettleMillis = 2000
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

var (
	defaultNGKeywords    = []string{"再來", "NG", "重來"}
	defaultOKKeywords    = []string{"這段OK", "OK", "收"}
	defaultStartKeywords = []string{"開始"}
	defaultEndKeywords   = []string{"結束"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Analysis: Analysis{
			Mode:           defaultMode,
			PreBuffer:      defaultPreBuffer,
			PostBuffer:     defaultPostBuffer,
			MaxWindowWords: defaultMaxWindowWords,
			NGKeywords:     cloneStrings(defaultNGKeywords),
			OKKeywords:     cloneStrings(defaultOKKeywords),
			StartKeywords:  cloneStrings(defaultStartKeywords),
			EndKeywords:    cloneStrings(defaultEndKeywords),
		},
		Export: Export{
			FPS:               defaultFPS,
			TitleSuffix:       defaultTitleSuffix,
			DefaultSourceName: defaultSourceName,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			Language:  defaultWhisperXLanguage,
			VADMethod: defaultWhisperXVAD,
		},
		Render: Render{
			VideoCodec: defaultVideoCodec,
			Preset:     defaultVideoPreset,
			AudioCodec: defaultAudioCodec,
		},
		Watch: Watch{
			MaxConcurrent: defaultWatchConcurrency,
			SettleDelayMS: defaultWatchSettleMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
