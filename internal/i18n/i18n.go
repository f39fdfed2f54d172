package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Language is a supported reply language.
type Language string

const (
	LangEnglish Language = "en"
	LangGerman  Language = "de"
	LangRussian Language = "ru"
	DefaultLang Language = LangEnglish
)

// Languages lists every language with an embedded locale file.
var Languages = []Language{LangEnglish, LangGerman, LangRussian}

// Message keys.
const (
	KeyHelp             = "help"
	KeyUnknownCommand   = "unknown_command"
	KeyNoActiveWorkout  = "no_active_workout"
	KeyStatsUnavailable = "stats_unavailable"
	KeyStatsEmpty       = "stats_empty"
	KeyWorkoutHeader    = "workout_header"
)

//go:embed locales/*.json
var embedded embed.FS

type locale struct {
	Messages map[string]string `json:"messages"`
	Congrats []string          `json:"congrats"`
}

var translations = struct {
	sync.RWMutex
	data map[Language]locale
}{data: make(map[Language]locale)}

func init() {
	for _, lang := range Languages {
		data, err := embedded.ReadFile("locales/" + string(lang) + ".json")
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded locale %s: %v", lang, err))
		}
		var l locale
		if err := json.Unmarshal(data, &l); err != nil {
			panic(fmt.Sprintf("i18n: embedded locale %s: %v", lang, err))
		}
		translations.data[lang] = l
	}
}

// Load overrides the embedded texts with <dir>/<lang>.json files. Missing files are skipped,
// missing keys keep their embedded value.
func Load(dir string) error {
	translations.Lock()
	defer translations.Unlock()

	for _, lang := range Languages {
		path := filepath.Join(dir, string(lang)+".json")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading locale %s: %w", path, err)
		}

		var override locale
		if err := json.Unmarshal(data, &override); err != nil {
			return fmt.Errorf("parsing locale %s: %w", path, err)
		}

		current := translations.data[lang]
		merged := locale{Messages: make(map[string]string), Congrats: current.Congrats}
		for k, v := range current.Messages {
			merged.Messages[k] = v
		}
		for k, v := range override.Messages {
			merged.Messages[k] = v
		}
		if len(override.Congrats) > 0 {
			merged.Congrats = override.Congrats
		}
		translations.data[lang] = merged

		zap.L().Info("locale override loaded", zap.String("lang", string(lang)), zap.Int("keys", len(override.Messages)))
	}
	return nil
}

// T returns the text for key, falling back to English and finally to the key itself.
func T(key string, lang Language) string {
	translations.RLock()
	defer translations.RUnlock()

	if text, ok := translations.data[lang].Messages[key]; ok {
		return text
	}
	if lang != DefaultLang {
		if text, ok := translations.data[DefaultLang].Messages[key]; ok {
			return text
		}
	}

	zap.L().Warn("translation not found", zap.String("key", key), zap.String("lang", string(lang)))
	return key
}

// Congrats returns the congratulation templates. NAME is the sender placeholder.
func Congrats(lang Language) []string {
	translations.RLock()
	defer translations.RUnlock()

	if c := translations.data[lang].Congrats; len(c) > 0 {
		return append([]string(nil), c...)
	}
	return append([]string(nil), translations.data[DefaultLang].Congrats...)
}

// IsValidLanguage reports whether lang has a locale.
func IsValidLanguage(lang string) bool {
	for _, l := range Languages {
		if Language(strings.ToLower(lang)) == l {
			return true
		}
	}
	return false
}

// ParseLanguage maps a string to a Language, defaulting to English.
func ParseLanguage(lang string) Language {
	if IsValidLanguage(lang) {
		return Language(strings.ToLower(lang))
	}
	return DefaultLang
}
