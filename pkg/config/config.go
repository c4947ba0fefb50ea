// Package config loads the logger's settings from YAML, environment
// variables and defaults.
package config

import (
	"time"
)

// Config is the root application configuration.
// Boolean settings all default to false: cleanenv treats a false read from
// YAML as unset and would replace it with a true default.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Jisho      JishoConfig      `yaml:"jisho"`
	Tatoeba    TatoebaConfig    `yaml:"tatoeba"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Reference  ReferenceConfig  `yaml:"reference"`
	Shell      ShellConfig      `yaml:"shell"`
	Log        LogConfig        `yaml:"log"`
}

// StorageConfig holds the paths of the log files.
type StorageConfig struct {
	JSONPath   string `yaml:"json_path"   env:"WORDLOG_JSON_PATH"   env-default:"word_log.json"`
	DBPath     string `yaml:"db_path"     env:"WORDLOG_DB_PATH"     env-default:"word_log.db"`
	ExportPath string `yaml:"export_path" env:"WORDLOG_EXPORT_PATH" env-default:"word_log.csv"`
}

// JishoConfig holds dictionary API settings.
type JishoConfig struct {
	BaseURL string `yaml:"base_url" env:"WORDLOG_JISHO_URL" env-default:"https://jisho.org/api/v1/search/words"`
	// Timeout of 0 leaves the HTTP client without a timeout.
	Timeout time.Duration `yaml:"timeout" env:"WORDLOG_JISHO_TIMEOUT" env-default:"0s"`
}

// TatoebaConfig holds sentence API settings.
type TatoebaConfig struct {
	BaseURL     string        `yaml:"base_url"     env:"WORDLOG_TATOEBA_URL"          env-default:"https://tatoeba.org/en/api_v0/search"`
	From        string        `yaml:"from"         env:"WORDLOG_TATOEBA_FROM"         env-default:"jpn"`
	To          string        `yaml:"to"           env:"WORDLOG_TATOEBA_TO"           env-default:"eng"`
	MaxExamples int           `yaml:"max_examples" env:"WORDLOG_TATOEBA_MAX_EXAMPLES" env-default:"2"`
	Timeout     time.Duration `yaml:"timeout"      env:"WORDLOG_TATOEBA_TIMEOUT"      env-default:"0s"`
}

// DictionaryConfig holds the offline JMdict fallback settings.
type DictionaryConfig struct {
	// Path of a jmdict-simplified JSON file. Empty disables the fallback.
	Path         string `yaml:"path"          env:"WORDLOG_DICTIONARY_PATH"`
	AutoDownload bool   `yaml:"auto_download" env:"WORDLOG_DICTIONARY_AUTO_DOWNLOAD" env-default:"false"`
	// Lemma retries a failed lookup with the word's dictionary form.
	Lemma bool `yaml:"lemma" env:"WORDLOG_DICTIONARY_LEMMA" env-default:"false"`
}

// ReferenceConfig holds the external reference page settings.
type ReferenceConfig struct {
	URLTemplate string `yaml:"url_template" env:"WORDLOG_REFERENCE_URL" env-default:"https://jisho.org/search/%s"`
	Preview     bool   `yaml:"preview"      env:"WORDLOG_REFERENCE_PREVIEW" env-default:"false"`
}

// ShellConfig holds interactive menu settings.
type ShellConfig struct {
	// Search adds the English to Japanese and tag/JLPT search commands.
	Search      bool `yaml:"search"       env:"WORDLOG_SHELL_SEARCH"       env-default:"false"`
	SearchLimit int  `yaml:"search_limit" env:"WORDLOG_SHELL_SEARCH_LIMIT" env-default:"5"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Verbose bool `yaml:"verbose" env:"WORDLOG_VERBOSE" env-default:"false"`
}
