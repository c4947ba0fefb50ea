package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("%w: storage: %v", ErrInvalid, err)
	}
	if c.Jisho.BaseURL == "" {
		return fmt.Errorf("%w: jisho.base_url must be set", ErrInvalid)
	}
	if c.Jisho.Timeout < 0 {
		return fmt.Errorf("%w: jisho.timeout must be >= 0 (got %v)", ErrInvalid, c.Jisho.Timeout)
	}
	if err := c.Tatoeba.validate(); err != nil {
		return fmt.Errorf("%w: tatoeba: %v", ErrInvalid, err)
	}
	if c.Dictionary.AutoDownload && c.Dictionary.Path == "" {
		return fmt.Errorf("%w: dictionary.auto_download needs dictionary.path", ErrInvalid)
	}
	if strings.Count(c.Reference.URLTemplate, "%s") != 1 {
		return fmt.Errorf("%w: reference.url_template must contain exactly one %%s (got %q)", ErrInvalid, c.Reference.URLTemplate)
	}
	if c.Shell.SearchLimit <= 0 {
		return fmt.Errorf("%w: shell.search_limit must be > 0 (got %d)", ErrInvalid, c.Shell.SearchLimit)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	if s.JSONPath == "" {
		return fmt.Errorf("json_path must be set")
	}
	if s.DBPath == "" {
		return fmt.Errorf("db_path must be set")
	}
	if s.ExportPath == "" {
		return fmt.Errorf("export_path must be set")
	}
	return nil
}

func (t *TatoebaConfig) validate() error {
	if t.BaseURL == "" {
		return fmt.Errorf("base_url must be set")
	}
	if t.From == "" || t.To == "" {
		return fmt.Errorf("from and to must be set")
	}
	if t.MaxExamples <= 0 {
		return fmt.Errorf("max_examples must be > 0 (got %d)", t.MaxExamples)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %v)", t.Timeout)
	}
	return nil
}
