package config

import (
	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

type tomlDocument struct {
	Global   Global             `toml:"global"`
	Services map[string]Service `toml:"services"`
}

func parseTOML(data []byte) (*Config, error) {
	var doc tomlDocument
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "parse toml config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeConfiguration, "unknown config key %q", undecoded[0].String())
	}

	cfg := &Config{Global: doc.Global}
	// Decoding into a map loses order; MetaData.Keys reports keys in
	// document order.
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "services" {
			continue
		}
		svc := doc.Services[key[1]]
		svc.Name = key[1]
		cfg.Services = append(cfg.Services, svc)
	}
	return cfg, nil
}
