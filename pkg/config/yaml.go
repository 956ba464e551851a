package config

import (
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

type yamlDocument struct {
	Global   Global    `yaml:"global"`
	Services yaml.Node `yaml:"services"`
}

func parseYAML(data []byte) (*Config, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "parse yaml config")
	}

	cfg := &Config{Global: doc.Global}
	node := &doc.Services
	if node.Kind == 0 {
		return cfg, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errs.New(errs.ErrCodeConfiguration, "services must be a mapping of service name to settings (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		svc := Service{Name: key.Value}
		if err := value.Decode(&svc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "service %q", key.Value)
		}
		cfg.Services = append(cfg.Services, svc)
	}
	return cfg, nil
}
