package notify

import (
	"fmt"
	"log/slog"
	"os"

	"echobox/internal/domain"

	"gopkg.in/yaml.v3"
)

// Rule routes message kinds to notification channels. An empty kinds list
// matches every kind.
type Rule struct {
	Kinds    []string `yaml:"kinds"`
	Channels []string `yaml:"channels"`
}

// Rules is the routing table loaded from the optional YAML rules file.
// A nil Rules routes every kind to every configured channel.
type Rules struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads the routing rules at path. A missing or empty path
// yields nil (default routing) rather than an error.
func LoadRules(path string, logger *slog.Logger) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("rules file does not exist, using default routing", "path", path)
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	logger.Info("loaded notification rules", "path", path, "rules", len(rules.Rules))
	return &rules, nil
}

// ChannelsFor returns the channels an event of the given kind routes to.
// configured is the full set of registered channel names, used when no
// rule constrains the kind.
func (r *Rules) ChannelsFor(kind domain.MessageKind, configured []string) []string {
	if r == nil || len(r.Rules) == 0 {
		return configured
	}

	seen := make(map[string]bool)
	var out []string
	for _, rule := range r.Rules {
		if !rule.matchesKind(kind) {
			continue
		}
		for _, ch := range rule.Channels {
			if !seen[ch] {
				seen[ch] = true
				out = append(out, ch)
			}
		}
	}
	return out
}

func (r Rule) matchesKind(kind domain.MessageKind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, k := range r.Kinds {
		if k == kind.String() {
			return true
		}
	}
	return false
}
