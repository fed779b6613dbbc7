package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/stylehub/internal/ratelimit"
)

// budgetsFile is the YAML shape of RATE_LIMITS_FILE:
//
//	budgets:
//	  order.create: {window: 1m, max: 10}
type budgetsFile struct {
	Budgets map[string]ratelimit.Budget `yaml:"budgets"`
}

// LoadBudgets returns the default per-action budgets with the entries of
// path laid over them. An empty path yields the defaults.
func LoadBudgets(path string) (map[string]ratelimit.Budget, error) {
	budgets := ratelimit.DefaultBudgets()
	if path == "" {
		return budgets, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read budgets: %w", err)
	}
	var f budgetsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse budgets: %w", err)
	}
	for action, b := range f.Budgets {
		if b.Window <= 0 || b.Max <= 0 {
			return nil, fmt.Errorf("budget %s: window and max must be positive", action)
		}
		budgets[action] = b
	}
	return budgets, nil
}
