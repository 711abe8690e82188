package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/logging"
)

// File names expected by JSONStore inside its data directory.
const (
	UsersFile      = "users.json"
	FacilitiesFile = "facilities.json"
	PoliciesFile   = "policies.json"
)

// JSONStoreOptions configures a JSONStore.
type JSONStoreOptions struct {
	Logger logging.Logger
}

// JSONStore is a core.DataStore reading reference data from JSON files in a
// directory. Every Load call re-reads the files; there is no caching, so
// edits take effect on the next evaluation.
type JSONStore struct {
	dir    string
	logger logging.Logger
}

// NewJSONStore creates a store rooted at dir. A missing policies.json falls
// back to the built-in default rule set; missing users or facilities files
// load as empty.
func NewJSONStore(dir string, optFns ...func(o *JSONStoreOptions)) *JSONStore {
	opts := JSONStoreOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &JSONStore{dir: dir, logger: opts.Logger}
}

// LoadUsers reads the user directory. Accepts either a bare JSON array or an
// object wrapping the array under a "users" key.
func (s *JSONStore) LoadUsers() ([]core.User, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, UsersFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []core.User{}, nil
		}
		return nil, fmt.Errorf("read users: %w", err)
	}

	var users []core.User
	if err := json.Unmarshal(data, &users); err == nil {
		return users, nil
	}

	var wrapped struct {
		Users []core.User `json:"users"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	return wrapped.Users, nil
}

// LoadFacilities reads the facility directory.
func (s *JSONStore) LoadFacilities() ([]core.Facility, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, FacilitiesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []core.Facility{}, nil
		}
		return nil, fmt.Errorf("read facilities: %w", err)
	}

	var facilities []core.Facility
	if err := json.Unmarshal(data, &facilities); err != nil {
		return nil, fmt.Errorf("parse facilities: %w", err)
	}
	return facilities, nil
}

// LoadPolicyRules compiles the configured rule set, filtered to the given
// scope (empty scope loads every rule).
func (s *JSONStore) LoadPolicyRules(scope core.RuleScope) ([]core.PolicyRule, error) {
	cfgs := DefaultRuleConfigs()

	data, err := os.ReadFile(filepath.Join(s.dir, PoliciesFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("no policies file, using default rule set", "dir", s.dir)
	case err != nil:
		return nil, fmt.Errorf("read policies: %w", err)
	default:
		if err := json.Unmarshal(data, &cfgs); err != nil {
			return nil, fmt.Errorf("parse policies: %w", err)
		}
	}

	rules, err := BuildRules(cfgs)
	if err != nil {
		return nil, err
	}
	return filterScope(rules, scope), nil
}

func filterScope(rules []core.PolicyRule, scope core.RuleScope) []core.PolicyRule {
	if scope == "" {
		return rules
	}
	var out []core.PolicyRule
	for _, r := range rules {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	return out
}
