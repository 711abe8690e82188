package datastore

import (
	"strings"

	"github.com/hupe1980/schedmesh/core"
)

// StaticStore is a fixed in-process core.DataStore for tests and demos.
// A zero StaticStore has no users or facilities and serves the default rule
// set.
type StaticStore struct {
	Users      []core.User
	Facilities []core.Facility
	// Rules overrides the default rule set when non-nil. An explicitly
	// empty slice disables policy checks.
	Rules []core.PolicyRule
	// RulesErr, when set, is returned by LoadPolicyRules. Lets tests
	// exercise dimension-failure handling.
	RulesErr error
}

// LoadUsers implements core.DataStore.
func (s *StaticStore) LoadUsers() ([]core.User, error) {
	return append([]core.User(nil), s.Users...), nil
}

// LoadFacilities implements core.DataStore.
func (s *StaticStore) LoadFacilities() ([]core.Facility, error) {
	return append([]core.Facility(nil), s.Facilities...), nil
}

// LoadPolicyRules implements core.DataStore.
func (s *StaticStore) LoadPolicyRules(scope core.RuleScope) ([]core.PolicyRule, error) {
	if s.RulesErr != nil {
		return nil, s.RulesErr
	}
	rules := s.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	return filterScope(rules, scope), nil
}

// TeamMembers returns the emails of the members of a team,
// case-insensitively, mirroring the directory lookup the policy engine needs
// for group-scoped rules.
func TeamMembers(users []core.User, team string) []string {
	var out []string
	for _, u := range users {
		for _, t := range u.Teams {
			if strings.EqualFold(t, team) {
				out = append(out, u.Email)
				break
			}
		}
	}
	return out
}

// FacilityByName finds a facility case-insensitively by name.
func FacilityByName(facilities []core.Facility, name string) *core.Facility {
	for i := range facilities {
		if strings.EqualFold(facilities[i].Name, name) {
			f := facilities[i]
			return &f
		}
	}
	return nil
}

// FindFacilities returns facilities with at least minCapacity seats carrying
// every requested amenity.
func FindFacilities(facilities []core.Facility, minCapacity int, amenities ...string) []core.Facility {
	var out []core.Facility
	for _, f := range facilities {
		if minCapacity > 0 && f.Capacity < minCapacity {
			continue
		}
		if !hasAllAmenities(f, amenities) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func hasAllAmenities(f core.Facility, required []string) bool {
	for _, req := range required {
		found := false
		for _, a := range f.Amenities {
			if strings.EqualFold(a, req) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
