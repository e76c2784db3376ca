package profile

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/starstrip/starstrip-planner/internal/model"
)

var nationalityRe = regexp.MustCompile(`^[A-Z]{2}$`)

// PreferencesUpdate is a partial update; nil fields are left unchanged.
type PreferencesUpdate struct {
	Nationality         *string
	TravelPace          *model.TravelPace
	BudgetLevel         *model.BudgetLevel
	Interests           []string
	HasCompletedProfile *bool
}

// Preferences is the traveller profile shared by every identity on a device.
type Preferences struct {
	mu    sync.Mutex
	state model.TravelerProfile
	hooks []func(model.TravelerProfile)
}

func NewPreferences() *Preferences {
	return &Preferences{state: model.NewTravelerProfile()}
}

func (p *Preferences) Get() model.TravelerProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// OnChange registers a hook called after Update and Reset.
func (p *Preferences) OnChange(h func(model.TravelerProfile)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, h)
}

// Update validates u and merges it over the stored profile. Nationality is
// upper-cased; interests are trimmed and de-duplicated in order.
func (p *Preferences) Update(u PreferencesUpdate) (model.TravelerProfile, error) {
	p.mu.Lock()
	next := p.state.Clone()
	p.mu.Unlock()

	if u.Nationality != nil {
		n := strings.ToUpper(strings.TrimSpace(*u.Nationality))
		if n != "" && !nationalityRe.MatchString(n) {
			return model.TravelerProfile{}, fmt.Errorf("%w: nationality %q", model.ErrValidation, *u.Nationality)
		}
		next.Nationality = n
	}
	if u.TravelPace != nil {
		if !u.TravelPace.Valid() {
			return model.TravelerProfile{}, fmt.Errorf("%w: travel pace %q", model.ErrValidation, *u.TravelPace)
		}
		next.TravelPace = *u.TravelPace
	}
	if u.BudgetLevel != nil {
		if !u.BudgetLevel.Valid() {
			return model.TravelerProfile{}, fmt.Errorf("%w: budget level %q", model.ErrValidation, *u.BudgetLevel)
		}
		next.BudgetLevel = *u.BudgetLevel
	}
	if u.Interests != nil {
		next.Interests = cleanInterests(u.Interests)
	}
	if u.HasCompletedProfile != nil {
		next.HasCompletedProfile = *u.HasCompletedProfile
	}
	p.set(next)
	return next.Clone(), nil
}

// Reset restores the defaults.
func (p *Preferences) Reset() model.TravelerProfile {
	def := model.NewTravelerProfile()
	p.set(def)
	return def.Clone()
}

// Restore replaces the profile without running hooks.
func (p *Preferences) Restore(v model.TravelerProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = v.Clone()
}

func (p *Preferences) set(v model.TravelerProfile) {
	p.mu.Lock()
	p.state = v.Clone()
	hooks := append(([]func(model.TravelerProfile))(nil), p.hooks...)
	p.mu.Unlock()
	for _, h := range hooks {
		h(v.Clone())
	}
}

func cleanInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DecodePreferences reads a stored profile. Missing fields take the defaults;
// unknown pace or budget values fall back to moderate.
func DecodePreferences(b []byte) (model.TravelerProfile, error) {
	out := model.NewTravelerProfile()
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return model.TravelerProfile{}, fmt.Errorf("%w: preferences document: %v", model.ErrValidation, err)
	}
	if !out.TravelPace.Valid() {
		out.TravelPace = model.PaceModerate
	}
	if !out.BudgetLevel.Valid() {
		out.BudgetLevel = model.BudgetModerate
	}
	out.Interests = cleanInterests(out.Interests)
	return out, nil
}
