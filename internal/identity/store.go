// Package identity tracks the current user and guest ids and announces changes
// on the events bus.
package identity

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/starstrip/starstrip-planner/internal/events"
	"github.com/starstrip/starstrip-planner/internal/model"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// State is the persisted identity record.
type State struct {
	User     *model.User `json:"user"`
	GuestID  string      `json:"guestId,omitempty"`
	Remember bool        `json:"remember"`
}

// Identity reduces s to the ids that determine the profile key.
func (s State) Identity() model.Identity {
	id := model.Identity{GuestID: s.GuestID}
	if s.User != nil {
		id.UserID = s.User.ID
	}
	return id
}

// Store holds the current identity. Every change is published as an
// IdentityChanged event after the store lock is released.
type Store struct {
	mu    sync.Mutex
	state State
	bus   *events.Bus
}

// NewStore creates an anonymous identity store publishing to bus. bus may be nil.
func NewStore(bus *events.Bus) *Store {
	return &Store{bus: bus}
}

// NewID returns prefix followed by an underscore and 8 random characters.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:8]
}

// ActiveKey returns the user id, else the guest id, else "global".
func (s *Store) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Identity().ProfileKey()
}

// Identity returns the current ids.
func (s *Store) Identity() model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Identity()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// Restore replaces the state without publishing. Used when loading a session.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = copyState(st)
}

// EnsureGuest returns the guest id, creating one on first call. A signed-in
// identity is left alone and gets back its existing guest id, usually empty.
func (s *Store) EnsureGuest() string {
	var id string
	s.update(func(st *State) {
		if st.GuestID == "" && st.User == nil {
			st.GuestID = NewID("guest")
		}
		id = st.GuestID
	})
	return id
}

// Login sets the authenticated user.
func (s *Store) Login(u model.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	if u.Provider == "" {
		u.Provider = model.ProviderLocal
	}
	if !u.Provider.Valid() {
		return fmt.Errorf("%w: unknown provider %q", model.ErrValidation, u.Provider)
	}
	s.update(func(st *State) { st.User = &u })
	return nil
}

// LoginWithEmail signs in a local user under a newly assigned id.
func (s *Store) LoginWithEmail(email string) (model.User, error) {
	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		return model.User{}, fmt.Errorf("%w: invalid email %q", model.ErrValidation, email)
	}
	u := model.User{ID: NewID("user"), Email: email, Provider: model.ProviderLocal}
	if err := s.Login(u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Logout clears the user and keeps any guest id.
func (s *Store) Logout() {
	s.update(func(st *State) { st.User = nil })
}

// ClearGuest drops the guest id. It marks a completed guest-to-user merge.
func (s *Store) ClearGuest() {
	s.update(func(st *State) { st.GuestID = "" })
}

func (s *Store) SetRemember(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Remember = v
}

// update applies fn under the lock and publishes when the ids changed.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	prev := s.state.Identity()
	fn(&s.state)
	cur := s.state.Identity()
	s.mu.Unlock()

	if prev != cur && s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.IdentityChanged, Previous: prev, Current: cur})
	}
}

func copyState(st State) State {
	out := st
	if st.User != nil {
		u := *st.User
		out.User = &u
	}
	return out
}
