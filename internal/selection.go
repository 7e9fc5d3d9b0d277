package internal

// Selection is a read/observe view of a unit's value at a fixed path.
type Selection struct {
	unit *Unit
	path []any
}

func NewSelection(u *Unit, path []any) (*Selection, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	return &Selection{
		unit: u,
		path: append([]any(nil), path...),
	}, nil
}

func (s *Selection) Path() []any {
	return append([]any(nil), s.path...)
}

func (s *Selection) Value() (any, bool) {
	s.unit.rt.Lock()
	defer s.unit.rt.Unlock()

	v, ok := Pluck(s.unit.value, s.path)
	if !ok {
		return nil, false
	}
	return s.unit.read(v), true
}

// Subscribe forwards the path value whenever it changes. replay follows the
// unit's stream mode, future-only never replays.
func (s *Selection) Subscribe(fn func(any), replay bool) *Subscription {
	var (
		last any
		seen bool
	)

	immutable := s.unit.cfg.Immutable
	forward := func(pushed any) {
		// immutable units push copies, so compare the stored branch instead
		source := pushed
		if immutable {
			source = s.unit.value
		}

		v, _ := Pluck(source, s.path)
		if seen && Equal(v, last) {
			return
		}
		last, seen = v, true

		if immutable {
			v = Clone(v)
		}
		fn(v)
	}

	if replay {
		return s.unit.Subscribe(forward)
	}
	return s.unit.SubscribeFuture(forward)
}
