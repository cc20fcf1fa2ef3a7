package simvars

// Simulator drives the store by hand when there is no telemetry feed.
// One registered variable is selected at a time and Adjust nudges it.
type Simulator struct {
	store    *Store
	selected int
}

func NewSimulator(store *Store) *Simulator {
	return &Simulator{store: store}
}

// Selected returns the variable Adjust acts on, or false when nothing
// has been registered.
func (s *Simulator) Selected() (Var, bool) {
	vars := s.store.Vars()
	if len(vars) == 0 {
		return Var{}, false
	}
	return vars[s.index(len(vars))], true
}

func (s *Simulator) index(n int) int {
	i := s.selected % n
	if i < 0 {
		i += n
	}
	return i
}

// Next selects the following variable, wrapping at the end.
func (s *Simulator) Next() {
	if n := len(s.store.Vars()); n > 0 {
		s.selected = s.index(n) + 1
		s.selected %= n
	}
}

// Prev selects the preceding variable, wrapping at the start.
func (s *Simulator) Prev() {
	if n := len(s.store.Vars()); n > 0 {
		s.selected = s.index(n) - 1 + n
		s.selected %= n
	}
}

// Adjust moves the selected variable by dir steps of its frequency.
// Boolean variables flip on any non-zero dir.
func (s *Simulator) Adjust(dir float64) {
	v, ok := s.Selected()
	if !ok || dir == 0 {
		return
	}
	cur := s.store.Value(v.Label)
	if v.IsBool {
		if cur != 0 {
			s.store.Set(v.Label, 0)
		} else {
			s.store.Set(v.Label, 1)
		}
		return
	}
	s.store.Set(v.Label, cur+dir*v.Frequency)
}
