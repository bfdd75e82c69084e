package lexicon

import "github.com/heartmarshall/tjdict-backend/internal/domain"

// IsComplete reports whether every translation slot in e is filled: each
// sense gloss and each translation variant, at every nesting level, must be
// non-empty.
func IsComplete(e *domain.Entry) bool {
	if e == nil {
		return false
	}
	for _, g := range e.Defs {
		for i := range g.Defs {
			if !senseComplete(&g.Defs[i]) {
				return false
			}
		}
	}
	return true
}

func senseComplete(s *domain.Sense) bool {
	if s.En == "" {
		return false
	}
	return extrasComplete(s.Children()...)
}

func extrasComplete(groups ...[]domain.Extra) bool {
	for _, group := range groups {
		for i := range group {
			x := &group[i]
			if len(x.En) == 0 {
				return false
			}
			for _, v := range x.En {
				if v.En == "" || !extrasComplete(v.Ex) {
					return false
				}
			}
			if !extrasComplete(x.Children()...) {
				return false
			}
		}
	}
	return true
}
