package cache

// AddHistory appends an invocation line to _history, dropping the
// oldest entries beyond limit. A non-positive limit falls back to
// DefaultHistoryLimit.
func (s *Store) AddHistory(line string, limit int) {
	if !s.enabled {
		return
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	history := append(s.History(), line)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	s.doc[keyHistory] = history
}

// History returns the recorded invocation lines, oldest first.
func (s *Store) History() []string {
	if !s.enabled {
		return nil
	}
	switch h := s.doc[keyHistory].(type) {
	case []string:
		return h
	case []any:
		out := make([]string, 0, len(h))
		for _, v := range h {
			if str, ok := v.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// ClearHistory drops the _history entry and saves. Reports whether
// there was any history to clear.
func (s *Store) ClearHistory() bool {
	if !s.enabled {
		return false
	}
	if _, ok := s.doc[keyHistory]; !ok {
		return false
	}
	delete(s.doc, keyHistory)
	_ = s.Save()
	return true
}
