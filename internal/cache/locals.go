package cache

// Locals are persistent string key/value pairs kept under the reserved
// _locals entry and addressed from templates as $${locals.key}.

// SetLocal stores or replaces a local variable and saves immediately;
// locals written by spawned children must be visible to the next
// process without waiting for a top-level save.
func (s *Store) SetLocal(key, value string) {
	if !s.enabled {
		return
	}
	locals, ok := s.doc[keyLocals].(map[string]any)
	if !ok {
		locals = make(map[string]any)
		s.doc[keyLocals] = locals
	}
	locals[key] = value
	_ = s.Save()
}

// Local returns the value of one local variable.
func (s *Store) Local(key string) (string, bool) {
	if !s.enabled {
		return "", false
	}
	locals, ok := s.doc[keyLocals].(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := locals[key]
	if !ok {
		return "", false
	}
	if str, ok := v.(string); ok {
		return str, true
	}
	return "", false
}

// Locals returns a copy of all local variables.
func (s *Store) Locals() map[string]string {
	out := make(map[string]string)
	if !s.enabled {
		return out
	}
	locals, ok := s.doc[keyLocals].(map[string]any)
	if !ok {
		return out
	}
	for k, v := range locals {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out
}

// ClearLocals drops the _locals entry and saves. Reports whether any
// locals existed.
func (s *Store) ClearLocals() bool {
	if !s.enabled {
		return false
	}
	if _, ok := s.doc[keyLocals]; !ok {
		return false
	}
	delete(s.doc, keyLocals)
	_ = s.Save()
	return true
}
