package gemini

import "sync"

// Keyring holds the API credentials in rotation order. The executor addresses
// keys by slot offset; Promote re-anchors the ring on the slot that last
// succeeded so subsequent requests start with a known-good key.
type Keyring struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

func NewKeyring(keys []string) *Keyring {
	clean := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != "" {
			clean = append(clean, key)
		}
	}
	return &Keyring{keys: clean}
}

func (r *Keyring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Key resolves a slot offset to a credential, relative to the current anchor.
func (r *Keyring) Key(slot int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[(r.cursor+slot)%len(r.keys)]
}

// Promote moves the ring anchor to the slot that just served a successful
// call.
func (r *Keyring) Promote(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return
	}
	r.cursor = (r.cursor + slot) % len(r.keys)
}
