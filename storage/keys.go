package storage

// Default managed key names.
const (
	DefaultPrimaryKey = "manualAuthUser"
	KeyAuthToken      = "authToken"
	KeyRefreshToken   = "refreshToken"
	KeySessionToken   = "sessionToken"
	KeyAuthTimestamp  = "authTimestamp"
)

// KeySet is the static list of auth-related keys a logout must remove.
// Keys outside the set are never touched by targeted removal.
type KeySet struct {
	Primary   string
	Auxiliary []string
}

// DefaultKeySet returns the portal's managed keys.
func DefaultKeySet() KeySet {
	return KeySet{
		Primary: DefaultPrimaryKey,
		Auxiliary: []string{
			KeyAuthToken,
			KeyRefreshToken,
			KeySessionToken,
			KeyAuthTimestamp,
		},
	}
}

// All returns the primary key followed by the auxiliary keys, without
// duplicates or empty names.
func (k KeySet) All() []string {
	out := make([]string, 0, len(k.Auxiliary)+1)
	seen := make(map[string]struct{}, len(k.Auxiliary)+1)
	add := func(key string) {
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	add(k.Primary)
	for _, key := range k.Auxiliary {
		add(key)
	}
	return out
}

// Managed reports whether key belongs to the set.
func (k KeySet) Managed(key string) bool {
	for _, candidate := range k.All() {
		if candidate == key {
			return true
		}
	}
	return false
}
