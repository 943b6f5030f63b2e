package profilestore

import "github.com/lithictech/go-profiles/profile"

type Snapshot struct {
	ByID  map[int]profile.Profile
	ByKey map[string]int
	Order []int
}

func TakeSnapshot(s *Store) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ByID:  make(map[int]profile.Profile, len(s.byID)),
		ByKey: make(map[string]int, len(s.byKey)),
		Order: append([]int{}, s.order...),
	}
	for k, v := range s.byID {
		snap.ByID[k] = v.Clone()
	}
	for k, v := range s.byKey {
		snap.ByKey[k] = v
	}
	return snap
}
