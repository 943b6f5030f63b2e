package profilestore

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/lithictech/go-profiles/profile"
)

// TopSkillsLimit is how many skills Statistics ranks.
const TopSkillsLimit = 10

type SkillCount struct {
	Skill string
	Count int
}

// Statistics summarizes a set of profiles.
// When TotalProfiles is 0, the other fields are unset,
// and only total_profiles is rendered to JSON.
type Statistics struct {
	TotalProfiles  int
	ActiveProfiles int
	AverageAge     float64
	// GenderDistribution counts profiles by gender,
	// with absent genders counted as profile.GenderUnknown.
	GenderDistribution map[profile.Gender]int
	// TopSkills is ordered by count descending.
	// Ties keep the order the skills were first seen in.
	TopSkills []SkillCount
}

func NewStatistics(profiles []profile.Profile) Statistics {
	if len(profiles) == 0 {
		return Statistics{}
	}
	st := Statistics{
		TotalProfiles:      len(profiles),
		GenderDistribution: map[profile.Gender]int{},
	}
	ageSum := 0
	counts := map[string]int{}
	skills := make([]string, 0)
	for _, p := range profiles {
		if p.IsActive {
			st.ActiveProfiles++
		}
		ageSum += p.Age
		st.GenderDistribution[p.GenderOrUnknown()]++
		for _, s := range p.Skills {
			if _, seen := counts[s]; !seen {
				skills = append(skills, s)
			}
			counts[s]++
		}
	}
	st.AverageAge = float64(ageSum) / float64(len(profiles))
	sort.SliceStable(skills, func(i, j int) bool {
		return counts[skills[i]] > counts[skills[j]]
	})
	if len(skills) > TopSkillsLimit {
		skills = skills[:TopSkillsLimit]
	}
	st.TopSkills = make([]SkillCount, 0, len(skills))
	for _, s := range skills {
		st.TopSkills = append(st.TopSkills, SkillCount{Skill: s, Count: counts[s]})
	}
	return st
}

// MarshalJSON renders top_skills as an object whose keys keep the ranking order.
func (st Statistics) MarshalJSON() ([]byte, error) {
	if st.TotalProfiles == 0 {
		return []byte(`{"total_profiles":0}`), nil
	}
	topSkills := &bytes.Buffer{}
	topSkills.WriteByte('{')
	for i, sc := range st.TopSkills {
		if i > 0 {
			topSkills.WriteByte(',')
		}
		k, err := json.Marshal(sc.Skill)
		if err != nil {
			return nil, err
		}
		topSkills.Write(k)
		topSkills.WriteByte(':')
		topSkills.WriteString(strconv.Itoa(sc.Count))
	}
	topSkills.WriteByte('}')
	return json.Marshal(struct {
		TotalProfiles      int                    `json:"total_profiles"`
		ActiveProfiles     int                    `json:"active_profiles"`
		AverageAge         float64                `json:"average_age"`
		GenderDistribution map[profile.Gender]int `json:"gender_distribution"`
		TopSkills          json.RawMessage        `json:"top_skills"`
	}{
		TotalProfiles:      st.TotalProfiles,
		ActiveProfiles:     st.ActiveProfiles,
		AverageAge:         st.AverageAge,
		GenderDistribution: st.GenderDistribution,
		TopSkills:          topSkills.Bytes(),
	})
}
