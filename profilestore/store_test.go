package profilestore_test

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lithictech/go-profiles/convext"
	"github.com/lithictech/go-profiles/logctx"
	"github.com/lithictech/go-profiles/profile"
	"github.com/lithictech/go-profiles/profilestore"
	"github.com/lithictech/go-profiles/quiz"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func rawProfile(id int, username string, fields ...interface{}) map[string]interface{} {
	raw := map[string]interface{}{
		"user_id":    id,
		"username":   username,
		"email":      username + "@example.com",
		"first_name": "First",
		"last_name":  "Last",
		"age":        25,
	}
	for i := 0; i < len(fields); i += 2 {
		raw[fields[i].(string)] = fields[i+1]
	}
	return raw
}

func intp(i int) *int { return &i }

func boolp(b bool) *bool { return &b }

func strp(s string) *string { return &s }

// expectIndexConsistent asserts every stored id has exactly one index entry,
// keyed by its lowercased username, and the index has nothing else.
func expectIndexConsistent(store *profilestore.Store) {
	snap := profilestore.TakeSnapshot(store)
	Expect(snap.ByKey).To(HaveLen(len(snap.ByID)), quiz.Describe())
	Expect(snap.Order).To(HaveLen(len(snap.ByID)), quiz.Describe())
	for id, p := range snap.ByID {
		Expect(p.UserID).To(Equal(id))
		Expect(snap.ByKey).To(HaveKeyWithValue(strings.ToLower(p.Username), id), quiz.Describe())
	}
	for _, id := range snap.Order {
		Expect(snap.ByID).To(HaveKey(id))
	}
}

var _ = Describe("Store", func() {
	var (
		store   *profilestore.Store
		hook    *test.Hook
		clock   time.Time
		advance = func() { clock = clock.Add(time.Minute) }
	)

	BeforeEach(func() {
		clock = now
		var logger *logrus.Entry
		logger, hook = logctx.NullLogger()
		store = profilestore.New(
			profile.NewValidator(func() time.Time { return now }),
			profilestore.WithLogger(logger),
			profilestore.WithClock(func() time.Time { return clock }),
		)
	})

	Describe("Create", func() {
		It("stores the validated profile under its id and username", func() {
			p, err := store.Create(rawProfile(1, "John_Doe", "skills", []string{"Python", "python", "SQL"}))
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Username).To(Equal("john_doe"))
			Expect(p.Skills).To(Equal([]string{"python", "sql"}))
			Expect(p.UpdatedAt).To(BeNil())
			Expect(store.Len()).To(Equal(1))
			expectIndexConsistent(store)
			Expect(hook.LastEntry().Message).To(Equal("profile_created"))
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("user_id", 1))
		})

		It("returns a record equal to what Get returns", func() {
			created, err := store.Create(rawProfile(1, "alice", "address", map[string]interface{}{
				"street": "1 Long Road", "city": "Paris", "country": "France", "postal_code": "75001",
			}))
			Expect(err).ToNot(HaveOccurred())
			got, ok := store.Get(created.UserID)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(created))
		})

		It("hands out copies", func() {
			created, err := store.Create(rawProfile(1, "alice", "skills", []string{"go"}))
			Expect(err).ToNot(HaveOccurred())
			created.Skills[0] = "rust"
			got, _ := store.Get(1)
			Expect(got.Skills).To(Equal([]string{"go"}))
			got.Skills[0] = "rust"
			again, _ := store.Get(1)
			Expect(again.Skills).To(Equal([]string{"go"}))
		})

		It("fails with the validation error and stores nothing", func() {
			_, err := store.Create(rawProfile(1, "alice", "age", 5))
			Expect(profile.IsValidationError(err)).To(BeTrue())
			Expect(profile.AsValidationError(err).Locations()).To(Equal([]string{"age"}))
			Expect(store.Len()).To(Equal(0))
		})

		It("rejects a duplicate id", func() {
			_, err := store.Create(rawProfile(1, "alice"))
			Expect(err).ToNot(HaveOccurred())
			before := profilestore.TakeSnapshot(store)
			_, err = store.Create(rawProfile(1, "bob"))
			Expect(err).To(MatchError(profilestore.ErrDuplicateIdentifier))
			Expect(profilestore.TakeSnapshot(store)).To(Equal(before))
		})

		It("rejects a duplicate username ignoring case", func() {
			_, err := store.Create(rawProfile(1, "alice"))
			Expect(err).ToNot(HaveOccurred())
			before := profilestore.TakeSnapshot(store)
			_, err = store.Create(rawProfile(2, "ALICE"))
			Expect(err).To(MatchError(profilestore.ErrDuplicateKey))
			Expect(profilestore.TakeSnapshot(store)).To(Equal(before))
		})

		It("reports a duplicate id before a duplicate username", func() {
			_, err := store.Create(rawProfile(1, "alice"))
			Expect(err).ToNot(HaveOccurred())
			_, err = store.Create(rawProfile(1, "alice"))
			Expect(err).To(MatchError(profilestore.ErrDuplicateIdentifier))
		})
	})

	Describe("Get and GetByUsername", func() {
		It("are absent for unknown ids and usernames", func() {
			_, ok := store.Get(1)
			Expect(ok).To(BeFalse())
			_, ok = store.GetByUsername("nobody")
			Expect(ok).To(BeFalse())
		})

		It("finds by username ignoring case", func() {
			_, err := store.Create(rawProfile(1, "Alice"))
			Expect(err).ToNot(HaveOccurred())
			p, ok := store.GetByUsername("ALICE")
			Expect(ok).To(BeTrue())
			Expect(p.UserID).To(Equal(1))
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			_, err := store.Create(rawProfile(1, "John_Doe", "skills", []string{"Python", "python", "SQL"}))
			Expect(err).ToNot(HaveOccurred())
			_, err = store.Create(rawProfile(2, "jane_doe"))
			Expect(err).ToNot(HaveOccurred())
			advance()
		})

		It("overlays the partial, revalidates, and stamps updated_at", func() {
			p, err := store.Update(1, map[string]interface{}{"age": 30, "skills": []string{"Go", "go"}})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Age).To(Equal(30))
			Expect(p.Skills).To(Equal([]string{"go"}))
			Expect(p.Email).To(Equal("John_Doe@example.com"))
			Expect(p.CreatedAt).To(BeTemporally("==", now))
			Expect(p.UpdatedAt).ToNot(BeNil())
			Expect(*p.UpdatedAt).To(BeTemporally("==", clock))
			got, _ := store.Get(1)
			Expect(got).To(Equal(p))
			Expect(hook.LastEntry().Message).To(Equal("profile_updated"))
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("update_keys", []string{"age", "skills"}))
		})

		It("clears optional fields set to null", func() {
			_, err := store.Update(1, map[string]interface{}{"gender": "female", "bio": "hello there"})
			Expect(err).ToNot(HaveOccurred())
			p, err := store.Update(1, map[string]interface{}{"gender": nil, "bio": nil})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.HasGender()).To(BeFalse())
			Expect(p.Bio).To(BeEmpty())
		})

		It("fails with DuplicateKey when renaming to a taken username", func() {
			before := profilestore.TakeSnapshot(store)
			_, err := store.Update(1, map[string]interface{}{"username": "jane_doe"})
			Expect(err).To(MatchError(profilestore.ErrDuplicateKey))
			Expect(profilestore.TakeSnapshot(store)).To(Equal(before))
			p, _ := store.Get(1)
			Expect(p.Username).To(Equal("john_doe"))
		})

		It("fails with DuplicateKey even if the rest of the update is invalid", func() {
			_, err := store.Update(1, map[string]interface{}{"username": "JANE_DOE", "age": 1})
			Expect(err).To(MatchError(profilestore.ErrDuplicateKey))
		})

		It("moves the index entry when renaming", func() {
			p, err := store.Update(1, map[string]interface{}{"username": "Bob"})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Username).To(Equal("bob"))
			_, ok := store.GetByUsername("JOHN_DOE")
			Expect(ok).To(BeFalse())
			found, ok := store.GetByUsername("bob")
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(p))
			expectIndexConsistent(store)
		})

		It("allows changing only the case of the username", func() {
			p, err := store.Update(1, map[string]interface{}{"username": "JOHN_doe"})
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Username).To(Equal("john_doe"))
			expectIndexConsistent(store)
		})

		It("fails validation without changing anything", func() {
			before := profilestore.TakeSnapshot(store)
			_, err := store.Update(1, map[string]interface{}{"email": "nope", "username": "bob"})
			Expect(profile.AsValidationError(err).Locations()).To(Equal([]string{"email"}))
			Expect(profilestore.TakeSnapshot(store)).To(Equal(before))
		})

		It("does not allow changing the user_id", func() {
			before := profilestore.TakeSnapshot(store)
			_, err := store.Update(1, map[string]interface{}{"user_id": 3})
			Expect(profile.AsValidationError(err).Errors).To(ConsistOf(
				profile.FieldError{Location: "user_id", Message: "user_id is immutable"},
			))
			Expect(profilestore.TakeSnapshot(store)).To(Equal(before))
		})

		It("errors for an unknown id", func() {
			_, err := store.Update(99, map[string]interface{}{"age": 30})
			Expect(err).To(MatchError(profilestore.ErrNotFound))
		})

		It("keeps the profile's position in iteration order", func() {
			_, err := store.Update(1, map[string]interface{}{"username": "zed"})
			Expect(err).ToNot(HaveOccurred())
			ids := []int{}
			for _, p := range store.All() {
				ids = append(ids, p.UserID)
			}
			Expect(ids).To(Equal([]int{1, 2}))
		})
	})

	Describe("Delete", func() {
		It("returns false on an empty store", func() {
			Expect(store.Delete(99)).To(BeFalse())
		})

		It("removes the profile and its index entry", func() {
			_, err := store.Create(rawProfile(1, "alice"))
			Expect(err).ToNot(HaveOccurred())
			Expect(store.Delete(1)).To(BeTrue())
			Expect(store.Delete(1)).To(BeFalse())
			_, ok := store.GetByUsername("alice")
			Expect(ok).To(BeFalse())
			Expect(store.Len()).To(Equal(0))
			expectIndexConsistent(store)
			_, err = store.Create(rawProfile(2, "alice"))
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("Search", func() {
		It("returns an empty result on an empty store", func() {
			Expect(store.Search(profilestore.Criteria{MinAge: intp(1)})).To(BeEmpty())
			Expect(store.Search(profilestore.Criteria{})).ToNot(BeNil())
		})

		It("ANDs every criterion and keeps insertion order", func() {
			rows := []map[string]interface{}{
				rawProfile(5, "a", "age", 25, "is_active", true),
				rawProfile(3, "b", "age", 31, "is_active", true),
				rawProfile(4, "c", "age", 28, "is_active", false),
				rawProfile(1, "d", "age", 30, "is_active", true),
				rawProfile(2, "e", "age", 24, "is_active", true),
			}
			for _, r := range rows {
				r["username"] = r["username"].(string) + "_user"
				_, err := store.Create(r)
				Expect(err).ToNot(HaveOccurred())
			}
			found := store.Search(profilestore.Criteria{MinAge: intp(25), MaxAge: intp(30), IsActive: boolp(true)})
			ids := []int{}
			for _, p := range found {
				ids = append(ids, p.UserID)
			}
			Expect(ids).To(Equal([]int{5, 1}))
		})

		It("matches any skill, city ignoring case, and gender", func() {
			address := func(city string) map[string]interface{} {
				return map[string]interface{}{"street": "1 Long Road", "city": city, "country": "USA", "postal_code": "10001"}
			}
			_, err := store.Create(rawProfile(1, "one", "skills", []string{"go", "sql"}, "address", address("New York"), "gender", "female"))
			Expect(err).ToNot(HaveOccurred())
			_, err = store.Create(rawProfile(2, "two", "skills", []string{"rust"}, "address", address("Boston")))
			Expect(err).ToNot(HaveOccurred())
			_, err = store.Create(rawProfile(3, "three", "skills", []string{"python"}))
			Expect(err).ToNot(HaveOccurred())

			ids := func(c profilestore.Criteria) []int {
				r := []int{}
				for _, p := range store.Search(c) {
					r = append(r, p.UserID)
				}
				return r
			}
			Expect(ids(profilestore.Criteria{Skills: []string{"rust", "sql"}})).To(Equal([]int{1, 2}))
			Expect(ids(profilestore.Criteria{Skills: []string{"SQL"}})).To(BeEmpty())
			Expect(ids(profilestore.Criteria{City: strp("new york")})).To(Equal([]int{1}))
			g := profile.GenderFemale
			Expect(ids(profilestore.Criteria{Gender: &g})).To(Equal([]int{1}))
			unknown := profile.GenderUnknown
			Expect(ids(profilestore.Criteria{Gender: &unknown})).To(BeEmpty())
		})
	})

	Describe("Statistics", func() {
		It("has only the total for an empty store", func() {
			st := store.Statistics()
			Expect(st.TotalProfiles).To(Equal(0))
			Expect(convext.MustToObject(st)).To(Equal(map[string]interface{}{"total_profiles": float64(0)}))
		})

		It("summarizes the profiles", func() {
			_, err := store.Create(rawProfile(1, "one", "age", 20, "gender", "male", "skills", []string{"go", "sql"}))
			Expect(err).ToNot(HaveOccurred())
			_, err = store.Create(rawProfile(2, "two", "age", 30, "is_active", false, "skills", []string{"sql", "rust"}))
			Expect(err).ToNot(HaveOccurred())
			st := store.Statistics()
			Expect(st.TotalProfiles).To(Equal(2))
			Expect(st.ActiveProfiles).To(Equal(1))
			Expect(st.AverageAge).To(Equal(25.0))
			Expect(st.GenderDistribution).To(Equal(map[profile.Gender]int{"male": 1, "unknown": 1}))
			Expect(st.TopSkills).To(Equal([]profilestore.SkillCount{
				{Skill: "sql", Count: 2},
				{Skill: "go", Count: 1},
				{Skill: "rust", Count: 1},
			}))
			Expect(convext.MustToObject(st)).To(Equal(map[string]interface{}{
				"total_profiles":      float64(2),
				"active_profiles":     float64(1),
				"average_age":         float64(25),
				"gender_distribution": map[string]interface{}{"male": float64(1), "unknown": float64(1)},
				"top_skills":          map[string]interface{}{"sql": float64(2), "go": float64(1), "rust": float64(1)},
			}))
		})

		It("ranks at most ten skills and keeps ties in first-seen order", func() {
			skills := []string{}
			for i := 0; i < 12; i++ {
				skills = append(skills, fmt.Sprintf("skill%02d", i))
			}
			_, err := store.Create(rawProfile(1, "one", "skills", skills))
			Expect(err).ToNot(HaveOccurred())
			_, err = store.Create(rawProfile(2, "two", "skills", []string{"skill11"}))
			Expect(err).ToNot(HaveOccurred())
			st := store.Statistics()
			Expect(st.TopSkills).To(HaveLen(10))
			Expect(st.TopSkills[0]).To(Equal(profilestore.SkillCount{Skill: "skill11", Count: 2}))
			Expect(st.TopSkills[1].Skill).To(Equal("skill00"))
			Expect(st.TopSkills[9].Skill).To(Equal("skill08"))
		})
	})

	It("stays consistent through random operations", func() {
		usernames := []string{"alice", "Alice", "BOB", "bob", "carol", "dave", "Eve"}
		for i := 0; i < 300; i++ {
			before := profilestore.TakeSnapshot(store)
			var err error
			switch quiz.Rand.Intn(3) {
			case 0:
				age := quiz.Pick(5, 20, 40, 200)
				_, err = store.Create(rawProfile(quiz.Rand.Intn(8)+1, quiz.Pick(usernames...), "age", age))
			case 1:
				partial := quiz.Pick(
					map[string]interface{}{"username": quiz.Pick(usernames...)},
					map[string]interface{}{"age": quiz.Pick(5, 30)},
					map[string]interface{}{"email": quiz.Pick("x@y.io", "nope")},
					map[string]interface{}{"user_id": quiz.Rand.Intn(8) + 1},
				)
				advance()
				_, err = store.Update(quiz.Rand.Intn(8)+1, partial)
			case 2:
				store.Delete(quiz.Rand.Intn(8) + 1)
			}
			if err != nil {
				Expect(profilestore.TakeSnapshot(store)).To(Equal(before), quiz.Describe())
			}
			expectIndexConsistent(store)
		}
	})

	It("is safe for concurrent use", func() {
		wg := sync.WaitGroup{}
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(id int) {
				defer GinkgoRecover()
				defer wg.Done()
				_, _ = store.Create(rawProfile(id, fmt.Sprintf("user%d", id%10)))
				store.Search(profilestore.Criteria{MinAge: intp(20)})
				_, _ = store.Update(id, map[string]interface{}{"age": 40})
				store.Statistics()
			}(i)
		}
		wg.Wait()
		Expect(store.Len()).To(Equal(10))
		expectIndexConsistent(store)
	})
})
