package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lithictech/go-profiles/async"
	"github.com/lithictech/go-profiles/logctx"
	"github.com/lithictech/go-profiles/pathutils"
	"github.com/lithictech/go-profiles/profile"
	"github.com/lithictech/go-profiles/profilestore"
	"github.com/lithictech/go-profiles/seed"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "seed package Suite")
}

var fixture = pathutils.CallerDir().Join("testdata", "profiles.json")

var _ = Describe("seed", func() {
	var (
		ctx   context.Context
		store *profilestore.Store
	)

	BeforeEach(func() {
		ctx, _ = logctx.WithNullLogger(nil)
		store = profilestore.New(profile.NewValidator(time.Now))
	})

	It("loads and applies a file", func() {
		res, err := seed.ApplyFile(ctx, store, fixture, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal(seed.Result{Created: 3}))
		p, ok := store.GetByUsername("john_doe")
		Expect(ok).To(BeTrue())
		Expect(p.Skills).To(Equal([]string{"python", "sql"}))
	})

	It("creates what it can and reports each failure", func() {
		ctx, hook := logctx.WithNullLogger(nil)
		_, err := seed.ApplyFile(ctx, store, fixture, 2)
		Expect(err).ToNot(HaveOccurred())
		records := []seed.Record{
			{"user_id": 4, "username": "fourth", "email": "f@example.com", "first_name": "F", "last_name": "T", "age": 20},
			{"user_id": 1, "username": "other", "email": "o@example.com", "first_name": "O", "last_name": "T", "age": 20},
			{"user_id": 9},
		}
		res, err := seed.Apply(ctx, store, records, 2)
		Expect(res).To(Equal(seed.Result{Created: 1, Failed: 2}))
		merr, ok := err.(*multierror.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Errors).To(HaveLen(2))
		Expect(merr.Errors[0]).To(MatchError(profilestore.ErrDuplicateIdentifier))
		Expect(merr.Errors[0].Error()).To(HavePrefix("record 1: "))
		Expect(profile.IsValidationError(merr.Errors[1])).To(BeTrue())
		Expect(store.Len()).To(Equal(4))
		Expect(hook.LastEntry().Message).To(Equal("seed_apply_failed"))
	})

	It("errors for a missing file", func() {
		_, err := seed.LoadFile("/does/not/exist.json")
		Expect(pathutils.IsPathError(err)).To(BeTrue())
	})

	Describe("Start", func() {
		var records []seed.Record

		BeforeEach(func() {
			var err error
			records, err = seed.LoadFile(fixture)
			Expect(err).ToNot(HaveOccurred())
		})

		It("runs through the goer and reports when done", func() {
			goer := async.NewSpying(async.Sync)
			progress := seed.Start(ctx, goer.Go, store, records, 2)
			Expect(goer.Calls).To(Equal([]string{"seed"}))
			Expect(progress.Done()).To(BeClosed())
			Expect(progress.Err()).ToNot(HaveOccurred())
			res, err := progress.Wait(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal(seed.Result{Created: 3}))
		})

		It("is in progress until the background work finishes", func() {
			release := make(chan struct{})
			blocking := func(ctx context.Context, name string, f func(context.Context)) {
				go func() {
					<-release
					f(ctx)
				}()
			}
			progress := seed.Start(ctx, blocking, store, records, 2)
			Expect(progress.Err()).To(MatchError(seed.ErrInProgress))
			close(release)
			Eventually(progress.Done()).Should(BeClosed())
			Expect(progress.Err()).ToNot(HaveOccurred())
			Expect(store.Len()).To(Equal(3))
		})

		It("stops waiting when the context is done", func() {
			progress := seed.Start(ctx, func(context.Context, string, func(context.Context)) {}, store, records, 2)
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := progress.Wait(cctx)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("can be already finished", func() {
			Expect(seed.Finished().Err()).ToNot(HaveOccurred())
		})
	})
})
