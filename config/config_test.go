package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lithictech/go-profiles/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "config package Suite")
}

var _ = Describe("Load", func() {
	var missing string

	BeforeEach(func() {
		missing = filepath.Join(GinkgoT().TempDir(), "missing.env")
	})

	It("uses defaults", func() {
		cfg, err := config.Load(missing)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Port).To(Equal(8080))
		Expect(cfg.Addr()).To(Equal("0.0.0.0:8080"))
		Expect(cfg.LogLevel).To(Equal("info"))
		Expect(cfg.SeedParallelism).To(Equal(4))
		Expect(cfg.SeedWait).To(Equal(30 * time.Second))
		Expect(cfg.CorsOrigins).To(BeEmpty())
	})

	It("reads prefixed environment variables", func() {
		GinkgoT().Setenv("PROFILES_PORT", "9000")
		GinkgoT().Setenv("PROFILES_CORS_ORIGINS", "http://a.com,http://b.com")
		GinkgoT().Setenv("PROFILES_DEBUG_HTTP", "true")
		GinkgoT().Setenv("PROFILES_SEED_WAIT", "5s")
		cfg, err := config.Load(missing)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Port).To(Equal(9000))
		Expect(cfg.CorsOrigins).To(Equal([]string{"http://a.com", "http://b.com"}))
		Expect(cfg.DebugHTTP).To(BeTrue())
		Expect(cfg.SeedWait).To(Equal(5 * time.Second))
	})

	It("reads an env file without overriding the environment", func() {
		f := filepath.Join(GinkgoT().TempDir(), "test.env")
		Expect(os.WriteFile(f, []byte("PROFILES_SEED_FILE=/tmp/seed.json\nPROFILES_LOG_LEVEL=debug\n"), 0644)).To(Succeed())
		GinkgoT().Setenv("PROFILES_LOG_LEVEL", "warn")
		// godotenv sets variables directly, so register them for cleanup.
		GinkgoT().Setenv("PROFILES_SEED_FILE", "")
		Expect(os.Unsetenv("PROFILES_SEED_FILE")).To(Succeed())
		cfg, err := config.Load(f)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.SeedFile).To(Equal("/tmp/seed.json"))
		Expect(cfg.LogLevel).To(Equal("warn"))
	})

	It("errors for invalid values", func() {
		GinkgoT().Setenv("PROFILES_PORT", "abc")
		_, err := config.Load(missing)
		Expect(err).To(MatchError(ContainSubstring("parsing environment")))
	})

	It("errors for a nonpositive seed parallelism", func() {
		GinkgoT().Setenv("PROFILES_SEED_PARALLELISM", "0")
		_, err := config.Load(missing)
		Expect(err).To(MatchError(ContainSubstring("SEED_PARALLELISM")))
	})
})
