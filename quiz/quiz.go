// Package quiz has helpers for randomized tests.
// Set RAND_SEED to replay a failing run.
package quiz

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/onsi/ginkgo/v2"
)

// TestingT is a testing.T compatible interface,
// like used for libraries like cupaloy.
type TestingT struct {
	ginkgo.GinkgoTInterface
	report ginkgo.SpecReport
}

func NewTestingT() TestingT {
	return TestingT{ginkgo.GinkgoT(), ginkgo.CurrentSpecReport()}
}

func (i TestingT) Helper() {
}

func (i TestingT) Name() string {
	return i.report.FullText()
}

var Seed int64

var Rand *rand.Rand

func init() {
	seed, err := strconv.ParseInt(os.Getenv("RAND_SEED"), 10, 64)
	if err != nil {
		seed = time.Now().UnixNano()
	}
	Seed = seed
	Rand = rand.New(rand.NewSource(seed))
}

// Describe returns a short string naming the seed,
// for use in assertion descriptions.
func Describe() string {
	return fmt.Sprintf("RAND_SEED=%d", Seed)
}

// Pick returns a random element of choices.
// Panics if choices is empty.
func Pick[T any](choices ...T) T {
	return choices[Rand.Intn(len(choices))]
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Letters returns a random string of n ascii letters.
func Letters(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[Rand.Intn(len(letters))]
	}
	return string(b)
}
