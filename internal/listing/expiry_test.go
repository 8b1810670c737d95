package listing_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/goleak"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (c *countingExpirer) ExpireListings(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

var _ = Describe("ExpirySweeper", func() {
	It("sweeps immediately and on every tick, then stops cleanly", func() {
		ignore := goleak.IgnoreCurrent()
		expirer := &countingExpirer{}
		sweeper := listing.NewExpirySweeper(expirer, 10*time.Millisecond, quietLogger)

		sweeper.Start(context.Background())
		Eventually(expirer.calls.Load).Should(BeNumerically(">=", 3))
		sweeper.Stop()
		sweeper.Stop()

		Expect(goleak.Find(ignore)).To(Succeed())
	})

	It("exits when its context is cancelled and keeps going after errors", func() {
		ignore := goleak.IgnoreCurrent()
		expirer := &countingExpirer{err: errors.New("db down")}
		ctx, cancel := context.WithCancel(context.Background())
		sweeper := listing.NewExpirySweeper(expirer, 5*time.Millisecond, quietLogger)

		sweeper.Start(ctx)
		Eventually(expirer.calls.Load).Should(BeNumerically(">=", 2))
		cancel()
		sweeper.Stop()

		Expect(goleak.Find(ignore)).To(Succeed())
	})
})
