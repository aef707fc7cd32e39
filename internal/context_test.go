package internal_test

import (
	"context"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Context helpers", func() {
	Describe("WithTimeout", func() {
		It("should apply the given duration", func() {
			ctx, cancel := internal.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(deadline).To(BeTemporally("~", time.Now().Add(time.Minute), time.Second))
		})

		It("should default to five seconds for a zero duration", func() {
			ctx, cancel := internal.WithTimeout(context.Background(), 0)
			defer cancel()

			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(deadline).To(BeTemporally("~", time.Now().Add(5*time.Second), time.Second))
		})
	})

	Describe("user id", func() {
		It("should round-trip through the context", func() {
			ctx := internal.ContextWithUserID(context.Background(), "u-1")
			id, ok := internal.UserIDFromContext(ctx)
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal("u-1"))
		})

		It("should report a missing user id", func() {
			_, ok := internal.UserIDFromContext(context.Background())
			Expect(ok).To(BeFalse())
		})
	})
})
