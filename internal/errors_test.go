package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frahmantamala/shiftboard/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("should leave the sentinel untouched when adding a cause", func() {
		wrapped := internal.ErrUserNotFound.WithCause(errors.New("sql: no rows"))

		Expect(internal.ErrUserNotFound.Cause).To(BeNil())
		Expect(errors.Is(wrapped, internal.ErrUserNotFound)).To(BeTrue())
		Expect(errors.Is(wrapped, internal.ErrOrganizationNotFound)).To(BeFalse())
	})

	It("should be found through fmt wrapping", func() {
		err := fmt.Errorf("loading: %w", internal.ErrAlreadyMember)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(409))
	})

	It("should serialize type, code and message", func() {
		body, err := json.Marshal(internal.ErrInvalidCredentials)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(MatchJSON(`{"type":"UNAUTHORIZED","code":"INVALID_CREDENTIALS","message":"Invalid credentials"}`))
	})

	It("should never serialize the cause", func() {
		body, err := json.Marshal(internal.NewInternalError("failed to load", errors.New("password=hunter2")))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).NotTo(ContainSubstring("hunter2"))
	})

	DescribeTable("status codes",
		func(err *internal.AppError, status int) {
			Expect(err.StatusCode).To(Equal(status))
		},
		Entry("duplicate user", internal.ErrDuplicateUser, 409),
		Entry("invalid credentials", internal.ErrInvalidCredentials, 401),
		Entry("missing token", internal.ErrMissingToken, 401),
		Entry("invalid token", internal.ErrInvalidToken, 401),
		Entry("user not found", internal.ErrUserNotFound, 404),
		Entry("organization not found", internal.ErrOrganizationNotFound, 404),
		Entry("pending request not found", internal.ErrPendingRequestNotFound, 404),
		Entry("already member", internal.ErrAlreadyMember, 409),
		Entry("forbidden", internal.ErrOrganizationForbidden, 403),
		Entry("invalid body", internal.ErrInvalidBody, 400),
	)
})
