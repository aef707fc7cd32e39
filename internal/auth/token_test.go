package auth_test

import (
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenIssuer", func() {
	var issuer *auth.TokenIssuer

	BeforeEach(func() {
		var err error
		issuer, err = auth.NewTokenIssuer(testSecret, 30*24*time.Hour)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should refuse to start without a secret", func() {
		_, err := auth.NewTokenIssuer("", time.Hour)
		Expect(err).To(MatchError(auth.ErrMissingSigningKey))
	})

	It("should round-trip the subject", func() {
		token, expiresAt, err := issuer.Issue("user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(expiresAt).To(BeTemporally("~", time.Now().Add(30*24*time.Hour), time.Second*5))

		subject, err := issuer.Verify(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(subject).To(Equal("user-1"))
	})

	It("should reject a token once it has expired", func() {
		token, _, err := issuer.Issue("user-1")
		Expect(err).NotTo(HaveOccurred())

		later := issuer.WithClock(func() time.Time { return time.Now().Add(31 * 24 * time.Hour) })
		_, err = later.Verify(token)
		Expect(err).To(Equal(internal.ErrTokenExpired))
	})

	It("should reject a token signed with another secret", func() {
		other, err := auth.NewTokenIssuer("a-completely-different-secret-value!!", time.Hour)
		Expect(err).NotTo(HaveOccurred())
		token, _, err := other.Issue("user-1")
		Expect(err).NotTo(HaveOccurred())

		_, err = issuer.Verify(token)
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})

	It("should reject unsigned tokens", func() {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).NotTo(HaveOccurred())

		_, err = issuer.Verify(token)
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})

	It("should reject tokens without an expiry", func() {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
		token, err := raw.SignedString([]byte(testSecret))
		Expect(err).NotTo(HaveOccurred())

		_, err = issuer.Verify(token)
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})

	It("should reject garbage", func() {
		_, err := issuer.Verify("not.a.jwt")
		Expect(err).To(Equal(internal.ErrInvalidToken))
	})

	It("should not issue a token without a subject", func() {
		_, _, err := issuer.Issue("")
		Expect(err).To(HaveOccurred())
	})
})
