package social_test

import (
	"github.com/frahmantamala/shiftboard/internal/auth/social"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Userinfo decoding", func() {
	It("should read the Google OpenID claims", func() {
		identity, err := social.DecodeGoogle([]byte(`{"sub":"1","email":"a@example.com","email_verified":false,"name":"A B"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.Subject).To(Equal("1"))
		Expect(identity.EmailVerified).To(BeFalse())
		Expect(identity.DisplayName).To(Equal("A B"))
	})

	It("should treat a Facebook email as verified", func() {
		identity, err := social.DecodeFacebook([]byte(`{"id":"9","email":"b@example.com","first_name":"B","last_name":"C"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.Subject).To(Equal("9"))
		Expect(identity.EmailVerified).To(BeTrue())
		Expect(identity.LastName).To(Equal("C"))
	})

	It("should not mark a Facebook account without email as verified", func() {
		identity, err := social.DecodeFacebook([]byte(`{"id":"9"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.EmailVerified).To(BeFalse())
	})

	It("should fail on malformed bodies", func() {
		_, err := social.DecodeGoogle([]byte(`not json`))
		Expect(err).To(HaveOccurred())
	})
})
