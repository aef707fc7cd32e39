package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	authPostgres "github.com/frahmantamala/shiftboard/internal/auth/postgres"
	"github.com/frahmantamala/shiftboard/internal/dbtest"
	"github.com/frahmantamala/shiftboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Auth Handler Integration", func() {
	var handler *auth.Handler

	BeforeEach(func() {
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		tokens, err := auth.NewTokenIssuer(testSecret, internal.DefaultTokenTTL)
		Expect(err).NotTo(HaveOccurred())

		service := auth.NewService(authPostgres.NewCredentialRepository(db), tokens, nil, auth.Options{
			BCryptCost: bcrypt.MinCost,
		}, newTestLogger())
		handler = auth.NewHandler(transport.NewBaseHandler(newTestLogger()), service, auth.CookieConfig{Secure: true})
	})

	post := func(fn http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
		var payload []byte
		switch b := body.(type) {
		case string:
			payload = []byte(b)
		default:
			payload, _ = json.Marshal(b)
		}
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	registerBody := map[string]string{
		"email":     "alice@example.com",
		"password":  "wonderland",
		"firstname": "Alice",
		"lastname":  "Liddell",
	}

	It("should register and hide the password hash", func() {
		w := post(handler.Register, registerBody)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))

		var body map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKey("_id"))
		Expect(body["email"]).To(Equal("alice@example.com"))
		Expect(body["isAdmin"]).To(BeFalse())
	})

	It("should answer 409 for a duplicate registration", func() {
		Expect(post(handler.Register, registerBody).Code).To(Equal(http.StatusCreated))

		w := post(handler.Register, registerBody)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("User already exists"))
	})

	It("should answer 400 for malformed JSON", func() {
		w := post(handler.Register, "{not json")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should set an HttpOnly session cookie on login", func() {
		post(handler.Register, registerBody)

		w := post(handler.Login, map[string]string{"email": "alice@example.com", "password": "wonderland"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var body auth.LoginResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Message).To(Equal("Login successful"))
		Expect(body.Token).NotTo(BeEmpty())

		cookies := w.Result().Cookies()
		Expect(cookies).To(HaveLen(1))
		Expect(cookies[0].Name).To(Equal(auth.SessionCookieName))
		Expect(cookies[0].Value).To(Equal(body.Token))
		Expect(cookies[0].HttpOnly).To(BeTrue())
		Expect(cookies[0].Secure).To(BeTrue())
		Expect(cookies[0].SameSite).To(Equal(http.SameSiteLaxMode))
	})

	It("should answer 401 with the same body for both credential failures", func() {
		post(handler.Register, registerBody)

		wrong := post(handler.Login, map[string]string{"email": "alice@example.com", "password": "nope"})
		unknown := post(handler.Login, map[string]string{"email": "bob@example.com", "password": "wonderland"})

		Expect(wrong.Code).To(Equal(http.StatusUnauthorized))
		Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
		Expect(wrong.Body.String()).To(Equal(unknown.Body.String()))
		Expect(wrong.Result().Cookies()).To(BeEmpty())
	})

	It("should clear the cookie on logout", func() {
		w := post(handler.Logout, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Logged out successfully"))

		header := w.Header().Get("Set-Cookie")
		Expect(header).To(HavePrefix(auth.SessionCookieName + "="))
		Expect(strings.Contains(header, "Max-Age=0")).To(BeTrue())
	})
})
