package scanning

import (
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		scanner *Ollama
		text    string
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewOllama(server.URL(), "qwen2-vl")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = scanner.RecognizeText(mustEncodePNG(testImage()), "image/png")
	})

	When("the model returns a transcription", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					var req ollamaChatRequest
					Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
					Expect(req.Model).To(Equal("qwen2-vl"))
					Expect(req.Stream).To(BeFalse())
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Images).To(HaveLen(1))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nJoe's Diner\nTotal 11.00\n```"},
					Done:    true,
				}),
			))
		})

		It("should return the cleaned text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Joe's Diner\nTotal 11.00"))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return an error with the status", func() {
			Expect(err).To(MatchError(ContainSubstring("status 500")))
		})
	})

	When("the response is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "not json"))
		})

		It("should return a decoding error", func() {
			Expect(err).To(MatchError(ContainSubstring("decoding response")))
		})
	})
})
