package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func multipartBody(field, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(content)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

func decodeBody(resp *http.Response, v any) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(data, v)).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		scanner     *mockScanner
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		scanner = newMockScanner()
		auth = BasicAuth{}
	})

	JustBeforeEach(func() {
		service := NewServiceWithDeps(db, scanner, storage, true,
			&mockIDGenerator{id: "scan-1"},
			&mockTimeSource{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)})
		server := NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	Describe("POST /api/process-receipt", func() {
		var resp *http.Response

		postImage := func(field string) {
			body, contentType := multipartBody(field, "receipt.jpg", []byte("fake image"))
			var err error
			resp, err = http.Post(ghttpServer.URL()+"/api/process-receipt", contentType, body)
			Expect(err).NotTo(HaveOccurred())
		}

		When("the upload succeeds", func() {
			JustBeforeEach(func() {
				postImage("image")
			})

			It("should return status OK", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return the raw text and parsed receipt", func() {
				var result Result
				decodeBody(resp, &result)
				Expect(result.Success).To(BeTrue())
				Expect(result.ID).To(Equal("scan-1"))
				Expect(result.RawText).To(Equal(dinerText))
				Expect(result.ParsedReceipt.Merchant).To(Equal("Joe's Diner"))
				Expect(result.ParsedReceipt.Address).To(Equal("123 Main St"))
				Expect(result.ParsedReceipt.Items).To(HaveLen(2))
			})

			It("should detect the content type from the extension", func() {
				resp.Body.Close()
				Expect(db.scans["scan-1"].ContentType).To(Equal("image/jpeg"))
			})

			It("should set CORS headers", func() {
				resp.Body.Close()
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			})
		})

		When("the image field is missing", func() {
			JustBeforeEach(func() {
				postImage("file")
			})

			It("should return a bad request error", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var body map[string]string
				decodeBody(resp, &body)
				Expect(body["error"]).To(Equal("No image file provided"))
			})
		})

		When("the request is not multipart", func() {
			JustBeforeEach(func() {
				var err error
				resp, err = http.Post(ghttpServer.URL()+"/api/process-receipt", "application/json", strings.NewReader("{}"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return a bad request error", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("OCR fails", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("tesseract crashed")
			})

			JustBeforeEach(func() {
				postImage("image")
			})

			It("should return an internal server error without details", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				var body map[string]string
				decodeBody(resp, &body)
				Expect(body["error"]).To(Equal("Error processing receipt"))
			})
		})
	})

	Describe("POST /api/parse", func() {
		It("should parse the supplied text", func() {
			payload, _ := json.Marshal(map[string]string{"text": "Shop\nApple S4.66\nTotal 94.66"})
			resp, err := http.Post(ghttpServer.URL()+"/api/parse", "application/json", bytes.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result Result
			decodeBody(resp, &result)
			Expect(result.ParsedReceipt.Total).To(HaveValue(Equal("94.66")))
			Expect(result.ParsedReceipt.Items[0].Amount).To(Equal("94.66"))
			Expect(scanner.calls).To(BeZero())
		})

		It("should accept empty text", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/parse", "application/json", strings.NewReader(`{"text": ""}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result Result
			decodeBody(resp, &result)
			Expect(result.ParsedReceipt.Merchant).To(Equal("N/A"))
		})

		It("should reject a body without text", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/parse", "application/json", strings.NewReader(`{}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})
	})

	Describe("scan endpoints", func() {
		BeforeEach(func() {
			db.scans["abc"] = &Scan{ID: "abc", Filename: "abc_receipt.png", ContentType: "image/png", RawText: "Shop"}
			db.scans["def"] = &Scan{ID: "def", RawText: "Other"}
			storage.files["abc_receipt.png"] = []byte("png bytes")
		})

		It("should list scans", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			var scans []*Scan
			decodeBody(resp, &scans)
			Expect(scans).To(HaveLen(2))
		})

		It("should get a scan", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans/abc")
			Expect(err).NotTo(HaveOccurred())
			var scan Scan
			decodeBody(resp, &scan)
			Expect(scan.RawText).To(Equal("Shop"))
		})

		It("should return not found for an unknown scan", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans/missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})

		It("should serve a stored image", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans/abc/file")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
			data, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("png bytes"))
		})

		It("should return not found when no image was kept", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans/def/file")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})

		It("should delete a scan", func() {
			req, err := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/api/scans/abc", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.scans).NotTo(HaveKey("abc"))
			Expect(storage.files).To(BeEmpty())
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = errors.New("boom")
			})

			It("should return an internal server error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/scans")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("GET /", func() {
		It("should serve the upload page", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Receipt Scanner"))
		})

		It("should reject other methods", func() {
			resp, err := http.Post(ghttpServer.URL()+"/", "text/plain", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			resp.Body.Close()
		})
	})

	Describe("OPTIONS preflight", func() {
		It("should answer with no content", func() {
			req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/api/process-receipt", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("should reject requests without credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("should reject wrong credentials", func() {
			req, err := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/scans", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "wrong")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("should accept valid credentials", func() {
			req, err := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/scans", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "secret")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})
