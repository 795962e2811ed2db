package receipt

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		It("should write the file and return its name", func() {
			name, err := storage.Save("scan_receipt.jpg", []byte("image"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("scan_receipt.jpg"))
			Expect(filepath.Join(tmpDir, "scan_receipt.jpg")).To(BeAnExistingFile())
		})

		It("should reject names that leave the directory", func() {
			_, err := storage.Save("../escape.jpg", []byte("image"))
			Expect(err).To(MatchError(ContainSubstring("invalid file name")))
			Expect(filepath.Join(filepath.Dir(tmpDir), "escape.jpg")).NotTo(BeAnExistingFile())
		})

		It("should reject absolute names", func() {
			_, err := storage.Save("/tmp/escape.jpg", []byte("image"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("scan_receipt.jpg", []byte("image"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the contents", func() {
				data, err := storage.Get("scan_receipt.jpg")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("image"))
			})
		})

		When("the file does not exist", func() {
			It("returns the error", func() {
				_, err := storage.Get("missing.jpg")
				Expect(err).To(MatchError(ContainSubstring("reading file")))
			})
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("scan_receipt.jpg", []byte("image"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove it from disk", func() {
				Expect(storage.Delete("scan_receipt.jpg")).To(Succeed())
				Expect(filepath.Join(tmpDir, "scan_receipt.jpg")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("returns the error", func() {
				Expect(storage.Delete("missing.jpg")).To(MatchError(ContainSubstring("deleting file")))
			})
		})
	})

	Describe("NewLocalStorage", func() {
		It("should create a missing directory", func() {
			path := filepath.Join(GinkgoT().TempDir(), "receipts", "nested")
			_, err := NewLocalStorage(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(BeADirectory())
		})
	})
})
