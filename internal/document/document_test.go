package document

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDocument(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Suite")
}

var _ = Describe("SniffMediaType", func() {
	It("detects PDF", func() {
		Expect(SniffMediaType([]byte("%PDF-1.7 rest"), "image/png")).To(Equal("application/pdf"))
	})

	It("detects PNG", func() {
		data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}
		Expect(SniffMediaType(data, "image/jpeg")).To(Equal("image/png"))
	})

	It("detects JPEG", func() {
		Expect(SniffMediaType([]byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/png")).To(Equal("image/jpeg"))
	})

	It("detects GIF", func() {
		Expect(SniffMediaType([]byte("GIF89a...."), "image/png")).To(Equal("image/gif"))
	})

	It("detects WEBP", func() {
		data := append([]byte("RIFF"), []byte{0, 0, 0, 0, 'W', 'E', 'B', 'P'}...)
		Expect(SniffMediaType(data, "image/png")).To(Equal("image/webp"))
	})

	It("detects HEIC via the ftyp brand", func() {
		data := []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c'}
		Expect(SniffMediaType(data, "image/jpeg")).To(Equal("image/heic"))
	})

	It("falls back to the extension guess for unknown bytes", func() {
		Expect(SniffMediaType([]byte("hello"), "image/jpeg")).To(Equal("image/jpeg"))
	})
})

var _ = Describe("Document", func() {
	It("accepts allow-listed extensions regardless of case", func() {
		Expect(Document{Filename: "inv.PDF"}.Supported()).To(BeTrue())
		Expect(Document{Filename: "inv.jpeg"}.Supported()).To(BeTrue())
	})

	It("rejects unsupported extensions", func() {
		Expect(Document{Filename: "inv.txt"}.Supported()).To(BeFalse())
		Expect(Document{Filename: "inv"}.Supported()).To(BeFalse())
	})
})

var _ = Describe("ListDirectory", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		for name, content := range map[string]string{
			"b-invoice.png": "png-bytes",
			"a-invoice.pdf": "%PDF-1.4",
			"notes.txt":     "skip me",
			".hidden.png":   "skip me too",
		} {
			Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)).To(Succeed())
		}
	})

	It("returns only allow-listed files sorted by name", func() {
		docs, err := ListDirectory(dir, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(2))
		Expect(docs[0].Filename).To(Equal("a-invoice.pdf"))
		Expect(docs[1].Filename).To(Equal("b-invoice.png"))
		Expect(docs[0].Data).To(Equal([]byte("%PDF-1.4")))
	})

	It("applies the limit after sorting", func() {
		docs, err := ListDirectory(dir, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Filename).To(Equal("a-invoice.pdf"))
	})
})

var _ = Describe("Prepare", func() {
	It("passes small PNG images through untouched", func() {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)))).To(Succeed())
		payload, err := Prepare(Document{Filename: "inv.png", Data: buf.Bytes()})
		Expect(err).NotTo(HaveOccurred())
		Expect(payload.MediaType).To(Equal("image/png"))
		Expect(payload.Data).To(Equal(buf.Bytes()))
	})

	It("downscales oversized images", func() {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, maxImageDim+100, 20)))).To(Succeed())
		payload, err := Prepare(Document{Filename: "inv.png", Data: buf.Bytes()})
		Expect(err).NotTo(HaveOccurred())
		img, _, err := image.Decode(bytes.NewReader(payload.Data))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(BeNumerically("<=", maxImageDim))
	})

	It("rejects files whose bytes match no supported type", func() {
		_, err := Prepare(Document{Filename: "inv.bin", Data: []byte("not an image")})
		Expect(err).To(HaveOccurred())
	})
})
