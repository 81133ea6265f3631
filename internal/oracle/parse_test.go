package oracle

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOracle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Oracle Suite")
}

var _ = Describe("DecodeInvoiceResponse", func() {
	const valid = `{
		"invoice_number": "INV-001",
		"vendor_name": "Fresh Foods LLC",
		"currency": "AED",
		"items": [
			{"item_number": 1, "description": "Tomatoes", "quantity": 2, "unit_price": 3.5, "total": 7.0, "unit": "kg", "llm_confidence": 9.1},
			{"item_number": 2, "description": "Onions", "quantity": 1, "unit_price": 2.0, "total": 2.0, "llm_confidence": 8.8}
		],
		"subtotal": 9.0,
		"tax": 0.45,
		"total_amount": 9.45
	}`

	It("decodes a plain JSON response", func() {
		inv, err := DecodeInvoiceResponse(valid, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(*inv.InvoiceNumber).To(Equal("INV-001"))
		Expect(inv.Items).To(HaveLen(2))
		Expect(inv.Items[0].Description).To(Equal("Tomatoes"))
		Expect(*inv.Items[0].ItemNumber).To(Equal(1))
		Expect(*inv.Items[0].Confidence).To(Equal(9.1))
		Expect(*inv.Subtotal).To(Equal(9.0))
	})

	It("strips markdown code fences", func() {
		inv, err := DecodeInvoiceResponse("```json\n"+valid+"\n```", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(inv.Items).To(HaveLen(2))
	})

	It("strips bare code fences", func() {
		inv, err := DecodeInvoiceResponse("```\n"+valid+"\n```", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(inv.Items).To(HaveLen(2))
	})

	It("drops items without a description but keeps the document", func() {
		inv, err := DecodeInvoiceResponse(`{
			"items": [
				{"description": "Tomatoes", "quantity": 2, "unit_price": 3.5, "total": 7.0},
				{"description": null, "quantity": 1, "unit_price": 2.0, "total": 2.0},
				{"description": "   ", "total": 5.0}
			]
		}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(inv.Items).To(HaveLen(1))
		Expect(inv.Items[0].Description).To(Equal("Tomatoes"))
	})

	It("accepts null metadata fields", func() {
		inv, err := DecodeInvoiceResponse(`{"invoice_number": null, "items": []}`, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(inv.InvoiceNumber).To(BeNil())
		Expect(inv.Items).To(BeEmpty())
	})

	It("rejects responses without an items array", func() {
		_, err := DecodeInvoiceResponse(`{"invoice_number": "INV-001"}`, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects non-JSON responses", func() {
		_, err := DecodeInvoiceResponse("I could not read this invoice.", nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects string-typed numbers", func() {
		_, err := DecodeInvoiceResponse(`{"items": [{"description": "Tomatoes", "quantity": "2"}]}`, nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("PromptFor", func() {
	It("adds column-identification guidance only in the strict profile", func() {
		base := PromptFor(ProfileBaseline)
		strict := PromptFor(ProfileStrict)
		Expect(base).NotTo(ContainSubstring("COLUMN IDENTIFICATION"))
		Expect(strict).To(ContainSubstring("COLUMN IDENTIFICATION"))
		Expect(strict).To(ContainSubstring(base))
	})
})
