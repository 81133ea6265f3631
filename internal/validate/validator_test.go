package validate

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

func TestValidate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validate Suite")
}

func f(v float64) *float64 { return &v }

func item(desc string, q, p, t *float64, conf *float64) entity.LineItem {
	return entity.LineItem{Description: desc, Quantity: q, UnitPrice: p, Total: t, Confidence: conf}
}

var _ = Describe("Validator", func() {
	var v *Validator

	BeforeEach(func() {
		v = NewValidator(DefaultConfidenceThreshold, nil)
	})

	Describe("FilterByConfidence", func() {
		It("drops items below the threshold", func() {
			items := []entity.LineItem{
				item("apples", f(2), f(3), f(6), f(9.2)),
				item("pears", f(1), f(4), f(4), f(8.4)),
			}
			kept := v.FilterByConfidence(items)
			Expect(kept).To(HaveLen(1))
			Expect(kept[0].Description).To(Equal("apples"))
		})

		It("keeps items without a confidence value", func() {
			items := []entity.LineItem{item("apples", f(2), f(3), f(6), nil)}
			Expect(v.FilterByConfidence(items)).To(HaveLen(1))
		})

		It("keeps items exactly at the threshold", func() {
			items := []entity.LineItem{item("apples", f(2), f(3), f(6), f(8.5))}
			Expect(v.FilterByConfidence(items)).To(HaveLen(1))
		})

		It("returns an empty, non-nil list when everything is dropped", func() {
			items := []entity.LineItem{item("apples", f(2), f(3), f(6), f(1))}
			kept := v.FilterByConfidence(items)
			Expect(kept).NotTo(BeNil())
			Expect(kept).To(BeEmpty())
		})

		It("is idempotent", func() {
			items := []entity.LineItem{
				item("apples", f(2), f(3), f(6), f(9.2)),
				item("pears", f(1), f(4), f(4), f(7.9)),
				item("plums", f(1), f(4), f(4), nil),
			}
			once := v.FilterByConfidence(items)
			twice := v.FilterByConfidence(once)
			Expect(twice).To(Equal(once))
		})
	})

	Describe("ReconcileArithmetic", func() {
		It("leaves consistent items untouched", func() {
			items := []entity.LineItem{item("apples", f(2), f(3), f(6), f(9))}
			out := v.ReconcileArithmetic(items)
			Expect(out[0].Corrected).To(BeFalse())
			Expect(*out[0].Quantity).To(Equal(2.0))
			Expect(*out[0].Confidence).To(Equal(9.0))
		})

		It("repairs a misplaced decimal in the quantity", func() {
			// 11.0 * 4.5 != 4.95, but 1.1 * 4.5 == 4.95.
			items := []entity.LineItem{item("olive oil", f(11.0), f(4.5), f(4.95), f(9.0))}
			out := v.ReconcileArithmetic(items)
			Expect(out[0].Corrected).To(BeTrue())
			Expect(*out[0].Quantity).To(BeNumerically("~", 1.1, 1e-9))
			Expect(*out[0].UnitPrice).To(Equal(4.5))
			Expect(*out[0].Total).To(Equal(4.95))
		})

		It("applies the confidence penalty on correction", func() {
			items := []entity.LineItem{item("olive oil", f(11.0), f(4.5), f(4.95), f(9.0))}
			out := v.ReconcileArithmetic(items)
			Expect(*out[0].Confidence).To(BeNumerically("~", 8.3, 1e-9))
		})

		It("floors the penalized confidence at zero", func() {
			items := []entity.LineItem{item("olive oil", f(11.0), f(4.5), f(4.95), f(0.5))}
			out := v.ReconcileArithmetic(items)
			Expect(*out[0].Confidence).To(Equal(0.0))
		})

		It("applies the matching scale to the quantity, not the price", func() {
			// 3 * 125 != 37.5. Scaling either field by 0.1 reconciles, and
			// quantity-scaled candidates are tried first, so the quantity moves.
			items := []entity.LineItem{item("flour", f(3), f(125), f(37.5), nil)}
			out := v.ReconcileArithmetic(items)
			Expect(out[0].Corrected).To(BeTrue())
			Expect(*out[0].Quantity).To(BeNumerically("~", 0.3, 1e-9))
			Expect(*out[0].UnitPrice).To(Equal(125.0))
		})

		It("never swaps quantity and unit price", func() {
			// Swapping would reconcile (4 * 12 = 48) but no scale does.
			items := []entity.LineItem{item("sugar", f(12), f(4), f(48.6), f(9.0))}
			out := v.ReconcileArithmetic(items)
			Expect(out[0].Corrected).To(BeFalse())
			Expect(*out[0].Quantity).To(Equal(12.0))
			Expect(*out[0].UnitPrice).To(Equal(4.0))
			Expect(*out[0].Confidence).To(Equal(9.0))
		})

		It("skips items with missing numeric fields", func() {
			items := []entity.LineItem{item("salt", f(2), nil, f(9), f(9.0))}
			out := v.ReconcileArithmetic(items)
			Expect(out[0].Corrected).To(BeFalse())
		})
	})

	Describe("InvalidRatio", func() {
		It("returns 1.0 for an empty list", func() {
			Expect(v.InvalidRatio(nil)).To(Equal(1.0))
			Expect(v.InvalidRatio([]entity.LineItem{})).To(Equal(1.0))
		})

		It("returns 0.0 when every item reconciles exactly", func() {
			items := []entity.LineItem{
				item("apples", f(2), f(3), f(6), nil),
				item("pears", f(1.5), f(4), f(6), nil),
			}
			Expect(v.InvalidRatio(items)).To(Equal(0.0))
		})

		It("counts items missing numeric fields as invalid", func() {
			items := []entity.LineItem{
				item("apples", f(2), f(3), f(6), nil),
				item("pears", nil, f(4), f(6), nil),
			}
			Expect(v.InvalidRatio(items)).To(Equal(0.5))
		})

		It("counts arithmetic mismatches as invalid", func() {
			items := []entity.LineItem{
				item("apples", f(2), f(3), f(6), nil),
				item("pears", f(2), f(3), f(7), nil),
				item("plums", f(2), f(3), f(6), nil),
				item("figs", f(2), f(3), f(6), nil),
			}
			Expect(v.InvalidRatio(items)).To(Equal(0.25))
		})

		It("accepts mismatches within the tolerance", func() {
			items := []entity.LineItem{item("apples", f(2), f(3), f(6.01), nil)}
			Expect(v.InvalidRatio(items)).To(Equal(0.0))
		})
	})
})
