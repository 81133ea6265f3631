package history

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

func TestHistory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "History Suite")
}

func summaryWith(total, ok int) entity.BatchSummary {
	return entity.BatchSummary{
		TotalFiles: total,
		Successful: ok,
		Failed:     total - ok,
		Timestamp:  time.Now().UTC(),
	}
}

var _ = Describe("Store", func() {
	var store *Store

	BeforeEach(func() {
		var err error
		store, err = NewStore(filepath.Join(GinkgoT().TempDir(), "history.db"), nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { Expect(store.Close()).To(Succeed()) })
	})

	It("round-trips a saved batch", func() {
		savings := entity.SavingsReport{
			TopItems: []entity.SavingsItem{{Name: "tomatoes", CurrentPrice: 13.5}},
			Currency: "AED",
		}
		id, err := store.SaveBatch(summaryWith(3, 2), nil, savings)
		Expect(err).NotTo(HaveOccurred())
		Expect(id).NotTo(BeEmpty())

		rec, err := store.GetBatch(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Summary.TotalFiles).To(Equal(3))
		Expect(rec.Savings.TopItems).To(HaveLen(1))
		Expect(rec.CreatedAt).NotTo(BeZero())
	})

	It("lists batches newest first", func() {
		first, err := store.SaveBatch(summaryWith(1, 1), nil, entity.SavingsReport{})
		Expect(err).NotTo(HaveOccurred())
		time.Sleep(2 * time.Millisecond)
		second, err := store.SaveBatch(summaryWith(2, 1), nil, entity.SavingsReport{})
		Expect(err).NotTo(HaveOccurred())

		entries, err := store.ListBatches()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].ID).To(Equal(second))
		Expect(entries[1].ID).To(Equal(first))
		Expect(entries[0].TotalFiles).To(Equal(2))
	})

	It("reports a missing batch as not found", func() {
		_, err := store.GetBatch("no-such-id")
		Expect(err).To(MatchError(ContainSubstring("not found")))
	})

	It("returns an empty list for a fresh store", func() {
		entries, err := store.ListBatches()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})
})
