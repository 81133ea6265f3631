package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

func TestExport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Export Suite")
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func sampleSummary() entity.BatchSummary {
	return entity.BatchSummary{
		TotalFiles: 2,
		Successful: 1,
		Failed:     1,
		TotalTime:  3.5,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Results: []entity.ExtractionResult{
			{
				Filename:       "inv1.pdf",
				Success:        true,
				ProcessingTime: 2.0,
				ModelUsed:      "fake-vision-1",
				Invoice: &entity.InvoiceRecord{
					InvoiceNumber: str("INV-100"),
					VendorName:    str("Fresh Farms"),
					Currency:      str("AED"),
					TotalAmount:   f64(58.5),
					Items: []entity.LineItem{
						{Description: "tomatoes", Quantity: f64(2), UnitPrice: f64(4.5), Total: f64(9)},
						{Description: "onions", Quantity: f64(3), UnitPrice: f64(1.5), Total: f64(4.5)},
					},
				},
			},
			{
				Filename:       "inv2.pdf",
				Success:        false,
				Error:          "upstream 529",
				ProcessingTime: 1.5,
				ModelUsed:      "fake-vision-1",
			},
		},
	}
}

var _ = Describe("Service", func() {
	var (
		dir string
		svc *Service
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		svc, err = NewService(dir, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	readCSV := func(path string) [][]string {
		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		return rows
	}

	Describe("ExportAll", func() {
		It("writes items, summary and JSON artifacts", func() {
			files, err := svc.ExportAll(sampleSummary(), nil, entity.SavingsReport{})
			Expect(err).NotTo(HaveOccurred())

			items := readCSV(files.ItemsCSV)
			// header + one row per line item of the successful invoice.
			Expect(items).To(HaveLen(3))
			Expect(items[0][0]).To(Equal("filename"))
			Expect(items[1][7]).To(Equal("tomatoes"))
			Expect(items[2][7]).To(Equal("onions"))
			Expect(items[1][1]).To(Equal("INV-100"))

			summary := readCSV(files.SummaryCSV)
			Expect(summary).To(HaveLen(3))
			Expect(summary[1][1]).To(Equal("true"))
			Expect(summary[2][1]).To(Equal("false"))
			Expect(summary[2][4]).To(Equal("upstream 529"))

			Expect(files.ResultsJSON).To(ContainSubstring("batch_results_20250601_120000.json"))
			data, err := os.ReadFile(files.ResultsJSON)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"total_files": 2`))
		})

		It("emits a metadata-only row for an itemless invoice", func() {
			s := sampleSummary()
			s.Results = s.Results[:1]
			s.Results[0].Invoice.Items = nil
			files, err := svc.ExportAll(s, nil, entity.SavingsReport{})
			Expect(err).NotTo(HaveOccurred())
			items := readCSV(files.ItemsCSV)
			Expect(items).To(HaveLen(2))
			Expect(items[1][0]).To(Equal("inv1.pdf"))
			Expect(items[1][7]).To(BeEmpty())
		})

		It("writes workbooks only when aggregates exist", func() {
			master := []entity.MasterItem{
				{Description: "tomatoes", TotalQuantity: 5, Occurrences: 2, Unit: str("kg")},
			}
			savings := entity.SavingsReport{
				TopItems: []entity.SavingsItem{{Name: "tomatoes", CurrentPrice: 13.5}},
				Currency: "AED",
			}
			files, err := svc.ExportAll(sampleSummary(), master, savings)
			Expect(err).NotTo(HaveOccurred())
			Expect(files.MasterXLSX).To(BeAnExistingFile())
			Expect(files.SavingsXLSX).To(BeAnExistingFile())

			empty, err := svc.ExportAll(sampleSummary(), nil, entity.SavingsReport{})
			Expect(err).NotTo(HaveOccurred())
			Expect(empty.MasterXLSX).To(BeEmpty())
			Expect(empty.SavingsXLSX).To(BeEmpty())
		})
	})

	Describe("ListOutputs", func() {
		It("buckets artifacts by extension, newest first", func() {
			_, err := svc.ExportAll(sampleSummary(), nil, entity.SavingsReport{})
			Expect(err).NotTo(HaveOccurred())
			csvs, jsons, xlsxs, err := svc.ListOutputs()
			Expect(err).NotTo(HaveOccurred())
			Expect(csvs).To(HaveLen(2))
			Expect(jsons).To(HaveLen(1))
			Expect(xlsxs).To(BeEmpty())
		})
	})

	Describe("ResolvePath", func() {
		It("serves only plain filenames inside the output dir", func() {
			files, err := svc.ExportAll(sampleSummary(), nil, entity.SavingsReport{})
			Expect(err).NotTo(HaveOccurred())

			path, err := svc.ResolvePath(filepath.Base(files.ItemsCSV))
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(BeAnExistingFile())

			_, err = svc.ResolvePath("../secrets.txt")
			Expect(err).To(HaveOccurred())
			_, err = svc.ResolvePath("missing.csv")
			Expect(err).To(HaveOccurred())
		})
	})
})
