package document_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/document"
)

var _ = Describe("Extractor", func() {
	var extractor document.Extractor

	It("reads plain text", func() {
		text, err := extractor.Extract(writeFile("a.txt", "  Article 1.\n"), document.MimeText)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Article 1."))
	})

	It("reads docx paragraphs and unescapes entities", func() {
		path := writeDOCX("a.docx",
			`<w:p><w:r><w:t>Bail &amp; loyer</w:t></w:r></w:p>`+
				`<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>paragraphe</w:t></w:r></w:p>`)

		text, err := extractor.Extract(path, document.MimeDOCX)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Bail & loyer\nSecond paragraphe"))
	})

	It("reads legacy doc files only when they are OOXML inside", func() {
		path := writeDOCX("a.doc", `<w:p><w:r><w:t>ok</w:t></w:r></w:p>`)
		text, err := extractor.Extract(path, document.MimeDOC)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("ok"))

		_, err = extractor.Extract(writeFile("b.doc", "\xd0\xcf\x11\xe0 binary"), document.MimeDOC)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(400))
	})

	It("names the unsupported type", func() {
		_, err := extractor.Extract(writeFile("a.png", "x"), "image/png")
		Expect(err).To(MatchError(ContainSubstring("image/png")))
	})

	It("reports unreadable pdfs as a client error", func() {
		_, err := extractor.Extract(writeFile("a.pdf", "not a pdf"), document.MimePDF)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeUnsupportedFile))
	})

	It("falls back to the extension for generic content types", func() {
		Expect(document.ResolveContentType("application/octet-stream", "Contrat.DOCX")).To(Equal(document.MimeDOCX))
		Expect(document.ResolveContentType("", "notes.txt")).To(Equal(document.MimeText))
		Expect(document.ResolveContentType("application/pdf", "x.txt")).To(Equal(document.MimePDF))
	})
})
