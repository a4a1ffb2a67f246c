package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/kasozi256/schooldesk/configs"
	"github.com/kasozi256/schooldesk/database"
	"github.com/kasozi256/schooldesk/models"
)

// GenerateReceipt renders a payment receipt PDF and uploads it, then
// stores the URL on the payment record. Runs in the background after a
// payment is recorded; a failure leaves the payment valid without a
// receipt document.
func GenerateReceipt(payment models.FeePayment, record models.FeeRecord, student models.Student, tenant models.Tenant) {
	htmlData, err := renderReceiptHTML(payment, record, student, tenant)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML for payment %s: %v", payment.ID, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	uploadURL, err := uploadReceiptPDF(pdfBytes, payment.ReceiptNumber)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt %s: %v", payment.ReceiptNumber, err)
		return
	}

	if err := database.DB.Model(&models.FeePayment{}).Where("id = ?", payment.ID).
		Update("receipt_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to store receipt URL for payment %s: %v", payment.ID, err)
		return
	}
	log.Printf("✅ Generated receipt %s for payment %s.", payment.ReceiptNumber, payment.ID)
}

func renderReceiptHTML(payment models.FeePayment, record models.FeeRecord, student models.Student, tenant models.Tenant) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		SchoolName    string
		ReceiptNumber string
		StudentName   string
		ClassName     string
		Term          string
		Year          int
		Amount        string
		Method        string
		Balance       string
		IssuedAt      string
	}{
		SchoolName:    tenant.Name,
		ReceiptNumber: payment.ReceiptNumber,
		StudentName:   student.FullName(),
		ClassName:     student.ClassName,
		Term:          record.Term,
		Year:          record.Year,
		Amount:        fmt.Sprintf("%.2f", payment.Amount),
		Method:        payment.Method,
		Balance:       fmt.Sprintf("%.2f", record.Balance()),
		IssuedAt:      time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceiptPDF(fileBytes []byte, receiptNumber string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", receiptNumber, uuid.New().String()),
		Folder:       "schooldesk_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
