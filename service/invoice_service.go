package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"storefront/db"
	"storefront/logging"
	"storefront/models"
	"storefront/utils"
)

//go:embed templates/invoice.html
var templateFS embed.FS

// PDFRenderer turns an HTML document into PDF bytes
type PDFRenderer func(ctx context.Context, html string) ([]byte, error)

// InvoiceService renders order invoices as HTML and PDF
type InvoiceService struct {
	orders    *OrderService
	money     utils.Money
	storeName string
	tmpl      *template.Template
	renderPDF PDFRenderer
}

// NewInvoiceService creates a new InvoiceService. chromePath may be empty
// to use detection.
func NewInvoiceService(orders *OrderService, money utils.Money, storeName, chromePath string) (*InvoiceService, error) {
	tmpl, err := template.New("invoice.html").
		Funcs(template.FuncMap{"money": money.Format}).
		ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &InvoiceService{
		orders:    orders,
		money:     money,
		storeName: storeName,
		tmpl:      tmpl,
		renderPDF: ChromePDF(chromePath),
	}, nil
}

// WithPDFRenderer replaces the headless Chrome renderer
func (s *InvoiceService) WithPDFRenderer(r PDFRenderer) *InvoiceService {
	s.renderPDF = r
	return s
}

// RenderHTML renders the invoice of one of the user's orders
func (s *InvoiceService) RenderHTML(ctx context.Context, orderID, userID string) (string, error) {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if err != nil {
		return "", err
	}
	return s.Render(order)
}

// Render executes the invoice template for order
func (s *InvoiceService) Render(order *models.Order) (string, error) {
	date := order.CreatedAt
	if t, err := time.Parse(db.TimeLayout, order.CreatedAt); err == nil {
		date = t.Format("January 2, 2006")
	}

	data := struct {
		StoreName string
		Order     *models.Order
		Date      string
		Status    string
	}{
		StoreName: s.storeName,
		Order:     order,
		Date:      date,
		Status:    models.OrderStatusName(order.Status),
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF renders the invoice and prints it to PDF
func (s *InvoiceService) GeneratePDF(ctx context.Context, orderID, userID string) ([]byte, error) {
	html, err := s.RenderHTML(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	logging.Sugar.Infof("🖨️  GenerateInvoicePDF: order=%s", orderID)
	return s.renderPDF(ctx, html)
}

// detectChromePath detects the path to Chrome/Chromium executable.
// Checks the configured path first, then common installation paths.
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ChromePDF prints HTML to an A4 PDF with headless Chrome
func ChromePDF(chromePath string) PDFRenderer {
	return func(ctx context.Context, html string) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox, // Required for running in Docker/containers
		)
		if path := detectChromePath(chromePath); path != "" {
			opts = append(opts, chromedp.ExecPath(path))
		}
		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
		defer allocCancel()

		chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
		defer chromedpCancel()

		var pdfBuf []byte
		err := chromedp.Run(chromedpCtx,
			chromedp.Navigate("about:blank"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				tree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return err
				}
				return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
			}),
			chromedp.WaitReady("body"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				var err error
				// A4 = 8.27" x 11.69"
				pdfBuf, _, err = page.PrintToPDF().
					WithPrintBackground(true).
					WithPaperWidth(8.27).
					WithPaperHeight(11.69).
					WithPreferCSSPageSize(true).
					Do(ctx)
				return err
			}),
		)
		if err != nil {
			logging.Sugar.Errorf("❌ Error generating PDF: %v", err)
			return nil, fmt.Errorf("failed to generate PDF: %w", err)
		}
		return pdfBuf, nil
	}
}
