package notification

import (
	"crypto/tls"
	"fmt"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/config"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"github.com/wneessen/go-mail"
)

// EmailClient sends transactional mail over SMTP.
type EmailClient struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewEmailClient builds a client from the loaded app config.
func NewEmailClient() (*EmailClient, error) {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("email client: SMTP_HOST is not set")
	}
	return &EmailClient{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}, nil
}

// SendEmail sends a single HTML message.
func (c *EmailClient) SendEmail(to, subject, htmlBody string) error {
	m := mail.NewMsg()

	if err := m.From(c.from); err != nil {
		return fmt.Errorf("email client: invalid sender %q: %w", c.from, err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("email client: invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(c.host,
		mail.WithPort(c.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.user),
		mail.WithPassword(c.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{
			ServerName: c.host,
		}),
	)
	if err != nil {
		return fmt.Errorf("email client: could not create SMTP client (host=%s port=%d): %w", c.host, c.port, err)
	}

	if err := client.DialAndSend(m); err != nil {
		return fmt.Errorf("email client: could not send mail (host=%s port=%d): %w", c.host, c.port, err)
	}

	return nil
}

// formatAmount renders a minor-unit amount as "123.45 SAR".
func formatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(amount)/100, currency)
}

// paymentConfirmationHTML renders the receipt mail body.
func paymentConfirmationHTML(user *models.User, inv *models.Invoice, p *models.Payment, res *models.Reservation) string {
	paidAt := ""
	if p.ProcessedAt != nil {
		paidAt = p.ProcessedAt.Format("02 Jan 2006 15:04 MST")
	}

	reservationRows := ""
	if res != nil {
		reservationRows = fmt.Sprintf(`
					<tr>
						<td style="padding: 8px 0;"><strong>Hotel:</strong></td>
						<td style="padding: 8px 0; text-align: right;">%s</td>
					</tr>
					<tr>
						<td style="padding: 8px 0;"><strong>Check-in:</strong></td>
						<td style="padding: 8px 0; text-align: right;">%s</td>
					</tr>
					<tr>
						<td style="padding: 8px 0;"><strong>Check-out:</strong></td>
						<td style="padding: 8px 0; text-align: right;">%s</td>
					</tr>
					<tr>
						<td style="padding: 8px 0;"><strong>Guests:</strong></td>
						<td style="padding: 8px 0; text-align: right;">%d</td>
					</tr>`,
			res.HotelName,
			res.CheckIn.Format("02 Jan 2006"),
			res.CheckOut.Format("02 Jan 2006"),
			res.Guests,
		)
	}

	receiptLink := ""
	if inv.ReceiptURL != "" {
		receiptLink = fmt.Sprintf(`
				<p style="margin: 20px 0 0 0; text-align: center;">
					<a href="%s" style="color: #1a7f5a;">View your receipt</a>
				</p>`, inv.ReceiptURL)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Payment Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f4f4f4;">
	<table width="100%%" cellpadding="0" cellspacing="0" style="background-color: #f4f4f4; padding: 20px;">
		<tr>
			<td align="center">
				<table width="600" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; overflow: hidden;">
					<tr>
						<td style="background-color: #1a7f5a; padding: 32px 20px; text-align: center;">
							<h1 style="color: #ffffff; margin: 0; font-size: 26px;">Payment Received</h1>
							<p style="color: #ffffff; margin: 10px 0 0 0; font-size: 15px;">Thank you for booking with Gaith Tours</p>
						</td>
					</tr>
					<tr>
						<td style="padding: 32px 30px;">
							<p style="margin: 0 0 20px 0; color: #333;">Dear %s,</p>
							<p style="margin: 0 0 20px 0; color: #333;">We have received your payment. Here is your confirmation:</p>
							<div style="background-color: #f8f9fa; border-left: 4px solid #1a7f5a; padding: 20px;">
								<table width="100%%" cellpadding="0" cellspacing="0">
									<tr>
										<td style="padding: 8px 0;"><strong>Invoice:</strong></td>
										<td style="padding: 8px 0; text-align: right;">%s</td>
									</tr>
									<tr>
										<td style="padding: 8px 0;"><strong>Amount paid:</strong></td>
										<td style="padding: 8px 0; text-align: right;"><strong>%s</strong></td>
									</tr>
									<tr>
										<td style="padding: 8px 0;"><strong>Paid at:</strong></td>
										<td style="padding: 8px 0; text-align: right;">%s</td>
									</tr>
									<tr>
										<td style="padding: 8px 0;"><strong>Reference:</strong></td>
										<td style="padding: 8px 0; text-align: right;">%s</td>
									</tr>%s
								</table>
							</div>%s
						</td>
					</tr>
					<tr>
						<td style="background-color: #f8f9fa; padding: 24px; text-align: center; border-top: 1px solid #e0e0e0;">
							<p style="margin: 0; color: #999; font-size: 12px;">This is an automated message, please do not reply directly.</p>
						</td>
					</tr>
				</table>
			</td>
		</tr>
	</table>
</body>
</html>`,
		user.FullName,
		inv.InvoiceNumber,
		formatAmount(inv.Amount, inv.Currency),
		paidAt,
		p.TransactionID,
		reservationRows,
		receiptLink,
	)
}
