package storage

import (
	"fmt"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
)

// ReceiptHTML renders the hosted receipt document for a settled invoice.
func ReceiptHTML(user *models.User, inv *models.Invoice, p *models.Payment, res *models.Reservation) []byte {
	paidAt := ""
	if p.ProcessedAt != nil {
		paidAt = p.ProcessedAt.Format("02 Jan 2006 15:04 MST")
	}

	stay := ""
	if res != nil {
		stay = fmt.Sprintf(`
			<tr><td style="padding: 6px 0;">Hotel</td><td style="padding: 6px 0; text-align: right;">%s</td></tr>
			<tr><td style="padding: 6px 0;">Room</td><td style="padding: 6px 0; text-align: right;">%s</td></tr>
			<tr><td style="padding: 6px 0;">Stay</td><td style="padding: 6px 0; text-align: right;">%s &ndash; %s (%d nights)</td></tr>`,
			res.HotelName,
			res.RoomType,
			res.CheckIn.Format("02 Jan 2006"),
			res.CheckOut.Format("02 Jan 2006"),
			res.Nights,
		)
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Receipt %s</title>
</head>
<body style="margin: 0; padding: 40px; font-family: Arial, sans-serif; background-color: #ffffff; color: #333;">
	<div style="max-width: 560px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 8px; padding: 32px;">
		<h1 style="margin: 0 0 4px 0; font-size: 22px;">Gaith Tours</h1>
		<p style="margin: 0 0 24px 0; color: #666;">Payment receipt</p>
		<table width="100%%" cellpadding="0" cellspacing="0" style="font-size: 14px;">
			<tr><td style="padding: 6px 0;">Invoice</td><td style="padding: 6px 0; text-align: right;"><strong>%s</strong></td></tr>
			<tr><td style="padding: 6px 0;">Billed to</td><td style="padding: 6px 0; text-align: right;">%s</td></tr>
			<tr><td style="padding: 6px 0;">Paid at</td><td style="padding: 6px 0; text-align: right;">%s</td></tr>
			<tr><td style="padding: 6px 0;">Payment method</td><td style="padding: 6px 0; text-align: right;">%s</td></tr>
			<tr><td style="padding: 6px 0;">Reference</td><td style="padding: 6px 0; text-align: right;">%s</td></tr>%s
			<tr><td colspan="2" style="border-top: 1px solid #e0e0e0; padding-top: 16px;"></td></tr>
			<tr>
				<td style="padding: 6px 0; font-size: 16px;"><strong>Total paid</strong></td>
				<td style="padding: 6px 0; text-align: right; font-size: 16px;"><strong>%.2f %s</strong></td>
			</tr>
		</table>
	</div>
</body>
</html>`,
		inv.InvoiceNumber,
		inv.InvoiceNumber,
		user.FullName,
		paidAt,
		p.Method,
		p.TransactionID,
		stay,
		float64(inv.Amount)/100,
		inv.Currency,
	)

	return []byte(html)
}
