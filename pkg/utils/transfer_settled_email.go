package utils

import (
	"fmt"
	"time"
)

func SendTransferSettledEmail(to, firstName, amount, reference string, date time.Time) error {
	subject := "Your bank transfer has been completed"

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Transfer Completed</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; color: #333; }
		.container { max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; border-top: 5px solid #0a4d3c; }
		.header { background-color: #0a4d3c; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 20px 18px; font-size: 14px; line-height: 1.6; color: #444; }
		.amount-box { background: #f2fdf6; border: 1px solid #bfe7cb; border-radius: 8px; padding: 12px 14px; margin: 16px 0; text-align: center; }
		.footer { background: #f0f6f2; text-align: center; padding: 14px; font-size: 12px; color: #777; }
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Transfer Completed</h1></div>
			<div class="content">
				<p>Hi %s,<br><br>
				Your bank transfer of ₦<b>%s</b> has been confirmed by the bank and is now complete.</p>
				<div class="amount-box">
					<h3>₦%s Sent</h3>
					<p>Reference: %s</p>
					<p>Date: %s</p>
				</div>
				<p>You can view this transaction in your wallet history on <b>KudiPay</b>.</p>
			</div>
			<div class="footer">&copy; %d <b>KudiPay</b></div>
		</div>
	</body>
	</html>
	`, firstName, amount, amount, reference, date.Format("3:04 PM, Jan 2 2006"), time.Now().Year())

	return SendEmail(to, subject, body)
}
