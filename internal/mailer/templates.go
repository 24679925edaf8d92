package mailer

import (
	"context"
	"fmt"
)

// SendPasswordResetEmail delivers a reset token to an account holder.
func SendPasswordResetEmail(ctx context.Context, s Sender, to, token string) bool {
	body := fmt.Sprintf(`
        <h2>Password Reset</h2>
        <p>Use the code below to set a new password:</p>
        <p><strong>%s</strong></p>
        <p>The code expires in 30 minutes. If you did not request it, ignore this email.</p>`, token)
	return s.Send(ctx, to, "Password Reset Code - Condo Portal", body)
}

// SendApprovalRequestEmail notifies the administrator that a manager
// registration is waiting for approval.
func SendApprovalRequestEmail(ctx context.Context, s Sender, adminEmail, name, username, email string) bool {
	body := fmt.Sprintf(`
        <h2>Manager Registration Pending</h2>
        <p>A new manager account is waiting for approval:</p>
        <p><strong>Name:</strong> %s</p>
        <p><strong>Login:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>`, name, username, email)
	return s.Send(ctx, adminEmail, "Manager Approval Request - Condo Portal", body)
}

// SendCredentialsEmail delivers initial credentials to a staff-created
// account. The user must change the password on first access.
func SendCredentialsEmail(ctx context.Context, s Sender, to, login, initialPassword string) bool {
	body := fmt.Sprintf(`
        <h2>Welcome to Condo Portal</h2>
        <p>Your access credentials:</p>
        <p><strong>Login:</strong> %s</p>
        <p><strong>Initial password:</strong> %s</p>
        <p>You will be asked to change the password on first access.</p>`, login, initialPassword)
	return s.Send(ctx, to, "Access Credentials - Condo Portal", body)
}
