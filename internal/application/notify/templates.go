package notify

import "fmt"

func OrganizationRequested(adminEmail, orgName, orgEmail string) Message {
	return Message{
		To:      adminEmail,
		Subject: "New Organization Request",
		Body:    fmt.Sprintf("New organization request: %s\nContact: %s", orgName, orgEmail),
	}
}

func OrganizationApproved(orgEmail, tempPassword string) Message {
	return Message{
		To:      orgEmail,
		Subject: "Organization Registration Approved",
		Body: fmt.Sprintf("Your organization registration has been approved.\n"+
			"Here is your temporary login password: %s\n"+
			"Please change it after your first login.", tempPassword),
	}
}

func OrganizationRejected(orgEmail, reason string) Message {
	return Message{
		To:      orgEmail,
		Subject: "Organization Registration Rejected",
		Body:    fmt.Sprintf("Your organization registration has been rejected.\nReason: %s", reason),
	}
}

func PasswordReset(email, resetURL string) Message {
	return Message{
		To:      email,
		Subject: "Password Reset",
		Body:    fmt.Sprintf("Click the following link to reset your password: %s\nIf you did not ask for this, ignore this email.", resetURL),
	}
}

// AdminCredentials carries the password only when the server generated it.
func AdminCredentials(email, tempPassword string) Message {
	body := fmt.Sprintf("Your admin registration is successful.\nEmail: %s", email)
	if tempPassword != "" {
		body += fmt.Sprintf("\nTemporary Password: %s", tempPassword)
	} else {
		body += "\nUse the password chosen at registration to sign in."
	}
	return Message{To: email, Subject: "Admin Registration Successful", Body: body}
}

func AdminRegisteredNotice(superadminEmail, adminEmail, role string) Message {
	return Message{
		To:      superadminEmail,
		Subject: "Admin Registration Details",
		Body:    fmt.Sprintf("An admin has been registered.\nEmail: %s\nRole: %s", adminEmail, role),
	}
}
