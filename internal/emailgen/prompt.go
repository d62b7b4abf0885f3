// Package emailgen drafts client follow-up emails with a language model.
package emailgen

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every drafting request.
const SystemPrompt = "You are a professional email writer. Generate clear, concise, and professional emails. Always include a subject line at the beginning."

// Email type slugs accepted from the UI.
const (
	TypeFollowUp       = "follow-up"
	TypeCheckIn        = "check-in"
	TypeProposal       = "proposal"
	TypeMeetingRequest = "meeting-request"
	TypeProjectUpdate  = "project-update"
	TypeOther          = "other"
)

var typeLabels = map[string]string{
	TypeFollowUp:       "Follow-up Email",
	TypeCheckIn:        "Check-in Email",
	TypeProposal:       "Proposal Follow-up",
	TypeMeetingRequest: "Meeting Request",
	TypeProjectUpdate:  "Project Update",
}

var typeInstructions = map[string]string{
	"Follow-up Email":    "Write a professional follow-up email to check on the status of our previous discussion or project.",
	"Check-in Email":     "Write a friendly check-in email to maintain the relationship and see how they're doing.",
	"Proposal Follow-up": "Write a follow-up email regarding a proposal we sent, asking for feedback or next steps.",
	"Meeting Request":    "Write a professional email requesting a meeting to discuss business opportunities.",
	"Project Update":     "Write an email providing a project update and next steps.",
}

// ResolveType maps a slug or label to the label used in the prompt. "other"
// resolves to customType, or "general" when that is empty.
func ResolveType(emailType, customType string) string {
	emailType = strings.TrimSpace(emailType)
	if emailType == TypeOther {
		if c := strings.TrimSpace(customType); c != "" {
			return c
		}
		return "general"
	}
	if label, ok := typeLabels[emailType]; ok {
		return label
	}
	return emailType
}

// Request describes the client an email is drafted for.
type Request struct {
	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	ClientCompany string `json:"clientCompany"`
	EmailType     string `json:"emailType"`
	CustomType    string `json:"customType"`
	ClientNotes   string `json:"clientNotes"`
}

// Validate reports ErrMissingFields when name, email or type is blank.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" || strings.TrimSpace(r.ClientEmail) == "" || strings.TrimSpace(r.EmailType) == "" {
		return ErrMissingFields
	}
	return nil
}

// BuildPrompt renders the user prompt for r.
func BuildPrompt(r Request) string {
	kind := ResolveType(r.EmailType, r.CustomType)
	company := r.ClientCompany
	if strings.TrimSpace(company) == "" {
		company = "N/A"
	}

	var b strings.Builder
	b.WriteString("Generate a professional email for the following client:\n\n")
	b.WriteString("Client Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", r.ClientName)
	fmt.Fprintf(&b, "- Company: %s\n", company)
	if notes := strings.TrimSpace(r.ClientNotes); notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", notes)
	}
	fmt.Fprintf(&b, "- Email Type: %s\n\n", kind)

	if instr, ok := typeInstructions[kind]; ok {
		b.WriteString(instr)
	} else {
		fmt.Fprintf(&b, "Write a professional %s email.", strings.ToLower(kind))
	}
	b.WriteString(`

Requirements:
- Start with "Subject: [email subject]"
- Keep it professional but friendly
- Make it personalized using the client information
- Keep it concise (2-3 short paragraphs)
- Include a clear call to action
- End with "Best regards," and leave [Your Name] as placeholder
- Do not include any placeholder text like [Your Company] or [Your Title]

Generate the email:`)
	return b.String()
}
