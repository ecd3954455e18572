package scoring

import (
	"fmt"
	"strings"
)

func assessmentPrompt(p Purpose, d Draft) string {
	var question string
	switch p {
	case PurposeTrust:
		question = "How confident should the issuer be that this recipient will honor their side of the exchange?"
	default:
		question = "How confident should a recipient be that this issuer will deliver on this IOU?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Assess this peer-to-peer IOU.\n\n")
	fmt.Fprintf(&b, "Type: %s\n", d.Kind)
	fmt.Fprintf(&b, "Description: %q\n", d.Description)
	fmt.Fprintf(&b, "Value: %s\n", d.Value.StringFixed(2))
	fmt.Fprintf(&b, "Due date: %s\n", d.DueDate.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Participant overall reputation: %.2f/100\n\n", d.SubjectOverall)
	fmt.Fprintf(&b, "%s\n", question)
	b.WriteString("Respond with a single integer confidence score from 0 to 100.")
	return b.String()
}

func enhancePrompt(description string) string {
	return fmt.Sprintf("Enhance this IOU service/good description to be more professional and detailed:\n\n"+
		"Original: %q\n\n"+
		"Provide an enhanced version that is clear, professional, and includes relevant details that would help build trust between parties.",
		description)
}

func insightPrompt(p ReputationProfile) string {
	return fmt.Sprintf("Analyze this user's reputation profile and provide actionable insights:\n\n"+
		"Overall Reputation: %.2f/100\n"+
		"Tailoring: %.2f/100\n"+
		"Punctuality: %.2f/100\n"+
		"Financial Trust: %.2f/100\n"+
		"Community Contribution: %.2f/100\n\n"+
		"Verifiable Credentials: %d verified credentials\n\n"+
		"Provide a brief, actionable analysis focusing on strengths and areas for improvement.",
		p.Overall, p.Tailoring, p.Punctuality, p.FinancialTrust, p.CommunityContribution, p.VerifiedCredentials)
}
