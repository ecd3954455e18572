// Package main provides a CLI tool for generating participant bearer tokens
// for local development. Tokens are signed with the development key unless
// -key is given and will NOT work against a production deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "ria/internal/jwt_token"
	id "ria/pkg/domain"
	"ria/pkg/requestcontext"
)

const (
	// Matches config.go when JWT_SIGNING_KEY is not set.
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "ria"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token         string            `json:"token"`
	ParticipantID string            `json:"participant_id"`
	ExpiresIn     string            `json:"expires_in"`
	Usage         map[string]string `json:"usage"`
}

func main() {
	participantCmd := flag.NewFlagSet("participant", flag.ExitOnError)
	participant := participantCmd.String("participant-id", "", "Participant ID (UUID). Generated if empty.")
	issuer := participantCmd.String("issuer", defaultIssuer, "Token issuer, must match JWT_ISSUER")
	key := participantCmd.String("key", "", "Signing key; defaults to the development key")
	ttl := participantCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	asJSON := participantCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "participant":
		_ = participantCmd.Parse(os.Args[2:])
		if err := generate(*participant, *issuer, *key, *ttl, *asJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate participant tokens for the ria API

WARNING: Tokens use the development signing key unless -key is set.
         Only use for local development and testing.

Usage:
  tokengen participant [flags]

Examples:
  # Token for a fresh participant
  tokengen participant

  # Token for a known participant, valid for an hour
  tokengen participant -participant-id "550e8400-e29b-41d4-a716-446655440000" -ttl 1h

  # Use the token
  curl -H "Authorization: Bearer $(tokengen participant)" localhost:8080/me`)
}

func generate(rawParticipant, issuer, key string, ttl time.Duration, asJSON bool) error {
	participantID := id.NewParticipantID()
	if rawParticipant != "" {
		parsed, err := id.ParseParticipantID(rawParticipant)
		if err != nil {
			return fmt.Errorf("invalid participant-id: %w", err)
		}
		participantID = parsed
	}
	if key == "" {
		key = devSigningKey
	}

	ctx := requestcontext.WithTime(context.Background(), time.Now().UTC())
	token, err := jwttoken.NewJWTService(key, issuer, ttl).GenerateToken(ctx, participantID)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if !asJSON {
		fmt.Println(token)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenOutput{
		Token:         token,
		ParticipantID: participantID.String(),
		ExpiresIn:     ttl.String(),
		Usage: map[string]string{
			"header": "Authorization: Bearer " + token,
		},
	})
}
