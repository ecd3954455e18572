package audit

import (
	"time"

	"github.com/google/uuid"

	id "ria/pkg/domain"
)

// Event records one ledger or governance action. It is transport-agnostic so
// the store and the Kafka sink see the same value.
type Event struct {
	ID            uuid.UUID         `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Action        Action            `json:"action"`
	ParticipantID id.ParticipantID  `json:"participant_id"`
	Subject       string            `json:"subject"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

type Action string

const (
	ActionIOUIssued         Action = "iou_issued"
	ActionIOUAccepted       Action = "iou_accepted"
	ActionIOUTrustAssessed  Action = "iou_trust_assessed"
	ActionIOUFulfilled      Action = "iou_fulfilled"
	ActionIOUExpired        Action = "iou_expired"
	ActionSettlementApplied Action = "settlement_applied"
	ActionSettlementFailed  Action = "settlement_failed"
	ActionProposalSubmitted Action = "proposal_submitted"
	ActionVoteCast          Action = "vote_cast"
	ActionProposalClosed    Action = "proposal_closed"
)

// AttrClient holds the user agent label of the request that caused the event.
const AttrClient = "client"

// IsSettlement reports whether the action changes or attempts to change a
// reputation vector.
func (a Action) IsSettlement() bool {
	return a == ActionSettlementApplied || a == ActionSettlementFailed
}
