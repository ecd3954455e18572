package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/suite"

	"ria/internal/audit"
	govHandler "ria/internal/governance/handler"
	govService "ria/internal/governance/service"
	govStore "ria/internal/governance/store"
	iouAdapters "ria/internal/iou/adapters"
	iouHandler "ria/internal/iou/handler"
	iouModels "ria/internal/iou/models"
	iouService "ria/internal/iou/service"
	iouStore "ria/internal/iou/store"
	jwttoken "ria/internal/jwt_token"
	"ria/internal/platform/health"
	repHandler "ria/internal/reputation/handler"
	repModels "ria/internal/reputation/models"
	repService "ria/internal/reputation/service"
	repStore "ria/internal/reputation/store"
	id "ria/pkg/domain"
	"ria/pkg/platform/middleware/request"
)

// RouterSuite drives the assembled router over in-memory services.
type RouterSuite struct {
	suite.Suite
	server *httptest.Server
	tokens *jwttoken.JWTService
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	publisher := audit.NewPublisher(audit.NewInMemoryStore(), audit.WithPublisherLogger(logger))

	rep, err := repService.New(repStore.New(), repStore.NewInMemoryLedger(), repService.DefaultConfig(), repService.WithLogger(logger))
	s.Require().NoError(err)
	ious, err := iouService.New(iouStore.New(), iouAdapters.NewReputationAdapter(rep),
		iouService.WithAuditor(publisher),
		iouService.WithLogger(logger),
	)
	s.Require().NoError(err)
	gov, err := govService.New(govStore.New(), govService.WithAuditor(publisher), govService.WithLogger(logger))
	s.Require().NoError(err)

	s.tokens = jwttoken.NewJWTService("router-test-key", "ria", time.Hour)
	s.server = httptest.NewServer(NewRouter(Deps{
		Logger:         logger,
		Authenticator:  s.tokens,
		Metrics:        request.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Health:         health.New("test"),
		Reputation:     repHandler.New(rep, logger),
		IOUs:           iouHandler.New(ious, logger),
		Governance:     govHandler.New(gov, logger),
		Activity:       audit.NewHandler(publisher, logger),
	}))
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) token(participantID id.ParticipantID) string {
	token, err := s.tokens.GenerateToken(context.Background(), participantID)
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) call(method, path, token, body string, out any) int {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *RouterSuite) TestProbes() {
	s.Equal(http.StatusOK, s.call(http.MethodGet, "/health/live", "", "", nil))
	s.Equal(http.StatusOK, s.call(http.MethodGet, "/health/ready", "", "", nil))
	s.Equal(http.StatusOK, s.call(http.MethodGet, "/metrics", "", "", nil))
}

func (s *RouterSuite) TestMutationsRequireToken() {
	s.Equal(http.StatusUnauthorized, s.call(http.MethodPost, "/ious", "", `{}`, nil))
	s.Equal(http.StatusUnauthorized, s.call(http.MethodPost, "/proposals", "not-a-jwt", `{}`, nil))
	s.Equal(http.StatusUnauthorized, s.call(http.MethodGet, "/me", "", "", nil))

	var list iouModels.ListResponse
	s.Equal(http.StatusOK, s.call(http.MethodGet, "/ious", "", "", &list), "reads are public")
	s.Empty(list.IOUs)
}

func (s *RouterSuite) TestIOULifecycle() {
	issuer, recipient := id.NewParticipantID(), id.NewParticipantID()
	issuerToken, recipientToken := s.token(issuer), s.token(recipient)

	due := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	var issued iouModels.Response
	s.Require().Equal(http.StatusCreated, s.call(http.MethodPost, "/ious", issuerToken,
		fmt.Sprintf(`{"kind":"service","description":"Bike repair","value":"450","due_date":%q,"risk_score":85}`, due), &issued))
	s.Equal(iouModels.StatusOutstanding, issued.Status)

	var available iouModels.ListResponse
	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, "/ious/available?q=bike", "", "", &available))
	s.Len(available.IOUs, 1)

	path := "/ious/" + issued.ID.String()
	s.Equal(http.StatusForbidden, s.call(http.MethodPost, path+"/accept", issuerToken, "", nil), "issuer cannot accept")

	var accepted iouModels.Response
	s.Require().Equal(http.StatusOK, s.call(http.MethodPost, path+"/accept", recipientToken, "", &accepted))
	s.Equal(iouModels.StatusAccepted, accepted.Status)
	s.Equal(http.StatusConflict, s.call(http.MethodPost, path+"/accept", s.token(id.NewParticipantID()), "", nil))

	s.Equal(http.StatusForbidden, s.call(http.MethodPost, path+"/fulfill", recipientToken, "", nil))
	var fulfilled iouModels.Response
	s.Require().Equal(http.StatusOK, s.call(http.MethodPost, path+"/fulfill", issuerToken, "", &fulfilled))
	s.Equal(iouModels.StatusFulfilled, fulfilled.Status)

	var rep repModels.Reputation
	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, "/participants/"+issuer.String()+"/reputation", "", "", &rep))
	s.Equal(55.0, rep.Punctuality)
	s.Equal(55.0, rep.FinancialTrust)

	var activity struct {
		Events []audit.Event `json:"events"`
	}
	s.Require().Equal(http.StatusOK, s.call(http.MethodGet, "/me/activity", issuerToken, "", &activity))
	actions := make([]audit.Action, 0, len(activity.Events))
	for _, e := range activity.Events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, audit.ActionIOUIssued)
	s.Contains(actions, audit.ActionSettlementApplied)
}

func (s *RouterSuite) TestProposalVoting() {
	proposer := id.NewParticipantID()
	end := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)

	var proposal struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		VotesFor int64  `json:"votes_for"`
	}
	s.Require().Equal(http.StatusCreated, s.call(http.MethodPost, "/proposals", s.token(proposer),
		fmt.Sprintf(`{"title":"Community garden","end_date":%q}`, end), &proposal))
	s.Equal("active", proposal.Status)

	for range 3 {
		s.Require().Equal(http.StatusOK, s.call(http.MethodPost, "/proposals/"+proposal.ID+"/votes",
			s.token(id.NewParticipantID()), `{"direction":"for"}`, &proposal))
	}
	s.Equal(int64(3), proposal.VotesFor)

	s.Equal(http.StatusBadRequest, s.call(http.MethodPost, "/proposals/"+proposal.ID+"/votes",
		s.token(proposer), `{"direction":"maybe"}`, nil))
}
