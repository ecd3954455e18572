package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ria/internal/iou/handler/mocks"
	"ria/internal/iou/models"
	id "ria/pkg/domain"
	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/httputil"
	"ria/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	caller  id.ParticipantID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.caller = id.NewParticipantID()

	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	s.router.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Test-Anonymous") == "" {
					r = r.WithContext(requestcontext.WithParticipantID(r.Context(), s.caller))
				}
				next.ServeHTTP(w, r)
			})
		})
		h.Register(r)
	})
}

func (s *HandlerSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body httputil.ErrorResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func (s *HandlerSuite) sampleIOU() *models.IOU {
	risk := 85
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return &models.IOU{
		ID:          id.NewIOUID(),
		Kind:        models.KindService,
		Description: "Bike repair",
		Value:       decimal.NewFromInt(450),
		IssuerID:    s.caller,
		DueDate:     now.Add(7 * 24 * time.Hour),
		Status:      models.StatusOutstanding,
		RiskScore:   &risk,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
}

const issueBody = `{"kind":"service","description":"  Bike repair ","value":"450","due_date":"2026-05-08T09:00:00Z"%s}`

func (s *HandlerSuite) TestIssue() {
	s.Run("supplied risk score", func() {
		iou := s.sampleIOU()
		s.service.EXPECT().Issue(gomock.Any(), s.caller, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.ParticipantID, d models.Draft, risk *int) (*models.IOU, error) {
				s.Equal("Bike repair", d.Description)
				s.True(decimal.NewFromInt(450).Equal(d.Value))
				s.Require().NotNil(risk)
				s.Equal(85, *risk)
				return iou, nil
			})

		rec := s.do(http.MethodPost, "/ious", strings.Replace(issueBody, "%s", `,"risk_score":85`, 1))
		s.Equal(http.StatusCreated, rec.Code)

		var resp models.Response
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal(iou.ID, resp.ID)
		s.Equal(models.StatusOutstanding, resp.Status)
	})

	s.Run("missing risk score asks the gateway", func() {
		s.service.EXPECT().IssueAssessed(gomock.Any(), s.caller, gomock.Any()).Return(s.sampleIOU(), nil)

		rec := s.do(http.MethodPost, "/ious", strings.Replace(issueBody, "%s", "", 1))
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("gateway unavailable is 503", func() {
		s.service.EXPECT().IssueAssessed(gomock.Any(), s.caller, gomock.Any()).
			Return(nil, dErrors.ScoringUnavailable(context.DeadlineExceeded))

		rec := s.do(http.MethodPost, "/ious", strings.Replace(issueBody, "%s", "", 1))
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.Equal(string(dErrors.CodeScoringUnavailable), s.errorCode(rec))
	})

	s.Run("invalid body never reaches the service", func() {
		rec := s.do(http.MethodPost, "/ious", `{"kind":"service","description":"x","value":"0","due_date":"2026-05-08T09:00:00Z","risk_score":50}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(dErrors.CodeValidation), s.errorCode(rec))

		rec = s.do(http.MethodPost, "/ious", `{"kind":"service","description":"x","value":"5","due_date":"2026-05-08T09:00:00Z","risk_score":150}`)
		s.Equal(http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodPost, "/ious", `not json`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(dErrors.CodeBadRequest), s.errorCode(rec))
	})

	s.Run("anonymous caller", func() {
		req := httptest.NewRequest(http.MethodPost, "/ious", strings.NewReader(strings.Replace(issueBody, "%s", "", 1)))
		req.Header.Set("X-Test-Anonymous", "1")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestAssessAndEnhance() {
	s.service.EXPECT().AssessRisk(gomock.Any(), s.caller, gomock.Any()).Return(77, nil)
	rec := s.do(http.MethodPost, "/ious/assess", `{"kind":"good","description":"Bread","value":"12.50","due_date":"2026-05-08T09:00:00Z"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"risk_score":77}`, rec.Body.String())

	s.service.EXPECT().EnhanceDescription(gomock.Any(), s.caller, "fix bikes").Return("Professional bicycle repair", nil)
	rec = s.do(http.MethodPost, "/ious/enhance", `{"description":" fix bikes "}`)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"description":"Professional bicycle repair"}`, rec.Body.String())
}

func (s *HandlerSuite) TestTransitions() {
	iou := s.sampleIOU()

	s.Run("accept", func() {
		accepted := iou.Clone()
		accepted.Status = models.StatusAccepted
		s.service.EXPECT().Accept(gomock.Any(), iou.ID, s.caller).Return(accepted, nil)

		rec := s.do(http.MethodPost, "/ious/"+iou.ID.String()+"/accept", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"status":"accepted"`)
	})

	s.Run("accept race loser is 409", func() {
		s.service.EXPECT().Accept(gomock.Any(), iou.ID, s.caller).Return(nil, dErrors.InvalidState("iou is not outstanding"))

		rec := s.do(http.MethodPost, "/ious/"+iou.ID.String()+"/accept", "")
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal(string(dErrors.CodeInvalidState), s.errorCode(rec))
	})

	s.Run("fulfill by non-issuer is 403", func() {
		s.service.EXPECT().Fulfill(gomock.Any(), iou.ID, s.caller).Return(nil, dErrors.Forbidden())

		rec := s.do(http.MethodPost, "/ious/"+iou.ID.String()+"/fulfill", "")
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("trust", func() {
		trusted := iou.Clone()
		score := 64
		trusted.TrustScore = &score
		s.service.EXPECT().AssessTrust(gomock.Any(), iou.ID, s.caller).Return(trusted, nil)

		rec := s.do(http.MethodPost, "/ious/"+iou.ID.String()+"/trust", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"trust_score":64`)
	})

	s.Run("malformed id", func() {
		rec := s.do(http.MethodPost, "/ious/nope/fulfill", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestReads() {
	iou := s.sampleIOU()

	s.Run("get", func() {
		s.service.EXPECT().Get(gomock.Any(), iou.ID).Return(iou, nil)
		rec := s.do(http.MethodGet, "/ious/"+iou.ID.String(), "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("list with filters", func() {
		recipient := id.NewParticipantID()
		s.service.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f models.Filter) ([]*models.IOU, error) {
				s.Require().NotNil(f.RecipientID)
				s.Equal(recipient, *f.RecipientID)
				s.Require().NotNil(f.Status)
				s.Equal(models.StatusAccepted, *f.Status)
				s.Nil(f.IssuerID)
				return []*models.IOU{iou}, nil
			})

		rec := s.do(http.MethodGet, "/ious?recipient="+recipient.String()+"&status=Accepted", "")
		s.Equal(http.StatusOK, rec.Code)

		var resp models.ListResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Len(resp.IOUs, 1)
	})

	s.Run("list rejects unknown status", func() {
		rec := s.do(http.MethodGet, "/ious?status=cancelled", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("available", func() {
		s.service.EXPECT().ListAvailable(gomock.Any(), "bike", 20).Return([]*models.IOU{}, nil)
		rec := s.do(http.MethodGet, "/ious/available?q=bike&limit=20", "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"ious":[]}`, rec.Body.String())

		rec = s.do(http.MethodGet, "/ious/available?limit=9000", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
