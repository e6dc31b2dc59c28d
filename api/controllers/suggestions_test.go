package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/internal/suggestions"
	"github.com/retailops-labs/retailops-backend/pkg/db/models"
	"github.com/retailops-labs/retailops-backend/pkg/enums"
	"github.com/retailops-labs/retailops-backend/pkg/pagination"
)

type testSuggestionService struct {
	listFn     func(ctx context.Context, tenantID uuid.UUID, filter suggestions.ListFilter, params pagination.Params) (*suggestions.Page, error)
	decideFn   func(ctx context.Context, input suggestions.DecideInput) (*models.RebalanceSuggestion, error)
	executedFn func(ctx context.Context, tenantID, suggestionID, actorID uuid.UUID) (*models.RebalanceSuggestion, error)
}

func (s *testSuggestionService) List(ctx context.Context, tenantID uuid.UUID, filter suggestions.ListFilter, params pagination.Params) (*suggestions.Page, error) {
	if s.listFn != nil {
		return s.listFn(ctx, tenantID, filter, params)
	}
	return &suggestions.Page{}, nil
}

func (s *testSuggestionService) Decide(ctx context.Context, input suggestions.DecideInput) (*models.RebalanceSuggestion, error) {
	if s.decideFn != nil {
		return s.decideFn(ctx, input)
	}
	return nil, nil
}

func (s *testSuggestionService) MarkExecuted(ctx context.Context, tenantID, suggestionID, actorID uuid.UUID) (*models.RebalanceSuggestion, error) {
	if s.executedFn != nil {
		return s.executedFn(ctx, tenantID, suggestionID, actorID)
	}
	return nil, nil
}

func TestListSuggestionsParsesFilters(t *testing.T) {
	tenantID := uuid.New()
	runID := uuid.New()
	svc := &testSuggestionService{
		listFn: func(ctx context.Context, tid uuid.UUID, filter suggestions.ListFilter, params pagination.Params) (*suggestions.Page, error) {
			if tid != tenantID {
				t.Fatalf("unexpected tenant %s", tid)
			}
			if filter.Status == nil || *filter.Status != enums.SuggestionStatusPending {
				t.Fatalf("status filter not parsed: %+v", filter.Status)
			}
			if filter.Priority == nil || *filter.Priority != enums.PriorityP1 {
				t.Fatalf("priority filter not parsed: %+v", filter.Priority)
			}
			if filter.RunID == nil || *filter.RunID != runID {
				t.Fatalf("run filter not parsed: %+v", filter.RunID)
			}
			return &suggestions.Page{Suggestions: []models.RebalanceSuggestion{{ID: uuid.New()}}, NextCursor: ""}, nil
		},
	}

	url := "/api/v1/suggestions?status=pending&priority=P1&run_id=" + runID.String()
	req := authedRequest(http.MethodGet, url, nil, tenantID, uuid.New())
	resp := httptest.NewRecorder()
	ListSuggestions(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data suggestionListResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestListSuggestionsRejectsBadStatus(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/suggestions?status=maybe", nil, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	ListSuggestions(&testSuggestionService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDecideSuggestionForwardsDecision(t *testing.T) {
	tenantID := uuid.New()
	operatorID := uuid.New()
	suggestionID := uuid.New()

	svc := &testSuggestionService{
		decideFn: func(ctx context.Context, input suggestions.DecideInput) (*models.RebalanceSuggestion, error) {
			if input.TenantID != tenantID || input.SuggestionID != suggestionID {
				t.Fatalf("unexpected scope %+v", input)
			}
			if input.Action != suggestions.DecisionApprove {
				t.Fatalf("unexpected action %s", input.Action)
			}
			if input.ActorID != operatorID {
				t.Fatalf("unexpected actor %s", input.ActorID)
			}
			if input.QtyOverride == nil || *input.QtyOverride != 4 {
				t.Fatalf("qty override not forwarded: %v", input.QtyOverride)
			}
			return &models.RebalanceSuggestion{ID: suggestionID, Status: enums.SuggestionStatusApproved}, nil
		},
	}

	body := strings.NewReader(`{"action":"approve","qty_override":4}`)
	req := authedRequest(http.MethodPost, "/api/v1/suggestions/"+suggestionID.String()+"/decision", body, tenantID, operatorID)
	req = withURLParams(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	DecideSuggestion(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDecideSuggestionRejectsUnknownAction(t *testing.T) {
	suggestionID := uuid.New()
	body := strings.NewReader(`{"action":"defer"}`)
	req := authedRequest(http.MethodPost, "/api/v1/suggestions/"+suggestionID.String()+"/decision", body, uuid.New(), uuid.New())
	req = withURLParams(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	DecideSuggestion(&testSuggestionService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDecideSuggestionRejectsUnknownFields(t *testing.T) {
	suggestionID := uuid.New()
	body := strings.NewReader(`{"action":"approve","quantity":4}`)
	req := authedRequest(http.MethodPost, "/api/v1/suggestions/"+suggestionID.String()+"/decision", body, uuid.New(), uuid.New())
	req = withURLParams(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	DecideSuggestion(&testSuggestionService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMarkSuggestionExecuted(t *testing.T) {
	tenantID := uuid.New()
	operatorID := uuid.New()
	suggestionID := uuid.New()
	called := false

	svc := &testSuggestionService{
		executedFn: func(ctx context.Context, tid, sid, aid uuid.UUID) (*models.RebalanceSuggestion, error) {
			called = true
			if tid != tenantID || sid != suggestionID || aid != operatorID {
				t.Fatalf("unexpected scope %s/%s/%s", tid, sid, aid)
			}
			return &models.RebalanceSuggestion{ID: suggestionID, Status: enums.SuggestionStatusExecuted}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/suggestions/"+suggestionID.String()+"/executed", nil, tenantID, operatorID)
	req = withURLParams(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	MarkSuggestionExecuted(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}
