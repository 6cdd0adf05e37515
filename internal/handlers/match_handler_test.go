package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
	"expensematch/internal/services"
	"expensematch/internal/validator"
)

// --- mock match service ---

type mockMatchService struct {
	getMatchByIDFn        func(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	getPendingProposalsFn func(userID uint, page pagination.PageRequest, sortKey string) (*pagination.PageResponse[services.ProposalItem], error)
	confirmMatchFn        func(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	rejectMatchFn         func(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	createManualMatchFn   func(userID, receiptID, transactionID uint) (*models.ReceiptTransactionMatch, error)
	unmatchFn             func(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	batchApproveFn        func(userID uint, matchIDs []uint, minConfidence float64) (*services.BatchApproveResult, error)
}

func (m *mockMatchService) GetMatchByID(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	if m.getMatchByIDFn != nil {
		return m.getMatchByIDFn(userID, matchID)
	}
	return &models.ReceiptTransactionMatch{}, nil
}

func (m *mockMatchService) GetPendingProposals(userID uint, page pagination.PageRequest, sortKey string) (*pagination.PageResponse[services.ProposalItem], error) {
	if m.getPendingProposalsFn != nil {
		return m.getPendingProposalsFn(userID, page, sortKey)
	}
	resp := pagination.NewPageResponse([]services.ProposalItem{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockMatchService) ConfirmMatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	if m.confirmMatchFn != nil {
		return m.confirmMatchFn(userID, matchID)
	}
	return &models.ReceiptTransactionMatch{}, nil
}

func (m *mockMatchService) RejectMatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	if m.rejectMatchFn != nil {
		return m.rejectMatchFn(userID, matchID)
	}
	return &models.ReceiptTransactionMatch{}, nil
}

func (m *mockMatchService) CreateManualMatch(userID, receiptID, transactionID uint) (*models.ReceiptTransactionMatch, error) {
	if m.createManualMatchFn != nil {
		return m.createManualMatchFn(userID, receiptID, transactionID)
	}
	return &models.ReceiptTransactionMatch{}, nil
}

func (m *mockMatchService) Unmatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	if m.unmatchFn != nil {
		return m.unmatchFn(userID, matchID)
	}
	return &models.ReceiptTransactionMatch{}, nil
}

func (m *mockMatchService) BatchApprove(userID uint, matchIDs []uint, minConfidence float64) (*services.BatchApproveResult, error) {
	if m.batchApproveFn != nil {
		return m.batchApproveFn(userID, matchIDs, minConfidence)
	}
	return &services.BatchApproveResult{}, nil
}

var _ services.MatchServicer = (*mockMatchService)(nil)

// --- mock proposal service ---

type mockProposalService struct {
	generateForReceiptFn func(userID, receiptID uint) (*models.ReceiptTransactionMatch, error)
	generateForUserFn    func(userID uint) (*services.ProposalRunSummary, error)
}

func (m *mockProposalService) GenerateForReceipt(userID, receiptID uint) (*models.ReceiptTransactionMatch, error) {
	if m.generateForReceiptFn != nil {
		return m.generateForReceiptFn(userID, receiptID)
	}
	return nil, nil
}

func (m *mockProposalService) GenerateForUser(userID uint) (*services.ProposalRunSummary, error) {
	if m.generateForUserFn != nil {
		return m.generateForUserFn(userID)
	}
	return &services.ProposalRunSummary{}, nil
}

func (m *mockProposalService) GenerateSweep() error { return nil }

var _ services.ProposalServicer = (*mockProposalService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupMatchRouter(handler *MatchHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.GET("/matches/proposals", handler.GetProposals)
	auth.GET("/matches/:id", handler.GetMatchByID)
	auth.POST("/matches/:id/confirm", handler.ConfirmMatch)
	auth.POST("/matches/:id/reject", handler.RejectMatch)
	auth.POST("/matches/:id/unmatch", handler.Unmatch)
	auth.POST("/matches/manual", handler.CreateManualMatch)
	auth.POST("/matches/batch-approve", handler.BatchApprove)
	auth.POST("/matches/generate", handler.GenerateProposals)
	return r
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestMatchHandler_GetProposals(t *testing.T) {
	t.Run("returns proposals with classification", func(t *testing.T) {
		matchSvc := &mockMatchService{
			getPendingProposalsFn: func(userID uint, page pagination.PageRequest, sortKey string) (*pagination.PageResponse[services.ProposalItem], error) {
				items := []services.ProposalItem{{
					ReceiptTransactionMatch: models.ReceiptTransactionMatch{
						Base:  models.Base{ID: 7},
						Score: 95,
						State: models.MatchStateProposed,
					},
					Tier:           "high",
					AutoApprovable: true,
				}}
				resp := pagination.NewPageResponse(items, 1, 20, 1)
				return &resp, nil
			},
		}
		handler := NewMatchHandler(matchSvc, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "GET", "/matches/proposals?sort=score", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 proposal, got %d", len(data))
		}
		item := data[0].(map[string]interface{})
		if item["tier"] != "high" {
			t.Errorf("expected tier high, got %v", item["tier"])
		}
		if item["auto_approvable"] != true {
			t.Errorf("expected auto_approvable true, got %v", item["auto_approvable"])
		}
	})

	t.Run("rejects unknown sort key", func(t *testing.T) {
		handler := NewMatchHandler(&mockMatchService{}, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "GET", "/matches/proposals?sort=amount", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestMatchHandler_ConfirmMatch(t *testing.T) {
	t.Run("returns confirmed match", func(t *testing.T) {
		matchSvc := &mockMatchService{
			confirmMatchFn: func(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
				return &models.ReceiptTransactionMatch{
					Base:  models.Base{ID: matchID},
					State: models.MatchStateConfirmed,
				}, nil
			},
		}
		handler := NewMatchHandler(matchSvc, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/3/confirm", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		match := result["match"].(map[string]interface{})
		if match["state"] != "confirmed" {
			t.Errorf("expected state confirmed, got %v", match["state"])
		}
	})

	t.Run("maps conflict to 409", func(t *testing.T) {
		matchSvc := &mockMatchService{
			confirmMatchFn: func(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
				return nil, apperrors.ErrMatchConflict
			},
		}
		handler := NewMatchHandler(matchSvc, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/3/confirm", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CONFLICT")
	})

	t.Run("rejects non-numeric id", func(t *testing.T) {
		handler := NewMatchHandler(&mockMatchService{}, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/abc/confirm", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestMatchHandler_CreateManualMatch(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		matchSvc := &mockMatchService{
			createManualMatchFn: func(userID, receiptID, transactionID uint) (*models.ReceiptTransactionMatch, error) {
				return &models.ReceiptTransactionMatch{
					Base:          models.Base{ID: 11},
					ReceiptID:     receiptID,
					TransactionID: transactionID,
					Method:        models.MatchMethodManual,
					State:         models.MatchStateConfirmed,
				}, nil
			},
		}
		handler := NewMatchHandler(matchSvc, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/manual", `{"receipt_id":5,"transaction_id":9}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		match := result["match"].(map[string]interface{})
		if match["method"] != "manual" {
			t.Errorf("expected method manual, got %v", match["method"])
		}
	})

	t.Run("requires both sides", func(t *testing.T) {
		handler := NewMatchHandler(&mockMatchService{}, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/manual", `{"receipt_id":5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestMatchHandler_BatchApprove(t *testing.T) {
	t.Run("returns per-item results", func(t *testing.T) {
		matchSvc := &mockMatchService{
			batchApproveFn: func(userID uint, matchIDs []uint, minConfidence float64) (*services.BatchApproveResult, error) {
				return &services.BatchApproveResult{
					Approved: 1,
					Skipped:  1,
					Results: []services.BatchItemResult{
						{MatchID: 1, Status: "approved"},
						{MatchID: 2, Status: "skipped", Reason: "score 60.0 below threshold 85.0"},
					},
				}, nil
			},
		}
		handler := NewMatchHandler(matchSvc, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/batch-approve", `{"match_ids":[1,2],"min_confidence":85}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["approved"] != float64(1) || result["skipped"] != float64(1) {
			t.Errorf("unexpected summary: %v", result)
		}
		if len(result["results"].([]interface{})) != 2 {
			t.Errorf("expected 2 item results")
		}
	})

	t.Run("requires match ids", func(t *testing.T) {
		handler := NewMatchHandler(&mockMatchService{}, &mockProposalService{})
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/batch-approve", `{"match_ids":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestMatchHandler_GenerateProposals(t *testing.T) {
	t.Run("returns run summary", func(t *testing.T) {
		proposalSvc := &mockProposalService{
			generateForUserFn: func(userID uint) (*services.ProposalRunSummary, error) {
				return &services.ProposalRunSummary{ReceiptsProcessed: 4, Proposed: 2, Reevaluated: 1}, nil
			},
		}
		handler := NewMatchHandler(&mockMatchService{}, proposalSvc)
		r := setupMatchRouter(handler)

		rec := doRequest(r, "POST", "/matches/generate", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		summary := result["summary"].(map[string]interface{})
		if summary["proposed"] != float64(2) {
			t.Errorf("expected 2 proposed, got %v", summary["proposed"])
		}
	})
}
