package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	auction "educoin-engine/internal/auctionService"
	"educoin-engine/internal/repository"
	"educoin-engine/internal/server"
	wallet "educoin-engine/internal/walletLedger"
)

const testPeriod = "2025-1"

// SetupTestRouter initializes the router with an in-memory store for
// integration testing, returning the repo so tests can steer the clock.
func SetupTestRouter() (*gin.Engine, *repository.MemoryRepo) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo(testPeriod, 1)
	auctionSvc := auction.NewAuctionService(repo)
	walletSvc := wallet.NewWalletService(repo)
	router := server.SetupRouter(auctionSvc, walletSvc)
	return router, repo
}

// ExecuteRequestAndParse executes an HTTP request with the given caller
// identity and parses the response envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any, userID, role string) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("X-User-Role", role)
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// AsTeacher executes a request with a teacher identity
func AsTeacher(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, router, method, url, body, "teacher1", "teacher")
}

// AsStudent executes a request with the given student identity
func AsStudent(t *testing.T, router *gin.Engine, studentID, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, router, method, url, body, studentID, "student")
}

// DataOf extracts the data payload from a response envelope
func DataOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
