package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lockpass/internal/audit"
	businessservice "lockpass/internal/business/service"
	businessstore "lockpass/internal/business/store"
	"lockpass/internal/lockoracle"
	"lockpass/internal/session/service"
	sessionstore "lockpass/internal/session/store"
)

const signerHex = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

type stubOracle struct {
	result lockoracle.Result
	err    error
}

func (o *stubOracle) CheckLock(context.Context, common.Address, int64) (lockoracle.Result, error) {
	return o.result, o.err
}

type fixture struct {
	router   chi.Router
	oracle   *stubOracle
	business uuid.UUID
}

func newSessionRouter(t *testing.T) *fixture {
	t.Helper()

	registry := businessservice.New(businessstore.NewInMemory())
	b, err := registry.Create(context.Background(), businessservice.CreateParams{
		Name:               "Demo Coffee",
		DiscountPercent:    15,
		RequiredLockAmount: 5000,
		TTLSeconds:         300,
		TierLabel:          "gold",
	})
	if err != nil {
		t.Fatalf("failed to seed business: %v", err)
	}

	oracle := &stubOracle{
		result: lockoracle.Result{Eligible: true, LockedAmount: "7500", LockedRaw: "7500000000000"},
	}
	svc := service.New(
		sessionstore.NewInMemory(),
		registry,
		oracle,
		audit.NewPublisher(audit.NewInMemoryStore()),
		1,
		service.WithRecoverFunc(func(string, string) (common.Address, error) {
			return common.HexToAddress(signerHex), nil
		}),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return &fixture{router: router, oracle: oracle, business: b.ID}
}

func (f *fixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func (f *fixture) createSession(t *testing.T) SessionCreatedResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/sessions", map[string]string{"businessId": f.business.String()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating session, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[SessionCreatedResponse](t, rec)
}

func TestFullRedemptionFlow(t *testing.T) {
	f := newSessionRouter(t)

	created := f.createSession(t)
	if created.SessionID == uuid.Nil {
		t.Fatalf("expected a session id")
	}
	if created.DiscountPercent != 15 || created.RequiredLockAmount != 5000 {
		t.Fatalf("expected discount terms in create response, got %+v", created)
	}
	if !created.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a future expiry, got %s", created.ExpiresAt)
	}

	chRec := f.do(t, http.MethodGet, "/sessions/"+created.SessionID.String()+"/challenge", nil)
	if chRec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching challenge, got %d", chRec.Code)
	}
	challenge := decode[ChallengeResponse](t, chRec)
	if challenge.Message == "" {
		t.Fatalf("expected challenge message")
	}

	attRec := f.do(t, http.MethodPost, "/attest", map[string]string{
		"sessionId": created.SessionID.String(),
		"signature": "0xdeadbeef",
	})
	if attRec.Code != http.StatusOK {
		t.Fatalf("expected 200 attesting, got %d: %s", attRec.Code, attRec.Body.String())
	}
	attested := decode[AttestResponse](t, attRec)
	if attested.Status != "APPROVED" || attested.Wallet != signerHex {
		t.Fatalf("expected approval for %s, got %+v", signerHex, attested)
	}

	getRec := f.do(t, http.MethodGet, "/sessions/"+created.SessionID.String(), nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching session, got %d", getRec.Code)
	}
	view := decode[SessionResponse](t, getRec)
	if view.Status != "APPROVED" || view.AttestAttempts != 1 {
		t.Fatalf("expected approved session with one attempt, got %+v", view)
	}
	if view.RecoveredAddress != signerHex {
		t.Fatalf("expected recoveredAddress %s on the session view, got %+v", signerHex, view)
	}

	redeemRec := f.do(t, http.MethodPost, "/sessions/"+created.SessionID.String()+"/redeem", nil)
	if redeemRec.Code != http.StatusOK {
		t.Fatalf("expected 200 redeeming, got %d: %s", redeemRec.Code, redeemRec.Body.String())
	}
	redeemed := decode[SessionResponse](t, redeemRec)
	if redeemed.Status != "REDEEMED" || redeemed.RedeemedAt == nil {
		t.Fatalf("expected redeemed session, got %+v", redeemed)
	}

	again := f.do(t, http.MethodPost, "/sessions/"+created.SessionID.String()+"/redeem", nil)
	if again.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double redemption, got %d", again.Code)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	f := newSessionRouter(t)

	rec := f.do(t, http.MethodPost, "/sessions", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing businessId, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/sessions", map[string]string{"businessId": uuid.New().String()})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown business, got %d", rec.Code)
	}
}

func TestAttestErrors(t *testing.T) {
	f := newSessionRouter(t)

	rec := f.do(t, http.MethodPost, "/attest", map[string]string{
		"sessionId": uuid.New().String(),
		"signature": "0xdeadbeef",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/attest", map[string]string{"sessionId": uuid.New().String()})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing signature, got %d", rec.Code)
	}

	created := f.createSession(t)
	f.oracle.err = errors.New("rpc unreachable")
	rec = f.do(t, http.MethodPost, "/attest", map[string]string{
		"sessionId": created.SessionID.String(),
		"signature": "0xdeadbeef",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when oracle is down, got %d", rec.Code)
	}

	// Session survived; a retry after recovery succeeds.
	f.oracle.err = nil
	rec = f.do(t, http.MethodPost, "/attest", map[string]string{
		"sessionId": created.SessionID.String(),
		"signature": "0xdeadbeef",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 retrying after oracle recovery, got %d", rec.Code)
	}
}

func TestAttestIneligibleWallet(t *testing.T) {
	f := newSessionRouter(t)
	f.oracle.result = lockoracle.Result{Eligible: false, LockedAmount: "2500", LockedRaw: "2500000000000"}

	created := f.createSession(t)
	rec := f.do(t, http.MethodPost, "/attest", map[string]string{
		"sessionId": created.SessionID.String(),
		"signature": "0xdeadbeef",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a processed rejection, got %d", rec.Code)
	}
	res := decode[AttestResponse](t, rec)
	if res.Status != "REJECTED" || res.Eligible == nil || *res.Eligible {
		t.Fatalf("expected ineligible rejection, got %+v", res)
	}
}

func TestSessionIDValidation(t *testing.T) {
	f := newSessionRouter(t)

	for _, path := range []string{
		"/sessions/not-a-uuid",
		"/sessions/not-a-uuid/challenge",
	} {
		rec := f.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", path, rec.Code)
		}
	}

	rec := f.do(t, http.MethodGet, "/sessions/"+uuid.New().String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}
}
