// Package service implements the session lifecycle: creation, challenge
// construction, attestation, redemption, and lazy expiry. All session
// mutation flows through here; stores only persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lockpass/internal/audit"
	businessmodels "lockpass/internal/business/models"
	"lockpass/internal/lockoracle"
	"lockpass/internal/session/metrics"
	"lockpass/internal/session/models"
	"lockpass/internal/wallet"
	dErrors "lockpass/pkg/domain-errors"
	"lockpass/pkg/platform/sentinel"
)

// BusinessRegistry resolves merchant configuration. Resolve hides inactive
// records (used at session creation); Get returns them (used for sessions
// already referencing the business).
type BusinessRegistry interface {
	Resolve(ctx context.Context, id uuid.UUID) (*businessmodels.Business, error)
	Get(ctx context.Context, id uuid.UUID) (*businessmodels.Business, error)
}

// SessionStore is the persistence port; Save carries the optimistic version
// check described in the store package.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

// LockOracle answers whether a wallet holds enough locked tokens. Transport
// errors mean "unknown", never "ineligible".
type LockOracle interface {
	CheckLock(ctx context.Context, wallet common.Address, requiredHuman int64) (lockoracle.Result, error)
}

// AuditPublisher records lifecycle entries; writes must land before the
// operation acknowledges.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// RecoverFunc recovers a signer address from a personal-signed message.
type RecoverFunc func(message, signature string) (common.Address, error)

// Service owns the session state machine.
type Service struct {
	sessions      SessionStore
	registry      BusinessRegistry
	oracle        LockOracle
	auditor       AuditPublisher
	recoverSigner RecoverFunc
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	chainID       uint64
	oracleTimeout time.Duration
	now           func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source. Tests use this to cross TTLs without
// sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecoverFunc overrides signature recovery.
func WithRecoverFunc(fn RecoverFunc) Option {
	return func(s *Service) { s.recoverSigner = fn }
}

func WithOracleTimeout(d time.Duration) Option {
	return func(s *Service) { s.oracleTimeout = d }
}

func New(sessions SessionStore, registry BusinessRegistry, oracle LockOracle, auditor AuditPublisher, chainID uint64, opts ...Option) *Service {
	s := &Service{
		sessions:      sessions,
		registry:      registry,
		oracle:        oracle,
		auditor:       auditor,
		recoverSigner: wallet.Recover,
		logger:        slog.Default(),
		tracer:        otel.Tracer("lockpass/session"),
		chainID:       chainID,
		oracleTimeout: 5 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const invalidSignatureReason = "Invalid signature"

func errInvalidState(status models.Status) error {
	return dErrors.Newf(dErrors.CodeConflict, "invalid session state: %s", status)
}

var (
	errExpired          = dErrors.New(dErrors.CodeConflict, "session expired")
	errAttemptsExceeded = dErrors.New(dErrors.CodeConflict, "attestation attempts exceeded")
	errAlreadyRedeemed  = dErrors.New(dErrors.CodeConflict, "session already redeemed")
)

// CreateResult is what the merchant terminal needs to render the QR flow.
type CreateResult struct {
	SessionID          uuid.UUID
	ExpiresAt          time.Time
	DiscountPercent    int
	RequiredLockAmount int64
	TierLabel          string
}

// Create opens a PENDING session against an active business.
func (s *Service) Create(ctx context.Context, businessID uuid.UUID) (*CreateResult, error) {
	b, err := s.registry.Resolve(ctx, businessID)
	if err != nil {
		return nil, err
	}

	sess, err := models.NewSession(b.ID, b.TTL(), s.now())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	if err := s.emit(ctx, sess.ID, audit.EntrySessionCreated, map[string]any{
		"business_id": b.ID.String(),
		"expires_at":  sess.ExpiresAt.Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "session created",
		"session_id", sess.ID,
		"business_id", b.ID,
		"expires_at", sess.ExpiresAt,
	)

	return &CreateResult{
		SessionID:          sess.ID,
		ExpiresAt:          sess.ExpiresAt,
		DiscountPercent:    b.DiscountPercent,
		RequiredLockAmount: b.RequiredLockAmount,
		TierLabel:          b.TierLabel,
	}, nil
}

// ChallengeMessage returns the plaintext the customer must sign. The message
// is re-derived on every call; only the nonce and expiry it embeds are
// stored.
func (s *Service) ChallengeMessage(ctx context.Context, sessionID uuid.UUID) (string, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return buildChallengeMessage(sess, s.chainID), nil
}

// AttestResult is the business-level outcome of one attestation attempt.
// Rejections are results, not errors: the protocol answered, the answer was
// no.
type AttestResult struct {
	Status   models.Status
	Wallet   string
	Eligible *bool
	Reason   string
}

// Attest runs the verification state machine for one signature submission.
// Session and business are loaded before the attempt counter is committed, so
// a registry failure costs no budget; the counter then lands durably before
// any verification check so retried failures burn budget even when the
// process dies mid-flight.
func (s *Service) Attest(ctx context.Context, sessionID uuid.UUID, signature string) (*AttestResult, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	b, err := s.registry.Get(ctx, sess.BusinessID)
	if err != nil {
		return nil, err
	}

	sess, err = s.recordAttempt(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if sess.Expired(now) {
		if err := s.expire(ctx, sess); err != nil {
			return nil, err
		}
		s.observeAttest("expired")
		return nil, errExpired
	}

	// Never trust a client-supplied message: re-derive the challenge and
	// recover against it.
	message := buildChallengeMessage(sess, s.chainID)
	signer, err := s.recoverSigner(message, signature)
	if err != nil {
		s.logger.WarnContext(ctx, "signature recovery failed",
			"session_id", sess.ID,
			"error", err,
		)
		if err := s.reject(ctx, sess, invalidSignatureReason); err != nil {
			return nil, err
		}
		s.observeAttest("invalid_signature")
		return &AttestResult{Status: models.StatusRejected, Reason: invalidSignatureReason}, nil
	}

	res, err := s.checkLock(ctx, signer, b.RequiredLockAmount)
	if err != nil {
		// Fail closed without burning state: the session stays PENDING so
		// the client can retry within its attempt budget.
		s.observeAttest("oracle_unavailable")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "lock oracle unavailable")
	}

	sess.RecoveredAddress = signer.Hex()
	sess.LockAmountRaw = res.LockedRaw
	eligible := res.Eligible

	if !eligible {
		reason := fmt.Sprintf("Locked balance %s is below required %d", res.LockedAmount, b.RequiredLockAmount)
		if err := s.reject(ctx, sess, reason); err != nil {
			return nil, err
		}
		s.observeAttest("ineligible")
		return &AttestResult{
			Status:   models.StatusRejected,
			Wallet:   sess.RecoveredAddress,
			Eligible: &eligible,
			Reason:   reason,
		}, nil
	}

	if err := sess.Transition(models.StatusApproved); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "illegal state transition")
	}
	if err := s.commit(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.emit(ctx, sess.ID, audit.EntryAttestOK, map[string]any{
		"wallet":     sess.RecoveredAddress,
		"locked_raw": sess.LockAmountRaw,
	}); err != nil {
		return nil, err
	}

	s.observeAttest("approved")
	s.logger.InfoContext(ctx, "session approved",
		"session_id", sess.ID,
		"wallet", sess.RecoveredAddress,
	)
	return &AttestResult{Status: models.StatusApproved, Wallet: sess.RecoveredAddress, Eligible: &eligible}, nil
}

// Redeem consumes an approved session. Intentionally permissionless: the
// merchant terminal is trusted by possession of the session id.
func (s *Service) Redeem(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch {
	case sess.Status == models.StatusRedeemed:
		return nil, errAlreadyRedeemed
	case sess.Status != models.StatusApproved:
		return nil, errInvalidState(sess.Status)
	}

	now := s.now()
	if sess.Expired(now) {
		if err := s.expire(ctx, sess); err != nil {
			return nil, err
		}
		return nil, errExpired
	}

	redeemedAt := now.UTC()
	sess.RedeemedAt = &redeemedAt
	if err := sess.Transition(models.StatusRedeemed); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "illegal state transition")
	}
	if err := s.commit(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.emit(ctx, sess.ID, audit.EntryRedeemed, map[string]any{
		"redeemed_at": redeemedAt.Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Redemptions.Inc()
	}
	s.logger.InfoContext(ctx, "session redeemed", "session_id", sess.ID)
	return sess, nil
}

// Get returns the current session view, expiring PENDING and APPROVED
// sessions past their TTL on read. There is no background sweeper.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.Status.Terminal() && sess.Expired(s.now()) {
		if err := s.expire(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// recordAttempt runs steps 1-4 of attestation: state and budget checks, then
// a durable attempt increment. The read-increment-write cycle retries on
// version conflicts so concurrent submissions serialize instead of
// undercounting.
func (s *Service) recordAttempt(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	const saveRetries = 3
	for attempt := 0; ; attempt++ {
		sess, err := s.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if sess.Status != models.StatusPending {
			return nil, errInvalidState(sess.Status)
		}
		if sess.AttestAttempts >= models.MaxAttestAttempts {
			s.observeAttest("attempts_exceeded")
			return nil, errAttemptsExceeded
		}

		sess.AttestAttempts++
		err = s.sessions.Save(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if errors.Is(err, sentinel.ErrConflict) && attempt < saveRetries {
			continue
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attest attempt")
	}
}

func (s *Service) checkLock(ctx context.Context, signer common.Address, required int64) (lockoracle.Result, error) {
	octx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	octx, span := s.tracer.Start(octx, "lockoracle.check",
		trace.WithAttributes(
			attribute.String("wallet", signer.Hex()),
			attribute.Int64("required_amount", required),
		))
	defer span.End()

	start := time.Now()
	res, err := s.oracle.CheckLock(octx, signer, required)
	if s.metrics != nil {
		s.metrics.OracleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.OracleFailures.Inc()
		}
	}
	return res, err
}

// reject moves a session to REJECTED with a reason and records the forensic
// trail.
func (s *Service) reject(ctx context.Context, sess *models.Session, reason string) error {
	sess.Reason = reason
	if err := sess.Transition(models.StatusRejected); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "illegal state transition")
	}
	if err := s.commit(ctx, sess); err != nil {
		return err
	}
	payload := map[string]any{
		"reason":  reason,
		"attempt": sess.AttestAttempts,
	}
	if sess.RecoveredAddress != "" {
		payload["wallet"] = sess.RecoveredAddress
	}
	return s.emit(ctx, sess.ID, audit.EntryAttestFail, payload)
}

// expire moves a session to EXPIRED and records the forensic trail.
func (s *Service) expire(ctx context.Context, sess *models.Session) error {
	if err := sess.Transition(models.StatusExpired); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "illegal state transition")
	}
	if err := s.commit(ctx, sess); err != nil {
		return err
	}
	return s.emit(ctx, sess.ID, audit.EntryExpired, map[string]any{
		"expired_at": sess.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Service) load(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return sess, nil
}

func (s *Service) commit(ctx context.Context, sess *models.Session) error {
	if err := s.sessions.Save(ctx, sess); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// A concurrent writer advanced the session between our read and
			// this write; the caller's view is stale.
			return dErrors.New(dErrors.CodeConflict, "session was concurrently modified")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}
	return nil
}

// emit writes an audit entry, failing the operation when the trail cannot be
// recorded.
func (s *Service) emit(ctx context.Context, sessionID uuid.UUID, entryType audit.EntryType, payload map[string]any) error {
	err := s.auditor.Emit(ctx, audit.Entry{
		SessionID: sessionID,
		Type:      entryType,
		Payload:   payload,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"session_id", sessionID,
			"entry_type", entryType,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit entry")
	}
	return nil
}

func (s *Service) observeAttest(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAttest(outcome)
	}
}
