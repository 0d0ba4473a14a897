package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/internal/repository"
	"github.com/noah-isme/negative-records-api/pkg/database"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type recordReader interface {
	FindByID(ctx context.Context, id int64) (*models.NegativeRecord, error)
	Search(ctx context.Context, filter models.RecordSearchFilter) ([]models.NegativeRecord, error)
}

type lockStore interface {
	Claim(ctx context.Context, recordID, userID int64, at time.Time) (*models.RecordLock, bool, error)
	FindByRecord(ctx context.Context, recordID int64) (*models.RecordLock, error)
	FindByRecordForUpdate(ctx context.Context, recordID int64) (*models.RecordLock, error)
	Transfer(ctx context.Context, recordID, userID int64, at time.Time) (*models.RecordLock, error)
	AppendHistory(ctx context.Context, entry *models.LockHistory) error
	ListHistory(ctx context.Context, recordID int64) ([]models.LockHistory, error)
}

type unlockRequestStore interface {
	Create(ctx context.Context, request *models.UnlockRequest) error
	HasPending(ctx context.Context, requestedBy, recordID int64) (bool, error)
	PendingRecordIDs(ctx context.Context, requestedBy int64, recordIDs []int64) (map[int64]bool, error)
	GetByID(ctx context.Context, id int64) (*models.UnlockRequest, error)
	Resolve(ctx context.Context, params repository.ResolveUnlockParams) (*models.UnlockRequest, error)
	DenyOtherPending(ctx context.Context, recordID, exceptID, reviewedBy int64, at time.Time) ([]models.UnlockRequest, error)
	List(ctx context.Context, filter models.UnlockRequestFilter) ([]models.UnlockRequest, error)
}

type searchLogStore interface {
	Create(ctx context.Context, entry *models.SearchLog) error
	AccessHistory(ctx context.Context, term string) ([]models.AccessHistoryEntry, error)
}

type clientReader interface {
	FindByID(ctx context.Context, id int64) (*models.Client, error)
}

type userReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type userDirectory interface {
	userReader
	Profile(ctx context.Context, id int64) (*models.UserProfile, error)
}

type profileCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AccessDependencies groups the collaborators of AccessService.
type AccessDependencies struct {
	Tx             txRunner
	Records        recordReader
	Locks          lockStore
	UnlockRequests unlockRequestStore
	SearchLogs     searchLogStore
	Clients        clientReader
	Users          userDirectory
	Cache          profileCache
	Metrics        *MetricsService
}

// AccessConfig tunes AccessService.
type AccessConfig struct {
	SearchLimit int
	ProfileTTL  time.Duration
}

// AccessService arbitrates exclusive access to negative records: claim-or-view
// search, lock lookups and the unlock request workflow.
type AccessService struct {
	deps   AccessDependencies
	cfg    AccessConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAccessService constructs the service.
func NewAccessService(deps AccessDependencies, cfg AccessConfig, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SearchLimit <= 0 || cfg.SearchLimit > 50 {
		cfg.SearchLimit = 50
	}
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = 5 * time.Minute
	}
	return &AccessService{deps: deps, cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ClaimOrView searches records and locks every unlocked match to the searcher.
// Matches locked by someone else are returned without their sensitive fields.
func (s *AccessService) ClaimOrView(ctx context.Context, actor *models.JWTClaims, req dto.SearchRecordsRequest) (*dto.SearchRecordsResponse, []models.Effect, error) {
	filter, term, err := buildSearchFilter(req)
	if err != nil {
		return nil, nil, err
	}
	filter.Limit = s.cfg.SearchLimit

	_, client, err := resolveAffiliation(ctx, actor, s.deps.Users, s.deps.Clients)
	if err != nil {
		return nil, nil, err
	}

	var (
		records []models.NegativeRecord
		locks   = make(map[int64]*models.RecordLock)
		pending map[int64]bool
		effects []models.Effect
		claimed int
	)
	now := s.now()
	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.deps.Records.Search(ctx, filter)
		if err != nil {
			return err
		}
		// Records arrive ordered by id so concurrent searches claim in the same order.
		lockedByOthers := make([]int64, 0, len(records))
		for _, record := range records {
			lock, created, err := s.deps.Locks.Claim(ctx, record.ID, actor.UserID, now)
			if err != nil {
				return err
			}
			locks[record.ID] = lock
			if created {
				claimed++
				if err := s.deps.Locks.AppendHistory(ctx, &models.LockHistory{
					RecordID:  record.ID,
					LockedBy:  actor.UserID,
					Action:    models.LockActionCreated,
					CreatedAt: now,
				}); err != nil {
					return err
				}
				effects = append(effects, models.AuditEffect(lockAudit(actor.UserID, models.AuditActionLockCreate, record.ID)))
				continue
			}
			if !lock.HeldBy(actor.UserID) {
				lockedByOthers = append(lockedByOthers, record.ID)
			}
		}

		pending, err = s.deps.UnlockRequests.PendingRecordIDs(ctx, actor.UserID, lockedByOthers)
		if err != nil {
			return err
		}

		return s.deps.SearchLogs.Create(ctx, &models.SearchLog{
			UserID:      actor.UserID,
			ClientID:    client.ID,
			SearchType:  filter.Type,
			SearchTerm:  term,
			ResultCount: len(records),
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, nil, domainError(err, "failed to search records")
	}
	s.deps.Metrics.RecordLocksClaimed(claimed)

	views := make([]dto.RecordView, 0, len(records))
	for i := range records {
		record := &records[i]
		lock := locks[record.ID]
		if lock.HeldBy(actor.UserID) {
			views = append(views, fullView(record, lock))
			continue
		}
		view := restrictedView(record, lock)
		view.HasPendingRequest = pending[record.ID]
		if owner, err := s.ownerProfile(ctx, lock.LockedBy); err != nil {
			s.logger.Warn("load lock owner failed", zap.Int64("record_id", record.ID), zap.Error(err))
		} else {
			view.LockedBy = &dto.LockOwnerSummary{Name: MaskName(owner.FullName), Affiliate: owner.ClientName}
		}
		views = append(views, view)
	}

	return &dto.SearchRecordsResponse{
		Results:         views,
		Total:           len(views),
		RemainingCredit: client.CreditBalance,
	}, effects, nil
}

// LockInfo returns the lock owner's contact profile and who searched for the record.
func (s *AccessService) LockInfo(ctx context.Context, actor *models.JWTClaims, recordID int64) (*dto.LockInfoResponse, error) {
	if _, _, err := resolveAffiliation(ctx, actor, s.deps.Users, s.deps.Clients); err != nil {
		return nil, err
	}
	record, err := s.findRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	lock, err := s.deps.Locks.FindByRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record is not locked")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record lock")
	}
	owner, err := s.ownerProfile(ctx, lock.LockedBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lock owner")
	}
	history, err := s.deps.SearchLogs.AccessHistory(ctx, record.NormalizedTerm())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load access history")
	}
	if history == nil {
		history = []models.AccessHistoryEntry{}
	}
	return &dto.LockInfoResponse{
		RecordID:      recordID,
		LockedAt:      lock.LockedAt,
		Owner:         *owner,
		IsOwner:       lock.HeldBy(actor.UserID),
		AccessHistory: history,
	}, nil
}

// LockHistory returns the ownership trail of a record to admins and the current holder.
func (s *AccessService) LockHistory(ctx context.Context, actor *models.JWTClaims, recordID int64) ([]models.LockHistory, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if _, err := s.findRecord(ctx, recordID); err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		lock, err := s.deps.Locks.FindByRecord(ctx, recordID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record lock")
		}
		if !lock.HeldBy(actor.UserID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators or the lock holder may view lock history")
		}
	}
	history, err := s.deps.Locks.ListHistory(ctx, recordID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lock history")
	}
	if history == nil {
		history = []models.LockHistory{}
	}
	return history, nil
}

// CreateUnlockRequest files a pending request for the lock on a record.
func (s *AccessService) CreateUnlockRequest(ctx context.Context, actor *models.JWTClaims, req dto.CreateUnlockRequest) (*models.UnlockRequest, []models.Effect, error) {
	if req.RecordID <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "recordId is required")
	}
	requester, _, err := resolveAffiliation(ctx, actor, s.deps.Users, s.deps.Clients)
	if err != nil {
		return nil, nil, err
	}

	var (
		record  *models.NegativeRecord
		lock    *models.RecordLock
		request *models.UnlockRequest
	)
	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if record, err = s.findRecord(ctx, req.RecordID); err != nil {
			return err
		}
		exists, err := s.deps.UnlockRequests.HasPending(ctx, actor.UserID, req.RecordID)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "you already have a pending unlock request for this record")
		}
		lock, err = s.deps.Locks.FindByRecord(ctx, req.RecordID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			lock = nil
		}
		request = &models.UnlockRequest{
			RequestedBy: actor.UserID,
			RecordID:    req.RecordID,
			Status:      models.UnlockStatusPending,
			Reason:      strings.TrimSpace(req.Reason),
			CreatedAt:   s.now(),
		}
		if err := s.deps.UnlockRequests.Create(ctx, request); err != nil {
			if database.IsUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrConflict, "you already have a pending unlock request for this record")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, domainError(err, "failed to create unlock request")
	}
	s.deps.Metrics.RecordUnlockRequests(models.UnlockStatusPending, 1)

	subject := record.DisplayName()
	effects := []models.Effect{
		models.NotifyUser(actor.UserID, models.NotificationUnlockSubmitted, "Unlock request submitted",
			fmt.Sprintf("Your unlock request for %s has been submitted.", subject), request.ID),
	}
	if lock != nil && !lock.HeldBy(actor.UserID) {
		effects = append(effects, models.NotifyUser(lock.LockedBy, models.NotificationUnlockReceived, "New unlock request",
			fmt.Sprintf("%s requested access to %s.", requester.FullName, subject), request.ID))
	}
	effects = append(effects,
		models.NotifyAdmins(models.NotificationUnlockAlert, "Unlock request pending review",
			fmt.Sprintf("%s requested access to %s.", requester.FullName, subject), request.ID),
		models.AuditEffect(requestAudit(actor.UserID, models.AuditActionUnlockRequestCreate, request)),
	)
	return request, effects, nil
}

// ReviewUnlockRequest approves or denies a pending request. Approval transfers
// the lock to the requester and denies every other pending request for the record.
func (s *AccessService) ReviewUnlockRequest(ctx context.Context, actor *models.JWTClaims, id int64, req dto.ReviewUnlockRequest) (*models.UnlockRequest, []models.Effect, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	status, ok := models.ParseUnlockStatus(req.Status)
	if !ok || status == models.UnlockStatusPending {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or denied")
	}
	denialReason := strings.TrimSpace(req.DenialReason)
	if status == models.UnlockStatusDenied && denialReason == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "denialReason is required when denying a request")
	}

	var (
		resolved     *models.UnlockRequest
		record       *models.NegativeRecord
		cascaded     []models.UnlockRequest
		lockCreated  bool
		previousHold int64
	)
	now := s.now()
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := s.deps.UnlockRequests.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "unlock request not found")
			}
			return err
		}
		lock, err := s.deps.Locks.FindByRecordForUpdate(ctx, request.RecordID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			lock = nil
		}
		if !actor.Role.IsAdmin() && !lock.HeldBy(actor.UserID) {
			return appErrors.Clone(appErrors.ErrForbidden, "only administrators or the lock holder may review this request")
		}
		if request.Status != models.UnlockStatusPending {
			return appErrors.Clone(appErrors.ErrInvalidState, "unlock request has already been reviewed")
		}
		if lock != nil {
			previousHold = lock.LockedBy
		}

		params := repository.ResolveUnlockParams{ID: id, Status: status, ReviewedBy: actor.UserID, ReviewedAt: now}
		if status == models.UnlockStatusDenied {
			params.DenialReason = &denialReason
		}
		resolved, err = s.deps.UnlockRequests.Resolve(ctx, params)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrInvalidState, "unlock request has already been reviewed")
			}
			return err
		}
		if record, err = s.findRecord(ctx, resolved.RecordID); err != nil {
			return err
		}
		if status == models.UnlockStatusDenied {
			return nil
		}

		if lockCreated, err = s.assignLock(ctx, resolved.RecordID, resolved.RequestedBy, now); err != nil {
			return err
		}
		cascaded, err = s.deps.UnlockRequests.DenyOtherPending(ctx, resolved.RecordID, resolved.ID, actor.UserID, now)
		return err
	})
	if err != nil {
		return nil, nil, domainError(err, "failed to review unlock request")
	}

	subject := record.DisplayName()
	effects := []models.Effect{models.AuditEffect(requestAudit(actor.UserID, models.AuditActionUnlockRequestReview, resolved))}
	if status == models.UnlockStatusDenied {
		s.deps.Metrics.RecordUnlockRequests(models.UnlockStatusDenied, 1)
		effects = append(effects, models.NotifyUser(resolved.RequestedBy, models.NotificationUnlockDenied,
			fmt.Sprintf("Unlock request for %s denied", subject), denialReason, resolved.ID))
		return resolved, effects, nil
	}

	s.deps.Metrics.RecordUnlockRequests(models.UnlockStatusApproved, 1)
	s.deps.Metrics.RecordUnlockRequests(models.UnlockStatusDenied, len(cascaded))
	if lockCreated {
		s.deps.Metrics.RecordLocksClaimed(1)
	} else {
		s.deps.Metrics.RecordLockTransfer()
	}
	effects = append(effects,
		models.AuditEffect(transferAudit(actor.UserID, resolved.RecordID, previousHold, resolved.RequestedBy)),
		models.NotifyUser(resolved.RequestedBy, models.NotificationUnlockApproved, "Unlock request approved",
			fmt.Sprintf("You now hold the lock on %s.", subject), resolved.ID),
	)
	for _, denied := range cascaded {
		effects = append(effects, models.NotifyUser(denied.RequestedBy, models.NotificationUnlockDenied,
			fmt.Sprintf("Unlock request for %s denied", subject),
			"The lock was granted to another requester.", denied.ID))
	}
	return resolved, effects, nil
}

// ListUnlockRequests returns the actor's own requests (scope "mine") or the
// requests awaiting the actor's review (scope "incoming").
func (s *AccessService) ListUnlockRequests(ctx context.Context, actor *models.JWTClaims, query dto.UnlockRequestQuery) ([]models.UnlockRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.UnlockRequestFilter{Status: query.Status, Limit: query.Limit, Offset: query.Offset}
	switch query.Scope {
	case "", dto.UnlockScopeMine:
		filter.RequestedBy = actor.UserID
	case dto.UnlockScopeIncoming:
		if len(filter.Status) == 0 {
			filter.Status = []models.UnlockRequestStatus{models.UnlockStatusPending}
		}
		if !actor.Role.IsAdmin() {
			filter.LockedBy = actor.UserID
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "scope must be mine or incoming")
	}
	requests, err := s.deps.UnlockRequests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unlock requests")
	}
	if requests == nil {
		requests = []models.UnlockRequest{}
	}
	return requests, nil
}

// assignLock hands the record lock to userID, creating it when the record is unlocked.
func (s *AccessService) assignLock(ctx context.Context, recordID, userID int64, now time.Time) (bool, error) {
	action := models.LockActionTransferred
	_, err := s.deps.Locks.Transfer(ctx, recordID, userID, now)
	if errors.Is(err, sql.ErrNoRows) {
		var created bool
		if _, created, err = s.deps.Locks.Claim(ctx, recordID, userID, now); err != nil {
			return false, err
		}
		if created {
			action = models.LockActionCreated
		} else {
			_, err = s.deps.Locks.Transfer(ctx, recordID, userID, now)
		}
	}
	if err != nil {
		return false, err
	}
	if err := s.deps.Locks.AppendHistory(ctx, &models.LockHistory{
		RecordID:  recordID,
		LockedBy:  userID,
		Action:    action,
		CreatedAt: now,
	}); err != nil {
		return false, err
	}
	return action == models.LockActionCreated, nil
}

func (s *AccessService) findRecord(ctx context.Context, id int64) (*models.NegativeRecord, error) {
	record, err := s.deps.Records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}

func (s *AccessService) ownerProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	key := fmt.Sprintf("profile:%d", userID)
	if s.deps.Cache != nil {
		var cached models.UserProfile
		if hit, _ := s.deps.Cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}
	profile, err := s.deps.Users.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.deps.Cache != nil {
		_ = s.deps.Cache.Set(ctx, key, profile, s.cfg.ProfileTTL)
	}
	return profile, nil
}

func buildSearchFilter(req dto.SearchRecordsRequest) (models.RecordSearchFilter, string, error) {
	recordType, ok := models.ParseRecordType(req.Type)
	if !ok {
		return models.RecordSearchFilter{}, "", appErrors.Clone(appErrors.ErrValidation, "type must be Individual or Company")
	}
	filter := models.RecordSearchFilter{Type: recordType}
	if recordType == models.RecordTypeCompany {
		filter.Company = strings.TrimSpace(req.Company)
		if filter.Company == "" {
			return filter, "", appErrors.Clone(appErrors.ErrValidation, "company name is required")
		}
		return filter, models.NormalizeCompanyTerm(filter.Company), nil
	}
	filter.FirstName = strings.TrimSpace(req.FirstName)
	filter.MiddleName = strings.TrimSpace(req.MiddleName)
	filter.LastName = strings.TrimSpace(req.LastName)
	if filter.FirstName == "" && filter.MiddleName == "" && filter.LastName == "" {
		return filter, "", appErrors.Clone(appErrors.ErrValidation, "at least one name field is required")
	}
	return filter, models.NormalizeNameTerm(filter.FirstName, filter.MiddleName, filter.LastName), nil
}

// resolveAffiliation loads the actor and the active client they act for.
func resolveAffiliation(ctx context.Context, actor *models.JWTClaims, users userReader, clients clientReader) (*models.User, *models.Client, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	user, err := users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.ErrUnauthorized
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.ClientID == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "no client is assigned to your account")
	}
	client, err := clients.FindByID(ctx, *user.ClientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "no client is assigned to your account")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if !client.Active {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "your client account is inactive")
	}
	return user, client, nil
}

// domainError passes typed errors through and wraps anything else as internal.
func domainError(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func fullView(record *models.NegativeRecord, lock *models.RecordLock) dto.RecordView {
	view := restrictedView(record, lock)
	view.IsOwner = true
	details, source := record.Details, record.Source
	view.Details = &details
	view.Source = &source
	return view
}

func restrictedView(record *models.NegativeRecord, lock *models.RecordLock) dto.RecordView {
	view := dto.RecordView{
		ID:          record.ID,
		Type:        record.Type,
		FirstName:   record.FirstName,
		MiddleName:  record.MiddleName,
		LastName:    record.LastName,
		CompanyName: record.CompanyName,
		CaseNumber:  record.CaseNumber,
		Plaintiff:   record.Plaintiff,
		CaseType:    record.CaseType,
		Court:       record.Court,
		Branch:      record.Branch,
		City:        record.City,
		DateFiled:   record.DateFiled,
	}
	if lock != nil {
		lockedAt := lock.LockedAt
		view.IsLocked = true
		view.LockedAt = &lockedAt
	}
	return view
}

// MaskName keeps the first letter of every word and hides the rest.
func MaskName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(first) + strings.Repeat("*", utf8.RuneCountInString(word[size:]))
	}
	return strings.Join(words, " ")
}
