package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/internal/repository"
)

// memDB emulates the row-level guarantees of the postgres schema: every
// method is atomic under mu, mirroring a single guarded statement.
type memDB struct {
	mu         sync.Mutex
	records    map[int64]*models.NegativeRecord
	locks      map[int64]*models.RecordLock
	history    []models.LockHistory
	requests   []*models.UnlockRequest
	searchLogs []models.SearchLog
	clients    map[int64]*models.Client
	txns       []models.CreditTransaction
	users      map[int64]*models.User
	nextLockID int64
	forUpdate  int
}

func newMemDB() *memDB {
	return &memDB{
		records: make(map[int64]*models.NegativeRecord),
		locks:   make(map[int64]*models.RecordLock),
		clients: make(map[int64]*models.Client),
		users:   make(map[int64]*models.User),
	}
}

func (db *memDB) addRecord(r models.NegativeRecord) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records[r.ID] = &r
}

func (db *memDB) addClient(c models.Client) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clients[c.ID] = &c
}

func (db *memDB) addUser(u models.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = &u
}

func (db *memDB) lockOf(recordID int64) *models.RecordLock {
	db.mu.Lock()
	defer db.mu.Unlock()
	if lock, ok := db.locks[recordID]; ok {
		copy := *lock
		return &copy
	}
	return nil
}

func (db *memDB) historyOf(recordID int64) []models.LockHistory {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.LockHistory
	for _, h := range db.history {
		if h.RecordID == recordID {
			out = append(out, h)
		}
	}
	return out
}

func (db *memDB) request(id int64) models.UnlockRequest {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.requests[id-1]
}

func (db *memDB) balance(clientID int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.clients[clientID].CreditBalance
}

type memTx struct{}

func (memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRecords struct{ db *memDB }

func (m memRecords) FindByID(ctx context.Context, id int64) (*models.NegativeRecord, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	record, ok := m.db.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *record
	return &copy, nil
}

func (m memRecords) Search(ctx context.Context, filter models.RecordSearchFilter) ([]models.NegativeRecord, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	contains := func(field, term string) bool {
		return term == "" || strings.Contains(strings.ToLower(field), strings.ToLower(term))
	}
	var out []models.NegativeRecord
	for _, r := range m.db.records {
		if r.Type != filter.Type {
			continue
		}
		if filter.Type == models.RecordTypeCompany {
			if !contains(r.CompanyName, filter.Company) {
				continue
			}
		} else if !contains(r.FirstName, filter.FirstName) || !contains(r.MiddleName, filter.MiddleName) || !contains(r.LastName, filter.LastName) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type memLocks struct{ db *memDB }

func (m memLocks) Claim(ctx context.Context, recordID, userID int64, at time.Time) (*models.RecordLock, bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if existing, ok := m.db.locks[recordID]; ok {
		copy := *existing
		return &copy, false, nil
	}
	m.db.nextLockID++
	lock := &models.RecordLock{ID: m.db.nextLockID, RecordID: recordID, LockedBy: userID, LockedAt: at}
	m.db.locks[recordID] = lock
	copy := *lock
	return &copy, true, nil
}

func (m memLocks) FindByRecord(ctx context.Context, recordID int64) (*models.RecordLock, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	lock, ok := m.db.locks[recordID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *lock
	return &copy, nil
}

func (m memLocks) FindByRecordForUpdate(ctx context.Context, recordID int64) (*models.RecordLock, error) {
	m.db.mu.Lock()
	m.db.forUpdate++
	m.db.mu.Unlock()
	return m.FindByRecord(ctx, recordID)
}

func (m memLocks) Transfer(ctx context.Context, recordID, userID int64, at time.Time) (*models.RecordLock, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	lock, ok := m.db.locks[recordID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	lock.LockedBy = userID
	lock.LockedAt = at
	copy := *lock
	return &copy, nil
}

func (m memLocks) AppendHistory(ctx context.Context, entry *models.LockHistory) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	entry.ID = int64(len(m.db.history) + 1)
	m.db.history = append(m.db.history, *entry)
	return nil
}

func (m memLocks) ListHistory(ctx context.Context, recordID int64) ([]models.LockHistory, error) {
	return m.db.historyOf(recordID), nil
}

type memRequests struct{ db *memDB }

func (m memRequests) Create(ctx context.Context, request *models.UnlockRequest) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, existing := range m.db.requests {
		if existing.Status == models.UnlockStatusPending && existing.RequestedBy == request.RequestedBy && existing.RecordID == request.RecordID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	request.ID = int64(len(m.db.requests) + 1)
	copy := *request
	m.db.requests = append(m.db.requests, &copy)
	return nil
}

func (m memRequests) HasPending(ctx context.Context, requestedBy, recordID int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, r := range m.db.requests {
		if r.Status == models.UnlockStatusPending && r.RequestedBy == requestedBy && r.RecordID == recordID {
			return true, nil
		}
	}
	return false, nil
}

func (m memRequests) PendingRecordIDs(ctx context.Context, requestedBy int64, recordIDs []int64) (map[int64]bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	wanted := make(map[int64]bool, len(recordIDs))
	for _, id := range recordIDs {
		wanted[id] = true
	}
	out := make(map[int64]bool)
	for _, r := range m.db.requests {
		if r.Status == models.UnlockStatusPending && r.RequestedBy == requestedBy && wanted[r.RecordID] {
			out[r.RecordID] = true
		}
	}
	return out, nil
}

func (m memRequests) GetByID(ctx context.Context, id int64) (*models.UnlockRequest, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if id <= 0 || int(id) > len(m.db.requests) {
		return nil, sql.ErrNoRows
	}
	copy := *m.db.requests[id-1]
	return &copy, nil
}

func (m memRequests) Resolve(ctx context.Context, params repository.ResolveUnlockParams) (*models.UnlockRequest, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if params.ID <= 0 || int(params.ID) > len(m.db.requests) {
		return nil, sql.ErrNoRows
	}
	r := m.db.requests[params.ID-1]
	if r.Status != models.UnlockStatusPending {
		return nil, sql.ErrNoRows
	}
	reviewedBy, reviewedAt := params.ReviewedBy, params.ReviewedAt
	r.Status = params.Status
	r.ReviewedBy = &reviewedBy
	r.ReviewedAt = &reviewedAt
	r.DenialReason = params.DenialReason
	copy := *r
	return &copy, nil
}

func (m memRequests) DenyOtherPending(ctx context.Context, recordID, exceptID, reviewedBy int64, at time.Time) ([]models.UnlockRequest, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.UnlockRequest
	for _, r := range m.db.requests {
		if r.RecordID != recordID || r.ID == exceptID || r.Status != models.UnlockStatusPending {
			continue
		}
		by, when := reviewedBy, at
		r.Status = models.UnlockStatusDenied
		r.ReviewedBy = &by
		r.ReviewedAt = &when
		out = append(out, *r)
	}
	return out, nil
}

func (m memRequests) List(ctx context.Context, filter models.UnlockRequestFilter) ([]models.UnlockRequest, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.UnlockRequest
	for i := len(m.db.requests) - 1; i >= 0; i-- {
		r := m.db.requests[i]
		if filter.RequestedBy != 0 && r.RequestedBy != filter.RequestedBy {
			continue
		}
		if filter.LockedBy != 0 {
			lock, ok := m.db.locks[r.RecordID]
			if !ok || lock.LockedBy != filter.LockedBy {
				continue
			}
		}
		if len(filter.Status) > 0 {
			matched := false
			for _, status := range filter.Status {
				matched = matched || r.Status == status
			}
			if !matched {
				continue
			}
		}
		out = append(out, *r)
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

type memSearchLogs struct{ db *memDB }

func (m memSearchLogs) Create(ctx context.Context, entry *models.SearchLog) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	entry.ID = int64(len(m.db.searchLogs) + 1)
	m.db.searchLogs = append(m.db.searchLogs, *entry)
	return nil
}

func (m memSearchLogs) AccessHistory(ctx context.Context, term string) ([]models.AccessHistoryEntry, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.AccessHistoryEntry
	for i := len(m.db.searchLogs) - 1; i >= 0; i-- {
		entry := m.db.searchLogs[i]
		if entry.SearchTerm != term {
			continue
		}
		row := models.AccessHistoryEntry{SearchedAt: entry.CreatedAt, SearchType: entry.SearchType, UserID: entry.UserID}
		if user, ok := m.db.users[entry.UserID]; ok {
			row.UserName = user.FullName
		}
		if client, ok := m.db.clients[entry.ClientID]; ok {
			row.ClientName = client.Name
		}
		out = append(out, row)
	}
	return out, nil
}

type memClients struct{ db *memDB }

func (m memClients) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	client, ok := m.db.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *client
	return &copy, nil
}

func (m memClients) DeductCredit(ctx context.Context, clientID, fee int64) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	client, ok := m.db.clients[clientID]
	if !ok || client.CreditBalance < fee {
		return 0, sql.ErrNoRows
	}
	client.CreditBalance -= fee
	return client.CreditBalance, nil
}

func (m memClients) AddCredit(ctx context.Context, clientID, amount int64) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	client, ok := m.db.clients[clientID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	if client.CreditLimit != nil && client.CreditBalance+amount > *client.CreditLimit {
		return 0, sql.ErrNoRows
	}
	client.CreditBalance += amount
	return client.CreditBalance, nil
}

func (m memClients) AppendTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	txn.ID = int64(len(m.db.txns) + 1)
	m.db.txns = append(m.db.txns, *txn)
	return nil
}

func (m memClients) ListTransactions(ctx context.Context, clientID int64, limit, offset int) ([]models.CreditTransaction, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.CreditTransaction
	for i := len(m.db.txns) - 1; i >= 0; i-- {
		if m.db.txns[i].ClientID == clientID {
			out = append(out, m.db.txns[i])
		}
	}
	return out, len(out), nil
}

type memUsers struct{ db *memDB }

func (m memUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	user, ok := m.db.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *user
	return &copy, nil
}

func (m memUsers) Profile(ctx context.Context, id int64) (*models.UserProfile, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	user, ok := m.db.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	profile := &models.UserProfile{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     user.Role,
		ClientID: user.ClientID,
	}
	if user.ClientID != nil {
		if client, ok := m.db.clients[*user.ClientID]; ok {
			profile.ClientName = client.Name
		}
	}
	return profile, nil
}

// accessFixture seeds two affiliate clients, their users, an admin and a few records.
type accessFixture struct {
	db      *memDB
	access  *AccessService
	billing *BillingService
	now     time.Time
}

const (
	fixtureAdmin   int64 = 1
	fixtureUserOne int64 = 10
	fixtureUserTwo int64 = 20
	fixtureUserThr int64 = 30
	fixtureOrphan  int64 = 40

	fixtureClientOne int64 = 100
	fixtureClientTwo int64 = 200
	fixtureClientOff int64 = 300
)

func newAccessFixture(printFee int64) *accessFixture {
	db := newMemDB()
	clientOne, clientTwo, clientOff := fixtureClientOne, fixtureClientTwo, fixtureClientOff
	db.addClient(models.Client{ID: clientOne, Name: "Alpha Lending", Active: true, BillingType: models.BillingPrepaid, CreditBalance: 5})
	db.addClient(models.Client{ID: clientTwo, Name: "Beta Finance", Active: true, BillingType: models.BillingPostpaid})
	db.addClient(models.Client{ID: clientOff, Name: "Gamma Credit", Active: false, BillingType: models.BillingPrepaid})

	db.addUser(models.User{ID: fixtureAdmin, FullName: "Ada Admin", Role: models.RoleAdmin, Approved: true, Active: true, ClientID: &clientOne})
	db.addUser(models.User{ID: fixtureUserOne, FullName: "Pedro Reyes", Email: "pedro@alpha.test", Phone: "0917", Role: models.RoleAffiliate, Approved: true, Active: true, ClientID: &clientOne})
	db.addUser(models.User{ID: fixtureUserTwo, FullName: "Maria Santos", Email: "maria@beta.test", Role: models.RoleAffiliate, Approved: true, Active: true, ClientID: &clientTwo})
	db.addUser(models.User{ID: fixtureUserThr, FullName: "Jose Rizal", Role: models.RoleAffiliate, Approved: true, Active: true, ClientID: &clientOff})
	db.addUser(models.User{ID: fixtureOrphan, FullName: "No Client", Role: models.RoleAffiliate, Approved: true, Active: true})

	db.addRecord(models.NegativeRecord{ID: 1, Type: models.RecordTypeIndividual, FirstName: "Juan", LastName: "Dela Cruz", CaseNumber: "CV-1", Details: "estafa", Source: "court"})
	db.addRecord(models.NegativeRecord{ID: 2, Type: models.RecordTypeIndividual, FirstName: "Juana", LastName: "Dela Cruz", CaseNumber: "CV-2", Details: "bp22", Source: "court"})
	db.addRecord(models.NegativeRecord{ID: 3, Type: models.RecordTypeCompany, CompanyName: "Acme Trading", CaseNumber: "CV-3", Details: "collection", Source: "news"})

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	access := NewAccessService(AccessDependencies{
		Tx:             memTx{},
		Records:        memRecords{db},
		Locks:          memLocks{db},
		UnlockRequests: memRequests{db},
		SearchLogs:     memSearchLogs{db},
		Clients:        memClients{db},
		Users:          memUsers{db},
	}, AccessConfig{}, nil)
	access.now = func() time.Time { return now }

	billing := NewBillingService(BillingDependencies{
		Tx:      memTx{},
		Records: memRecords{db},
		Locks:   memLocks{db},
		Clients: memClients{db},
		Users:   memUsers{db},
	}, printFee, nil)
	billing.now = func() time.Time { return now }

	return &accessFixture{db: db, access: access, billing: billing, now: now}
}

func claimsFor(userID int64, role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: role}
}

func affiliate(userID int64) *models.JWTClaims {
	return claimsFor(userID, models.RoleAffiliate)
}
