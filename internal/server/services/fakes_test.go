package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grouptab/grouptab/internal/common"
	"github.com/grouptab/grouptab/internal/dbx"
	eventsrepo "github.com/grouptab/grouptab/internal/server/repositories/events"
	groupsrepo "github.com/grouptab/grouptab/internal/server/repositories/groups"
	ledgerrepo "github.com/grouptab/grouptab/internal/server/repositories/ledger"
	loginsrepo "github.com/grouptab/grouptab/internal/server/repositories/logins"
	plansrepo "github.com/grouptab/grouptab/internal/server/repositories/plans"
	usersrepo "github.com/grouptab/grouptab/internal/server/repositories/users"
	"github.com/grouptab/grouptab/internal/server/models"
)

// In-memory fakes. They ignore the DBTX handle: transactional behavior is
// covered by the dbx package tests, here we only care about service logic.

type fakeUsersRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.User

	createErr error

	// onDelete mimics the schema's ON DELETE CASCADE on dependent rows.
	onDelete func(id string)
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, common.ErrAlreadyExists
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("u-%d", f.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id, name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Name, u.Email = name, email
	return nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	if f.onDelete != nil {
		f.onDelete(id)
	}
	return nil
}

type fakeLoginsRepo struct {
	mu   sync.Mutex
	recs []*models.LoginRecord
}

func (f *fakeLoginsRepo) Create(ctx context.Context, rec *models.LoginRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeLoginsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LoginRecord
	for i := len(f.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.recs[i].UserID == userID {
			out = append(out, f.recs[i])
		}
	}
	return out, nil
}

type fakeGroupsRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.Group
}

func newFakeGroupsRepo() *fakeGroupsRepo {
	return &fakeGroupsRepo{byID: map[string]*models.Group{}}
}

func (f *fakeGroupsRepo) Create(ctx context.Context, g *models.Group) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	g.ID = fmt.Sprintf("g-%d", f.seq)
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	cp := *g
	f.byID[g.ID] = &cp
	return g, nil
}

func (f *fakeGroupsRepo) GetByID(ctx context.Context, id string) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return nil, nil
}

func (f *fakeGroupsRepo) Update(ctx context.Context, id, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	g.Name, g.Description = name, description
	return nil
}

func (f *fakeGroupsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeMembershipsRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*models.Membership // key group|user
}

func newFakeMembershipsRepo() *fakeMembershipsRepo {
	return &fakeMembershipsRepo{rows: map[string]*models.Membership{}}
}

func memberKey(groupID, userID string) string { return groupID + "|" + userID }

func (f *fakeMembershipsRepo) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey(m.GroupID, m.UserID)
	if _, ok := f.rows[key]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.seq++
	m.ID = fmt.Sprintf("m-%d", f.seq)
	m.JoinedAt = time.Now()
	cp := *m
	f.rows[key] = &cp
	return m, nil
}

func (f *fakeMembershipsRepo) Get(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[memberKey(groupID, userID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembershipsRepo) ListByGroup(ctx context.Context, groupID string) ([]*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Membership
	for _, m := range f.rows {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipsRepo) deleteByUser(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, m := range f.rows {
		if m.UserID == userID {
			delete(f.rows, key)
		}
	}
}

func (f *fakeMembershipsRepo) Delete(ctx context.Context, groupID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey(groupID, userID)
	if _, ok := f.rows[key]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, key)
	return nil
}

type fakeLedgerRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.LedgerEntry
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{byID: map[string]*models.LedgerEntry{}}
}

func (f *fakeLedgerRepo) Create(ctx context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	e.ID = fmt.Sprintf("e-%d", f.seq)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.byID[e.ID] = &cp
	return e, nil
}

func (f *fakeLedgerRepo) GetByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeLedgerRepo) ListByGroup(ctx context.Context, groupID string, from, to time.Time) ([]*models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LedgerEntry
	for _, e := range f.byID {
		if e.GroupID == groupID && !e.SpentAt.Before(from) && e.SpentAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) Update(ctx context.Context, e *models.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeLedgerRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeLedgerRepo) Summarize(ctx context.Context, groupID string, from, to time.Time) (*models.LedgerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := &models.LedgerSummary{ByCategory: map[string]int64{}}
	for _, e := range f.byID {
		if e.GroupID == groupID && !e.SpentAt.Before(from) && e.SpentAt.Before(to) {
			summary.ByCategory[e.Category] += e.Amount
			summary.Total += e.Amount
		}
	}
	return summary, nil
}

type fakeAttachmentsRepo struct {
	mu      sync.Mutex
	seq     int
	byEntry map[string]*models.Attachment
}

func newFakeAttachmentsRepo() *fakeAttachmentsRepo {
	return &fakeAttachmentsRepo{byEntry: map[string]*models.Attachment{}}
}

func (f *fakeAttachmentsRepo) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEntry[a.EntryID]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.seq++
	a.ID = fmt.Sprintf("a-%d", f.seq)
	a.CreatedAt = time.Now()
	cp := *a
	f.byEntry[a.EntryID] = &cp
	return a, nil
}

func (f *fakeAttachmentsRepo) GetByEntry(ctx context.Context, entryID string) (*models.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byEntry[entryID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttachmentsRepo) MarkUploaded(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byEntry {
		if a.ID == id {
			a.UploadStatus = models.AttachmentUploaded
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeAttachmentsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for entryID, a := range f.byEntry {
		if a.ID == id {
			delete(f.byEntry, entryID)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakePlansRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.Plan
}

func newFakePlansRepo() *fakePlansRepo {
	return &fakePlansRepo{byID: map[string]*models.Plan{}}
}

func (f *fakePlansRepo) Create(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("p-%d", f.seq)
	p.CreatedAt = time.Now()
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakePlansRepo) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlansRepo) ListByGroup(ctx context.Context, groupID string) ([]*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Plan
	for _, p := range f.byID {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlansRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeEventsRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.Event
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{byID: map[string]*models.Event{}}
}

func (f *fakeEventsRepo) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	e.ID = fmt.Sprintf("ev-%d", f.seq)
	e.CreatedAt = time.Now()
	cp := *e
	f.byID[e.ID] = &cp
	return e, nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventsRepo) ListByGroup(ctx context.Context, groupID string) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Event
	for _, e := range f.byID {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRSVPsRepo struct {
	mu   sync.Mutex
	rows map[string]*models.RSVP // key event|user
}

func newFakeRSVPsRepo() *fakeRSVPsRepo {
	return &fakeRSVPsRepo{rows: map[string]*models.RSVP{}}
}

func (f *fakeRSVPsRepo) Upsert(ctx context.Context, r *models.RSVP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rows[r.EventID+"|"+r.UserID] = &cp
	return nil
}

func (f *fakeRSVPsRepo) deleteByUser(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, r := range f.rows {
		if r.UserID == userID {
			delete(f.rows, key)
		}
	}
}

func (f *fakeRSVPsRepo) ListByEvent(ctx context.Context, eventID string) ([]*models.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.RSVP
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeRepoManager vends the fakes regardless of the DBTX handle.
type fakeRepoManager struct {
	users       *fakeUsersRepo
	logins      *fakeLoginsRepo
	groups      *fakeGroupsRepo
	memberships *fakeMembershipsRepo
	ledger      *fakeLedgerRepo
	attachments *fakeAttachmentsRepo
	plans       *fakePlansRepo
	events      *fakeEventsRepo
	rsvps       *fakeRSVPsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	m := &fakeRepoManager{
		users:       newFakeUsersRepo(),
		logins:      &fakeLoginsRepo{},
		groups:      newFakeGroupsRepo(),
		memberships: newFakeMembershipsRepo(),
		ledger:      newFakeLedgerRepo(),
		attachments: newFakeAttachmentsRepo(),
		plans:       newFakePlansRepo(),
		events:      newFakeEventsRepo(),
		rsvps:       newFakeRSVPsRepo(),
	}
	m.users.onDelete = func(id string) {
		m.memberships.deleteByUser(id)
		m.rsvps.deleteByUser(id)
	}
	return m
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.users }
func (m *fakeRepoManager) Logins(db dbx.DBTX) loginsrepo.Repository           { return m.logins }
func (m *fakeRepoManager) Groups(db dbx.DBTX) groupsrepo.Repository           { return m.groups }
func (m *fakeRepoManager) Memberships(db dbx.DBTX) groupsrepo.MembershipRepository {
	return m.memberships
}
func (m *fakeRepoManager) Ledger(db dbx.DBTX) ledgerrepo.Repository            { return m.ledger }
func (m *fakeRepoManager) Attachments(db dbx.DBTX) ledgerrepo.AttachmentRepository {
	return m.attachments
}
func (m *fakeRepoManager) Plans(db dbx.DBTX) plansrepo.Repository   { return m.plans }
func (m *fakeRepoManager) Events(db dbx.DBTX) eventsrepo.Repository { return m.events }
func (m *fakeRepoManager) RSVPs(db dbx.DBTX) eventsrepo.RSVPRepository {
	return m.rsvps
}
