package services

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/conversations"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/cycles"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/logs"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/reminders"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
)

// -------- test fakes --------

type fakeCyclesRepo struct {
	cycles.Repository
	m      map[int64]models.CycleConfig
	getErr error
}

func (f *fakeCyclesRepo) Get(ctx context.Context, chatID int64) (*models.CycleConfig, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.m[chatID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (f *fakeCyclesRepo) Put(ctx context.Context, cfg *models.CycleConfig) error {
	c := *cfg
	c.CycleStart = timex.DateOf(c.CycleStart)
	f.m[cfg.ChatID] = c
	return nil
}

type logKey struct {
	chatID int64
	date   time.Time
}

type fakeLogsRepo struct {
	logs.Repository
	m      map[logKey]models.LogEntry
	putErr error
}

func (f *fakeLogsRepo) Get(ctx context.Context, chatID int64, date time.Time) (*models.LogEntry, error) {
	e, ok := f.m[logKey{chatID, timex.DateOf(date)}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &e, nil
}

func (f *fakeLogsRepo) Put(ctx context.Context, entry *models.LogEntry) error {
	if f.putErr != nil {
		return f.putErr
	}
	e := *entry
	e.Date = timex.DateOf(e.Date)
	f.m[logKey{e.ChatID, e.Date}] = e
	return nil
}

func (f *fakeLogsRepo) sorted(chatID int64) []*models.LogEntry {
	var out []*models.LogEntry
	for k, e := range f.m {
		if k.chatID == chatID {
			out = append(out, &e)
		}
	}
	slices.SortFunc(out, func(a, b *models.LogEntry) int { return a.Date.Compare(b.Date) })
	return out
}

func (f *fakeLogsRepo) ListRecent(ctx context.Context, chatID int64, limit int) ([]*models.LogEntry, error) {
	all := f.sorted(chatID)
	slices.Reverse(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeLogsRepo) ListAll(ctx context.Context, chatID int64) ([]*models.LogEntry, error) {
	var out []*models.LogEntry
	for _, e := range f.sorted(chatID) {
		if e.HasData() {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRemindersRepo struct {
	reminders.Repository
	rules   []*models.ReminderRule
	nextID  int64
	listErr error
}

func (f *fakeRemindersRepo) ListByChat(ctx context.Context, chatID int64) ([]*models.ReminderRule, error) {
	var out []*models.ReminderRule
	for _, r := range f.rules {
		if r.ChatID == chatID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b *models.ReminderRule) int {
		if a.Time < b.Time {
			return -1
		}
		if a.Time > b.Time {
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *fakeRemindersRepo) ListAll(ctx context.Context) ([]*models.ReminderRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rules, nil
}

func (f *fakeRemindersRepo) Create(ctx context.Context, rule *models.ReminderRule) (*models.ReminderRule, error) {
	f.nextID++
	rule.ID = f.nextID
	f.rules = append(f.rules, rule)
	return rule, nil
}

func (f *fakeRemindersRepo) Delete(ctx context.Context, id, chatID int64) error {
	for i, r := range f.rules {
		if r.ID == id && r.ChatID == chatID {
			f.rules = slices.Delete(f.rules, i, i+1)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeConversationsRepo struct {
	conversations.Repository
	m map[int64]models.ConversationState
}

func (f *fakeConversationsRepo) Get(ctx context.Context, chatID int64) (models.ConversationState, error) {
	st, ok := f.m[chatID]
	if !ok {
		return models.ConversationState{ChatID: chatID}, nil
	}
	return st, nil
}

func (f *fakeConversationsRepo) Put(ctx context.Context, st models.ConversationState) error {
	f.m[st.ChatID] = st
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	c  *fakeCyclesRepo
	l  *fakeLogsRepo
	r  *fakeRemindersRepo
	cv *fakeConversationsRepo
}

func (m *fakeRepoManager) Cycles(dbx.DBTX) cycles.Repository               { return m.c }
func (m *fakeRepoManager) Logs(dbx.DBTX) logs.Repository                   { return m.l }
func (m *fakeRepoManager) Reminders(dbx.DBTX) reminders.Repository         { return m.r }
func (m *fakeRepoManager) Conversations(dbx.DBTX) conversations.Repository { return m.cv }

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		c:  &fakeCyclesRepo{m: map[int64]models.CycleConfig{}},
		l:  &fakeLogsRepo{m: map[logKey]models.LogEntry{}},
		r:  &fakeRemindersRepo{},
		cv: &fakeConversationsRepo{m: map[int64]models.ConversationState{}},
	}
}

type sentMessage struct {
	ChatID    int64
	MessageID int64
	Text      string
	Buttons   []models.Button
	Image     []byte
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	acks    []string
	failFor map[int64]bool
}

var errSendFailed = errors.New("send failed")

func (f *fakeTransport) record(m sentMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[m.ChatID] {
		return errSendFailed
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeTransport) SendText(ctx context.Context, chatID int64, text string, buttons ...models.Button) error {
	return f.record(sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
}

func (f *fakeTransport) SendImage(ctx context.Context, chatID int64, png []byte, caption string) error {
	return f.record(sentMessage{ChatID: chatID, Text: caption, Image: png})
}

func (f *fakeTransport) EditText(ctx context.Context, chatID, messageID int64, text string) error {
	return f.record(sentMessage{ChatID: chatID, MessageID: messageID, Text: text})
}

func (f *fakeTransport) AnswerCallback(ctx context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, callbackID)
	return nil
}

func (f *fakeTransport) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

func (f *fakeTransport) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// expectSubjectTx registers one locked transaction for chatID.
func expectSubjectTx(mock sqlmock.Sqlmock, chatID int64) {
	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WithArgs(chatID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
