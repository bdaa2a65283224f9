package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// in-memory реализации репозиториев для тестов сервисов

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return repository.ErrAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Phone == phone })
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeRefreshTokenRepo struct {
	tokens map[string]*repository.RefreshToken
	// staleReads GetByToken не видит отзыв, как второй из двух параллельных refresh
	staleReads bool
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*repository.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.tokens[repository.HashToken(token)] = &repository.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: repository.HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeRefreshTokenRepo) GetByToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	rt, ok := r.tokens[repository.HashToken(token)]
	if !ok || (rt.RevokedAt != nil && !r.staleReads) || !rt.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return rt, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, token string) error {
	rt, ok := r.tokens[repository.HashToken(token)]
	if !ok || rt.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	rt.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, rt := range r.tokens {
		if rt.UserID == userID && rt.RevokedAt == nil {
			rt.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	for hash, rt := range r.tokens {
		if !rt.ExpiresAt.After(time.Now()) {
			delete(r.tokens, hash)
		}
	}
	return nil
}

type fakeTransactionRepo struct {
	mu  sync.Mutex
	txs []models.Transaction
	err error
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ID == id {
			copied := tx
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTransactionRepo) GetByFilter(_ context.Context, userID uuid.UUID, filter *models.TransactionFilter) (*models.TransactionList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := &models.TransactionList{Transactions: make([]models.Transaction, 0), Page: 1, Limit: 20}
	for _, tx := range r.txs {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(tx.Description), strings.ToLower(filter.Search)) {
			continue
		}
		list.Transactions = append(list.Transactions, tx)
	}
	list.Total = int64(len(list.Transactions))
	list.TotalPages = 1
	return list, nil
}

func (r *fakeTransactionRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to *time.Time) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	result := make([]models.Transaction, 0)
	for _, tx := range r.txs {
		if tx.UserID != userID {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && tx.Date.After(*to) {
			continue
		}
		result = append(result, tx)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *fakeTransactionRepo) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	all, err := r.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeTransactionRepo) GetTotals(ctx context.Context, userID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	all, err := r.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	var income, expense decimal.Decimal
	for _, tx := range all {
		if tx.Type == models.TransactionTypeIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense, nil
}

func (r *fakeTransactionRepo) GetCategoryCounts(ctx context.Context, userID uuid.UUID) ([]models.CategoryInfo, error) {
	all, err := r.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	infos := make([]models.CategoryInfo, 0)
	for _, tx := range all {
		key := tx.Category + "|" + string(tx.Type)
		if i, ok := index[key]; ok {
			infos[i].Count++
			continue
		}
		index[key] = len(infos)
		infos = append(infos, models.CategoryInfo{Name: tx.Category, Type: tx.Type, Count: 1})
	}
	return infos, nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, id uuid.UUID, update *models.TransactionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.txs {
		if r.txs[i].ID != id {
			continue
		}
		if update.Amount != nil {
			r.txs[i].Amount = *update.Amount
		}
		if update.Category != nil {
			r.txs[i].Category = *update.Category
		}
		if update.Type != nil {
			r.txs[i].Type = *update.Type
		}
		if update.Description != nil {
			r.txs[i].Description = *update.Description
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *fakeTransactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.txs {
		if r.txs[i].ID == id {
			r.txs = append(r.txs[:i], r.txs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeBudgetRepo struct {
	budgets map[uuid.UUID]*models.Budget
}

func newFakeBudgetRepo() *fakeBudgetRepo {
	return &fakeBudgetRepo{budgets: make(map[uuid.UUID]*models.Budget)}
}

func (r *fakeBudgetRepo) Create(_ context.Context, budget *models.Budget) error {
	for _, b := range r.budgets {
		if b.UserID == budget.UserID && b.Category == budget.Category {
			return repository.ErrAlreadyExists
		}
	}
	budget.ID = uuid.New()
	budget.IsActive = true
	copied := *budget
	r.budgets[budget.ID] = &copied
	return nil
}

func (r *fakeBudgetRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Budget, error) {
	if b, ok := r.budgets[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBudgetRepo) GetByUserID(_ context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error) {
	budgets := make([]models.Budget, 0)
	for _, b := range r.budgets {
		if b.UserID == userID && (!activeOnly || b.IsActive) {
			budgets = append(budgets, *b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}

func (r *fakeBudgetRepo) Update(_ context.Context, id uuid.UUID, update *models.BudgetUpdate) error {
	b, ok := r.budgets[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Limit != nil {
		b.Limit = *update.Limit
	}
	if update.Category != nil {
		b.Category = *update.Category
	}
	if update.AlertPercent != nil {
		b.AlertPercent = *update.AlertPercent
	}
	if update.IsActive != nil {
		b.IsActive = *update.IsActive
	}
	return nil
}

func (r *fakeBudgetRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.budgets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.budgets, id)
	return nil
}

type fakeGoalRepo struct {
	goals         map[uuid.UUID]*models.Goal
	contributions []models.GoalContribution
	failAddSaved  error
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[uuid.UUID]*models.Goal)}
}

func (r *fakeGoalRepo) Create(_ context.Context, goal *models.Goal) error {
	goal.ID = uuid.New()
	goal.Status = models.GoalStatusActive
	copied := *goal
	r.goals[goal.ID] = &copied
	return nil
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Goal, error) {
	if g, ok := r.goals[id]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeGoalRepo) GetByUserID(_ context.Context, userID uuid.UUID, status *models.GoalStatus) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	for _, g := range r.goals {
		if g.UserID == userID && (status == nil || g.Status == *status) {
			goals = append(goals, *g)
		}
	}
	return goals, nil
}

func (r *fakeGoalRepo) Update(_ context.Context, id uuid.UUID, update *models.GoalUpdate) error {
	g, ok := r.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Description != nil {
		g.Description = *update.Description
	}
	if update.Status != nil {
		g.Status = *update.Status
	}
	if update.TargetAmount != nil {
		g.TargetAmount = update.TargetAmount
	}
	return nil
}

func (r *fakeGoalRepo) AddSaved(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if r.failAddSaved != nil {
		return r.failAddSaved
	}
	g, ok := r.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.SavedAmount = g.SavedAmount.Add(amount)
	if g.TargetAmount != nil && g.SavedAmount.GreaterThanOrEqual(*g.TargetAmount) {
		g.Status = models.GoalStatusCompleted
	}
	return nil
}

func (r *fakeGoalRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.goals, id)
	return nil
}

func (r *fakeGoalRepo) AddContribution(_ context.Context, goalID uuid.UUID, contribution *models.GoalContribution) error {
	contribution.ID = uuid.New()
	contribution.GoalID = goalID
	r.contributions = append(r.contributions, *contribution)
	return nil
}

func (r *fakeGoalRepo) GetContributions(_ context.Context, goalID uuid.UUID) ([]models.GoalContribution, error) {
	result := make([]models.GoalContribution, 0)
	for _, c := range r.contributions {
		if c.GoalID == goalID {
			result = append(result, c)
		}
	}
	return result, nil
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*models.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	for _, a := range r.accounts {
		if a.UserID == account.UserID && a.Name == account.Name {
			return repository.ErrAlreadyExists
		}
	}
	account.ID = uuid.New()
	account.IsActive = true
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	if a, ok := r.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) GetByUserID(_ context.Context, userID uuid.UUID, activeOnly bool) ([]models.Account, error) {
	accounts := make([]models.Account, 0)
	for _, a := range r.accounts {
		if a.UserID == userID && (!activeOnly || a.IsActive) {
			accounts = append(accounts, *a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (r *fakeAccountRepo) Update(_ context.Context, id uuid.UUID, update *models.AccountUpdate) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Balance != nil {
		a.Balance = *update.Balance
	}
	if update.CreditLimit != nil {
		a.CreditLimit = update.CreditLimit
	}
	if update.DueDay != nil {
		a.DueDay = update.DueDay
	}
	if update.Institution != nil {
		a.Institution = *update.Institution
	}
	if update.IsActive != nil {
		a.IsActive = *update.IsActive
	}
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

type fakeRecurringRepo struct {
	items map[uuid.UUID]*models.RecurringTransaction
}

func newFakeRecurringRepo() *fakeRecurringRepo {
	return &fakeRecurringRepo{items: make(map[uuid.UUID]*models.RecurringTransaction)}
}

func (r *fakeRecurringRepo) Create(_ context.Context, rec *models.RecurringTransaction) error {
	rec.ID = uuid.New()
	rec.IsActive = true
	copied := *rec
	r.items[rec.ID] = &copied
	return nil
}

func (r *fakeRecurringRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RecurringTransaction, error) {
	if rec, ok := r.items[id]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRecurringRepo) GetByUserID(_ context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error) {
	result := make([]models.RecurringTransaction, 0)
	for _, rec := range r.items {
		if rec.UserID == userID && (!activeOnly || rec.IsActive) {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].NextDate.Before(result[j].NextDate) })
	return result, nil
}

func (r *fakeRecurringRepo) ListDue(_ context.Context, until time.Time) ([]models.RecurringTransaction, error) {
	result := make([]models.RecurringTransaction, 0)
	for _, rec := range r.items {
		if rec.IsActive && !rec.NextDate.After(until) {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].NextDate.Before(result[j].NextDate) })
	return result, nil
}

func (r *fakeRecurringRepo) Update(_ context.Context, id uuid.UUID, update *models.RecurringUpdate) error {
	rec, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Description != nil {
		rec.Description = *update.Description
	}
	if update.Amount != nil {
		rec.Amount = *update.Amount
	}
	if update.Category != nil {
		rec.Category = *update.Category
	}
	if update.Frequency != nil {
		rec.Frequency = *update.Frequency
	}
	if update.NextDate != nil {
		rec.NextDate = *update.NextDate
	}
	if update.IsActive != nil {
		rec.IsActive = *update.IsActive
	}
	return nil
}

func (r *fakeRecurringRepo) SetNextDate(_ context.Context, id uuid.UUID, next time.Time) error {
	rec, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.NextDate = next
	return nil
}

func (r *fakeRecurringRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeAssistant struct {
	phone, command string
	calls          int
	response       json.RawMessage
	err            error
}

func (a *fakeAssistant) SendCommand(_ context.Context, phone, command string) (json.RawMessage, error) {
	a.calls++
	a.phone, a.command = phone, command
	return a.response, a.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestRepos() *repository.Repositories {
	return &repository.Repositories{
		TxManager:    &fakeTxManager{},
		User:         newFakeUserRepo(),
		RefreshToken: newFakeRefreshTokenRepo(),
		Transaction:  &fakeTransactionRepo{},
		Budget:       newFakeBudgetRepo(),
		Goal:         newFakeGoalRepo(),
		Account:      newFakeAccountRepo(),
		Recurring:    newFakeRecurringRepo(),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedTx(repo repository.TransactionRepository, userID uuid.UUID, when time.Time, kind models.TransactionType, category, amount string) {
	_ = repo.Create(context.Background(), &models.Transaction{
		UserID:   userID,
		Date:     when,
		Amount:   decimal.RequireFromString(amount),
		Type:     kind,
		Category: category,
	})
}
