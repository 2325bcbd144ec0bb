package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// ChatApology is the assistant message recorded when the chat endpoint fails.
const ChatApology = "I'm having trouble connecting to the server. Please try again."

// DefaultCategory is used when the parser suggests no category.
const DefaultCategory = "Other"

// recentLimit is how many recent transactions go into the chat context.
const recentLimit = 5

var (
	incomeKeywords = []string{
		"salary", "profit", "credit", "gain", "received", "income",
		"refund", "cashback", "bonus", "won", "rent received",
		"commission", "incentive", "payout", "return", "interest",
		"salary vandhudhu", "kaasu vandhudhu", "amount vandhudhu",
		"credit achu", "kaasu varudhu", "profit achu",
		"refund vandhudhu", "cashback vandhudhu",
		"sal", "cb", "bon", "inc",
		"got money", "got salary", "money received", "credited",
	}
	expenseKeywords = []string{
		"spent", "expense", "debit", "paid", "pay", "loss",
		"shopping", "bill", "recharge", "food", "movie",
		"fuel", "rent paid", "emi", "amazon", "zomato",
		"swiggy", "uber", "ola", "gym", "medical", "hospital",
		"fee", "fine", "repair", "service", "purchase",
		"katten", "katnen", "kaasu pochu", "selavu",
		"expense achu", "amount pochu", "bill katten",
		"recharge katten", "sapadu", "teakadai", "hotel la",
		"petrol potten", "diesel potten",
		"fd", "rd", "chit",
		"i paid", "i spent", "money went", "lost money",
	}
)

// DetectType guesses the transaction type of free text. Income keywords win
// over expense keywords; text matching neither is an expense.
func DetectType(text string) models.TransactionType {
	lower := strings.ToLower(text)
	contains := func(word string) bool { return strings.Contains(lower, word) }
	if slices.ContainsFunc(incomeKeywords, contains) {
		return models.TransactionTypeIncome
	}
	if slices.ContainsFunc(expenseKeywords, contains) {
		return models.TransactionTypeExpense
	}
	return models.TransactionTypeExpense
}

// ParseTransaction asks the budget service to read free text and returns a
// prefilled transaction for the user to verify. The suggested account is
// matched case-insensitively against known accounts and falls back to the
// active scope, the first account, or the default account.
func (s *Store) ParseTransaction(ctx context.Context, text string) (*models.TransactionInput, error) {
	parsed, err := s.parse(ctx, text)
	if err != nil {
		return nil, err
	}

	in := s.prefill(parsed)
	if parsed.Type.Valid() {
		in.Type = parsed.Type
	}
	in.Account = s.matchAccount(parsed.Account)

	s.succeeded(OpParse)
	return &in, nil
}

// QuickAdd parses free text and adds it as a transaction right away. The type
// comes from keywords in the text; the account is the active scope when one
// is selected, otherwise the parsed account or the default account.
func (s *Store) QuickAdd(ctx context.Context, text string) (*Pending, error) {
	parsed, err := s.parse(ctx, text)
	if err != nil {
		return nil, err
	}

	in := s.prefill(parsed)
	in.Type = DetectType(text)

	s.mu.Lock()
	switch {
	case s.scope != ScopeAll:
		in.Account = s.scope
	case strings.TrimSpace(parsed.Account) != "":
		in.Account = parsed.Account
	default:
		in.Account = s.defaultAccount
	}
	s.mu.Unlock()

	return s.AddTransaction(ctx, in)
}

func (s *Store) parse(ctx context.Context, text string) (*models.ParsedTransaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, s.failed(ctx, OpParse, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "text is required"))
	}
	epoch, err := s.session()
	if err != nil {
		return nil, s.failed(ctx, OpParse, 0, err)
	}
	parsed, err := s.remote.ParseTransaction(ctx, text)
	if err != nil {
		return nil, s.failed(ctx, OpParse, epoch, err)
	}
	return parsed, nil
}

func (s *Store) prefill(parsed *models.ParsedTransaction) models.TransactionInput {
	in := models.TransactionInput{
		Date:     parsed.Date,
		Amount:   parsed.Amount,
		Category: strings.TrimSpace(parsed.Category),
		Note:     parsed.Note,
		Type:     models.TransactionTypeExpense,
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	if _, err := time.Parse(models.ISODay, in.Date); err != nil {
		in.Date = s.now().Format(models.ISODay)
	}
	return in
}

func (s *Store) matchAccount(suggested string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	fallback := s.defaultAccount
	switch {
	case s.scope != ScopeAll:
		fallback = s.scope
	case len(s.budget.Accounts) > 0:
		fallback = s.budget.Accounts[0].Name
	}

	if suggested = strings.TrimSpace(suggested); suggested == "" {
		return fallback
	}
	for _, acc := range s.budget.Accounts {
		if strings.EqualFold(acc.Name, suggested) {
			return acc.Name
		}
	}
	return fallback
}

// Chat sends message to the assistant along with a summary of the visible
// transactions. Both the message and the reply are appended to the chat
// history. When the assistant cannot be reached an apology is appended
// instead and the error is returned.
func (s *Store) Chat(ctx context.Context, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, s.failed(ctx, OpChat, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "message is required"))
	}
	epoch, err := s.session()
	if err != nil {
		return nil, s.failed(ctx, OpChat, 0, err)
	}

	s.mu.Lock()
	s.chat = append(s.chat, models.ChatMessage{Role: models.ChatRoleUser, Content: message, At: s.now()})
	financial := s.financialContextLocked()
	s.mu.Unlock()
	s.publish()

	reply, err := s.remote.Chat(ctx, message, financial)

	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale(OpChat, epoch)
		return nil, apperrors.ErrNoSession
	}
	if err != nil {
		s.chat = append(s.chat, models.ChatMessage{Role: models.ChatRoleAssistant, Content: ChatApology, At: s.now()})
		s.mu.Unlock()
		s.publish()
		return nil, s.failed(ctx, OpChat, epoch, err)
	}
	answer := models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply, At: s.now()}
	s.chat = append(s.chat, answer)
	s.mu.Unlock()

	s.publish()
	return &answer, nil
}

// ClearChat empties the chat history.
func (s *Store) ClearChat() {
	s.mu.Lock()
	s.chat = []models.ChatMessage{}
	s.mu.Unlock()
	s.publish()
}

// Plan asks the budget service for a spending plan based on the budget
// settings, goals and this month's visible spending. Local state is not
// changed.
func (s *Store) Plan(ctx context.Context, userContext, periodContext string) (*models.Plan, error) {
	epoch, err := s.session()
	if err != nil {
		return nil, s.failed(ctx, OpPlan, 0, err)
	}

	s.mu.Lock()
	month := summarize(s.projectLocked(), s.now())
	req := models.PlanRequest{
		Salary:          s.budget.Salary,
		FixedCosts:      s.budget.FixedCosts,
		Goals:           slices.Clone(s.budget.Goals),
		CurrentSpending: month.expense,
		SpendingSummary: month.byCategory,
		UserContext:     userContext,
		PeriodContext:   periodContext,
	}
	s.mu.Unlock()

	plan, err := s.remote.Plan(ctx, req)
	if err != nil {
		return nil, s.failed(ctx, OpPlan, epoch, err)
	}
	s.succeeded(OpPlan)
	return plan, nil
}

// monthSummary totals the transactions dated in one calendar month.
type monthSummary struct {
	income     decimal.Decimal
	expense    decimal.Decimal
	byCategory map[string]decimal.Decimal
}

func summarize(txs []models.Transaction, now time.Time) monthSummary {
	sum := monthSummary{byCategory: make(map[string]decimal.Decimal)}
	for _, tx := range txs {
		day, err := time.Parse(models.ISODay, tx.Date)
		if err != nil || day.Year() != now.Year() || day.Month() != now.Month() {
			continue
		}
		switch tx.Type {
		case models.TransactionTypeIncome:
			sum.income = sum.income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			sum.expense = sum.expense.Add(tx.Amount)
			sum.byCategory[tx.Category] = sum.byCategory[tx.Category].Add(tx.Amount)
		}
	}
	return sum
}

type categoryTotal struct {
	name  string
	total decimal.Decimal
}

// sortedCategories orders categories by total, largest first.
func sortedCategories(byCategory map[string]decimal.Decimal) []categoryTotal {
	out := make([]categoryTotal, 0, len(byCategory))
	for name, total := range byCategory {
		out = append(out, categoryTotal{name: name, total: total})
	}
	slices.SortFunc(out, func(a, b categoryTotal) int {
		if c := b.total.Cmp(a.total); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return out
}

func (s *Store) financialContextLocked() string {
	now := s.now()
	visible := s.projectLocked()
	month := summarize(visible, now)

	var b strings.Builder
	fmt.Fprintf(&b, "CURRENT DATE: %s\n\n", now.Format("Mon Jan 02 2006"))
	fmt.Fprintf(&b, "MONTHLY SUMMARY (%s):\n", now.Format("January"))
	fmt.Fprintf(&b, "- Income: ₹%s\n", month.income)
	fmt.Fprintf(&b, "- Expenses: ₹%s\n", month.expense)
	fmt.Fprintf(&b, "- Balance: ₹%s\n", month.income.Sub(month.expense))
	fmt.Fprintf(&b, "- Salary Budget: ₹%s\n\n", s.budget.Salary)

	b.WriteString("SPENDING BY CATEGORY:\n")
	cats := sortedCategories(month.byCategory)
	if len(cats) == 0 {
		b.WriteString("No spending yet\n")
	}
	for _, c := range cats {
		fmt.Fprintf(&b, "- %s: ₹%s\n", c.name, c.total)
	}

	b.WriteString("\nRECENT TRANSACTIONS:\n")
	for _, tx := range visible[:min(recentLimit, len(visible))] {
		fmt.Fprintf(&b, "%s: %s (₹%s)\n", tx.Date, tx.Note, tx.Amount)
	}
	return b.String()
}
