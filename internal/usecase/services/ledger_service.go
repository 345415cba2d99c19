package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/settlement-core/internal/commons"
	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/gate"
	"github.com/api-sage/settlement-core/internal/logger"
)

// LedgerService owns the wallet-level operations. Settlement against
// documents lives in SettlementService; both funnel into the ledger
// repository's atomic posting unit.
type LedgerService struct {
	accounts repo_interfaces.AccountRepository
	ledger   repo_interfaces.LedgerRepository
	gate     *gate.Gate
	ceiling  decimal.Decimal
}

func NewLedgerService(
	accounts repo_interfaces.AccountRepository,
	ledger repo_interfaces.LedgerRepository,
	g *gate.Gate,
	ceiling decimal.Decimal,
) *LedgerService {
	return &LedgerService{
		accounts: accounts,
		ledger:   ledger,
		gate:     g,
		ceiling:  ceiling,
	}
}

func (s *LedgerService) TransferFunds(ctx context.Context, request models.TransferRequest) (commons.Response[models.TransactionResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.TransactionResponse]("invalid transfer request", err)
	}
	if result := gate.CheckAmount(request.Amount, s.ceiling); !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}
	if err := s.gate.Authorize(ctx, request.PayerID, gate.ActionTransfer, "wallet", request.PayerID); err != nil {
		return failure[models.TransactionResponse]("transfer not permitted", err)
	}

	payer, err := s.activeAccount(ctx, request.PayerID)
	if err != nil {
		return failure[models.TransactionResponse]("payer account unavailable", err)
	}
	receiver, err := s.activeAccount(ctx, request.ReceiverID)
	if err != nil {
		return failure[models.TransactionResponse]("receiver account unavailable", err)
	}

	transactionID := uuid.NewString()
	posting := domain.Posting{
		TransactionID: transactionID,
		PayerID:       payer.ID,
		ReceiverID:    receiver.ID,
		Amount:        request.Amount,
		Type:          domain.TransactionTypeTransfer,
		SourceApp:     strings.ToLower(strings.TrimSpace(request.SourceApp)),
		Description:   request.Description,
		Metadata:      domain.TransferMetadata{Reference: request.Reference},
		Events: []domain.OutboxEvent{
			domain.NewTransactionCreatedEvent(transactionID, payer.ID, receiver.ID, request.Amount, request.SourceApp),
		},
	}

	txn, err := withConflictRetry(ctx, func() (domain.Transaction, error) {
		return s.ledger.Post(ctx, posting)
	})
	if err != nil {
		logger.Error("transfer posting failed", err, logger.Fields{
			"payerId":    payer.ID,
			"receiverId": receiver.ID,
			"amount":     request.Amount.String(),
		})
		return failure[models.TransactionResponse]("transfer failed", err)
	}

	logger.Info("transfer completed", logger.Fields{
		"transactionId": txn.ID,
		"payerId":       payer.ID,
		"receiverId":    receiver.ID,
		"amount":        txn.Amount.String(),
	})
	return commons.SuccessResponse("transfer completed", toTransactionResponse(txn)), nil
}

// TopUpWallet credits immediately when no provider reference is given.
// With a reference the transaction is recorded pending and no balance
// moves until the provider webhook confirms it.
func (s *LedgerService) TopUpWallet(ctx context.Context, request models.TopUpRequest) (commons.Response[models.TransactionResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.TransactionResponse]("invalid top-up request", err)
	}
	if result := gate.CheckAmount(request.Amount, s.ceiling); !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}
	if err := s.gate.Authorize(ctx, request.UserID, gate.ActionTopUp, "wallet", request.UserID); err != nil {
		return failure[models.TransactionResponse]("top-up not permitted", err)
	}

	account, err := s.activeAccount(ctx, request.UserID)
	if err != nil {
		return failure[models.TransactionResponse]("account unavailable", err)
	}

	reference := strings.TrimSpace(request.ProviderReference)
	transactionID := uuid.NewString()
	posting := domain.Posting{
		TransactionID: transactionID,
		PayerID:       account.ID,
		ReceiverID:    account.ID,
		Amount:        request.Amount,
		Type:          domain.TransactionTypeWalletTopUp,
		SourceApp:     sourceAppWallet,
		Description:   "wallet top-up via " + strings.ToLower(strings.TrimSpace(request.Method)),
		Metadata: domain.TopUpMetadata{
			Method:            strings.ToLower(strings.TrimSpace(request.Method)),
			ProviderReference: reference,
		},
		SkipDebit: true,
	}

	if reference == "" {
		posting.Events = []domain.OutboxEvent{
			domain.NewTopUpEvent(domain.EventKindTopUpCompleted, account.ID, transactionID, request.Amount),
		}
		txn, err := withConflictRetry(ctx, func() (domain.Transaction, error) {
			return s.ledger.Post(ctx, posting)
		})
		if err != nil {
			logger.Error("top-up posting failed", err, logger.Fields{"userId": account.ID})
			return failure[models.TransactionResponse]("top-up failed", err)
		}
		logger.Info("wallet topped up", logger.Fields{
			"transactionId": txn.ID,
			"userId":        account.ID,
			"amount":        txn.Amount.String(),
		})
		return commons.SuccessResponse("wallet topped up", toTransactionResponse(txn)), nil
	}

	txn, err := withConflictRetry(ctx, func() (domain.Transaction, error) {
		return s.ledger.PostPending(ctx, posting)
	})
	if err != nil {
		logger.Error("pending top-up failed", err, logger.Fields{"userId": account.ID, "reference": reference})
		return failure[models.TransactionResponse]("top-up failed", err)
	}
	logger.Info("top-up pending provider confirmation", logger.Fields{
		"transactionId": txn.ID,
		"userId":        account.ID,
		"reference":     reference,
	})
	return commons.SuccessResponse("top-up pending provider confirmation", toTransactionResponse(txn)), nil
}

// HandleProviderWebhook resolves a provider callback against the pending
// top-up it references. The credit is applied exactly once; replays get
// domain.ErrAlreadyProcessed. A successful callback whose amount does not
// match the pending transaction fails the top-up instead of crediting.
func (s *LedgerService) HandleProviderWebhook(ctx context.Context, request models.ProviderWebhookRequest) (commons.Response[models.TransactionResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.TransactionResponse]("invalid webhook payload", err)
	}

	pending, err := s.ledger.GetByProviderReference(ctx, request.Reference)
	if err != nil {
		return failure[models.TransactionResponse]("unknown provider reference", err)
	}

	status := strings.ToUpper(strings.TrimSpace(request.Status))
	succeeded := status == models.WebhookStatusSuccessful
	if succeeded && !request.Amount.Equal(pending.Amount) {
		logger.Error("webhook amount mismatch", domain.ErrInvalidAmount, logger.Fields{
			"reference": request.Reference,
			"expected":  pending.Amount.String(),
			"received":  request.Amount.String(),
		})
		succeeded = false
	}

	var txn domain.Transaction
	if succeeded {
		events := []domain.OutboxEvent{
			domain.NewTopUpEvent(domain.EventKindTopUpCompleted, pending.ReceiverID, pending.ID, pending.Amount),
		}
		txn, err = withConflictRetry(ctx, func() (domain.Transaction, error) {
			return s.ledger.CompleteByReference(ctx, request.Reference, events)
		})
	} else {
		events := []domain.OutboxEvent{
			domain.NewTopUpEvent(domain.EventKindTopUpFailed, pending.ReceiverID, pending.ID, pending.Amount),
		}
		txn, err = withConflictRetry(ctx, func() (domain.Transaction, error) {
			return s.ledger.FailByReference(ctx, request.Reference, events)
		})
	}
	if err != nil {
		return failure[models.TransactionResponse]("webhook processing failed", err)
	}

	logger.Info("provider webhook processed", logger.Fields{
		"transactionId": txn.ID,
		"reference":     request.Reference,
		"status":        string(txn.Status),
	})
	if txn.Status == domain.TransactionStatusCompleted {
		return commons.SuccessResponse("top-up completed", toTransactionResponse(txn)), nil
	}
	return commons.SuccessResponse("top-up marked failed", toTransactionResponse(txn)), nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, transactionID string) (commons.Response[models.TransactionResponse], error) {
	if strings.TrimSpace(transactionID) == "" {
		return failure[models.TransactionResponse]("transaction id is required", domain.ErrNotFound)
	}
	txn, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return failure[models.TransactionResponse]("transaction not found", err)
	}
	return commons.SuccessResponse("transaction found", toTransactionResponse(txn)), nil
}

func (s *LedgerService) activeAccount(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if !account.IsActive {
		return domain.Account{}, domain.ErrAccountInactive
	}
	return account, nil
}
