package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/settlement-core/internal/adapter/http/models"
	"github.com/api-sage/settlement-core/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/settlement-core/internal/commons"
	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/gate"
	"github.com/api-sage/settlement-core/internal/logger"
)

// SettlementService resolves the parties of a document settlement, runs
// the gate checks and hands the assembled posting to the repository's
// atomic unit. The repository re-checks document state under lock, so the
// checks here only short-circuit the obvious failures early.
type SettlementService struct {
	accounts  repo_interfaces.AccountRepository
	companies repo_interfaces.CompanyRepository
	invoices  repo_interfaces.InvoiceRepository
	orders    repo_interfaces.OrderRepository
	products  repo_interfaces.ProductRepository
	links     repo_interfaces.PaymentLinkRepository
	ledger    repo_interfaces.LedgerRepository
	gate      *gate.Gate
	ceiling   decimal.Decimal
	linkBase  string
	now       func() time.Time
}

func NewSettlementService(
	accounts repo_interfaces.AccountRepository,
	companies repo_interfaces.CompanyRepository,
	invoices repo_interfaces.InvoiceRepository,
	orders repo_interfaces.OrderRepository,
	products repo_interfaces.ProductRepository,
	links repo_interfaces.PaymentLinkRepository,
	ledger repo_interfaces.LedgerRepository,
	g *gate.Gate,
	ceiling decimal.Decimal,
	linkBaseURL string,
) *SettlementService {
	return &SettlementService{
		accounts:  accounts,
		companies: companies,
		invoices:  invoices,
		orders:    orders,
		products:  products,
		links:     links,
		ledger:    ledger,
		gate:      g,
		ceiling:   ceiling,
		linkBase:  strings.TrimRight(linkBaseURL, "/"),
		now:       time.Now,
	}
}

func (s *SettlementService) SettleInvoice(ctx context.Context, request models.SettleInvoiceRequest) (commons.Response[models.TransactionResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.TransactionResponse]("invalid settlement request", err)
	}

	invoice, err := s.invoices.GetByID(ctx, request.InvoiceID)
	if err != nil {
		return failure[models.TransactionResponse]("invoice not found", err)
	}
	if err := s.gate.Authorize(ctx, request.PayerID, gate.ActionSettle, "invoice", invoice); err != nil {
		return failure[models.TransactionResponse]("settlement not permitted", err)
	}

	now := s.now()
	if result := gate.CheckInvoicePayable(invoice, now); !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}
	if result := gate.CheckAmount(invoice.Total, s.ceiling); !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}

	payer, err := s.activeAccount(ctx, request.PayerID)
	if err != nil {
		return failure[models.TransactionResponse]("payer account unavailable", err)
	}
	owner, err := s.companyOwner(ctx, invoice.CompanyID)
	if err != nil {
		return failure[models.TransactionResponse]("payee could not be resolved", err)
	}

	transactionID := uuid.NewString()
	companyID := invoice.CompanyID
	settlement := domain.InvoiceSettlement{
		InvoiceID: invoice.ID,
		Now:       now,
		Posting: domain.Posting{
			TransactionID: transactionID,
			PayerID:       payer.ID,
			ReceiverID:    owner.ID,
			CompanyID:     &companyID,
			Amount:        invoice.Total,
			Type:          domain.TransactionTypeInvoicePayment,
			SourceApp:     sourceAppInvoicing,
			Description:   "invoice settlement " + invoice.ID,
			Metadata:      domain.InvoiceMetadata{InvoiceID: invoice.ID},
			Events: []domain.OutboxEvent{
				domain.NewTransactionCreatedEvent(transactionID, payer.ID, owner.ID, invoice.Total, sourceAppInvoicing),
				domain.NewInvoicePaidEvent(invoice.ID, owner.ID, payer.ID, transactionID, invoice.Total),
			},
		},
	}

	txn, err := withConflictRetry(ctx, func() (domain.Transaction, error) {
		return s.invoices.Settle(ctx, settlement)
	})
	if err != nil {
		logger.Error("invoice settlement failed", err, logger.Fields{
			"invoiceId": invoice.ID,
			"payerId":   payer.ID,
		})
		return failure[models.TransactionResponse]("invoice settlement failed", err)
	}

	logger.Info("invoice settled", logger.Fields{
		"invoiceId":     invoice.ID,
		"transactionId": txn.ID,
		"amount":        txn.Amount.String(),
	})
	return commons.SuccessResponse("invoice settled", toTransactionResponse(txn)), nil
}

func (s *SettlementService) SettleOrder(ctx context.Context, request models.SettleOrderRequest) (commons.Response[models.TransactionResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.TransactionResponse]("invalid settlement request", err)
	}

	order, err := s.orders.GetByID(ctx, request.OrderID)
	if err != nil {
		return failure[models.TransactionResponse]("order not found", err)
	}
	if err := s.gate.Authorize(ctx, request.PayerID, gate.ActionSettle, "order", order); err != nil {
		return failure[models.TransactionResponse]("settlement not permitted", err)
	}

	if result := gate.CheckOrderPayable(order, request.PayerID); !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}
	if result := gate.CheckAmount(order.Total, s.ceiling); !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}

	// Advisory stock check; the authoritative one runs under the
	// settlement lock inside the repository.
	if result, err := s.checkStock(ctx, order.Items); err != nil {
		return failure[models.TransactionResponse]("stock could not be verified", err)
	} else if !result.Valid {
		return failure[models.TransactionResponse](result.Reason, result.Err)
	}

	payer, err := s.activeAccount(ctx, request.PayerID)
	if err != nil {
		return failure[models.TransactionResponse]("payer account unavailable", err)
	}
	owner, err := s.companyOwner(ctx, order.CompanyID)
	if err != nil {
		return failure[models.TransactionResponse]("payee could not be resolved", err)
	}

	transactionID := uuid.NewString()
	companyID := order.CompanyID
	settlement := domain.OrderSettlement{
		OrderID: order.ID,
		PayerID: payer.ID,
		Now:     s.now(),
		Posting: domain.Posting{
			TransactionID: transactionID,
			PayerID:       payer.ID,
			ReceiverID:    owner.ID,
			CompanyID:     &companyID,
			Amount:        order.Total,
			Type:          domain.TransactionTypeProductPurchase,
			SourceApp:     sourceAppInventory,
			Description:   "order settlement " + order.ID,
			Metadata:      domain.OrderMetadata{OrderID: order.ID},
			Events: []domain.OutboxEvent{
				domain.NewTransactionCreatedEvent(transactionID, payer.ID, owner.ID, order.Total, sourceAppInventory),
				domain.NewOrderPaidEvent(order.ID, owner.ID, payer.ID, transactionID, order.Total),
			},
		},
	}

	txn, err := withConflictRetry(ctx, func() (domain.Transaction, error) {
		return s.orders.Settle(ctx, settlement)
	})
	if err != nil {
		logger.Error("order settlement failed", err, logger.Fields{
			"orderId": order.ID,
			"payerId": payer.ID,
		})
		return failure[models.TransactionResponse]("order settlement failed", err)
	}

	logger.Info("order settled", logger.Fields{
		"orderId":       order.ID,
		"transactionId": txn.ID,
		"amount":        txn.Amount.String(),
	})
	return commons.SuccessResponse("order settled", toTransactionResponse(txn)), nil
}

// PeerTransfer resolves the receiver by email before delegating to the
// ledger. An unknown or inactive receiver surfaces as ErrReceiverNotFound
// without leaking whether the address exists.
func (s *SettlementService) PeerTransfer(ctx context.Context, request models.PeerTransferRequest) (commons.Response[models.TransactionResponse], error) {
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
	receiver, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(request.ReceiverEmail))
	if err != nil || !receiver.IsActive {
		return failure[models.TransactionResponse]("receiver not found", domain.ErrReceiverNotFound)
	}
	if receiver.ID == payer.ID {
		return failure[models.TransactionResponse]("cannot transfer to yourself", domain.ErrInvalidAmount)
	}

	transactionID := uuid.NewString()
	posting := domain.Posting{
		TransactionID: transactionID,
		PayerID:       payer.ID,
		ReceiverID:    receiver.ID,
		Amount:        request.Amount,
		Type:          domain.TransactionTypeTransfer,
		SourceApp:     sourceAppWallet,
		Description:   request.Description,
		Metadata:      domain.TransferMetadata{ReceiverEmail: receiver.Email},
		Events: []domain.OutboxEvent{
			domain.NewTransactionCreatedEvent(transactionID, payer.ID, receiver.ID, request.Amount, sourceAppWallet),
		},
	}

	txn, err := withConflictRetry(ctx, func() (domain.Transaction, error) {
		return s.ledger.Post(ctx, posting)
	})
	if err != nil {
		logger.Error("peer transfer failed", err, logger.Fields{
			"payerId":    payer.ID,
			"receiverId": receiver.ID,
		})
		return failure[models.TransactionResponse]("transfer failed", err)
	}

	logger.Info("peer transfer completed", logger.Fields{
		"transactionId": txn.ID,
		"payerId":       payer.ID,
		"receiverId":    receiver.ID,
	})
	return commons.SuccessResponse("transfer completed", toTransactionResponse(txn)), nil
}

// CreatePaymentLink binds an opaque token to a payable document so a
// payer without a resolved identity can settle it later.
func (s *SettlementService) CreatePaymentLink(ctx context.Context, request models.CreatePaymentLinkRequest) (commons.Response[models.PaymentLinkResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.PaymentLinkResponse]("invalid payment link request", err)
	}

	domainType := domain.LinkDomainType(strings.ToLower(strings.TrimSpace(request.DomainType)))
	switch domainType {
	case domain.LinkDomainInvoice:
		invoice, err := s.invoices.GetByID(ctx, request.DomainID)
		if err != nil {
			return failure[models.PaymentLinkResponse]("invoice not found", err)
		}
		if err := invoice.Payable(s.now()); err != nil {
			return failure[models.PaymentLinkResponse]("invoice is not payable", err)
		}
	case domain.LinkDomainOrder:
		order, err := s.orders.GetByID(ctx, request.DomainID)
		if err != nil {
			return failure[models.PaymentLinkResponse]("order not found", err)
		}
		if err := order.Payable(); err != nil {
			return failure[models.PaymentLinkResponse]("order is not payable", err)
		}
	}

	link, err := s.links.Create(ctx, domain.PaymentLink{
		Token:      uuid.NewString(),
		DomainID:   request.DomainID,
		DomainType: domainType,
	})
	if err != nil {
		return failure[models.PaymentLinkResponse]("payment link could not be created", err)
	}

	logger.Info("payment link created", logger.Fields{
		"domainId":   link.DomainID,
		"domainType": string(link.DomainType),
	})
	return commons.SuccessResponse("payment link created", models.PaymentLinkResponse{
		Token: link.Token,
		URL:   s.linkBase + "/" + link.Token,
	}), nil
}

// SettlePaymentLink settles the document a link is bound to. The link is
// marked settled after the money moves; a failure to mark it degrades the
// response instead of failing a settlement that already committed.
func (s *SettlementService) SettlePaymentLink(ctx context.Context, request models.SettlePaymentLinkRequest) (commons.Response[models.TransactionResponse], error) {
	if err := request.Validate(); err != nil {
		return failure[models.TransactionResponse]("invalid payment link request", err)
	}

	link, err := s.links.GetByToken(ctx, request.Token)
	if err != nil {
		return failure[models.TransactionResponse]("payment link not found", err)
	}
	if link.SettledAt != nil {
		return failure[models.TransactionResponse]("payment link already settled", domain.ErrAlreadySettled)
	}

	var response commons.Response[models.TransactionResponse]
	switch link.DomainType {
	case domain.LinkDomainInvoice:
		response, err = s.SettleInvoice(ctx, models.SettleInvoiceRequest{
			InvoiceID: link.DomainID,
			PayerID:   request.PayerID,
		})
	case domain.LinkDomainOrder:
		response, err = s.SettleOrder(ctx, models.SettleOrderRequest{
			OrderID: link.DomainID,
			PayerID: request.PayerID,
		})
	default:
		return failure[models.TransactionResponse]("payment link is malformed", domain.ErrNotFound)
	}
	if err != nil {
		return response, err
	}

	if markErr := s.links.MarkSettled(ctx, link.Token, s.now()); markErr != nil {
		logger.Error("payment link could not be marked settled", markErr, logger.Fields{
			"domainId": link.DomainID,
		})
		if response.Data != nil {
			return commons.DegradedResponse(response.Message, *response.Data,
				"settlement committed but the link is still marked open"), nil
		}
	}
	return response, nil
}

func (s *SettlementService) activeAccount(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if !account.IsActive {
		return domain.Account{}, domain.ErrAccountInactive
	}
	return account, nil
}

func (s *SettlementService) companyOwner(ctx context.Context, companyID string) (domain.Account, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return domain.Account{}, err
	}
	return s.accounts.GetByID(ctx, company.OwnerID)
}

func (s *SettlementService) checkStock(ctx context.Context, items []domain.LineItem) (gate.Result, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return gate.Result{}, err
	}
	return gate.CheckStock(items, products), nil
}
