package partner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/partner"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// MockClientRepository is a mock implementation of partner.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Save(ctx context.Context, client *partner.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*partner.Client], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*partner.Client]), args.Error(1)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*billing.Invoice], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of ledger.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByNumber(ctx context.Context, number string) (*ledger.Payment, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*ledger.Payment], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*ledger.Payment]), args.Error(1)
}

func (m *MockPaymentRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*ledger.Payment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumAllocatedToInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumAllocatedToInvoiceExcludingPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID, paymentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) GenerateNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newClientService() (*ClientService, *MockClientRepository, *MockInvoiceRepository, *MockPaymentRepository) {
	clientRepo := new(MockClientRepository)
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	return NewClientService(clientRepo, invoiceRepo, paymentRepo), clientRepo, invoiceRepo, paymentRepo
}

func newTestClient(t *testing.T) *partner.Client {
	t.Helper()
	client, err := partner.NewClient("Ets Bennani", "0661234567", "12 Rue des Orangers", "Casablanca")
	require.NoError(t, err)
	return client
}

func TestClientService_Create(t *testing.T) {
	t.Run("creates a client", func(t *testing.T) {
		service, clientRepo, _, _ := newClientService()
		clientRepo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Client")).Return(nil)

		resp, err := service.Create(context.Background(), CreateClientRequest{
			Name: "Ets Bennani",
			City: "Casablanca",
		})

		require.NoError(t, err)
		assert.Equal(t, "Ets Bennani", resp.Name)
		clientRepo.AssertExpectations(t)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		service, _, _, _ := newClientService()

		_, err := service.Create(context.Background(), CreateClientRequest{Name: ""})

		assert.Error(t, err)
	})
}

func TestClientService_Delete(t *testing.T) {
	t.Run("refuses when invoices exist", func(t *testing.T) {
		service, clientRepo, invoiceRepo, _ := newClientService()
		client := newTestClient(t)
		clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
		invoiceRepo.On("CountByClientID", mock.Anything, client.ID).Return(int64(3), nil)

		err := service.Delete(context.Background(), client.ID)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		clientRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("refuses when payments exist", func(t *testing.T) {
		service, clientRepo, invoiceRepo, paymentRepo := newClientService()
		client := newTestClient(t)
		payment, err := ledger.NewPayment("REG-2026-30001", client.ID,
			valueobject.NewMoneyMADFromFloat(500), "BMCE", time.Now(), nil)
		require.NoError(t, err)

		clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
		invoiceRepo.On("CountByClientID", mock.Anything, client.ID).Return(int64(0), nil)
		paymentRepo.On("FindByClientID", mock.Anything, client.ID).Return([]*ledger.Payment{payment}, nil)

		err = service.Delete(context.Background(), client.ID)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("deletes a client with no history", func(t *testing.T) {
		service, clientRepo, invoiceRepo, paymentRepo := newClientService()
		client := newTestClient(t)
		clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
		invoiceRepo.On("CountByClientID", mock.Anything, client.ID).Return(int64(0), nil)
		paymentRepo.On("FindByClientID", mock.Anything, client.ID).Return([]*ledger.Payment{}, nil)
		clientRepo.On("Delete", mock.Anything, client.ID).Return(nil)

		err := service.Delete(context.Background(), client.ID)

		require.NoError(t, err)
		clientRepo.AssertExpectations(t)
	})
}

func TestClientService_Statement(t *testing.T) {
	service, clientRepo, invoiceRepo, paymentRepo := newClientService()
	client := newTestClient(t)

	// Finalized invoice of 1000.00 with 2 of 10 units returned (200.00)
	invoice, err := billing.NewInvoice("FAC-2026-00001", client.ID, client.Name, time.Now())
	require.NoError(t, err)
	line, err := invoice.AddLine(uuid.New(), "CARR-6060", "Ceramic tile 60x60", 10,
		valueobject.NewMoneyMADFromFloat(100))
	require.NoError(t, err)
	require.NoError(t, invoice.Finalize())
	require.NoError(t, invoice.ApplyReturn(line.ID, 2))

	// Draft invoice that must not appear on the statement
	draft, err := billing.NewInvoice("FAC-2026-00002", client.ID, client.Name, time.Now())
	require.NoError(t, err)
	_, err = draft.AddLine(uuid.New(), "CIM-425", "Cement 42.5", 5, valueobject.NewMoneyMADFromFloat(80))
	require.NoError(t, err)

	// Payment of 300.00 fully allocated to the invoice
	payment, err := ledger.NewPayment("REG-2026-30001", client.ID,
		valueobject.NewMoneyMADFromFloat(300), "Attijariwafa Bank", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, payment.Allocate(invoice.ID, valueobject.NewMoneyMADFromFloat(300)))

	clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	invoiceRepo.On("FindByClientID", mock.Anything, client.ID).Return([]*billing.Invoice{invoice, draft}, nil)
	paymentRepo.On("FindByClientID", mock.Anything, client.ID).Return([]*ledger.Payment{payment}, nil)
	paymentRepo.On("SumAllocatedToInvoice", mock.Anything, invoice.ID).Return(decimal.NewFromFloat(300), nil)

	statement, err := service.Statement(context.Background(), client.ID)
	require.NoError(t, err)

	require.Len(t, statement.Invoices, 1, "draft invoices carry no financial effect")
	invLine := statement.Invoices[0]
	assert.True(t, invLine.TotalAmount.Equal(decimal.NewFromFloat(1000)))
	assert.True(t, invLine.Returned.Equal(decimal.NewFromFloat(200)))
	assert.True(t, invLine.NetPayable.Equal(decimal.NewFromFloat(800)))
	assert.True(t, invLine.Balance.Equal(decimal.NewFromFloat(500)))

	require.Len(t, statement.Payments, 1)
	payLine := statement.Payments[0]
	assert.True(t, payLine.Amount.Equal(decimal.NewFromFloat(300)))
	assert.True(t, payLine.Unallocated.Equal(decimal.Zero))

	assert.True(t, statement.TotalInvoiced.Equal(decimal.NewFromFloat(1000)))
	assert.True(t, statement.TotalReturned.Equal(decimal.NewFromFloat(200)))
	assert.True(t, statement.TotalPaid.Equal(decimal.NewFromFloat(300)))
	assert.True(t, statement.Balance.Equal(decimal.NewFromFloat(500)), "1000 - 200 - 300")
}
