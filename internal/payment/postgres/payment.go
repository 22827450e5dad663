package postgres

import (
	paymentmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/payment"
	paymentpkg "github.com/smilesniffer/ticketing-backend/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) CreatePayment(p *paymentmodel.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByCheckoutRequestID(checkoutRequestID string) (*paymentmodel.Payment, error) {
	var p paymentmodel.Payment
	err := r.db.Where("checkout_request_id = ?", checkoutRequestID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AppendCallback inserts one callback row. The log is append-only; there is
// deliberately no update or delete counterpart.
func (r *PaymentRepository) AppendCallback(cb *paymentmodel.MpesaCallback) error {
	return r.db.Create(cb).Error
}

func (r *PaymentRepository) ListCallbacks(limit, offset int) ([]*paymentmodel.MpesaCallback, error) {
	var callbacks []*paymentmodel.MpesaCallback
	err := r.db.Order("received_at DESC").Limit(limit).Offset(offset).Find(&callbacks).Error
	return callbacks, err
}
