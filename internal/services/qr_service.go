package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

var ErrPaymentRequestNotFound = errors.New("invalid or expired QR code")

// PaymentRequest is what a payee encodes into a QR code: pay Amount to
// ReceiverEmail.
type PaymentRequest struct {
	Code          string          `json:"code"`
	ReceiverID    int             `json:"receiver_id"`
	ReceiverName  string          `json:"receiver_name"`
	ReceiverEmail string          `json:"receiver_email"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// QRService issues single use payment request codes backed by redis.
type QRService struct {
	redis  *redis.Client
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewQRService(redis *redis.Client, ttl time.Duration) *QRService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QRService{
		redis:  redis,
		ttl:    ttl,
		now:    time.Now,
		random: rand.Reader,
	}
}

// CreateRequest stores a payment request for receiver and returns it with a
// base64 PNG rendering of its code.
func (s *QRService) CreateRequest(ctx context.Context, receiver models.PublicAccount, amount decimal.Decimal) (PaymentRequest, string, error) {
	if !bank.ValidAmount(amount) {
		return PaymentRequest{}, "", bank.ErrInvalidAmount
	}
	if s.redis == nil {
		return PaymentRequest{}, "", bank.ErrStorageUnavailable
	}

	code, err := s.generateNonce()
	if err != nil {
		return PaymentRequest{}, "", err
	}

	req := PaymentRequest{
		Code:          code,
		ReceiverID:    receiver.ID,
		ReceiverName:  receiver.Name,
		ReceiverEmail: receiver.Email,
		Amount:        amount,
		ExpiresAt:     s.now().Add(s.ttl).UTC(),
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return PaymentRequest{}, "", err
	}

	if err := s.redis.Set(ctx, qrKey(req.Code), string(jsonData), s.ttl).Err(); err != nil {
		return PaymentRequest{}, "", fmt.Errorf("%w: %v", bank.ErrStorageUnavailable, err)
	}

	qrImage, err := renderQR(req.Code)
	if err != nil {
		return PaymentRequest{}, "", err
	}
	return req, qrImage, nil
}

// Peek returns a stored payment request without consuming it.
func (s *QRService) Peek(ctx context.Context, code string) (PaymentRequest, error) {
	if s.redis == nil {
		return PaymentRequest{}, bank.ErrStorageUnavailable
	}
	return decodeRequest(s.redis.Get(ctx, qrKey(code)))
}

// Resolve consumes a payment request. GETDEL makes the read and the delete
// one step, so concurrent callers cannot both win the same code.
func (s *QRService) Resolve(ctx context.Context, code string) (PaymentRequest, error) {
	if s.redis == nil {
		return PaymentRequest{}, bank.ErrStorageUnavailable
	}
	return decodeRequest(s.redis.GetDel(ctx, qrKey(code)))
}

// Restore puts back a request that was consumed but not paid, for whatever is
// left of its lifetime. A code that has expired in the meantime, or that was
// reissued, is left alone.
func (s *QRService) Restore(ctx context.Context, req PaymentRequest) error {
	if s.redis == nil {
		return bank.ErrStorageUnavailable
	}

	ttl := req.ExpiresAt.Sub(s.now()).Truncate(time.Second)
	if ttl < time.Second {
		return nil
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := s.redis.SetNX(ctx, qrKey(req.Code), string(jsonData), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", bank.ErrStorageUnavailable, err)
	}
	log.Printf("[QR] Payment request %s restored for %s", req.Code, ttl)
	return nil
}

func decodeRequest(cmd *redis.StringCmd) (PaymentRequest, error) {
	data, err := cmd.Bytes()
	if err == redis.Nil {
		return PaymentRequest{}, ErrPaymentRequestNotFound
	}
	if err != nil {
		return PaymentRequest{}, fmt.Errorf("%w: %v", bank.ErrStorageUnavailable, err)
	}

	var req PaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return PaymentRequest{}, ErrPaymentRequestNotFound
	}
	return req, nil
}

func qrKey(code string) string {
	return "kodbank:qr:" + code
}

func renderQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *QRService) generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("generate payment code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
