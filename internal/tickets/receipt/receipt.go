package receipt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"ms-servicing/internal/billing"
	"ms-servicing/internal/models"

	"github.com/skip2/go-qrcode"
)

// Slip is what the workshop scans at vehicle drop-off or pickup.
type Slip struct {
	TicketID      int64               `json:"ticket_id"`
	CustomerID    int64               `json:"customer_id"`
	Plate         string              `json:"plate"`
	ServiceTypes  []string            `json:"service_types"`
	ServiceDate   string              `json:"service_date"`
	Status        models.TicketStatus `json:"status"`
	PickupAddress string              `json:"pickup_address,omitempty"`
	Billing       billing.Summary     `json:"billing"`
	IssuedAt      time.Time           `json:"issued_at"`
}

func NewSlip(t *models.Ticket, now time.Time) Slip {
	return Slip{
		TicketID:      t.ID,
		CustomerID:    t.CustomerID,
		Plate:         t.Plate,
		ServiceTypes:  t.ServiceTypes,
		ServiceDate:   t.ServiceDate.Format("2006-01-02"),
		Status:        t.Status,
		PickupAddress: t.PickupAddress,
		Billing:       billing.Summarize(t),
		IssuedAt:      now.UTC(),
	}
}

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// Seal encrypts the slip into a URL-safe token.
func (g *Generator) Seal(slip Slip) (string, error) {
	data, err := json.Marshal(slip)
	if err != nil {
		return "", err
	}
	gcm, err := g.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, data, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Tokens sealed under another secret or modified in
// transit are rejected.
func (g *Generator) Open(token string) (*Slip, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode receipt token: %w", err)
	}
	gcm, err := g.aead()
	if err != nil {
		return nil, err
	}
	if len(raw) < gcm.NonceSize() {
		return nil, errors.New("receipt token too short")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	data, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("open receipt token: %w", err)
	}
	var slip Slip
	if err := json.Unmarshal(data, &slip); err != nil {
		return nil, err
	}
	return &slip, nil
}

// PNG renders the sealed slip for t as a QR code image.
func (g *Generator) PNG(t *models.Ticket, now time.Time) ([]byte, error) {
	token, err := g.Seal(NewSlip(t, now))
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, 256)
}

func (g *Generator) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
